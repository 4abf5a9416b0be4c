package engine

import "context"

// oversight plans once on a snapshot of the canonical graph and drives the
// route without further checks.
func (d *drive) oversight(ctx context.Context) error {
	if err := d.prepare(ctx); err != nil {
		return err
	}
	route, err := d.requestRoute(ctx, d.n.graph.Clone(), d.n.cfg.Start, false)
	if err != nil {
		return err
	}

	if err := d.navigateTo(ctx, route[0]); err != nil {
		return err
	}
	prev := ""
	for i := 0; i < len(route)-1; i++ {
		if err := d.takeExit(ctx, prev, route[i], route[i+1]); err != nil {
			return err
		}
		if err := d.navigateTo(ctx, route[i+1]); err != nil {
			return err
		}
		prev = route[i]
	}
	return d.arrive(ctx)
}
