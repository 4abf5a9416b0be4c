package app

import (
	"context"

	"github.com/vk/roundabout/internal/broadcast"
	"github.com/vk/roundabout/internal/ctxlog"
	"github.com/vk/roundabout/internal/engine"
	"github.com/vk/roundabout/modules/consolelog"
)

// coreModules is the list of modules every app registers: the console
// logger, the simulated vehicle, the sequence diagram and the arrival
// summary.
func (a *App) coreModules() []engine.Module {
	return []engine.Module{
		&consolelog.Module{Layout: a.network.Layout},
		a.sensor,
		a.diagram,
		&summary{nav: a.navigator},
	}
}

// summary logs the route metrics when the vehicle arrives.
type summary struct {
	broadcast.Nop
	nav *engine.Navigator
}

func (s *summary) Register(n *engine.Navigator) { n.Listeners().Add(s) }

func (s *summary) NavigateToPoint(context.Context, string) error        { return nil }
func (s *summary) TakeExit(context.Context, string, string, string) error { return nil }

func (s *summary) ArriveAtDestination(ctx context.Context) error {
	st := s.nav.Status()
	ctxlog.FromContext(ctx).Info("🏁 Destination reached.",
		"route", st.FullRoute,
		"distance", st.Distance,
		"duration_seconds", st.Duration,
		"obstacles", st.Obstacles,
	)
	return nil
}
