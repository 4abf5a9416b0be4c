// Package roadgraph models the road network the vehicle drives on: named
// roundabouts (nodes) joined by undirected weighted roads (edges) that can be
// obstructed or disabled at any time.
//
// # Raw and effective views
//
// The Graph keeps the raw state, which editing tools, the randomizer and the
// exporter work on. Routing and telemetry use the effective View instead:
//
//	disabled edge    -> +Inf
//	obstructed edge  -> weight + ObstaclePenalty
//	otherwise        -> weight
//
// Disabled nodes and every edge touching them are absent from the View.
//
// # Symmetry
//
// Every undirected edge is stored as two directional records, one in each
// endpoint's adjacency list. All mutations go through the Graph's write lock
// and update both records together, so Edge(a, b) and Edge(b, a) always agree.
//
// # Snapshots
//
// Clone returns an exact, independent copy. Copy returns the same topology and
// weights with every obstruction and disable flag cleared; a replanning drive
// uses it as the vehicle's initial belief about the world.
package roadgraph
