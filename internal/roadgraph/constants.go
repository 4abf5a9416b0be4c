package roadgraph

// Physical model of the vehicle, shared by the pathfinder and telemetry.
const (
	// Speed is the vehicle speed in metres per second.
	Speed = 2.0
	// ObstacleClearSeconds is the time it takes to get past an obstacle.
	ObstacleClearSeconds = 5.0
	// TurnSeconds is the time spent crossing a roundabout.
	TurnSeconds = 2.0

	// ObstaclePenalty is the distance-equivalent cost of an obstructed road.
	ObstaclePenalty = Speed * ObstacleClearSeconds
	// NodePenalty is the distance-equivalent cost of crossing a roundabout.
	NodePenalty = Speed * TurnSeconds
	// ScoredNodePenalty is charged per intermediate node by ScoredDistance.
	ScoredNodePenalty = NodePenalty * 0.5
)
