package roadgraph

import "errors"

var (
	// ErrUnknownNode is returned when a node name is not part of the graph.
	ErrUnknownNode = errors.New("unknown node")
	// ErrUnknownEdge is returned when two nodes are not directly connected.
	ErrUnknownEdge = errors.New("unknown edge")
	// ErrEdgeExists is returned when adding an edge that is already present.
	ErrEdgeExists = errors.New("edge already exists")
	// ErrSelfLoop is returned when both endpoints of an edge are the same node.
	ErrSelfLoop = errors.New("edge endpoints must differ")
	// ErrNegativeWeight is returned for weights below zero.
	ErrNegativeWeight = errors.New("edge weight must not be negative")
)
