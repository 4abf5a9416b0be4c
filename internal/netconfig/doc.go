// Package netconfig loads and exports road networks written in HCL.
//
// A network file declares the start field, the roundabouts with their exits
// in driving order, the roads between them, and optional randomizer and
// drive settings:
//
//	start = "START"
//
//	node "A" { exits = ["B", "Y", "X", "W"] }
//	node "B" { exits = ["C", "Y", "A"] }
//
//	edge "A" "B" { weight = 2 }
//	edge "A" "Y" {
//	  weight     = 1.5
//	  obstructed = true
//	}
//
//	randomizer {
//	  p_node_disabled = 0.1
//	  protected       = ["START"]
//	}
//
//	drive {
//	  mode         = "roadsense"
//	  settle_delay = "500ms"
//	}
//
// Expressions may use the variables speed, node_penalty and
// obstacle_penalty, for example weight = node_penalty / 2.
//
// Several files may be loaded together. Nodes from every file are declared
// before any edge is added, so roads can join roundabouts declared elsewhere.
package netconfig
