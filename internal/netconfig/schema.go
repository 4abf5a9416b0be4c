package netconfig

// fileRoot decodes all top-level content of a network file. It has no remain
// body, so unknown attributes and blocks are reported as errors.
type fileRoot struct {
	Start      string       `hcl:"start,optional"`
	Nodes      []*nodeBlock `hcl:"node,block"`
	Edges      []*edgeBlock `hcl:"edge,block"`
	Randomizer *randomBlock `hcl:"randomizer,block"`
	Drive      *driveBlock  `hcl:"drive,block"`
}

type nodeBlock struct {
	Name     string   `hcl:"name,label"`
	Exits    []string `hcl:"exits,optional"`
	Disabled bool     `hcl:"disabled,optional"`
}

type edgeBlock struct {
	A          string   `hcl:"a,label"`
	B          string   `hcl:"b,label"`
	Weight     *float64 `hcl:"weight,optional"` // defaultWeight when omitted
	Obstructed bool     `hcl:"obstructed,optional"`
	Disabled   bool     `hcl:"disabled,optional"`
}

const defaultWeight = 1.0

func (e *edgeBlock) weight() float64 {
	if e.Weight == nil {
		return defaultWeight
	}
	return *e.Weight
}

// Pointer fields distinguish an omitted setting from an explicit zero.
type randomBlock struct {
	MinWeight     *float64 `hcl:"min_weight,optional"`
	MaxWeight     *float64 `hcl:"max_weight,optional"`
	PEdgeDisabled *float64 `hcl:"p_edge_disabled,optional"`
	PObstacle     *float64 `hcl:"p_obstacle,optional"`
	PNodeDisabled *float64 `hcl:"p_node_disabled,optional"`
	Protected     []string `hcl:"protected,optional"`
}

type driveBlock struct {
	Mode        string `hcl:"mode,optional"`
	SettleDelay string `hcl:"settle_delay,optional"`
}
