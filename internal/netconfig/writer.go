package netconfig

import (
	"io"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/vk/roundabout/internal/roadgraph"
	"github.com/zclconf/go-cty/cty"
)

// Write exports net in the format Load reads, including the current edge
// flags and disabled roundabouts.
func Write(w io.Writer, net *Network) error {
	f := hclwrite.NewEmptyFile()
	body := f.Body()
	body.SetAttributeValue("start", cty.StringVal(net.Start))
	body.AppendNewline()

	for _, name := range net.Graph.Nodes() {
		nb := body.AppendNewBlock("node", []string{name}).Body()
		if exits := net.Layout[name]; len(exits) > 0 {
			nb.SetAttributeValue("exits", stringList(exits))
		}
		if net.Graph.NodeDisabled(name) {
			nb.SetAttributeValue("disabled", cty.True)
		}
	}
	body.AppendNewline()

	for _, link := range net.Graph.Links() {
		eb := body.AppendNewBlock("edge", []string{link.A, link.B}).Body()
		eb.SetAttributeValue("weight", cty.NumberFloatVal(roadgraph.Round2(link.Weight)))
		if link.Obstructed {
			eb.SetAttributeValue("obstructed", cty.True)
		}
		if link.Disabled {
			eb.SetAttributeValue("disabled", cty.True)
		}
	}
	body.AppendNewline()

	rb := body.AppendNewBlock("randomizer", nil).Body()
	rb.SetAttributeValue("min_weight", cty.NumberFloatVal(net.Random.MinWeight))
	rb.SetAttributeValue("max_weight", cty.NumberFloatVal(net.Random.MaxWeight))
	rb.SetAttributeValue("p_edge_disabled", cty.NumberFloatVal(net.Random.PEdgeDisabled))
	rb.SetAttributeValue("p_obstacle", cty.NumberFloatVal(net.Random.PObstacle))
	rb.SetAttributeValue("p_node_disabled", cty.NumberFloatVal(net.Random.PNodeDisabled))
	if len(net.Random.Protected) > 0 {
		rb.SetAttributeValue("protected", stringList(net.Random.Protected))
	}

	if net.Drive != (Drive{}) {
		body.AppendNewline()
		db := body.AppendNewBlock("drive", nil).Body()
		if net.Drive.Mode != "" {
			db.SetAttributeValue("mode", cty.StringVal(net.Drive.Mode))
		}
		db.SetAttributeValue("settle_delay", cty.StringVal(net.Drive.SettleDelay.String()))
	}

	_, err := f.WriteTo(w)
	return err
}

func stringList(items []string) cty.Value {
	vals := make([]cty.Value, len(items))
	for i, s := range items {
		vals[i] = cty.StringVal(s)
	}
	return cty.ListVal(vals)
}
