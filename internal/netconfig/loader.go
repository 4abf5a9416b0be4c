package netconfig

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/roundabout/internal/ctxlog"
	"github.com/vk/roundabout/internal/roadgraph"
	"github.com/vk/roundabout/internal/roundabout"
	"github.com/zclconf/go-cty/cty"
)

// ErrNoFiles is returned when none of the given paths holds a network file.
var ErrNoFiles = errors.New("no .hcl network files found")

// Drive holds the drive settings of a network file. Mode is validated by the
// caller that knows the available modes.
type Drive struct {
	Mode        string
	SettleDelay time.Duration
}

// Network is a fully loaded road network.
type Network struct {
	Start  string
	Graph  *roadgraph.Graph
	Layout roundabout.Layout
	Random roadgraph.RandomConfig
	Drive  Drive
}

// Loader reads network files.
type Loader struct{}

// NewLoader creates a new network loader.
func NewLoader() *Loader {
	return &Loader{}
}

type parsedFile struct {
	name string
	root fileRoot
}

// evalContext exposes the physical constants to network expressions.
func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"speed":            cty.NumberFloatVal(roadgraph.Speed),
			"node_penalty":     cty.NumberFloatVal(roadgraph.NodePenalty),
			"obstacle_penalty": cty.NumberFloatVal(roadgraph.ObstaclePenalty),
		},
	}
}

// Load reads every .hcl file found under paths, which may be files or
// directories, and merges them into one network.
func (l *Loader) Load(ctx context.Context, paths ...string) (*Network, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Network loader started.", "path_count", len(paths))

	hclFiles, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(hclFiles) == 0 {
		return nil, fmt.Errorf("%w in %v", ErrNoFiles, paths)
	}
	logger.Debug("Discovered network files.", "count", len(hclFiles))

	parser := hclparse.NewParser()
	files := make([]parsedFile, 0, len(hclFiles))
	for _, name := range hclFiles {
		f, diags := parser.ParseHCLFile(name)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse network file %s: %w", name, diags)
		}
		pf, err := decode(name, f)
		if err != nil {
			return nil, err
		}
		files = append(files, pf)
	}
	return l.build(ctx, files)
}

// LoadBytes parses a single network held in memory. filename is only used in
// diagnostics.
func (l *Loader) LoadBytes(ctx context.Context, filename string, src []byte) (*Network, error) {
	f, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse network file %s: %w", filename, diags)
	}
	pf, err := decode(filename, f)
	if err != nil {
		return nil, err
	}
	return l.build(ctx, []parsedFile{pf})
}

func decode(name string, f *hcl.File) (parsedFile, error) {
	pf := parsedFile{name: name}
	if diags := gohcl.DecodeBody(f.Body, evalContext(), &pf.root); diags.HasErrors() {
		return pf, fmt.Errorf("failed to decode network file %s: %w", name, diags)
	}
	return pf, nil
}

// build merges decoded files. Nodes of all files are added before any edge.
func (l *Loader) build(ctx context.Context, files []parsedFile) (*Network, error) {
	logger := ctxlog.FromContext(ctx)
	net := &Network{
		Graph:  roadgraph.New(),
		Layout: make(roundabout.Layout),
		Random: roadgraph.DefaultRandomConfig(),
	}

	var startFile string
	var random *randomBlock
	var drive *driveBlock
	for _, pf := range files {
		if pf.root.Start != "" {
			if startFile != "" && pf.root.Start != net.Start {
				return nil, fmt.Errorf("%s: start %q conflicts with start %q from %s", pf.name, pf.root.Start, net.Start, startFile)
			}
			net.Start, startFile = pf.root.Start, pf.name
		}
		if pf.root.Randomizer != nil {
			if random != nil {
				return nil, fmt.Errorf("%s: randomizer block declared more than once", pf.name)
			}
			random = pf.root.Randomizer
		}
		if pf.root.Drive != nil {
			if drive != nil {
				return nil, fmt.Errorf("%s: drive block declared more than once", pf.name)
			}
			drive = pf.root.Drive
		}
		for _, n := range pf.root.Nodes {
			if net.Graph.HasNode(n.Name) {
				return nil, fmt.Errorf("%s: node %q declared more than once", pf.name, n.Name)
			}
			net.Graph.AddNode(n.Name)
			if len(n.Exits) > 0 {
				net.Layout[n.Name] = slices.Clone(n.Exits)
			}
		}
	}

	for _, pf := range files {
		for _, e := range pf.root.Edges {
			if err := net.Graph.AddEdge(e.A, e.B, e.weight()); err != nil {
				return nil, fmt.Errorf("%s: edge %q %q: %w", pf.name, e.A, e.B, err)
			}
			if e.Obstructed || e.Disabled {
				if err := net.Graph.UpdateEdge(e.A, e.B, e.weight(), e.Obstructed, e.Disabled); err != nil {
					return nil, fmt.Errorf("%s: edge %q %q: %w", pf.name, e.A, e.B, err)
				}
			}
		}
		for _, n := range pf.root.Nodes {
			if n.Disabled {
				if err := net.Graph.SetNodeDisabled(n.Name, true); err != nil {
					return nil, err
				}
			}
		}
	}

	if net.Start == "" {
		return nil, errors.New("network has no start node")
	}
	if !net.Graph.HasNode(net.Start) {
		return nil, fmt.Errorf("start %q (from %s): %w", net.Start, startFile, roadgraph.ErrUnknownNode)
	}
	if err := validateLayout(net.Graph, net.Layout); err != nil {
		return nil, err
	}
	if err := applyRandom(&net.Random, random, net.Start); err != nil {
		return nil, err
	}
	if err := applyDrive(&net.Drive, drive); err != nil {
		return nil, err
	}

	logger.Debug("Network loading complete.", "nodes", len(net.Graph.Nodes()), "edges", len(net.Graph.Links()), "start", net.Start)
	return net, nil
}

// validateLayout checks that every exit is a road leaving its roundabout and
// that no exit is listed twice.
func validateLayout(g *roadgraph.Graph, layout roundabout.Layout) error {
	for on, exits := range layout {
		seen := make(map[string]struct{}, len(exits))
		for _, to := range exits {
			if _, dup := seen[to]; dup {
				return fmt.Errorf("node %q: exit %q listed twice", on, to)
			}
			seen[to] = struct{}{}
			if _, err := g.Edge(on, to); err != nil {
				return fmt.Errorf("node %q: exit %q is not a neighbour: %w", on, to, err)
			}
		}
	}
	return nil
}

func applyRandom(cfg *roadgraph.RandomConfig, b *randomBlock, start string) error {
	cfg.Protected = []string{start}
	if b != nil {
		set := func(dst *float64, src *float64) {
			if src != nil {
				*dst = *src
			}
		}
		set(&cfg.MinWeight, b.MinWeight)
		set(&cfg.MaxWeight, b.MaxWeight)
		set(&cfg.PEdgeDisabled, b.PEdgeDisabled)
		set(&cfg.PObstacle, b.PObstacle)
		set(&cfg.PNodeDisabled, b.PNodeDisabled)
		if b.Protected != nil {
			cfg.Protected = slices.Clone(b.Protected)
		}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("randomizer: %w", err)
	}
	return nil
}

func applyDrive(d *Drive, b *driveBlock) error {
	if b == nil {
		return nil
	}
	d.Mode = b.Mode
	if b.SettleDelay != "" {
		delay, err := time.ParseDuration(b.SettleDelay)
		if err != nil {
			return fmt.Errorf("drive: invalid settle_delay: %w", err)
		}
		if delay < 0 {
			return fmt.Errorf("drive: settle_delay cannot be negative, got %s", delay)
		}
		d.SettleDelay = delay
	}
	return nil
}

// findAllHCLFiles walks all given paths and returns a flat list of all .hcl files found.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; !ok {
			allFiles = append(allFiles, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if !info.IsDir() {
			if filepath.Ext(path) == ".hcl" {
				add(path)
			}
			continue
		}
		err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(p) == ".hcl" {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return allFiles, nil
}
