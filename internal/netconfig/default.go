package netconfig

import (
	"context"
	_ "embed"
)

//go:embed default.hcl
var defaultNetwork []byte

// Default returns a fresh copy of the built-in eight-roundabout network.
func Default(ctx context.Context) (*Network, error) {
	return NewLoader().LoadBytes(ctx, "default.hcl", defaultNetwork)
}
