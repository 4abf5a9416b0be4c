package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromContext_DefaultWhenMissing(t *testing.T) {
	require.Same(t, slog.Default(), FromContext(context.Background()))
	require.Same(t, slog.Default(), FromContext(nil))
}

func TestWith_AppendsAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := With(WithLogger(context.Background(), logger), "session", "s1")

	FromContext(ctx).Info("Drive session started.")

	require.Contains(t, buf.String(), "session=s1")
	require.Contains(t, buf.String(), "Drive session started.")
}
