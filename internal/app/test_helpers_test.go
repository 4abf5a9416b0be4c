package app

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/roundabout/internal/engine"
	"github.com/vk/roundabout/internal/netconfig"
	"github.com/vk/roundabout/internal/testutil"
)

// SetupAppTest creates a new app instance for system testing with debug
// logging captured in the returned buffer.
func SetupAppTest(t *testing.T, cfg Config, modules ...engine.Module) (*App, *testutil.SafeBuffer) {
	t.Helper()

	logBuffer := &testutil.SafeBuffer{}
	cfg.LogLevel = "debug"
	appConfig, err := NewConfig(cfg)
	require.NoError(t, err)
	testApp, err := NewApp(logBuffer, appConfig, netconfig.NewLoader(), modules...)
	require.NoError(t, err)

	t.Cleanup(func() {
		if os.Getenv("ROUNDABOUT_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}
