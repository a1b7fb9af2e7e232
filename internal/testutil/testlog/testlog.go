package testlog

import (
	"testing"

	"github.com/danmuck/spsproto/internal/logging"
	"github.com/rs/zerolog"
)

// Start configures test logging and returns a logger tagged with the test
// name. The test's end is logged on cleanup.
func Start(t *testing.T) zerolog.Logger {
	t.Helper()
	logging.ConfigureTests()
	lg := logging.For("test").With().Str("test", t.Name()).Logger()
	lg.Info().Msg("start")
	t.Cleanup(func() {
		lg.Debug().Bool("failed", t.Failed()).Msg("done")
	})
	return lg
}
