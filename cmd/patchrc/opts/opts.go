package opts

import (
	"github.com/walteh/patchrc/pkg/config"
	"github.com/walteh/patchrc/pkg/log"
)

// RootOpts contains shared options used by all commands. The root command
// fills it in before any subcommand runs.
type RootOpts struct {
	Config  *config.Config
	Console *log.Logger

	// Jobs caps concurrent files for async runs, 0 means one per CPU
	Jobs int
}
