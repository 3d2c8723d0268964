package cli

import (
	"context"
	"os"
)

// stdoutWriter is where command output goes by default.
var stdoutWriter = os.Stdout

// Execute runs the layerroute CLI and returns an error if any command fails.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//   - With --log-file: additionally written to a rotated file
//
// The logger is attached to the command context and reachable through
// loggerFromContext.
//
// Example:
//
//	func main() {
//	    if err := cli.Execute(context.Background()); err != nil {
//	        os.Exit(1)
//	    }
//	}
func Execute(ctx context.Context) error {
	c := New(os.Stderr, LogInfo)
	defer c.Close()
	return c.RootCommand().ExecuteContext(ctx)
}
