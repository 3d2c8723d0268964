package cli

import (
	"io"
	"runtime"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/spf13/cobra"

	"github.com/matzehuels/layerroute/pkg/buildinfo"
	"github.com/matzehuels/layerroute/pkg/cache"
	"github.com/matzehuels/layerroute/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "layerroute"

	// defaultCacheEntries bounds the in-process cache of the serve command.
	defaultCacheEntries = 1024
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// logOut is where Logger writes; out receives command output (nil
	// means stdout).
	logOut io.Writer
	out    io.Writer

	verbose bool
	logFile string
	closers []io.Closer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	lw := &lockedWriter{w: w}
	return &CLI{Logger: newLogger(lw, level), logOut: lw}
}

// lockedWriter serializes writes to the log stream, which the logger and
// the render spinner share.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "layerroute routes nets through multi-layer grids",
		Long: `layerroute connects pairs of cells in a multi-layer cost grid with minimum-cost
paths, searching net processing orders for the best overall result.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(*cobra.Command, []string) { c.Close() },
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.logFile, "log-file", "", "also write logs to this file (rotated)")

	root.AddCommand(c.routeCommand())
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup applies the persistent flags before any command runs.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	if c.verbose {
		c.SetLogLevel(LogDebug)
	}
	if c.logFile != "" {
		rotated := newRotatingFile(c.logFile)
		c.closers = append(c.closers, rotated)
		c.Logger = newLogger(io.MultiWriter(c.logOut, rotated), c.Logger.GetLevel())
	}
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// Close releases log files opened by setup.
func (c *CLI) Close() error {
	var first error
	for _, cl := range c.closers {
		if err := cl.Close(); err != nil && first == nil {
			first = err
		}
	}
	c.closers = nil
	return first
}

func (c *CLI) stdout() io.Writer {
	if c.out != nil {
		return c.out
	}
	return stdoutWriter
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. One-shot commands route
// once per process, so they get no cache.
func (c *CLI) newRunner() *pipeline.Runner {
	return pipeline.NewRunner(cache.NewNullCache(), nil, c.Logger)
}

// =============================================================================
// Options Helpers
// =============================================================================

// defaultWorkers returns the number of physical cores, falling back to the
// logical CPU count.
func defaultWorkers() int {
	if n, err := cpu.Counts(false); err == nil && n > 0 {
		return n
	}
	return max(runtime.NumCPU(), 1)
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string, fallback string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return []string{fallback}
	}
	return out
}
