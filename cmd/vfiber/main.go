package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/fiber/internal/config"
	"github.com/vango-dev/fiber/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┬  ┬┌─┐┬┌┐ ┌─┐┬─┐
  └┐┌┘├┤ │├┴┐├┤ ├┬┘
   └┘ └  ┴└─┘└─┘┴└─
`

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	dir      string
	logLevel string
}

// load reads vfiber.json (or defaults) and applies flag overrides.
func (o *globalOptions) load() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(o.dir)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "vfiber",
		Short: "An incremental, interruptible UI tree renderer",
		Long: `vfiber drives the fiber render engine against an in-memory host tree.

Render passes are split into units of work that yield to a scheduler
loop, state hooks re-render the tree, and every commit can be watched
live through the inspector:

  • demo     type into the mirror app and click the counter
  • bench    measure render and commit cost on a large list
  • inspect  serve metrics, the fiber tree and a commit feed`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.dir, "dir", "C", ".", "Directory containing vfiber.json")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (default from vfiber.json)")

	rootCmd.AddCommand(
		demoCmd(opts),
		benchCmd(opts),
		inspectCmd(opts),
		configCmd(opts),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds the CLI logger from the log section of cfg.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level, err := cfg.LogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	hopts := &slog.HandlerOptions{Level: level}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}
	return slog.New(slog.NewTextHandler(w, hopts))
}

// printBanner prints the ASCII art banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
