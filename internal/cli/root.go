package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"checkable/internal/config"
)

// DebugEnv turns on debug logging like --debug
const DebugEnv = "CHECKABLE_DEBUG"

type options struct {
	configPath string
	statePath  string
	logFile    string
	debug      bool

	logCloser io.Closer
}

// NewRootCommand builds the checkable command tree. Running it without a
// subcommand starts the gallery.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&options{})
}

func newRootCommand(opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:   "checkable",
		Short: "A gallery of checkable tiles with a single-selection group",
		Long: `checkable shows a grid of tiles that can be checked and unchecked.
Tiles inside the group behave like radio buttons: checking one unchecks the rest.`,
		Example: `
# start the gallery with the default config
checkable

# write the default config, then edit it
checkable init
checkable --config ./tiles.toml
  `,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(opts)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGallery(cmd, opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file (default "+filepath.Join(config.DefaultDir(), "config.toml")+")")
	flags.StringVar(&opts.statePath, "state", "", "state file (default next to the config file)")
	flags.StringVar(&opts.logFile, "log-file", "", "log file (default "+filepath.Join(config.DefaultDir(), "checkable.log")+")")
	flags.BoolVarP(&opts.debug, "debug", "d", false, "enable debug logging")

	root.AddCommand(newRunCommand(opts), newInitCommand(opts))
	return root
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := execute(ctx, &options{}, nil); err != nil {
		stop()
		os.Exit(1)
	}
}

// execute runs the command tree with args (os.Args when nil). The log file is
// closed however the command ends.
func execute(ctx context.Context, opts *options, args []string) error {
	defer opts.closeLog()

	root := newRootCommand(opts)
	if args != nil {
		root.SetArgs(args)
	}
	return root.ExecuteContext(ctx)
}

func (o *options) closeLog() {
	if o.logCloser == nil {
		return
	}
	log.SetOutput(io.Discard)
	_ = o.logCloser.Close()
	o.logCloser = nil
}

// setupLogging sends log output to a file; the terminal belongs to the TUI
func setupLogging(opts *options) error {
	path := opts.logFile
	if path == "" {
		path = filepath.Join(config.DefaultDir(), "checkable.log")
	}

	if opts.debug || os.Getenv(DebugEnv) != "" {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
	log.SetReportTimestamp(true)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		log.SetOutput(io.Discard)
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not open log file: %v\n", err)
		log.SetOutput(io.Discard)
		return nil
	}
	log.SetOutput(f)
	opts.logCloser = f
	return nil
}
