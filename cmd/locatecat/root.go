package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Cyclone1070/locatecat/internal/catalog"
	"github.com/Cyclone1070/locatecat/internal/config"
	"github.com/Cyclone1070/locatecat/internal/output"
	"github.com/Cyclone1070/locatecat/internal/process"
	"github.com/Cyclone1070/locatecat/internal/session"
)

// app holds the state shared by all commands of one invocation.
type app struct {
	cfgFile string
	verbose bool
	color   string

	cfg     *config.Config
	logger  *slog.Logger
	printer *output.Printer

	// openCatalog is replaceable in tests.
	openCatalog func(cfg *config.Config, logger *slog.Logger) (catalog.Catalog, error)
}

func newApp() *app {
	return &app{openCatalog: openCatalog}
}

// newRootCmd builds the command tree.
func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "locatecat",
		Short: "Search the file index as you type",
		Long: `locatecat searches the system filename index (locate) interactively.

Every keystroke refines the running query; results are ranked by how well
the file name matches.

Example usage:
  locatecat                    # Interactive search, prints the chosen path
  locatecat query bashrc       # One-shot ranked search
  locatecat available          # Exit status tells whether search works
  locatecat update --wait      # Rebuild the index`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: a.runInteractive,
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ~/.config/locatecat/config.json)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")
	root.PersistentFlags().StringVar(&a.color, "color", "auto", "color output: auto, always, never")

	root.AddCommand(
		newQueryCmd(a),
		newAvailableCmd(a),
		newUpdateCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup loads the configuration and sets up logging and output.
func (a *app) setup(cmd *cobra.Command) error {
	mode, err := output.ParseColorMode(a.color)
	if err != nil {
		return &output.CLIError{Summary: err.Error(), ExitCode: output.ExitUsageError}
	}
	a.printer = output.NewPrinterWithWriters(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.ResolveColors(mode), false)

	if a.cfgFile != "" {
		a.cfg, err = config.NewLoader().LoadFile(a.cfgFile)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return &output.CLIError{
			Summary:    "failed to load config",
			Detail:     err.Error(),
			Suggestion: "fix or remove the config file",
			ExitCode:   output.ExitConfigError,
		}
	}

	a.logger = newLogger(cmd.ErrOrStderr(), a.logLevel())
	a.logger.Debug("configuration loaded",
		"backend", a.cfg.Catalog.Backend,
		"max_batch", a.cfg.Session.MaxBatch,
		"poll_interval", a.cfg.Session.PollInterval(),
	)
	return nil
}

func (a *app) logLevel() slog.Level {
	if a.verbose {
		return slog.LevelDebug
	}
	level, err := a.cfg.Logging.SlogLevel()
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// openCatalog creates the configured catalog.
func openCatalog(cfg *config.Config, logger *slog.Logger) (catalog.Catalog, error) {
	return catalog.Open(cfg.Catalog.Backend, cfg.Catalog.Options, session.Options{
		MaxBatch:     cfg.Session.MaxBatch,
		PollInterval: cfg.Session.PollInterval(),
		Logger:       logger,
	}, logger)
}

func (a *app) catalog(logger *slog.Logger) (catalog.Catalog, error) {
	cat, err := a.openCatalog(a.cfg, logger)
	if err != nil {
		return nil, &output.CLIError{
			Summary:    "invalid catalog configuration",
			Detail:     err.Error(),
			Suggestion: "check the catalog section of the config file",
			ExitCode:   output.ExitConfigError,
		}
	}
	return cat, nil
}

func errUnavailable() *output.CLIError {
	return &output.CLIError{
		Summary:    "the file index is not available",
		Suggestion: "install plocate or mlocate and run 'locatecat update --wait'",
		ExitCode:   output.ExitUnavailable,
	}
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	return execute(ctx, newApp(), args, nil, nil)
}

func execute(ctx context.Context, a *app, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(a)
	root.SetArgs(args)
	if stdout != nil {
		root.SetOut(stdout)
	}
	if stderr != nil {
		root.SetErr(stderr)
	}

	err := root.ExecuteContext(ctx)
	if err == nil {
		return output.ExitSuccess
	}

	printer := a.printer
	if printer == nil {
		printer = output.NewPrinterWithWriters(root.OutOrStdout(), root.ErrOrStderr(), false, false)
	}

	var cliErr *output.CLIError
	if !errors.As(err, &cliErr) {
		cliErr = &output.CLIError{Summary: err.Error(), ExitCode: exitCode(err)}
	}
	printer.FormatError(cliErr)
	return cliErr.ExitCode
}

// exitCode classifies errors that are not already CLIErrors.
func exitCode(err error) int {
	var spawnErr *process.SpawnError
	var invalid interface{ InvalidInput() bool }
	switch {
	case errors.As(err, &spawnErr):
		return output.ExitUnavailable
	case errors.As(err, &invalid) && invalid.InvalidInput():
		return output.ExitUsageError
	case isUsageError(err):
		return output.ExitUsageError
	default:
		return output.ExitGeneral
	}
}

// isUsageError reports cobra's own argument and flag errors.
func isUsageError(err error) bool {
	msg := err.Error()
	for _, prefix := range []string{"unknown command", "unknown flag", "unknown shorthand flag", "accepts ", "requires at least", "invalid argument"} {
		if strings.HasPrefix(msg, prefix) {
			return true
		}
	}
	return false
}
