package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/spf13/cobra"

	"github.com/Cyclone1070/locatecat/internal/catalog"
	"github.com/Cyclone1070/locatecat/internal/config"
	"github.com/Cyclone1070/locatecat/internal/ui"
	uiservices "github.com/Cyclone1070/locatecat/internal/ui/services"
	"github.com/Cyclone1070/locatecat/internal/ui/views"
)

// Dependencies holds the components required to run the interactive mode.
type Dependencies struct {
	Config  *config.Config
	Catalog catalog.Catalog
	Logger  *slog.Logger
}

func createRealUI(ctx context.Context, deps Dependencies, available bool) *ui.UI {
	renderer := uiservices.NewGlamourRenderer()
	spinnerFactory := func() spinner.Model {
		return spinner.New(spinner.WithSpinner(spinner.Dot))
	}

	styles := views.NewStyles(deps.Config.UI.ColorPrimary, deps.Config.UI.ColorMatch, deps.Config.UI.ColorDim)
	opts := ui.Options{
		Available:  available,
		MaxResults: deps.Config.UI.MaxResults,
		Styles:     &styles,
	}
	if u, ok := deps.Catalog.(catalog.Updater); ok {
		opts.Updater = u
	}
	return ui.NewUI(ctx, deps.Catalog, renderer, spinnerFactory, opts)
}

// runInteractive runs the TUI and prints the chosen path on exit.
func (a *app) runInteractive(cmd *cobra.Command, _ []string) error {
	// The TUI owns the terminal, so logs go to the configured file or nowhere.
	logger, closeLog, err := a.interactiveLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	cat, err := a.catalog(logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	deps := Dependencies{Config: a.cfg, Catalog: cat, Logger: logger}
	available := cat.IsAvailable(ctx)
	if !available {
		logger.Warn("file index not available")
	}

	userInterface := createRealUI(ctx, deps, available)

	if w, ok := cat.(catalog.Watcher); ok && a.cfg.UI.WatchIndex && available {
		if err := w.Watch(ctx, userInterface.IndexChanged); err != nil {
			logger.Info("not watching index", "error", err)
		}
	}

	chosen, err := userInterface.Start()
	if err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	if chosen != "" {
		fmt.Fprintln(a.printer.Out(), chosen)
	}
	return nil
}

func (a *app) interactiveLogger() (*slog.Logger, func(), error) {
	if a.cfg.Logging.File == "" {
		return newLogger(io.Discard, a.logLevel()), func() {}, nil
	}
	f, err := os.OpenFile(a.cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return newLogger(f, a.logLevel()), func() { _ = f.Close() }, nil
}
