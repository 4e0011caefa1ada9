package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/Cyclone1070/locatecat/internal/catalog"
	"github.com/Cyclone1070/locatecat/internal/catalog/locate"
	"github.com/Cyclone1070/locatecat/internal/output"
)

func newUpdateCmd(a *app) *cobra.Command {
	var wait bool
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Rebuild the file index",
		Long: `Rebuild the file index with the configured update command (updatedb by
default). Without --wait the rebuild is started and left running.

Examples:
  locatecat update             # Start a rebuild
  locatecat update --wait      # Rebuild and report the outcome`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.catalog(a.logger)
			if err != nil {
				return err
			}
			u, ok := cat.(catalog.Updater)
			if !ok {
				return &output.CLIError{
					Summary:  "this catalog backend cannot rebuild its index",
					ExitCode: output.ExitUsageError,
				}
			}

			if !wait {
				if err := u.Update(cmd.Context()); err != nil {
					if errors.Is(err, locate.ErrUpdateThrottled) {
						a.printer.Warning("an index rebuild was started recently")
						return nil
					}
					return err
				}
				a.printer.Info("index rebuild started")
				return nil
			}

			a.printer.Info("rebuilding index...")
			if err := u.UpdateWait(cmd.Context()); err != nil {
				var ue *locate.UpdateError
				if errors.As(err, &ue) {
					return &output.CLIError{
						Summary:    "index rebuild failed",
						Detail:     err.Error(),
						Suggestion: "the update command usually needs root; try running with sudo",
						ExitCode:   output.ExitGeneral,
					}
				}
				return err
			}
			a.printer.Success("index rebuilt")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "wait for the rebuild to finish")
	return cmd
}
