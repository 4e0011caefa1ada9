package main

import (
	"github.com/spf13/cobra"
)

func newAvailableCmd(a *app) *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "available",
		Short: "Check whether the file index can be searched",
		Long: `Run a short probe query against the index.

Exits 0 when searching works and 3 when the tool or its database is missing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.catalog(a.logger)
			if err != nil {
				return err
			}
			if !cat.IsAvailable(cmd.Context()) {
				return errUnavailable()
			}
			if !quiet {
				a.printer.Success("file index is available")
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "only set the exit status")
	return cmd
}
