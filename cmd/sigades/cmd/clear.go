package cmd

import (
	"errors"
	"fmt"

	"github.com/NomuraAI/SIGADES-sub000/internal/domain/project"
	"github.com/NomuraAI/SIGADES-sub000/internal/repository"
	"github.com/spf13/cobra"
)

func newClearCommand(a *app) *cobra.Command {
	var (
		version string
		all     bool
	)

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every record of a version, or of the whole store",
		Long: `Clear removes records from the local backend. The remote backend refuses
bulk deletion.`,
		Example: `  sigades clear --version 2024
  sigades clear --all --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if all == cmd.Flags().Changed("version") {
				return errors.New("pass exactly one of --version or --all")
			}
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			if a.datasets.Kind() == repository.KindRemote {
				return fmt.Errorf("clear: %w", repository.ErrPermissionDenied)
			}

			var (
				n   int
				err error
			)
			if all {
				if !a.confirm(cmd, "Delete EVERY record in the local store?") {
					return nil
				}
				n, err = a.datasets.ClearAll(cmd.Context(), true)
			} else {
				version = project.EffectiveVersion(version)
				if !a.confirm(cmd, fmt.Sprintf("Delete every record of version %q?", version)) {
					return nil
				}
				n, err = a.datasets.ClearVersion(cmd.Context(), version, true)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d records\n", n)
			return nil
		},
	}

	cmd.Flags().StringVar(&version, "version", "", "version tag to clear")
	cmd.Flags().BoolVar(&all, "all", false, "clear the whole store")
	return cmd
}
