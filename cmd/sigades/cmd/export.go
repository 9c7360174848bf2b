package cmd

import (
	"fmt"

	"github.com/NomuraAI/SIGADES-sub000/internal/domain/project"
	"github.com/NomuraAI/SIGADES-sub000/internal/sheet"
	"github.com/spf13/cobra"
)

func newExportCommand(a *app) *cobra.Command {
	var (
		version string
		all     bool
	)

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write a version to an .xlsx or .csv file with canonical headers",
		Long: `Export collects every record of a version, page by page, and writes them
with the canonical column headers. The file can be imported again unchanged.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := sheet.FormatFromPath(args[0]); err != nil {
				return err
			}
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			recs, err := a.datasets.Export(cmd.Context(), version, all)
			if err != nil {
				return err
			}
			if err := sheet.WriteFile(args[0], recs); err != nil {
				return err
			}

			scope := fmt.Sprintf("version %q", project.EffectiveVersion(version))
			if all {
				scope = "all versions"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d records from %s to %s\n", len(recs), scope, args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&version, "version", "", "version tag (default \"Default\")")
	cmd.Flags().BoolVar(&all, "all", false, "export every version")
	return cmd
}
