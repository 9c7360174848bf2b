package cmd

import (
	"github.com/NomuraAI/SIGADES-sub000/internal/output"
	"github.com/spf13/cobra"
)

func newVersionsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "versions",
		Short: "List the version tags in the active backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			versions, err := a.datasets.Versions(cmd.Context())
			if err != nil {
				return err
			}

			table := output.Table{Headers: []string{"Version"}}
			for _, v := range versions {
				table.Rows = append(table.Rows, []string{v})
			}
			return a.write(cmd, table, map[string]any{
				"backend":  a.datasets.Kind(),
				"versions": versions,
			})
		},
	}
}
