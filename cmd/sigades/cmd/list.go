package cmd

import (
	"strconv"

	"github.com/NomuraAI/SIGADES-sub000/internal/domain/project"
	"github.com/NomuraAI/SIGADES-sub000/internal/output"
	"github.com/spf13/cobra"
)

func newListCommand(a *app) *cobra.Command {
	var req project.ListRequest

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			page, err := a.records.List(cmd.Context(), req)
			if err != nil {
				return err
			}
			if page.Records == nil {
				page.Records = []project.Project{}
			}
			return a.write(cmd, recordTable(page.Records), page)
		},
	}

	cmd.Flags().StringVar(&req.Version, "version", "", "version tag (default \"Default\")")
	cmd.Flags().BoolVar(&req.All, "all", false, "list records of every version")
	cmd.Flags().IntVar(&req.Page, "page", 0, "zero-based page index")
	cmd.Flags().IntVar(&req.PageSize, "page-size", 50, "records per page")
	return cmd
}

func recordTable(recs []project.Project) output.Table {
	table := output.Table{
		Headers: []string{"ID", "Version", "Village Code", "Village", "Work", "Sub Activity", "Allocation", "Tier"},
	}
	for _, p := range recs {
		tier := ""
		if p.Tier != nil {
			tier = p.Tier.String()
		}
		table.Rows = append(table.Rows, []string{
			p.ID, p.Version, p.VillageCode, p.Village, p.Work, p.SubActivity,
			strconv.FormatInt(p.Allocation, 10), tier,
		})
	}
	return table
}
