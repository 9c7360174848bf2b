package cmd

import (
	"strconv"
	"time"

	"github.com/NomuraAI/SIGADES-sub000/internal/domain/activity"
	"github.com/NomuraAI/SIGADES-sub000/internal/output"
	"github.com/spf13/cobra"
)

func newHistoryCommand(a *app) *cobra.Command {
	var (
		version string
		typ     string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent imports, edits and clears",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(cmd.Context()); err != nil {
				return err
			}

			opts := activity.ListActivityOptions{Limit: limit}
			if version != "" {
				opts.Version = &version
			}
			if typ != "" {
				t := activity.ActivityType(typ)
				opts.ActivityType = &t
			}
			entries, err := a.activity.GetRecentActivity(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if entries == nil {
				entries = []activity.ActivityEntry{}
			}

			table := output.Table{Headers: []string{"Time", "Backend", "Type", "Version", "Inserted", "Updated", "Summary"}}
			for _, e := range entries {
				table.Rows = append(table.Rows, []string{
					e.CreatedAt.Local().Format(time.DateTime),
					e.Backend,
					string(e.ActivityType),
					e.Version,
					strconv.Itoa(e.Inserted),
					strconv.Itoa(e.Updated),
					e.Summary,
				})
			}
			return a.write(cmd, table, entries)
		},
	}

	cmd.Flags().StringVar(&version, "version", "", "only entries for this version")
	cmd.Flags().StringVar(&typ, "type", "", "only entries of this type (import, record_created, version_cleared, ...)")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum entries")
	return cmd
}
