package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/NomuraAI/SIGADES-sub000/internal/domain/dataset"
	"github.com/NomuraAI/SIGADES-sub000/internal/domain/project"
	"github.com/NomuraAI/SIGADES-sub000/internal/output"
	"github.com/NomuraAI/SIGADES-sub000/internal/sheet"
	"github.com/spf13/cobra"
)

func newImportCommand(a *app) *cobra.Command {
	var (
		version   string
		sheetName string
		mode      string
	)

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a spreadsheet into a version",
		Long: `Import reads an .xlsx, .xlsm or .csv file whose first row holds the headers
and writes its rows into one version.

smart_update (default) updates records whose village code, work and
sub-activity already exist in the version and inserts the rest.
replace_append inserts every row and asks for confirmation first, as does
any import into the remote backend.`,
		Example: `  sigades import anggaran-2025.xlsx --version 2025
  sigades import data.csv --mode replace_append --yes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := dataset.ParseMode(mode)
			if err != nil {
				return err
			}
			rows, err := sheet.ReadFile(args[0], sheetName)
			if err != nil {
				return err
			}
			if err := a.open(cmd.Context()); err != nil {
				return err
			}

			confirmed := false
			if dataset.RequiresConfirmation(parsed, a.datasets.Kind()) {
				question := fmt.Sprintf("Write %d rows to version %q on the %s backend with %s?",
					len(rows), project.EffectiveVersion(version), a.datasets.Kind(), parsed)
				if !a.confirm(cmd, question) {
					return nil
				}
				confirmed = true
			}

			summary, err := a.datasets.Import(cmd.Context(), dataset.ImportRequest{
				Version:   version,
				Mode:      parsed,
				Rows:      rows,
				Confirmed: confirmed,
				Source:    args[0],
			})
			if summary != nil {
				if werr := writeSummary(a, cmd, summary); werr != nil {
					return errors.Join(err, werr)
				}
			}
			return err
		},
	}

	cmd.Flags().StringVar(&version, "version", "", "version tag for the imported rows (default \"Default\")")
	cmd.Flags().StringVar(&sheetName, "sheet", "", "worksheet name (default first sheet)")
	cmd.Flags().StringVar(&mode, "mode", string(dataset.ModeSmartUpdate), "import mode: smart_update or replace_append")
	return cmd
}

func writeSummary(a *app, cmd *cobra.Command, s *dataset.Summary) error {
	format, _ := output.ParseFormat(a.format)
	if output.Detect(format, cmd.OutOrStdout()) == output.FormatTable {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), s.Message())
		for _, id := range s.Missing {
			fmt.Fprintf(cmd.OutOrStdout(), "  no longer found: %s\n", id)
		}
		if len(s.Orphaned) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "  duplicates left untouched: %s\n", strings.Join(s.Orphaned, ", "))
		}
		return err
	}
	return a.write(cmd, output.Table{}, map[string]any{
		"version":   s.Version,
		"mode":      s.Mode,
		"backend":   s.Backend,
		"processed": s.Processed,
		"inserted":  s.Inserted,
		"updated":   s.Updated,
		"missing":   nonNil(s.Missing),
		"orphaned":  nonNil(s.Orphaned),
		"message":   s.Message(),
	})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
