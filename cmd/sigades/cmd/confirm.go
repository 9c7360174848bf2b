package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// confirm asks a y/N question on the command's streams. --yes answers it.
func (a *app) confirm(cmd *cobra.Command, question string) bool {
	if a.assumeYes {
		return true
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s (y/N): ", question)
	var response string
	if _, err := fmt.Fscanln(cmd.InOrStdin(), &response); err != nil {
		response = "n"
	}
	response = strings.ToLower(strings.TrimSpace(response))
	if response != "y" && response != "yes" {
		fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
		return false
	}
	return true
}
