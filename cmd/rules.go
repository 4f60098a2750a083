package cmd

import (
	"github.com/spf13/cobra"

	"github.com/gavelhq/gavel/internal/checkers"
	"github.com/gavelhq/gavel/internal/output"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the registered checkers",
	Long: `List the static checkers in the order they run, with the finding
category each one reports under. Duplication detection runs as a separate
pass after the per-file checkers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return rulesRun()
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}

func rulesRun() error {
	table := ui.Table([]string{"Checker", "Category"})
	for _, c := range checkers.All() {
		table.Append([]string{output.Cyan(c.ID), string(c.Category)})
	}
	table.Append([]string{output.Cyan("duplication"), "duplication"})
	table.Render()
	return nil
}
