package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gavelhq/gavel/internal/output"
	"github.com/gavelhq/gavel/internal/store"
)

var (
	historyLimit int
	historyType  string
	cleanupDays  int
)

var historyCmd = &cobra.Command{
	Use:   "history [target]",
	Short: "List saved review runs",
	Long: `List saved review runs, newest first. With a target argument, only
runs for that path or diff range are shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := ""
		if len(args) == 1 {
			target = args[0]
		}
		return historyListRun(cmd, target)
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the full report for one saved run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return historyShowRun(cmd, args[0])
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete one saved run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := getStore()
		if err != nil {
			return err
		}
		if err := s.DeleteRun(cmd.Context(), args[0]); err != nil {
			return err
		}
		ui.Success("Deleted run %s", args[0])
		return nil
	},
}

var historyCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete runs older than --days",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := getStore()
		if err != nil {
			return err
		}
		cutoff := time.Now().AddDate(0, 0, -cleanupDays)
		n, err := s.CleanupOlderThan(cmd.Context(), cutoff)
		if err != nil {
			return err
		}
		ui.Success("Deleted %d runs older than %d days", n, cleanupDays)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum runs to list")
	historyCmd.Flags().StringVar(&historyType, "type", "", "Filter by review type")
	historyCleanupCmd.Flags().IntVar(&cleanupDays, "days", 30, "Age threshold in days")
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyCleanupCmd)
	rootCmd.AddCommand(historyCmd)
}

func historyListRun(cmd *cobra.Command, target string) error {
	s, err := getStore()
	if err != nil {
		return err
	}

	runs, err := s.ListRuns(cmd.Context(), store.RunListFilter{
		Target:     target,
		ReviewType: historyType,
		Limit:      historyLimit,
	})
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		ui.Info("No saved runs. Use 'gavel review --save' to record one.")
		return nil
	}

	table := ui.Table([]string{"Run", "Target", "Type", "Findings", "When"})
	for _, r := range runs {
		findings := "-"
		if r.Result != nil {
			c := r.Result.Summary.Counts
			findings = fmt.Sprintf("%d (%de/%dw)", c.Total(), c.Errors, c.Warnings)
		}
		table.Append([]string{
			output.Cyan(r.ID),
			r.Target,
			r.ReviewType,
			findings,
			timeAgo(r.CreatedAt),
		})
	}
	table.Render()
	return nil
}

func historyShowRun(cmd *cobra.Command, id string) error {
	s, err := getStore()
	if err != nil {
		return err
	}

	rec, err := s.GetRun(cmd.Context(), id)
	if err != nil {
		return err
	}

	ui.Info("Run %s reviewed %s (%s) at %s", rec.ID, rec.Target, rec.ReviewType,
		rec.CreatedAt.Format("2006-01-02 15:04"))

	writer, err := output.GetWriter(reviewFormat)
	if err != nil {
		return err
	}
	return writer.Write(ui.Out, rec.Result)
}

// timeAgo formats a timestamp as a short relative age.
func timeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
