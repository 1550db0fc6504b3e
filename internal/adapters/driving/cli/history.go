package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past replication runs",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyGetCmd = &cobra.Command{
	Use:   "get [run-id]",
	Short: "Show one replication run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryGet,
}

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of runs to show (0 for all)")
	historyCmd.AddCommand(historyGetCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	r, err := requireRuntime()
	if err != nil {
		return err
	}

	records, err := r.History.List(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}
	if len(records) == 0 {
		cmd.Println("No replication runs recorded")
		return nil
	}

	for _, rec := range records {
		status := "ok"
		if !rec.Success {
			status = "FAILED"
		}
		cmd.Printf("%s  %s  %-10s %-6s %s\n", rec.ID, rec.StartedAt.Local().Format("2006-01-02 15:04:05"), rec.Action, status, rec.Path)
	}
	return nil
}

func runHistoryGet(cmd *cobra.Command, args []string) error {
	r, err := requireRuntime()
	if err != nil {
		return err
	}

	rec, err := r.History.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}
	printRecord(cmd, rec)
	return nil
}

func printRecord(cmd *cobra.Command, rec *domain.HistoryRecord) {
	cmd.Printf("Run: %s\n\n", rec.ID)
	cmd.Printf("  Path:     %s\n", rec.Path)
	cmd.Printf("  Action:   %s\n", rec.Action)
	cmd.Printf("  Instance: %s\n", rec.InstanceID)
	cmd.Printf("  State:    %s\n", rec.State)
	cmd.Printf("  Success:  %t\n", rec.Success)
	cmd.Printf("  Code:     %d\n", rec.StatusCode)
	if rec.Message != "" {
		cmd.Printf("  Message:  %s\n", rec.Message)
	}
	cmd.Printf("  Started:  %s\n", rec.StartedAt.Local().Format("2006-01-02 15:04:05"))
	if !rec.FinishedAt.IsZero() {
		cmd.Printf("  Duration: %s\n", rec.FinishedAt.Sub(rec.StartedAt).Round(time.Millisecond))
	}
}
