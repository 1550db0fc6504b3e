package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sfcc-replicator/internal/adapters/driven/replog"
	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
)

var replicateCmd = &cobra.Command{
	Use:   "replicate [path...]",
	Short: "Build and deliver resources",
	Long: `Runs the builder chain for each path and delivers the result to the
commerce instance selected by the agent transport URI.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReplicate,
}

var buildCmd = &cobra.Command{
	Use:   "build [path]",
	Short: "Print the delivery document without sending it",
	Args:  cobra.ExactArgs(1),
	RunE:  runBuild,
}

var (
	actionName string
	showLog    bool
)

func init() {
	replicateCmd.Flags().StringVarP(&actionName, "action", "a", "activate", "Replication action: activate, deactivate or delete")
	replicateCmd.Flags().BoolVar(&showLog, "log", false, "Print the replication log of each run")
	buildCmd.Flags().StringVarP(&actionName, "action", "a", "activate", "Replication action: activate, deactivate or delete")
	buildCmd.Flags().BoolVar(&showLog, "log", false, "Print the replication log")

	rootCmd.AddCommand(replicateCmd)
	rootCmd.AddCommand(buildCmd)
}

func runReplicate(cmd *cobra.Command, args []string) error {
	action, err := domain.ParseActionType(actionName)
	if err != nil {
		return err
	}
	r, err := requireRuntime()
	if err != nil {
		return err
	}

	failed := 0
	for _, path := range args {
		res, log, err := r.Replicate(cmd.Context(), action, path)
		if showLog {
			printLog(cmd, log)
		}
		if err != nil {
			failed++
			cmd.PrintErrf("%s %s: %v\n", action, path, err)
			continue
		}
		if !res.Success {
			failed++
		}
		cmd.Printf("%s %s: %s (%d) %s\n", action, path, res.State, res.StatusCode, res.Message)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d: %w", failed, len(args), errFailed)
	}
	return nil
}

func runBuild(cmd *cobra.Command, args []string) error {
	action, err := domain.ParseActionType(actionName)
	if err != nil {
		return err
	}
	r, err := requireRuntime()
	if err != nil {
		return err
	}

	d, log, err := r.Document(cmd.Context(), action, args[0])
	if showLog {
		printLog(cmd, log)
	}
	if err != nil {
		return fmt.Errorf("failed to build %s: %w", args[0], err)
	}
	if d == nil || d.IsEmpty() {
		cmd.Printf("Nothing to replicate for %s\n", args[0])
		return nil
	}

	out, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode delivery: %w", err)
	}
	cmd.Println(string(out))
	return nil
}

func printLog(cmd *cobra.Command, log *replog.Log) {
	if log == nil {
		return
	}
	for _, e := range log.Entries() {
		cmd.Printf("  %s %-5s %s\n", e.Time.Format("15:04:05.000"), e.Level, e.Message)
	}
}
