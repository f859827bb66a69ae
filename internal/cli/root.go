package cli

import (
	"github.com/spf13/cobra"
)

var flagDir string

var rootCmd = &cobra.Command{
	Use:   "relay",
	Short: "Shared task state for multi-agent pipelines",
	Long: "relay — a shared JSON task tracker for multi-agent pipelines.\n" +
		"Projects run in one of three modes: linear (fixed order, auto-advance),\n" +
		"dag (tasks declare dependencies, parallel dispatch), or debate\n" +
		"(multi-agent position + cross-review workflow).",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDir, "dir", "", "Project records directory (overrides RELAY_DIR and config)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(debaterCmd)
	rootCmd.AddCommand(roundCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(assignCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(nextCmd)
	rootCmd.AddCommand(readyCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(resultCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(listCmd)
}
