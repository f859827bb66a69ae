package cli

import (
	"fmt"
	"strings"

	"github.com/imkarma/relay/internal/state"
	"github.com/spf13/cobra"
)

var resetAll bool

var assignCmd = &cobra.Command{
	Use:   "assign [project] [stage] [description]",
	Short: "Set the task description for a stage",
	Args:  cobra.MinimumNArgs(3),
	RunE:  runAssign,
}

var updateCmd = &cobra.Command{
	Use:   "update [project] [stage] [status]",
	Short: "Update stage/task status",
	Long:  "Sets a stage to pending, in-progress, done, failed, or skipped and applies the mode's transition rules.",
	Args:  cobra.ExactArgs(3),
	RunE:  runUpdate,
}

var logCmd = &cobra.Command{
	Use:   "log [project] [stage] [message]",
	Short: "Append a log entry to a stage",
	Args:  cobra.MinimumNArgs(3),
	RunE:  runLog,
}

var resultCmd = &cobra.Command{
	Use:   "result [project] [stage] [output]",
	Short: "Set the output/result of a stage",
	Args:  cobra.MinimumNArgs(3),
	RunE:  runResult,
}

var resetCmd = &cobra.Command{
	Use:   "reset [project] [stage]",
	Short: "Reset a stage (or all stages) back to pending",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runReset,
}

var historyCmd = &cobra.Command{
	Use:   "history [project] [stage]",
	Short: "Show full log history for a stage",
	Args:  cobra.ExactArgs(2),
	RunE:  runHistory,
}

func init() {
	resetCmd.Flags().BoolVarP(&resetAll, "all", "a", false, "Reset all stages")
}

func runAssign(cmd *cobra.Command, args []string) error {
	eng, _, err := mustEngine()
	if err != nil {
		return err
	}
	if _, err := eng.Assign(args[0], args[1], strings.Join(args[2:], " ")); err != nil {
		return err
	}
	fmt.Printf("%s✓%s Assigned task to %s\n", colorGreen, colorReset, args[1])
	return nil
}

func runUpdate(cmd *cobra.Command, args []string) error {
	eng, _, err := mustEngine()
	if err != nil {
		return err
	}

	res, err := eng.UpdateStatus(args[0], args[1], state.StageStatus(args[2]))
	if err != nil {
		return err
	}

	fmt.Printf("%s✓%s %s: %s → %s\n", colorGreen, colorReset, res.StageID, res.From, res.To)

	p := res.Project
	switch p.Mode {
	case state.ModeDag:
		switch res.To {
		case state.StageDone:
			if len(res.Unblocked) > 0 {
				fmt.Printf("%sUnblocked:%s %s\n", colorGreen, colorReset, strings.Join(res.Unblocked, ", "))
			} else if p.Status == state.ProjectCompleted {
				fmt.Printf("%sAll tasks completed!%s\n", colorGreen+colorBold, colorReset)
			}
		case state.StageFailed:
			if len(res.Unblocked) > 0 {
				fmt.Printf("%sFailed, but these tasks can still run:%s %s\n", colorYellow, colorReset, strings.Join(res.Unblocked, ", "))
			} else {
				fmt.Printf("%sPipeline blocked — no tasks can proceed%s\n", colorRed, colorReset)
			}
		}
	case state.ModeLinear:
		if res.To == state.StageDone && res.NextStage != "" {
			fmt.Printf("Next: %s%s%s\n", colorCyan, res.NextStage, colorReset)
		} else if p.Status == state.ProjectCompleted {
			fmt.Printf("%sPipeline completed!%s\n", colorGreen+colorBold, colorReset)
		} else if p.Status == state.ProjectBlocked {
			fmt.Printf("%sPipeline blocked — fix, reset, or retry %s%s\n", colorRed, res.StageID, colorReset)
		}
	}
	return nil
}

func runLog(cmd *cobra.Command, args []string) error {
	eng, _, err := mustEngine()
	if err != nil {
		return err
	}
	if _, err := eng.AppendLog(args[0], args[1], strings.Join(args[2:], " ")); err != nil {
		return err
	}
	fmt.Printf("Log added to %s\n", args[1])
	return nil
}

func runResult(cmd *cobra.Command, args []string) error {
	eng, _, err := mustEngine()
	if err != nil {
		return err
	}
	if _, err := eng.SetOutput(args[0], args[1], strings.Join(args[2:], " ")); err != nil {
		return err
	}
	fmt.Printf("%s✓%s Result saved for %s\n", colorGreen, colorReset, args[1])
	return nil
}

func runReset(cmd *cobra.Command, args []string) error {
	eng, _, err := mustEngine()
	if err != nil {
		return err
	}

	stage := ""
	if len(args) > 1 {
		stage = args[1]
	}
	if stage == "" && !resetAll {
		return fmt.Errorf("specify a stage or use --all")
	}

	res, err := eng.Reset(args[0], stage, resetAll)
	if err != nil {
		return err
	}
	fmt.Printf("Reset: %s\n", strings.Join(res.Stages, ", "))
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	eng, _, err := mustEngine()
	if err != nil {
		return err
	}

	logs, err := eng.History(args[0], args[1])
	if err != nil {
		return err
	}
	if len(logs) == 0 {
		fmt.Printf("No logs for %s\n", args[1])
		return nil
	}

	fmt.Printf("%sHistory for %s:%s\n", colorBold, args[1], colorReset)
	for _, entry := range logs {
		fmt.Printf("  [%s] %s\n", entry.Time.Format("2006-01-02T15:04:05Z07:00"), entry.Event)
	}
	return nil
}
