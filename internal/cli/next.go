package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/imkarma/relay/internal/prompt"
	"github.com/imkarma/relay/internal/state"
	"github.com/spf13/cobra"
)

var (
	nextJSON  bool
	readyJSON bool
)

var nextCmd = &cobra.Command{
	Use:   "next [project]",
	Short: "Get the next actionable stage (linear mode)",
	Args:  cobra.ExactArgs(1),
	RunE:  runNext,
}

var readyCmd = &cobra.Command{
	Use:   "ready [project]",
	Short: "Get all tasks whose dependencies are met (dag mode)",
	Args:  cobra.ExactArgs(1),
	RunE:  runReady,
}

func init() {
	nextCmd.Flags().BoolVarP(&nextJSON, "json", "j", false, "Output JSON")
	readyCmd.Flags().BoolVarP(&readyJSON, "json", "j", false, "Output JSON")
}

func runNext(cmd *cobra.Command, args []string) error {
	eng, _, err := mustEngine()
	if err != nil {
		return err
	}

	res, err := eng.NextStage(args[0])
	if errors.Is(err, state.ErrWrongMode) {
		return fmt.Errorf("%w (use 'ready' for dag projects)", err)
	}
	if err != nil {
		return err
	}

	if res.StageID == "" {
		if res.ProjectStatus == state.ProjectCompleted {
			fmt.Println("Pipeline completed — no pending stages")
		} else {
			fmt.Println("No current stage (pipeline may be blocked)")
		}
		return nil
	}

	if nextJSON {
		out, err := json.MarshalIndent(struct {
			Stage     string `json:"stage"`
			Agent     string `json:"agent"`
			Task      string `json:"task"`
			Status    string `json:"status"`
			Workspace string `json:"workspace"`
		}{res.StageID, res.Agent, res.Task, string(res.Status), res.Workspace}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Printf("Next stage: %s%s%s\n", colorCyan, res.StageID, colorReset)
	fmt.Printf("   Agent: %s\n", res.Agent)
	fmt.Printf("   Status: %s\n", res.Status)
	if res.Workspace != "" {
		fmt.Printf("   Workspace: %s\n", res.Workspace)
	}
	if res.Task != "" {
		fmt.Printf("   Task: %s\n", res.Task)
	}
	return nil
}

func runReady(cmd *cobra.Command, args []string) error {
	eng, _, err := mustEngine()
	if err != nil {
		return err
	}

	res, err := eng.ReadyTasks(args[0])
	if errors.Is(err, state.ErrWrongMode) {
		return fmt.Errorf("%w (use 'next' for linear pipelines)", err)
	}
	if err != nil {
		return err
	}

	if res.ProjectStatus == state.ProjectCompleted {
		fmt.Println("All tasks completed — nothing to dispatch")
		return nil
	}

	if len(res.Tasks) == 0 {
		if len(res.InProgress) > 0 {
			fmt.Printf("No ready tasks — waiting for: %s\n", strings.Join(res.InProgress, ", "))
		} else {
			fmt.Println("No ready tasks (pipeline may be blocked)")
		}
		return nil
	}

	if readyJSON {
		type entry struct {
			TaskID     string            `json:"taskId"`
			Agent      string            `json:"agent"`
			Task       string            `json:"task"`
			DependsOn  []string          `json:"dependsOn"`
			DepOutputs map[string]string `json:"depOutputs,omitempty"`
			Workspace  string            `json:"workspace"`
		}
		entries := make([]entry, 0, len(res.Tasks))
		for _, t := range res.Tasks {
			entries = append(entries, entry(t))
		}
		out, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	plural := ""
	if len(res.Tasks) > 1 {
		plural = "s"
	}
	fmt.Printf("%sReady to dispatch (%d task%s):%s\n\n", colorGreen, len(res.Tasks), plural, colorReset)
	for _, t := range res.Tasks {
		printIndented(prompt.DispatchBrief(t))
		fmt.Println()
	}
	return nil
}

func printIndented(block string) {
	for _, line := range strings.Split(strings.TrimRight(block, "\n"), "\n") {
		fmt.Printf("  %s\n", line)
	}
}
