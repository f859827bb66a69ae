package cli

import (
	"encoding/json"
	"fmt"

	"github.com/imkarma/relay/internal/graph"
	"github.com/imkarma/relay/internal/state"
	"github.com/spf13/cobra"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status [project]",
	Short: "Show current project status",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVarP(&statusJSON, "json", "j", false, "Output raw JSON record")
}

func runStatus(cmd *cobra.Command, args []string) error {
	eng, _, err := mustEngine()
	if err != nil {
		return err
	}

	p, err := eng.Status(args[0])
	if err != nil {
		return err
	}

	if statusJSON {
		out, err := json.MarshalIndent(p, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Printf("%sProject: %s%s\n", colorBold, p.ID, colorReset)
	if p.Goal != "" {
		fmt.Printf("Goal: %s\n", p.Goal)
	}
	fmt.Printf("Status: %s%s%s  |  Mode: %s\n", projectStatusColor(p.Status), p.Status, colorReset, p.Mode)
	if p.Workspace != "" {
		fmt.Printf("Workspace: %s\n", p.Workspace)
	}

	switch p.Mode {
	case state.ModeDebate:
		printDebateStatus(p)
		return nil
	case state.ModeDag:
		printDagStatus(p)
	case state.ModeLinear:
		printLinearStatus(p)
	}

	done, total := p.Progress()
	if total > 0 {
		fmt.Printf("\nProgress: [%s] %d/%d\n", progressBar(done, total), done, total)
	}
	return nil
}

func printLinearStatus(p *state.Project) {
	current := p.CurrentStage
	if current == "" {
		current = "(none)"
	}
	fmt.Printf("Current: %s%s%s\n\n", colorCyan, current, colorReset)

	for _, agent := range p.Pipeline {
		st, ok := p.Stages.Get(agent)
		if !ok {
			continue
		}
		fmt.Printf("  %s %s: %s\n", statusIcon(st.Status), agent, st.Status)
		if st.Task != "" {
			fmt.Printf("     Task: %s\n", truncate(st.Task, 60))
		}
		if st.Output != "" {
			fmt.Printf("     Output: %s\n", truncate(st.Output, 80))
		}
	}
}

func printDagStatus(p *state.Project) {
	fmt.Println()
	ready := map[string]bool{}
	for _, id := range graph.ReadyTasks(p.Stages) {
		ready[id] = true
	}

	// Roots first, then dependent tasks.
	printTask := func(id string) {
		st, _ := p.Stages.Get(id)
		readyMark := ""
		if ready[id] {
			readyMark = colorGreen + " READY" + colorReset
		}
		depStr := ""
		if len(st.DependsOn) > 0 {
			depStr = fmt.Sprintf(" %s← %v%s", colorDim, st.DependsOn, colorReset)
		}
		fmt.Printf("  %s %s (%s): %s%s%s\n", statusIcon(st.Status), id, st.Agent, st.Status, readyMark, depStr)
		if st.Task != "" {
			fmt.Printf("     Task: %s\n", truncate(st.Task, 60))
		}
		if st.Output != "" {
			fmt.Printf("     Output: %s\n", truncate(st.Output, 80))
		}
	}
	for _, id := range p.Stages.IDs() {
		if st, _ := p.Stages.Get(id); len(st.DependsOn) == 0 {
			printTask(id)
		}
	}
	for _, id := range p.Stages.IDs() {
		if st, _ := p.Stages.Get(id); len(st.DependsOn) > 0 {
			printTask(id)
		}
	}

	if len(ready) > 0 {
		ids := graph.ReadyTasks(p.Stages)
		fmt.Printf("\n%sReady to dispatch:%s", colorGreen, colorReset)
		for _, id := range ids {
			fmt.Printf(" %s", id)
		}
		fmt.Println()
	}
}

func printDebateStatus(p *state.Project) {
	fmt.Printf("Debaters: %d\n", p.Debaters.Len())
	for _, id := range p.Debaters.IDs() {
		d, _ := p.Debaters.Get(id)
		fmt.Printf("  - %s: %s\n", id, d.RoleLabel())
	}

	if len(p.Rounds) == 0 {
		fmt.Printf("\n%sNo rounds started%s\n", colorYellow, colorReset)
		return
	}

	fmt.Println()
	for i, round := range p.Rounds {
		fmt.Printf("  Round %d: %s [%s] (%d/%d responses)\n",
			i+1, round.Type, round.Status, len(round.Responses), p.Debaters.Len())
		for _, id := range p.Debaters.IDs() {
			if text, ok := round.Responses[id]; ok {
				fmt.Printf("     %s: %s\n", id, truncate(text, 80))
			}
		}
	}
}
