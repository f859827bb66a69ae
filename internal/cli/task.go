package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	addAgent   string
	addDepends string
	addDesc    string
)

var addCmd = &cobra.Command{
	Use:   "add [project] [task-id]",
	Short: "Add a task to a DAG project",
	Args:  cobra.ExactArgs(2),
	RunE:  runAdd,
}

func init() {
	addCmd.Flags().StringVarP(&addAgent, "agent", "a", "", "Agent to assign (defaults to task ID)")
	addCmd.Flags().StringVarP(&addDepends, "depends", "d", "", "Comma-separated dependency task IDs")
	addCmd.Flags().StringVar(&addDesc, "desc", "", "Task description")
}

func runAdd(cmd *cobra.Command, args []string) error {
	eng, _, err := mustEngine()
	if err != nil {
		return err
	}

	var depends []string
	if addDepends != "" {
		for _, dep := range strings.Split(addDepends, ",") {
			if dep = strings.TrimSpace(dep); dep != "" {
				depends = append(depends, dep)
			}
		}
	}

	res, err := eng.AddTask(args[0], args[1], addAgent, depends, addDesc)
	if err != nil {
		return err
	}

	depStr := " (no dependencies — root task)"
	if len(res.DependsOn) > 0 {
		depStr = fmt.Sprintf(" (depends on: %s)", strings.Join(res.DependsOn, ", "))
	}
	fmt.Printf("%s✓%s Added task %q → agent: %s%s\n", colorGreen, colorReset, res.TaskID, res.Agent, depStr)
	return nil
}
