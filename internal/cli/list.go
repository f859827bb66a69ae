package cli

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all projects",
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	_, s, err := mustEngine()
	if err != nil {
		return err
	}

	summaries, err := s.List()
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Println("No projects found.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Project", "Mode", "Status", "Progress", "Goal"})
	for _, sum := range summaries {
		if sum.Err {
			t.AppendRow(table.Row{sum.ID, "?", "error reading", "", ""})
			continue
		}
		progress := fmt.Sprintf("%d/%d", sum.Done, sum.Total)
		if sum.Total == 0 {
			progress = "-"
		}
		t.AppendRow(table.Row{sum.ID, sum.Mode, sum.Status, progress, truncate(sum.Goal, 50)})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
	return nil
}
