package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/imkarma/relay/internal/tui"
	"github.com/spf13/cobra"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Open interactive project browser",
	Long:  "Opens an interactive browser over all tracked projects with per-stage status updates and log entry.",
	RunE:  runUI,
}

func init() {
	rootCmd.AddCommand(uiCmd)
}

func runUI(cmd *cobra.Command, args []string) error {
	eng, st, err := mustEngine()
	if err != nil {
		return err
	}

	p := tea.NewProgram(tui.New(eng, st), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
