package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/imkarma/relay/internal/graph"
	"github.com/imkarma/relay/internal/state"
)

// --- Color palette ---
var (
	clrSubtle    = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#666666"}
	clrHighlight = lipgloss.AdaptiveColor{Light: "#0F766E", Dark: "#2DD4BF"}
	clrGreen     = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	clrYellow    = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#F59E0B"}
	clrRed       = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
	clrBlue      = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"}
	clrDim       = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#555555"}
)

// --- Styles ---
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(clrHighlight)
	dimStyle    = lipgloss.NewStyle().Foreground(clrDim)
	subtleStyle = lipgloss.NewStyle().Foreground(clrSubtle)

	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(clrHighlight)

	doneStyle    = lipgloss.NewStyle().Foreground(clrGreen)
	failedStyle  = lipgloss.NewStyle().Foreground(clrRed)
	activeStyle  = lipgloss.NewStyle().Foreground(clrBlue)
	skippedStyle = lipgloss.NewStyle().Foreground(clrYellow)

	popupStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(clrHighlight).
			Padding(1, 2).
			Width(60)

	errorStyle = lipgloss.NewStyle().Foreground(clrRed).Bold(true)

	footerKeyStyle  = lipgloss.NewStyle().Bold(true).Foreground(clrHighlight)
	footerDescStyle = lipgloss.NewStyle().Foreground(clrSubtle)
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.scr {
	case screenList:
		content = m.viewList()
	case screenDetail:
		content = m.viewDetail()
	}

	if m.logging {
		content += "\n" + popupStyle.Render("Append log to "+m.selectedStage()+"\n\n"+m.logInput.View())
	}
	if m.statusMsg != "" {
		content += "\n" + errorStyle.Render(m.statusMsg)
	}
	return content
}

func (m Model) viewList() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("relay projects"))
	b.WriteString(dimStyle.Render(fmt.Sprintf(" — %d", len(m.summaries))))
	b.WriteString("\n\n")

	if len(m.summaries) == 0 {
		b.WriteString(dimStyle.Render("No projects. Create one: relay init <name> --mode linear|dag|debate"))
		b.WriteString("\n")
	}

	for i, sum := range m.summaries {
		cursor := "  "
		line := ""
		if sum.Err {
			line = fmt.Sprintf("%-20s %s", sum.ID, errorStyle.Render("error reading"))
		} else {
			progress := fmt.Sprintf("%d/%d", sum.Done, sum.Total)
			if sum.Total == 0 {
				progress = "-"
			}
			line = fmt.Sprintf("%-20s %-8s %s %8s  %s",
				sum.ID, sum.Mode, projectStatusBadge(sum.Status), progress,
				dimStyle.Render(clip(sum.Goal, 40)))
		}
		if i == m.cursor {
			cursor = selectedStyle.Render("> ")
			line = selectedStyle.Render(line)
		}
		b.WriteString(cursor + line + "\n")
	}

	b.WriteString("\n" + footer([][2]string{
		{"enter", "open"}, {"j/k", "move"}, {"r", "refresh"}, {"q", "quit"},
	}))
	return b.String()
}

func (m Model) viewDetail() string {
	p := m.project
	if p == nil {
		return dimStyle.Render("loading...")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(p.ID))
	b.WriteString(dimStyle.Render(" — " + string(p.Mode) + " "))
	b.WriteString(projectStatusBadge(p.Status))
	b.WriteString("\n")
	if p.Goal != "" {
		b.WriteString(subtleStyle.Render(p.Goal) + "\n")
	}
	b.WriteString("\n")

	switch p.Mode {
	case state.ModeDebate:
		b.WriteString(m.viewDebate())
	default:
		b.WriteString(m.viewStages())
	}

	done, total := p.Progress()
	if total > 0 {
		bar := strings.Repeat("█", done) + strings.Repeat("░", total-done)
		b.WriteString("\n" + dimStyle.Render(fmt.Sprintf("[%s] %d/%d", bar, done, total)) + "\n")
	}

	keys := [][2]string{{"esc", "back"}, {"j/k", "move"}, {"r", "reload"}, {"q", "quit"}}
	if p.Mode != state.ModeDebate {
		keys = append([][2]string{{"d", "done"}, {"s", "skip"}, {"f", "fail"}, {"l", "log"}}, keys...)
	}
	b.WriteString("\n" + footer(keys))
	return b.String()
}

// viewStages renders the linear/dag stage list with cursor and ready markers.
func (m Model) viewStages() string {
	p := m.project
	var b strings.Builder

	ready := map[string]bool{}
	if p.Mode == state.ModeDag {
		for _, id := range graph.ReadyTasks(p.Stages) {
			ready[id] = true
		}
	}

	for i, id := range m.stageIDs() {
		st, ok := p.Stages.Get(id)
		if !ok {
			continue
		}
		cursor := "  "
		if i == m.stageCursor {
			cursor = selectedStyle.Render("> ")
		}

		line := fmt.Sprintf("%s %s: %s", stageGlyph(st.Status), id, st.Status)
		if p.Mode == state.ModeLinear && id == p.CurrentStage {
			line += activeStyle.Render("  ◄ current")
		}
		if ready[id] {
			line += doneStyle.Render("  READY")
		}
		if len(st.DependsOn) > 0 {
			line += dimStyle.Render("  ← " + strings.Join(st.DependsOn, ", "))
		}
		b.WriteString(cursor + line + "\n")
		if st.Task != "" {
			b.WriteString("     " + subtleStyle.Render(clip(st.Task, 70)) + "\n")
		}
	}
	return b.String()
}

func (m Model) viewDebate() string {
	p := m.project
	var b strings.Builder

	b.WriteString(subtleStyle.Render(fmt.Sprintf("Debaters: %d", p.Debaters.Len())) + "\n")
	for _, id := range p.Debaters.IDs() {
		d, _ := p.Debaters.Get(id)
		b.WriteString(fmt.Sprintf("  %s %s\n", id, dimStyle.Render("("+d.RoleLabel()+")")))
	}
	b.WriteString("\n")

	if len(p.Rounds) == 0 {
		b.WriteString(dimStyle.Render("No rounds started") + "\n")
		return b.String()
	}

	for i, round := range p.Rounds {
		status := skippedStyle.Render(string(round.Status))
		if round.Status == state.RoundDone {
			status = doneStyle.Render(string(round.Status))
		}
		b.WriteString(fmt.Sprintf("Round %d: %s [%s] (%d/%d responses)\n",
			i+1, round.Type, status, len(round.Responses), p.Debaters.Len()))
		for _, id := range p.Debaters.IDs() {
			if text, ok := round.Responses[id]; ok {
				b.WriteString("  " + id + ": " + subtleStyle.Render(clip(text, 70)) + "\n")
			}
		}
	}
	return b.String()
}

func stageGlyph(st state.StageStatus) string {
	switch st {
	case state.StageDone:
		return doneStyle.Render("✓")
	case state.StageFailed:
		return failedStyle.Render("✗")
	case state.StageInProgress:
		return activeStyle.Render("◐")
	case state.StageSkipped:
		return skippedStyle.Render("»")
	default:
		return dimStyle.Render("○")
	}
}

func projectStatusBadge(st state.ProjectStatus) string {
	switch st {
	case state.ProjectCompleted:
		return doneStyle.Render(string(st))
	case state.ProjectBlocked:
		return failedStyle.Render(string(st))
	default:
		return activeStyle.Render(string(st))
	}
}

func footer(keys [][2]string) string {
	var parts []string
	for _, k := range keys {
		parts = append(parts, footerKeyStyle.Render(k[0])+footerDescStyle.Render(" "+k[1]))
	}
	return strings.Join(parts, footerDescStyle.Render("  ·  "))
}

func clip(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
