package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/imkarma/relay/internal/state"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case projectsLoadedMsg:
		m.summaries = msg.summaries
		m.clampCursors()
		return m, nil

	case projectLoadedMsg:
		m.project = msg.project
		m.scr = screenDetail
		m.clampCursors()
		return m, nil

	case noteMsg:
		m.statusMsg = string(msg)
		return m, nil

	case tea.KeyMsg:
		if m.logging {
			return m.updateLogInput(msg)
		}
		switch m.scr {
		case screenList:
			return m.updateList(msg)
		case screenDetail:
			return m.updateDetail(msg)
		}
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "j", "down":
		m.cursor++
		m.clampCursors()
	case "k", "up":
		m.cursor--
		m.clampCursors()
	case "r":
		return m, m.refreshProjects()
	case "enter":
		if m.cursor < len(m.summaries) {
			sum := m.summaries[m.cursor]
			if !sum.Err {
				m.stageCursor = 0
				return m, m.loadProject(sum.ID)
			}
		}
	}
	return m, nil
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "esc":
		m.scr = screenList
		m.project = nil
		m.statusMsg = ""
		return m, m.refreshProjects()
	case "j", "down":
		m.stageCursor++
		m.clampCursors()
	case "k", "up":
		m.stageCursor--
		m.clampCursors()
	case "r":
		return m, m.loadProject(m.project.ID)
	case "d":
		return m.updateStage(state.StageDone)
	case "s":
		return m.updateStage(state.StageSkipped)
	case "f":
		return m.updateStage(state.StageFailed)
	case "l":
		if m.selectedStage() != "" {
			m.logging = true
			m.logInput.SetValue("")
			m.logInput.Focus()
		}
	}
	return m, nil
}

// updateStage marks the selected stage and reloads the record.
func (m Model) updateStage(to state.StageStatus) (tea.Model, tea.Cmd) {
	stageID := m.selectedStage()
	if stageID == "" || m.project.Mode == state.ModeDebate {
		return m, nil
	}
	id := m.project.ID
	return m, func() tea.Msg {
		if _, err := m.eng.UpdateStatus(id, stageID, to); err != nil {
			return noteMsg("Error: " + err.Error())
		}
		p, err := m.eng.Status(id)
		if err != nil {
			return noteMsg("Error: " + err.Error())
		}
		return projectLoadedMsg{project: p}
	}
}

func (m Model) updateLogInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.logging = false
		m.logInput.Blur()
		return m, nil
	case "enter":
		message := m.logInput.Value()
		m.logging = false
		m.logInput.Blur()
		if message == "" {
			return m, nil
		}
		stageID := m.selectedStage()
		id := m.project.ID
		return m, func() tea.Msg {
			if _, err := m.eng.AppendLog(id, stageID, message); err != nil {
				return noteMsg("Error: " + err.Error())
			}
			p, err := m.eng.Status(id)
			if err != nil {
				return noteMsg("Error: " + err.Error())
			}
			return projectLoadedMsg{project: p}
		}
	}

	var cmd tea.Cmd
	m.logInput, cmd = m.logInput.Update(msg)
	return m, cmd
}
