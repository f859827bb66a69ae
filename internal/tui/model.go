package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/imkarma/relay/internal/engine"
	"github.com/imkarma/relay/internal/state"
	"github.com/imkarma/relay/internal/store"
)

// screen represents which view the TUI is showing.
type screen int

const (
	screenList   screen = iota // all projects
	screenDetail               // one project
)

// Model is the top-level bubbletea model.
type Model struct {
	eng *engine.Engine
	st  *store.Store

	width  int
	height int
	scr    screen

	// Project list state.
	summaries []store.Summary
	cursor    int

	// Detail state.
	project     *state.Project
	stageCursor int

	// Log input popup.
	logInput textinput.Model
	logging  bool

	// Status message at the bottom.
	statusMsg string

	quitting bool
}

// New creates a new TUI model.
func New(eng *engine.Engine, st *store.Store) Model {
	li := textinput.New()
	li.Placeholder = "Log message..."
	li.CharLimit = 200
	li.Width = 50

	return Model{
		eng:      eng,
		st:       st,
		scr:      screenList,
		logInput: li,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.refreshProjects()
}

type projectsLoadedMsg struct {
	summaries []store.Summary
}

type projectLoadedMsg struct {
	project *state.Project
}

type noteMsg string

func (m Model) refreshProjects() tea.Cmd {
	return func() tea.Msg {
		summaries, err := m.st.List()
		if err != nil {
			return noteMsg("Error listing projects: " + err.Error())
		}
		return projectsLoadedMsg{summaries: summaries}
	}
}

func (m Model) loadProject(id string) tea.Cmd {
	return func() tea.Msg {
		p, err := m.eng.Status(id)
		if err != nil {
			return noteMsg("Error loading project: " + err.Error())
		}
		return projectLoadedMsg{project: p}
	}
}

// stageIDs returns the stage IDs of the open project in display order.
func (m *Model) stageIDs() []string {
	if m.project == nil || m.project.Stages == nil {
		return nil
	}
	if m.project.Mode == state.ModeLinear {
		return m.project.Pipeline
	}
	return m.project.Stages.IDs()
}

func (m *Model) selectedStage() string {
	ids := m.stageIDs()
	if m.stageCursor >= 0 && m.stageCursor < len(ids) {
		return ids[m.stageCursor]
	}
	return ""
}

func (m *Model) clampCursors() {
	if m.cursor >= len(m.summaries) {
		m.cursor = len(m.summaries) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	ids := m.stageIDs()
	if m.stageCursor >= len(ids) {
		m.stageCursor = len(ids) - 1
	}
	if m.stageCursor < 0 {
		m.stageCursor = 0
	}
}
