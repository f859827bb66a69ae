package state

import (
	"fmt"
	"time"
)

// Mode selects which payload a project carries and which engine drives it.
// Fixed at creation, never changes.
type Mode string

const (
	ModeLinear Mode = "linear" // fixed pipeline order, auto-advance on done
	ModeDag    Mode = "dag"    // tasks declare dependsOn, parallel dispatch
	ModeDebate Mode = "debate" // multi-agent position + cross-review workflow
)

// ParseMode validates a user-supplied mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeLinear, ModeDag, ModeDebate:
		return Mode(s), nil
	}
	return "", fmt.Errorf("mode must be 'linear', 'dag', or 'debate', got %q: %w", s, ErrInvalidTransition)
}

// ProjectStatus is the derived aggregate status, recomputed after every mutation.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectBlocked   ProjectStatus = "blocked"
)

// StageStatus is the lifecycle status of a single stage/task.
type StageStatus string

const (
	StagePending    StageStatus = "pending"
	StageInProgress StageStatus = "in-progress"
	StageDone       StageStatus = "done"
	StageFailed     StageStatus = "failed"
	StageSkipped    StageStatus = "skipped"
)

// ParseStageStatus validates a user-supplied status string.
func ParseStageStatus(s string) (StageStatus, error) {
	switch StageStatus(s) {
	case StagePending, StageInProgress, StageDone, StageFailed, StageSkipped:
		return StageStatus(s), nil
	}
	return "", fmt.Errorf("status must be pending|in-progress|done|failed|skipped, got %q: %w", s, ErrInvalidTransition)
}

// Terminal reports whether the status ends a stage's run.
func (s StageStatus) Terminal() bool {
	return s == StageDone || s == StageFailed || s == StageSkipped
}

// Satisfies reports whether a dependency in this status unblocks its
// dependents. Skipped counts so a skipped prerequisite does not permanently
// stall downstream work; failed never does.
func (s StageStatus) Satisfies() bool {
	return s == StageDone || s == StageSkipped
}

// LogEntry is one append-only history record on a stage.
type LogEntry struct {
	Time  time.Time `json:"time"`
	Event string    `json:"event"`
}

// Stage is a unit of work owned by one agent. The same shape serves linear
// pipeline stages and DAG tasks; DependsOn is only populated in dag mode.
type Stage struct {
	Agent       string      `json:"agent"`
	Status      StageStatus `json:"status"`
	Task        string      `json:"task"` // description; key matches the shared file format
	StartedAt   *time.Time  `json:"startedAt"`
	CompletedAt *time.Time  `json:"completedAt"`
	Output      string      `json:"output"`
	Logs        []LogEntry  `json:"logs"`
	DependsOn   []string    `json:"dependsOn,omitempty"`
}

// NewStage returns a pending stage for the given agent.
func NewStage(agent string) *Stage {
	return &Stage{
		Agent:  agent,
		Status: StagePending,
		Logs:   []LogEntry{},
	}
}

// Log appends a history entry. Logs are never reordered or truncated.
func (s *Stage) Log(at time.Time, event string) {
	s.Logs = append(s.Logs, LogEntry{Time: at, Event: event})
}

// Reset returns the stage to pending, clearing timestamps and output but
// preserving the log history plus one new "reset" entry.
func (s *Stage) Reset(at time.Time) {
	s.Status = StagePending
	s.StartedAt = nil
	s.CompletedAt = nil
	s.Output = ""
	s.Log(at, "reset to pending")
}

// RoundType distinguishes the two debate phases that create rounds.
// Synthesis is an observation point, not a round, so it has no type here.
type RoundType string

const (
	RoundInitial     RoundType = "initial"
	RoundCrossReview RoundType = "cross-review"
)

// RoundStatus is the lifecycle of a debate round.
type RoundStatus string

const (
	RoundInProgress RoundStatus = "in-progress"
	RoundDone       RoundStatus = "done"
)

// Round is one phase of the debate protocol collecting one response per
// debater. Responses maps debater ID to submitted text and is the
// authoritative per-round view.
type Round struct {
	Type        RoundType         `json:"type"`
	Status      RoundStatus       `json:"status"`
	Responses   map[string]string `json:"responses"`
	StartedAt   *time.Time        `json:"startedAt"`
	CompletedAt *time.Time        `json:"completedAt"`
}

// NewRound returns an in-progress round with no responses yet.
func NewRound(t RoundType, at time.Time) *Round {
	started := at
	return &Round{
		Type:      t,
		Status:    RoundInProgress,
		Responses: map[string]string{},
		StartedAt: &started,
	}
}

// DebaterResponse is one entry in a debater's personal history. At most one
// entry exists per (round, type) pair; later submissions overwrite in place.
type DebaterResponse struct {
	Round    int       `json:"round"`
	Type     RoundType `json:"type"`
	Response string    `json:"response"`
	Time     time.Time `json:"time"`
}

// Debater is a registered participant in a debate project.
type Debater struct {
	Role      string            `json:"role"`
	Responses []DebaterResponse `json:"responses"`
}

// RoleLabel returns the role for display, with a fallback for unset roles.
func (d *Debater) RoleLabel() string {
	if d.Role == "" {
		return "no role specified"
	}
	return d.Role
}

// Record upserts the response for (round, type) in the debater's history.
func (d *Debater) Record(round int, t RoundType, text string, at time.Time) {
	for i := range d.Responses {
		if d.Responses[i].Round == round && d.Responses[i].Type == t {
			d.Responses[i].Response = text
			d.Responses[i].Time = at
			return
		}
	}
	d.Responses = append(d.Responses, DebaterResponse{
		Round:    round,
		Type:     t,
		Response: text,
		Time:     at,
	})
}

// Project is the root aggregate, one per project ID. Exactly one mode payload
// is populated, selected by Mode. The JSON keys match the flat file format
// shared with agent tooling.
type Project struct {
	ID        string        `json:"project"`
	Goal      string        `json:"goal"`
	Created   time.Time     `json:"created"`
	Updated   time.Time     `json:"updated"`
	Status    ProjectStatus `json:"status"`
	Mode      Mode          `json:"mode"`
	Workspace string        `json:"workspace"`

	// Rev is an opaque revision token regenerated on every save. It exists so
	// an optimistic-versioning layer can reject stale writes; the engines
	// themselves never read it.
	Rev string `json:"rev,omitempty"`

	// Linear payload. Pipeline is the fixed stage order; CurrentStage is the
	// cursor, empty once the pipeline has completed.
	Pipeline     []string `json:"pipeline,omitempty"`
	CurrentStage string   `json:"currentStage,omitempty"`

	// Shared by linear and dag modes.
	Stages *StageSet `json:"stages,omitempty"`

	// Debate payload. CurrentRound is 1-based; 0 means no round yet.
	Debaters     *DebaterSet `json:"debaters,omitempty"`
	Rounds       []*Round    `json:"rounds,omitempty"`
	CurrentRound int         `json:"currentRound,omitempty"`
}

// NewProject creates an active project of the given mode with its payload
// containers initialized. pipeline is only consulted in linear mode.
func NewProject(id string, mode Mode, goal, workspace string, pipeline []string, at time.Time) *Project {
	p := &Project{
		ID:        id,
		Goal:      goal,
		Created:   at,
		Updated:   at,
		Status:    ProjectActive,
		Mode:      mode,
		Workspace: workspace,
	}
	switch mode {
	case ModeLinear:
		p.Pipeline = pipeline
		p.Stages = NewStageSet()
		for _, agent := range pipeline {
			p.Stages.Put(agent, NewStage(agent))
		}
		if len(pipeline) > 0 {
			p.CurrentStage = pipeline[0]
		}
	case ModeDag:
		p.Stages = NewStageSet()
	case ModeDebate:
		p.Debaters = NewDebaterSet()
		p.Rounds = []*Round{}
	}
	return p
}

// Touch stamps the record as mutated.
func (p *Project) Touch(at time.Time) {
	p.Updated = at
}

// Progress counts stages in a satisfying terminal state against the total.
// Debate projects have no stages; both counts are zero there.
func (p *Project) Progress() (done, total int) {
	if p.Stages == nil {
		return 0, 0
	}
	for _, id := range p.Stages.IDs() {
		st, _ := p.Stages.Get(id)
		total++
		if st.Status.Satisfies() {
			done++
		}
	}
	return done, total
}

// CurrentRoundData returns the active round, or nil when no round is in scope.
func (p *Project) CurrentRoundData() *Round {
	idx := p.CurrentRound - 1
	if idx < 0 || idx >= len(p.Rounds) {
		return nil
	}
	return p.Rounds[idx]
}
