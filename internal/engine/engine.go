// Package engine implements the workflow state machines over a flat persisted
// project record: the linear pipeline, the dependency-graph pipeline, and the
// multi-round debate protocol. Engine is the single operation surface the
// commands call; every operation read-loads the whole record, applies one
// transition, and writes the whole record back, or fails before anything is
// persisted.
package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/imkarma/relay/internal/state"
)

// Store is the persistence collaborator. Load reports unknown projects by
// wrapping state.ErrNotFound.
type Store interface {
	Load(id string) (*state.Project, error)
	Save(p *state.Project) error
	Exists(id string) bool
}

// Engine applies state transitions to project records. It holds no state of
// its own beyond its collaborators; concurrent external writers are not
// serialized here: the later whole-record write wins.
type Engine struct {
	store Store
	now   func() time.Time

	// Guard, if set, runs on the freshly loaded record before any mutation is
	// applied. A stronger-consistency layer can use it to reject stale
	// revisions (compare p.Rev against an expected token) without touching
	// the state-machine logic. A Guard error aborts the operation unwritten.
	Guard func(p *state.Project) error
}

// New creates an engine over the given store with a UTC wall clock.
func New(store Store) *Engine {
	return &Engine{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// mutate is the single write path: load, guard, apply, stamp, save.
func (e *Engine) mutate(id string, fn func(p *state.Project) error) (*state.Project, error) {
	p, err := e.store.Load(id)
	if err != nil {
		return nil, err
	}
	if e.Guard != nil {
		if err := e.Guard(p); err != nil {
			return nil, err
		}
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	p.Touch(e.now())
	p.Rev = uuid.NewString()
	if err := e.store.Save(p); err != nil {
		return nil, err
	}
	return p, nil
}

// requireMode gates an operation to one project mode.
func requireMode(p *state.Project, want state.Mode, op string) error {
	if p.Mode != want {
		return fmt.Errorf("'%s' requires a %s project, %q is %s: %w", op, want, p.ID, p.Mode, state.ErrWrongMode)
	}
	return nil
}

// requireStageMode gates an operation to the modes that carry stages.
func requireStageMode(p *state.Project, op string) error {
	if p.Mode == state.ModeDebate {
		return fmt.Errorf("'%s' is not supported for debate projects: %w", op, state.ErrWrongMode)
	}
	return nil
}

func stageOf(p *state.Project, stageID string) (*state.Stage, error) {
	st, ok := p.Stages.Get(stageID)
	if !ok {
		return nil, fmt.Errorf("stage %q: %w", stageID, state.ErrNotFound)
	}
	return st, nil
}

// CreateOptions carries the optional fields of project creation.
type CreateOptions struct {
	Goal      string
	Workspace string
	Pipeline  []string // linear mode only; stage order, fixed thereafter
	Force     bool     // overwrite an existing record
}

// CreateProject initializes a new project record. The mode is fixed for the
// project's lifetime. Without Force, re-initializing an existing project
// fails with AlreadyExists.
func (e *Engine) CreateProject(id string, mode state.Mode, opts CreateOptions) (*state.Project, error) {
	if e.store.Exists(id) && !opts.Force {
		return nil, fmt.Errorf("project %q: %w (use --force to overwrite)", id, state.ErrAlreadyExists)
	}
	p := state.NewProject(id, mode, opts.Goal, opts.Workspace, opts.Pipeline, e.now())
	p.Rev = uuid.NewString()
	if err := e.store.Save(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Status returns the full project record.
func (e *Engine) Status(id string) (*state.Project, error) {
	return e.store.Load(id)
}

// Assign sets the task description of a stage.
func (e *Engine) Assign(projectID, stageID, text string) (*state.Project, error) {
	return e.mutate(projectID, func(p *state.Project) error {
		if err := requireStageMode(p, "assign"); err != nil {
			return err
		}
		st, err := stageOf(p, stageID)
		if err != nil {
			return err
		}
		st.Task = text
		return nil
	})
}

// AppendLog adds a history entry to a stage.
func (e *Engine) AppendLog(projectID, stageID, message string) (*state.Project, error) {
	return e.mutate(projectID, func(p *state.Project) error {
		if err := requireStageMode(p, "log"); err != nil {
			return err
		}
		st, err := stageOf(p, stageID)
		if err != nil {
			return err
		}
		st.Log(e.now(), message)
		return nil
	})
}

// SetOutput records the result text of a stage.
func (e *Engine) SetOutput(projectID, stageID, output string) (*state.Project, error) {
	return e.mutate(projectID, func(p *state.Project) error {
		if err := requireStageMode(p, "result"); err != nil {
			return err
		}
		st, err := stageOf(p, stageID)
		if err != nil {
			return err
		}
		st.Output = output
		return nil
	})
}

// History returns the log entries of a stage.
func (e *Engine) History(projectID, stageID string) ([]state.LogEntry, error) {
	p, err := e.store.Load(projectID)
	if err != nil {
		return nil, err
	}
	if err := requireStageMode(p, "history"); err != nil {
		return nil, err
	}
	st, err := stageOf(p, stageID)
	if err != nil {
		return nil, err
	}
	return st.Logs, nil
}

// ResetResult reports which stages a reset touched.
type ResetResult struct {
	Project *state.Project
	Stages  []string
}

// Reset restores one stage to pending, or every stage when all is true.
// In linear mode the cursor returns to the first pipeline stage and the
// project becomes active again; in dag mode the aggregate status is
// re-derived from the stage mapping.
func (e *Engine) Reset(projectID, stageID string, all bool) (*ResetResult, error) {
	res := &ResetResult{}
	p, err := e.mutate(projectID, func(p *state.Project) error {
		if err := requireStageMode(p, "reset"); err != nil {
			return err
		}

		var targets []string
		if all {
			targets = append(targets, p.Stages.IDs()...)
		} else {
			if _, err := stageOf(p, stageID); err != nil {
				return err
			}
			targets = []string{stageID}
		}

		now := e.now()
		for _, id := range targets {
			st, _ := p.Stages.Get(id)
			st.Reset(now)
		}
		res.Stages = targets

		if p.Mode == state.ModeLinear {
			p.CurrentStage = ""
			if len(p.Pipeline) > 0 {
				p.CurrentStage = p.Pipeline[0]
			}
			p.Status = state.ProjectActive
		} else {
			p.Status = deriveDagStatus(p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	res.Project = p
	return res, nil
}

// UpdateResult reports a status transition and its downstream effects.
type UpdateResult struct {
	Project *state.Project
	StageID string
	From    state.StageStatus
	To      state.StageStatus

	// Dag mode: the ready set after the update.
	Unblocked []string

	// Linear mode: the cursor after the update, empty when none.
	NextStage string
}

// UpdateStatus changes a stage's status and applies the mode's transition
// rules: cursor advancement and completion in linear mode, aggregate status
// derivation and ready-set recomputation in dag mode. StartedAt is stamped on
// first entry into InProgress, CompletedAt on first entry into a terminal
// status; only an explicit reset clears them.
func (e *Engine) UpdateStatus(projectID, stageID string, newStatus state.StageStatus) (*UpdateResult, error) {
	res := &UpdateResult{StageID: stageID, To: newStatus}
	p, err := e.mutate(projectID, func(p *state.Project) error {
		if err := requireStageMode(p, "update"); err != nil {
			return err
		}
		if _, err := state.ParseStageStatus(string(newStatus)); err != nil {
			return err
		}
		st, err := stageOf(p, stageID)
		if err != nil {
			return err
		}

		now := e.now()
		res.From = st.Status
		st.Status = newStatus
		if newStatus == state.StageInProgress && st.StartedAt == nil {
			t := now
			st.StartedAt = &t
		}
		if newStatus.Terminal() && st.CompletedAt == nil {
			t := now
			st.CompletedAt = &t
		}
		st.Log(now, fmt.Sprintf("status: %s → %s", res.From, newStatus))

		switch p.Mode {
		case state.ModeDag:
			applyDagUpdate(p, res)
		case state.ModeLinear:
			applyLinearUpdate(p, stageID, newStatus)
			res.NextStage = p.CurrentStage
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	res.Project = p
	return res, nil
}
