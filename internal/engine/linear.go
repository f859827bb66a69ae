package engine

import (
	"github.com/imkarma/relay/internal/state"
)

// applyLinearUpdate applies the pipeline transition rules after a stage
// status change.
//
// Only the stage under the cursor drives advancement: stages may be updated
// out of order by agents reporting late, but marking an already-passed stage
// Done never rewinds or re-advances the cursor. Marking any stage Failed
// blocks the project without moving the cursor; an operator has to step in
// with a fix, reset, or retry.
func applyLinearUpdate(p *state.Project, stageID string, to state.StageStatus) {
	switch to {
	case state.StageDone:
		if stageID != p.CurrentStage {
			return
		}
		idx := pipelineIndex(p.Pipeline, stageID)
		if idx < 0 {
			return
		}
		if idx == len(p.Pipeline)-1 {
			p.CurrentStage = ""
			p.Status = state.ProjectCompleted
			return
		}
		p.CurrentStage = p.Pipeline[idx+1]
	case state.StageFailed:
		p.Status = state.ProjectBlocked
	}
}

// NextStageResult describes the stage under the linear cursor. StageID is
// empty when the pipeline has completed or lost its cursor.
type NextStageResult struct {
	ProjectStatus state.ProjectStatus
	StageID       string
	Agent         string
	Task          string
	Status        state.StageStatus
	Workspace     string
}

// NextStage returns the next actionable stage of a linear pipeline.
func (e *Engine) NextStage(projectID string) (*NextStageResult, error) {
	p, err := e.store.Load(projectID)
	if err != nil {
		return nil, err
	}
	if err := requireMode(p, state.ModeLinear, "next"); err != nil {
		return nil, err
	}

	res := &NextStageResult{
		ProjectStatus: p.Status,
		StageID:       p.CurrentStage,
		Workspace:     p.Workspace,
	}
	if p.CurrentStage == "" {
		return res, nil
	}
	if st, ok := p.Stages.Get(p.CurrentStage); ok {
		res.Agent = st.Agent
		res.Task = st.Task
		res.Status = st.Status
	}
	return res, nil
}

func pipelineIndex(pipeline []string, stageID string) int {
	for i, id := range pipeline {
		if id == stageID {
			return i
		}
	}
	return -1
}
