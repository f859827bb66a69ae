package engine

import (
	"fmt"

	"github.com/imkarma/relay/internal/graph"
	"github.com/imkarma/relay/internal/state"
)

// applyDagUpdate re-derives the aggregate status wholesale and recomputes the
// ready set for the caller to report.
func applyDagUpdate(p *state.Project, res *UpdateResult) {
	p.Status = deriveDagStatus(p)
	res.Unblocked = graph.ReadyTasks(p.Stages)
}

func deriveDagStatus(p *state.Project) state.ProjectStatus {
	return graph.DeriveStatus(p.Stages)
}

// AddTaskResult reports a committed task addition.
type AddTaskResult struct {
	Project   *state.Project
	TaskID    string
	Agent     string
	DependsOn []string
}

// AddTask adds a task to a dag project. Referenced dependencies must already
// exist; the stage is inserted tentatively and rolled back if the cycle check
// finds that the addition closes a loop, in which case the error carries the
// offending cycle path.
func (e *Engine) AddTask(projectID, taskID, agent string, dependsOn []string, desc string) (*AddTaskResult, error) {
	if agent == "" {
		agent = taskID
	}
	res := &AddTaskResult{TaskID: taskID, Agent: agent, DependsOn: dependsOn}
	p, err := e.mutate(projectID, func(p *state.Project) error {
		if err := requireMode(p, state.ModeDag, "add"); err != nil {
			return err
		}
		if p.Stages.Has(taskID) {
			return fmt.Errorf("task %q: %w", taskID, state.ErrAlreadyExists)
		}
		for _, dep := range dependsOn {
			if !p.Stages.Has(dep) {
				return fmt.Errorf("dependency %q not found, add it first: %w", dep, state.ErrNotFound)
			}
		}

		st := state.NewStage(agent)
		st.Task = desc
		st.DependsOn = dependsOn
		p.Stages.Put(taskID, st)

		if cycle := graph.DetectCycle(p.Stages); cycle != nil {
			p.Stages.Delete(taskID)
			return fmt.Errorf("adding %q: %w", taskID, &state.CycleError{Path: cycle})
		}

		p.Status = deriveDagStatus(p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	res.Project = p
	return res, nil
}

// ReadyTask is one dispatchable task with the context an agent needs to pick
// it up: dependency outputs and the shared workspace.
type ReadyTask struct {
	TaskID     string
	Agent      string
	Task       string
	DependsOn  []string
	DepOutputs map[string]string
	Workspace  string
}

// ReadySet is the ready-task query result. InProgress lists what the caller
// is waiting on when nothing is ready.
type ReadySet struct {
	ProjectStatus state.ProjectStatus
	Tasks         []ReadyTask
	InProgress    []string
}

// ReadyTasks returns all tasks whose dependencies are met, with each
// dependency's recorded output attached.
func (e *Engine) ReadyTasks(projectID string) (*ReadySet, error) {
	p, err := e.store.Load(projectID)
	if err != nil {
		return nil, err
	}
	if err := requireMode(p, state.ModeDag, "ready"); err != nil {
		return nil, err
	}

	res := &ReadySet{ProjectStatus: p.Status}
	for _, id := range graph.ReadyTasks(p.Stages) {
		st, _ := p.Stages.Get(id)
		entry := ReadyTask{
			TaskID:    id,
			Agent:     st.Agent,
			Task:      st.Task,
			DependsOn: st.DependsOn,
			Workspace: p.Workspace,
		}
		for _, dep := range st.DependsOn {
			depStage, ok := p.Stages.Get(dep)
			if ok && depStage.Output != "" {
				if entry.DepOutputs == nil {
					entry.DepOutputs = map[string]string{}
				}
				entry.DepOutputs[dep] = depStage.Output
			}
		}
		res.Tasks = append(res.Tasks, entry)
	}
	if len(res.Tasks) == 0 {
		for _, id := range p.Stages.IDs() {
			st, _ := p.Stages.Get(id)
			if st.Status == state.StageInProgress {
				res.InProgress = append(res.InProgress, id)
			}
		}
	}
	return res, nil
}

// GraphView pairs a project with its reconstructed dependency forest.
type GraphView struct {
	Project *state.Project
	Forest  graph.Forest
}

// Graph reconstructs the forest view of a dag project, rooted at tasks with
// no dependencies. Unreachable tasks are reported in the forest's orphan
// list rather than dropped.
func (e *Engine) Graph(projectID string) (*GraphView, error) {
	p, err := e.store.Load(projectID)
	if err != nil {
		return nil, err
	}
	if err := requireMode(p, state.ModeDag, "graph"); err != nil {
		return nil, err
	}
	return &GraphView{Project: p, Forest: graph.BuildForest(p.Stages)}, nil
}
