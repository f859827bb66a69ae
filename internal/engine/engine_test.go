package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/imkarma/relay/internal/state"
	"github.com/imkarma/relay/internal/store"
)

var testClock = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// testEngine creates an engine over a temp-dir store with a fixed clock.
func testEngine(t *testing.T) *Engine {
	e, _ := testEngineStore(t)
	return e
}

func testEngineStore(t *testing.T) (*Engine, *store.Store) {
	t.Helper()
	s, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	e := New(s)
	e.now = func() time.Time { return testClock }
	return e, s
}

func TestCreateProject(t *testing.T) {
	e := testEngine(t)

	p, err := e.CreateProject("api", state.ModeLinear, CreateOptions{
		Goal:     "ship the API",
		Pipeline: []string{"code", "test"},
	})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if p.Status != state.ProjectActive {
		t.Errorf("expected active, got %s", p.Status)
	}
	if p.CurrentStage != "code" {
		t.Errorf("expected cursor at code, got %q", p.CurrentStage)
	}
	if p.Rev == "" {
		t.Error("expected a revision token")
	}

	// The record persisted.
	got, err := e.Status("api")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if got.Goal != "ship the API" {
		t.Errorf("goal not persisted: %q", got.Goal)
	}
}

func TestCreateProject_AlreadyExists(t *testing.T) {
	e := testEngine(t)

	if _, err := e.CreateProject("dup", state.ModeDag, CreateOptions{}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := e.CreateProject("dup", state.ModeDag, CreateOptions{})
	if !errors.Is(err, state.ErrAlreadyExists) {
		t.Errorf("expected AlreadyExists, got %v", err)
	}
}

func TestCreateProject_ForceOverwrites(t *testing.T) {
	e := testEngine(t)

	e.CreateProject("p", state.ModeLinear, CreateOptions{Pipeline: []string{"a"}})
	p, err := e.CreateProject("p", state.ModeDag, CreateOptions{Force: true})
	if err != nil {
		t.Fatalf("force create: %v", err)
	}
	if p.Mode != state.ModeDag {
		t.Errorf("expected dag after overwrite, got %s", p.Mode)
	}
}

func TestStatus_NotFound(t *testing.T) {
	e := testEngine(t)

	_, err := e.Status("ghost")
	if !errors.Is(err, state.ErrNotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestAssignAndLog(t *testing.T) {
	e := testEngine(t)
	e.CreateProject("p", state.ModeLinear, CreateOptions{Pipeline: []string{"code"}})

	if _, err := e.Assign("p", "code", "implement the parser"); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if _, err := e.AppendLog("p", "code", "starting work"); err != nil {
		t.Fatalf("AppendLog: %v", err)
	}

	p, _ := e.Status("p")
	st, _ := p.Stages.Get("code")
	if st.Task != "implement the parser" {
		t.Errorf("task not set: %q", st.Task)
	}

	logs, err := e.History("p", "code")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(logs) != 1 || logs[0].Event != "starting work" {
		t.Errorf("unexpected history: %+v", logs)
	}
}

func TestAssign_UnknownStage(t *testing.T) {
	e := testEngine(t)
	e.CreateProject("p", state.ModeLinear, CreateOptions{Pipeline: []string{"code"}})

	_, err := e.Assign("p", "ghost", "text")
	if !errors.Is(err, state.ErrNotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestSetOutput(t *testing.T) {
	e := testEngine(t)
	e.CreateProject("p", state.ModeDag, CreateOptions{})
	e.AddTask("p", "a", "", nil, "")

	if _, err := e.SetOutput("p", "a", "artifact at /tmp/a"); err != nil {
		t.Fatalf("SetOutput: %v", err)
	}
	p, _ := e.Status("p")
	st, _ := p.Stages.Get("a")
	if st.Output != "artifact at /tmp/a" {
		t.Errorf("output not set: %q", st.Output)
	}
}

func TestStageOps_RejectDebateMode(t *testing.T) {
	e := testEngine(t)
	e.CreateProject("d", state.ModeDebate, CreateOptions{})

	if _, err := e.Assign("d", "x", "t"); !errors.Is(err, state.ErrWrongMode) {
		t.Errorf("assign: expected WrongMode, got %v", err)
	}
	if _, err := e.UpdateStatus("d", "x", state.StageDone); !errors.Is(err, state.ErrWrongMode) {
		t.Errorf("update: expected WrongMode, got %v", err)
	}
	if _, err := e.Reset("d", "x", false); !errors.Is(err, state.ErrWrongMode) {
		t.Errorf("reset: expected WrongMode, got %v", err)
	}
}

func TestUpdateStatus_InvalidStatus(t *testing.T) {
	e := testEngine(t)
	e.CreateProject("p", state.ModeLinear, CreateOptions{Pipeline: []string{"a"}})

	_, err := e.UpdateStatus("p", "a", state.StageStatus("finished"))
	if !errors.Is(err, state.ErrInvalidTransition) {
		t.Errorf("expected InvalidTransition, got %v", err)
	}

	// Nothing was written.
	p, _ := e.Status("p")
	st, _ := p.Stages.Get("a")
	if st.Status != state.StagePending {
		t.Errorf("failed update must not persist, got %s", st.Status)
	}
}

func TestUpdateStatus_TimestampsSetOnce(t *testing.T) {
	e := testEngine(t)
	e.CreateProject("p", state.ModeLinear, CreateOptions{Pipeline: []string{"a", "b"}})

	e.UpdateStatus("p", "a", state.StageInProgress)
	firstStart := testClock

	// Move the clock and re-enter in-progress; StartedAt must not move.
	e.now = func() time.Time { return testClock.Add(time.Hour) }
	e.UpdateStatus("p", "a", state.StagePending)
	e.UpdateStatus("p", "a", state.StageInProgress)

	p, _ := e.Status("p")
	st, _ := p.Stages.Get("a")
	if st.StartedAt == nil || !st.StartedAt.Equal(firstStart) {
		t.Errorf("StartedAt moved: %v", st.StartedAt)
	}

	// Same for CompletedAt across repeated terminal statuses.
	e.UpdateStatus("p", "a", state.StageFailed)
	e.now = func() time.Time { return testClock.Add(2 * time.Hour) }
	e.UpdateStatus("p", "a", state.StageDone)

	p, _ = e.Status("p")
	st, _ = p.Stages.Get("a")
	if st.CompletedAt == nil || !st.CompletedAt.Equal(testClock.Add(time.Hour)) {
		t.Errorf("CompletedAt moved: %v", st.CompletedAt)
	}
}

func TestUpdateStatus_LogsTransition(t *testing.T) {
	e := testEngine(t)
	e.CreateProject("p", state.ModeLinear, CreateOptions{Pipeline: []string{"a"}})

	e.UpdateStatus("p", "a", state.StageInProgress)

	logs, _ := e.History("p", "a")
	if len(logs) != 1 || logs[0].Event != "status: pending → in-progress" {
		t.Errorf("unexpected transition log: %+v", logs)
	}
}

func TestReset_SingleStage(t *testing.T) {
	e := testEngine(t)
	e.CreateProject("p", state.ModeLinear, CreateOptions{Pipeline: []string{"a", "b"}})
	e.UpdateStatus("p", "a", state.StageFailed)

	res, err := e.Reset("p", "a", false)
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if len(res.Stages) != 1 || res.Stages[0] != "a" {
		t.Errorf("unexpected reset targets: %v", res.Stages)
	}
	if res.Project.Status != state.ProjectActive {
		t.Errorf("expected active after reset, got %s", res.Project.Status)
	}
	if res.Project.CurrentStage != "a" {
		t.Errorf("cursor should return to pipeline start, got %q", res.Project.CurrentStage)
	}
	st, _ := res.Project.Stages.Get("a")
	if st.Status != state.StagePending {
		t.Errorf("stage not reset: %s", st.Status)
	}
}

func TestReset_All(t *testing.T) {
	e := testEngine(t)
	e.CreateProject("p", state.ModeLinear, CreateOptions{Pipeline: []string{"a", "b"}})
	e.UpdateStatus("p", "a", state.StageDone)
	e.UpdateStatus("p", "b", state.StageDone)

	res, err := e.Reset("p", "", true)
	if err != nil {
		t.Fatalf("Reset all: %v", err)
	}
	if len(res.Stages) != 2 {
		t.Errorf("expected 2 reset targets, got %v", res.Stages)
	}
	done, total := res.Project.Progress()
	if done != 0 || total != 2 {
		t.Errorf("expected 0/2 after reset, got %d/%d", done, total)
	}
}

func TestGuard_RejectsBeforeMutation(t *testing.T) {
	e := testEngine(t)
	e.CreateProject("p", state.ModeLinear, CreateOptions{Pipeline: []string{"a"}})

	guardErr := errors.New("stale revision")
	e.Guard = func(p *state.Project) error { return guardErr }

	_, err := e.Assign("p", "a", "text")
	if !errors.Is(err, guardErr) {
		t.Errorf("expected guard error, got %v", err)
	}

	e.Guard = nil
	p, _ := e.Status("p")
	st, _ := p.Stages.Get("a")
	if st.Task != "" {
		t.Errorf("guarded mutation leaked: %q", st.Task)
	}
}

func TestRev_ChangesOnEveryWrite(t *testing.T) {
	e := testEngine(t)
	p1, _ := e.CreateProject("p", state.ModeLinear, CreateOptions{Pipeline: []string{"a"}})
	p2, _ := e.Assign("p", "a", "text")

	if p1.Rev == p2.Rev {
		t.Error("revision token should change on write")
	}
}
