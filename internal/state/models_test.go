package state

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

var testTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestParseMode(t *testing.T) {
	for _, valid := range []string{"linear", "dag", "debate"} {
		m, err := ParseMode(valid)
		if err != nil {
			t.Errorf("ParseMode(%q): %v", valid, err)
		}
		if string(m) != valid {
			t.Errorf("ParseMode(%q) = %q", valid, m)
		}
	}

	if _, err := ParseMode("kanban"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestParseStageStatus(t *testing.T) {
	for _, valid := range []string{"pending", "in-progress", "done", "failed", "skipped"} {
		if _, err := ParseStageStatus(valid); err != nil {
			t.Errorf("ParseStageStatus(%q): %v", valid, err)
		}
	}
	if _, err := ParseStageStatus("complete"); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestStageStatus_Satisfies(t *testing.T) {
	cases := map[StageStatus]bool{
		StagePending:    false,
		StageInProgress: false,
		StageDone:       true,
		StageFailed:     false,
		StageSkipped:    true,
	}
	for status, want := range cases {
		if got := status.Satisfies(); got != want {
			t.Errorf("%s.Satisfies() = %v, want %v", status, got, want)
		}
	}
}

func TestStage_Reset(t *testing.T) {
	st := NewStage("worker")
	st.Status = StageFailed
	started := testTime
	st.StartedAt = &started
	st.CompletedAt = &started
	st.Output = "partial result"
	st.Log(testTime, "status: pending → failed")

	st.Reset(testTime.Add(time.Hour))

	if st.Status != StagePending {
		t.Errorf("expected pending after reset, got %s", st.Status)
	}
	if st.StartedAt != nil || st.CompletedAt != nil {
		t.Error("timestamps not cleared")
	}
	if st.Output != "" {
		t.Errorf("output not cleared: %q", st.Output)
	}
	// History is preserved and the reset itself is recorded.
	if len(st.Logs) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(st.Logs))
	}
	if st.Logs[1].Event != "reset to pending" {
		t.Errorf("expected reset entry, got %q", st.Logs[1].Event)
	}
}

func TestDebater_RecordUpsert(t *testing.T) {
	d := &Debater{Responses: []DebaterResponse{}}

	d.Record(1, RoundInitial, "first draft", testTime)
	d.Record(1, RoundInitial, "revised", testTime.Add(time.Minute))
	d.Record(2, RoundCrossReview, "review", testTime.Add(2*time.Minute))

	if len(d.Responses) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(d.Responses))
	}
	if d.Responses[0].Response != "revised" {
		t.Errorf("resubmission should overwrite in place, got %q", d.Responses[0].Response)
	}
	if d.Responses[1].Type != RoundCrossReview {
		t.Errorf("expected cross-review entry, got %s", d.Responses[1].Type)
	}
}

func TestNewProject_Linear(t *testing.T) {
	p := NewProject("api", ModeLinear, "ship the API", "/work", []string{"code", "test"}, testTime)

	if p.Status != ProjectActive {
		t.Errorf("expected active, got %s", p.Status)
	}
	if p.CurrentStage != "code" {
		t.Errorf("cursor should start at first stage, got %q", p.CurrentStage)
	}
	if p.Stages.Len() != 2 {
		t.Fatalf("expected 2 stages, got %d", p.Stages.Len())
	}
	st, _ := p.Stages.Get("test")
	if st.Status != StagePending || st.Agent != "test" {
		t.Errorf("unexpected initial stage: %+v", st)
	}
}

func TestNewProject_EmptyPipeline(t *testing.T) {
	p := NewProject("empty", ModeLinear, "", "", nil, testTime)
	if p.CurrentStage != "" {
		t.Errorf("expected no cursor, got %q", p.CurrentStage)
	}
}

func TestNewProject_Debate(t *testing.T) {
	p := NewProject("q", ModeDebate, "which DB?", "", nil, testTime)
	if p.Debaters == nil || p.Rounds == nil {
		t.Fatal("debate payload not initialized")
	}
	if p.CurrentRound != 0 {
		t.Errorf("expected round 0, got %d", p.CurrentRound)
	}
	if p.CurrentRoundData() != nil {
		t.Error("expected no active round")
	}
}

func TestProject_Progress(t *testing.T) {
	p := NewProject("x", ModeDag, "", "", nil, testTime)
	p.Stages.Put("a", &Stage{Agent: "a", Status: StageDone})
	p.Stages.Put("b", &Stage{Agent: "b", Status: StageSkipped})
	p.Stages.Put("c", &Stage{Agent: "c", Status: StageFailed})
	p.Stages.Put("d", &Stage{Agent: "d", Status: StagePending})

	done, total := p.Progress()
	if done != 2 || total != 4 {
		t.Errorf("expected 2/4, got %d/%d", done, total)
	}
}

func TestProject_JSONRoundTrip(t *testing.T) {
	p := NewProject("roundtrip", ModeDag, "goal text", "/ws", nil, testTime)
	p.Stages.Put("later", NewStage("later"))
	p.Stages.Put("earlier", NewStage("earlier"))
	st, _ := p.Stages.Get("later")
	st.DependsOn = []string{"earlier"}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	// The file format uses "project" as the ID key.
	if !strings.Contains(string(data), `"project":"roundtrip"`) {
		t.Errorf("expected project key in %s", data)
	}

	var back Project
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.ID != "roundtrip" || back.Mode != ModeDag || back.Goal != "goal text" {
		t.Errorf("core fields lost: %+v", back)
	}
	if got := back.Stages.IDs(); len(got) != 2 || got[0] != "later" {
		t.Errorf("stage order lost: %v", got)
	}
}

func TestCycleError_ClosesPath(t *testing.T) {
	err := &CycleError{Path: []string{"a", "b", "c"}}
	want := "dependency cycle: a → b → c → a"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}
