package state

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestStageSet_InsertionOrder(t *testing.T) {
	s := NewStageSet()
	s.Put("zeta", NewStage("zeta"))
	s.Put("alpha", NewStage("alpha"))
	s.Put("mid", NewStage("mid"))

	want := []string{"zeta", "alpha", "mid"}
	if !reflect.DeepEqual(s.IDs(), want) {
		t.Errorf("expected order %v, got %v", want, s.IDs())
	}
}

func TestStageSet_PutReplaceKeepsPosition(t *testing.T) {
	s := NewStageSet()
	s.Put("a", NewStage("a"))
	s.Put("b", NewStage("b"))

	replacement := NewStage("a2")
	s.Put("a", replacement)

	if got := s.IDs(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("replace moved the key: %v", got)
	}
	st, _ := s.Get("a")
	if st.Agent != "a2" {
		t.Errorf("expected replaced stage, got agent %q", st.Agent)
	}
}

func TestStageSet_Delete(t *testing.T) {
	s := NewStageSet()
	s.Put("a", NewStage("a"))
	s.Put("b", NewStage("b"))
	s.Put("c", NewStage("c"))

	s.Delete("b")

	if s.Has("b") {
		t.Error("deleted key still present")
	}
	if got := s.IDs(); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Errorf("expected [a c], got %v", got)
	}

	// Deleting a missing key is a no-op.
	s.Delete("missing")
	if s.Len() != 2 {
		t.Errorf("expected 2 stages, got %d", s.Len())
	}
}

func TestStageSet_JSONRoundTripPreservesOrder(t *testing.T) {
	s := NewStageSet()
	for _, id := range []string{"build", "test", "deploy", "announce"} {
		s.Put(id, NewStage(id))
	}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back StageSet
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []string{"build", "test", "deploy", "announce"}
	if !reflect.DeepEqual(back.IDs(), want) {
		t.Errorf("order not preserved: want %v, got %v", want, back.IDs())
	}
}

func TestStageSet_UnmarshalStageFields(t *testing.T) {
	raw := `{"x":{"agent":"builder","status":"done","task":"compile",
		"startedAt":null,"completedAt":null,"output":"ok","logs":[],
		"dependsOn":["y"]}}`

	var s StageSet
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	st, ok := s.Get("x")
	if !ok {
		t.Fatal("stage x missing")
	}
	if st.Agent != "builder" || st.Status != StageDone || st.Output != "ok" {
		t.Errorf("fields not decoded: %+v", st)
	}
	if !reflect.DeepEqual(st.DependsOn, []string{"y"}) {
		t.Errorf("dependsOn not decoded: %v", st.DependsOn)
	}
}

func TestStageSet_UnmarshalRejectsNonObject(t *testing.T) {
	var s StageSet
	if err := json.Unmarshal([]byte(`[1,2]`), &s); err == nil {
		t.Fatal("expected error for non-object input")
	}
}

func TestStageSet_NilSafe(t *testing.T) {
	var s *StageSet
	if s.Len() != 0 {
		t.Error("nil Len should be 0")
	}
	if s.IDs() != nil {
		t.Error("nil IDs should be nil")
	}
	if _, ok := s.Get("x"); ok {
		t.Error("nil Get should miss")
	}
}

func TestDebaterSet_JSONRoundTripPreservesOrder(t *testing.T) {
	s := NewDebaterSet()
	s.Put("claude", &Debater{Role: "optimist", Responses: []DebaterResponse{}})
	s.Put("gpt", &Debater{Role: "skeptic", Responses: []DebaterResponse{}})
	s.Put("gemini", &Debater{Responses: []DebaterResponse{}})

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back DebaterSet
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []string{"claude", "gpt", "gemini"}
	if !reflect.DeepEqual(back.IDs(), want) {
		t.Errorf("order not preserved: want %v, got %v", want, back.IDs())
	}
	d, _ := back.Get("gpt")
	if d.Role != "skeptic" {
		t.Errorf("expected role skeptic, got %q", d.Role)
	}
}
