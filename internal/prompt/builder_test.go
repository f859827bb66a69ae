package prompt

import (
	"strings"
	"testing"

	"github.com/imkarma/relay/internal/engine"
)

func TestRoundStart(t *testing.T) {
	out := RoundStart(&engine.RoundStartResult{
		Goal: "pick a queue",
		Debaters: []engine.DebaterRef{
			{ID: "a", Role: "optimist"},
			{ID: "b", Role: "no role specified"},
		},
	})

	for _, want := range []string{
		"Agent: a (optimist)",
		"Agent: b (no role specified)",
		"Question: pick a queue",
		"Task: Provide your position and supporting reasoning.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestCrossReview(t *testing.T) {
	out := CrossReview(&engine.CrossReviewResult{
		Prompts: []engine.CrossReviewPrompt{
			{
				DebaterID: "a",
				Role:      "optimist",
				Own:       "my position",
				Others: []engine.PeerResponse{
					{ID: "b", Role: "skeptic", Response: "their position"},
				},
			},
		},
	})

	for _, want := range []string{
		"Your previous response: my position",
		"- b (skeptic): their position",
		"Task: Review the other responses.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestCrossReview_SoloDebater(t *testing.T) {
	out := CrossReview(&engine.CrossReviewResult{
		Prompts: []engine.CrossReviewPrompt{{DebaterID: "a", Role: "x", Own: "p"}},
	})
	if !strings.Contains(out, "- (none)") {
		t.Errorf("expected (none) placeholder in:\n%s", out)
	}
}

func TestSynthesis(t *testing.T) {
	out := Synthesis(&engine.Synthesis{
		Goal: "the question",
		Positions: []engine.PeerResponse{
			{ID: "a", Role: "optimist", Response: "pos"},
		},
		Reviews: []engine.PeerResponse{
			{ID: "a", Role: "optimist", Response: "rev"},
		},
		CrossStarted: true,
	})

	for _, want := range []string{
		"Question: the question",
		"Initial positions:",
		"- a (optimist): pos",
		"Cross-reviews:",
		"- a (optimist): rev",
		"Task: Synthesize the strongest points",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestSynthesis_WithoutCrossReview(t *testing.T) {
	out := Synthesis(&engine.Synthesis{Goal: "q"})
	if !strings.Contains(out, "(cross-review round not started)") {
		t.Errorf("expected placeholder in:\n%s", out)
	}
}

func TestDispatchBrief(t *testing.T) {
	out := DispatchBrief(engine.ReadyTask{
		TaskID:     "deploy",
		Agent:      "ops",
		Task:       "roll out v2",
		DependsOn:  []string{"build", "test"},
		DepOutputs: map[string]string{"build": "image:v2"},
		Workspace:  "/work",
	})

	for _, want := range []string{
		"Task: deploy (agent: ops)",
		"Workspace: /work",
		"Description: roll out v2",
		"Depends on: build, test",
		"- build: image:v2",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}
