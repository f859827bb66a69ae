// Package prompt renders the text handed to agents from engine results.
// Positions travel between debaters as rendered bundles, not as raw records.
package prompt

import (
	"fmt"
	"strings"

	"github.com/imkarma/relay/internal/engine"
)

// RoundStart renders the opening brief for every debater in round 1.
func RoundStart(res *engine.RoundStartResult) string {
	var sb strings.Builder
	for _, d := range res.Debaters {
		sb.WriteString(fmt.Sprintf("Agent: %s (%s)\n", d.ID, d.Role))
		sb.WriteString(fmt.Sprintf("Question: %s\n", res.Goal))
		sb.WriteString("Task: Provide your position and supporting reasoning.\n\n")
	}
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

// CrossReview renders each debater's review bundle: their own round-1
// position plus every other debater's, labelled by role.
func CrossReview(res *engine.CrossReviewResult) string {
	var sb strings.Builder
	for _, p := range res.Prompts {
		sb.WriteString(fmt.Sprintf("Agent: %s (%s)\n", p.DebaterID, p.Role))
		sb.WriteString(fmt.Sprintf("Your previous response: %s\n\n", p.Own))
		sb.WriteString("Other debaters' responses:\n")
		if len(p.Others) == 0 {
			sb.WriteString("- (none)\n")
		}
		for _, other := range p.Others {
			sb.WriteString(fmt.Sprintf("- %s (%s): %s\n", other.ID, other.Role, other.Response))
		}
		sb.WriteString("\nTask: Review the other responses. Do you agree or disagree? What did they miss? Update your position if needed.\n\n")
	}
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

// Synthesis renders the final package: all positions and reviews gathered for
// a closing recommendation.
func Synthesis(res *engine.Synthesis) string {
	var sb strings.Builder
	if res.Goal != "" {
		sb.WriteString(fmt.Sprintf("Question: %s\n", res.Goal))
	}
	sb.WriteString("\nInitial positions:\n")
	for _, p := range res.Positions {
		sb.WriteString(fmt.Sprintf("- %s (%s): %s\n", p.ID, p.Role, p.Response))
	}
	sb.WriteString("\nCross-reviews:\n")
	if !res.CrossStarted {
		sb.WriteString("- (cross-review round not started)\n")
	}
	for _, r := range res.Reviews {
		sb.WriteString(fmt.Sprintf("- %s (%s): %s\n", r.ID, r.Role, r.Response))
	}
	sb.WriteString("\nTask: Synthesize the strongest points, resolve disagreements, and produce a final recommendation.\n")
	return sb.String()
}

// DispatchBrief renders what an agent needs to pick up one ready task:
// the description, upstream outputs, and the shared workspace.
func DispatchBrief(t engine.ReadyTask) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Task: %s (agent: %s)\n", t.TaskID, t.Agent))
	if t.Workspace != "" {
		sb.WriteString(fmt.Sprintf("Workspace: %s\n", t.Workspace))
	}
	if t.Task != "" {
		sb.WriteString(fmt.Sprintf("Description: %s\n", t.Task))
	}
	if len(t.DependsOn) > 0 {
		sb.WriteString(fmt.Sprintf("Depends on: %s\n", strings.Join(t.DependsOn, ", ")))
	}
	if len(t.DepOutputs) > 0 {
		sb.WriteString("Upstream outputs:\n")
		for _, dep := range t.DependsOn {
			if out, ok := t.DepOutputs[dep]; ok {
				sb.WriteString(fmt.Sprintf("- %s: %s\n", dep, out))
			}
		}
	}
	return sb.String()
}
