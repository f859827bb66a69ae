package engine

import (
	"fmt"

	"github.com/imkarma/relay/internal/state"
)

// The debate protocol is a three-phase linear state machine per project:
//
//	NotStarted → InitialInProgress → InitialDone
//	           → CrossReviewInProgress → CrossReviewDone → Synthesized
//
// Rounds are only ever appended; synthesis observes, it does not create a
// round. Debater registration closes permanently once any round exists.

// AddDebater registers a debater on a debate project. Only legal before any
// round has started.
func (e *Engine) AddDebater(projectID, agentID, role string) (*state.Project, error) {
	return e.mutate(projectID, func(p *state.Project) error {
		if err := requireMode(p, state.ModeDebate, "debater"); err != nil {
			return err
		}
		if len(p.Rounds) > 0 {
			return fmt.Errorf("cannot add debaters after rounds have started: %w", state.ErrPreconditionFailed)
		}
		if p.Debaters.Has(agentID) {
			return fmt.Errorf("debater %q: %w", agentID, state.ErrAlreadyExists)
		}
		p.Debaters.Put(agentID, &state.Debater{Role: role, Responses: []state.DebaterResponse{}})
		return nil
	})
}

// DebaterRef identifies a debater for prompt rendering.
type DebaterRef struct {
	ID   string
	Role string
}

// RoundStartResult carries what the round-start prompts need.
type RoundStartResult struct {
	Project  *state.Project
	Goal     string
	Debaters []DebaterRef
}

// StartRound opens round 1 (type initial). Legal only when no round exists
// yet and at least one debater is registered.
func (e *Engine) StartRound(projectID string) (*RoundStartResult, error) {
	res := &RoundStartResult{}
	p, err := e.mutate(projectID, func(p *state.Project) error {
		if err := requireMode(p, state.ModeDebate, "round"); err != nil {
			return err
		}
		if p.Debaters.Len() == 0 {
			return fmt.Errorf("add at least one debater first: %w", state.ErrPreconditionFailed)
		}
		if len(p.Rounds) > 0 {
			return fmt.Errorf("initial round already started: %w", state.ErrInvalidTransition)
		}
		p.Rounds = append(p.Rounds, state.NewRound(state.RoundInitial, e.now()))
		p.CurrentRound = 1

		res.Goal = p.Goal
		res.Debaters = debaterRefs(p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	res.Project = p
	return res, nil
}

// CollectResult reports a recorded response and the round's progress.
type CollectResult struct {
	Project   *state.Project
	DebaterID string
	Round     int
	Type      state.RoundType
	RoundDone bool
	Missing   []string
}

// CollectResponse upserts a debater's response into the current round (last
// write wins, no append) and mirrors it into the debater's personal history
// keyed by (round, type). When every registered debater has responded the
// round flips to Done; the check runs after each collect, never on a timer,
// and the transition never reverses.
func (e *Engine) CollectResponse(projectID, debaterID, text string) (*CollectResult, error) {
	res := &CollectResult{DebaterID: debaterID}
	p, err := e.mutate(projectID, func(p *state.Project) error {
		if err := requireMode(p, state.ModeDebate, "round"); err != nil {
			return err
		}
		round := p.CurrentRoundData()
		if round == nil {
			return fmt.Errorf("no active round, run 'round start' first: %w", state.ErrPreconditionFailed)
		}
		if round.Status != state.RoundInProgress {
			return fmt.Errorf("round %d is not accepting responses: %w", p.CurrentRound, state.ErrPreconditionFailed)
		}
		debater, ok := p.Debaters.Get(debaterID)
		if !ok {
			return fmt.Errorf("debater %q: %w", debaterID, state.ErrNotFound)
		}

		now := e.now()
		round.Responses[debaterID] = text
		debater.Record(p.CurrentRound, round.Type, text, now)

		res.Round = p.CurrentRound
		res.Type = round.Type
		for _, id := range p.Debaters.IDs() {
			if _, responded := round.Responses[id]; !responded {
				res.Missing = append(res.Missing, id)
			}
		}
		if len(res.Missing) == 0 {
			round.Status = state.RoundDone
			t := now
			round.CompletedAt = &t
			res.RoundDone = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	res.Project = p
	return res, nil
}

// PeerResponse is one debater's recorded text, labelled by role.
type PeerResponse struct {
	ID       string
	Role     string
	Response string
}

// CrossReviewPrompt is the bundle handed to one debater for round 2: their
// own round-1 position plus every other debater's.
type CrossReviewPrompt struct {
	DebaterID string
	Role      string
	Own       string
	Others    []PeerResponse
}

// CrossReviewResult carries the per-debater prompt bundles.
type CrossReviewResult struct {
	Project *state.Project
	Prompts []CrossReviewPrompt
}

// CrossReview opens round 2 (type cross-review) once round 1 is done.
// Idempotent: if round 2 already exists the prompts are re-rendered without
// creating a duplicate round.
func (e *Engine) CrossReview(projectID string) (*CrossReviewResult, error) {
	res := &CrossReviewResult{}
	p, err := e.mutate(projectID, func(p *state.Project) error {
		if err := requireMode(p, state.ModeDebate, "round"); err != nil {
			return err
		}
		initial, err := initialRound(p)
		if err != nil {
			return err
		}
		if initial.Status != state.RoundDone {
			return fmt.Errorf("complete initial round responses before cross-review: %w", state.ErrPreconditionFailed)
		}

		if len(p.Rounds) == 1 {
			p.Rounds = append(p.Rounds, state.NewRound(state.RoundCrossReview, e.now()))
		} else if p.Rounds[1].Type != state.RoundCrossReview {
			return fmt.Errorf("invalid debate state: second round is not cross-review: %w", state.ErrInvalidTransition)
		}
		p.CurrentRound = 2

		for _, id := range p.Debaters.IDs() {
			debater, _ := p.Debaters.Get(id)
			prompt := CrossReviewPrompt{
				DebaterID: id,
				Role:      debater.RoleLabel(),
				Own:       initial.Responses[id],
			}
			for _, otherID := range p.Debaters.IDs() {
				if otherID == id {
					continue
				}
				other, _ := p.Debaters.Get(otherID)
				prompt.Others = append(prompt.Others, PeerResponse{
					ID:       otherID,
					Role:     other.RoleLabel(),
					Response: initial.Responses[otherID],
				})
			}
			res.Prompts = append(res.Prompts, prompt)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	res.Project = p
	return res, nil
}

// Synthesis is the terminal observation of a debate: all positions and
// reviews gathered for a final recommendation. Completed reports whether this
// call found the cross-review round done and marked the project completed.
type Synthesis struct {
	Project      *state.Project
	Goal         string
	Positions    []PeerResponse
	Reviews      []PeerResponse
	CrossStarted bool
	Completed    bool
}

// Synthesize assembles the synthesis package. Legal once round 1 is done; it
// does not require a cross-review round, but if one exists and is done the
// project is marked completed as a side effect. Safe to call repeatedly.
func (e *Engine) Synthesize(projectID string) (*Synthesis, error) {
	res := &Synthesis{}
	p, err := e.mutate(projectID, func(p *state.Project) error {
		if err := requireMode(p, state.ModeDebate, "round"); err != nil {
			return err
		}
		if len(p.Rounds) == 0 {
			return fmt.Errorf("no rounds found, start with 'round start': %w", state.ErrPreconditionFailed)
		}
		initial := p.Rounds[0]
		if initial.Status != state.RoundDone {
			return fmt.Errorf("initial round is incomplete: %w", state.ErrPreconditionFailed)
		}

		var cross *state.Round
		if len(p.Rounds) > 1 {
			cross = p.Rounds[1]
		}
		if cross != nil && cross.Type == state.RoundCrossReview && cross.Status == state.RoundDone {
			p.Status = state.ProjectCompleted
			res.Completed = true
		}

		res.Goal = p.Goal
		res.Positions = gatherResponses(p, initial)
		if cross != nil && cross.Type == state.RoundCrossReview {
			res.CrossStarted = true
			res.Reviews = gatherResponses(p, cross)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	res.Project = p
	return res, nil
}

func initialRound(p *state.Project) (*state.Round, error) {
	if len(p.Rounds) == 0 {
		return nil, fmt.Errorf("initial round not started: %w", state.ErrPreconditionFailed)
	}
	if p.Rounds[0].Type != state.RoundInitial {
		return nil, fmt.Errorf("invalid debate state: first round is not initial: %w", state.ErrInvalidTransition)
	}
	return p.Rounds[0], nil
}

func debaterRefs(p *state.Project) []DebaterRef {
	var refs []DebaterRef
	for _, id := range p.Debaters.IDs() {
		d, _ := p.Debaters.Get(id)
		refs = append(refs, DebaterRef{ID: id, Role: d.RoleLabel()})
	}
	return refs
}

func gatherResponses(p *state.Project, round *state.Round) []PeerResponse {
	var out []PeerResponse
	for _, id := range p.Debaters.IDs() {
		d, _ := p.Debaters.Get(id)
		text, ok := round.Responses[id]
		if !ok {
			text = "(missing)"
		}
		out = append(out, PeerResponse{ID: id, Role: d.RoleLabel(), Response: text})
	}
	return out
}
