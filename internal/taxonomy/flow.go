package taxonomy

import (
	"errors"

	"worklog/pkg/domain"
)

// ErrNoPending is returned when a decision arrives while no similarity
// decision is open.
var ErrNoPending = errors.New("taxonomy: no pending similarity decision")

// State is the resolution flow state.
type State string

const (
	StateIdle    State = "idle"
	StatePending State = "pending"
)

// Action describes what a flow step did.
type Action string

const (
	ActionAdded       Action = "added"
	ActionPending     Action = "pending"
	ActionRejected    Action = "rejected"
	ActionUseExisting Action = "use_existing"
	ActionDismissed   Action = "dismissed"
)

// Pending is the suspended add: Input is the normalized candidate and Match
// the existing item it resembles.
type Pending struct {
	Input  string           `json:"input"`
	Match  string           `json:"match"`
	Target domain.Target    `json:"target"`
	Group  domain.TechGroup `json:"group,omitempty"`
}

// Outcome reports the result of a flow step. Value is the name the consumer
// should select: the added candidate, or the existing match for
// ActionUseExisting. Schema is the schema after the step; Changed reports
// whether it differs from the input.
type Outcome struct {
	Action  Action        `json:"action"`
	Reason  Reason        `json:"reason,omitempty"`
	Value   string        `json:"value,omitempty"`
	Pending *Pending      `json:"pending,omitempty"`
	Changed bool          `json:"changed"`
	Schema  domain.Schema `json:"-"`
}

// Flow is the confirm step for adding to one taxonomy collection. It is not
// safe for concurrent use; each picker owns its own Flow.
type Flow struct {
	target  domain.Target
	state   State
	pending Pending
}

// NewFlow returns an idle flow bound to target.
func NewFlow(target domain.Target) *Flow {
	return &Flow{target: target, state: StateIdle}
}

// Target returns the collection this flow adds to.
func (f *Flow) Target() domain.Target { return f.target }

// State returns the current state.
func (f *Flow) State() State { return f.state }

// Pending returns the open decision, if any.
func (f *Flow) Pending() (Pending, bool) {
	if f.state != StatePending {
		return Pending{}, false
	}
	return f.pending, true
}

// Submit proposes raw for the flow's collection. Empty input and exact
// duplicates are declined silently; a similar existing item suspends the add
// in StatePending; anything else is added immediately. A submit while a
// decision is open replaces that decision.
func (f *Flow) Submit(s domain.Schema, raw string, group domain.TechGroup) Outcome {
	f.reset()
	candidate := Normalize(raw)
	if candidate == "" {
		return rejected(s, ReasonEmpty)
	}
	if f.target.Validate() != nil {
		return rejected(s, ReasonInvalidTarget)
	}
	existing, ok := Collection(s, f.target)
	if !ok {
		return rejected(s, ReasonUnknownTechnology)
	}
	if indexFold(existing, candidate) >= 0 {
		return rejected(s, ReasonDuplicate)
	}
	if f.target.Kind == domain.KindTechnology && !group.Valid() {
		return rejected(s, ReasonInvalidGroup)
	}
	if match, found := FindSimilar(candidate, existing); found {
		f.state = StatePending
		f.pending = Pending{Input: candidate, Match: match, Target: f.target, Group: group}
		p := f.pending
		return Outcome{Action: ActionPending, Pending: &p, Schema: s}
	}
	return f.commit(s, candidate, group)
}

// UseExisting resolves the open decision in favour of the existing item. The
// schema is not changed; Outcome.Value carries the existing name.
func (f *Flow) UseExisting(s domain.Schema) (Outcome, error) {
	p, ok := f.Pending()
	if !ok {
		return Outcome{}, ErrNoPending
	}
	f.reset()
	return Outcome{Action: ActionUseExisting, Value: p.Match, Pending: &p, Schema: s}, nil
}

// CreateAnyway resolves the open decision by adding the candidate despite the
// similar item. The similarity check is skipped; the mutator still refuses
// an exact duplicate if one appeared in s since the submit.
func (f *Flow) CreateAnyway(s domain.Schema) (Outcome, error) {
	p, ok := f.Pending()
	if !ok {
		return Outcome{}, ErrNoPending
	}
	f.reset()
	out := f.commit(s, p.Input, p.Group)
	out.Pending = &p
	return out, nil
}

// Dismiss discards the open decision without touching the schema.
func (f *Flow) Dismiss(s domain.Schema) (Outcome, error) {
	p, ok := f.Pending()
	if !ok {
		return Outcome{}, ErrNoPending
	}
	f.reset()
	return Outcome{Action: ActionDismissed, Pending: &p, Schema: s}, nil
}

func (f *Flow) commit(s domain.Schema, candidate string, group domain.TechGroup) Outcome {
	next, reason := add(s, f.target, candidate, group)
	if reason != ReasonNone {
		return rejected(s, reason)
	}
	return Outcome{Action: ActionAdded, Value: candidate, Changed: true, Schema: next}
}

func (f *Flow) reset() {
	f.state = StateIdle
	f.pending = Pending{}
}

func rejected(s domain.Schema, reason Reason) Outcome {
	return Outcome{Action: ActionRejected, Reason: reason, Schema: s}
}
