package core

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"worklog/internal/taxonomy"
	"worklog/pkg/domain"
)

// FlowKey identifies one add-with-confirmation flow. Context separates
// independent pickers adding to the same collection, such as one per task
// row in the log form.
type FlowKey struct {
	Target  Target `json:"target"`
	Context string `json:"context,omitempty"`
}

func (k FlowKey) String() string {
	if k.Context == "" {
		return k.Target.String()
	}
	return k.Target.String() + "@" + k.Context
}

// Decision resolves an open similarity decision.
type Decision string

const (
	DecisionUseExisting  Decision = "use-existing"
	DecisionCreateAnyway Decision = "create-anyway"
	DecisionDismiss      Decision = "dismiss"
)

// ParseDecision accepts dashed or underscored spellings.
func ParseDecision(raw string) (Decision, error) {
	switch d := Decision(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "_", "-")); d {
	case DecisionUseExisting, DecisionCreateAnyway, DecisionDismiss:
		return d, nil
	default:
		return "", fmt.Errorf("unknown decision %q", raw)
	}
}

// PendingDecision is an open similarity decision and the picker it belongs to.
type PendingDecision struct {
	Context string `json:"context,omitempty"`
	taxonomy.Pending
}

// RemoveResult reports a removal. InUse means entries still reference the
// removed name; they are left untouched.
type RemoveResult struct {
	Removed bool `json:"removed"`
	InUse   bool `json:"in_use"`
}

// canonicalKeyLocked trims the key and resolves a sub-tech parent to its
// stored spelling so differently cased requests share one flow.
func (s *Service) canonicalKeyLocked(key FlowKey) FlowKey {
	key.Context = strings.TrimSpace(key.Context)
	key.Target = s.canonicalTargetLocked(key.Target)
	return key
}

func (s *Service) canonicalTargetLocked(target Target) Target {
	if target.Kind != domain.KindSubTech {
		return Target{Kind: target.Kind}
	}
	target.Technology = strings.TrimSpace(target.Technology)
	if name, ok := taxonomy.LookupTechnology(s.schema, target.Technology); ok {
		target.Technology = name
	}
	return target
}

// Propose submits raw to the collection key addresses. The outcome is added,
// pending (a similar item exists and a decision is required), or rejected.
// group is only read for technology targets.
func (s *Service) Propose(ctx context.Context, key FlowKey, raw string, group TechGroup) (Outcome, error) {
	var out Outcome
	err := s.run(ctx, "propose", func(context.Context) error {
		if err := s.lockOpen(); err != nil {
			return err
		}
		defer s.unlock()
		key = s.canonicalKeyLocked(key)
		kf, ok := s.flows[key.String()]
		if !ok {
			kf = &keyedFlow{key: key, flow: taxonomy.NewFlow(key.Target)}
		}
		out = kf.flow.Submit(s.schema, raw, group)
		s.settleLocked(kf, &out)
		return nil
	})
	return out, err
}

// Resolve applies decision to the open decision for key. It returns
// taxonomy.ErrNoPending when none is open.
func (s *Service) Resolve(ctx context.Context, key FlowKey, decision Decision) (Outcome, error) {
	var out Outcome
	err := s.run(ctx, "resolve", func(context.Context) error {
		if err := s.lockOpen(); err != nil {
			return err
		}
		defer s.unlock()
		key = s.canonicalKeyLocked(key)
		kf, ok := s.flows[key.String()]
		if !ok {
			return taxonomy.ErrNoPending
		}
		var err error
		switch decision {
		case DecisionUseExisting:
			out, err = kf.flow.UseExisting(s.schema)
		case DecisionCreateAnyway:
			out, err = kf.flow.CreateAnyway(s.schema)
		case DecisionDismiss:
			out, err = kf.flow.Dismiss(s.schema)
		default:
			return fmt.Errorf("unknown decision %q", decision)
		}
		if err != nil {
			return err
		}
		s.settleLocked(kf, &out)
		return nil
	})
	return out, err
}

// settleLocked commits a changed schema and keeps only flows with an open
// decision.
func (s *Service) settleLocked(kf *keyedFlow, out *Outcome) {
	if out.Changed {
		s.schema = out.Schema
		s.saveSchemaLocked()
		s.logger.Info("taxonomy item added", "target", kf.key.Target.String(), "name", out.Value)
	}
	if kf.flow.State() == taxonomy.StatePending {
		s.flows[kf.key.String()] = kf
	} else {
		delete(s.flows, kf.key.String())
	}
	out.Schema = s.schema.Clone()
}

// Pending lists open decisions ordered by context and collection.
func (s *Service) Pending() []PendingDecision {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PendingDecision, 0, len(s.flows))
	for _, kf := range s.flows {
		p, ok := kf.flow.Pending()
		if !ok {
			continue
		}
		out = append(out, PendingDecision{Context: kf.key.Context, Pending: p})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Context != out[j].Context {
			return out[i].Context < out[j].Context
		}
		return out[i].Target.String() < out[j].Target.String()
	})
	return out
}

// Remove deletes name from target's collection whether or not entries still
// reference it; InUse tells the caller to warn.
func (s *Service) Remove(ctx context.Context, target Target, name string) (RemoveResult, error) {
	var res RemoveResult
	err := s.run(ctx, "remove", func(context.Context) error {
		if err := target.Validate(); err != nil {
			return fmt.Errorf("remove: %w", err)
		}
		if err := s.lockOpen(); err != nil {
			return err
		}
		defer s.unlock()
		target = s.canonicalTargetLocked(target)
		res.InUse = taxonomy.InUse(s.entries, target, name)
		next, removed := taxonomy.Remove(s.schema, target, name)
		if !removed {
			return nil
		}
		res.Removed = true
		s.schema = next
		s.saveSchemaLocked()
		if res.InUse {
			s.logger.Info("removed taxonomy item still referenced by entries", "target", target.String(), "name", name)
		}
		return nil
	})
	return res, err
}

// InUse reports whether any entry references name in target's collection.
func (s *Service) InUse(target Target, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return taxonomy.InUse(s.entries, s.canonicalTargetLocked(target), name)
}
