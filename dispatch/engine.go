package dispatch

import (
	"fmt"
	"time"

	"github.com/python/exceptiongroups/errtree"
	"github.com/python/exceptiongroups/logging"
)

// OutcomeKind enumerates the three terminal states of a dispatch run.
type OutcomeKind int

const (
	// Silenced means every leaf was consumed and nothing was raised;
	// nothing propagates.
	Silenced OutcomeKind = iota

	// PropagateNaked means a single bare leaf propagates, unwrapped.
	PropagateNaked

	// PropagateTree means an error tree propagates.
	PropagateTree
)

func (k OutcomeKind) String() string {
	switch k {
	case Silenced:
		return "silenced"
	case PropagateNaked:
		return "propagate_naked"
	case PropagateTree:
		return "propagate_tree"
	default:
		return "unknown"
	}
}

// Outcome is the terminal result of a dispatch run. Callers must re-raise
// the propagated value in the enclosing scope and do nothing for Silenced.
type Outcome struct {
	kind OutcomeKind
	leaf *errtree.Leaf
	tree *errtree.Group
}

// Kind returns the terminal state.
func (o Outcome) Kind() OutcomeKind { return o.kind }

// Leaf returns the propagated leaf for PropagateNaked outcomes.
func (o Outcome) Leaf() *errtree.Leaf { return o.leaf }

// Tree returns the propagated tree for PropagateTree outcomes.
func (o Outcome) Tree() *errtree.Group { return o.tree }

// Err returns the propagated value as an error, or nil for Silenced.
func (o Outcome) Err() error {
	switch o.kind {
	case PropagateNaked:
		return o.leaf
	case PropagateTree:
		return o.tree
	default:
		return nil
	}
}

func silenced() Outcome {
	return Outcome{kind: Silenced}
}

func naked(l *errtree.Leaf) Outcome {
	return Outcome{kind: PropagateNaked, leaf: l}
}

func propagated(g *errtree.Group) Outcome {
	return Outcome{kind: PropagateTree, tree: g}
}

// Engine executes clause lists against incoming error trees. It is purely
// synchronous: clause bodies run one at a time, in list order, each to
// completion.
type Engine struct {
	logger *logging.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger enables dispatch tracing through the given logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) { e.logger = l.WithComponent("dispatch") }
}

// New creates a dispatch engine.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run dispatches the input against the clause list and returns the terminal
// outcome.
//
// The input is either a naked leaf, which is wrapped in a synthetic
// empty-label group before any clause runs, or an error tree used as-is.
// Each clause splits the matched leaves off the still-unhandled remainder;
// its body runs exactly once when the match is non-empty. Raised values
// accumulate with fresh metadata whose context is the clause's matched set;
// bare re-raises keep their subtree structurally part of the original tree.
//
// Run fails with *StructuralViolation before any clause runs if the list is
// illegal, and with *PredicateFailure, abandoning any partial outcome, if a
// predicate fails on some leaf.
func (e *Engine) Run(clauses []Clause, input errtree.Node) (Outcome, error) {
	if err := Validate(clauses); err != nil {
		return Outcome{}, err
	}
	if input == nil {
		return silenced(), nil
	}
	start := time.Now()

	var wrapper *errtree.Group
	original := input
	if leaf, ok := input.(*errtree.Leaf); ok {
		wrapper = errtree.NewGroup("", []errtree.Node{leaf})
		original = wrapper
	}

	incoming := original
	var raised []errtree.Node
	var reraised []errtree.Node

	for i, c := range clauses {
		if incoming == nil {
			break
		}
		matched, rest, err := errtree.Split(incoming, c.Predicate)
		if err != nil {
			return Outcome{}, &PredicateFailure{Clause: i, Err: err}
		}
		if matched == nil {
			if e.logger != nil {
				e.logger.ClauseSkip(clauseName(c, i))
			}
			continue
		}
		incoming = rest

		if e.logger != nil {
			e.logger.ClauseMatch(clauseName(c, i), len(errtree.Leaves(matched)))
		}
		scope := &Scope{matched: matched, name: c.Name, logger: e.logger}
		d := c.Body(scope)
		if e.logger != nil {
			e.logger.ClauseDisposition(clauseName(c, i), d.kind.String())
		}

		switch d.kind {
		case dispCompleted:
			// matched set fully consumed
		case dispReraised:
			reraised = append(reraised, matched)
		case dispRaised:
			if d.value == nil {
				return Outcome{}, &StructuralViolation{Clause: i, Reason: "raised a nil value"}
			}
			v := d.value
			if v != matched && v.Context() == nil {
				v = v.WithContext(matched)
			}
			raised = append(raised, v)
		}
	}

	out := e.finalize(original, wrapper, incoming, reraised, raised)
	if e.logger != nil {
		e.logger.DispatchOutcome(out.Kind().String(), time.Since(start))
	}
	return out, nil
}

// finalize folds the three buckets into one terminal outcome.
func (e *Engine) finalize(original errtree.Node, wrapper *errtree.Group, incoming errtree.Node, reraised, raised []errtree.Node) Outcome {
	keep := make(map[*errtree.Leaf]struct{})
	for _, l := range errtree.Leaves(incoming) {
		keep[l] = struct{}{}
	}
	for _, n := range reraised {
		for _, l := range errtree.Leaves(n) {
			keep[l] = struct{}{}
		}
	}

	// Unhandled and bare-re-raised leaves are recomputed from the original
	// tree's shape in a single carve, as if they had been split off
	// together, so nesting and inherited links survive. Bare re-raises
	// share leaves with the original by identity, which is what makes the
	// membership carve exact.
	var unhandled errtree.Node
	if len(keep) > 0 {
		unhandled, _ = errtree.Subgroup(original, errtree.MatchFunc(func(l *errtree.Leaf) (bool, error) {
			_, ok := keep[l]
			return ok, nil
		}))
	}

	if len(raised) == 0 {
		if unhandled == nil {
			return silenced()
		}
		return propagateUnhandled(unhandled, wrapper)
	}

	children := make([]errtree.Node, 0, len(raised)+1)
	children = append(children, raised...)
	if unhandled != nil {
		// A synthetic wrapper around a naked input never becomes
		// visible; its leaf joins the merge directly.
		if g, ok := unhandled.(*errtree.Group); ok && wrapper != nil && g == wrapper {
			children = append(children, g.Children()...)
		} else {
			children = append(children, unhandled)
		}
	}
	merged := errtree.NewGroup("", children)
	if merged.Len() == 1 {
		if l, ok := merged.Children()[0].(*errtree.Leaf); ok {
			return naked(l)
		}
	}
	return propagated(merged)
}

// propagateUnhandled propagates the unhandled remainder without extra
// wrapping, unwrapping only the engine's own synthetic wrapper ("naked in,
// naked out when not merged").
func propagateUnhandled(unhandled errtree.Node, wrapper *errtree.Group) Outcome {
	switch t := unhandled.(type) {
	case *errtree.Leaf:
		return naked(t)
	case *errtree.Group:
		if wrapper != nil && t == wrapper {
			if l, ok := t.Children()[0].(*errtree.Leaf); ok {
				return naked(l)
			}
		}
		return propagated(t)
	default:
		return silenced()
	}
}

func clauseName(c Clause, i int) string {
	if c.Name != "" {
		return c.Name
	}
	return fmt.Sprintf("clause[%d]", i)
}
