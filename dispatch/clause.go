package dispatch

import (
	"github.com/python/exceptiongroups/errtree"
	"github.com/python/exceptiongroups/logging"
)

// Kind distinguishes the two clause flavors a front end can produce. A
// clause list must be homogeneous: plain and tree-aware clauses cannot be
// mixed, because a plain clause silently consumes siblings a tree-aware
// clause would have carved off.
type Kind int

const (
	// KindTree clauses receive the matched subtree, preserving any
	// aggregation structure around the matched leaves.
	KindTree Kind = iota

	// KindPlain clauses come from single-error front ends. The engine
	// binds them identically; the kind exists so a mixed list is
	// rejectable before any body runs.
	KindPlain
)

func (k Kind) String() string {
	switch k {
	case KindTree:
		return "tree"
	case KindPlain:
		return "plain"
	default:
		return "unknown"
	}
}

// Handler is a clause body. Its signature is deliberately restricted: the
// only representable outcomes are Completed, Raise and Reraise, so a body
// has no early-exit target that could silently drop sibling errors.
type Handler func(*Scope) Disposition

// Clause pairs a predicate with the body that handles whatever the
// predicate carves off the incoming tree.
type Clause struct {
	Kind      Kind
	Predicate errtree.Predicate
	Name      string
	Body      Handler
}

// Scope is the execution context of one clause body: an explicit handle on
// the matched set currently being handled. A bare re-raise goes through
// this handle rather than any ambient state.
type Scope struct {
	matched errtree.Node
	name    string
	logger  *logging.Logger
}

// Bound returns the subtree the clause's predicate matched.
func (s *Scope) Bound() errtree.Node { return s.matched }

// Name returns the clause's bound name, if any.
func (s *Scope) Name() string { return s.name }

// Log returns a logger scoped to this clause, or nil when the engine runs
// without tracing.
func (s *Scope) Log() *logging.Logger { return s.logger }

// RaiseBound re-raises the bound value explicitly: same payload, frames
// extended with the given site. Unlike a bare Reraise, the result is
// treated as a newly raised error, not as a still-unhandled part of the
// original tree.
func (s *Scope) RaiseBound(site errtree.Frame) Disposition {
	return Raise(s.matched.WithFrame(site))
}

// dispKind enumerates the representable body outcomes.
type dispKind int

const (
	dispCompleted dispKind = iota
	dispRaised
	dispReraised
)

func (k dispKind) String() string {
	switch k {
	case dispCompleted:
		return "completed"
	case dispRaised:
		return "raised"
	case dispReraised:
		return "reraised"
	default:
		return "unknown"
	}
}

// Disposition is what a clause body did with its matched set. The zero
// value is Completed.
type Disposition struct {
	kind  dispKind
	value errtree.Node
}

// Completed reports that the body fully consumed the matched set.
func Completed() Disposition {
	return Disposition{kind: dispCompleted}
}

// Raise reports that the body raised a fresh error value. The engine
// records the matched set as the value's context.
func Raise(n errtree.Node) Disposition {
	return Disposition{kind: dispRaised, value: n}
}

// Reraise reports a bare re-raise: the matched set propagates verbatim,
// still structurally part of the original tree, with no fresh metadata.
func Reraise() Disposition {
	return Disposition{kind: dispReraised}
}

// Validate checks a clause list before any clause runs. It rejects, as a
// *StructuralViolation: mixed plain/tree clause lists, undefined predicates,
// predicates naming the aggregate tag, and nil bodies. Validation either
// rejects the whole list or accepts it; it is never partially applied.
func Validate(clauses []Clause) error {
	for i, c := range clauses {
		if c.Kind != clauses[0].Kind {
			return &StructuralViolation{
				Clause: i,
				Reason: "mixed plain and tree clause kinds in one list",
			}
		}
		if c.Predicate.IsZero() {
			return &StructuralViolation{Clause: i, Reason: "undefined predicate"}
		}
		if c.Predicate.MatchesAggregate() {
			return &StructuralViolation{
				Clause: i,
				Reason: "predicate matches the aggregate tag; a tree cannot be carved by its own type",
			}
		}
		if c.Body == nil {
			return &StructuralViolation{Clause: i, Reason: "nil clause body"}
		}
	}
	return nil
}
