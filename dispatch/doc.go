// Package dispatch executes an ordered list of typed catch-clauses against
// an error tree and folds the results into a single terminal outcome.
//
// # Model
//
// A Clause pairs a predicate with a body. The engine normalizes a naked
// leaf into a synthetic wrapper, then folds over the clauses in order: each
// clause splits its matched leaves off the still-unhandled remainder, and
// its body runs exactly once when the match is non-empty. Overlapping
// predicates therefore resolve in list order: the first clause wins the
// overlap.
//
// A body's signature can only express three dispositions:
//
//   - Completed: the matched set is fully consumed
//   - Raise(v): a fresh error propagates, its context recording the
//     matched set
//   - Reraise: the matched set propagates verbatim, still structurally
//     part of the original tree
//
// There is no representable return, break or continue target, so a body
// cannot silently change what sibling clauses receive.
//
// # Outcomes
//
// Finalization recomputes everything unhandled or bare-re-raised from the
// original tree's shape in a single carve, preserving nesting and links,
// then yields exactly one of Silenced, PropagateNaked or PropagateTree.
// Callers re-raise Propagate* values in the enclosing scope and do nothing
// for Silenced. There is no resumption.
//
// Clause lists are validated before any body runs; an illegal list is a
// *StructuralViolation. A predicate that itself fails while testing a leaf
// aborts the whole dispatch as a *PredicateFailure with no partial outcome.
package dispatch
