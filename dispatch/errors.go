package dispatch

import "fmt"

// StructuralViolation reports an illegal clause list. It is returned by
// validation before any clause body runs, so a bad list never produces a
// partial dispatch.
type StructuralViolation struct {
	// Clause is the index of the offending clause.
	Clause int

	// Reason describes the violation.
	Reason string
}

// Error returns the violation description.
func (e *StructuralViolation) Error() string {
	return fmt.Sprintf("clause %d: %s", e.Clause, e.Reason)
}

// PredicateFailure reports that a clause's predicate failed while testing a
// leaf. The whole dispatch aborts with no partial outcome.
type PredicateFailure struct {
	// Clause is the index of the clause whose predicate failed.
	Clause int

	// Err is the underlying *errtree.PredicateError.
	Err error
}

// Error returns the failure description.
func (e *PredicateFailure) Error() string {
	return fmt.Sprintf("clause %d: %v", e.Clause, e.Err)
}

// Unwrap returns the underlying partition error.
func (e *PredicateFailure) Unwrap() error { return e.Err }
