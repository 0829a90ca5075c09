package errtree

import "fmt"

// Predicate decides whether a leaf belongs to a clause. A predicate is one
// of three variants resolved uniformly through Test: a set of codes, a whole
// category (the set of every code in it), or an arbitrary callable.
type Predicate struct {
	codes    map[Code]struct{}
	category Category
	fn       func(*Leaf) (bool, error)
	any      bool
}

// MatchCodes matches leaves whose code is in the given set.
func MatchCodes(codes ...Code) Predicate {
	set := make(map[Code]struct{}, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return Predicate{codes: set}
}

// MatchCategory matches leaves whose code belongs to the given category.
// Shorthand for MatchCodes over every code in the category.
func MatchCategory(cat Category) Predicate {
	return Predicate{category: cat}
}

// MatchFunc matches leaves the callable accepts. A non-nil error from the
// callable fails the whole partition it runs under.
func MatchFunc(fn func(*Leaf) (bool, error)) Predicate {
	return Predicate{fn: fn}
}

// Any matches every leaf.
func Any() Predicate {
	return Predicate{any: true}
}

// Not returns the complement of p. A callable's error still fails the whole
// partition; only its verdict is inverted.
func Not(p Predicate) Predicate {
	return MatchFunc(func(l *Leaf) (bool, error) {
		ok, err := p.Test(l)
		if err != nil {
			return false, err
		}
		return !ok, nil
	})
}

// Test reports whether the leaf satisfies the predicate.
func (p Predicate) Test(l *Leaf) (bool, error) {
	switch {
	case p.any:
		return true, nil
	case p.fn != nil:
		return p.fn(l)
	case p.category != "":
		return l.Code().Category() == p.category, nil
	case p.codes != nil:
		_, ok := p.codes[l.Code()]
		return ok, nil
	default:
		return false, fmt.Errorf("undefined predicate")
	}
}

// IsZero reports whether the predicate was never defined. Zero predicates
// are rejected by dispatch validation.
func (p Predicate) IsZero() bool {
	return !p.any && p.fn == nil && p.category == "" && p.codes == nil
}

// MatchesAggregate reports whether the predicate's code set names the
// reserved aggregate tag. Such a predicate is ambiguous (a tree can never
// be carved by its own tag) and is rejected by dispatch validation.
func (p Predicate) MatchesAggregate() bool {
	if p.codes == nil {
		return false
	}
	_, ok := p.codes[CodeAggregate]
	return ok
}

// PredicateError reports that a predicate failed while testing a leaf. The
// partition that hit it returns no partial results.
type PredicateError struct {
	Leaf *Leaf
	Err  error
}

// Error returns the failure description.
func (e *PredicateError) Error() string {
	return fmt.Sprintf("predicate failed on %s leaf: %v", e.Leaf.Code(), e.Err)
}

// Unwrap returns the underlying callable error.
func (e *PredicateError) Unwrap() error { return e.Err }
