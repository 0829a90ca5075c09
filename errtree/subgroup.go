package errtree

// Subgroup returns the subtree of n containing exactly the leaves that
// satisfy pred, with original structure and links preserved. It returns nil
// when no leaf matches. Branches left empty by the carve are pruned. When a
// subtree is retained in full it is returned by identity: no leaf payload or
// link is ever duplicated, and new allocations are limited to group shells
// around partially-retained branches.
//
// A predicate failure on any leaf aborts the whole call with a
// *PredicateError and no partial result.
func Subgroup(n Node, pred Predicate) (Node, error) {
	matched, _, err := partition(n, pred)
	if err != nil {
		return nil, err
	}
	return matched, nil
}

// Split partitions n into the subtree matching pred and its complement,
// traversing the tree once. The two leaf sets partition the leaves of n
// exactly. When one side holds every leaf, that side is n itself (by
// identity) and the other side is nil.
func Split(n Node, pred Predicate) (Node, Node, error) {
	return partition(n, pred)
}

func partition(n Node, pred Predicate) (Node, Node, error) {
	if n == nil {
		return nil, nil, nil
	}
	switch t := n.(type) {
	case *Leaf:
		ok, err := pred.Test(t)
		if err != nil {
			return nil, nil, &PredicateError{Leaf: t, Err: err}
		}
		if ok {
			return t, nil, nil
		}
		return nil, t, nil
	case *Group:
		matched := make([]Node, 0, len(t.children))
		rest := make([]Node, 0, len(t.children))
		for _, c := range t.children {
			m, r, err := partition(c, pred)
			if err != nil {
				return nil, nil, err
			}
			if m != nil {
				matched = append(matched, m)
			}
			if r != nil {
				rest = append(rest, r)
			}
		}
		// A side holding every leaf reuses the group by identity: its
		// children all came back unchanged.
		if len(rest) == 0 {
			return t, nil, nil
		}
		if len(matched) == 0 {
			return nil, t, nil
		}
		return t.shell(matched), t.shell(rest), nil
	default:
		return nil, n, nil
	}
}
