package errtree

import (
	"errors"
	"testing"
)

// leafSet maps identities for partition-exactness checks.
func leafSet(n Node) map[*Leaf]struct{} {
	set := make(map[*Leaf]struct{})
	for _, l := range Leaves(n) {
		set[l] = struct{}{}
	}
	return set
}

// ============================================================================
// 1. Subgroup on leaves and flat groups
// ============================================================================

func TestSubgroupLeaf(t *testing.T) {
	l := New(CodeValue, "v")

	got, err := Subgroup(l, MatchCodes(CodeValue))
	if err != nil {
		t.Fatalf("Subgroup() error = %v", err)
	}
	if got != Node(l) {
		t.Error("a matching leaf should come back by identity")
	}

	got, err = Subgroup(l, MatchCodes(CodeKey))
	if err != nil {
		t.Fatalf("Subgroup() error = %v", err)
	}
	if got != nil {
		t.Error("a non-matching leaf should yield nil")
	}
}

func TestSubgroupFlat(t *testing.T) {
	a := New(CodeValue, "a")
	b := New(CodeType, "b")
	c := New(CodeType, "c")
	g := NewGroup("msg", []Node{a, b, c})

	got, err := Subgroup(g, MatchCodes(CodeType))
	if err != nil {
		t.Fatalf("Subgroup() error = %v", err)
	}
	sub, ok := got.(*Group)
	if !ok {
		t.Fatalf("Subgroup() = %T, want *Group", got)
	}
	if sub.Label() != "msg" {
		t.Errorf("shell label = %q, want original label", sub.Label())
	}
	children := sub.Children()
	if len(children) != 2 || children[0] != Node(b) || children[1] != Node(c) {
		t.Error("shell must keep matched children in order, by identity")
	}
}

// ============================================================================
// 2. Identity sharing and the trivial-split shortcut
// ============================================================================

func TestSubgroupTotalMatchReturnsOriginal(t *testing.T) {
	g := NewGroup("msg", []Node{New(CodeValue, "a"), New(CodeValue, "b")})

	got, err := Subgroup(g, MatchCodes(CodeValue))
	if err != nil {
		t.Fatalf("Subgroup() error = %v", err)
	}
	if got != Node(g) {
		t.Error("a fully-matching tree must come back by identity, not a copy")
	}
}

func TestSubgroupNoneLeavesComplementIdentical(t *testing.T) {
	g := NewGroup("msg", []Node{New(CodeValue, "a"),
		NewGroup("inner", []Node{New(CodeType, "b")})})

	matched, rest, err := Split(g, MatchCodes(CodeOS))
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if matched != nil {
		t.Error("no leaf matches, so the matched side must be nil")
	}
	if rest != Node(g) {
		t.Error("when subgroup is nil the complement must be the original by identity")
	}
}

func TestSubgroupRetainedSubtreeIsShared(t *testing.T) {
	inner := NewGroup("inner", []Node{New(CodeType, "b"), New(CodeType, "c")})
	g := NewGroup("outer", []Node{New(CodeValue, "a"), inner})

	got, err := Subgroup(g, MatchCodes(CodeType))
	if err != nil {
		t.Fatalf("Subgroup() error = %v", err)
	}
	sub := got.(*Group)
	if sub == g {
		t.Fatal("partial match must allocate a new shell for the root")
	}
	// inner matched in full: it must be retained by identity.
	if sub.Children()[0] != Node(inner) {
		t.Error("a fully-retained subtree must be shared, not reallocated")
	}
}

func TestSubgroupSharesMetadataLinks(t *testing.T) {
	cause := New(CodeOS, "origin")
	g := NewGroup("msg", []Node{New(CodeValue, "a"), New(CodeType, "b")},
		WithCause(cause), WithFrames(Frame{Function: "site"}))

	got, err := Subgroup(g, MatchCodes(CodeValue))
	if err != nil {
		t.Fatalf("Subgroup() error = %v", err)
	}
	sub := got.(*Group)
	if sub.Cause() != Node(cause) {
		t.Error("shell must share the original cause by reference")
	}
	frames := sub.Frames()
	if len(frames) != 1 || frames[0].Function != "site" {
		t.Error("shell must carry the original frames")
	}
}

// ============================================================================
// 3. Nested pruning and partition exactness
// ============================================================================

func TestSubgroupPrunesEmptyBranches(t *testing.T) {
	g := NewGroup("eg", []Node{
		New(CodeValue, "a"),
		NewGroup("nested", []Node{New(CodeKey, "d")}),
	})

	got, err := Subgroup(g, MatchCodes(CodeValue))
	if err != nil {
		t.Fatalf("Subgroup() error = %v", err)
	}
	sub := got.(*Group)
	if sub.Len() != 1 {
		t.Fatalf("empty nested branch must be pruned, got %d children", sub.Len())
	}
	if _, ok := sub.Children()[0].(*Leaf); !ok {
		t.Error("only the matching leaf should survive")
	}
}

func TestSplitPartitionsLeafSetExactly(t *testing.T) {
	tree := NewGroup("eg", []Node{
		New(CodeValue, "a"),
		New(CodeType, "b"),
		NewGroup("nested", []Node{New(CodeType, "c"), New(CodeKey, "d")}),
	})

	preds := map[string]Predicate{
		"codes":    MatchCodes(CodeType),
		"category": MatchCategory(CategoryInput),
		"any":      Any(),
		"none":     MatchCodes(CodeOS),
	}

	for name, p := range preds {
		t.Run(name, func(t *testing.T) {
			matched, rest, err := Split(tree, p)
			if err != nil {
				t.Fatalf("Split() error = %v", err)
			}
			ms, rs := leafSet(matched), leafSet(rest)
			all := Leaves(tree)
			if len(ms)+len(rs) != len(all) {
				t.Fatalf("leaf sets sum to %d, want %d", len(ms)+len(rs), len(all))
			}
			for _, l := range all {
				_, inM := ms[l]
				_, inR := rs[l]
				if inM == inR {
					t.Errorf("leaf %s must be in exactly one side", l.Message())
				}
				want, _ := p.Test(l)
				if inM != want {
					t.Errorf("leaf %s on wrong side", l.Message())
				}
			}
		})
	}
}

func TestSplitEqualsTwoSubgroups(t *testing.T) {
	tree := NewGroup("eg", []Node{
		New(CodeValue, "a"),
		NewGroup("nested", []Node{New(CodeType, "b"), New(CodeKey, "c")}),
	})
	p := MatchCodes(CodeType, CodeKey)

	matched, rest, err := Split(tree, p)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	wantMatched, _ := Subgroup(tree, p)
	wantRest, _ := Subgroup(tree, Not(p))

	assertSameShape(t, matched, wantMatched)
	assertSameShape(t, rest, wantRest)
}

// assertSameShape compares two trees by structure and leaf identity.
func assertSameShape(t *testing.T, got, want Node) {
	t.Helper()
	switch w := want.(type) {
	case nil:
		if got != nil {
			t.Fatalf("got %v, want nil", got)
		}
	case *Leaf:
		if got != Node(w) {
			t.Fatalf("got %v, want leaf %s by identity", got, w.Message())
		}
	case *Group:
		g, ok := got.(*Group)
		if !ok {
			t.Fatalf("got %T, want *Group", got)
		}
		if g.Label() != w.Label() || g.Len() != w.Len() {
			t.Fatalf("got %q/%d, want %q/%d", g.Label(), g.Len(), w.Label(), w.Len())
		}
		gc, wc := g.Children(), w.Children()
		for i := range wc {
			assertSameShape(t, gc[i], wc[i])
		}
	}
}

// ============================================================================
// 4. Predicate failure is fatal
// ============================================================================

func TestSubgroupPredicateFailureIsFatal(t *testing.T) {
	boom := errors.New("boom")
	tree := NewGroup("eg", []Node{
		New(CodeValue, "a"),
		New(CodeType, "b"),
	})
	p := MatchFunc(func(l *Leaf) (bool, error) {
		if l.Code() == CodeType {
			return false, boom
		}
		return true, nil
	})

	got, err := Subgroup(tree, p)
	if got != nil {
		t.Error("a failed partition must return no partial result")
	}
	var pe *PredicateError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want *PredicateError", err)
	}
	if pe.Leaf.Code() != CodeType {
		t.Errorf("PredicateError.Leaf code = %v, want %v", pe.Leaf.Code(), CodeType)
	}
	if !errors.Is(err, boom) {
		t.Error("the callable's error must be reachable through Unwrap")
	}
}

func TestSplitNilNode(t *testing.T) {
	matched, rest, err := Split(nil, Any())
	if err != nil || matched != nil || rest != nil {
		t.Error("splitting nil should yield nil sides and no error")
	}
}
