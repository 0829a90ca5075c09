package errtree

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestMarshalUnmarshalLeaf(t *testing.T) {
	l := New(CodeTimeout, "deadline passed",
		WithMetadata("op", "fetch"),
		WithFrames(Frame{Function: "pkg.fetch", File: "fetch.go", Line: 42}))

	data, err := Marshal(l)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	back, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	got, ok := back.(*Leaf)
	if !ok {
		t.Fatalf("Unmarshal() = %T, want *Leaf", back)
	}
	if got.ID() != l.ID() {
		t.Error("leaf ID must survive the round trip")
	}
	if got.Code() != CodeTimeout || got.Message() != "deadline passed" {
		t.Error("payload must survive the round trip")
	}
	if got.Metadata()["op"] != "fetch" {
		t.Error("metadata must survive the round trip")
	}
	frames := got.Frames()
	if len(frames) != 1 || frames[0].Line != 42 {
		t.Errorf("frames must survive in order, got %v", frames)
	}
}

func TestMarshalUnmarshalTreeWithCause(t *testing.T) {
	cause := New(CodeOS, "connection reset")
	tree := NewGroup("batch", []Node{
		New(CodeNetwork, "fetch failed", WithCause(cause)),
		NewGroup("inner", []Node{New(CodeValue, "bad row")}),
	})

	data, err := Marshal(tree)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	back, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	g, ok := back.(*Group)
	if !ok {
		t.Fatalf("Unmarshal() = %T, want *Group", back)
	}
	if g.Label() != "batch" || g.Len() != 2 {
		t.Fatalf("got %q/%d, want batch/2", g.Label(), g.Len())
	}

	first := g.Children()[0].(*Leaf)
	if first.Cause() == nil || first.Cause().Code() != CodeOS {
		t.Error("owned cause must be inlined and rebuilt")
	}

	inner, ok := g.Children()[1].(*Group)
	if !ok || inner.Label() != "inner" {
		t.Error("nested group must survive with its label")
	}
}

func TestUnmarshalResolvesContextReference(t *testing.T) {
	handled := New(CodeValue, "being handled")
	raisedDuring := New(CodeInternal, "secondary", WithContext(handled))
	tree := NewGroup("eg", []Node{handled, raisedDuring})

	data, err := Marshal(tree)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	// Context travels as an ID reference, not an inlined copy.
	if strings.Count(string(data), "being handled") != 1 {
		t.Error("the context target must not be serialized twice")
	}

	back, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	g := back.(*Group)
	gotHandled := g.Children()[0].(*Leaf)
	gotRaised := g.Children()[1].(*Leaf)
	if gotRaised.Context() != Node(gotHandled) {
		t.Error("context must resolve to the decoded sibling by identity")
	}
}

func TestUnmarshalDropsDanglingContext(t *testing.T) {
	outside := New(CodeValue, "not serialized")
	l := New(CodeInternal, "x", WithContext(outside))

	data, err := Marshal(l)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	back, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if back.Context() != nil {
		t.Error("a context reference outside the tree must be dropped")
	}
}

func TestUnmarshalRejectsUnknownKind(t *testing.T) {
	if _, err := Unmarshal([]byte(`{"kind":"blob","id":"x"}`)); err == nil {
		t.Error("unknown node kind must be rejected")
	}
}

func TestMarshalJSONMethods(t *testing.T) {
	g := NewGroup("g", []Node{New(CodeValue, "a")})

	data, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	var probe struct {
		Kind  string `json:"kind"`
		Label string `json:"label"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		t.Fatalf("probe decode error = %v", err)
	}
	if probe.Kind != "group" || probe.Label != "g" {
		t.Errorf("unexpected wire form: %s", data)
	}
}
