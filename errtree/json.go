package errtree

import (
	"encoding/json"
	"fmt"
)

// nodeJSON is the wire representation of a tree node. Cause links are owned
// and inlined; context links are non-owning back-references and travel as
// the referenced node's ID only, which also keeps the encoding acyclic.
type nodeJSON struct {
	Kind      string            `json:"kind"` // "leaf" or "group"
	ID        string            `json:"id"`
	Code      Code              `json:"code,omitempty"`
	Message   string            `json:"message,omitempty"`
	Label     string            `json:"label,omitempty"`
	Children  []*nodeJSON       `json:"children,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Cause     *nodeJSON         `json:"cause,omitempty"`
	ContextID string            `json:"context_id,omitempty"`
	Frames    []Frame           `json:"frames,omitempty"`
}

// Marshal encodes a tree for transport.
func Marshal(n Node) ([]byte, error) {
	if n == nil {
		return nil, fmt.Errorf("cannot marshal nil node")
	}
	return json.Marshal(toJSON(n))
}

// MarshalJSON implements json.Marshaler.
func (l *Leaf) MarshalJSON() ([]byte, error) {
	return json.Marshal(toJSON(l))
}

// MarshalJSON implements json.Marshaler.
func (g *Group) MarshalJSON() ([]byte, error) {
	return json.Marshal(toJSON(g))
}

func toJSON(n Node) *nodeJSON {
	if n == nil {
		return nil
	}
	j := &nodeJSON{
		ID:     n.ID(),
		Frames: n.Frames(),
		Cause:  toJSON(n.Cause()),
	}
	if ctx := n.Context(); ctx != nil {
		j.ContextID = ctx.ID()
	}
	switch t := n.(type) {
	case *Leaf:
		j.Kind = "leaf"
		j.Code = t.code
		j.Message = t.message
		if len(t.metadata) > 0 {
			j.Metadata = t.Metadata()
		}
	case *Group:
		j.Kind = "group"
		j.Label = t.label
		j.Children = make([]*nodeJSON, len(t.children))
		for i, c := range t.children {
			j.Children[i] = toJSON(c)
		}
	}
	return j
}

// Unmarshal decodes a tree from its wire form. Context references are
// resolved against the decoded tree; a reference to a node outside it is
// dropped.
func Unmarshal(data []byte) (Node, error) {
	var j nodeJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, err
	}
	d := &decoder{
		index: make(map[string]Node),
	}
	n, err := d.build(&j)
	if err != nil {
		return nil, err
	}
	d.resolveContexts()
	return n, nil
}

type decoder struct {
	index   map[string]Node
	pending []pendingContext
}

type pendingContext struct {
	node  Node
	ctxID string
}

func (d *decoder) build(j *nodeJSON) (Node, error) {
	if j == nil {
		return nil, nil
	}
	var cause Node
	if j.Cause != nil {
		c, err := d.build(j.Cause)
		if err != nil {
			return nil, err
		}
		cause = c
	}
	opts := []Option{WithID(j.ID), WithFrames(j.Frames...)}
	if cause != nil {
		opts = append(opts, WithCause(cause))
	}

	var n Node
	switch j.Kind {
	case "leaf":
		if len(j.Metadata) > 0 {
			opts = append(opts, WithMetadataMap(j.Metadata))
		}
		n = New(j.Code, j.Message, opts...)
	case "group":
		children := make([]Node, 0, len(j.Children))
		for _, cj := range j.Children {
			c, err := d.build(cj)
			if err != nil {
				return nil, err
			}
			children = append(children, c)
		}
		g := NewGroup(j.Label, children, opts...)
		if g == nil {
			return nil, fmt.Errorf("group %q has no children", j.Label)
		}
		n = g
	default:
		return nil, fmt.Errorf("unknown node kind %q", j.Kind)
	}

	d.index[j.ID] = n
	if j.ContextID != "" {
		d.pending = append(d.pending, pendingContext{node: n, ctxID: j.ContextID})
	}
	return n, nil
}

// resolveContexts wires context back-references once every node exists.
// This runs during construction, before the tree is shared, so assigning
// the link directly does not violate the immutability contract.
func (d *decoder) resolveContexts() {
	for _, p := range d.pending {
		target, ok := d.index[p.ctxID]
		if !ok {
			continue
		}
		switch t := p.node.(type) {
		case *Leaf:
			t.context = target
		case *Group:
			t.context = target
		}
	}
}
