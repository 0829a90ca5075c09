package errtree

import (
	"fmt"

	"github.com/google/uuid"
)

// Node is an error tree node: either a *Leaf or a *Group. Nodes are
// immutable once constructed and safely shared by reference; the With*
// methods return a copy and never touch the receiver. Node identity (pointer
// equality) is distinct from structural equality: partitioning relies on
// identity to reuse subtrees instead of copying them.
type Node interface {
	error

	// ID returns the node's stable identifier, preserved across JSON
	// transport. Identity within a process is pointer identity, not ID.
	ID() string

	// Code returns the node's type tag. Groups report CodeAggregate.
	Code() Code

	// Cause returns the explicitly chained origin error, if any. The link
	// is owning: the node keeps its cause alive.
	Cause() Node

	// Context returns the node that was being handled when this one was
	// raised, if any. The link is a non-owning back-reference.
	Context() Node

	// Frames returns the recorded source locations, most recent first.
	Frames() []Frame

	// WithFrame returns a copy of the node whose frame list has f
	// prepended. The copy shares children, cause, context and the old
	// frame tail with the receiver.
	WithFrame(f Frame) Node

	// WithContext returns a copy of the node with its context link set.
	WithContext(ctx Node) Node
}

// options collects construction-time settings shared by leaves and groups.
type options struct {
	id       string
	cause    Node
	context  Node
	frames   *frameList
	metadata map[string]string
}

// Option is a functional option for constructing nodes.
type Option func(*options)

// WithCause sets the explicitly chained origin error.
func WithCause(cause Node) Option {
	return func(o *options) { o.cause = cause }
}

// WithContext sets the node that was being handled at the raise site.
func WithContext(ctx Node) Option {
	return func(o *options) { o.context = ctx }
}

// WithFrames sets the initial frame list, most recent first.
func WithFrames(frames ...Frame) Option {
	return func(o *options) { o.frames = fromFrames(frames) }
}

// WithMetadata adds a metadata key-value pair. Metadata applies to leaves
// only and is ignored by NewGroup.
func WithMetadata(key, value string) Option {
	return func(o *options) {
		if o.metadata == nil {
			o.metadata = make(map[string]string)
		}
		o.metadata[key] = value
	}
}

// WithMetadataMap adds multiple metadata key-value pairs.
func WithMetadataMap(m map[string]string) Option {
	return func(o *options) {
		if o.metadata == nil {
			o.metadata = make(map[string]string)
		}
		for k, v := range m {
			o.metadata[k] = v
		}
	}
}

// WithID overrides the generated identifier. Used when rebuilding a tree
// from its wire form.
func WithID(id string) Option {
	return func(o *options) { o.id = id }
}

// Leaf is an atomic, non-aggregated error value: a type tag plus payload,
// with optional cause/context links and a persistent frame list.
type Leaf struct {
	id       string
	code     Code
	message  string
	metadata map[string]string
	cause    Node
	context  Node
	frames   *frameList
}

// Compile-time guarantee that both node kinds implement Node.
var (
	_ Node = (*Leaf)(nil)
	_ Node = (*Group)(nil)
)

// New creates a leaf error with the given code and message.
func New(code Code, message string, opts ...Option) *Leaf {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.id == "" {
		o.id = uuid.New().String()
	}
	return &Leaf{
		id:       o.id,
		code:     code,
		message:  message,
		metadata: o.metadata,
		cause:    o.cause,
		context:  o.context,
		frames:   o.frames,
	}
}

// Newf creates a leaf error with a formatted message.
func Newf(code Code, format string, args ...interface{}) *Leaf {
	return New(code, fmt.Sprintf(format, args...))
}

// Error returns the leaf's message, including the cause when present.
func (l *Leaf) Error() string {
	if l.cause != nil {
		return fmt.Sprintf("%s: %v", l.message, l.cause)
	}
	return l.message
}

// ID returns the leaf's stable identifier.
func (l *Leaf) ID() string { return l.id }

// Code returns the leaf's type tag.
func (l *Leaf) Code() Code { return l.code }

// Message returns the leaf's message without the cause.
func (l *Leaf) Message() string { return l.message }

// Metadata returns a copy of the leaf's metadata.
func (l *Leaf) Metadata() map[string]string {
	if l.metadata == nil {
		return make(map[string]string)
	}
	out := make(map[string]string, len(l.metadata))
	for k, v := range l.metadata {
		out[k] = v
	}
	return out
}

// Cause returns the explicitly chained origin error.
func (l *Leaf) Cause() Node { return l.cause }

// Context returns the node being handled when this leaf was raised.
func (l *Leaf) Context() Node { return l.context }

// Frames returns the recorded source locations, most recent first.
func (l *Leaf) Frames() []Frame { return l.frames.slice() }

// Unwrap returns the cause for errors.Is / errors.As traversal.
func (l *Leaf) Unwrap() error {
	if l.cause == nil {
		return nil
	}
	return l.cause
}

// WithFrame returns a copy of the leaf with f prepended to its frames.
// Payload and metadata are shared, not duplicated.
func (l *Leaf) WithFrame(f Frame) Node {
	c := *l
	c.frames = l.frames.push(f)
	return &c
}

// WithContext returns a copy of the leaf with its context link set.
func (l *Leaf) WithContext(ctx Node) Node {
	c := *l
	c.context = ctx
	return &c
}

// Group is an internal tree node recording that its children were
// aggregated together. Children keep insertion order; every transform
// preserves it. A group observable outside the partition engine is never
// empty.
type Group struct {
	label    string
	children []Node
	id       string
	cause    Node
	context  Node
	frames   *frameList
}

// NewGroup creates a group with the given label and ordered children. Nil
// children are dropped; if none remain, NewGroup returns nil (mirroring
// errors.Join), so an empty group is never observable.
func NewGroup(label string, children []Node, opts ...Option) *Group {
	kept := make([]Node, 0, len(children))
	for _, c := range children {
		if c != nil {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.id == "" {
		o.id = uuid.New().String()
	}
	return &Group{
		label:    label,
		children: kept,
		id:       o.id,
		cause:    o.cause,
		context:  o.context,
		frames:   o.frames,
	}
}

// Error returns a compact description of the aggregate.
func (g *Group) Error() string {
	if g.label == "" {
		return fmt.Sprintf("aggregate of %d errors", len(g.children))
	}
	return fmt.Sprintf("%s (%d errors)", g.label, len(g.children))
}

// ID returns the group's stable identifier.
func (g *Group) ID() string { return g.id }

// Code returns the reserved aggregate tag.
func (g *Group) Code() Code { return CodeAggregate }

// Label returns the group's label.
func (g *Group) Label() string { return g.label }

// Children returns the group's children in insertion order. The slice is a
// copy; the children themselves are shared.
func (g *Group) Children() []Node {
	out := make([]Node, len(g.children))
	copy(out, g.children)
	return out
}

// Len returns the number of children.
func (g *Group) Len() int { return len(g.children) }

// Cause returns the explicitly chained origin error.
func (g *Group) Cause() Node { return g.cause }

// Context returns the node being handled when this group was raised.
func (g *Group) Context() Node { return g.context }

// Frames returns the recorded source locations, most recent first.
func (g *Group) Frames() []Frame { return g.frames.slice() }

// Unwrap returns the children as errors for errors.Is / errors.As
// traversal, like errors.Join.
func (g *Group) Unwrap() []error {
	out := make([]error, len(g.children))
	for i, c := range g.children {
		out[i] = c
	}
	return out
}

// WithFrame returns a copy of the group with f prepended to its frames.
// Children are shared with the receiver, not copied.
func (g *Group) WithFrame(f Frame) Node {
	c := *g
	c.frames = g.frames.push(f)
	return &c
}

// WithContext returns a copy of the group with its context link set.
func (g *Group) WithContext(ctx Node) Node {
	c := *g
	c.context = ctx
	return &c
}

// shell allocates a new group carrying the receiver's label and links but a
// different child set. Links are shared by reference; only the shell itself
// is new. Used by the partition engine when a subtree is not retained in
// full.
func (g *Group) shell(children []Node) *Group {
	return &Group{
		label:    g.label,
		children: children,
		id:       uuid.New().String(),
		cause:    g.cause,
		context:  g.context,
		frames:   g.frames,
	}
}

// Leaves returns every leaf of n in child order. A bare leaf yields itself.
func Leaves(n Node) []*Leaf {
	var out []*Leaf
	collectLeaves(n, &out)
	return out
}

func collectLeaves(n Node, out *[]*Leaf) {
	switch t := n.(type) {
	case *Leaf:
		*out = append(*out, t)
	case *Group:
		for _, c := range t.children {
			collectLeaves(c, out)
		}
	}
}
