// Package errtree provides an immutable, persistent error tree for
// aggregating many failures into one value, plus the partition primitives
// that carve a tree apart by predicate.
//
// # Data model
//
// A tree is built from two node kinds: Leaf, an atomic error carrying a
// type tag (Code), a message and metadata; and Group, an internal node
// recording that its ordered children were aggregated together. Both kinds
// carry three links: an owned Cause (explicit chaining), a non-owning
// Context (the node being handled when this one was raised), and Frames, a
// prepend-only list of source locations.
//
// Nodes are read-only once constructed. Recording a frame or a context
// produces a copy sharing everything else with the original, so trees are
// safe to share by reference across goroutines.
//
// # Partitioning
//
// Subgroup carves out the subtree whose leaves satisfy a predicate;
// Split computes a subgroup together with its complement in one traversal.
// Both preserve child order and structure, prune branches left empty, and
// reuse any fully-retained subtree by identity instead of copying it.
//
// Predicates are a code set, a whole category, or an arbitrary callable,
// all tested through one Predicate.Test. A callable that itself fails
// aborts the whole partition with *PredicateError and no partial result.
//
// # Transport
//
// Trees serialize to JSON for cross-process transport. Node IDs are stable
// UUIDs so context back-references survive the round trip; in-process
// identity remains pointer identity.
package errtree
