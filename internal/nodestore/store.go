// Package nodestore defines the interface for the registries a decoding
// session mutates: the field-split name registry and the hierarchy node
// registry.
//
// # Registries
//
// Both registries are append-only for the lifetime of a session:
//   - **Field-split names** are indexed in strict first-seen order. The first
//     name gets index 0 and an index is never reassigned.
//   - **Hierarchy nodes** are indexed by creation order. Index 0 is always the
//     root node (id "0"); registering a new field-split name appends exactly one
//     node whose id is the root id followed by the field-split index.
//
// Records inside a node are keyed by endtag and may be placed or have their
// multigrid level count updated, but are never removed.
//
// # Lifecycle
//
// A store is created once per decoding session and discarded with it. It is
// never shared between sessions, which keeps decoding streams independent.
package nodestore

import (
	"context"

	"github.com/vk/prefixtree/internal/node"
)

// Registration describes where a field-split name lives in the registries.
type Registration struct {
	// FieldsplitIndex is the first-seen index of the name.
	FieldsplitIndex int
	// NodeIndex is the index of the hierarchy node created for the name.
	NodeIndex int
	// Created is true when this call registered the name.
	Created bool
}

// Store is the interface for the session registries.
//
// # Thread-Safety Requirements
//
// Implementations MUST be safe for concurrent use. The session serialises its
// own decoding calls, but snapshots may be read from other goroutines while a
// stream is being decoded.
type Store interface {
	// LookupFieldsplit returns the registration of a known field-split name
	// without modifying the store.
	LookupFieldsplit(ctx context.Context, name string) (Registration, bool)

	// RegisterFieldsplit returns the registration of name, appending the name
	// and creating its hierarchy node on first encounter.
	RegisterFieldsplit(ctx context.Context, name string) (Registration, error)

	// FieldsplitNames returns the registered names in index order.
	FieldsplitNames(ctx context.Context) []string

	// NodeCount returns the number of hierarchy nodes, including the root.
	NodeCount(ctx context.Context) int

	// Node returns a copy of the node at index. It returns an error wrapping
	// prefix.ErrUnknownNodeIndex when index is out of range.
	Node(ctx context.Context, index int) (*node.HierarchyNode, error)

	// Nodes returns copies of all nodes in index order.
	Nodes(ctx context.Context) []*node.HierarchyNode

	// PlaceRecord adds a record for endtag to the node at index. Placing the
	// same endtag twice is not an error, it's idempotent.
	PlaceRecord(ctx context.Context, index int, endtag, rawPrefix string) error

	// SetLevels sets the multigrid level count of the record keyed by endtag
	// in the node at index, creating the record when it does not exist.
	SetLevels(ctx context.Context, index int, endtag string, levels int) error
}
