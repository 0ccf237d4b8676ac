package session

import (
	"context"

	"github.com/vk/prefixtree/internal/node"
)

// Tree is a point-in-time copy of a session's registries.
type Tree struct {
	Fieldsplits []string              `json:"fieldsplits" yaml:"fieldsplits"`
	Nodes       []*node.HierarchyNode `json:"nodes" yaml:"nodes"`
	Anchor      *node.CoarseAnchor    `json:"anchor,omitempty" yaml:"anchor,omitempty"`
}

// Snapshot returns a copy of the session's registries.
func (s *Session) Snapshot(ctx context.Context) Tree {
	s.mu.Lock()
	defer s.mu.Unlock()

	tree := Tree{
		Fieldsplits: s.store.FieldsplitNames(ctx),
		Nodes:       s.store.Nodes(ctx),
	}
	if s.anchor != nil {
		anchor := *s.anchor
		tree.Anchor = &anchor
	}
	return tree
}
