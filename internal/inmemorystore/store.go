package inmemorystore

import (
	"context"
	"fmt"
	"sync"

	"github.com/vk/prefixtree/internal/node"
	"github.com/vk/prefixtree/internal/nodestore"
	"github.com/vk/prefixtree/internal/prefix"
)

// Store implements the nodestore.Store interface using slices and a mutex.
// Field-split names and nodes are kept in insertion order, so a slice index is
// also the registry index.
type Store struct {
	mu sync.RWMutex

	names  []string
	byName map[string]nodestore.Registration // Key: field-split name
	nodes  []*node.HierarchyNode
}

// New creates a store holding only the root node.
func New() nodestore.Store {
	return &Store{
		byName: make(map[string]nodestore.Registration),
		nodes:  []*node.HierarchyNode{node.New(node.RootID)},
	}
}

// LookupFieldsplit returns the registration of a known name.
func (s *Store) LookupFieldsplit(ctx context.Context, name string) (nodestore.Registration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reg, ok := s.byName[name]
	return reg, ok
}

// RegisterFieldsplit registers name on first encounter.
func (s *Store) RegisterFieldsplit(ctx context.Context, name string) (nodestore.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if reg, ok := s.byName[name]; ok {
		return reg, nil
	}

	index := len(s.names)
	n := node.New(node.QualifierFor(index))
	for _, existing := range s.nodes {
		if existing.ID == n.ID {
			return nodestore.Registration{}, fmt.Errorf("hierarchy node %q already exists", n.ID)
		}
	}

	s.names = append(s.names, name)
	s.nodes = append(s.nodes, n)
	reg := nodestore.Registration{
		FieldsplitIndex: index,
		NodeIndex:       len(s.nodes) - 1,
	}
	s.byName[name] = reg

	reg.Created = true
	return reg, nil
}

// FieldsplitNames returns a copy of the registered names.
func (s *Store) FieldsplitNames(ctx context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]string(nil), s.names...)
}

// NodeCount returns the number of nodes.
func (s *Store) NodeCount(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.nodes)
}

// Node returns a copy of the node at index.
func (s *Store) Node(ctx context.Context, index int) (*node.HierarchyNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, err := s.nodeAt(index)
	if err != nil {
		return nil, err
	}
	return n.Clone(), nil
}

// Nodes returns copies of all nodes.
func (s *Store) Nodes(ctx context.Context) []*node.HierarchyNode {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := make([]*node.HierarchyNode, 0, len(s.nodes))
	for _, n := range s.nodes {
		nodes = append(nodes, n.Clone())
	}
	return nodes
}

// PlaceRecord places a record in the node at index.
func (s *Store) PlaceRecord(ctx context.Context, index int, endtag, rawPrefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.nodeAt(index)
	if err != nil {
		return err
	}
	n.Place(endtag, rawPrefix)
	return nil
}

// SetLevels updates the level count of a record in the node at index.
func (s *Store) SetLevels(ctx context.Context, index int, endtag string, levels int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.nodeAt(index)
	if err != nil {
		return err
	}
	n.SetLevels(endtag, levels)
	return nil
}

// nodeAt must be called with s.mu held.
func (s *Store) nodeAt(index int) (*node.HierarchyNode, error) {
	if index < 0 || index >= len(s.nodes) {
		return nil, fmt.Errorf("node index %d (registry holds %d nodes): %w", index, len(s.nodes), prefix.ErrUnknownNodeIndex)
	}
	return s.nodes[index], nil
}
