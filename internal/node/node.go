package node

import (
	"slices"
	"strconv"
)

// RootID is the qualifier of the unqualified root node. Field-split nodes are
// identified by RootID followed by their field-split index.
const RootID = "0"

// RootIndex is the registry index of the root node.
const RootIndex = 0

// QualifierFor returns the node id of the field split registered at index.
func QualifierFor(fieldsplitIndex int) string {
	return RootID + strconv.Itoa(fieldsplitIndex)
}

// LevelRecord is one placed solver component within a hierarchy node.
type LevelRecord struct {
	// Endtag is the position of the component in the ksp/sub/multigrid nesting.
	Endtag string `json:"endtag" yaml:"endtag"`
	// Prefix is the raw prefix that placed the record. It is empty when the
	// record was created by a level-count update alone.
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	// Levels is the number of multigrid levels discovered for a coarse record.
	// Zero means no count has been recorded.
	Levels int `json:"levels,omitempty" yaml:"levels,omitempty"`
}

// HierarchyNode groups the records placed under one field-split qualifier.
type HierarchyNode struct {
	ID      string        `json:"id" yaml:"id"`
	Records []LevelRecord `json:"records" yaml:"records"`
}

// New creates an empty node with the given id.
func New(id string) *HierarchyNode {
	return &HierarchyNode{ID: id, Records: []LevelRecord{}}
}

// Record returns the position of the record keyed by endtag.
func (n *HierarchyNode) Record(endtag string) (int, bool) {
	i := slices.IndexFunc(n.Records, func(r LevelRecord) bool {
		return r.Endtag == endtag
	})
	return i, i >= 0
}

// Place adds a record for endtag unless one exists. An existing record
// created by a level-count update adopts prefix.
func (n *HierarchyNode) Place(endtag, prefix string) {
	if i, ok := n.Record(endtag); ok {
		if n.Records[i].Prefix == "" {
			n.Records[i].Prefix = prefix
		}
		return
	}
	n.Records = append(n.Records, LevelRecord{Endtag: endtag, Prefix: prefix})
}

// SetLevels sets the multigrid level count of the record keyed by endtag,
// creating the record when needed.
func (n *HierarchyNode) SetLevels(endtag string, levels int) {
	if i, ok := n.Record(endtag); ok {
		n.Records[i].Levels = levels
		return
	}
	n.Records = append(n.Records, LevelRecord{Endtag: endtag, Levels: levels})
}

// Clone returns a deep copy of the node.
func (n *HierarchyNode) Clone() *HierarchyNode {
	return &HierarchyNode{ID: n.ID, Records: slices.Clone(n.Records)}
}

// CoarseAnchor points at the most recently discovered multigrid coarse record.
type CoarseAnchor struct {
	NodeIndex int    `json:"node_index" yaml:"node_index"`
	Endtag    string `json:"endtag" yaml:"endtag"`
}
