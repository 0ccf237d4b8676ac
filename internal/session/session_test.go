package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/prefixtree/internal/config"
	"github.com/vk/prefixtree/internal/inmemorystore"
	"github.com/vk/prefixtree/internal/node"
	"github.com/vk/prefixtree/internal/prefix"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	tok, err := prefix.NewTokenizer(16)
	require.NoError(t, err)
	s, err := New(inmemorystore.New(), config.DefaultRules(), tok)
	require.NoError(t, err)
	return s
}

func TestResolveFieldsplit_NoMarker(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	for _, raw := range []string{"", "ksp_", "mg_coarse_", "ksp_sub_pc_"} {
		res, err := s.ResolveFieldsplit(ctx, raw)
		require.NoError(t, err)
		assert.Equal(t, Resolution{Qualifier: "0", NodeIndex: 0}, res)
	}

	tree := s.Snapshot(ctx)
	assert.Empty(t, tree.Fieldsplits)
	assert.Len(t, tree.Nodes, 1)
}

func TestResolveFieldsplit_SameNameTwice(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	first, err := s.ResolveFieldsplit(ctx, "fieldsplit_u_ksp_")
	require.NoError(t, err)
	second, err := s.ResolveFieldsplit(ctx, "fieldsplit_u_pc_")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "00", first.Qualifier)
	assert.Equal(t, []string{"u"}, s.Snapshot(ctx).Fieldsplits)
}

func TestResolveFieldsplit_FirstSeenOrder(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	names := []string{"u", "p", "T", "velocity_x"}
	for i, name := range names {
		res, err := s.ResolveFieldsplit(ctx, "fieldsplit_"+name+"_ksp_")
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("0%d", i), res.Qualifier)
		assert.Equal(t, i+1, res.NodeIndex)
	}

	// Revisiting an earlier name keeps its index.
	res, err := s.ResolveFieldsplit(ctx, "fieldsplit_p_mg_coarse_")
	require.NoError(t, err)
	assert.Equal(t, "01", res.Qualifier)

	tree := s.Snapshot(ctx)
	assert.Equal(t, names, tree.Fieldsplits)
	require.Len(t, tree.Nodes, len(names)+1)
	for i := range names {
		assert.Equal(t, node.QualifierFor(i), tree.Nodes[i+1].ID)
	}
}

func TestResolveFieldsplit_Malformed(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	_, err := s.ResolveFieldsplit(ctx, "fieldsplit_u")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedPrefix))
	assert.Empty(t, s.Snapshot(ctx).Fieldsplits)
}

func TestBuildHierarchyTag_NestingSegments(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	testCases := []struct {
		raw      string
		expected string
	}{
		{raw: "ksp_", expected: "0"},
		{raw: "sub_", expected: "0"},
		{raw: "redundant_", expected: "0"},
		{raw: "ksp_sub_", expected: "00"},
		{raw: "ksp_pc_sub_pc_redundant_", expected: "000"},
		{raw: "pc_", expected: ""},
		{raw: "ksp_mg_levels_4_ksp_", expected: "040"},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			tag, err := s.BuildHierarchyTag(ctx, tc.raw, node.RootIndex)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, tag)
		})
	}
}

func TestBuildHierarchyTag_FieldsplitExample(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	res, err := s.ResolveFieldsplit(ctx, "fieldsplit_u_ksp_")
	require.NoError(t, err)
	assert.Equal(t, "00", res.Qualifier)

	tag, err := s.BuildHierarchyTag(ctx, "ksp_", 0)
	require.NoError(t, err)
	assert.Equal(t, "0", tag)

	tag, err = s.BuildHierarchyTag(ctx, "fieldsplit_u_ksp_", res.NodeIndex)
	require.NoError(t, err)
	assert.Equal(t, "0", tag)
}

func TestBuildHierarchyTag_MultigridLevels(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	tag, err := s.BuildHierarchyTag(ctx, "mg_coarse_", node.RootIndex)
	require.NoError(t, err)
	assert.Equal(t, "0", tag)

	anchor, ok := s.Anchor()
	require.True(t, ok)
	assert.Equal(t, node.CoarseAnchor{NodeIndex: node.RootIndex, Endtag: "0"}, anchor)

	tag, err = s.BuildHierarchyTag(ctx, "mg_levels_2_", node.RootIndex)
	require.NoError(t, err)
	assert.Equal(t, "2", tag)

	root := s.Snapshot(ctx).Nodes[node.RootIndex]
	require.Len(t, root.Records, 1)
	assert.Equal(t, node.LevelRecord{Endtag: "0", Levels: 3}, root.Records[0])

	// A later, deeper level overwrites the count.
	_, err = s.BuildHierarchyTag(ctx, "mg_levels_3_", node.RootIndex)
	require.NoError(t, err)
	root = s.Snapshot(ctx).Nodes[node.RootIndex]
	assert.Equal(t, 4, root.Records[0].Levels)
}

func TestBuildHierarchyTag_NestedCoarseAnchor(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	_, err := s.BuildHierarchyTag(ctx, "ksp_sub_mg_coarse_", node.RootIndex)
	require.NoError(t, err)
	anchor, ok := s.Anchor()
	require.True(t, ok)
	assert.Equal(t, "000", anchor.Endtag)

	// Non-terminal coarse segments leave the anchor alone.
	_, err = s.BuildHierarchyTag(ctx, "mg_coarse_ksp_", node.RootIndex)
	require.NoError(t, err)
	anchor, _ = s.Anchor()
	assert.Equal(t, "000", anchor.Endtag)
}

func TestBuildHierarchyTag_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("unresolved coarse anchor", func(t *testing.T) {
		s := newTestSession(t)
		_, err := s.BuildHierarchyTag(ctx, "mg_levels_1_", node.RootIndex)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnresolvedCoarseAnchor))
		assert.Empty(t, s.Snapshot(ctx).Nodes[0].Records)
	})

	t.Run("anchor on another node", func(t *testing.T) {
		s := newTestSession(t)
		res, err := s.ResolveFieldsplit(ctx, "fieldsplit_u_mg_coarse_")
		require.NoError(t, err)
		_, err = s.BuildHierarchyTag(ctx, "mg_coarse_", res.NodeIndex)
		require.NoError(t, err)

		_, err = s.BuildHierarchyTag(ctx, "mg_levels_1_", node.RootIndex)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnresolvedCoarseAnchor))
		assert.Contains(t, err.Error(), "belongs to node 1")
	})

	t.Run("unknown node index", func(t *testing.T) {
		s := newTestSession(t)
		_, err := s.BuildHierarchyTag(ctx, "ksp_", 3)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnknownNodeIndex))

		_, err = s.BuildHierarchyTag(ctx, "ksp_", -1)
		assert.True(t, errors.Is(err, ErrUnknownNodeIndex))
	})

	t.Run("malformed prefix keeps previous anchor", func(t *testing.T) {
		s := newTestSession(t)
		_, err := s.BuildHierarchyTag(ctx, "mg_coarse_", node.RootIndex)
		require.NoError(t, err)

		_, err = s.BuildHierarchyTag(ctx, "ksp_mg_coarse", node.RootIndex)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMalformedPrefix))

		anchor, ok := s.Anchor()
		require.True(t, ok)
		assert.Equal(t, "0", anchor.Endtag)
	})
}

func TestDecode_Tree(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	prefixes := []string{
		"mg_coarse_",
		"mg_levels_1_",
		"fieldsplit_u_ksp_",
		"fieldsplit_p_ksp_",
		"fieldsplit_u_ksp_",
	}
	var placements []Placement
	for _, raw := range prefixes {
		p, err := s.Decode(ctx, raw)
		require.NoError(t, err)
		placements = append(placements, p)
	}

	assert.Equal(t, Placement{ID: "01", Prefix: "mg_levels_1_", Qualifier: "0", NodeIndex: 0, Endtag: "1"}, placements[1])
	assert.Equal(t, Placement{ID: "010", Prefix: "fieldsplit_p_ksp_", Qualifier: "01", NodeIndex: 2, Endtag: "0"}, placements[3])

	expected := Tree{
		Fieldsplits: []string{"u", "p"},
		Nodes: []*node.HierarchyNode{
			{ID: "0", Records: []node.LevelRecord{
				{Endtag: "0", Prefix: "mg_coarse_", Levels: 2},
				{Endtag: "1", Prefix: "mg_levels_1_"},
			}},
			{ID: "00", Records: []node.LevelRecord{{Endtag: "0", Prefix: "fieldsplit_u_ksp_"}}},
			{ID: "01", Records: []node.LevelRecord{{Endtag: "0", Prefix: "fieldsplit_p_ksp_"}}},
		},
		Anchor: &node.CoarseAnchor{NodeIndex: 0, Endtag: "0"},
	}
	if diff := cmp.Diff(expected, s.Snapshot(ctx)); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_FieldsplitMultigrid(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	coarse, err := s.Decode(ctx, "fieldsplit_p_mg_coarse_")
	require.NoError(t, err)
	assert.Equal(t, "00", coarse.Qualifier)
	assert.Equal(t, "0", coarse.Endtag)

	_, err = s.Decode(ctx, "fieldsplit_p_mg_levels_4_")
	require.NoError(t, err)

	n := s.Snapshot(ctx).Nodes[coarse.NodeIndex]
	idx, ok := n.Record("0")
	require.True(t, ok)
	assert.Equal(t, 5, n.Records[idx].Levels)
}

func TestDecode_CoarseLevelsWithoutCoarseNesting(t *testing.T) {
	rules := config.DefaultRules()
	rules.NestingSegments = []string{"ksp", "sub", "redundant"}
	tok, err := prefix.NewTokenizer(0)
	require.NoError(t, err)
	s, err := New(inmemorystore.New(), rules, tok)
	require.NoError(t, err)
	ctx := context.Background()

	coarse, err := s.Decode(ctx, "mg_coarse_")
	require.NoError(t, err)
	assert.Equal(t, "", coarse.Endtag)

	anchor, ok := s.Anchor()
	require.True(t, ok)
	assert.Equal(t, coarse.Endtag, anchor.Endtag)

	_, err = s.Decode(ctx, "mg_levels_2_")
	require.NoError(t, err)

	root := s.Snapshot(ctx).Nodes[node.RootIndex]
	idx, ok := root.Record("")
	require.True(t, ok)
	assert.Equal(t, node.LevelRecord{Endtag: "", Prefix: "mg_coarse_", Levels: 3}, root.Records[idx])
	_, ok = root.Record("0")
	assert.False(t, ok, "level count must not create a separate record")
}

func TestDecode_NoPartialRegistration(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	_, err := s.Decode(ctx, "fieldsplit_u_mg_levels_2_")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnresolvedCoarseAnchor))

	_, err = s.Decode(ctx, "fieldsplit_p_ksp_sub")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedPrefix))

	tree := s.Snapshot(ctx)
	assert.Empty(t, tree.Fieldsplits)
	require.Len(t, tree.Nodes, 1)
	assert.Empty(t, tree.Nodes[0].Records)
	assert.Nil(t, tree.Anchor)

	// The first successful field split still gets index 0.
	p, err := s.Decode(ctx, "fieldsplit_p_ksp_")
	require.NoError(t, err)
	assert.Equal(t, "00", p.Qualifier)
}

func TestSessions_AreIndependent(t *testing.T) {
	factory, err := NewFactory(nil, nil)
	require.NoError(t, err)
	ctx := context.Background()

	numSessions := 8
	sessions := make([]*Session, numSessions)
	for i := range sessions {
		sessions[i], err = factory.NewSession(ctx)
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	wg.Add(numSessions)
	for i, s := range sessions {
		go func(i int, s *Session) {
			defer wg.Done()
			for j := 0; j <= i; j++ {
				if _, err := s.Decode(ctx, fmt.Sprintf("fieldsplit_s%d_f%d_ksp_", i, j)); err != nil {
					t.Errorf("session %d: %v", i, err)
					return
				}
			}
			if _, err := s.Decode(ctx, "mg_coarse_"); err != nil {
				t.Errorf("session %d: %v", i, err)
			}
		}(i, s)
	}
	wg.Wait()

	for i, s := range sessions {
		tree := s.Snapshot(ctx)
		assert.Len(t, tree.Fieldsplits, i+1)
		assert.Equal(t, fmt.Sprintf("s%d_f0", i), tree.Fieldsplits[0])
		require.NotNil(t, tree.Anchor)
		assert.Equal(t, 0, tree.Anchor.NodeIndex)
	}
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, nil, nil)
	require.Error(t, err)

	rules := config.DefaultRules()
	rules.Keywords = nil
	_, err = New(inmemorystore.New(), rules, nil)
	require.Error(t, err)

	_, err = NewFactory(rules, nil)
	require.Error(t, err)
}
