package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/prefixtree/internal/app"
)

// AssertPlacement checks that prefix was decoded to qualifier and endtag.
func AssertPlacement(t *testing.T, res *app.StreamResult, prefix, qualifier, endtag string) {
	t.Helper()

	for _, p := range res.Placements {
		if p.Prefix == prefix {
			assert.Equal(t, qualifier, p.Qualifier, "qualifier of %q", prefix)
			assert.Equal(t, endtag, p.Endtag, "endtag of %q", prefix)
			assert.Equal(t, qualifier+endtag, p.ID, "id of %q", prefix)
			return
		}
	}
	require.FailNow(t, "prefix not placed", "%q was not decoded in %s", prefix, res.Source)
}

// AssertLevels checks the multigrid level count of a record in the node with id nodeID.
func AssertLevels(t *testing.T, res *app.StreamResult, nodeID, endtag string, levels int) {
	t.Helper()

	for _, n := range res.Tree.Nodes {
		if n.ID != nodeID {
			continue
		}
		i, ok := n.Record(endtag)
		require.True(t, ok, "node %s has no record %q", nodeID, endtag)
		assert.Equal(t, levels, n.Records[i].Levels, "levels of %s/%s", nodeID, endtag)
		return
	}
	require.FailNow(t, "node not found", "no node %q in %s", nodeID, res.Source)
}
