package hcl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/prefixtree/internal/config"
)

func writeRules(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoader_EmptyPathUsesDefaults(t *testing.T) {
	rules, err := NewLoader().Load(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultRules(), rules)
}

func TestLoader_Load(t *testing.T) {
	testCases := []struct {
		name     string
		content  string
		expected *config.Rules
	}{
		{
			name: "all attributes",
			content: `
				rules {
				  fieldsplit_marker = "split_"
				  keywords          = ["ksp", "pc"]
				  nesting_segments  = ["ksp"]
				}
			`,
			expected: &config.Rules{
				FieldsplitMarker: "split_",
				Keywords:         []string{"ksp", "pc"},
				NestingSegments:  []string{"ksp"},
			},
		},
		{
			name: "omitted attributes keep defaults",
			content: `
				rules {
				  nesting_segments = ["ksp", "sub"]
				}
			`,
			expected: &config.Rules{
				FieldsplitMarker: "fieldsplit_",
				Keywords:         config.DefaultRules().Keywords,
				NestingSegments:  []string{"ksp", "sub"},
			},
		},
		{
			name: "expressions over defaults",
			content: `
				rules {
				  keywords         = concat(defaults.keywords, ["schur"])
				  nesting_segments = setsubtract(defaults.nesting_segments, ["redundant"])
				}
			`,
			expected: &config.Rules{
				FieldsplitMarker: "fieldsplit_",
				Keywords:         []string{"pc", "ksp", "sub", "smoothing", "coarse", "redundant", "mg", "schur"},
				NestingSegments:  []string{"ksp", "mg_coarse", "sub"},
			},
		},
		{
			name:     "no rules block",
			content:  `# nothing here`,
			expected: config.DefaultRules(),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeRules(t, tc.content)
			rules, err := NewLoader().Load(context.Background(), path)
			require.NoError(t, err)
			assert.Equal(t, tc.expected.FieldsplitMarker, rules.FieldsplitMarker)
			assert.Equal(t, tc.expected.Keywords, rules.Keywords)
			assert.ElementsMatch(t, tc.expected.NestingSegments, rules.NestingSegments)
		})
	}
}

func TestLoader_Errors(t *testing.T) {
	testCases := []struct {
		name        string
		content     string
		expectedErr string
	}{
		{
			name:        "syntax error",
			content:     `rules {`,
			expectedErr: "failed to parse HCL file",
		},
		{
			name:        "unknown attribute",
			content:     `rules { levels = 3 }`,
			expectedErr: "failed to decode HCL file",
		},
		{
			name: "two rules blocks",
			content: `
				rules {}
				rules {}
			`,
			expectedErr: "declares 2 rules blocks",
		},
		{
			name:        "wrong type",
			content:     `rules { keywords = { a = "b" } }`,
			expectedErr: "cannot convert keywords",
		},
		{
			name:        "unknown variable",
			content:     `rules { keywords = missing.keywords }`,
			expectedErr: "failed to evaluate keywords",
		},
		{
			name:        "invalid rules",
			content:     `rules { fieldsplit_marker = "fieldsplit" }`,
			expectedErr: "must end with an underscore",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeRules(t, tc.content)
			_, err := NewLoader().Load(context.Background(), path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.expectedErr)
		})
	}
}

func TestLoader_MissingFile(t *testing.T) {
	_, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "absent.hcl"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading rules file")
}
