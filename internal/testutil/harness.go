// Package testutil provides shared helpers for end-to-end decoding tests.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/prefixtree/internal/app"
	"github.com/vk/prefixtree/internal/hcl"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds everything a decoding run produced.
type HarnessResult struct {
	Results   []app.StreamResult
	LogOutput string
	Err       error
}

// Result returns the stream decoded from the file called name.
func (r *HarnessResult) Result(t *testing.T, name string) *app.StreamResult {
	t.Helper()
	for i := range r.Results {
		if filepath.Base(r.Results[i].Source) == name {
			return &r.Results[i]
		}
	}
	require.FailNow(t, "stream not found", "no result for %q", name)
	return nil
}

// WriteFiles writes files (relative path to content) into a temporary
// directory and returns the absolute paths in lexical order.
func WriteFiles(t *testing.T, files map[string]string) []string {
	t.Helper()
	dir := t.TempDir()

	paths := make([]string, 0, len(files))
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// RunDecode decodes files with cfg and returns the JSON results. Inputs, Format
// and LogLevel of cfg are overridden.
func RunDecode(t *testing.T, files map[string]string, cfg app.Config) *HarnessResult {
	t.Helper()

	cfg.Inputs = WriteFiles(t, files)
	cfg.Format = app.FormatJSON
	cfg.LogLevel = "debug"
	if cfg.Workers == 0 {
		cfg.Workers = 4
	}
	appConfig, err := app.NewConfig(cfg)
	require.NoError(t, err)

	out := &bytes.Buffer{}
	logs := &SafeBuffer{}
	a, err := app.NewApp(out, logs, appConfig, hcl.NewLoader())
	require.NoError(t, err)

	result := &HarnessResult{Err: a.Run(context.Background(), nil)}
	result.LogOutput = logs.String()
	if out.Len() > 0 {
		require.NoError(t, json.Unmarshal(out.Bytes(), &result.Results))
	}

	t.Cleanup(func() {
		if os.Getenv("PREFIXTREE_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), result.LogOutput)
		}
	})
	return result
}
