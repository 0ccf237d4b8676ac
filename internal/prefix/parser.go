// internal/prefix/parser.go
package prefix

import (
	"fmt"
	"slices"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Tokenize splits a raw prefix into its logical segments. Every segment,
// including the last one, must be terminated by an underscore.
func Tokenize(raw string) ([]Segment, error) {
	var segments []Segment
	pos := 0
	for pos < len(raw) {
		rest := raw[pos:]
		end := strings.IndexByte(rest, '_')
		if end < 0 {
			return nil, Malformed(raw, pos, "segment %q is not terminated by an underscore", rest)
		}

		chunk := rest[:end]
		if chunk == Multigrid {
			if end = nextUnderscore(rest, end+1); end < 0 {
				return nil, Malformed(raw, pos, "multigrid segment %q has no stage", rest)
			}
			chunk = rest[:end]
		}
		if chunk == MultigridLevels {
			if end = nextUnderscore(rest, end+1); end < 0 {
				return nil, Malformed(raw, pos, "multigrid level segment %q has no level number", rest)
			}
			chunk = rest[:end]
		}

		segments = append(segments, Segment{Text: chunk, Offset: pos})
		pos += end + 1
	}
	return segments, nil
}

// nextUnderscore returns the index of the first underscore in s at or after from.
func nextUnderscore(s string, from int) int {
	if from >= len(s) {
		return -1
	}
	i := strings.IndexByte(s[from:], '_')
	if i < 0 {
		return -1
	}
	return from + i
}

// Tokenizer wraps Tokenize with an optional LRU cache. It is safe for
// concurrent use and may be shared by any number of sessions.
type Tokenizer struct {
	cache *lru.Cache[string, []Segment]
}

// NewTokenizer creates a Tokenizer caching up to size results. A size of zero
// disables caching.
func NewTokenizer(size int) (*Tokenizer, error) {
	if size < 0 {
		return nil, fmt.Errorf("tokenizer cache size must not be negative, got %d", size)
	}
	if size == 0 {
		return &Tokenizer{}, nil
	}
	cache, err := lru.New[string, []Segment](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create tokenizer cache: %w", err)
	}
	return &Tokenizer{cache: cache}, nil
}

// Tokenize returns the segments of raw. Errors are never cached.
func (t *Tokenizer) Tokenize(raw string) ([]Segment, error) {
	if t == nil || t.cache == nil {
		return Tokenize(raw)
	}
	if segments, ok := t.cache.Get(raw); ok {
		return slices.Clone(segments), nil
	}
	segments, err := Tokenize(raw)
	if err != nil {
		return nil, err
	}
	t.cache.Add(raw, slices.Clone(segments))
	return segments, nil
}

// Len returns the number of cached prefixes.
func (t *Tokenizer) Len() int {
	if t == nil || t.cache == nil {
		return 0
	}
	return t.cache.Len()
}
