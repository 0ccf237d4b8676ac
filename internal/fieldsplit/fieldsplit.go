// Package fieldsplit extracts the field-split name from a raw solver prefix.
//
// Field-split names are chosen by the user and may themselves contain
// underscores, so the end of a name is found by scanning for the first
// reserved solver-stage keyword rather than the next underscore. Only one
// level of field-split nesting is recognised.
package fieldsplit

import (
	"strings"

	"github.com/vk/prefixtree/internal/prefix"
)

// DefaultMarker introduces a field-split name in a prefix.
const DefaultMarker = "fieldsplit_"

// DefaultKeywords are the solver-stage keywords that terminate a field-split name.
var DefaultKeywords = []string{"pc", "ksp", "sub", "smoothing", "coarse", "redundant", "mg"}

// Extractor finds field-split names using a marker and a keyword set.
type Extractor struct {
	marker   string
	keywords []string
}

// NewExtractor creates an Extractor. Empty arguments fall back to the defaults.
func NewExtractor(marker string, keywords []string) *Extractor {
	if marker == "" {
		marker = DefaultMarker
	}
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	return &Extractor{
		marker:   marker,
		keywords: append([]string(nil), keywords...),
	}
}

// Marker returns the field-split marker.
func (e *Extractor) Marker() string {
	return e.marker
}

// Extract returns the field-split name in raw. found is false when raw has no
// marker, in which case raw belongs to the root node.
//
// The name runs from the end of the marker up to the underscore that precedes
// the earliest keyword occurrence, or the final underscore of raw when no
// keyword follows. Keywords match as substrings by character offset.
func (e *Extractor) Extract(raw string) (name string, found bool, err error) {
	markerAt := strings.Index(raw, e.marker)
	if markerAt < 0 {
		return "", false, nil
	}
	start := markerAt + len(e.marker)
	rest := raw[start:]

	boundary := len(rest)
	for _, kw := range e.keywords {
		if loc := strings.Index(rest, kw); loc >= 0 && loc < boundary {
			boundary = loc
		}
	}

	if boundary == 0 {
		return "", true, prefix.Malformed(raw, start, "field-split marker is not followed by a name")
	}
	if rest[boundary-1] != '_' {
		return "", true, prefix.Malformed(raw, start+boundary-1, "field-split name %q is not terminated by an underscore", rest[:boundary])
	}
	name = rest[:boundary-1]
	if name == "" {
		return "", true, prefix.Malformed(raw, start, "field-split name is empty")
	}
	return name, true, nil
}
