// internal/prefix/types.go
package prefix

import "strings"

const (
	// Multigrid is the bare multigrid segment head.
	Multigrid = "mg"
	// MultigridLevels is the head of a multigrid level segment before its number.
	MultigridLevels = "mg_levels"
	// MultigridCoarse is the multigrid coarse-grid segment.
	MultigridCoarse = "mg_coarse"
	// LevelsPrefix prefixes every numbered multigrid level segment.
	LevelsPrefix = MultigridLevels + "_"
)

// Segment is one logical component of a prefix.
type Segment struct {
	// Text is the segment without its trailing underscore, e.g. `ksp` or `mg_levels_2`.
	Text string
	// Offset is the byte offset of the segment in the raw prefix.
	Offset int
}

// IsLevel reports whether the segment names a numbered multigrid level.
func (s Segment) IsLevel() bool {
	return strings.HasPrefix(s.Text, LevelsPrefix)
}

// LevelDigit returns the level number of a `mg_levels_<n>` segment. Only the
// first character after the prefix is read, so levels are limited to 0-9.
func (s Segment) LevelDigit() (digit byte, level int, ok bool) {
	if !s.IsLevel() || len(s.Text) == len(LevelsPrefix) {
		return 0, 0, false
	}
	c := s.Text[len(LevelsPrefix)]
	if c < '0' || c > '9' {
		return 0, 0, false
	}
	return c, int(c - '0'), true
}

// Texts returns the segment texts in order.
func Texts(segments []Segment) []string {
	out := make([]string, len(segments))
	for i, s := range segments {
		out[i] = s.Text
	}
	return out
}
