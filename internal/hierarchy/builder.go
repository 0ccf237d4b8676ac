package hierarchy

import (
	"strings"

	"github.com/vk/prefixtree/internal/prefix"
)

// DefaultNestingSegments each open one level of nesting in the endtag.
var DefaultNestingSegments = []string{"ksp", "sub", prefix.MultigridCoarse, "redundant"}

// Plan is the outcome of walking one prefix.
type Plan struct {
	// Endtag is the accumulated position string.
	Endtag string
	// Coarse is true when the prefix ends in a multigrid coarse segment.
	Coarse bool
	// CoarseEndtag is the endtag of that coarse record. It becomes the
	// session's coarse anchor and may be empty when the coarse segment does
	// not nest.
	CoarseEndtag string
	// Levels is set (non-zero) when the prefix ends in a numbered multigrid
	// level. It is the level number plus one.
	Levels int
}

// SetsAnchor reports whether applying the plan records a coarse anchor.
func (p Plan) SetsAnchor() bool {
	return p.Coarse
}

// UpdatesLevels reports whether applying the plan updates a level count.
func (p Plan) UpdatesLevels() bool {
	return p.Levels > 0
}

// Builder computes endtags from prefix segments.
type Builder struct {
	nesting map[string]struct{}
}

// NewBuilder creates a Builder. An empty nesting list uses DefaultNestingSegments.
func NewBuilder(nesting []string) *Builder {
	if len(nesting) == 0 {
		nesting = DefaultNestingSegments
	}
	set := make(map[string]struct{}, len(nesting))
	for _, s := range nesting {
		set[s] = struct{}{}
	}
	return &Builder{nesting: set}
}

// Build walks segments in order and returns the resulting Plan. raw is only
// used for error reporting.
func (b *Builder) Build(raw string, segments []prefix.Segment) (Plan, error) {
	var (
		plan   Plan
		endtag strings.Builder
	)

	for i, seg := range segments {
		terminal := i == len(segments)-1

		if _, ok := b.nesting[seg.Text]; ok {
			endtag.WriteByte('0')
		} else if seg.IsLevel() {
			digit, level, ok := seg.LevelDigit()
			if !ok {
				return Plan{}, prefix.Malformed(raw, seg.Offset, "multigrid level %q has no level digit", seg.Text)
			}
			endtag.WriteByte(digit)
			if terminal {
				plan.Levels = level + 1
			}
		}

		if seg.Text == prefix.MultigridCoarse && terminal {
			plan.Coarse = true
			plan.CoarseEndtag = endtag.String()
		}
	}

	plan.Endtag = endtag.String()
	return plan, nil
}
