package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/vk/prefixtree/internal/fieldsplit"
	"github.com/vk/prefixtree/internal/hierarchy"
)

// Rules controls how prefixes are decoded.
type Rules struct {
	// FieldsplitMarker introduces a field-split name, e.g. "fieldsplit_".
	FieldsplitMarker string
	// Keywords terminate a field-split name.
	Keywords []string
	// NestingSegments each append a `0` to the endtag.
	NestingSegments []string
}

// DefaultRules returns the standard PETSc decoding rules.
func DefaultRules() *Rules {
	return &Rules{
		FieldsplitMarker: fieldsplit.DefaultMarker,
		Keywords:         slices.Clone(fieldsplit.DefaultKeywords),
		NestingSegments:  slices.Clone(hierarchy.DefaultNestingSegments),
	}
}

// Validate checks that the rules can drive a decoder.
func (r *Rules) Validate() error {
	var errs []error
	if r.FieldsplitMarker == "" {
		errs = append(errs, errors.New("fieldsplit_marker cannot be empty"))
	} else if !strings.HasSuffix(r.FieldsplitMarker, "_") {
		errs = append(errs, fmt.Errorf("fieldsplit_marker %q must end with an underscore", r.FieldsplitMarker))
	}
	if len(r.Keywords) == 0 {
		errs = append(errs, errors.New("keywords cannot be empty"))
	}
	for _, kw := range r.Keywords {
		if kw == "" {
			errs = append(errs, errors.New("keywords cannot contain an empty string"))
			break
		}
	}
	if len(r.NestingSegments) == 0 {
		errs = append(errs, errors.New("nesting_segments cannot be empty"))
	}
	for _, s := range r.NestingSegments {
		if strings.HasSuffix(s, "_") || s == "" {
			errs = append(errs, fmt.Errorf("nesting segment %q must be a non-empty name without a trailing underscore", s))
		}
	}
	return errors.Join(errs...)
}
