package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes the top level of a rules file.
type fileRoot struct {
	Rules  []*rulesBlock `hcl:"rules,block"`
	Remain hcl.Body      `hcl:",remain"`
}

// rulesBlock is the HCL schema of a `rules` block. List attributes are kept
// as expressions so they can be evaluated against the defaults.
type rulesBlock struct {
	FieldsplitMarker *string        `hcl:"fieldsplit_marker,optional"`
	Keywords         hcl.Expression `hcl:"keywords,optional"`
	NestingSegments  hcl.Expression `hcl:"nesting_segments,optional"`
}
