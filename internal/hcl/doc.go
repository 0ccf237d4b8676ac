// Package hcl provides the concrete HCL implementation of the config.Loader
// interface. It parses rules files, evaluates their attribute expressions and
// binds the resulting cty values to the format-agnostic config.Rules model.
//
// A rules file holds at most one `rules` block:
//
//	rules {
//	  fieldsplit_marker = "fieldsplit_"
//	  keywords          = concat(defaults.keywords, ["schur"])
//	  nesting_segments  = ["ksp", "sub", "mg_coarse", "redundant"]
//	}
//
// Expressions may reference `defaults.<attribute>` and call `concat`,
// `distinct` and `setsubtract`. Omitted attributes keep their defaults.
package hcl
