// internal/prefix/doc.go

/*
Package prefix splits raw solver-option prefixes into logical segments.

A prefix is an underscore-terminated sequence of segments, e.g.
`fieldsplit_u_ksp_mg_levels_2_`. Most segments end at the next underscore,
but the multigrid stages carry underscores of their own:

	mg_<stage>        `mg` always extends to the second underscore
	mg_levels_<n>     `mg_levels` extends to the third underscore

so the example above tokenizes to `fieldsplit`, `u`, `ksp`, `mg_levels_2`.

The package also owns the error taxonomy shared by the decoding packages.
*/
package prefix
