// Package session provides the decoding context for solver-option prefixes.
//
// A Session owns the registries (through a nodestore.Store) and the multigrid
// coarse anchor for one stream of prefixes, typically one solver tree. Its
// operations are serialised, and distinct sessions share no mutable state, so
// several trees can be decoded concurrently.
//
//	s, _ := factory.NewSession(ctx)
//	res, _ := s.ResolveFieldsplit(ctx, "fieldsplit_u_ksp_")  // "00"
//	tag, _ := s.BuildHierarchyTag(ctx, "fieldsplit_u_ksp_", res.NodeIndex) // "0"
//
// Decode runs both steps and places the result in the node.
package session
