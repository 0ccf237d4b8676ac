// Package node defines the hierarchy nodes a decoding session places solver
// components into.
//
// A session holds one HierarchyNode per field-split qualifier. Each node keeps
// its LevelRecords in placement order, keyed by endtag; a multigrid coarse
// record additionally carries the number of levels seen below it.
package node
