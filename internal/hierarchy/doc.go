// Package hierarchy turns tokenized solver prefixes into endtags.
//
// An endtag is a compact digit string placing a solver component within the
// ksp/sub/multigrid nesting of its hierarchy node. Nesting segments append a
// `0`, numbered multigrid levels append their level digit, and every other
// segment is transparent.
//
// Build only computes a Plan. Registry side effects (the multigrid coarse
// anchor and level counts) are applied by the caller once the whole prefix has
// been consumed without error.
package hierarchy
