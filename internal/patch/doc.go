// Package patch rewrites generated files in place.
//
// JSON patches operate on a Document: the transform edits individual fields by
// path, unrelated fields (and their order) survive byte-for-byte, and the result
// is re-indented deterministically so that re-applying a patch is a no-op.
// Text patches hand the whole file to a pure string transform.
//
// Writes go through a temporary file in the same directory followed by a rename,
// and files whose content did not change are not rewritten.
package patch
