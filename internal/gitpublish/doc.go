// Package gitpublish pushes a generated tree to its remote repository and tags it
// with the spec version. Commands run through the process runner one after another;
// a small set of them may fail without aborting the sequence.
package gitpublish
