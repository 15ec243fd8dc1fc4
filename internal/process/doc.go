// Package process is the single place where clientgen starts external programs:
// the generator jar, the package manager and the git client.
//
// Every invocation is bounded by a timeout. A command that exits non-zero fails with
// a *ProcessError unless the caller declared the failure tolerable, and a command that
// outlives its timeout always fails with a *ProcessTimeout.
package process
