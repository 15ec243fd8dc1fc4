// Package pipeline runs an ordered list of named steps against one working tree.
//
// Steps execute strictly in declaration order; a step starts only after its
// predecessor (including any external process it started) has returned. A fatal
// step error moves the run to StateFailed and no further step runs. Steps declared
// Ignorable have their errors logged and recorded as warnings instead.
//
// The package has no notion of what a step does; internal/generator builds the
// concrete step list for a GenerationTarget.
package pipeline
