package pipeline

import (
	"context"
	"fmt"
)

// StepName identifies a pipeline step.
type StepName string

// StepFunc performs one unit of work.
type StepFunc func(ctx context.Context) error

// Tolerance declares how a step failure affects the run.
type Tolerance int

const (
	// Fatal failures abort the run.
	Fatal Tolerance = iota
	// Ignorable failures are recorded as warnings and the run continues.
	Ignorable
)

func (t Tolerance) String() string {
	if t == Ignorable {
		return "ignorable"
	}
	return "fatal"
}

// StepDef pairs a step name with its function, the run state it executes in and
// its failure tolerance.
type StepDef struct {
	Name      StepName
	State     State
	Tolerance Tolerance
	Fn        StepFunc
}

// Pipeline is a fluent builder for ordered step definitions.
type Pipeline struct{ defs []StepDef }

// New creates an empty pipeline.
func New() *Pipeline { return &Pipeline{defs: make([]StepDef, 0, 10)} }

// Add appends a fatal step.
func (p *Pipeline) Add(name StepName, state State, fn StepFunc) *Pipeline {
	p.defs = append(p.defs, StepDef{Name: name, State: state, Tolerance: Fatal, Fn: fn})
	return p
}

// AddIf appends a fatal step only if cond is true.
func (p *Pipeline) AddIf(cond bool, name StepName, state State, fn StepFunc) *Pipeline {
	if cond {
		p.Add(name, state, fn)
	}
	return p
}

// Build returns a copy of the step definitions.
func (p *Pipeline) Build() []StepDef {
	out := make([]StepDef, len(p.defs))
	copy(out, p.defs)
	return out
}

// Validate checks that names are unique and states never move backwards.
func Validate(steps []StepDef) error {
	seen := make(map[StepName]bool, len(steps))
	prev := StateNotStarted
	for _, s := range steps {
		if s.Fn == nil {
			return fmt.Errorf("step %s has no function", s.Name)
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate step %s", s.Name)
		}
		seen[s.Name] = true
		if !s.State.active() {
			return fmt.Errorf("step %s declares non-working state %s", s.Name, s.State)
		}
		if s.State.order() < prev.order() {
			return fmt.Errorf("step %s moves state back from %s to %s", s.Name, prev, s.State)
		}
		prev = s.State
	}
	return nil
}

// StepError is a fatal step failure.
type StepError struct {
	Step StepName
	Err  error
}

func (e *StepError) Error() string { return fmt.Sprintf("step %s: %v", e.Step, e.Err) }
func (e *StepError) Unwrap() error { return e.Err }
