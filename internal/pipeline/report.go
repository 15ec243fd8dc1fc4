package pipeline

import (
	"time"

	"github.com/google/uuid"
)

// StepResult is the outcome label of a single step.
type StepResult string

const (
	ResultSuccess  StepResult = "success"
	ResultWarning  StepResult = "warning"
	ResultFatal    StepResult = "fatal"
	ResultCanceled StepResult = "canceled"
)

// StepRecord captures one executed step.
type StepRecord struct {
	Name     StepName      `json:"name"`
	State    State         `json:"state"`
	Result   StepResult    `json:"result"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// Run is the mutable record of one pipeline execution. It is owned by a single
// goroutine; the runner is the only writer.
type Run struct {
	ID     string       `json:"id"`
	Target string       `json:"target"`
	State  State        `json:"state"`
	Start  time.Time    `json:"start"`
	End    time.Time    `json:"end"`
	Steps  []StepRecord `json:"steps"`
	Error  string       `json:"error,omitempty"`
}

// NewRun creates a run with a fresh id.
func NewRun(target string) *Run {
	return &Run{
		ID:     uuid.NewString(),
		Target: target,
		State:  StateNotStarted,
	}
}

// Duration is the wall time of a finished run.
func (r *Run) Duration() time.Duration {
	if r.End.IsZero() {
		return 0
	}
	return r.End.Sub(r.Start)
}

// Warnings returns the number of ignorable step failures.
func (r *Run) Warnings() int {
	n := 0
	for _, s := range r.Steps {
		if s.Result == ResultWarning {
			n++
		}
	}
	return n
}

func (r *Run) record(rec StepRecord) { r.Steps = append(r.Steps, rec) }

func (r *Run) finish(state State, err error) {
	r.State = state
	r.End = time.Now()
	if err != nil {
		r.Error = err.Error()
	}
}
