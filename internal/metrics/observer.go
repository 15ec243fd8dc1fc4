package metrics

import (
	"time"

	"git.home.luguber.info/inful/clientgen/internal/pipeline"
)

// Observer forwards pipeline callbacks to a Recorder.
type Observer struct{ rec Recorder }

// NewObserver wraps rec; a nil rec records nothing.
func NewObserver(rec Recorder) *Observer {
	if rec == nil {
		rec = NoopRecorder{}
	}
	return &Observer{rec: rec}
}

func (o *Observer) OnStepStart(*pipeline.Run, pipeline.StepName) {}

func (o *Observer) OnStepComplete(_ *pipeline.Run, step pipeline.StepName, d time.Duration, result pipeline.StepResult) {
	if result != pipeline.ResultCanceled {
		o.rec.ObserveStepDuration(string(step), d)
	}
	o.rec.IncStepResult(string(step), ResultLabel(result))
}

func (o *Observer) OnRunComplete(run *pipeline.Run) {
	o.rec.ObserveRunDuration(run.Target, run.Duration())
	switch {
	case run.State != pipeline.StateDone:
		o.rec.IncRunOutcome(run.Target, OutcomeFailed)
	case run.Warnings() > 0:
		o.rec.IncRunOutcome(run.Target, OutcomeWarning)
		o.rec.SetLastSuccess(run.Target, run.End)
	default:
		o.rec.IncRunOutcome(run.Target, OutcomeSuccess)
		o.rec.SetLastSuccess(run.Target, run.End)
	}
}
