package pipeline

import "time"

// Observer receives callbacks around step execution and run completion.
type Observer interface {
	OnStepStart(run *Run, step StepName)
	OnStepComplete(run *Run, step StepName, d time.Duration, result StepResult)
	OnRunComplete(run *Run)
}

// NoopObserver is a no-op implementation.
type NoopObserver struct{}

func (NoopObserver) OnStepStart(*Run, StepName)                               {}
func (NoopObserver) OnStepComplete(*Run, StepName, time.Duration, StepResult) {}
func (NoopObserver) OnRunComplete(*Run)                                       {}

// Observers fans callbacks out to several observers in order.
type Observers []Observer

func (o Observers) OnStepStart(run *Run, step StepName) {
	for _, ob := range o {
		ob.OnStepStart(run, step)
	}
}

func (o Observers) OnStepComplete(run *Run, step StepName, d time.Duration, result StepResult) {
	for _, ob := range o {
		ob.OnStepComplete(run, step, d, result)
	}
}

func (o Observers) OnRunComplete(run *Run) {
	for _, ob := range o {
		ob.OnRunComplete(run)
	}
}
