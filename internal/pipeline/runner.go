package pipeline

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/clientgen/internal/foundation/errors"
	"git.home.luguber.info/inful/clientgen/internal/logfields"
)

// Execute runs steps in order against run, stopping at the first fatal error.
// The returned error is a *StepError naming the failed step.
func Execute(ctx context.Context, run *Run, steps []StepDef, obs Observer) error {
	if obs == nil {
		obs = NoopObserver{}
	}
	if err := Validate(steps); err != nil {
		err = errors.WrapError(err, errors.CategoryInternal, "invalid step list").Fatal().Build()
		run.Start = time.Now()
		run.finish(StateFailed, err)
		obs.OnRunComplete(run)
		return err
	}

	run.Start = time.Now()
	log := slog.With(logfields.RunID(run.ID), logfields.Target(run.Target))

	for _, st := range steps {
		if err := ctx.Err(); err != nil {
			run.record(StepRecord{Name: st.Name, State: st.State, Result: ResultCanceled, Error: err.Error()})
			obs.OnStepComplete(run, st.Name, 0, ResultCanceled)
			se := &StepError{Step: st.Name, Err: err}
			run.finish(StateFailed, se)
			obs.OnRunComplete(run)
			log.Warn("Pipeline canceled", logfields.Step(string(st.Name)))
			return se
		}

		if run.State != st.State {
			log.Debug("Pipeline state transition", slog.String("from", string(run.State)), logfields.State(string(st.State)))
			run.State = st.State
		}

		obs.OnStepStart(run, st.Name)
		log.Info("Step started", logfields.Step(string(st.Name)))

		t0 := time.Now()
		err := st.Fn(ctx)
		dur := time.Since(t0)

		rec := StepRecord{Name: st.Name, State: st.State, Result: ResultSuccess, Duration: dur}
		switch {
		case err == nil:
			log.Info("Step completed", logfields.Step(string(st.Name)), logfields.Duration(dur))
		case st.Tolerance == Ignorable:
			rec.Result = ResultWarning
			rec.Error = err.Error()
			log.Warn("Step failed (ignored)", logfields.Step(string(st.Name)), logfields.Duration(dur), logfields.Error(err))
		default:
			rec.Result = ResultFatal
			rec.Error = err.Error()
		}
		run.record(rec)
		obs.OnStepComplete(run, st.Name, dur, rec.Result)

		if rec.Result == ResultFatal {
			se := &StepError{Step: st.Name, Err: err}
			run.finish(StateFailed, se)
			obs.OnRunComplete(run)
			log.Error("Step failed", logfields.Step(string(st.Name)), logfields.Duration(dur), logfields.Error(err))
			return se
		}
	}

	run.finish(StateDone, nil)
	obs.OnRunComplete(run)
	log.Info("Pipeline completed", logfields.Duration(run.Duration()), slog.Int("warnings", run.Warnings()))
	return nil
}
