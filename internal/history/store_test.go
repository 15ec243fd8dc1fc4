package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/clientgen/internal/pipeline"
)

func finishedRun(target string, start time.Time, state pipeline.State) *pipeline.Run {
	r := pipeline.NewRun(target)
	r.Start = start
	r.End = start.Add(3 * time.Second)
	r.State = state
	r.Steps = []pipeline.StepRecord{
		{Name: "generate", State: pipeline.StateGenerating, Result: pipeline.ResultSuccess, Duration: time.Second},
		{Name: "build", State: pipeline.StateBuilding, Result: pipeline.ResultFatal, Error: "tsc failed"},
	}
	if state == pipeline.StateFailed {
		r.Error = "step build: tsc failed"
	}
	return r
}

func TestRecordAndList(t *testing.T) {
	ctx := context.Background()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer s.Close()

	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	older := finishedRun("ng", base, pipeline.StateDone)
	newer := finishedRun("ts", base.Add(time.Hour), pipeline.StateFailed)
	require.NoError(t, s.Record(ctx, older))
	require.NoError(t, s.Record(ctx, newer))

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, newer.ID, all[0].ID)
	assert.Equal(t, pipeline.StateFailed, all[0].State)
	assert.Equal(t, "step build: tsc failed", all[0].Error)
	assert.Equal(t, 3*time.Second, all[0].Duration)
	assert.Len(t, all[0].Steps, 2)
	assert.Equal(t, pipeline.StepName("build"), all[0].Steps[1].Name)

	one, err := s.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	run := finishedRun("ng", time.Now(), pipeline.StateDone)
	require.NoError(t, s.Record(ctx, run))
	require.NoError(t, s.Record(ctx, run))

	got, err := s.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "ng", got.Target)
	assert.True(t, run.Start.Truncate(time.Millisecond).Equal(got.Start))

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
