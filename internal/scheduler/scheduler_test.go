package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	s, err := New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop() })
	return s
}

func TestAddCronJob(t *testing.T) {
	s := newTestScheduler(t)

	require.NoError(t, s.AddCronJob("monthly", "Monthly summary", "desc", "0 6 1 * *", func(context.Context) error { return nil }))
	s.Start()

	info, ok := s.Job("monthly")
	require.True(t, ok)
	assert.Equal(t, JobStatusScheduled, info.Status)
	assert.Equal(t, "0 6 1 * *", info.Schedule)
	assert.False(t, info.NextRun.IsZero())

	err := s.AddCronJob("monthly", "again", "", "0 6 1 * *", func(context.Context) error { return nil })
	assert.Error(t, err)
}

func TestAddCronJob_InvalidCron(t *testing.T) {
	s := newTestScheduler(t)
	err := s.AddCronJob("bad", "Bad", "", "not a cron", func(context.Context) error { return nil })
	assert.Error(t, err)
	assert.Empty(t, s.Jobs())
}

func TestRunJobNow(t *testing.T) {
	s := newTestScheduler(t)

	var runs atomic.Int32
	require.NoError(t, s.AddCronJob("ok", "OK", "", "0 0 1 1 *", func(context.Context) error {
		runs.Add(1)
		return nil
	}))
	require.NoError(t, s.AddCronJob("fail", "Fail", "", "0 0 1 1 *", func(context.Context) error {
		return errors.New("smtp down")
	}))
	s.Start()

	require.NoError(t, s.RunJobNow("ok"))
	require.NoError(t, s.RunJobNow("fail"))

	assert.Eventually(t, func() bool {
		info, _ := s.Job("ok")
		return info.Status == JobStatusCompleted
	}, 2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		info, _ := s.Job("fail")
		return info.Status == JobStatusFailed
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, int32(1), runs.Load())
	failed, _ := s.Job("fail")
	assert.Equal(t, 1, failed.ErrorCount)
	assert.Equal(t, "smtp down", failed.LastError)

	jobs := s.Jobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, "fail", jobs[0].ID)
	assert.Equal(t, "ok", jobs[1].ID)

	assert.Error(t, s.RunJobNow("missing"))
}
