package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyAt(t *testing.T) {
	next := DailyAt(6, 30, time.UTC)

	before := time.Date(2024, 5, 10, 5, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 10, 6, 30, 0, 0, time.UTC), next(before))

	exact := time.Date(2024, 5, 10, 6, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 11, 6, 30, 0, 0, time.UTC), next(exact))

	endOfMonth := time.Date(2024, 5, 31, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 6, 1, 6, 30, 0, 0, time.UTC), next(endOfMonth))
}

func TestMonthlyAt(t *testing.T) {
	next := MonthlyAt(16, 6, 0, time.UTC)

	assert.Equal(t,
		time.Date(2024, 5, 16, 6, 0, 0, 0, time.UTC),
		next(time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)))

	assert.Equal(t,
		time.Date(2024, 6, 16, 6, 0, 0, 0, time.UTC),
		next(time.Date(2024, 5, 16, 7, 0, 0, 0, time.UTC)))

	assert.Equal(t,
		time.Date(2025, 1, 16, 6, 0, 0, 0, time.UTC),
		next(time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC)))
}

func TestSubmitRecordsRuns(t *testing.T) {
	w := NewWorker(2)

	require.NoError(t, w.Submit("overdue_sweep", func(ctx context.Context) error { return nil }))
	require.NoError(t, w.Submit("monthly_pricing", func(ctx context.Context) error { return errors.New("no quotes") }))
	w.Shutdown()

	stats := w.GetStats()
	assert.Equal(t, int64(2), stats.CompletedJobs)
	assert.Equal(t, int64(1), stats.FailedJobs)
	assert.Equal(t, 0, stats.ActiveJobs)
	assert.Empty(t, stats.Running)
	assert.Equal(t, 2, stats.Workers)

	require.Contains(t, stats.LastRuns, "overdue_sweep")
	assert.Empty(t, stats.LastRuns["overdue_sweep"].Error)
	assert.Equal(t, "no quotes", stats.LastRuns["monthly_pricing"].Error)
	assert.False(t, stats.LastRuns["monthly_pricing"].FinishedAt.Before(stats.LastRuns["monthly_pricing"].StartedAt))
}

func TestSubmitRejectsOverlappingRun(t *testing.T) {
	w := NewWorker(2)

	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, w.Submit("monthly_pricing", func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	}))
	<-started

	assert.ErrorIs(t, w.Submit("monthly_pricing", func(ctx context.Context) error { return nil }), ErrJobRunning)
	assert.Equal(t, []string{"monthly_pricing"}, w.GetStats().Running)
	assert.NoError(t, w.Submit("overdue_sweep", func(ctx context.Context) error { return nil }))

	close(release)
	w.Shutdown()

	assert.Equal(t, int64(2), w.GetStats().CompletedJobs)
	assert.ErrorIs(t, w.Submit("monthly_pricing", func(ctx context.Context) error { return nil }), ErrStopped)
}

func TestWorkerRecoversPanic(t *testing.T) {
	w := NewWorker(1)
	require.NoError(t, w.Submit("lease_expiry", func(ctx context.Context) error {
		panic("bad job")
	}))
	w.Shutdown()

	stats := w.GetStats()
	assert.Equal(t, int64(1), stats.FailedJobs)
	assert.Equal(t, "panic: bad job", stats.LastRuns["lease_expiry"].Error)
}

func TestScheduleCalendarStopsOnShutdown(t *testing.T) {
	w := NewWorker(1)
	ran := make(chan struct{}, 1)
	w.ScheduleCalendar("overdue_sweep", func(now time.Time) time.Time {
		return now.Add(10 * time.Millisecond)
	}, func(ctx context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled job did not run")
	}
	w.Shutdown()
	assert.NotZero(t, w.GetStats().CompletedJobs)
}
