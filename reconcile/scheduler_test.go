package reconcile

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goliatone/go-wizard/api"
	"github.com/goliatone/go-wizard/flow"
	"github.com/goliatone/go-wizard/payload"
	"github.com/goliatone/go-wizard/submit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleAfterCompletesAndReportsStatus(t *testing.T) {
	scheduler := NewScheduler()
	var count atomic.Int32

	handle, err := scheduler.ScheduleAfter(50*time.Millisecond, JobConfig{}, func(context.Context) error {
		count.Add(1)
		return nil
	})
	require.NoError(t, err)

	select {
	case <-handle.Done():
	case <-time.After(time.Second):
		t.Fatal("expected handle completion")
	}
	assert.Equal(t, int32(1), count.Load())
	assert.Equal(t, ScheduleStatusCompleted, handle.Status())
}

func TestScheduleAfterFailureReachesErrorHandler(t *testing.T) {
	errs := make(chan error, 1)
	scheduler := NewScheduler(WithErrorHandler(func(err error) { errs <- err }))

	handle, err := scheduler.ScheduleAfter(0, JobConfig{Name: "failing"}, func(context.Context) error {
		return storageDown()
	})
	require.NoError(t, err)

	select {
	case got := <-errs:
		assert.Contains(t, got.Error(), "storage down")
	case <-time.After(time.Second):
		t.Fatal("expected error handler call")
	}
	<-handle.Done()
	assert.Equal(t, ScheduleStatusFailed, handle.Status())
	assert.Error(t, handle.Err())
}

func TestScheduleAtCancelPreventsExecution(t *testing.T) {
	scheduler := NewScheduler()
	var count atomic.Int32

	handle, err := scheduler.ScheduleAt(time.Now().Add(250*time.Millisecond), JobConfig{}, func(context.Context) error {
		count.Add(1)
		return nil
	})
	require.NoError(t, err)

	handle.Cancel()
	select {
	case <-handle.Done():
	case <-time.After(time.Second):
		t.Fatal("expected canceled handle to be done")
	}

	time.Sleep(350 * time.Millisecond)
	assert.Zero(t, count.Load())
	assert.Equal(t, ScheduleStatusCanceled, handle.Status())
}

func TestScheduleCronRunsAfterStart(t *testing.T) {
	scheduler := NewScheduler()
	ran := make(chan struct{}, 4)

	handle, err := scheduler.ScheduleCron(JobConfig{Expression: "@every 1s"}, func(context.Context) error {
		ran <- struct{}{}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, ScheduleStatusScheduled, handle.Status())

	require.NoError(t, scheduler.Start(context.Background()))
	defer scheduler.Stop(context.Background())

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("expected cron job to run")
	}

	handle.Cancel()
	assert.Equal(t, ScheduleStatusCanceled, handle.Status())
}

func TestSchedulerStopMarksHandleStopped(t *testing.T) {
	scheduler := NewScheduler()
	handle, err := scheduler.ScheduleCron(JobConfig{Expression: "@every 5s"}, func(context.Context) error { return nil })
	require.NoError(t, err)

	require.NoError(t, scheduler.Start(context.Background()))
	require.NoError(t, scheduler.Stop(context.Background()))

	select {
	case <-handle.Done():
	case <-time.After(time.Second):
		t.Fatal("expected stopped handle to be done")
	}
	assert.Equal(t, ScheduleStatusStopped, handle.Status())
}

func TestScheduleCronValidation(t *testing.T) {
	scheduler := NewScheduler()
	noop := func(context.Context) error { return nil }

	_, err := scheduler.ScheduleCron(JobConfig{}, noop)
	assert.True(t, flow.HasCode(err, ErrCodeInvalidSchedule))

	_, err = scheduler.ScheduleCron(JobConfig{Expression: "@every 1s"}, nil)
	assert.True(t, flow.HasCode(err, ErrCodeInvalidSchedule))

	_, err = scheduler.ScheduleCron(JobConfig{Expression: "not a cron"}, noop)
	assert.True(t, flow.HasCode(err, ErrCodeInvalidSchedule))

	_, err = NewScheduler(WithParser(SecondsParser)).ScheduleCron(JobConfig{Expression: "*/5 * * * * *"}, noop)
	assert.NoError(t, err)
}

func TestWatchSweepsOnSchedule(t *testing.T) {
	ledger := testLedger()
	require.NoError(t, ledger.RecordPartial(context.Background(), samplePartial(api.KindProperty, "1", "a"), sampleWork()))

	resumed := make(chan string, 1)
	rc := NewReconciler(ledger, WithResumer(api.KindProperty, resumerFunc(
		func(_ context.Context, p submit.Partial, _ payload.Result) (submit.Outcome, error) {
			resumed <- p.EntityID
			return submit.Outcome{ID: p.EntityID}, nil
		})))

	scheduler := NewScheduler()
	_, err := rc.Watch(scheduler, "@every 1s")
	require.NoError(t, err)
	require.NoError(t, scheduler.Start(context.Background()))
	defer scheduler.Stop(context.Background())

	select {
	case id := <-resumed:
		assert.Equal(t, "1", id)
	case <-time.After(3 * time.Second):
		t.Fatal("expected sweep to resume the entry")
	}
}
