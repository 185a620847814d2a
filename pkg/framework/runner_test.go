package framework

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunnerWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	runner := NewRunnerWith(ctx)
	runner.Go(RunFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return context.Canceled
	}))
	runner.Go(RunFunc(func(ctx context.Context) error {
		return nil
	}))
	cancel()
	require.NoError(t, runner.Wait())
}

func TestRunnerWaitAggregates(t *testing.T) {
	runner := NewRunner()
	errA, errB := errors.New("a"), errors.New("b")
	runner.Go(RunFunc(func(context.Context) error { return errA }))
	runner.Go(RunFunc(func(context.Context) error { return errB }))
	err := runner.Wait()
	require.Error(t, err)
	aggregated, ok := err.(*AggregatedError)
	require.True(t, ok)
	require.Len(t, aggregated.Errors, 2)
}

func TestRunnerWaitFatal(t *testing.T) {
	runner := NewRunner()
	fatal := Fatal(errors.New("broken"))
	runner.Go(RunFunc(func(ctx context.Context) error {
		// Never returns on its own; Wait must not wait for it.
		<-ctx.Done()
		return ctx.Err()
	}))
	runner.Go(RunFunc(func(context.Context) error { return fatal }))
	done := make(chan error, 1)
	go func() { done <- runner.Wait() }()
	select {
	case err := <-done:
		require.Equal(t, fatal, err)
		require.True(t, IsFatal(err))
	case <-time.After(time.Second):
		t.Fatal("Wait did not return on fatal error")
	}
}

func TestRunWithContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	release := make(chan struct{})
	var canceled bool
	done := make(chan error, 1)
	go func() {
		done <- RunWithContextCancel(ctx, func() {
			canceled = true
			close(release)
		}, func() error {
			<-release
			return errors.New("late")
		})
	}()
	cancel()
	select {
	case err := <-done:
		require.Equal(t, context.Canceled, err)
		require.True(t, canceled)
	case <-time.After(time.Second):
		t.Fatal("RunWithContextCancel did not return")
	}
}

func TestRunWithContextCompletion(t *testing.T) {
	wantErr := errors.New("done")
	err := RunWithContext(context.Background(), func() error {
		return wantErr
	})
	require.Equal(t, wantErr, err)
}

func TestFatalError(t *testing.T) {
	require.Nil(t, Fatal(nil))
	err := Fatal(errors.New("broken"))
	require.True(t, IsFatal(err))
	require.Equal(t, "fatal: broken", err.Error())
	require.False(t, IsFatal(errors.New("broken")))
	require.False(t, IsFatal(nil))
}

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Aggregate())
	errs.Add(nil, errors.New("a"), nil, errors.New("b"))
	require.Len(t, errs.Errors, 2)
	require.Equal(t, "Multiple errors:\na\nb", errs.Aggregate().Error())
}

func TestNamedRun(t *testing.T) {
	r := NamedRun("task", RunFunc(func(context.Context) error { return nil }))
	named, ok := r.(Named)
	require.True(t, ok)
	require.Equal(t, "task", named.Name())
}
