package workers

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type countingWorker struct {
	runs   atomic.Int32
	panics bool
}

func (w *countingWorker) Run(ctx context.Context) error {
	w.runs.Add(1)
	if w.panics && w.runs.Load() == 1 {
		panic("boom")
	}
	return nil
}

func TestSupervisor_Run_FinishedWorkerIsNotRestarted(t *testing.T) {
	sup := NewSupervisor(testLogger())
	worker := &countingWorker{}
	sup.Add(worker)

	sup.Run(context.Background())

	require.Equal(t, int32(1), worker.runs.Load())
}

func TestSupervisor_Run_PanickingWorkerIsRestarted(t *testing.T) {
	sup := NewSupervisor(testLogger())
	worker := &countingWorker{panics: true}
	sup.Add(worker)

	// First run panics, second run returns nil and ends supervision
	done := make(chan struct{})
	go func() {
		sup.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("supervisor did not recover the panicking worker")
	}
	require.Equal(t, int32(2), worker.runs.Load())
}

func TestSupervisor_Stop_CancelsWorkers(t *testing.T) {
	sup := NewSupervisor(testLogger())

	started := make(chan struct{})
	blocking := workerFunc(func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return nil
	})
	sup.Add(blocking)

	done := make(chan struct{})
	go func() {
		sup.Run(context.Background())
		close(done)
	}()

	<-started
	sup.Stop()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("supervisor did not stop its workers")
	}
}

// workerFunc adapts a function to the Worker interface for tests.
type workerFunc func(ctx context.Context) error

func (f workerFunc) Run(ctx context.Context) error { return f(ctx) }
