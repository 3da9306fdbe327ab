package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altlend/decisioning/internal/domain/port"
)

func TestRunner(t *testing.T) {
	logger := slog.Default()

	t.Run("processes submitted jobs", func(t *testing.T) {
		var mu sync.Mutex
		var handled []string
		done := make(chan struct{}, 3)

		runner := NewRunner(8, 2, func(_ context.Context, job port.RecomputeJob) error {
			mu.Lock()
			handled = append(handled, job.BorrowerID)
			mu.Unlock()
			done <- struct{}{}
			return nil
		}, logger)

		runner.Start(context.Background())
		defer runner.Stop()

		for i := 0; i < 3; i++ {
			runner.Submit(port.RecomputeJob{BorrowerID: fmt.Sprintf("borrower-%d", i)})
		}
		for i := 0; i < 3; i++ {
			select {
			case <-done:
			case <-time.After(2 * time.Second):
				t.Fatal("job was not processed in time")
			}
		}

		mu.Lock()
		defer mu.Unlock()
		assert.Len(t, handled, 3)
	})

	t.Run("submit never blocks when the queue is full", func(t *testing.T) {
		// No workers started: the queue fills and extra jobs drop.
		runner := NewRunner(1, 1, func(context.Context, port.RecomputeJob) error {
			return nil
		}, logger)

		submitted := make(chan struct{})
		go func() {
			runner.Submit(port.RecomputeJob{BorrowerID: "first"})
			runner.Submit(port.RecomputeJob{BorrowerID: "overflow-1"})
			runner.Submit(port.RecomputeJob{BorrowerID: "overflow-2"})
			close(submitted)
		}()

		select {
		case <-submitted:
		case <-time.After(time.Second):
			t.Fatal("submit blocked on a full queue")
		}
	})

	t.Run("a failing job does not stop the worker", func(t *testing.T) {
		done := make(chan string, 2)
		runner := NewRunner(8, 1, func(_ context.Context, job port.RecomputeJob) error {
			done <- job.BorrowerID
			if job.BorrowerID == "bad" {
				return fmt.Errorf("recompute failed")
			}
			return nil
		}, logger)

		runner.Start(context.Background())
		defer runner.Stop()

		runner.Submit(port.RecomputeJob{BorrowerID: "bad"})
		runner.Submit(port.RecomputeJob{BorrowerID: "good"})

		require.Equal(t, "bad", waitFor(t, done))
		require.Equal(t, "good", waitFor(t, done))
	})

	t.Run("a panicking job does not stop the worker", func(t *testing.T) {
		done := make(chan string, 2)
		runner := NewRunner(8, 1, func(_ context.Context, job port.RecomputeJob) error {
			if job.BorrowerID == "panics" {
				done <- job.BorrowerID
				panic("handler bug")
			}
			done <- job.BorrowerID
			return nil
		}, logger)

		runner.Start(context.Background())
		defer runner.Stop()

		runner.Submit(port.RecomputeJob{BorrowerID: "panics"})
		runner.Submit(port.RecomputeJob{BorrowerID: "survives"})

		require.Equal(t, "panics", waitFor(t, done))
		require.Equal(t, "survives", waitFor(t, done))
	})

	t.Run("stop drains and is idempotent", func(t *testing.T) {
		runner := NewRunner(8, 2, func(context.Context, port.RecomputeJob) error {
			return nil
		}, logger)
		runner.Start(context.Background())
		runner.Submit(port.RecomputeJob{BorrowerID: "borrower-1"})
		runner.Stop()
		runner.Stop()
	})
}

func waitFor(t *testing.T, ch chan string) string {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for job")
		return ""
	}
}
