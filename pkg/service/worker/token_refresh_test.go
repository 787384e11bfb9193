package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/deckmemo/pkg/service/worker"
)

type mockRefresher struct {
	mu     sync.Mutex
	err    error
	called int
}

func (m *mockRefresher) Refresh(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.called++
	return m.err
}

func (m *mockRefresher) Expiry() time.Time {
	return time.Now().Add(time.Hour)
}

func (m *mockRefresher) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.called
}

func (m *mockRefresher) setError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func waitForCalls(t *testing.T, m *mockRefresher, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if m.calls() >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected at least %d refresh calls, got %d", want, m.calls())
}

func TestTokenRefreshWorker_ImmediateInitialRefresh(t *testing.T) {
	m := &mockRefresher{}
	w := worker.NewTokenRefreshWorker(m, time.Hour)

	gt.NoError(t, w.Start(context.Background()))
	waitForCalls(t, m, 1)
	w.Stop()

	gt.Value(t, m.calls()).Equal(1)
}

func TestTokenRefreshWorker_PeriodicRefresh(t *testing.T) {
	m := &mockRefresher{}
	w := worker.NewTokenRefreshWorker(m, 20*time.Millisecond)

	gt.NoError(t, w.Start(context.Background()))
	waitForCalls(t, m, 3)
	w.Stop()
}

func TestTokenRefreshWorker_ContinuesAfterFailure(t *testing.T) {
	m := &mockRefresher{}
	m.setError(errors.New("metadata server unavailable"))
	w := worker.NewTokenRefreshWorker(m, 20*time.Millisecond)

	gt.NoError(t, w.Start(context.Background()))
	waitForCalls(t, m, 2)

	m.setError(nil)
	before := m.calls()
	waitForCalls(t, m, before+1)
	w.Stop()
}

func TestTokenRefreshWorker_StopsOnContextCancel(t *testing.T) {
	m := &mockRefresher{}
	w := worker.NewTokenRefreshWorker(m, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	gt.NoError(t, w.Start(ctx))
	waitForCalls(t, m, 1)
	cancel()

	// Stop must return once the loop has exited
	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after context cancellation")
	}
}

func TestNewTokenRefreshWorker_DefaultInterval(t *testing.T) {
	m := &mockRefresher{}
	w := worker.NewTokenRefreshWorker(m, 0)

	gt.NoError(t, w.Start(context.Background()))
	waitForCalls(t, m, 1)
	w.Stop()
	gt.Value(t, m.calls()).Equal(1)
}

func TestTokenRefreshWorker_StopTwice(t *testing.T) {
	m := &mockRefresher{}
	w := worker.NewTokenRefreshWorker(m, time.Hour)

	gt.NoError(t, w.Start(context.Background()))
	waitForCalls(t, m, 1)
	w.Stop()
	w.Stop()
}
