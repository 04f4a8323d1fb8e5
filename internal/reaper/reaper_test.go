package reaper

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"printfarm-backend/config"
	"printfarm-backend/internal/store"
)

type mockRequeuer struct {
	mu     sync.Mutex
	calls  int
	leases []time.Duration
	result []store.Requeued
	err    error
	swept  chan struct{}
}

func (m *mockRequeuer) RequeueStale(_ context.Context, lease time.Duration) ([]store.Requeued, error) {
	m.mu.Lock()
	m.calls++
	m.leases = append(m.leases, lease)
	m.mu.Unlock()
	if m.swept != nil {
		select {
		case m.swept <- struct{}{}:
		default:
		}
	}
	return m.result, m.err
}

func (m *mockRequeuer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func TestReaper_Disabled(t *testing.T) {
	m := &mockRequeuer{}
	r := New(config.AssignmentConfig{ReapInterval: time.Second}, m, zaptest.NewLogger(t).Sugar())

	assert.False(t, r.Enabled())
	r.Run(context.Background()) // returns immediately
	assert.Equal(t, 0, m.Calls())
}

func TestReaper_SweepOnce(t *testing.T) {
	m := &mockRequeuer{result: []store.Requeued{{OrderID: 1, PrinterID: 2}}}
	r := New(config.AssignmentConfig{Lease: time.Minute, ReapInterval: time.Second}, m, zaptest.NewLogger(t).Sugar())

	assert.Equal(t, 1, r.SweepOnce(context.Background()))
	assert.Equal(t, []time.Duration{time.Minute}, m.leases)

	m.err = errors.New("db down")
	m.result = nil
	assert.Equal(t, 0, r.SweepOnce(context.Background()), "errors are logged, not fatal")
}

func TestReaper_RunLoop(t *testing.T) {
	m := &mockRequeuer{swept: make(chan struct{}, 1)}
	r := New(config.AssignmentConfig{Lease: time.Minute, ReapInterval: 10 * time.Millisecond}, m, zaptest.NewLogger(t).Sugar())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	for i := 0; i < 3; i++ {
		select {
		case <-m.swept:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for sweep")
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop")
	}
	assert.GreaterOrEqual(t, m.Calls(), 3)
}
