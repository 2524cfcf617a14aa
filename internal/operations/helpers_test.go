package operations_test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// mockStep is a configurable Step for tests
type mockStep struct {
	id    string
	rows  int
	err   error
	delay time.Duration
	// wait blocks Execute until the channel is closed
	wait chan struct{}

	calls    atomic.Int32
	mu       sync.Mutex
	gotCtxOK bool
}

func newStep(id string, rows int) *mockStep {
	return &mockStep{id: id, rows: rows}
}

func failingStep(id string, err error) *mockStep {
	return &mockStep{id: id, err: err}
}

func (m *mockStep) ID() string   { return m.id }
func (m *mockStep) Name() string { return m.id + ".csv" }

func (m *mockStep) Execute(ctx context.Context) (int, error) {
	m.calls.Add(1)
	if m.wait != nil {
		select {
		case <-m.wait:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	m.mu.Lock()
	m.gotCtxOK = ctx.Err() == nil
	m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	return m.rows, nil
}

func (m *mockStep) Calls() int { return int(m.calls.Load()) }
