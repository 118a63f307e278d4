package report

import (
	"context"
	"sync"
)

// MockWriter is a Writer that records the reports it receives.
type MockWriter struct {
	WriteFunc func(ctx context.Context, r *Report) error
	Reports   []*Report
	mu        sync.Mutex
}

// NewMockWriter creates a new mock writer.
func NewMockWriter() *MockWriter {
	return &MockWriter{}
}

// Write implements Writer.
func (m *MockWriter) Write(ctx context.Context, r *Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Reports = append(m.Reports, r)
	if m.WriteFunc != nil {
		return m.WriteFunc(ctx, r)
	}
	return nil
}

// Calls returns how many reports were written.
func (m *MockWriter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Reports)
}

// SetWriteError makes every following Write fail with err.
func (m *MockWriter) SetWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.WriteFunc = func(context.Context, *Report) error {
		return err
	}
}
