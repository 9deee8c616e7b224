package services

import (
	"sync"
)

// MockAuditSink is an in-memory audit sink for testing. It can be told to
// fail so tests can verify that audit delivery never blocks a transition.
type MockAuditSink struct {
	events   []AuditEvent
	failWith error
	mu       sync.Mutex
}

// NewMockAuditSink creates a new mock audit sink
func NewMockAuditSink() *MockAuditSink {
	return &MockAuditSink{}
}

// SetAsMockForTesting sets this mock as the global audit sink instance for testing
func (m *MockAuditSink) SetAsMockForTesting() {
	SetAuditSink(m)
}

// FailWith makes every subsequent Emit return the given error
func (m *MockAuditSink) FailWith(err error) {
	m.mu.Lock()
	m.failWith = err
	m.mu.Unlock()
}

// Emit records the event, or fails if FailWith was set
func (m *MockAuditSink) Emit(event AuditEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failWith != nil {
		return m.failWith
	}
	m.events = append(m.events, event)
	return nil
}

// Events returns a copy of all recorded events (for testing assertions)
func (m *MockAuditSink) Events() []AuditEvent {
	m.mu.Lock()
	defer m.mu.Unlock()

	events := make([]AuditEvent, len(m.events))
	copy(events, m.events)
	return events
}

// Clear removes all recorded events
func (m *MockAuditSink) Clear() {
	m.mu.Lock()
	m.events = nil
	m.mu.Unlock()
}
