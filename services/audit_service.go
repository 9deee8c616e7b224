package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// AuditEvent records a single successful order status transition.
type AuditEvent struct {
	OrderID    uint      `json:"order_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	Actor      string    `json:"actor"`
	Timestamp  time.Time `json:"timestamp"`
	Remarks    string    `json:"remarks,omitempty"`
}

// AuditSink receives transition events. Delivery is best-effort: callers log
// failures locally and never let them block a business transition.
type AuditSink interface {
	Emit(event AuditEvent) error
}

var auditSinkInstance AuditSink

// InitAuditSink initializes the audit sink pointing at the external
// audit-log collector.
func InitAuditSink(endpoint string) AuditSink {
	auditSinkInstance = &HTTPAuditSink{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
	return auditSinkInstance
}

// GetAuditSink returns the initialized audit sink instance
func GetAuditSink() AuditSink {
	return auditSinkInstance
}

// SetAuditSink sets the audit sink instance (primarily for testing)
func SetAuditSink(sink AuditSink) {
	auditSinkInstance = sink
}

// HTTPAuditSink posts events as JSON to the external audit collector.
type HTTPAuditSink struct {
	endpoint   string
	httpClient *http.Client
}

// Emit sends one event to the collector.
func (s *HTTPAuditSink) Emit(event AuditEvent) error {
	if s.endpoint == "" {
		return fmt.Errorf("audit sink endpoint not configured")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode audit event: %w", err)
	}

	resp, err := s.httpClient.Post(s.endpoint, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to post audit event: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("audit collector returned status %d", resp.StatusCode)
	}

	return nil
}
