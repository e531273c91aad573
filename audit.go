package accesstoken

import (
	"context"
	"io"
	"time"

	"github.com/valuefe/accesstoken/internal/audit"
)

// Audit event types emitted by the manager and the authentication gate.
const (
	// AuditSessionCreated marks a successful issuance.
	AuditSessionCreated = "session_created"
	// AuditTokenMissing marks a guarded request with no extractable token.
	AuditTokenMissing = "token_missing"
	// AuditTokenInvalid marks a presented token that resolved to no session.
	AuditTokenInvalid = "token_invalid"
	// AuditSessionDead marks a record torn down by the gate's dead-check.
	AuditSessionDead = "session_dead"
	// AuditFingerprintMismatch marks a record destroyed for fingerprint drift.
	AuditFingerprintMismatch = "fingerprint_mismatch"
	// AuditSessionDestroyed marks an explicit destruction.
	AuditSessionDestroyed = "session_destroyed"
	// AuditPostProcessFailed marks a best-effort save or refresh failure
	// after the handler already produced its response.
	AuditPostProcessFailed = "postprocess_failed"
)

// AuditEvent is the public audit record. Field order mirrors the internal
// event model so the two convert directly.
type AuditEvent struct {
	ID        string            `json:"id,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	EventType string            `json:"event_type"`
	UserID    string            `json:"user_id,omitempty"`
	Token     string            `json:"token,omitempty"`
	IP        string            `json:"ip,omitempty"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// AuditSink receives emitted audit events. Implementations must be safe for
// concurrent use; delivery happens on the dispatcher goroutine.
type AuditSink interface {
	Emit(ctx context.Context, event AuditEvent)
}

// NoOpSink drops audit events.
type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, AuditEvent) {}

// ChannelSink writes audit events into a buffered channel.
type ChannelSink struct {
	out chan AuditEvent
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		out: make(chan AuditEvent, buffer),
	}
}

func (s *ChannelSink) Emit(ctx context.Context, event AuditEvent) {
	select {
	case s.out <- event:
	case <-ctx.Done():
	}
}

func (s *ChannelSink) Events() <-chan AuditEvent {
	return s.out
}

// NewJSONWriterSink returns a sink writing one JSON object per line to w.
func NewJSONWriterSink(w io.Writer) AuditSink {
	return jsonSink{inner: audit.NewJSONWriterSink(w)}
}

type jsonSink struct {
	inner *audit.JSONWriterSink
}

func (s jsonSink) Emit(ctx context.Context, event AuditEvent) {
	s.inner.Emit(ctx, audit.Event(event))
}

// sinkAdapter bridges a public AuditSink into the internal dispatcher.
type sinkAdapter struct {
	sink AuditSink
}

func (a sinkAdapter) Emit(ctx context.Context, event audit.Event) {
	a.sink.Emit(ctx, AuditEvent(event))
}
