package accesstoken

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestAuditEventsReachTheSink(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	sink := NewChannelSink(8)
	mgr, err := New().WithRedis(rdb).WithAuditSink(sink).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	t.Cleanup(mgr.Close)

	if _, err := mgr.CreateSession(CreateSessionInput{UserID: "u1", IP: "1.2.3.4"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	select {
	case event := <-sink.Events():
		if event.EventType != AuditSessionCreated {
			t.Fatalf("expected %q, got %q", AuditSessionCreated, event.EventType)
		}
		if event.ID == "" {
			t.Fatal("event ID must be filled in")
		}
		if event.Timestamp.IsZero() {
			t.Fatal("event timestamp must be filled in")
		}
		if event.UserID != "u1" || event.IP != "1.2.3.4" {
			t.Fatalf("event fields mismatch: %+v", event)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("audit event never delivered")
	}
}

func TestAuditDisabledIsSilent(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	mgr, err := New().WithRedis(rdb).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	t.Cleanup(mgr.Close)

	// no dispatcher configured: must not panic and must report zero drops
	mgr.EmitAudit(context.Background(), AuditEvent{EventType: AuditSessionCreated})
	if mgr.AuditDropped() != 0 {
		t.Fatalf("expected 0 dropped, got %d", mgr.AuditDropped())
	}
}

func TestJSONWriterSinkEmitsOneLinePerEvent(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), AuditEvent{
		EventType: AuditSessionDestroyed,
		Token:     "acst:u1:abc",
		Success:   true,
	})

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}

	var decoded map[string]any
	if err := json.Unmarshal(lines[0], &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["event_type"] != AuditSessionDestroyed {
		t.Fatalf("unexpected payload: %v", decoded)
	}
}
