package sumanize

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestDispatcherDeliversToSink(t *testing.T) {
	sink := NewChannelSink(8)
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 8}, sink)

	d.Emit(context.Background(), AuditEvent{EventType: AuditEventLogin, Identity: "u-1", Success: true})
	d.Close()

	select {
	case event := <-sink.Events():
		if event.EventType != AuditEventLogin || event.Identity != "u-1" || !event.Success {
			t.Fatalf("unexpected event: %+v", event)
		}
	case <-time.After(time.Second):
		t.Fatal("event not delivered before close returned")
	}
}

func TestDispatcherDisabledIsNil(t *testing.T) {
	d := newAuditDispatcher(AuditConfig{Enabled: false}, NewChannelSink(1))
	if d != nil {
		t.Fatal("disabled auditing must produce a nil dispatcher")
	}
	d.Emit(context.Background(), AuditEvent{EventType: AuditEventLogin})
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("nil dispatcher counters must read zero")
	}
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	block := make(chan struct{})
	sink := blockingSink{release: block}
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: AuditEventLogin})
	}
	if d.Dropped() == 0 {
		t.Fatal("expected drops under backpressure")
	}

	close(block)
	d.Close()
}

type blockingSink struct {
	release chan struct{}
}

func (s blockingSink) Emit(context.Context, AuditEvent) {
	<-s.release
}

func TestAuthorizeDeniedEmitsAuditEvent(t *testing.T) {
	sink := NewChannelSink(8)

	engine, _, done := newTestEngine(t, func(cfg *Config) {
		cfg.Audit.Enabled = true
		cfg.Audit.BufferSize = 8
	})
	defer done()
	engine.audit.Close()
	engine.audit = newAuditDispatcher(engine.config.Audit, sink)

	ctx := WithClientIP(context.Background(), "203.0.113.9")
	engine.Authorize(ctx, Request{Path: "/dashboard"})
	engine.audit.Close()

	select {
	case event := <-sink.Events():
		if event.EventType != AuditEventAuthorizeDenied {
			t.Fatalf("unexpected event type %q", event.EventType)
		}
		if event.Path != "/dashboard" || event.IP != "203.0.113.9" || event.Success {
			t.Fatalf("unexpected event: %+v", event)
		}
		if event.Error != ErrMissingCredential.Error() {
			t.Fatalf("expected missing-credential reason, got %q", event.Error)
		}
	case <-time.After(time.Second):
		t.Fatal("denied request did not produce an audit event")
	}
}

func TestJSONWriterSinkWritesOneLinePerEvent(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), AuditEvent{EventType: AuditEventLogout, Identity: "u-1", Success: true})

	var decoded AuditEvent
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.EventType != AuditEventLogout || decoded.Identity != "u-1" {
		t.Fatalf("unexpected decoded event: %+v", decoded)
	}
}
