package goSession

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestDispatcherDeliversToSink(t *testing.T) {
	sink := NewChannelSink(8)
	d := newNoticeDispatcher(NoticesConfig{Enabled: true, BufferSize: 8}, sink)
	defer d.Close()

	d.Emit(context.Background(), NoticeEvent{EventType: noticeOTPSent, Mobile: testMobile, Success: true})

	select {
	case got := <-sink.Events():
		if got.EventType != noticeOTPSent || got.Mobile != testMobile {
			t.Fatalf("unexpected event: %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestDispatcherDisabledReturnsNil(t *testing.T) {
	if d := newNoticeDispatcher(NoticesConfig{Enabled: false}, NoOpSink{}); d != nil {
		t.Fatal("expected nil dispatcher when disabled")
	}
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	blocker := make(chan struct{})
	sink := sinkFunc(func(context.Context, NoticeEvent) { <-blocker })
	d := newNoticeDispatcher(NoticesConfig{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	// First event occupies the worker, second fills the buffer; everything
	// after that must drop rather than block.
	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), NoticeEvent{EventType: noticeOTPSent})
	}

	if d.Dropped() == 0 {
		t.Fatal("expected dropped events")
	}
	close(blocker)
	d.Close()
}

func TestDispatcherDrainsOnClose(t *testing.T) {
	sink := NewChannelSink(16)
	d := newNoticeDispatcher(NoticesConfig{Enabled: true, BufferSize: 16}, sink)

	for i := 0; i < 5; i++ {
		d.Emit(context.Background(), NoticeEvent{EventType: noticeLoggedOut})
	}
	d.Close()

	drained := 0
	for {
		select {
		case <-sink.Events():
			drained++
		default:
			if drained != 5 {
				t.Fatalf("expected 5 drained events, got %d", drained)
			}
			return
		}
	}
}

func TestDispatcherEmitAfterCloseNoPanic(t *testing.T) {
	d := newNoticeDispatcher(NoticesConfig{Enabled: true, BufferSize: 2}, NoOpSink{})
	d.Close()
	d.Emit(context.Background(), NoticeEvent{EventType: noticeOTPSent})
}

func TestJSONWriterSinkWritesOneEventPerLine(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), NoticeEvent{EventType: noticeLoggedIn, Mobile: testMobile, Success: true})
	sink.Emit(context.Background(), NoticeEvent{EventType: noticeLoggedOut, Success: true})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	var first NoticeEvent
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if first.EventType != noticeLoggedIn || first.Mobile != testMobile {
		t.Fatalf("unexpected first event: %+v", first)
	}
}

type sinkFunc func(ctx context.Context, event NoticeEvent)

func (f sinkFunc) Emit(ctx context.Context, event NoticeEvent) { f(ctx, event) }

func TestManagerEmitsLifecycleNotices(t *testing.T) {
	sink := NewChannelSink(64)
	m, _, _, done := newTestManagerWithSink(t, sink, func(cfg *Config) {
		cfg.Notices.BufferSize = 64
	})
	defer done()

	ctx := context.Background()
	if err := m.RequestOTP(ctx, testMobile); err != nil {
		t.Fatalf("RequestOTP failed: %v", err)
	}
	if err := m.VerifyOTP(ctx, testMobile, testOTP); err != nil {
		t.Fatalf("VerifyOTP failed: %v", err)
	}
	if err := m.Logout(ctx); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	m.notices.Close()

	seen := map[string]bool{}
	for {
		select {
		case ev := <-sink.Events():
			seen[ev.EventType] = true
		default:
			for _, want := range []string{noticeOTPSent, noticeLoggedIn, noticeProfileFetched, noticeLoggedOut} {
				if !seen[want] {
					t.Fatalf("expected %s notice, saw %v", want, seen)
				}
			}
			return
		}
	}
}
