package goSession

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/saidineshgoexperts/goSession/store"
)

// drainNotices closes the manager's dispatcher and returns a count of
// delivered events by type.
func drainNotices(m *Manager, sink *ChannelSink) map[string]int {
	m.notices.Close()
	seen := map[string]int{}
	for {
		select {
		case ev := <-sink.Events():
			seen[ev.EventType]++
		default:
			return seen
		}
	}
}

func TestLivenessWarnsOncePerSession(t *testing.T) {
	sink := NewChannelSink(64)
	m, _, clock, done := newTestManagerWithSink(t, sink, nil)
	defer done()

	loginTestManager(t, m)

	// 20 minutes remaining, inside the 30-minute warning threshold.
	clock.Advance(23*time.Hour + 40*time.Minute)
	m.livenessTick()
	m.livenessTick()

	if !m.IsAuthenticated() {
		t.Fatal("expected session to survive the warning window")
	}

	seen := drainNotices(m, sink)
	if got := seen[noticeExpiryWarning]; got != 1 {
		t.Fatalf("expected exactly 1 expiry warning, got %d", got)
	}
	if seen[noticeSessionExpired] != 0 {
		t.Fatal("session must not expire inside the warning window")
	}
	if got := m.MetricsSnapshot().Counters[MetricExpiryWarning]; got != 1 {
		t.Fatalf("expected 1 expiry warning counted, got %d", got)
	}
}

func TestLivenessWarningCarriesRemainingTime(t *testing.T) {
	sink := NewChannelSink(64)
	m, _, clock, done := newTestManagerWithSink(t, sink, nil)
	defer done()

	loginTestManager(t, m)
	clock.Advance(23*time.Hour + 45*time.Minute)
	m.livenessTick()

	m.notices.Close()
	for {
		select {
		case ev := <-sink.Events():
			if ev.EventType != noticeExpiryWarning {
				continue
			}
			if want := (15 * time.Minute).Milliseconds(); ev.RetryAfterMillis != want {
				t.Fatalf("expected %dms remaining in warning, got %d", want, ev.RetryAfterMillis)
			}
			return
		default:
			t.Fatal("expected an expiry warning notice")
		}
	}
}

func TestLivenessExpiryForcesLogout(t *testing.T) {
	sink := NewChannelSink(64)
	m, _, clock, done := newTestManagerWithSink(t, sink, nil)
	defer done()

	loginTestManager(t, m)

	clock.Advance(24*time.Hour + time.Minute)
	m.livenessTick()
	// A tick after teardown must be a no-op.
	m.livenessTick()

	if m.IsAuthenticated() {
		t.Fatal("expected forced logout once the token expired")
	}
	if m.livenessStop != nil {
		t.Fatal("expected liveness check to stop with the session")
	}
	if _, err := m.store.Load(context.Background()); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected cleared storage, got %v", err)
	}

	seen := drainNotices(m, sink)
	if got := seen[noticeSessionExpired]; got != 1 {
		t.Fatalf("expected exactly 1 session expired notice, got %d", got)
	}
	if got := m.MetricsSnapshot().Counters[MetricSessionExpired]; got != 1 {
		t.Fatalf("expected 1 expired session counted, got %d", got)
	}
}

func TestLivenessWarningResetsOnRelogin(t *testing.T) {
	sink := NewChannelSink(64)
	m, _, clock, done := newTestManagerWithSink(t, sink, nil)
	defer done()

	loginTestManager(t, m)
	clock.Advance(23*time.Hour + 40*time.Minute)
	m.livenessTick()

	if err := m.Logout(context.Background()); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	loginTestManager(t, m)
	clock.Advance(23*time.Hour + 40*time.Minute)
	m.livenessTick()

	seen := drainNotices(m, sink)
	if got := seen[noticeExpiryWarning]; got != 2 {
		t.Fatalf("expected one warning per session, got %d total", got)
	}
}

func TestEstablishSessionAfterCloseClearsStore(t *testing.T) {
	m, _, _, done := newTestManager(t, nil)
	defer done()

	m.Close()

	if _, err := m.establishSession(context.Background(), testToken); !errors.Is(err, ErrManagerClosed) {
		t.Fatalf("expected ErrManagerClosed, got %v", err)
	}
	if _, err := m.store.Load(context.Background()); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected no persisted token after close, got %v", err)
	}
}
