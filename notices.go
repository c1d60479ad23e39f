package goSession

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// NoticeEvent is a structured user-facing session event emitted by the
// manager. It carries the data needed to build a human-readable message
// (counts, durations); it never carries rendered text beyond the backend's
// own message strings.
type NoticeEvent struct {
	Timestamp        time.Time         `json:"timestamp"`
	EventType        string            `json:"event_type"`
	Mobile           string            `json:"mobile,omitempty"`
	Success          bool              `json:"success"`
	Error            string            `json:"error,omitempty"`
	AttemptsLeft     int               `json:"attempts_left,omitempty"`
	RetryAfterMillis int64             `json:"retry_after_ms,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty"`
}

// NoticeSink receives [NoticeEvent] values from the manager's notice
// dispatcher.
type NoticeSink interface {
	Emit(ctx context.Context, event NoticeEvent)
}

// NoOpSink is a [NoticeSink] that silently discards all events.
type NoOpSink struct{}

// Emit describes the emit operation and its observable behavior.
//
// Emit does not mutate shared global state and can be used concurrently.
func (NoOpSink) Emit(context.Context, NoticeEvent) {}

// ChannelSink is a buffered channel-based [NoticeSink].
type ChannelSink struct {
	events chan NoticeEvent
}

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan NoticeEvent, buffer),
	}
}

// Emit describes the emit operation and its observable behavior.
//
// Emit does not mutate shared global state and can be used concurrently.
func (s *ChannelSink) Emit(ctx context.Context, event NoticeEvent) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

// Events returns the receive side of the sink's channel.
func (s *ChannelSink) Events() <-chan NoticeEvent {
	return s.events
}

// JSONWriterSink is a [NoticeSink] that writes JSON-encoded events to an
// [io.Writer], one per line.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

// Emit describes the emit operation and its observable behavior.
//
// Emit does not mutate shared global state and can be used concurrently.
func (s *JSONWriterSink) Emit(ctx context.Context, event NoticeEvent) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}

// Notice event types emitted by the manager.
const (
	noticeOTPSent           = "otp_sent"
	noticeOTPSendFailed     = "otp_send_failed"
	noticeOTPAttemptFailed  = "otp_attempt_failed"
	noticeOTPRateLimited    = "otp_rate_limited"
	noticeOTPUnlocked       = "otp_unlocked"
	noticeLoggedIn          = "logged_in"
	noticeFederatedLogin    = "federated_login"
	noticeLoggedOut         = "logged_out"
	noticeSessionRestored   = "session_restored"
	noticeSessionExpired    = "session_expired"
	noticeExpiryWarning     = "session_expiry_warning"
	noticeProfileFetched    = "profile_fetched"
	noticeProfileUpdated    = "profile_updated"
	noticeProfileSyncFailed = "profile_sync_failed"
)
