package goSession

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/saidineshgoexperts/goSession/fingerprint"
)

const (
	testMobile = "9876543210"
	testOTP    = "123456"
	testToken  = "test-token-abc"
)

// fakeClock is a manually advanced wall clock shared by the manager and the
// rate limiter in tests.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// stubBackend is a configurable in-process stand-in for the marketplace API.
type stubBackend struct {
	mu sync.Mutex

	verifyCalls  atomic.Uint64
	sendCalls    atomic.Uint64
	profileCalls atomic.Uint64

	failSend      bool
	rejectVerify  bool
	profileStatus int
	profileName   string
}

func newStubBackend() *stubBackend {
	return &stubBackend{
		profileStatus: http.StatusOK,
		profileName:   "Test User",
	}
}

func (s *stubBackend) setRejectVerify(reject bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejectVerify = reject
}

func (s *stubBackend) setProfileStatus(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profileStatus = status
}

func (s *stubBackend) handler() http.Handler {
	mux := http.NewServeMux()

	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}

	mux.HandleFunc("POST /auth/sendWhatsAppOtp", func(w http.ResponseWriter, r *http.Request) {
		s.sendCalls.Add(1)
		s.mu.Lock()
		fail := s.failSend
		s.mu.Unlock()
		if fail {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, map[string]any{"success": true, "message": "otp sent"})
	})

	mux.HandleFunc("POST /auth/verifywhatsappOTP", func(w http.ResponseWriter, r *http.Request) {
		s.verifyCalls.Add(1)
		var body struct {
			OTP string `json:"otp"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		s.mu.Lock()
		reject := s.rejectVerify
		s.mu.Unlock()
		if reject || body.OTP != testOTP {
			writeJSON(w, map[string]any{"success": false, "message": "invalid otp"})
			return
		}
		writeJSON(w, map[string]any{"success": true, "token": testToken})
	})

	mux.HandleFunc("POST /auth/loginWithGoogle", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"success": true, "token": testToken})
	})

	mux.HandleFunc("POST /auth/loginWithApple", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"success": true, "token": testToken})
	})

	mux.HandleFunc("GET /user/profile", func(w http.ResponseWriter, r *http.Request) {
		s.profileCalls.Add(1)
		s.mu.Lock()
		status := s.profileStatus
		name := s.profileName
		s.mu.Unlock()
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		writeJSON(w, map[string]any{
			"success": true,
			"data": map[string]string{
				"_id":    "user-1",
				"name":   name,
				"mobile": testMobile,
			},
		})
	})

	mux.HandleFunc("PUT /user/profile", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		status := s.profileStatus
		s.mu.Unlock()
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]any{
			"success": true,
			"data": map[string]string{
				"_id":    "user-1",
				"name":   r.FormValue("name"),
				"mobile": testMobile,
			},
		})
	})

	return mux
}

// newTestManager wires a Manager against a stub backend with a fake clock.
// The returned cleanup closes both.
func newTestManager(t *testing.T, configure func(*Config)) (*Manager, *stubBackend, *fakeClock, func()) {
	t.Helper()
	return newTestManagerWithSink(t, nil, configure)
}

// newTestManagerWithSink is newTestManager with notices enabled and routed
// through [Builder.WithNoticeSink]. A nil sink disables notices.
func newTestManagerWithSink(t *testing.T, sink NoticeSink, configure func(*Config)) (*Manager, *stubBackend, *fakeClock, func()) {
	t.Helper()

	stub := newStubBackend()
	srv := httptest.NewServer(stub.handler())

	cfg := DefaultConfig()
	cfg.API.BaseURL = srv.URL
	cfg.Notices.Enabled = sink != nil
	if configure != nil {
		configure(&cfg)
	}

	clock := newFakeClock()

	b := New().
		WithConfig(cfg).
		WithFingerprint(fingerprint.Static{ID: "test-device", FCM: "test-fcm"}).
		WithClock(clock.Now)
	if sink != nil {
		b = b.WithNoticeSink(sink)
	}
	manager, err := b.Build()
	if err != nil {
		srv.Close()
		t.Fatalf("Build failed: %v", err)
	}
	manager.limiter.now = clock.Now

	return manager, stub, clock, func() {
		manager.Close()
		srv.Close()
	}
}
