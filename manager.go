package goSession

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/saidineshgoexperts/goSession/backend"
	"github.com/saidineshgoexperts/goSession/federated"
	"github.com/saidineshgoexperts/goSession/fingerprint"
	"github.com/saidineshgoexperts/goSession/store"
)

// Manager defines a public type used by goSession APIs.
//
// Manager instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
// There is exactly one Manager per process; construct it once through
// [Builder.Build] and inject it into whatever needs auth state.
type Manager struct {
	config  Config
	backend *backend.Client
	store   store.Store
	limiter *RateLimiter
	device  fingerprint.Source
	google  federated.Verifier
	apple   federated.Verifier
	notices *noticeDispatcher
	metrics *Metrics

	now func() time.Time

	mu             sync.Mutex
	closed         bool
	state          State
	pendingMobile  string
	failedAttempts int
	lockedUntil    time.Time
	unlockTimer    *time.Timer
	token          string
	tokenExpiry    time.Time
	user           *Profile
	expiryWarned   bool
	// epoch increments on every teardown; in-flight completions compare it
	// to detect that a logout won the race and discard their result.
	epoch        uint64
	livenessStop chan struct{}
}

// State describes the state operation and its observable behavior.
//
// State does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateLocked()
}

// IsAuthenticated reports whether a token is present and its expiry is
// strictly in the future. A stored token past expiry counts as absent.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.authenticatedLocked()
}

// Session returns a point-in-time view of the authenticated session. The
// second return is false when unauthenticated.
func (m *Manager) Session() (SessionInfo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.authenticatedLocked() {
		return SessionInfo{}, false
	}
	info := SessionInfo{Token: m.token, Expiry: m.tokenExpiry}
	if m.user != nil {
		u := *m.user
		info.User = &u
	}
	return info, true
}

// CurrentUser returns the loaded profile, or nil when none has been fetched.
func (m *Manager) CurrentUser() *Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// Logout clears the token, expiry, and profile from memory and persisted
// storage, stops the liveness check, and emits a logged_out notice. Safe to
// call from any state.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrManagerClosed
	}
	hadSession := m.token != ""
	m.teardownLocked()
	m.mu.Unlock()

	if err := m.store.Clear(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if hadSession {
		m.metricInc(MetricLogout)
	}
	m.emitNotice(ctx, NoticeEvent{
		Timestamp: m.now(),
		EventType: noticeLoggedOut,
		Success:   true,
	})
	return nil
}

// forceLogout is the 401/expiry teardown path: identical to Logout plus a
// session_expired notice. Storage clearing is best-effort here; the caller
// is already on an error path.
func (m *Manager) forceLogout(ctx context.Context, cause error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.teardownLocked()
	m.mu.Unlock()

	if err := m.store.Clear(ctx); err != nil {
		log.Print("goSession: token store clear failed during forced logout")
	}

	m.metricInc(MetricForcedLogout)
	event := NoticeEvent{
		Timestamp: m.now(),
		EventType: noticeSessionExpired,
	}
	if cause != nil {
		event.Error = cause.Error()
	}
	m.emitNotice(ctx, event)
}

// teardownLocked resets all session state. Caller must hold m.mu.
func (m *Manager) teardownLocked() {
	m.epoch++
	m.state = StateUnauthenticated
	m.pendingMobile = ""
	m.failedAttempts = 0
	m.lockedUntil = time.Time{}
	m.token = ""
	m.tokenExpiry = time.Time{}
	m.user = nil
	m.expiryWarned = false
	if m.unlockTimer != nil {
		m.unlockTimer.Stop()
		m.unlockTimer = nil
	}
	m.stopLivenessLocked()
}

// Close stops the liveness check and the notice dispatcher. The Manager is
// unusable afterwards; in-memory session state is not cleared from storage.
func (m *Manager) Close() {
	if m == nil {
		return
	}
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.epoch++
	if m.unlockTimer != nil {
		m.unlockTimer.Stop()
		m.unlockTimer = nil
	}
	m.stopLivenessLocked()
	m.mu.Unlock()

	if m.notices != nil {
		m.notices.Close()
	}
}

// NoticesDropped describes the noticesdropped operation and its observable behavior.
//
// NoticesDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) NoticesDropped() uint64 {
	if m == nil || m.notices == nil {
		return 0
	}
	return m.notices.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) MetricsSnapshot() MetricsSnapshot {
	if m == nil || m.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return m.metrics.Snapshot()
}

/*
====================================
LIVENESS CHECK
====================================
*/

func (m *Manager) startLivenessLocked() {
	m.stopLivenessLocked()
	stop := make(chan struct{})
	m.livenessStop = stop
	go m.livenessLoop(stop)
}

func (m *Manager) stopLivenessLocked() {
	if m.livenessStop != nil {
		close(m.livenessStop)
		m.livenessStop = nil
	}
}

func (m *Manager) livenessLoop(stop chan struct{}) {
	ticker := time.NewTicker(m.config.Session.LivenessInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.livenessTick()
		case <-stop:
			return
		}
	}
}

// livenessTick re-reads the expiry from current manager state on every tick.
// Holding the deadline in the goroutine would miss a re-login that replaced
// the token while a tick was pending.
func (m *Manager) livenessTick() {
	m.mu.Lock()
	if m.state != StateAuthenticated {
		m.mu.Unlock()
		return
	}

	now := m.now()
	if !m.tokenExpiry.After(now) {
		m.mu.Unlock()
		m.metricInc(MetricSessionExpired)
		m.forceLogout(context.Background(), ErrSessionExpired)
		return
	}

	remaining := m.tokenExpiry.Sub(now)
	if remaining <= m.config.Session.ExpiryWarningAt && !m.expiryWarned {
		// One warning per session, not one per tick.
		m.expiryWarned = true
		m.mu.Unlock()
		m.metricInc(MetricExpiryWarning)
		m.emitNotice(context.Background(), NoticeEvent{
			Timestamp:        now,
			EventType:        noticeExpiryWarning,
			Success:          true,
			RetryAfterMillis: remaining.Milliseconds(),
		})
		return
	}
	m.mu.Unlock()
}

/*
====================================
SESSION ESTABLISHMENT
====================================
*/

// establishSession persists the freshly issued token with a full TTL, flips
// the state machine to Authenticated, and starts the liveness check. Caller
// must not hold m.mu.
func (m *Manager) establishSession(ctx context.Context, token string) (uint64, error) {
	expiry := m.now().Add(m.config.Session.TokenTTL)

	if err := m.store.Save(ctx, store.TokenRecord{
		Token:     token,
		ExpiresAt: expiry.UnixMilli(),
	}); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		// The token is already persisted at this point; a closed manager
		// must not strand a live credential in storage.
		if clearErr := m.store.Clear(ctx); clearErr != nil {
			log.Print("goSession: token store clear failed after close")
		}
		return 0, ErrManagerClosed
	}
	m.epoch++
	epoch := m.epoch
	m.state = StateAuthenticated
	m.pendingMobile = ""
	m.failedAttempts = 0
	m.lockedUntil = time.Time{}
	if m.unlockTimer != nil {
		m.unlockTimer.Stop()
		m.unlockTimer = nil
	}
	m.token = token
	m.tokenExpiry = expiry
	m.user = nil
	m.expiryWarned = false
	m.startLivenessLocked()
	m.mu.Unlock()

	return epoch, nil
}

func (m *Manager) stateLocked() State {
	if m.state == StateLocked && !m.lockedUntil.After(m.now()) {
		return StateOTPPending
	}
	return m.state
}

func (m *Manager) authenticatedLocked() bool {
	return m.state == StateAuthenticated && m.token != "" && m.tokenExpiry.After(m.now())
}

func (m *Manager) metricInc(id MetricID) {
	if m == nil || m.metrics == nil {
		return
	}
	m.metrics.Inc(id)
}

func (m *Manager) emitNotice(ctx context.Context, event NoticeEvent) {
	if m == nil || m.notices == nil {
		return
	}
	m.notices.Emit(ctx, event)
}

func (m *Manager) deviceID(ctx context.Context) string {
	if id, ok := deviceIDFromContext(ctx); ok {
		return id
	}
	if m.device != nil {
		return m.device.DeviceID()
	}
	return ""
}

func (m *Manager) fcmToken(ctx context.Context) string {
	if token, ok := fcmTokenFromContext(ctx); ok {
		return token
	}
	if m.device != nil {
		return m.device.FCMToken()
	}
	return ""
}

// mapBackendError translates boundary errors into the package taxonomy.
func mapBackendError(err error) error {
	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		return ErrUnauthorized
	case errors.Is(err, backend.ErrUnavailable):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	case errors.Is(err, backend.ErrRejected), errors.Is(err, backend.ErrMalformed):
		return fmt.Errorf("%w: %v", ErrBackendRejected, err)
	default:
		return err
	}
}
