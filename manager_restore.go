package goSession

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/saidineshgoexperts/goSession/store"
)

// Restore rehydrates the session from persisted storage, typically at
// process start. It returns true when a live token was found and the state
// machine moved to Authenticated. A stored token past its expiry is treated
// as absent and removed from storage so the stale credential cannot be
// resurrected by a later restart.
//
// Restore may return an error when input validation, dependency calls, or security checks fail.
func (m *Manager) Restore(ctx context.Context) (bool, error) {
	if m == nil || m.store == nil {
		return false, ErrManagerNotReady
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false, ErrManagerClosed
	}
	if m.authenticatedLocked() {
		m.mu.Unlock()
		return true, nil
	}
	m.mu.Unlock()

	record, err := m.store.Load(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if record.Token == "" || !record.Live(m.now()) {
		// Expired or torn record. Scrub it now rather than on the next
		// liveness tick of a session that never starts.
		if err := m.store.Clear(ctx); err != nil {
			log.Print("goSession: token store clear failed for expired record")
		}
		m.metricInc(MetricRestoreExpired)
		m.emitNotice(ctx, NoticeEvent{
			Timestamp: m.now(),
			EventType: noticeSessionExpired,
			Error:     ErrSessionExpired.Error(),
		})
		return false, nil
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false, ErrManagerClosed
	}
	if m.state == StateAuthenticated {
		m.mu.Unlock()
		return true, nil
	}
	m.epoch++
	m.state = StateAuthenticated
	m.pendingMobile = ""
	m.failedAttempts = 0
	m.token = record.Token
	m.tokenExpiry = record.Expiry()
	m.user = nil
	m.expiryWarned = false
	m.startLivenessLocked()
	epoch := m.epoch
	m.mu.Unlock()

	m.metricInc(MetricSessionRestored)
	m.emitNotice(ctx, NoticeEvent{
		Timestamp: m.now(),
		EventType: noticeSessionRestored,
		Success:   true,
	})

	m.refreshProfile(ctx, epoch)
	return true, nil
}
