package goSession

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// RequestOTP validates the mobile number locally and asks the backend to
// deliver a WhatsApp OTP. On success the manager transitions to
// [StateOTPPending]; on any failure it stays where it was.
func (m *Manager) RequestOTP(ctx context.Context, mobile string) error {
	if m == nil || m.backend == nil {
		return ErrManagerNotReady
	}
	if !allDigits(mobile, m.config.OTP.MobileDigits) {
		return ErrInvalidMobile
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrManagerClosed
	}
	m.mu.Unlock()

	_, err := m.backend.SendOTP(ctx, mobile, m.fcmToken(ctx))
	if err != nil {
		mapped := mapBackendError(err)
		m.metricInc(MetricOTPRequestFailed)
		m.emitNotice(ctx, NoticeEvent{
			Timestamp: m.now(),
			EventType: noticeOTPSendFailed,
			Mobile:    mobile,
			Error:     mapped.Error(),
		})
		return mapped
	}

	m.mu.Lock()
	if !m.closed && m.state != StateAuthenticated {
		m.state = StateOTPPending
		m.pendingMobile = mobile
		m.failedAttempts = 0
	}
	m.mu.Unlock()

	m.metricInc(MetricOTPRequested)
	m.emitNotice(ctx, NoticeEvent{
		Timestamp: m.now(),
		EventType: noticeOTPSent,
		Mobile:    mobile,
		Success:   true,
	})
	return nil
}

// VerifyOTP submits a 6-digit code for the mobile number previously passed
// to [Manager.RequestOTP]. While locked it rejects immediately without a
// network call; when the rate limiter denies an attempt it transitions to
// [StateLocked], schedules an automatic unlock, and returns
// [ErrRateLimitExceeded].
func (m *Manager) VerifyOTP(ctx context.Context, mobile, code string) error {
	if m == nil || m.backend == nil {
		return ErrManagerNotReady
	}
	if !allDigits(mobile, m.config.OTP.MobileDigits) {
		return ErrInvalidMobile
	}
	if !allDigits(code, m.config.OTP.CodeDigits) {
		return ErrInvalidOTP
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrManagerClosed
	}
	if m.pendingMobile != mobile || (m.state != StateOTPPending && m.state != StateLocked) {
		m.mu.Unlock()
		return ErrNoOTPPending
	}
	if m.stateLocked() == StateLocked {
		retryAfter := m.lockedUntil.Sub(m.now())
		m.mu.Unlock()
		return fmt.Errorf("%w: retry in %s", ErrOTPLocked, retryAfter.Round(time.Second))
	}
	epoch := m.epoch
	m.mu.Unlock()

	if !m.limiter.IsAllowed(mobile) {
		return m.lockOut(ctx, mobile, epoch)
	}

	start := m.now()
	grant, err := m.backend.VerifyOTP(ctx, mobile, code, m.fcmToken(ctx), m.deviceID(ctx))
	if m.metrics != nil && m.metrics.LatencyEnabled() {
		m.metrics.Observe(MetricVerifyLatency, m.now().Sub(start))
	}

	if err != nil {
		return m.recordVerifyFailure(ctx, mobile, epoch, err)
	}

	m.mu.Lock()
	stale := m.closed || m.epoch != epoch
	m.mu.Unlock()
	if stale {
		// A logout (or another login) won the race; its outcome stands.
		return ErrNoOTPPending
	}

	m.limiter.Reset(mobile)

	loginEpoch, err := m.establishSession(ctx, grant.Token)
	if err != nil {
		return err
	}

	m.metricInc(MetricOTPVerifySuccess)
	m.emitNotice(ctx, NoticeEvent{
		Timestamp: m.now(),
		EventType: noticeLoggedIn,
		Mobile:    mobile,
		Success:   true,
	})

	m.refreshProfile(ctx, loginEpoch)
	return nil
}

// recordVerifyFailure performs the failure-path bookkeeping before control
// returns to the caller: limiter recording, the local attempts counter, and
// the Locked transition when the budget is spent.
func (m *Manager) recordVerifyFailure(ctx context.Context, mobile string, epoch uint64, cause error) error {
	m.limiter.RecordAttempt(mobile)

	m.mu.Lock()
	if !m.closed && m.epoch == epoch {
		m.failedAttempts++
	}
	m.mu.Unlock()

	failure := m.VerifyStatus(mobile)
	m.metricInc(MetricOTPVerifyFailure)

	mapped := mapBackendError(cause)
	if errors.Is(mapped, ErrBackendRejected) {
		mapped = fmt.Errorf("%w: %v", ErrOTPRejected, cause)
	}

	m.emitNotice(ctx, NoticeEvent{
		Timestamp:        m.now(),
		EventType:        noticeOTPAttemptFailed,
		Mobile:           mobile,
		Error:            mapped.Error(),
		AttemptsLeft:     failure.AttemptsRemaining,
		RetryAfterMillis: failure.RetryAfter.Milliseconds(),
	})

	if !m.limiter.IsAllowed(mobile) {
		if lockErr := m.lockOut(ctx, mobile, epoch); lockErr != nil {
			return lockErr
		}
	}
	return mapped
}

// lockOut transitions to [StateLocked] and schedules the automatic unlock
// that clears the attempt counter when the window ages out.
func (m *Manager) lockOut(ctx context.Context, mobile string, epoch uint64) error {
	retryAfter := m.limiter.RemainingTime(mobile)

	m.mu.Lock()
	if m.closed || m.epoch != epoch {
		m.mu.Unlock()
		return ErrNoOTPPending
	}
	m.state = StateLocked
	m.lockedUntil = m.now().Add(retryAfter)
	if m.unlockTimer != nil {
		m.unlockTimer.Stop()
	}
	m.unlockTimer = time.AfterFunc(retryAfter, func() {
		m.autoUnlock(mobile, epoch)
	})
	m.mu.Unlock()

	m.metricInc(MetricOTPRateLimited)
	m.emitNotice(ctx, NoticeEvent{
		Timestamp:        m.now(),
		EventType:        noticeOTPRateLimited,
		Mobile:           mobile,
		Error:            ErrRateLimitExceeded.Error(),
		RetryAfterMillis: retryAfter.Milliseconds(),
	})
	return fmt.Errorf("%w: retry in %s", ErrRateLimitExceeded, retryAfter.Round(time.Second))
}

func (m *Manager) autoUnlock(mobile string, epoch uint64) {
	m.mu.Lock()
	if m.closed || m.epoch != epoch || m.state != StateLocked {
		m.mu.Unlock()
		return
	}
	m.state = StateOTPPending
	m.lockedUntil = time.Time{}
	m.unlockTimer = nil
	m.failedAttempts = 0
	m.mu.Unlock()

	m.limiter.Reset(mobile)
	m.emitNotice(context.Background(), NoticeEvent{
		Timestamp: m.now(),
		EventType: noticeOTPUnlocked,
		Mobile:    mobile,
		Success:   true,
	})
}

// AttemptsRemaining returns how many OTP attempts are left for mobile
// before the rate limiter locks it.
func (m *Manager) AttemptsRemaining(mobile string) int {
	remaining := m.config.OTP.MaxAttempts - m.limiter.AttemptCount(mobile)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// LockoutRemaining returns how long until a locked mobile may attempt
// again; zero when not locked.
func (m *Manager) LockoutRemaining(mobile string) time.Duration {
	return m.limiter.RemainingTime(mobile)
}

// VerifyStatus reports the failure bookkeeping for mobile in one read:
// attempts left before lockout and, once locked, how long until the
// lock clears.
func (m *Manager) VerifyStatus(mobile string) VerifyFailure {
	return VerifyFailure{
		AttemptsRemaining: m.AttemptsRemaining(mobile),
		RetryAfter:        m.LockoutRemaining(mobile),
	}
}

func allDigits(s string, length int) bool {
	if len(s) != length {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
