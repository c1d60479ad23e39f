package goSession

import (
	"context"
	"errors"
	"log"
)

// Profile fetches the authenticated user's profile from the backend and
// caches it on the Manager. The cached copy is what [Manager.CurrentUser]
// and [Manager.Session] return afterwards.
//
// Profile may return an error when input validation, dependency calls, or security checks fail.
func (m *Manager) Profile(ctx context.Context) (*Profile, error) {
	token, epoch, err := m.sessionToken(ctx)
	if err != nil {
		return nil, err
	}

	fetched, err := m.backend.FetchProfile(ctx, token)
	if err != nil {
		mapped := mapBackendError(err)
		m.metricInc(MetricProfileFetchFailure)
		m.emitNotice(ctx, NoticeEvent{
			Timestamp: m.now(),
			EventType: noticeProfileSyncFailed,
			Error:     mapped.Error(),
		})
		if errors.Is(mapped, ErrUnauthorized) {
			m.forceLogout(ctx, mapped)
		}
		return nil, mapped
	}

	profile := Profile(*fetched)
	m.storeProfile(epoch, &profile)

	m.metricInc(MetricProfileFetchSuccess)
	m.emitNotice(ctx, NoticeEvent{
		Timestamp: m.now(),
		EventType: noticeProfileFetched,
		Success:   true,
	})
	u := profile
	return &u, nil
}

// UpdateProfile submits a profile edit to the backend. The cached profile is
// replaced only when the backend confirms the update; on any failure the
// previous profile remains visible unchanged.
//
// UpdateProfile may return an error when input validation, dependency calls, or security checks fail.
func (m *Manager) UpdateProfile(ctx context.Context, update ProfileUpdate) (*Profile, error) {
	token, epoch, err := m.sessionToken(ctx)
	if err != nil {
		return nil, err
	}

	updated, err := m.backend.UpdateProfile(ctx, token, update)
	if err != nil {
		mapped := mapBackendError(err)
		m.metricInc(MetricProfileUpdateFailure)
		m.emitNotice(ctx, NoticeEvent{
			Timestamp: m.now(),
			EventType: noticeProfileSyncFailed,
			Error:     mapped.Error(),
		})
		if errors.Is(mapped, ErrUnauthorized) {
			m.forceLogout(ctx, mapped)
		}
		return nil, mapped
	}

	profile := Profile(*updated)
	m.storeProfile(epoch, &profile)

	m.metricInc(MetricProfileUpdateSuccess)
	m.emitNotice(ctx, NoticeEvent{
		Timestamp: m.now(),
		EventType: noticeProfileUpdated,
		Success:   true,
	})
	u := profile
	return &u, nil
}

// sessionToken returns the current bearer token after checking the session
// is live on the local clock. An expired token triggers the forced-logout
// path before the network is touched.
func (m *Manager) sessionToken(ctx context.Context) (string, uint64, error) {
	if m == nil || m.backend == nil {
		return "", 0, ErrManagerNotReady
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return "", 0, ErrManagerClosed
	}
	if m.state != StateAuthenticated || m.token == "" {
		m.mu.Unlock()
		return "", 0, ErrNotAuthenticated
	}
	if !m.tokenExpiry.After(m.now()) {
		m.mu.Unlock()
		m.metricInc(MetricSessionExpired)
		m.forceLogout(ctx, ErrSessionExpired)
		return "", 0, ErrSessionExpired
	}
	token := m.token
	epoch := m.epoch
	m.mu.Unlock()
	return token, epoch, nil
}

// storeProfile installs a fetched profile unless a logout or re-login
// happened while the request was in flight.
func (m *Manager) storeProfile(epoch uint64, profile *Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || m.epoch != epoch || m.state != StateAuthenticated {
		return
	}
	m.user = profile
}

// refreshProfile runs the best-effort profile fetch after a successful
// login. A 401 here means the freshly issued token is already dead, so the
// session is torn down; any other failure keeps the session and leaves the
// profile to a later explicit fetch.
func (m *Manager) refreshProfile(ctx context.Context, epoch uint64) {
	m.mu.Lock()
	if m.closed || m.epoch != epoch || m.state != StateAuthenticated {
		m.mu.Unlock()
		return
	}
	token := m.token
	m.mu.Unlock()

	fetched, err := m.backend.FetchProfile(ctx, token)
	if err != nil {
		mapped := mapBackendError(err)
		m.metricInc(MetricProfileFetchFailure)
		m.emitNotice(ctx, NoticeEvent{
			Timestamp: m.now(),
			EventType: noticeProfileSyncFailed,
			Error:     mapped.Error(),
		})
		if errors.Is(mapped, ErrUnauthorized) {
			m.forceLogout(ctx, mapped)
			return
		}
		log.Print("goSession: profile fetch failed after login")
		return
	}

	profile := Profile(*fetched)
	m.storeProfile(epoch, &profile)
	m.metricInc(MetricProfileFetchSuccess)
	m.emitNotice(ctx, NoticeEvent{
		Timestamp: m.now(),
		EventType: noticeProfileFetched,
		Success:   true,
	})
}
