package goSession

import (
	"context"
	"fmt"

	"github.com/saidineshgoexperts/goSession/backend"
	"github.com/saidineshgoexperts/goSession/federated"
)

// LoginWithGoogle exchanges a Google identity token for a backend session
// token, bypassing the OTP flow. When a verifier is configured the token is
// preflighted locally first; failure leaves the state machine untouched.
func (m *Manager) LoginWithGoogle(ctx context.Context, idToken string) error {
	return m.loginFederated(ctx, federated.ProviderGoogle, m.google, idToken, m.backend.ExchangeGoogle)
}

// LoginWithApple exchanges an Apple identity token for a backend session
// token, bypassing the OTP flow. When a verifier is configured the token is
// preflighted locally first; failure leaves the state machine untouched.
func (m *Manager) LoginWithApple(ctx context.Context, idToken string) error {
	return m.loginFederated(ctx, federated.ProviderApple, m.apple, idToken, m.backend.ExchangeApple)
}

func (m *Manager) loginFederated(
	ctx context.Context,
	provider string,
	verifier federated.Verifier,
	idToken string,
	exchange func(ctx context.Context, idToken, fcmToken string) (*backend.TokenGrant, error),
) error {
	if m == nil || m.backend == nil {
		return ErrManagerNotReady
	}
	if idToken == "" {
		return ErrIdentityTokenInvalid
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrManagerClosed
	}
	m.mu.Unlock()

	if verifier != nil {
		if _, err := verifier.Verify(ctx, idToken); err != nil {
			m.metricInc(MetricFederatedPreflightRejected)
			m.emitNotice(ctx, NoticeEvent{
				Timestamp: m.now(),
				EventType: noticeFederatedLogin,
				Error:     err.Error(),
				Metadata:  map[string]string{"provider": provider},
			})
			return fmt.Errorf("%w: %v", ErrIdentityTokenInvalid, err)
		}
	}

	grant, err := exchange(ctx, idToken, m.fcmToken(ctx))
	if err != nil {
		mapped := mapBackendError(err)
		m.metricInc(MetricFederatedFailure)
		m.emitNotice(ctx, NoticeEvent{
			Timestamp: m.now(),
			EventType: noticeFederatedLogin,
			Error:     mapped.Error(),
			Metadata:  map[string]string{"provider": provider},
		})
		return mapped
	}

	// Last write wins here: a logout racing the exchange is resolved by
	// establishSession bumping the epoch again.
	loginEpoch, err := m.establishSession(ctx, grant.Token)
	if err != nil {
		return err
	}

	m.metricInc(MetricFederatedSuccess)
	m.emitNotice(ctx, NoticeEvent{
		Timestamp: m.now(),
		EventType: noticeFederatedLogin,
		Success:   true,
		Metadata:  map[string]string{"provider": provider},
	})

	m.refreshProfile(ctx, loginEpoch)
	return nil
}
