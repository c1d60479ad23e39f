package goSession

import (
	"context"
	"errors"
	"testing"

	"github.com/saidineshgoexperts/goSession/federated"
)

type fakeVerifier struct {
	err   error
	calls int
}

func (v *fakeVerifier) Verify(_ context.Context, _ string) (*federated.Identity, error) {
	v.calls++
	if v.err != nil {
		return nil, v.err
	}
	return &federated.Identity{Provider: federated.ProviderGoogle, ProviderUserID: "sub-1"}, nil
}

func TestLoginWithGoogleRejectsEmptyToken(t *testing.T) {
	m, _, _, done := newTestManager(t, nil)
	defer done()

	if err := m.LoginWithGoogle(context.Background(), ""); !errors.Is(err, ErrIdentityTokenInvalid) {
		t.Fatalf("expected ErrIdentityTokenInvalid, got %v", err)
	}
}

func TestLoginWithGoogleAuthenticatesWithoutVerifier(t *testing.T) {
	m, _, _, done := newTestManager(t, nil)
	defer done()

	if err := m.LoginWithGoogle(context.Background(), "opaque-google-token"); err != nil {
		t.Fatalf("LoginWithGoogle failed: %v", err)
	}
	if !m.IsAuthenticated() {
		t.Fatal("expected authenticated state")
	}
	info, ok := m.Session()
	if !ok || info.Token != testToken {
		t.Fatalf("expected session with token %q, got %+v ok=%v", testToken, info, ok)
	}
}

func TestLoginWithApplePopulatesProfile(t *testing.T) {
	m, _, _, done := newTestManager(t, nil)
	defer done()

	if err := m.LoginWithApple(context.Background(), "opaque-apple-token"); err != nil {
		t.Fatalf("LoginWithApple failed: %v", err)
	}
	if m.CurrentUser() == nil {
		t.Fatal("expected profile fetched after federated login")
	}
}

func TestLoginWithGooglePreflightRejection(t *testing.T) {
	m, _, _, done := newTestManager(t, nil)
	defer done()
	verifier := &fakeVerifier{err: federated.ErrTokenRejected}
	m.google = verifier

	err := m.LoginWithGoogle(context.Background(), "bad-token")
	if !errors.Is(err, ErrIdentityTokenInvalid) {
		t.Fatalf("expected ErrIdentityTokenInvalid, got %v", err)
	}
	if verifier.calls != 1 {
		t.Fatalf("expected one preflight call, got %d", verifier.calls)
	}
	if got := m.State(); got != StateUnauthenticated {
		t.Fatalf("expected state untouched on preflight rejection, got %v", got)
	}
	if got := m.MetricsSnapshot().Counters[MetricFederatedPreflightRejected]; got != 1 {
		t.Fatalf("expected preflight rejection counted, got %d", got)
	}
}

func TestLoginWithGooglePreflightPassThrough(t *testing.T) {
	m, _, _, done := newTestManager(t, nil)
	defer done()
	verifier := &fakeVerifier{}
	m.google = verifier

	if err := m.LoginWithGoogle(context.Background(), "good-token"); err != nil {
		t.Fatalf("LoginWithGoogle failed: %v", err)
	}
	if verifier.calls != 1 {
		t.Fatalf("expected one preflight call, got %d", verifier.calls)
	}
	if !m.IsAuthenticated() {
		t.Fatal("expected authenticated state")
	}
}

func TestFederatedLoginReplacesOTPFlow(t *testing.T) {
	m, _, _, done := newTestManager(t, nil)
	defer done()

	ctx := context.Background()
	if err := m.RequestOTP(ctx, testMobile); err != nil {
		t.Fatalf("RequestOTP failed: %v", err)
	}
	if err := m.LoginWithGoogle(ctx, "opaque-google-token"); err != nil {
		t.Fatalf("LoginWithGoogle failed: %v", err)
	}

	if got := m.State(); got != StateAuthenticated {
		t.Fatalf("expected StateAuthenticated, got %v", got)
	}
	// The abandoned OTP flow must not resurface.
	if err := m.VerifyOTP(ctx, testMobile, testOTP); !errors.Is(err, ErrNoOTPPending) {
		t.Fatalf("expected ErrNoOTPPending after federated login, got %v", err)
	}
}
