package federated

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
)

const (
	googleIssuer = "https://accounts.google.com"
	appleIssuer  = "https://appleid.apple.com"
)

// OIDCVerifier is a [Verifier] backed by the provider's published OIDC
// discovery document and JWKS. Signature, issuer, audience, and expiry are
// all checked.
type OIDCVerifier struct {
	provider string
	verifier *oidc.IDTokenVerifier
}

// NewGoogle creates an [OIDCVerifier] for Google identity tokens issued to
// clientID.
func NewGoogle(ctx context.Context, clientID string) (*OIDCVerifier, error) {
	return newOIDC(ctx, ProviderGoogle, googleIssuer, clientID)
}

// NewApple creates an [OIDCVerifier] for Apple identity tokens issued to
// clientID (the Services ID).
func NewApple(ctx context.Context, clientID string) (*OIDCVerifier, error) {
	return newOIDC(ctx, ProviderApple, appleIssuer, clientID)
}

func newOIDC(ctx context.Context, provider, issuer, clientID string) (*OIDCVerifier, error) {
	if clientID == "" {
		return nil, errors.New("oidc verifier requires a client id")
	}

	p, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("init %s oidc provider: %w", provider, err)
	}

	return &OIDCVerifier{
		provider: provider,
		verifier: p.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

// Verify describes the verify operation and its observable behavior.
//
// Verify may return an error when input validation, dependency calls, or token checks fail.
// Verify does not mutate shared global state and can be used concurrently.
func (v *OIDCVerifier) Verify(ctx context.Context, rawIDToken string) (*Identity, error) {
	idToken, err := v.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenRejected, err)
	}

	var claims struct {
		Subject       string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%w: claims parse: %v", ErrTokenRejected, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenRejected)
	}

	return &Identity{
		Provider:       v.provider,
		ProviderUserID: claims.Subject,
		Email:          claims.Email,
		EmailVerified:  claims.EmailVerified,
	}, nil
}
