package federated

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ClaimsPreflight is a [Verifier] that inspects the identity token's claims
// without checking its signature: issuer, audience, and expiry only. It
// needs no network access, which makes it usable offline and in tests. The
// backend remains the arbiter of token authenticity.
type ClaimsPreflight struct {
	provider string
	issuers  []string
	audience string
	now      func() time.Time
}

// NewGooglePreflight creates a signature-less preflight for Google identity
// tokens. audience may be empty to skip the audience check.
func NewGooglePreflight(audience string) *ClaimsPreflight {
	return &ClaimsPreflight{
		provider: ProviderGoogle,
		issuers:  []string{googleIssuer, "accounts.google.com"},
		audience: audience,
		now:      time.Now,
	}
}

// NewApplePreflight creates a signature-less preflight for Apple identity
// tokens. audience may be empty to skip the audience check.
func NewApplePreflight(audience string) *ClaimsPreflight {
	return &ClaimsPreflight{
		provider: ProviderApple,
		issuers:  []string{appleIssuer},
		audience: audience,
		now:      time.Now,
	}
}

type preflightClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	jwt.RegisteredClaims
}

// Verify describes the verify operation and its observable behavior.
//
// Verify may return an error when input validation, dependency calls, or token checks fail.
// Verify does not mutate shared global state and can be used concurrently.
func (p *ClaimsPreflight) Verify(_ context.Context, rawIDToken string) (*Identity, error) {
	var claims preflightClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(rawIDToken, &claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenRejected, err)
	}

	if !p.issuerAllowed(claims.Issuer) {
		return nil, fmt.Errorf("%w: unexpected issuer %q", ErrTokenRejected, claims.Issuer)
	}
	if p.audience != "" && !audienceContains(claims.Audience, p.audience) {
		return nil, fmt.Errorf("%w: audience mismatch", ErrTokenRejected)
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.Time.After(p.now()) {
		return nil, fmt.Errorf("%w: token expired", ErrTokenRejected)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenRejected)
	}

	return &Identity{
		Provider:       p.provider,
		ProviderUserID: claims.Subject,
		Email:          claims.Email,
		EmailVerified:  claims.EmailVerified,
	}, nil
}

func (p *ClaimsPreflight) issuerAllowed(issuer string) bool {
	for _, allowed := range p.issuers {
		if issuer == allowed {
			return true
		}
	}
	return false
}

func audienceContains(aud jwt.ClaimStrings, want string) bool {
	for _, a := range aud {
		if a == want {
			return true
		}
	}
	return false
}
