// Package federated performs local preflight checks on Google/Apple identity
// tokens before they are exchanged with the backend for a session token.
// Preflight is optional: the Manager sends the token blind when no verifier
// is configured and lets the backend be the judge. A configured
// verifier rejects obviously bad tokens (wrong audience, already expired)
// without spending a backend round-trip.
package federated

import (
	"context"
	"errors"
)

// ProviderGoogle and ProviderApple are the identity provider names used in
// [Identity.Provider].
const (
	ProviderGoogle = "google"
	ProviderApple  = "apple"
)

// ErrTokenRejected indicates the identity token failed local preflight.
var ErrTokenRejected = errors.New("identity token failed preflight")

// Identity is the normalized result of a verified identity token.
// Implementations return identity facts only; no auth decisions are made
// here.
type Identity struct {
	Provider       string
	ProviderUserID string
	Email          string
	EmailVerified  bool
}

// Verifier validates a raw identity token locally and returns the identity
// it asserts. Verify must not call the session backend.
type Verifier interface {
	Verify(ctx context.Context, rawIDToken string) (*Identity, error)
}
