package goSession

import (
	"time"

	"github.com/saidineshgoexperts/goSession/backend"
)

// State represents the session manager's position in the login lifecycle.
type State uint8

const (
	// StateUnauthenticated is an exported constant or variable used by the session manager.
	StateUnauthenticated State = iota
	// StateOTPPending is an exported constant or variable used by the session manager.
	StateOTPPending
	// StateLocked is an exported constant or variable used by the session manager.
	// It overlays OTPPending while the rate limiter denies further attempts.
	StateLocked
	// StateAuthenticated is an exported constant or variable used by the session manager.
	StateAuthenticated
)

// String describes the string operation and its observable behavior.
//
// String does not mutate shared global state and can be used concurrently.
func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateOTPPending:
		return "otp_pending"
	case StateLocked:
		return "locked"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Profile is the user record fetched after token issuance.
type Profile = backend.Profile

// ProfileUpdate is the multipart payload accepted by [Manager.UpdateProfile].
type ProfileUpdate = backend.ProfileUpdate

// SessionInfo is a point-in-time view of the authenticated session, returned
// by [Manager.Session]. Token is the opaque bearer credential; Expiry the
// absolute wall-clock deadline it was persisted with.
type SessionInfo struct {
	Token  string
	Expiry time.Time
	User   *Profile
}

// VerifyFailure carries the user-facing bookkeeping for a failed OTP
// verification: how many attempts remain before lockout and, once locked,
// how long until the lock clears. Its fields feed the failure notices and
// the whole record is retrievable via [Manager.VerifyStatus].
type VerifyFailure struct {
	AttemptsRemaining int
	RetryAfter        time.Duration
}
