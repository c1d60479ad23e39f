// Package goSession provides a client-side session lifecycle manager for the
// marketplace backend: WhatsApp-OTP login with sliding-window brute-force
// protection, federated Google/Apple sign-in, bearer-token persistence with a
// fixed 24-hour expiry, restore-on-startup, periodic liveness checking, and
// profile synchronization.
//
// The package is designed for embedding in a single-user client process:
// Manager methods are safe to call from multiple goroutines after
// initialization through [Builder.Build], and state transitions are
// serialized internally (a Logout racing a VerifyOTP is resolved
// logout-wins).
//
// # Architecture boundaries
//
// goSession is the public surface. It exposes [Manager], [Builder], [Config],
// [RateLimiter], and value types (Profile, NoticeEvent, MetricsSnapshot).
// The HTTP boundary lives in the backend sub-package (typed success/failure
// variants only; no raw JSON escapes upward), token persistence in store,
// device identity in fingerprint, and identity-token preflight in federated.
//
// # What this package must NOT do
//
//   - Render user-facing text. Notices carry counts and durations; wording is
//     the caller's concern.
//   - Trust server-side validity flags. Expiry is always a wall-clock
//     comparison against the persisted absolute timestamp.
//   - Retry a token after a 401. Unauthorized always tears the session down.
//
// # Lifecycle contract
//
// A token is live iff it is present and its expiry is strictly in the future.
// Restore, the liveness ticker, and every profile call re-evaluate that
// invariant independently; none of them caches a verdict.
package goSession
