package internaldefs

import (
	goSession "github.com/saidineshgoexperts/goSession"
)

// CounterDef defines a public type used by goSession APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by goSession APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the session manager.
var CounterDefs = []CounterDef{
	{ID: goSession.MetricOTPRequested, Name: "gosession_otp_requested_total", Help: "OTP dispatch requests accepted by the backend."},
	{ID: goSession.MetricOTPRequestFailed, Name: "gosession_otp_request_failed_total", Help: "OTP dispatch requests rejected or failed."},
	{ID: goSession.MetricOTPVerifySuccess, Name: "gosession_otp_verify_success_total", Help: "Successful OTP verifications."},
	{ID: goSession.MetricOTPVerifyFailure, Name: "gosession_otp_verify_failure_total", Help: "Failed OTP verifications."},
	{ID: goSession.MetricOTPRateLimited, Name: "gosession_otp_rate_limited_total", Help: "OTP verifications denied by the rate limiter."},
	{ID: goSession.MetricFederatedSuccess, Name: "gosession_federated_success_total", Help: "Successful federated logins."},
	{ID: goSession.MetricFederatedFailure, Name: "gosession_federated_failure_total", Help: "Failed federated token exchanges."},
	{ID: goSession.MetricFederatedPreflightRejected, Name: "gosession_federated_preflight_rejected_total", Help: "Identity tokens rejected before reaching the backend."},
	{ID: goSession.MetricSessionRestored, Name: "gosession_session_restored_total", Help: "Sessions rehydrated from persisted storage."},
	{ID: goSession.MetricRestoreExpired, Name: "gosession_restore_expired_total", Help: "Persisted tokens discarded as expired during restore."},
	{ID: goSession.MetricSessionExpired, Name: "gosession_session_expired_total", Help: "Live sessions that reached their expiry."},
	{ID: goSession.MetricExpiryWarning, Name: "gosession_expiry_warning_total", Help: "Expiry warning notices emitted."},
	{ID: goSession.MetricLogout, Name: "gosession_logout_total", Help: "Explicit logout operations."},
	{ID: goSession.MetricForcedLogout, Name: "gosession_forced_logout_total", Help: "Forced logouts from 401 responses or expiry."},
	{ID: goSession.MetricProfileFetchSuccess, Name: "gosession_profile_fetch_success_total", Help: "Successful profile fetches."},
	{ID: goSession.MetricProfileFetchFailure, Name: "gosession_profile_fetch_failure_total", Help: "Failed profile fetches."},
	{ID: goSession.MetricProfileUpdateSuccess, Name: "gosession_profile_update_success_total", Help: "Successful profile updates."},
	{ID: goSession.MetricProfileUpdateFailure, Name: "gosession_profile_update_failure_total", Help: "Failed profile updates."},
}

// HistogramDefs is an exported constant or variable used by the session manager.
var HistogramDefs = []HistogramDef{
	{ID: goSession.MetricVerifyLatency, Name: "gosession_verify_latency_seconds", Help: "OTP verification latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the session manager.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the session manager.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
