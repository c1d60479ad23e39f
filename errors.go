package goSession

import "errors"

var (
	// ErrInvalidMobile is an exported constant or variable used by the session manager.
	ErrInvalidMobile = errors.New("mobile number must be exactly 10 digits")
	// ErrInvalidOTP is an exported constant or variable used by the session manager.
	ErrInvalidOTP = errors.New("otp code must be exactly 6 digits")
	// ErrRateLimitExceeded is an exported constant or variable used by the session manager.
	ErrRateLimitExceeded = errors.New("otp attempts rate limit exceeded")
	// ErrOTPLocked is an exported constant or variable used by the session manager.
	ErrOTPLocked = errors.New("otp verification locked, retry after lockout elapses")
	// ErrOTPRejected is an exported constant or variable used by the session manager.
	ErrOTPRejected = errors.New("otp verification rejected by backend")
	// ErrNoOTPPending is an exported constant or variable used by the session manager.
	ErrNoOTPPending = errors.New("no otp request pending")
	// ErrUnauthorized is an exported constant or variable used by the session manager.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrSessionExpired is an exported constant or variable used by the session manager.
	ErrSessionExpired = errors.New("session expired")
	// ErrNotAuthenticated is an exported constant or variable used by the session manager.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrBackendRejected is an exported constant or variable used by the session manager.
	ErrBackendRejected = errors.New("request rejected by backend")
	// ErrUnavailable is an exported constant or variable used by the session manager.
	ErrUnavailable = errors.New("backend unavailable")
	// ErrIdentityTokenInvalid is an exported constant or variable used by the session manager.
	ErrIdentityTokenInvalid = errors.New("identity token rejected by local preflight")
	// ErrStoreUnavailable is an exported constant or variable used by the session manager.
	ErrStoreUnavailable = errors.New("token store unavailable")
	// ErrManagerNotReady is an exported constant or variable used by the session manager.
	ErrManagerNotReady = errors.New("manager not initialized")
	// ErrManagerClosed is an exported constant or variable used by the session manager.
	ErrManagerClosed = errors.New("manager closed")
)
