package goSession

import (
	"errors"
	"net/url"
	"time"
)

// Config defines a public type used by goSession APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	API         APIConfig
	OTP         OTPConfig
	Session     SessionConfig
	Fingerprint FingerprintConfig
	Notices     NoticesConfig
	Metrics     MetricsConfig
	Storage     StorageConfig
}

/*
====================================
API CONFIG
====================================
*/

// APIConfig defines a public type used by goSession APIs.
//
// APIConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

/*
====================================
OTP CONFIG
====================================
*/

// OTPConfig defines a public type used by goSession APIs.
//
// OTPConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type OTPConfig struct {
	MobileDigits  int
	CodeDigits    int
	MaxAttempts   int
	AttemptWindow time.Duration
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig defines a public type used by goSession APIs.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	TokenTTL         time.Duration
	LivenessInterval time.Duration
	// ExpiryWarningAt is the remaining-time threshold below which a single
	// expiry warning notice is emitted.
	ExpiryWarningAt time.Duration
}

/*
====================================
FINGERPRINT CONFIG
====================================
*/

// FingerprintConfig defines a public type used by goSession APIs.
//
// FingerprintConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type FingerprintConfig struct {
	// Path is where the device identifier is persisted when no explicit
	// fingerprint source is injected.
	Path string
	// FCMToken is the push registration token forwarded to the backend.
	FCMToken string
}

/*
====================================
NOTICES CONFIG
====================================
*/

// NoticesConfig defines a public type used by goSession APIs.
//
// NoticesConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type NoticesConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by goSession APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
STORAGE CONFIG
====================================
*/

// StorageConfig defines a public type used by goSession APIs.
//
// StorageConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type StorageConfig struct {
	// FilePath is where the token record is persisted when no explicit
	// store is injected.
	FilePath string
	// RedisPrefix namespaces the token keys when [Builder.WithRedis] is used.
	RedisPrefix string
}

func defaultConfig() Config {
	return Config{
		API: APIConfig{
			Timeout: 15 * time.Second,
		},
		OTP: OTPConfig{
			MobileDigits:  10,
			CodeDigits:    6,
			MaxAttempts:   3,
			AttemptWindow: 15 * time.Minute,
		},
		Session: SessionConfig{
			TokenTTL:         24 * time.Hour,
			LivenessInterval: 60 * time.Second,
			ExpiryWarningAt:  30 * time.Minute,
		},
		Notices: NoticesConfig{
			Enabled:    true,
			BufferSize: 64,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Storage: StorageConfig{
			RedisPrefix: "gosess",
		},
	}
}

// DefaultConfig returns the stock configuration: 15m/3 OTP window, 24h token
// lifetime, 60s liveness ticks, 30m expiry warning.
func DefaultConfig() Config {
	return defaultConfig()
}

// KioskConfig returns a preset for shared-terminal deployments: a shorter
// token lifetime and a tighter OTP budget.
func KioskConfig() Config {
	cfg := defaultConfig()
	cfg.Session.TokenTTL = 4 * time.Hour
	cfg.OTP.MaxAttempts = 2
	cfg.OTP.AttemptWindow = 30 * time.Minute
	return cfg
}

func cloneConfig(cfg Config) Config {
	// All fields are value types; a shallow copy is a deep copy.
	return cfg
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation or dependency checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// API
	if c.API.BaseURL == "" {
		return errors.New("API BaseURL is required")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("API BaseURL must be an absolute URL")
	}
	if c.API.Timeout <= 0 {
		return errors.New("API Timeout must be > 0")
	}

	// OTP
	if c.OTP.MobileDigits != 10 {
		return errors.New("OTP MobileDigits must be 10")
	}
	if c.OTP.CodeDigits != 6 {
		return errors.New("OTP CodeDigits must be 6")
	}
	if c.OTP.MaxAttempts <= 0 {
		return errors.New("OTP MaxAttempts must be > 0")
	}
	if c.OTP.AttemptWindow <= 0 {
		return errors.New("OTP AttemptWindow must be > 0")
	}

	// Session
	if c.Session.TokenTTL <= 0 {
		return errors.New("Session TokenTTL must be > 0")
	}
	if c.Session.LivenessInterval <= 0 {
		return errors.New("Session LivenessInterval must be > 0")
	}
	if c.Session.ExpiryWarningAt < 0 {
		return errors.New("Session ExpiryWarningAt must be >= 0")
	}
	if c.Session.ExpiryWarningAt >= c.Session.TokenTTL {
		return errors.New("Session ExpiryWarningAt must be < TokenTTL")
	}

	// Notices
	if c.Notices.Enabled {
		if c.Notices.BufferSize <= 0 {
			return errors.New("Notices BufferSize must be > 0 when notices are enabled")
		}
	}

	return nil
}
