package goSession

import (
	"errors"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/saidineshgoexperts/goSession/backend"
	"github.com/saidineshgoexperts/goSession/federated"
	"github.com/saidineshgoexperts/goSession/fingerprint"
	"github.com/saidineshgoexperts/goSession/store"
)

// Builder defines a public type used by goSession APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config

	httpClient *http.Client
	tokenStore store.Store
	redis      redis.UniversalClient
	device     fingerprint.Source
	google     federated.Verifier
	apple      federated.Verifier
	noticeSink NoticeSink
	clock      func() time.Time

	built bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig may return an error when input validation, dependency calls, or security checks fail.
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithBaseURL describes the withbaseurl operation and its observable behavior.
//
// WithBaseURL may return an error when input validation, dependency calls, or security checks fail.
// WithBaseURL does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.config.API.BaseURL = baseURL
	return b
}

// WithHTTPClient describes the withhttpclient operation and its observable behavior.
//
// WithHTTPClient may return an error when input validation, dependency calls, or security checks fail.
// WithHTTPClient does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	b.httpClient = client
	return b
}

// WithStore describes the withstore operation and its observable behavior.
//
// WithStore may return an error when input validation, dependency calls, or security checks fail.
// WithStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithStore(s store.Store) *Builder {
	b.tokenStore = s
	return b
}

// WithRedis persists the token record in Redis under Storage.RedisPrefix
// instead of the default file or memory store.
//
// WithRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithFingerprint describes the withfingerprint operation and its observable behavior.
//
// WithFingerprint may return an error when input validation, dependency calls, or security checks fail.
// WithFingerprint does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithFingerprint(src fingerprint.Source) *Builder {
	b.device = src
	return b
}

// WithGoogleVerifier installs a local preflight for Google identity tokens.
// Without one, tokens are forwarded to the backend unexamined.
//
// WithGoogleVerifier does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithGoogleVerifier(v federated.Verifier) *Builder {
	b.google = v
	return b
}

// WithAppleVerifier installs a local preflight for Apple identity tokens.
// Without one, tokens are forwarded to the backend unexamined.
//
// WithAppleVerifier does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAppleVerifier(v federated.Verifier) *Builder {
	b.apple = v
	return b
}

// WithNoticeSink describes the withnoticesink operation and its observable behavior.
//
// WithNoticeSink may return an error when input validation, dependency calls, or security checks fail.
// WithNoticeSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithNoticeSink(sink NoticeSink) *Builder {
	b.noticeSink = sink
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled may return an error when input validation, dependency calls, or security checks fail.
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms may return an error when input validation, dependency calls, or security checks fail.
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// WithClock overrides the manager's wall clock. Intended for tests.
//
// WithClock does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.clock = now
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Manager, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// -------- TOKEN STORE --------
	tokenStore := b.tokenStore
	if tokenStore == nil {
		switch {
		case b.redis != nil:
			tokenStore = store.NewRedisStore(b.redis, cfg.Storage.RedisPrefix)
		case cfg.Storage.FilePath != "":
			tokenStore = store.NewFileStore(cfg.Storage.FilePath)
		default:
			tokenStore = store.NewMemoryStore()
		}
	}

	// -------- DEVICE FINGERPRINT --------
	device := b.device
	if device == nil {
		device = fingerprint.New(cfg.Fingerprint.Path, cfg.Fingerprint.FCMToken)
	}

	httpClient := b.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.API.Timeout}
	}

	clock := b.clock
	if clock == nil {
		clock = time.Now
	}

	m := &Manager{
		config:  cfg,
		backend: backend.New(cfg.API.BaseURL, httpClient),
		store:   tokenStore,
		limiter: NewRateLimiter(cfg.OTP.AttemptWindow, cfg.OTP.MaxAttempts),
		device:  device,
		google:  b.google,
		apple:   b.apple,
		notices: newNoticeDispatcher(cfg.Notices, b.noticeSink),
		metrics: NewMetrics(cfg.Metrics),
		now:     clock,
		state:   StateUnauthenticated,
	}

	b.built = true

	return m, nil
}
