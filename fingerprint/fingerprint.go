// Package fingerprint derives the semi-stable device identifier sent with
// OTP verification as a secondary anti-abuse signal. The identifier is a
// random UUID persisted next to the token store; "same device yields same
// value most of the time". An unreadable or corrupt file simply produces a
// fresh identifier.
package fingerprint

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Source provides the per-device values the backend expects on auth calls.
type Source interface {
	DeviceID() string
	FCMToken() string
}

// Device defines a public type used by goSession APIs.
//
// Device instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Device struct {
	path     string
	fcmToken string

	once sync.Once
	id   string
}

// New creates a [Device] whose identifier is persisted at path. fcmToken is
// the push registration token forwarded verbatim to the backend; it may be
// empty.
func New(path, fcmToken string) *Device {
	return &Device{path: path, fcmToken: fcmToken}
}

// DeviceID describes the deviceid operation and its observable behavior.
//
// DeviceID may return an error when input validation or dependency calls fail.
// DeviceID does not mutate shared global state and can be used concurrently.
func (d *Device) DeviceID() string {
	d.once.Do(func() {
		d.id = d.loadOrCreate()
	})
	return d.id
}

// FCMToken describes the fcmtoken operation and its observable behavior.
//
// FCMToken may return an error when input validation or dependency calls fail.
// FCMToken does not mutate shared global state and can be used concurrently.
func (d *Device) FCMToken() string {
	return d.fcmToken
}

func (d *Device) loadOrCreate() string {
	if d.path != "" {
		if data, err := os.ReadFile(d.path); err == nil {
			id := strings.TrimSpace(string(data))
			if _, err := uuid.Parse(id); err == nil {
				return id
			}
		}
	}

	id := uuid.NewString()

	if d.path != "" {
		// Persistence is best-effort: a read-only disk just means a fresh
		// fingerprint next run.
		if err := os.MkdirAll(filepath.Dir(d.path), 0o700); err == nil {
			_ = os.WriteFile(d.path, []byte(id+"\n"), 0o600)
		}
	}

	return id
}

// Static is a fixed-value [Source] for tests and embedders that manage
// device identity themselves.
type Static struct {
	ID  string
	FCM string
}

// DeviceID describes the deviceid operation and its observable behavior.
//
// DeviceID may return an error when input validation or dependency calls fail.
// DeviceID does not mutate shared global state and can be used concurrently.
func (s Static) DeviceID() string { return s.ID }

// FCMToken describes the fcmtoken operation and its observable behavior.
//
// FCMToken may return an error when input validation or dependency calls fail.
// FCMToken does not mutate shared global state and can be used concurrently.
func (s Static) FCMToken() string { return s.FCM }

// ErrNoDeviceID is an exported constant or variable used by the session manager.
var ErrNoDeviceID = errors.New("device fingerprint unavailable")
