package goSession

import "context"

type fcmTokenContextKey struct{}
type deviceIDContextKey struct{}

// WithFCMToken attaches a per-call FCM push token to ctx, overriding the
// fingerprint source's value for that call.
func WithFCMToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, fcmTokenContextKey{}, token)
}

// WithDeviceID attaches a per-call device identifier to ctx, overriding the
// fingerprint source's value for that call.
func WithDeviceID(ctx context.Context, deviceID string) context.Context {
	return context.WithValue(ctx, deviceIDContextKey{}, deviceID)
}

func fcmTokenFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}

	token, ok := ctx.Value(fcmTokenContextKey{}).(string)
	return token, ok && token != ""
}

func deviceIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}

	deviceID, ok := ctx.Value(deviceIDContextKey{}).(string)
	return deviceID, ok && deviceID != ""
}
