package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrUnauthorized indicates the bearer token was rejected server-side.
	ErrUnauthorized = errors.New("backend rejected bearer token")
	// ErrRejected indicates a well-formed response with success:false.
	ErrRejected = errors.New("backend rejected request")
	// ErrUnavailable indicates a transport-level failure.
	ErrUnavailable = errors.New("backend unreachable")
	// ErrMalformed indicates an undecodable response body.
	ErrMalformed = errors.New("backend response malformed")
)

const defaultTimeout = 15 * time.Second

// Client defines a public type used by goSession APIs.
//
// Client instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a backend [Client] for the given base URL. When httpClient is
// nil a default client with a 15s timeout is used.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// SendOTP describes the sendotp operation and its observable behavior.
//
// SendOTP may return an error when input validation, dependency calls, or backend checks fail.
// SendOTP does not mutate shared global state and can be used concurrently.
func (c *Client) SendOTP(ctx context.Context, mobile, fcmToken string) (*Ack, error) {
	env, err := c.postJSON(ctx, "/auth/sendWhatsAppOtp", map[string]string{
		"mobile":   mobile,
		"fcmtoken": fcmToken,
	}, "")
	if err != nil {
		return nil, err
	}
	if !env.ok() {
		return nil, rejected(env.Message)
	}
	return &Ack{Message: env.Message}, nil
}

// VerifyOTP describes the verifyotp operation and its observable behavior.
//
// VerifyOTP may return an error when input validation, dependency calls, or backend checks fail.
// VerifyOTP does not mutate shared global state and can be used concurrently.
func (c *Client) VerifyOTP(ctx context.Context, mobile, code, fcmToken, deviceID string) (*TokenGrant, error) {
	env, err := c.postJSON(ctx, "/auth/verifywhatsappOTP", map[string]string{
		"mobile":   mobile,
		"otp":      code,
		"fcmtoken": fcmToken,
		"deviceId": deviceID,
	}, "")
	if err != nil {
		return nil, err
	}
	if !env.ok() || env.Token == "" {
		return nil, rejected(env.Message)
	}
	return &TokenGrant{Token: env.Token, Message: env.Message}, nil
}

// ExchangeGoogle describes the exchangegoogle operation and its observable behavior.
//
// ExchangeGoogle may return an error when input validation, dependency calls, or backend checks fail.
// ExchangeGoogle does not mutate shared global state and can be used concurrently.
func (c *Client) ExchangeGoogle(ctx context.Context, idToken, fcmToken string) (*TokenGrant, error) {
	return c.exchange(ctx, "/auth/loginWithGoogle", idToken, fcmToken)
}

// ExchangeApple describes the exchangeapple operation and its observable behavior.
//
// ExchangeApple may return an error when input validation, dependency calls, or backend checks fail.
// ExchangeApple does not mutate shared global state and can be used concurrently.
func (c *Client) ExchangeApple(ctx context.Context, idToken, fcmToken string) (*TokenGrant, error) {
	return c.exchange(ctx, "/auth/loginWithApple", idToken, fcmToken)
}

func (c *Client) exchange(ctx context.Context, path, idToken, fcmToken string) (*TokenGrant, error) {
	env, err := c.postJSON(ctx, path, map[string]string{
		"idToken":  idToken,
		"fcmtoken": fcmToken,
	}, "")
	if err != nil {
		return nil, err
	}
	if !env.ok() || env.Token == "" {
		return nil, rejected(env.Message)
	}
	return &TokenGrant{Token: env.Token, Message: env.Message}, nil
}

// FetchProfile describes the fetchprofile operation and its observable behavior.
//
// FetchProfile may return an error when input validation, dependency calls, or backend checks fail.
// FetchProfile does not mutate shared global state and can be used concurrently.
func (c *Client) FetchProfile(ctx context.Context, token string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/user/profile", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	env, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return decodeProfile(env)
}

// UpdateProfile describes the updateprofile operation and its observable behavior.
//
// UpdateProfile may return an error when input validation, dependency calls, or backend checks fail.
// UpdateProfile does not mutate shared global state and can be used concurrently.
func (c *Client) UpdateProfile(ctx context.Context, token string, update ProfileUpdate) (*Profile, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if err := mw.WriteField("name", update.Name); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := mw.WriteField("email", update.Email); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if update.Avatar != nil {
		name := update.AvatarFilename
		if name == "" {
			name = "avatar"
		}
		part, err := mw.CreateFormFile("image", name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if _, err := io.Copy(part, update.Avatar); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/user/profile", &body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	env, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return decodeProfile(env)
}

func decodeProfile(env *apiEnvelope) (*Profile, error) {
	if !env.ok() {
		return nil, rejected(env.Message)
	}
	if len(env.Data) == 0 {
		return nil, ErrMalformed
	}
	var p Profile
	if err := json.Unmarshal(env.Data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &p, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload map[string]string, token string) (*apiEnvelope, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.do(req)
}

func (c *Client) do(req *http.Request) (*apiEnvelope, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var env apiEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: status %d: %v", ErrMalformed, resp.StatusCode, err)
	}
	return &env, nil
}

func rejected(message string) error {
	if message == "" {
		return ErrRejected
	}
	return fmt.Errorf("%w: %s", ErrRejected, message)
}
