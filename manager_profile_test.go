package goSession

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/saidineshgoexperts/goSession/store"
)

func loginTestManager(t *testing.T, m *Manager) {
	t.Helper()
	ctx := context.Background()
	if err := m.RequestOTP(ctx, testMobile); err != nil {
		t.Fatalf("RequestOTP failed: %v", err)
	}
	if err := m.VerifyOTP(ctx, testMobile, testOTP); err != nil {
		t.Fatalf("VerifyOTP failed: %v", err)
	}
}

func TestProfileRequiresAuthentication(t *testing.T) {
	m, stub, _, done := newTestManager(t, nil)
	defer done()

	if _, err := m.Profile(context.Background()); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if stub.profileCalls.Load() != 0 {
		t.Fatal("expected no network call without a session")
	}
}

func TestProfileFetchCachesUser(t *testing.T) {
	m, _, _, done := newTestManager(t, nil)
	defer done()
	loginTestManager(t, m)

	profile, err := m.Profile(context.Background())
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if profile.Name != "Test User" {
		t.Fatalf("expected fetched profile name, got %q", profile.Name)
	}

	cached := m.CurrentUser()
	if cached == nil || cached.Name != "Test User" {
		t.Fatalf("expected cached profile, got %+v", cached)
	}
}

func TestProfileFetchAfterLoginIsAutomatic(t *testing.T) {
	m, stub, _, done := newTestManager(t, nil)
	defer done()
	loginTestManager(t, m)

	if stub.profileCalls.Load() == 0 {
		t.Fatal("expected post-login profile fetch")
	}
	if m.CurrentUser() == nil {
		t.Fatal("expected profile populated after login")
	}
}

func TestProfile401ForcesLogout(t *testing.T) {
	m, stub, _, done := newTestManager(t, nil)
	defer done()
	loginTestManager(t, m)

	stub.setProfileStatus(http.StatusUnauthorized)

	_, err := m.Profile(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if m.IsAuthenticated() {
		t.Fatal("expected forced logout after 401")
	}
	if _, err := m.store.Load(context.Background()); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected cleared storage after forced logout, got %v", err)
	}

	m.mu.Lock()
	ticking := m.livenessStop != nil
	m.mu.Unlock()
	if ticking {
		t.Fatal("expected liveness check stopped after forced logout")
	}
}

func TestProfileExpiredSessionRejectedLocally(t *testing.T) {
	m, stub, clock, done := newTestManager(t, nil)
	defer done()
	loginTestManager(t, m)

	calls := stub.profileCalls.Load()
	clock.Advance(24*time.Hour + time.Minute)

	_, err := m.Profile(context.Background())
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if stub.profileCalls.Load() != calls {
		t.Fatal("expected no network call for an expired session")
	}
	if m.IsAuthenticated() {
		t.Fatal("expected teardown after local expiry")
	}
}

func TestUpdateProfileReplacesCacheAtomically(t *testing.T) {
	m, _, _, done := newTestManager(t, nil)
	defer done()
	loginTestManager(t, m)

	updated, err := m.UpdateProfile(context.Background(), ProfileUpdate{
		Name:           "Renamed User",
		Avatar:         strings.NewReader("fake-image-bytes"),
		AvatarFilename: "avatar.png",
	})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if updated.Name != "Renamed User" {
		t.Fatalf("expected updated name, got %q", updated.Name)
	}
	if cached := m.CurrentUser(); cached == nil || cached.Name != "Renamed User" {
		t.Fatalf("expected cache replaced with confirmed profile, got %+v", cached)
	}
}

func TestUpdateProfileFailureKeepsCachedProfile(t *testing.T) {
	m, stub, _, done := newTestManager(t, nil)
	defer done()
	loginTestManager(t, m)

	before := m.CurrentUser()
	if before == nil {
		t.Fatal("expected profile populated after login")
	}

	stub.setProfileStatus(http.StatusInternalServerError)
	if _, err := m.UpdateProfile(context.Background(), ProfileUpdate{Name: "Nope"}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}

	after := m.CurrentUser()
	if after == nil || after.Name != before.Name {
		t.Fatalf("expected cached profile unchanged, got %+v", after)
	}
}
