package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/directory"
	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestApp(t *testing.T) (*fiber.App, *testClock) {
	t.Helper()
	clock := &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	store := directory.New(directory.WithClock(clock.Now))
	cfg := &config.Config{RateLimitPerMinute: 1000, AuthRateLimitPerMinute: 1000}

	authService := services.NewAuthService(store, identity.DevVerifier{})
	profileService := services.NewProfileService(store, services.NewModerationService())
	friendService := services.NewFriendService(store)

	app := fiber.New()
	Setup(app, cfg, authService,
		handlers.NewAuthHandler(authService),
		handlers.NewProfileHandler(profileService),
		handlers.NewFriendHandler(friendService),
		handlers.NewHealthHandler(store),
	)
	return app, clock
}

func call(t *testing.T, app *fiber.App, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return v
}

func loginAs(t *testing.T, app *fiber.App, nullifier string) dto.LoginResponse {
	t.Helper()
	status, body := call(t, app, http.MethodPost, "/api/v1/login", "", map[string]any{
		"appId":   "app_test",
		"zkProof": map[string]string{"nullifier_hash": nullifier, "proof": "0x00"},
	})
	if status != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", nullifier, status, body)
	}
	return decode[dto.LoginResponse](t, body)
}

func TestHealth(t *testing.T) {
	app, _ := newTestApp(t)
	loginAs(t, app, "0xhealth")

	status, body := call(t, app, http.MethodGet, "/api/health", "", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	health := decode[dto.HealthResponse](t, body)
	if health.Status != "ok" || health.LogDB != "disabled" {
		t.Errorf("health = %+v", health)
	}
	if health.Store.Users != 1 || health.Store.Sessions != 1 {
		t.Errorf("store stats = %+v", health.Store)
	}
}

func TestLogin(t *testing.T) {
	app, clock := newTestApp(t)

	status, body := call(t, app, http.MethodGet, "/api/v1/login", "", nil)
	if status != http.StatusOK || !strings.Contains(string(body), "POST") {
		t.Errorf("login info: %d %s", status, body)
	}

	first := loginAs(t, app, "0xabc")
	if !first.Success || first.SessionKey == "" {
		t.Fatalf("login response = %+v", first)
	}
	if want := clock.Now().Add(24 * time.Hour).UnixMilli(); first.ValidUntil != want {
		t.Errorf("validUntil = %d, want %d", first.ValidUntil, want)
	}
	if first.User.Subject != "0xabc" || len(first.User.FriendCode) != directory.FriendCodeLength {
		t.Errorf("user = %+v", first.User)
	}

	second := loginAs(t, app, "0xabc")
	if second.User.ID != first.User.ID {
		t.Error("second login registered a new user")
	}
	if second.SessionKey == first.SessionKey {
		t.Error("second login reused the session key")
	}

	tests := []struct {
		name string
		body any
	}{
		{"missing app id", map[string]any{"zkProof": map[string]string{"nullifier_hash": "0x1"}}},
		{"missing proof", map[string]any{"appId": "app_test"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := call(t, app, http.MethodPost, "/api/v1/login", "", tt.body)
			if status != http.StatusBadRequest {
				t.Fatalf("status = %d body %s", status, body)
			}
			if e := decode[dto.ErrorResponse](t, body); !e.Error {
				t.Errorf("error flag not set: %s", body)
			}
		})
	}
}

func TestSessionVerifyAndLogout(t *testing.T) {
	app, _ := newTestApp(t)
	login := loginAs(t, app, "0xverify")

	status, body := call(t, app, http.MethodPost, "/api/v1/session/verify", "", map[string]string{"sessionKey": login.SessionKey})
	if status != http.StatusOK {
		t.Fatalf("verify via body: %d %s", status, body)
	}
	if got := decode[dto.SessionVerifyResponse](t, body); got.User.ID != login.User.ID {
		t.Errorf("verified user = %v, want %v", got.User.ID, login.User.ID)
	}

	if status, _ := call(t, app, http.MethodPost, "/api/v1/session/verify", login.SessionKey, nil); status != http.StatusOK {
		t.Errorf("verify via bearer: %d", status)
	}
	if status, _ := call(t, app, http.MethodPost, "/api/v1/session/verify", "bogus", nil); status != http.StatusUnauthorized {
		t.Errorf("verify bogus: %d", status)
	}
	if status, _ := call(t, app, http.MethodPost, "/api/v1/session/verify", "", map[string]string{}); status != http.StatusBadRequest {
		t.Errorf("verify without key: %d", status)
	}

	if status, _ := call(t, app, http.MethodPost, "/api/v1/logout", login.SessionKey, nil); status != http.StatusOK {
		t.Fatalf("logout: %d", status)
	}
	if status, _ := call(t, app, http.MethodGet, "/api/profile", login.SessionKey, nil); status != http.StatusUnauthorized {
		t.Errorf("profile after logout: %d", status)
	}
}

func TestExpiredSessionIsRejected(t *testing.T) {
	app, clock := newTestApp(t)
	login := loginAs(t, app, "0xexpire")

	if status, _ := call(t, app, http.MethodGet, "/api/profile", login.SessionKey, nil); status != http.StatusOK {
		t.Fatalf("fresh session: %d", status)
	}

	clock.Advance(24*time.Hour + time.Second)
	for i := 0; i < 2; i++ {
		if status, _ := call(t, app, http.MethodGet, "/api/profile", login.SessionKey, nil); status != http.StatusUnauthorized {
			t.Errorf("attempt %d after expiry: %d", i+1, status)
		}
	}
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	app, _ := newTestApp(t)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/profile"},
		{http.MethodPut, "/api/profile"},
		{http.MethodGet, "/api/friends"},
		{http.MethodPost, "/api/friends"},
		{http.MethodPut, "/api/friends"},
		{http.MethodPost, "/api/v1/logout"},
	}
	for _, r := range routes {
		if status, _ := call(t, app, r.method, r.path, "", map[string]string{}); status != http.StatusUnauthorized {
			t.Errorf("%s %s without token: %d", r.method, r.path, status)
		}
		if status, _ := call(t, app, r.method, r.path, "not-a-session", map[string]string{}); status != http.StatusUnauthorized {
			t.Errorf("%s %s with unknown token: %d", r.method, r.path, status)
		}
	}
}

func TestProfile(t *testing.T) {
	app, _ := newTestApp(t)
	login := loginAs(t, app, "0xprofile")

	status, body := call(t, app, http.MethodPut, "/api/profile", login.SessionKey, map[string]string{"displayName": "  Alice  "})
	if status != http.StatusOK {
		t.Fatalf("update: %d %s", status, body)
	}
	if got := decode[dto.ProfileResponse](t, body); got.User.DisplayName != "Alice" {
		t.Errorf("displayName = %q, want Alice", got.User.DisplayName)
	}

	bad := []map[string]string{
		{"displayName": strings.Repeat("a", 40)},
		{"displayName": "admin"},
		{"profileImage": "ftp://example.com/a.png"},
	}
	for _, b := range bad {
		if status, body := call(t, app, http.MethodPut, "/api/profile", login.SessionKey, b); status != http.StatusBadRequest {
			t.Errorf("update %v: %d %s", b, status, body)
		}
	}

	// Blank fields leave the stored value alone.
	if status, _ := call(t, app, http.MethodPut, "/api/profile", login.SessionKey, map[string]string{"displayName": "   "}); status != http.StatusOK {
		t.Errorf("blank update: %d", status)
	}

	status, body = call(t, app, http.MethodGet, "/api/profile", login.SessionKey, nil)
	if status != http.StatusOK {
		t.Fatalf("get: %d", status)
	}
	got := decode[dto.ProfileResponse](t, body)
	if got.User.DisplayName != "Alice" || got.User.FriendCode != login.User.FriendCode {
		t.Errorf("profile = %+v", got.User)
	}
}

func TestFriendRequestFlow(t *testing.T) {
	app, _ := newTestApp(t)
	alice := loginAs(t, app, "0xalice")
	bob := loginAs(t, app, "0xbob")

	status, body := call(t, app, http.MethodPost, "/api/friends", alice.SessionKey,
		map[string]string{"friendCode": " " + strings.ToLower(bob.User.FriendCode) + " "})
	if status != http.StatusOK {
		t.Fatalf("send: %d %s", status, body)
	}
	sent := decode[dto.SendFriendRequestResponse](t, body)
	if sent.Request.ToUserID != bob.User.ID || sent.Request.Status != "pending" {
		t.Fatalf("request = %+v", sent.Request)
	}

	// Sending again, or from the other side, returns the same pending request.
	_, body = call(t, app, http.MethodPost, "/api/friends", alice.SessionKey, map[string]string{"friendCode": bob.User.FriendCode})
	if again := decode[dto.SendFriendRequestResponse](t, body); again.Request.ID != sent.Request.ID {
		t.Errorf("duplicate send created %v", again.Request.ID)
	}
	_, body = call(t, app, http.MethodPost, "/api/friends", bob.SessionKey, map[string]string{"friendCode": alice.User.FriendCode})
	if reverse := decode[dto.SendFriendRequestResponse](t, body); reverse.Request.ID != sent.Request.ID {
		t.Errorf("reverse send created %v", reverse.Request.ID)
	}

	_, body = call(t, app, http.MethodGet, "/api/friends", bob.SessionKey, nil)
	overview := decode[dto.FriendsResponse](t, body)
	if len(overview.Requests) != 1 || overview.Requests[0].FromUser == nil ||
		overview.Requests[0].FromUser.FriendCode != alice.User.FriendCode {
		t.Fatalf("bob's incoming = %+v", overview.Requests)
	}
	_, body = call(t, app, http.MethodGet, "/api/friends", alice.SessionKey, nil)
	if overview := decode[dto.FriendsResponse](t, body); len(overview.Sent) != 1 || len(overview.Requests) != 0 {
		t.Fatalf("alice's overview = %+v", overview)
	}

	resolve := map[string]string{"requestId": sent.Request.ID.String(), "action": "accept"}
	if status, _ := call(t, app, http.MethodPut, "/api/friends", alice.SessionKey, resolve); status != http.StatusNotFound {
		t.Errorf("sender resolving: %d", status)
	}

	status, body = call(t, app, http.MethodPut, "/api/friends", bob.SessionKey, resolve)
	if status != http.StatusOK {
		t.Fatalf("accept: %d %s", status, body)
	}
	if msg := decode[dto.MessageResponse](t, body); msg.Message != "Friend request accepted successfully" {
		t.Errorf("message = %q", msg.Message)
	}
	if status, _ := call(t, app, http.MethodPut, "/api/friends", bob.SessionKey, resolve); status != http.StatusConflict {
		t.Errorf("second accept: %d", status)
	}

	for _, who := range []struct {
		login  dto.LoginResponse
		friend dto.LoginResponse
	}{{alice, bob}, {bob, alice}} {
		_, body = call(t, app, http.MethodGet, "/api/friends", who.login.SessionKey, nil)
		overview := decode[dto.FriendsResponse](t, body)
		if len(overview.Friends) != 1 || overview.Friends[0].ID != who.friend.User.ID {
			t.Errorf("friends of %s = %+v", who.login.User.Subject, overview.Friends)
		}
		if len(overview.Requests) != 0 || len(overview.Sent) != 0 {
			t.Errorf("pending left for %s: %+v", who.login.User.Subject, overview)
		}
	}

	if status, _ := call(t, app, http.MethodPost, "/api/friends", alice.SessionKey, map[string]string{"friendCode": bob.User.FriendCode}); status != http.StatusBadRequest {
		t.Errorf("request to existing friend: %d", status)
	}
}

func TestFriendRequestErrors(t *testing.T) {
	app, _ := newTestApp(t)
	alice := loginAs(t, app, "0xalice")

	unknown := "ZZZZZZ"
	if alice.User.FriendCode == unknown {
		unknown = "YYYYYY"
	}

	tests := []struct {
		name   string
		method string
		body   map[string]string
		want   int
	}{
		{"missing code", http.MethodPost, map[string]string{}, http.StatusBadRequest},
		{"malformed code", http.MethodPost, map[string]string{"friendCode": "AB-12"}, http.StatusBadRequest},
		{"unknown code", http.MethodPost, map[string]string{"friendCode": unknown}, http.StatusNotFound},
		{"own code", http.MethodPost, map[string]string{"friendCode": alice.User.FriendCode}, http.StatusBadRequest},
		{"missing action", http.MethodPut, map[string]string{"requestId": "00000000-0000-0000-0000-000000000001"}, http.StatusBadRequest},
		{"bad action", http.MethodPut, map[string]string{"requestId": "00000000-0000-0000-0000-000000000001", "action": "ignore"}, http.StatusBadRequest},
		{"bad id", http.MethodPut, map[string]string{"requestId": "nope", "action": "accept"}, http.StatusBadRequest},
		{"unknown id", http.MethodPut, map[string]string{"requestId": "00000000-0000-0000-0000-000000000001", "action": "reject"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := call(t, app, tt.method, "/api/friends", alice.SessionKey, tt.body)
			if status != tt.want {
				t.Errorf("status = %d, want %d (body %s)", status, tt.want, body)
			}
		})
	}
}
