package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-tracker/internal/domain"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util/errorutil"
)

type identityBody struct {
	Authenticated bool   `json:"authenticated"`
	UserID        int64  `json:"user_id"`
	Role          string `json:"role"`
}

func newIdentityApp(t *testing.T, tm *TokenManager) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
		},
	})
	app.Use(NewIdentityMiddleware(tm, nil, nil).Handle)
	echo := func(c *fiber.Ctx) error {
		id := IdentityFrom(c)
		body := identityBody{Authenticated: id.Authenticated(), Role: id.Role.String()}
		if id.UserID != nil {
			body.UserID = *id.UserID
		}
		return c.JSON(body)
	}
	app.Get("/api/tickets", echo)
	app.Get("/api/tickets/unresolved", echo)
	app.Get("/api/auth/login", echo)
	app.Get("/api/admin", RequireAdmin(), echo)
	app.Get("/api/me", RequireAuthenticated(), echo)
	return app
}

func doRequest(t *testing.T, app *fiber.App, path, authHeader string) (*http.Response, identityBody) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	var body identityBody
	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
	}
	return resp, body
}

func TestIdentityMiddlewareAttachesIdentity(t *testing.T) {
	tm := newTestManager(t)
	token, _, err := tm.Encode(&domain.User{ID: 11, Pseudo: "alice", IsAdmin: true})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	app := newIdentityApp(t, tm)

	_, body := doRequest(t, app, "/api/tickets", "Bearer "+token)
	if !body.Authenticated || body.UserID != 11 || body.Role != "ADMIN" {
		t.Fatalf("unexpected identity: %+v", body)
	}
}

func TestIdentityMiddlewareFallsBackToAnonymous(t *testing.T) {
	tm := newTestManager(t)
	expired, _, err := tm.EncodeWithTTL(&domain.User{ID: 11, Pseudo: "alice"}, -time.Minute)
	if err != nil {
		t.Fatalf("EncodeWithTTL: %v", err)
	}
	valid, _, err := tm.Encode(&domain.User{ID: 11, Pseudo: "alice"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	app := newIdentityApp(t, tm)

	cases := map[string]string{
		"no header":        "",
		"garbage token":    "Bearer garbage",
		"expired token":    "Bearer " + expired,
		"lowercase scheme": "bearer " + valid,
		"missing space":    "Bearer" + valid,
		"basic scheme":     "Basic dXNlcjpwYXNz",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			resp, body := doRequest(t, app, "/api/tickets", header)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("expected request to continue, got %d", resp.StatusCode)
			}
			if body.Authenticated {
				t.Fatalf("expected anonymous identity, got %+v", body)
			}
		})
	}
}

func TestIdentityMiddlewareSkipsPublicPaths(t *testing.T) {
	tm := newTestManager(t)
	token, _, err := tm.Encode(&domain.User{ID: 11, Pseudo: "alice"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	app := newIdentityApp(t, tm)

	for _, path := range []string{"/api/tickets/unresolved", "/api/auth/login"} {
		_, body := doRequest(t, app, path, "Bearer "+token)
		if body.Authenticated {
			t.Fatalf("%s: expected token processing to be skipped", path)
		}
	}
}

func TestRouteGates(t *testing.T) {
	tm := newTestManager(t)
	userToken, _, _ := tm.Encode(&domain.User{ID: 1, Pseudo: "bob"})
	adminToken, _, _ := tm.Encode(&domain.User{ID: 2, Pseudo: "root", IsAdmin: true})
	app := newIdentityApp(t, tm)

	cases := []struct {
		path   string
		header string
		status int
	}{
		{"/api/me", "", http.StatusUnauthorized},
		{"/api/me", "Bearer " + userToken, http.StatusOK},
		{"/api/admin", "", http.StatusUnauthorized},
		{"/api/admin", "Bearer " + userToken, http.StatusForbidden},
		{"/api/admin", "Bearer " + adminToken, http.StatusOK},
	}
	for _, tc := range cases {
		resp, _ := doRequest(t, app, tc.path, tc.header)
		if resp.StatusCode != tc.status {
			t.Fatalf("%s (token=%v): status %d, want %d", tc.path, tc.header != "", resp.StatusCode, tc.status)
		}
	}
}

func TestBearerToken(t *testing.T) {
	if tok, ok := BearerToken("Bearer abc"); !ok || tok != "abc" {
		t.Fatalf("expected abc, got %q %v", tok, ok)
	}
	for _, header := range []string{"", "Bearer ", "bearer abc", "Token abc"} {
		if _, ok := BearerToken(header); ok {
			t.Fatalf("%q should not yield a token", header)
		}
	}
}
