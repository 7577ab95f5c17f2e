package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/ticket-tracker/internal/auth"
	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/repository"
)

const testSecret = "unit-test-secret-unit-test-secret-0123"

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

func newAuthFixture(t *testing.T) (*AuthService, *repository.MemoryStore, *testClock) {
	t.Helper()
	clock := &testClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	tokens, err := auth.NewTokenManager(testSecret, time.Hour, auth.WithClock(clock.Now))
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	store := repository.NewMemoryStore()
	svc := NewAuthService(AuthDependencies{
		UserRepo: store.Users(),
		Tokens:   tokens,
		Hasher:   auth.NewBcryptHasher(bcrypt.MinCost),
	})
	return svc, store, clock
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthFixture(t)

	user, err := svc.Register(ctx, "alice", "pw1234", false)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.PasswordHash == "pw1234" {
		t.Fatalf("password must be stored hashed")
	}

	result, err := svc.Login(ctx, "alice", "pw1234")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.Pseudo != "alice" || result.Admin {
		t.Fatalf("unexpected login result %+v", result)
	}
	if id, err := svc.UserIDOf(result.Token); err != nil || id != user.ID {
		t.Fatalf("UserIDOf = %d, %v", id, err)
	}
	if sub, err := svc.SubjectOf(result.Token); err != nil || sub != "alice" {
		t.Fatalf("SubjectOf = %q, %v", sub, err)
	}
	if admin, err := svc.IsAdminOf(result.Token); err != nil || admin {
		t.Fatalf("IsAdminOf = %v, %v", admin, err)
	}
}

func TestRegisterDuplicatePseudo(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthFixture(t)

	if _, err := svc.Register(ctx, "alice", "pw1234", false); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Register(ctx, "alice", "other1", true); !errors.Is(err, domain.ErrDuplicatePseudo) {
		t.Fatalf("expected ErrDuplicatePseudo, got %v", err)
	}
}

func TestLoginFailures(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthFixture(t)
	if _, err := svc.Register(ctx, "alice", "pw1234", false); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := svc.Login(ctx, "alice", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "bob", "pw1234"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestIsExpired(t *testing.T) {
	ctx := context.Background()
	svc, _, clock := newAuthFixture(t)
	if _, err := svc.Register(ctx, "alice", "pw1234", false); err != nil {
		t.Fatalf("Register: %v", err)
	}
	result, err := svc.Login(ctx, "alice", "pw1234")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if svc.IsExpired(result.Token) {
		t.Fatalf("fresh token should not be expired")
	}
	if !svc.IsExpired("garbage") {
		t.Fatalf("undecodable token should count as expired")
	}
	clock.Advance(time.Hour)
	if !svc.IsExpired(result.Token) {
		t.Fatalf("token should expire after ttl")
	}
	if _, err := svc.Verify(result.Token); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired from Verify, got %v", err)
	}
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	svc, store, clock := newAuthFixture(t)
	user, err := svc.Register(ctx, "alice", "pw1234", false)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	original, err := svc.Login(ctx, "alice", "pw1234")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	// promote after issuance; the old token keeps the stale claim
	user.IsAdmin = true
	if err := store.Users().Update(ctx, user); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if admin, _ := svc.IsAdminOf(original.Token); admin {
		t.Fatalf("old token should keep admin=false")
	}

	clock.Advance(10 * time.Minute)
	refreshed, err := svc.Refresh(ctx, original.Token)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if refreshed.Token == original.Token {
		t.Fatalf("refresh should issue a different token")
	}
	if !refreshed.Admin {
		t.Fatalf("refresh should pick up the current admin flag")
	}
	if svc.IsExpired(original.Token) {
		t.Fatalf("old token stays valid until its own expiry")
	}

	clock.Advance(time.Hour)
	if _, err := svc.Refresh(ctx, original.Token); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
	if _, err := svc.Refresh(ctx, "garbage"); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("undecodable token should be refused as expired, got %v", err)
	}
}

func TestRefreshDeletedUser(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthFixture(t)
	ghost := &domain.User{ID: 99, Pseudo: "ghost"}
	result, err := svc.IssueToken(ghost)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if _, err := svc.Refresh(ctx, result.Token); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestTokenAccessorsRejectGarbage(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	if _, err := svc.SubjectOf("x.y.z"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("SubjectOf: expected ErrInvalidToken, got %v", err)
	}
	if _, err := svc.UserIDOf(""); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("UserIDOf: expected ErrInvalidToken, got %v", err)
	}
	if _, err := svc.IsAdminOf("abc"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("IsAdminOf: expected ErrInvalidToken, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthFixture(t)
	user, err := svc.Register(ctx, "alice", "pw1234", false)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := svc.ChangePassword(ctx, user.ID, "nope", "newpass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := svc.ChangePassword(ctx, user.ID, "pw1234", "newpass"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, err := svc.Login(ctx, "alice", "pw1234"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("old password should stop working, got %v", err)
	}
	if _, err := svc.Login(ctx, "alice", "newpass"); err != nil {
		t.Fatalf("new password should work: %v", err)
	}
	if err := svc.ChangePassword(ctx, 404, "a", "b"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
