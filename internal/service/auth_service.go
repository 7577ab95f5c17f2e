package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/auth"
	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/observability"
	"github.com/spec-kit/ticket-tracker/internal/repository"
)

// AuthResult is returned by flows that issue a token.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	UserID    int64
	Pseudo    string
	Admin     bool
}

// AuthService coordinates login, registration and token lifecycle.
type AuthService struct {
	users   repository.UserRepository
	tokens  *auth.TokenManager
	hasher  auth.Hasher
	logger  *zap.Logger
	metrics *observability.Metrics
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Tokens   *auth.TokenManager
	Hasher   auth.Hasher
	Logger   *zap.Logger
	Metrics  *observability.Metrics
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:   deps.UserRepo,
		tokens:  deps.Tokens,
		hasher:  deps.Hasher,
		logger:  logger,
		metrics: deps.Metrics,
	}
}

// Login checks credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, pseudo, password string) (*AuthResult, error) {
	user, err := s.users.GetByPseudo(ctx, pseudo)
	if err != nil {
		s.recordAuth("login", err)
		return nil, err
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		s.recordAuth("login", err)
		s.logger.Info("login rejected", zap.String("pseudo", pseudo))
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return nil, err
		}
		return nil, fmt.Errorf("compare password: %w", err)
	}

	result, err := s.IssueToken(user)
	s.recordAuth("login", err)
	if err == nil {
		s.logger.Debug("login succeeded", zap.Int64("user_id", user.ID), zap.Stringer("role", user.Role()))
	}
	return result, err
}

// Register creates an account. Pseudos are compared case-sensitively.
func (s *AuthService) Register(ctx context.Context, pseudo, password string, isAdmin bool) (*domain.User, error) {
	if _, err := s.users.GetByPseudo(ctx, pseudo); err == nil {
		s.recordAuth("register", domain.ErrDuplicatePseudo)
		return nil, domain.ErrDuplicatePseudo
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{Pseudo: pseudo, PasswordHash: hash, IsAdmin: isAdmin}
	if err := s.users.Create(ctx, user); err != nil {
		s.recordAuth("register", err)
		return nil, err
	}
	s.recordAuth("register", nil)
	s.logger.Info("account created", zap.Int64("user_id", user.ID), zap.Stringer("role", user.Role()))
	return user, nil
}

// IssueToken signs a token for user with the configured lifetime.
func (s *AuthService) IssueToken(user *domain.User) (*AuthResult, error) {
	token, exp, err := s.tokens.Encode(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		Token:     token,
		ExpiresAt: exp,
		UserID:    user.ID,
		Pseudo:    user.Pseudo,
		Admin:     user.IsAdmin,
	}, nil
}

// IsExpired reports whether token is expired. Undecodable tokens count as expired.
func (s *AuthService) IsExpired(token string) bool {
	claims, err := s.tokens.Decode(token)
	if err != nil {
		return true
	}
	return s.tokens.IsExpired(claims)
}

// Verify decodes token and rejects it when expired.
func (s *AuthService) Verify(token string) (*auth.Claims, error) {
	claims, err := s.tokens.Decode(token)
	if err != nil {
		return nil, err
	}
	if s.tokens.IsExpired(claims) {
		return nil, domain.ErrTokenExpired
	}
	return claims, nil
}

// Refresh issues a new token for the subject of a still valid token. The
// user is re-read so admin changes since issuance are picked up. The old
// token stays valid until its own expiry.
func (s *AuthService) Refresh(ctx context.Context, token string) (*AuthResult, error) {
	if s.IsExpired(token) {
		s.recordAuth("refresh", domain.ErrTokenExpired)
		return nil, domain.ErrTokenExpired
	}
	claims, err := s.tokens.Decode(token)
	if err != nil {
		s.recordAuth("refresh", err)
		return nil, err
	}
	user, err := s.users.GetByPseudo(ctx, claims.Pseudo())
	if err != nil {
		s.recordAuth("refresh", err)
		return nil, err
	}
	result, err := s.IssueToken(user)
	s.recordAuth("refresh", err)
	return result, err
}

// SubjectOf returns the pseudo carried by token.
func (s *AuthService) SubjectOf(token string) (string, error) {
	claims, err := s.tokens.Decode(token)
	if err != nil {
		return "", err
	}
	return claims.Pseudo(), nil
}

// UserIDOf returns the user id carried by token.
func (s *AuthService) UserIDOf(token string) (int64, error) {
	claims, err := s.tokens.Decode(token)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}

// IsAdminOf returns the admin claim carried by token.
func (s *AuthService) IsAdminOf(token string) (bool, error) {
	claims, err := s.tokens.Decode(token)
	if err != nil {
		return false, err
	}
	return claims.Admin, nil
}

// ChangePassword verifies the current password before storing the new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.hasher.Compare(user.PasswordHash, currentPassword); err != nil {
		s.recordAuth("change_password", err)
		return err
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	s.recordAuth("change_password", nil)
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

func (s *AuthService) recordAuth(operation string, err error) {
	outcome := "success"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrUserNotFound):
		outcome = "user_not_found"
	case errors.Is(err, domain.ErrInvalidCredentials):
		outcome = "invalid_credentials"
	case errors.Is(err, domain.ErrDuplicatePseudo):
		outcome = "duplicate_pseudo"
	case errors.Is(err, domain.ErrTokenExpired):
		outcome = "token_expired"
	case errors.Is(err, domain.ErrInvalidToken):
		outcome = "invalid_token"
	default:
		outcome = "error"
	}
	s.metrics.RecordAuth(operation, outcome)
}
