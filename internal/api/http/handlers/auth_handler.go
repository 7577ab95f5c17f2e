package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-tracker/internal/api/dto"
	"github.com/spec-kit/ticket-tracker/internal/auth"
	"github.com/spec-kit/ticket-tracker/internal/service"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util/errorutil"
)

// AuthHandler exposes the /api/auth endpoints.
type AuthHandler struct {
	auth     *service.AuthService
	validate *Validator
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, validate *Validator) *AuthHandler {
	return &AuthHandler{auth: authService, validate: validate}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := h.validate.parseBody(c, &req); err != nil {
		return err
	}
	result, err := h.auth.Login(c.UserContext(), req.Pseudo, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(authResponse(result, "login successful"))
}

// Register handles POST /api/auth/register. Credentials are read from the
// query string, falling back to a JSON body.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.QueryParser(&req); err != nil {
		return apperrors.NewValidationError("invalid query parameters", nil)
	}
	if req.Pseudo == "" && len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	if err := h.validate.Validate(&req); err != nil {
		return err
	}

	user, err := h.auth.Register(c.UserContext(), req.Pseudo, req.Password, req.Admin)
	if err != nil {
		return err
	}
	result, err := h.auth.IssueToken(user)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(authResponse(result, "account created"))
}

// Refresh handles POST /api/auth/refresh.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	token, ok := auth.BearerToken(c.Get(fiber.HeaderAuthorization))
	if !ok {
		return apperrors.NewUnauthorized("missing bearer token")
	}
	result, err := h.auth.Refresh(c.UserContext(), token)
	if err != nil {
		return err
	}
	return c.JSON(authResponse(result, "token refreshed"))
}

// Verify handles GET /api/auth/verify.
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	token, ok := auth.BearerToken(c.Get(fiber.HeaderAuthorization))
	if !ok {
		return c.Status(http.StatusUnauthorized).JSON(dto.VerifyResponse{Message: "missing bearer token"})
	}
	claims, err := h.auth.Verify(token)
	if err != nil {
		return c.Status(http.StatusUnauthorized).JSON(dto.VerifyResponse{Message: err.Error()})
	}
	return c.JSON(dto.VerifyResponse{
		Valid:   true,
		Pseudo:  claims.Pseudo(),
		UserID:  claims.UserID,
		Admin:   claims.Admin,
		Message: "token is valid",
	})
}

// ChangePassword handles PUT /api/auth/password.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	id := auth.IdentityFrom(c)
	if !id.Authenticated() {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ChangePasswordRequest
	if err := h.validate.parseBody(c, &req); err != nil {
		return err
	}
	if err := h.auth.ChangePassword(c.UserContext(), *id.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func authResponse(result *service.AuthResult, message string) dto.AuthResponse {
	return dto.AuthResponse{
		Token:     result.Token,
		Type:      dto.TokenType,
		Pseudo:    result.Pseudo,
		Admin:     result.Admin,
		ExpiresAt: result.ExpiresAt,
		Message:   message,
	}
}
