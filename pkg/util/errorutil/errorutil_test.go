package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

func TestToDomainErrorMapsSentinels(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrUserNotFound, http.StatusUnauthorized, "USER_NOT_FOUND"},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{fmt.Errorf("decode: %w", domain.ErrInvalidToken), http.StatusUnauthorized, "INVALID_TOKEN"},
		{domain.ErrTokenExpired, http.StatusUnauthorized, "TOKEN_EXPIRED"},
		{domain.ErrDuplicatePseudo, http.StatusConflict, "DUPLICATE_PSEUDO"},
		{domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{domain.ErrTicketNotFound, http.StatusNotFound, "NOT_FOUND"},
		{domain.ErrLabelInUse, http.StatusConflict, "LABEL_IN_USE"},
		{fmt.Errorf("hash password: %w", domain.ErrPasswordTooLong), http.StatusBadRequest, "VALIDATION_FAILED"},
	}
	for _, tc := range cases {
		got := ToDomainError(tc.err)
		if got.HTTPStatus != tc.status || got.Code != tc.code {
			t.Fatalf("%v: got %d/%s, want %d/%s", tc.err, got.HTTPStatus, got.Code, tc.status, tc.code)
		}
	}
}

func TestToDomainErrorKeepsDomainErrors(t *testing.T) {
	original := NewConflict("taken", map[string]any{"field": "pseudo"})
	got := ToDomainError(fmt.Errorf("wrapped: %w", original))
	if got != original {
		t.Fatalf("expected the wrapped DomainError to be returned as is")
	}
}

func TestToDomainErrorFiberAndUnknown(t *testing.T) {
	got := ToDomainError(fiber.ErrNotFound)
	if got.HTTPStatus != http.StatusNotFound || got.Code != "NOT_FOUND" {
		t.Fatalf("unexpected mapping for fiber error: %+v", got)
	}

	got = ToDomainError(errors.New("boom"))
	if got.HTTPStatus != http.StatusInternalServerError || got.Message != "internal server error" {
		t.Fatalf("unexpected mapping for unknown error: %+v", got)
	}
	if ToDomainError(nil) != nil {
		t.Fatalf("nil should map to nil")
	}
}
