package domain

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicatePseudo    = errors.New("pseudo already taken")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrPasswordTooLong    = errors.New("password exceeds 72 bytes")

	ErrTicketNotFound   = errors.New("ticket not found")
	ErrAlreadyResolved  = errors.New("ticket already resolved")
	ErrNotResolved      = errors.New("ticket is not resolved")
	ErrForbidden        = errors.New("access denied")
	ErrPriorityNotFound = errors.New("priority not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrDuplicateName    = errors.New("name already exists")
	ErrLabelInUse       = errors.New("label is used by tickets")
	ErrNameRequired     = errors.New("name is required")
)

// LabelNotFound returns the not-found sentinel for the given label kind.
func LabelNotFound(kind LabelKind) error {
	if kind == LabelCategory {
		return ErrCategoryNotFound
	}
	return ErrPriorityNotFound
}
