package domain

// Identity is the caller resolved for a single request. A nil UserID means anonymous.
type Identity struct {
	UserID *int64
	Role   Role
}

// Anonymous returns the identity of a caller without a usable token.
func Anonymous() Identity {
	return Identity{Role: RoleUser}
}

// NewIdentity builds an authenticated identity.
func NewIdentity(userID int64, role Role) Identity {
	return Identity{UserID: &userID, Role: role}
}

// Authenticated reports whether a user id was resolved.
func (i Identity) Authenticated() bool {
	return i.UserID != nil
}

// IsAdmin reports whether the caller is an authenticated administrator.
func (i Identity) IsAdmin() bool {
	return i.Authenticated() && i.Role == RoleAdmin
}

// Is reports whether the caller is the given user.
func (i Identity) Is(userID int64) bool {
	return i.UserID != nil && *i.UserID == userID
}
