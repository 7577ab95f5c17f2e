package domain

import "time"

// User is an account that can submit tickets and, when flagged admin, manage them.
type User struct {
	ID           int64
	Pseudo       string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}

// Role derives the authorization role from the persisted admin flag.
func (u *User) Role() Role {
	return RoleFromAdmin(u.IsAdmin)
}
