package domain

// Role is the closed set of roles a caller can hold.
type Role int

const (
	RoleUser Role = iota
	RoleAdmin
)

// RoleFromAdmin maps the stored admin flag onto a Role.
func RoleFromAdmin(admin bool) Role {
	if admin {
		return RoleAdmin
	}
	return RoleUser
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "ADMIN"
	case RoleUser:
		return "USER"
	default:
		return "UNKNOWN"
	}
}
