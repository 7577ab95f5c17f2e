package domain

import "testing"

func TestUserRole(t *testing.T) {
	if (&User{IsAdmin: true}).Role() != RoleAdmin {
		t.Fatalf("admin flag should map to RoleAdmin")
	}
	if (&User{}).Role() != RoleUser {
		t.Fatalf("default user should map to RoleUser")
	}
	if RoleAdmin.String() != "ADMIN" || RoleUser.String() != "USER" || Role(7).String() != "UNKNOWN" {
		t.Fatalf("unexpected role names")
	}
}

func TestIdentity(t *testing.T) {
	anon := Anonymous()
	if anon.Authenticated() || anon.IsAdmin() || anon.Is(1) {
		t.Fatalf("anonymous identity should match nothing")
	}
	admin := NewIdentity(3, RoleAdmin)
	if !admin.Authenticated() || !admin.IsAdmin() || !admin.Is(3) || admin.Is(4) {
		t.Fatalf("unexpected admin identity %+v", admin)
	}
}
