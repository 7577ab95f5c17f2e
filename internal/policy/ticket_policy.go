// Package policy holds the ticket authorization rules. Every function is pure:
// the outcome depends only on the ticket snapshot and the caller identity.
//
// Precedence is admin, then ownership, then any authenticated caller, then anonymous.
package policy

import "github.com/spec-kit/ticket-tracker/internal/domain"

// CanAccessTicket reports whether the caller may read the ticket.
// Anonymous callers only see unresolved tickets.
func CanAccessTicket(t *domain.Ticket, caller domain.Identity) bool {
	if t == nil {
		return false
	}
	if !caller.Authenticated() {
		return !t.Resolved
	}
	switch caller.Role {
	case domain.RoleAdmin, domain.RoleUser:
		return true
	}
	return false
}

// CanModifyTicket reports whether the caller may edit the ticket.
// Non-admins may only edit their own unresolved tickets.
func CanModifyTicket(t *domain.Ticket, caller domain.Identity) bool {
	if t == nil || !caller.Authenticated() {
		return false
	}
	switch caller.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleUser:
		return t.IsSubmittedBy(*caller.UserID) && !t.Resolved
	}
	return false
}

// CanResolveOrDelete reports whether the caller may resolve, reopen or delete tickets.
func CanResolveOrDelete(caller domain.Identity) bool {
	if !caller.Authenticated() {
		return false
	}
	switch caller.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleUser:
		return false
	}
	return false
}

// CanListUserTickets reports whether the caller may list tickets submitted by target.
func CanListUserTickets(target int64, caller domain.Identity) bool {
	if !caller.Authenticated() {
		return false
	}
	switch caller.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleUser:
		return caller.Is(target)
	}
	return false
}
