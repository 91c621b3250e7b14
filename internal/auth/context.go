package auth

import (
	"context"

	"github.com/google/uuid"
)

// Role is the coarse access level carried in the auth token
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleAgent   Role = "agent"
	RoleFinance Role = "finance"
	RoleViewer  Role = "viewer"
)

// UserContext holds the authenticated user extracted from the bearer token
type UserContext struct {
	UserID      string
	DisplayName string
	Email       string
	Roles       []Role
	AgencyID    uuid.UUID
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// MustFromContext extracts user context or panics
func MustFromContext(ctx context.Context) *UserContext {
	user, ok := FromContext(ctx)
	if !ok {
		panic("user context not found in context")
	}
	return user
}

// HasRole checks if user has a specific role
func (u *UserContext) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole checks if user has any of the specified roles
func (u *UserContext) HasAnyRole(roles ...Role) bool {
	for _, role := range roles {
		if u.HasRole(role) {
			return true
		}
	}
	return false
}

// CanManageFinance reports whether the user may approve commissions,
// generate invoices, or process refunds
func (u *UserContext) CanManageFinance() bool {
	return u.HasAnyRole(RoleAdmin, RoleFinance)
}

// CanWrite reports whether the user may mutate quotes and bookings
func (u *UserContext) CanWrite() bool {
	return u.HasAnyRole(RoleAdmin, RoleAgent, RoleFinance)
}

// GetAgencyFilter returns the agency ID every query must be scoped to.
// Returns nil only when no user context is present (internal jobs run
// unscoped and filter explicitly).
func GetAgencyFilter(ctx context.Context) *uuid.UUID {
	if user, ok := FromContext(ctx); ok {
		id := user.AgencyID
		return &id
	}
	return nil
}
