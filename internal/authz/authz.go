package authz

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/models"
)

var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrPermissionDenied       = errors.New("permission denied")
)

// Identity is the caller bound to a request by the session middleware.
type Identity struct {
	UserID      uuid.UUID
	Permissions models.PermissionSet
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	if !ok || id.UserID == uuid.Nil {
		return Identity{}, false
	}
	return id, true
}

func RequireAuthenticated(ctx context.Context) (Identity, error) {
	id, ok := FromContext(ctx)
	if !ok {
		return Identity{}, ErrAuthenticationRequired
	}
	return id, nil
}

// RequirePermission passes when perms holds at least one of anyOf.
func RequirePermission(perms models.PermissionSet, anyOf ...models.Permission) error {
	if !perms.HasAny(anyOf...) {
		return ErrPermissionDenied
	}
	return nil
}

func RequireOwnerOrPermission(ownerID uuid.UUID, caller Identity, anyOf ...models.Permission) error {
	if caller.UserID != uuid.Nil && caller.UserID == ownerID {
		return nil
	}
	return RequirePermission(caller.Permissions, anyOf...)
}
