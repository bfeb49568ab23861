package auth

import (
	"context"

	"github.com/antonvlk/emberline/internal/domain/enums"
)

type identityContextKey string

const identityKey identityContextKey = "auth_identity"

// Identity is the resolved caller, passed explicitly from the transport
// boundary into the services. Role comes only from the verified token.
type Identity struct {
	UserID int64
	Role   enums.Role
}

func (i Identity) IsAdmin() bool {
	return i.Role == enums.RoleAdmin
}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}
