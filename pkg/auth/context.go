package auth

import (
	"context"

	"github.com/puskesmas-merdeka/simpus-api/internal/model"
)

type contextKey struct{}

// SystemActor is recorded when no session is attached to the context.
const SystemActor = "system"

func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

func UserFrom(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(contextKey{}).(*model.User)
	return user, ok && user != nil
}

// ActorID returns the session user's id or SystemActor.
func ActorID(ctx context.Context) string {
	if user, ok := UserFrom(ctx); ok {
		return user.ID
	}
	return SystemActor
}
