package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puskesmas-merdeka/simpus-api/internal/model"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewJWTService("secret", time.Hour)
	user := model.NewSessionUser("bidan@puskesmas.id", model.RolePerawat)

	token, claims, err := svc.GenerateToken(user)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	parsed, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user, parsed.User())
	assert.Equal(t, claims.ID, parsed.ID)
}

func TestValidateRejectsForeignAndExpiredTokens(t *testing.T) {
	user := model.NewSessionUser("a@b.c", model.RoleAdmin)

	token, _, err := NewJWTService("other", time.Hour).GenerateToken(user)
	require.NoError(t, err)
	_, err = NewJWTService("secret", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	svc := NewJWTService("secret", time.Minute).(*jwtService)
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, _, err = svc.GenerateToken(user)
	require.NoError(t, err)
	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestActorID(t *testing.T) {
	assert.Equal(t, SystemActor, ActorID(context.Background()))

	ctx := WithUser(context.Background(), model.NewSessionUser("lab@x.id", model.RoleLab))
	assert.Equal(t, "user-lab", ActorID(ctx))
}
