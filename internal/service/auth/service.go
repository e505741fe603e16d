package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/puskesmas-merdeka/simpus-api/internal/model"
	"github.com/puskesmas-merdeka/simpus-api/internal/service/audit"
	"github.com/puskesmas-merdeka/simpus-api/pkg/auth"
	apperrors "github.com/puskesmas-merdeka/simpus-api/pkg/errors"
)

var (
	ErrTokenRevoked = errors.New("token has been revoked")
)

// Service issues sessions. There is no user directory: any email and
// password pair is accepted and the session takes the role that was picked.
type Service struct {
	jwtSvc  auth.JWTService
	revoked *cache.Cache
	auditor audit.Logger
	now     func() time.Time
}

func NewService(jwtSvc auth.JWTService, auditor audit.Logger) *Service {
	return &Service{
		jwtSvc:  jwtSvc,
		revoked: cache.New(cache.NoExpiration, 10*time.Minute),
		auditor: auditor,
		now:     time.Now,
	}
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	if !req.Role.Valid() {
		return nil, apperrors.NewBadRequest("invalid role", nil)
	}

	user := model.NewSessionUser(req.Email, req.Role)
	token, claims, err := s.jwtSvc.GenerateToken(user)
	if err != nil {
		return nil, apperrors.NewInternal(fmt.Errorf("failed to issue session: %w", err))
	}

	s.auditor.Log(auth.WithUser(ctx, user), model.AuditActionLogin, model.AuditEntitySession, user.ID, model.JSONMap{
		"email": user.Email,
		"role":  string(user.Role),
	})

	return &model.LoginResponse{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Unix(),
		User:      user,
	}, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *Service) Logout(ctx context.Context, claims *model.TokenClaims) error {
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Sub(s.now())
	}
	if ttl > 0 {
		s.revoked.Set(claims.ID, struct{}{}, ttl)
	}

	user := claims.User()
	s.auditor.Log(auth.WithUser(ctx, user), model.AuditActionLogout, model.AuditEntitySession, user.ID, nil)
	return nil
}

// Authenticate validates a bearer token and rejects revoked ones.
func (s *Service) Authenticate(token string) (*model.TokenClaims, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}
	if _, revoked := s.revoked.Get(claims.ID); revoked {
		return nil, apperrors.Unauthorized(ErrTokenRevoked)
	}
	return claims, nil
}
