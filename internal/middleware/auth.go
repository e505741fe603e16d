package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/puskesmas-merdeka/simpus-api/internal/model"
	authsvc "github.com/puskesmas-merdeka/simpus-api/internal/service/auth"
	"github.com/puskesmas-merdeka/simpus-api/pkg/auth"
	apperrors "github.com/puskesmas-merdeka/simpus-api/pkg/errors"
	"github.com/puskesmas-merdeka/simpus-api/pkg/httputil"
)

// Context keys set by Authenticate.
const (
	ContextUser   = "user"
	ContextClaims = "claims"
)

type AuthMiddleware struct {
	authService *authsvc.Service
}

func NewAuthMiddleware(authService *authsvc.Service) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
	}
}

// Authenticate verifies the bearer token and puts the session user on both
// the gin context and the request context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httputil.RespondWithError(c, apperrors.Unauthorized(errors.New("missing authorization header")))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			httputil.RespondWithError(c, apperrors.Unauthorized(errors.New("invalid authorization format")))
			return
		}

		claims, err := m.authService.Authenticate(parts[1])
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}

		user := claims.User()
		c.Set(ContextUser, user)
		c.Set(ContextClaims, claims)
		c.Request = c.Request.WithContext(auth.WithUser(c.Request.Context(), user))
		c.Next()
	}
}

// RequireClinicalEditor rejects roles that may only read patients and
// encounters.
func (m *AuthMiddleware) RequireClinicalEditor() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			httputil.RespondWithError(c, apperrors.Unauthorized(errors.New("no session")))
			return
		}
		if !user.Role.CanEditClinical() {
			httputil.RespondWithError(c, apperrors.Forbidden("role "+string(user.Role)+" may not change clinical records"))
			return
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok
}

func CurrentClaims(c *gin.Context) (*model.TokenClaims, bool) {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*model.TokenClaims)
	return claims, ok
}
