package auth

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/puskesmas-merdeka/simpus-api/internal/handler"
	"github.com/puskesmas-merdeka/simpus-api/internal/middleware"
	"github.com/puskesmas-merdeka/simpus-api/internal/model"
	"github.com/puskesmas-merdeka/simpus-api/internal/service/auth"
	apperrors "github.com/puskesmas-merdeka/simpus-api/pkg/errors"
	"github.com/puskesmas-merdeka/simpus-api/pkg/httputil"
)

type Handler struct {
	svc          *auth.Service
	authenticate gin.HandlerFunc
}

// NewHandler takes the authentication middleware for the routes that need a
// session; login itself is public.
func NewHandler(svc *auth.Service, authenticate gin.HandlerFunc) *Handler {
	return &Handler{
		svc:          svc,
		authenticate: authenticate,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.authenticate, h.Logout)
		auth.GET("/me", h.authenticate, h.Me)
	}
}

// Login accepts any email and password; the chosen role becomes the session
// role.
func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, resp)
}

func (h *Handler) Logout(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(errors.New("no session")))
		return
	}

	if err := h.svc.Logout(c.Request.Context(), claims); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, nil, "logged out successfully")
}

func (h *Handler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(errors.New("no session")))
		return
	}
	httputil.RespondWithSuccess(c, user)
}
