// Package handler holds the gin handlers of the API, one subpackage per
// resource, and the request helpers they share.
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/puskesmas-merdeka/simpus-api/pkg/errors"
	"github.com/puskesmas-merdeka/simpus-api/pkg/httputil"
)

// Routes is implemented by every resource handler.
type Routes interface {
	RegisterRoutes(r *gin.RouterGroup)
}

// PathID parses the named path parameter as a UUID. On failure it writes a
// 400 and returns false.
func PathID(c *gin.Context, param, resource string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest("invalid "+resource+" ID", err))
		return uuid.Nil, false
	}
	return id, true
}

// QueryLimit reads a positive ?limit=, falling back to def when absent.
func QueryLimit(c *gin.Context, def int) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		httputil.RespondWithError(c, apperrors.NewBadRequest("limit must be a positive integer", err))
		return 0, false
	}
	return n, true
}

// BindJSON binds the body into req, answering 400 with field details on
// failure.
func BindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httputil.RespondWithBindError(c, err)
		return false
	}
	return true
}

// BindQuery is BindJSON for query strings.
func BindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		httputil.RespondWithBindError(c, err)
		return false
	}
	return true
}
