package audit

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/puskesmas-merdeka/simpus-api/internal/handler"
	"github.com/puskesmas-merdeka/simpus-api/internal/model"
	"github.com/puskesmas-merdeka/simpus-api/internal/repository"
	apperrors "github.com/puskesmas-merdeka/simpus-api/pkg/errors"
	"github.com/puskesmas-merdeka/simpus-api/pkg/httputil"
)

// Lister reads the newest audit entries.
type Lister interface {
	List(ctx context.Context, limit int) ([]*model.AuditLog, error)
}

type Handler struct {
	service Lister
	now     func() time.Time
}

func NewHandler(service Lister) *Handler {
	return &Handler{
		service: service,
		now:     time.Now,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	logs := r.Group("/audit-logs")
	{
		logs.GET("", h.ListLogs)
		logs.GET("/export", h.ExportLogs)
	}
}

func (h *Handler) ListLogs(c *gin.Context) {
	limit, ok := handler.QueryLimit(c, repository.AuditLogLimit)
	if !ok {
		return
	}

	logs, err := h.service.List(c.Request.Context(), limit)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, logs)
}

// ExportLogs downloads the newest entries as csv (default) or json.
func (h *Handler) ExportLogs(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "json" {
		httputil.RespondWithError(c, apperrors.NewBadRequest("unsupported format", nil))
		return
	}
	limit, ok := handler.QueryLimit(c, repository.AuditLogLimit)
	if !ok {
		return
	}

	logs, err := h.service.List(c.Request.Context(), limit)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	filename := fmt.Sprintf("audit_logs_%s.%s", h.now().Format("20060102_150405"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	if format == "json" {
		c.JSON(http.StatusOK, logs)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)
	writer := csv.NewWriter(c.Writer)
	_ = writer.Write([]string{"ID", "User ID", "Action", "Entity", "Entity ID", "Timestamp"})
	for _, log := range logs {
		_ = writer.Write([]string{
			log.ID.String(),
			log.UserID,
			log.Action,
			log.Entity,
			log.EntityID,
			log.Timestamp.Format(time.RFC3339),
		})
	}
	writer.Flush()
}
