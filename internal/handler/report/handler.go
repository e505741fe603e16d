package report

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/puskesmas-merdeka/simpus-api/internal/handler"
	"github.com/puskesmas-merdeka/simpus-api/internal/model"
	"github.com/puskesmas-merdeka/simpus-api/internal/report"
	reportsvc "github.com/puskesmas-merdeka/simpus-api/internal/service/report"
	apperrors "github.com/puskesmas-merdeka/simpus-api/pkg/errors"
	"github.com/puskesmas-merdeka/simpus-api/pkg/httputil"
)

type Handler struct {
	service *reportsvc.Service
}

func NewHandler(service *reportsvc.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	reports := r.Group("/reports")
	{
		reports.GET("/dashboard", h.Dashboard)
		reports.GET("/poli", h.EncountersByPoli)
		reports.GET("/poli-list", h.PoliList)
		reports.GET("/diagnoses/top", h.TopDiagnoses)
		reports.GET("/encounters", h.Rows)
		reports.GET("/export", h.Export)
	}
}

func (h *Handler) Dashboard(c *gin.Context) {
	stats, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, stats)
}

func (h *Handler) EncountersByPoli(c *gin.Context) {
	counts, err := h.service.EncountersByPoli(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, counts)
}

func (h *Handler) PoliList(c *gin.Context) {
	polis, err := h.service.PoliList(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, polis)
}

func (h *Handler) TopDiagnoses(c *gin.Context) {
	limit, ok := handler.QueryLimit(c, report.DefaultTopDiagnoses)
	if !ok {
		return
	}

	top, err := h.service.TopDiagnoses(c.Request.Context(), limit)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, top)
}

// Rows previews the visit report for ?start=&end=&poli=.
func (h *Handler) Rows(c *gin.Context) {
	var filter model.ReportFilter
	if !handler.BindQuery(c, &filter) {
		return
	}

	rows, err := h.service.Rows(c.Request.Context(), &filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, rows)
}

// Export downloads the visit report as ?format=pdf|xlsx|csv (pdf by default).
func (h *Handler) Export(c *gin.Context) {
	var filter model.ReportFilter
	if !handler.BindQuery(c, &filter) {
		return
	}
	format, err := report.ParseFormat(c.DefaultQuery("format", string(report.FormatPDF)))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest(err.Error(), err))
		return
	}

	out, err := h.service.Export(c.Request.Context(), &filter, format)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.Filename))
	c.Data(http.StatusOK, out.ContentType, out.Body)
}
