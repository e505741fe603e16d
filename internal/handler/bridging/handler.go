// Package bridging exposes the BPJS and SATUSEHAT actions on patients and
// encounters, and the sync-job log they leave behind.
package bridging

import (
	"github.com/gin-gonic/gin"

	"github.com/puskesmas-merdeka/simpus-api/internal/handler"
	"github.com/puskesmas-merdeka/simpus-api/internal/model"
	"github.com/puskesmas-merdeka/simpus-api/internal/repository"
	"github.com/puskesmas-merdeka/simpus-api/internal/service/bridging"
	apperrors "github.com/puskesmas-merdeka/simpus-api/pkg/errors"
	"github.com/puskesmas-merdeka/simpus-api/pkg/httputil"
)

type Handler struct {
	service *bridging.Service
	editor  gin.HandlerFunc
}

func NewHandler(service *bridging.Service, editor gin.HandlerFunc) *Handler {
	return &Handler{
		service: service,
		editor:  editor,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/patients/:id/bpjs/validate", h.editor, h.ValidateBPJS)
	r.POST("/patients/:id/fhir/sync", h.editor, h.SyncPatient)
	r.POST("/encounters/:id/sep", h.editor, h.CreateSEP)
	r.POST("/encounters/:id/fhir/sync", h.editor, h.SyncEncounter)
	r.GET("/fhir/patients", h.SearchPatient)
	r.GET("/sync-jobs", h.ListSyncJobs)
}

func (h *Handler) ValidateBPJS(c *gin.Context) {
	id, ok := handler.PathID(c, "id", "patient")
	if !ok {
		return
	}

	result, err := h.service.ValidateBPJS(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, result, result.Message)
}

// CreateSEP takes an optional body with a note for the SEP.
func (h *Handler) CreateSEP(c *gin.Context) {
	id, ok := handler.PathID(c, "id", "encounter")
	if !ok {
		return
	}
	var req model.CreateSEPRequest
	if c.Request.ContentLength > 0 && !handler.BindJSON(c, &req) {
		return
	}

	result, err := h.service.CreateSEP(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, result, result.Message)
}

func (h *Handler) SyncPatient(c *gin.Context) {
	id, ok := handler.PathID(c, "id", "patient")
	if !ok {
		return
	}

	result, err := h.service.SyncPatient(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, result, result.Message)
}

func (h *Handler) SyncEncounter(c *gin.Context) {
	id, ok := handler.PathID(c, "id", "encounter")
	if !ok {
		return
	}

	result, err := h.service.SyncEncounter(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, result, result.Message)
}

// SearchPatient looks ?nik= up on SATUSEHAT.
func (h *Handler) SearchPatient(c *gin.Context) {
	nik := c.Query("nik")
	if nik == "" {
		httputil.RespondWithError(c, apperrors.NewBadRequest("nik is required", nil))
		return
	}

	bundle, err := h.service.SearchFHIRPatient(c.Request.Context(), nik)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, bundle)
}

func (h *Handler) ListSyncJobs(c *gin.Context) {
	limit, ok := handler.QueryLimit(c, repository.SyncJobLimit)
	if !ok {
		return
	}

	jobs, err := h.service.ListSyncJobs(c.Request.Context(), limit)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, jobs)
}
