package encounter

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/puskesmas-merdeka/simpus-api/internal/handler"
	"github.com/puskesmas-merdeka/simpus-api/internal/model"
	"github.com/puskesmas-merdeka/simpus-api/internal/service/encounter"
	apperrors "github.com/puskesmas-merdeka/simpus-api/pkg/errors"
	"github.com/puskesmas-merdeka/simpus-api/pkg/httputil"
)

type Handler struct {
	service *encounter.Service
	editor  gin.HandlerFunc
}

func NewHandler(service *encounter.Service, editor gin.HandlerFunc) *Handler {
	return &Handler{
		service: service,
		editor:  editor,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	encounters := r.Group("/encounters")
	{
		encounters.GET("", h.ListEncounters)
		encounters.POST("", h.editor, h.CreateEncounter)
		encounters.GET("/:id", h.GetEncounter)
		encounters.PUT("/:id", h.editor, h.UpdateEncounter)
		encounters.GET("/:id/diagnoses", h.ListDiagnoses)
		encounters.POST("/:id/diagnoses", h.editor, h.AddDiagnosis)
	}
	r.DELETE("/diagnoses/:id", h.editor, h.DeleteDiagnosis)
	r.GET("/icd10", h.SearchICD10)
}

type listQuery struct {
	PatientID string `form:"patient_id" binding:"omitempty,uuid"`
	Poli      string `form:"poli"`
	StartDate string `form:"start" binding:"omitempty,isodate"`
	EndDate   string `form:"end" binding:"omitempty,isodate"`
}

func (h *Handler) ListEncounters(c *gin.Context) {
	var q listQuery
	if !handler.BindQuery(c, &q) {
		return
	}
	filter := &model.EncounterFilter{
		Poli:      q.Poli,
		StartDate: q.StartDate,
		EndDate:   q.EndDate,
	}
	if q.PatientID != "" {
		filter.PatientID = uuid.MustParse(q.PatientID)
	}

	encounters, err := h.service.ListEncounters(c.Request.Context(), filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, encounters)
}

func (h *Handler) CreateEncounter(c *gin.Context) {
	var req model.CreateEncounterRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	e, err := h.service.CreateEncounter(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, e)
}

func (h *Handler) GetEncounter(c *gin.Context) {
	id, ok := handler.PathID(c, "id", "encounter")
	if !ok {
		return
	}

	e, err := h.service.GetEncounter(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, e)
}

func (h *Handler) UpdateEncounter(c *gin.Context) {
	id, ok := handler.PathID(c, "id", "encounter")
	if !ok {
		return
	}
	var req model.UpdateEncounterRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	e, err := h.service.UpdateEncounter(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, e)
}

func (h *Handler) ListDiagnoses(c *gin.Context) {
	id, ok := handler.PathID(c, "id", "encounter")
	if !ok {
		return
	}

	diagnoses, err := h.service.ListDiagnoses(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, diagnoses)
}

func (h *Handler) AddDiagnosis(c *gin.Context) {
	id, ok := handler.PathID(c, "id", "encounter")
	if !ok {
		return
	}
	var req model.CreateDiagnosisRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	d, err := h.service.AddDiagnosis(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, d)
}

func (h *Handler) DeleteDiagnosis(c *gin.Context) {
	id, ok := handler.PathID(c, "id", "diagnosis")
	if !ok {
		return
	}

	if err := h.service.DeleteDiagnosis(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SearchICD10 matches ?q= against code and name. An empty query is rejected
// rather than dumping the whole catalogue.
func (h *Handler) SearchICD10(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		httputil.RespondWithError(c, apperrors.NewBadRequest("q is required", nil))
		return
	}

	codes, err := h.service.SearchICD10(c.Request.Context(), q)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, codes)
}
