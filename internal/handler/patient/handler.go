package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/puskesmas-merdeka/simpus-api/internal/handler"
	"github.com/puskesmas-merdeka/simpus-api/internal/model"
	"github.com/puskesmas-merdeka/simpus-api/internal/service/patient"
	"github.com/puskesmas-merdeka/simpus-api/pkg/httputil"
)

type Handler struct {
	service *patient.Service
	// editor guards the routes that change patients.
	editor gin.HandlerFunc
}

func NewHandler(service *patient.Service, editor gin.HandlerFunc) *Handler {
	return &Handler{
		service: service,
		editor:  editor,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.GET("", h.ListPatients)
		patients.POST("", h.editor, h.CreatePatient)
		patients.GET("/:id", h.GetPatient)
		patients.PUT("/:id", h.editor, h.UpdatePatient)
		patients.DELETE("/:id", h.editor, h.DeletePatient)
		patients.GET("/:id/encounters", h.ListEncounters)
	}
}

// ListPatients searches by ?q= across name, NIK and BPJS number.
func (h *Handler) ListPatients(c *gin.Context) {
	patients, err := h.service.ListPatients(c.Request.Context(), c.Query("q"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, patients)
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req model.CreatePatientRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	p, err := h.service.CreatePatient(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, p)
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, ok := handler.PathID(c, "id", "patient")
	if !ok {
		return
	}

	p, err := h.service.GetPatient(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, p)
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	id, ok := handler.PathID(c, "id", "patient")
	if !ok {
		return
	}
	var req model.UpdatePatientRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	p, err := h.service.UpdatePatient(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, p)
}

func (h *Handler) DeletePatient(c *gin.Context) {
	id, ok := handler.PathID(c, "id", "patient")
	if !ok {
		return
	}

	if err := h.service.DeletePatient(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListEncounters is the visit history shown on the patient detail.
func (h *Handler) ListEncounters(c *gin.Context) {
	id, ok := handler.PathID(c, "id", "patient")
	if !ok {
		return
	}

	encounters, err := h.service.ListEncounters(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, encounters)
}
