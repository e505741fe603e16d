package lab

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/puskesmas-merdeka/simpus-api/internal/handler"
	"github.com/puskesmas-merdeka/simpus-api/internal/model"
	"github.com/puskesmas-merdeka/simpus-api/internal/service/lab"
	"github.com/puskesmas-merdeka/simpus-api/pkg/httputil"
)

type Handler struct {
	service *lab.Service
}

func NewHandler(service *lab.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	orders := r.Group("/lab/orders")
	{
		orders.GET("", h.ListOrders)
		orders.POST("", h.CreateOrder)
		orders.PUT("/:id/status", h.UpdateStatus)
		orders.GET("/:id/results", h.ListResults)
		orders.POST("/:id/results", h.AddResult)
	}
}

type listQuery struct {
	EncounterID string `form:"encounter_id" binding:"omitempty,uuid"`
}

// ListOrders lists the orders of ?encounter_id=, or all of them.
func (h *Handler) ListOrders(c *gin.Context) {
	var q listQuery
	if !handler.BindQuery(c, &q) {
		return
	}
	encounterID := uuid.Nil
	if q.EncounterID != "" {
		encounterID = uuid.MustParse(q.EncounterID)
	}

	orders, err := h.service.ListOrders(c.Request.Context(), encounterID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, orders)
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req model.CreateLabOrderRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	order, err := h.service.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, order)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := handler.PathID(c, "id", "lab order")
	if !ok {
		return
	}
	var req model.UpdateLabOrderStatusRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	order, err := h.service.UpdateStatus(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, order)
}

func (h *Handler) ListResults(c *gin.Context) {
	id, ok := handler.PathID(c, "id", "lab order")
	if !ok {
		return
	}

	results, err := h.service.ListResults(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, results)
}

func (h *Handler) AddResult(c *gin.Context) {
	id, ok := handler.PathID(c, "id", "lab order")
	if !ok {
		return
	}
	var req model.CreateLabResultRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	result, err := h.service.AddResult(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, result)
}
