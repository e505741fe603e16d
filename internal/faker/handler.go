package faker

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/puskesmas-merdeka/simpus-api/internal/model"
)

const (
	BPJSPath      = "/bpjs-faker"
	SatuSehatPath = "/satusehat-faker"
)

// Response is the envelope both mock endpoints answer with.
type Response[T any] struct {
	Success bool   `json:"success,omitempty"`
	Data    T      `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Request wraps POST bodies as {"data": ...}.
type Request[T any] struct {
	Data *T `json:"data"`
}

type Handler struct {
	bpjs      *BPJS
	satusehat *SatuSehat
	log       zerolog.Logger
}

func NewHandler(src Source, log zerolog.Logger) *Handler {
	return &Handler{
		bpjs:      NewBPJS(src),
		satusehat: NewSatuSehat(src),
		log:       log,
	}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.Use(h.recoverJSON())
	r.GET(BPJSPath, h.BPJS)
	r.POST(BPJSPath, h.BPJS)
	r.GET(SatuSehatPath, h.SatuSehat)
	r.POST(SatuSehatPath, h.SatuSehat)
	r.OPTIONS(BPJSPath, preflight)
	r.OPTIONS(SatuSehatPath, preflight)
}

func preflight(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func (h *Handler) BPJS(c *gin.Context) {
	action := c.Query("action")
	h.log.Info().Str("action", action).Msg("BPJS faker called")

	switch action {
	case "validate":
		participant, message, err := h.bpjs.Validate(c.Query("no_bpjs"))
		if err != nil {
			h.fail(c, err)
			return
		}
		h.log.Info().Str("status", participant.Status.Label).Msg("BPJS validation result")
		c.JSON(http.StatusOK, Response[*model.BPJSParticipant]{Success: true, Data: participant, Message: message})

	case "create-sep":
		var req Request[model.SEPRequest]
		if err := c.ShouldBindJSON(&req); err != nil {
			h.fail(c, ErrSEPIncomplete)
			return
		}
		sep, err := h.bpjs.CreateSEP(req.Data)
		if err != nil {
			h.fail(c, err)
			return
		}
		h.log.Info().Str("no_sep", sep.Number).Msg("SEP created")
		c.JSON(http.StatusOK, Response[*model.SEP]{Success: true, Data: sep, Message: MessageSEPCreated})

	default:
		h.fail(c, ErrUnknownAction)
	}
}

func (h *Handler) SatuSehat(c *gin.Context) {
	resource := c.Query("resource")
	h.log.Info().Str("resource", resource).Str("method", c.Request.Method).Msg("SATUSEHAT faker called")

	switch {
	case resource == "Patient" && c.Request.Method == http.MethodPost:
		var req Request[model.FHIRPatientInput]
		if err := c.ShouldBindJSON(&req); err != nil {
			h.fail(c, ErrPatientIncomplete)
			return
		}
		patient, err := h.satusehat.CreatePatient(req.Data)
		if err != nil {
			h.fail(c, err)
			return
		}
		h.log.Info().Str("fhir_id", patient.ID).Msg("Patient synced to FHIR")
		c.JSON(http.StatusOK, Response[*model.FHIRPatient]{Success: true, Data: patient, Message: MessagePatientSynced})

	case resource == "Encounter" && c.Request.Method == http.MethodPost:
		var req Request[model.FHIREncounterInput]
		if err := c.ShouldBindJSON(&req); err != nil {
			h.fail(c, ErrEncounterIncomplete)
			return
		}
		encounter, err := h.satusehat.CreateEncounter(req.Data)
		if err != nil {
			h.fail(c, err)
			return
		}
		h.log.Info().Str("fhir_id", encounter.ID).Msg("Encounter synced to FHIR")
		c.JSON(http.StatusOK, Response[*model.FHIREncounter]{Success: true, Data: encounter, Message: MessageEncounterSynced})

	case resource == "Patient" && c.Request.Method == http.MethodGet:
		bundle, err := h.satusehat.SearchPatient(c.Query("identifier"))
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, Response[*model.FHIRBundle]{Success: true, Data: bundle})

	default:
		h.fail(c, ErrUnknownResource)
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	var input InputError
	if errors.As(err, &input) {
		c.AbortWithStatusJSON(http.StatusBadRequest, Response[any]{Error: input.Error()})
		return
	}
	h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Faker request failed")
	c.AbortWithStatusJSON(http.StatusInternalServerError, Response[any]{Error: err.Error()})
}

// recoverJSON turns a panic into a 500 with the {error} envelope.
func (h *Handler) recoverJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				h.log.Error().
					Interface("error", rec).
					Str("stack", string(debug.Stack())).
					Str("path", c.Request.URL.Path).
					Msg("Faker panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, Response[any]{Error: fmt.Sprint(rec)})
			}
		}()
		c.Next()
	}
}
