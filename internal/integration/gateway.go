// Package integration reaches the BPJS and SATUSEHAT endpoints. Services use
// the Gateway interface and do not know whether the answer came from the
// in-process generators or the standalone mock server.
package integration

import (
	"context"
	"time"

	"github.com/puskesmas-merdeka/simpus-api/internal/model"
	apperrors "github.com/puskesmas-merdeka/simpus-api/pkg/errors"
	"github.com/puskesmas-merdeka/simpus-api/pkg/metrics"
)

const (
	ServiceBPJS      = "BPJS"
	ServiceSatuSehat = "SATUSEHAT"
)

// Gateway errors are *errors.AppError: BadRequest when the endpoint rejected
// the input, Unavailable when it could not be reached.
type Gateway interface {
	ValidateBPJS(ctx context.Context, cardNumber string) (*model.BPJSParticipant, string, error)
	CreateSEP(ctx context.Context, req *model.SEPRequest) (*model.SEP, string, error)
	SyncPatient(ctx context.Context, in *model.FHIRPatientInput) (*model.FHIRPatient, string, error)
	SyncEncounter(ctx context.Context, in *model.FHIREncounterInput) (*model.FHIREncounter, string, error)
	SearchPatient(ctx context.Context, nik string) (*model.FHIRBundle, error)
}

type instrumented struct {
	next    Gateway
	metrics *metrics.Metrics
}

// WithMetrics counts every call by service, action and outcome.
func WithMetrics(next Gateway, m *metrics.Metrics) Gateway {
	if m == nil {
		return next
	}
	return &instrumented{next: next, metrics: m}
}

func (g *instrumented) observe(service, action string, start time.Time, err error) {
	outcome := "success"
	switch {
	case apperrors.Is(err, apperrors.ErrBadRequest):
		outcome = "rejected"
	case err != nil:
		outcome = "error"
	}
	g.metrics.IntegrationCalls.WithLabelValues(service, action, outcome).Inc()
	g.metrics.IntegrationLatency.WithLabelValues(service, action).Observe(time.Since(start).Seconds())
}

func (g *instrumented) ValidateBPJS(ctx context.Context, cardNumber string) (*model.BPJSParticipant, string, error) {
	start := time.Now()
	p, msg, err := g.next.ValidateBPJS(ctx, cardNumber)
	g.observe(ServiceBPJS, "validate", start, err)
	return p, msg, err
}

func (g *instrumented) CreateSEP(ctx context.Context, req *model.SEPRequest) (*model.SEP, string, error) {
	start := time.Now()
	sep, msg, err := g.next.CreateSEP(ctx, req)
	g.observe(ServiceBPJS, "create-sep", start, err)
	return sep, msg, err
}

func (g *instrumented) SyncPatient(ctx context.Context, in *model.FHIRPatientInput) (*model.FHIRPatient, string, error) {
	start := time.Now()
	p, msg, err := g.next.SyncPatient(ctx, in)
	g.observe(ServiceSatuSehat, "patient", start, err)
	return p, msg, err
}

func (g *instrumented) SyncEncounter(ctx context.Context, in *model.FHIREncounterInput) (*model.FHIREncounter, string, error) {
	start := time.Now()
	e, msg, err := g.next.SyncEncounter(ctx, in)
	g.observe(ServiceSatuSehat, "encounter", start, err)
	return e, msg, err
}

func (g *instrumented) SearchPatient(ctx context.Context, nik string) (*model.FHIRBundle, error) {
	start := time.Now()
	b, err := g.next.SearchPatient(ctx, nik)
	g.observe(ServiceSatuSehat, "patient-search", start, err)
	return b, err
}
