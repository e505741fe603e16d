package integration

import (
	"context"
	"errors"

	"github.com/puskesmas-merdeka/simpus-api/internal/faker"
	"github.com/puskesmas-merdeka/simpus-api/internal/model"
	apperrors "github.com/puskesmas-merdeka/simpus-api/pkg/errors"
)

// Local calls the generators in-process. It is used in mock data mode.
type Local struct {
	bpjs      *faker.BPJS
	satusehat *faker.SatuSehat
}

func NewLocal(src faker.Source) *Local {
	return &Local{
		bpjs:      faker.NewBPJS(src),
		satusehat: faker.NewSatuSehat(src),
	}
}

func (l *Local) ValidateBPJS(ctx context.Context, cardNumber string) (*model.BPJSParticipant, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", apperrors.NewUnavailable(ServiceBPJS, err)
	}
	p, msg, err := l.bpjs.Validate(cardNumber)
	return p, msg, localError(ServiceBPJS, err)
}

func (l *Local) CreateSEP(ctx context.Context, req *model.SEPRequest) (*model.SEP, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", apperrors.NewUnavailable(ServiceBPJS, err)
	}
	sep, err := l.bpjs.CreateSEP(req)
	if err != nil {
		return nil, "", localError(ServiceBPJS, err)
	}
	return sep, faker.MessageSEPCreated, nil
}

func (l *Local) SyncPatient(ctx context.Context, in *model.FHIRPatientInput) (*model.FHIRPatient, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", apperrors.NewUnavailable(ServiceSatuSehat, err)
	}
	p, err := l.satusehat.CreatePatient(in)
	if err != nil {
		return nil, "", localError(ServiceSatuSehat, err)
	}
	return p, faker.MessagePatientSynced, nil
}

func (l *Local) SyncEncounter(ctx context.Context, in *model.FHIREncounterInput) (*model.FHIREncounter, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", apperrors.NewUnavailable(ServiceSatuSehat, err)
	}
	e, err := l.satusehat.CreateEncounter(in)
	if err != nil {
		return nil, "", localError(ServiceSatuSehat, err)
	}
	return e, faker.MessageEncounterSynced, nil
}

func (l *Local) SearchPatient(ctx context.Context, nik string) (*model.FHIRBundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewUnavailable(ServiceSatuSehat, err)
	}
	b, err := l.satusehat.SearchPatient(nik)
	return b, localError(ServiceSatuSehat, err)
}

func localError(service string, err error) error {
	if err == nil {
		return nil
	}
	var input faker.InputError
	if errors.As(err, &input) {
		return apperrors.NewBadRequest(input.Error(), err)
	}
	return apperrors.NewUnavailable(service, err)
}
