package patient

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/puskesmas-merdeka/simpus-api/internal/model"
	"github.com/puskesmas-merdeka/simpus-api/internal/repository"
	"github.com/puskesmas-merdeka/simpus-api/internal/service/audit"
	apperrors "github.com/puskesmas-merdeka/simpus-api/pkg/errors"
)

const resource = "Patient"

type Service struct {
	repo          repository.PatientRepository
	encounterRepo repository.EncounterRepository
	auditor       audit.Logger
}

func NewService(repo repository.PatientRepository, encounterRepo repository.EncounterRepository, auditor audit.Logger) *Service {
	return &Service{
		repo:          repo,
		encounterRepo: encounterRepo,
		auditor:       auditor,
	}
}

func (s *Service) CreatePatient(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error) {
	if req.BirthDate.IsZero() {
		return nil, apperrors.NewBadRequest("tanggal_lahir is required", nil)
	}

	patient := &model.Patient{
		NIK:        strings.TrimSpace(req.NIK),
		BPJSNumber: strings.TrimSpace(req.BPJSNumber),
		Name:       strings.TrimSpace(req.Name),
		BirthDate:  req.BirthDate,
		Sex:        req.Sex,
		Address:    req.Address,
		Phone:      req.Phone,
		Status:     req.Status,
	}
	if patient.Status == "" {
		patient.Status = model.PatientStatusActive
	}
	if err := requireIdentity(patient); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}

	s.auditor.Log(ctx, model.AuditActionCreate, model.AuditEntityPatient, patient.ID.String(), model.JSONMap{
		"nama": patient.Name,
	})
	return patient, nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", repository.AppError(resource, err))
	}
	return patient, nil
}

// UpdatePatient merges the present fields over the stored record. The id
// never changes.
func (s *Service) UpdatePatient(ctx context.Context, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", repository.AppError(resource, err))
	}

	patient.Apply(req)
	if err := requireIdentity(patient); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, patient, req.Revision); err != nil {
		return nil, fmt.Errorf("failed to update patient: %w", repository.AppError(resource, err))
	}

	s.auditor.Log(ctx, model.AuditActionUpdate, model.AuditEntityPatient, id.String(), model.JSONMap{
		"nama": patient.Name,
	})
	return patient, nil
}

// requireIdentity rejects a patient left without NIK or name; SATUSEHAT
// refuses both.
func requireIdentity(p *model.Patient) error {
	switch {
	case p.NIK == "":
		return apperrors.NewBadRequest("nik is required", nil)
	case p.Name == "":
		return apperrors.NewBadRequest("nama is required", nil)
	}
	return nil
}

// DeletePatient removes the patient only. Their encounters stay.
func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get patient: %w", repository.AppError(resource, err))
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete patient: %w", repository.AppError(resource, err))
	}

	s.auditor.Log(ctx, model.AuditActionDelete, model.AuditEntityPatient, id.String(), model.JSONMap{
		"nama": patient.Name,
	})
	return nil
}

// ListPatients searches when query is non-blank.
func (s *Service) ListPatients(ctx context.Context, query string) ([]*model.Patient, error) {
	var (
		patients []*model.Patient
		err      error
	)
	if strings.TrimSpace(query) == "" {
		patients, err = s.repo.List(ctx)
	} else {
		patients, err = s.repo.Search(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

func (s *Service) ListEncounters(ctx context.Context, id uuid.UUID) ([]*model.Encounter, error) {
	if _, err := s.GetPatient(ctx, id); err != nil {
		return nil, err
	}
	encounters, err := s.encounterRepo.List(ctx, &model.EncounterFilter{PatientID: id})
	if err != nil {
		return nil, fmt.Errorf("failed to list encounters: %w", err)
	}
	return encounters, nil
}
