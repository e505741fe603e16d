package encounter

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

type Service struct {
	repo          repository.EncounterRepository
	patientRepo   repository.PatientRepository
	diagnosisRepo repository.DiagnosisRepository
	icd10Repo     repository.ICD10Repository
	auditor       audit.Logger
}

func NewService(store *repository.Store, auditor audit.Logger) *Service {
	return &Service{
		repo:          store.Encounters,
		patientRepo:   store.Patients,
		diagnosisRepo: store.Diagnoses,
		icd10Repo:     store.ICD10,
		auditor:       auditor,
	}
}

func (s *Service) CreateEncounter(ctx context.Context, req *model.CreateEncounterRequest) (*model.Encounter, error) {
	if _, err := s.patientRepo.Get(ctx, req.PatientID); err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", repository.AppError("Patient", err))
	}

	encounter := &model.Encounter{
		PatientID:   req.PatientID,
		VisitedAt:   req.VisitedAt,
		Poli:        strings.TrimSpace(req.Poli),
		Complaint:   req.Complaint,
		Anamnesis:   req.Anamnesis,
		Examination: req.Examination,
		Assessment:  req.Assessment,
		Plan:        req.Plan,
		Status:      req.Status,
	}
	if encounter.Status == "" {
		encounter.Status = model.EncounterStatusPlanned
	}

	if err := s.repo.Create(ctx, encounter); err != nil {
		return nil, fmt.Errorf("failed to create encounter: %w", err)
	}

	s.auditor.Log(ctx, model.AuditActionCreate, model.AuditEntityEncounter, encounter.ID.String(), model.JSONMap{
		"patient_id": encounter.PatientID.String(),
		"poli":       encounter.Poli,
	})
	return encounter, nil
}

func (s *Service) GetEncounter(ctx context.Context, id uuid.UUID) (*model.Encounter, error) {
	encounter, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get encounter: %w", repository.AppError("Encounter", err))
	}
	return encounter, nil
}

func (s *Service) UpdateEncounter(ctx context.Context, id uuid.UUID, req *model.UpdateEncounterRequest) (*model.Encounter, error) {
	encounter, err := s.GetEncounter(ctx, id)
	if err != nil {
		return nil, err
	}

	encounter.Apply(req)
	if err := s.repo.Update(ctx, encounter, req.Revision); err != nil {
		return nil, fmt.Errorf("failed to update encounter: %w", repository.AppError("Encounter", err))
	}

	s.auditor.Log(ctx, model.AuditActionUpdate, model.AuditEntityEncounter, id.String(), model.JSONMap{
		"status": string(encounter.Status),
	})
	return encounter, nil
}

func (s *Service) ListEncounters(ctx context.Context, filter *model.EncounterFilter) ([]*model.Encounter, error) {
	encounters, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list encounters: %w", err)
	}
	return encounters, nil
}

func (s *Service) ListDiagnoses(ctx context.Context, encounterID uuid.UUID) ([]*model.Diagnosis, error) {
	if _, err := s.GetEncounter(ctx, encounterID); err != nil {
		return nil, err
	}
	diagnoses, err := s.diagnosisRepo.ListByEncounter(ctx, encounterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list diagnoses: %w", err)
	}
	return diagnoses, nil
}

// AddDiagnosis does not check for an existing PRINCIPAL diagnosis.
func (s *Service) AddDiagnosis(ctx context.Context, encounterID uuid.UUID, req *model.CreateDiagnosisRequest) (*model.Diagnosis, error) {
	if _, err := s.GetEncounter(ctx, encounterID); err != nil {
		return nil, err
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return nil, apperrors.NewBadRequest("kode_icd10 is required", nil)
	}

	diagnosis := &model.Diagnosis{
		EncounterID: encounterID,
		Code:        code,
		Name:        strings.TrimSpace(req.Name),
		Role:        req.Role,
	}
	if diagnosis.Role == "" {
		diagnosis.Role = model.DiagnosisPrincipal
	}

	if err := s.diagnosisRepo.Create(ctx, diagnosis); err != nil {
		return nil, fmt.Errorf("failed to create diagnosis: %w", err)
	}

	s.auditor.Log(ctx, model.AuditActionCreate, model.AuditEntityDiagnosis, diagnosis.ID.String(), model.JSONMap{
		"encounter_id": encounterID.String(),
		"kode_icd10":   diagnosis.Code,
	})
	return diagnosis, nil
}

func (s *Service) DeleteDiagnosis(ctx context.Context, id uuid.UUID) error {
	diagnosis, err := s.diagnosisRepo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get diagnosis: %w", repository.AppError("Diagnosis", err))
	}

	if err := s.diagnosisRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete diagnosis: %w", repository.AppError("Diagnosis", err))
	}

	s.auditor.Log(ctx, model.AuditActionDelete, model.AuditEntityDiagnosis, id.String(), model.JSONMap{
		"encounter_id": diagnosis.EncounterID.String(),
		"kode_icd10":   diagnosis.Code,
	})
	return nil
}

func (s *Service) SearchICD10(ctx context.Context, query string) ([]*model.ICD10Code, error) {
	codes, err := s.icd10Repo.Search(ctx, query, repository.ICD10SearchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search icd10: %w", err)
	}
	return codes, nil
}
