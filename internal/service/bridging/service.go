// Package bridging runs the BPJS and SATUSEHAT actions against stored
// records: call the gateway, write the answer back onto the entity, and
// leave a sync job and an audit entry behind.
package bridging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/puskesmas-merdeka/simpus-api/internal/dateutil"
	"github.com/puskesmas-merdeka/simpus-api/internal/integration"
	"github.com/puskesmas-merdeka/simpus-api/internal/model"
	"github.com/puskesmas-merdeka/simpus-api/internal/repository"
	"github.com/puskesmas-merdeka/simpus-api/internal/service/audit"
	apperrors "github.com/puskesmas-merdeka/simpus-api/pkg/errors"
	"github.com/puskesmas-merdeka/simpus-api/pkg/logger"
)

// writeBackAttempts bounds the re-read and write loop after a gateway call.
const writeBackAttempts = 3

type Service struct {
	gateway       integration.Gateway
	patientRepo   repository.PatientRepository
	encounterRepo repository.EncounterRepository
	diagnosisRepo repository.DiagnosisRepository
	syncJobRepo   repository.SyncJobRepository
	auditor       audit.Logger
	now           func() time.Time
}

func NewService(gateway integration.Gateway, store *repository.Store, auditor audit.Logger) *Service {
	return &Service{
		gateway:       gateway,
		patientRepo:   store.Patients,
		encounterRepo: store.Encounters,
		diagnosisRepo: store.Diagnoses,
		syncJobRepo:   store.SyncJobs,
		auditor:       auditor,
		now:           time.Now,
	}
}

// ValidateBPJS checks the patient's card and stores the resulting status.
func (s *Service) ValidateBPJS(ctx context.Context, patientID uuid.UUID) (*model.BPJSValidation, error) {
	patient, err := s.getPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if patient.BPJSNumber == "" {
		return nil, apperrors.NewBadRequest("Tidak ada No. BPJS", nil)
	}

	card := patient.BPJSNumber
	participant, message, err := s.gateway.ValidateBPJS(ctx, card)
	if err != nil {
		return nil, fmt.Errorf("failed to validate bpjs: %w", err)
	}

	status := model.BPJSStatusInactive
	if participant.Active() {
		status = model.BPJSStatusActive
	}
	validatedAt := s.now().UTC()
	patient, err = s.patchPatient(ctx, patientID, func(p *model.Patient) {
		p.BPJSStatus = status
		p.BPJSValidatedAt = &validatedAt
	})
	if err != nil {
		return nil, err
	}

	s.auditor.Log(ctx, model.AuditActionValidateBPJS, model.AuditEntityPatient, patientID.String(), model.JSONMap{
		"no_bpjs": card,
		"status":  status,
	})

	return &model.BPJSValidation{
		Patient:     patient,
		Participant: participant,
		Message:     message,
	}, nil
}

// CreateSEP issues a SEP for the encounter and stores its number.
func (s *Service) CreateSEP(ctx context.Context, encounterID uuid.UUID, req *model.CreateSEPRequest) (*model.SEPResult, error) {
	encounter, err := s.getEncounter(ctx, encounterID)
	if err != nil {
		return nil, err
	}
	patient, err := s.getPatient(ctx, encounter.PatientID)
	if err != nil {
		return nil, err
	}
	if patient.BPJSNumber == "" {
		return nil, apperrors.NewBadRequest("Tidak ada No. BPJS", nil)
	}

	sepReq := &model.SEPRequest{
		CardNumber:    patient.BPJSNumber,
		Date:          dateutil.DateKey(encounter.VisitedAt),
		PatientName:   patient.Name,
		MedicalRecord: patient.NIK,
		BirthDate:     patient.BirthDate.String(),
		Poli:          encounter.Poli,
	}
	if req != nil {
		sepReq.Note = req.Note
	}
	if principal, err := s.principalDiagnosis(ctx, encounterID); err != nil {
		return nil, err
	} else if principal != nil {
		sepReq.DiagnosisCode = principal.Code
	}

	sep, message, err := s.gateway.CreateSEP(ctx, sepReq)
	if err != nil {
		return nil, fmt.Errorf("failed to create sep: %w", err)
	}

	encounter, err = s.patchEncounter(ctx, encounterID, func(e *model.Encounter) {
		e.SEPNumber = model.StringPtr(sep.Number)
	})
	if err != nil {
		return nil, err
	}

	s.auditor.Log(ctx, model.AuditActionCreateSEP, model.AuditEntityEncounter, encounterID.String(), model.JSONMap{
		"no_sep":  sep.Number,
		"no_bpjs": patient.BPJSNumber,
	})

	return &model.SEPResult{
		Encounter: encounter,
		SEP:       sep,
		Message:   message,
	}, nil
}

// SyncPatient pushes the patient to SATUSEHAT. Each call mints a new FHIR id
// that replaces the stored one.
func (s *Service) SyncPatient(ctx context.Context, patientID uuid.UUID) (*model.FHIRPatientSync, error) {
	patient, err := s.getPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	in := &model.FHIRPatientInput{
		NIK:       patient.NIK,
		Name:      patient.Name,
		Sex:       patient.Sex,
		BirthDate: patient.BirthDate.String(),
		Address:   patient.Address,
		Phone:     patient.Phone,
	}

	resource, message, err := s.gateway.SyncPatient(ctx, in)
	if err != nil {
		s.recordFailure(ctx, model.AuditEntityPatient, patientID, in, err)
		return nil, fmt.Errorf("failed to sync patient: %w", err)
	}

	patient, err = s.patchPatient(ctx, patientID, func(p *model.Patient) {
		p.FHIRPatientID = model.StringPtr(resource.ID)
	})
	if err != nil {
		return nil, err
	}

	job, err := s.recordJob(ctx, model.AuditEntityPatient, patientID, in, resource.ID, nil)
	if err != nil {
		return nil, err
	}

	s.auditor.Log(ctx, model.AuditActionSyncFHIR, model.AuditEntityPatient, patientID.String(), model.JSONMap{
		"fhir_id": resource.ID,
	})

	return &model.FHIRPatientSync{
		Patient:  patient,
		Resource: resource,
		SyncJob:  job,
		Message:  message,
	}, nil
}

// SyncEncounter pushes the encounter to SATUSEHAT. A deleted patient does
// not block it; the subject is then sent without a FHIR id.
func (s *Service) SyncEncounter(ctx context.Context, encounterID uuid.UUID) (*model.FHIREncounterSync, error) {
	encounter, err := s.getEncounter(ctx, encounterID)
	if err != nil {
		return nil, err
	}

	in := &model.FHIREncounterInput{
		PatientID: encounter.PatientID.String(),
		Date:      dateutil.DateKey(encounter.VisitedAt),
		Poli:      encounter.Poli,
	}
	patient, err := s.getPatient(ctx, encounter.PatientID)
	switch {
	case err == nil:
		in.PatientName = patient.Name
		if patient.FHIRPatientID != nil {
			in.FHIRPatientID = *patient.FHIRPatientID
		}
	case !apperrors.Is(err, apperrors.ErrNotFound):
		return nil, err
	}
	principal, err := s.principalDiagnosis(ctx, encounterID)
	if err != nil {
		return nil, err
	}
	if principal != nil {
		in.Diagnosis = principal.Name
		in.ICD10Code = principal.Code
	}

	resource, message, err := s.gateway.SyncEncounter(ctx, in)
	if err != nil {
		s.recordFailure(ctx, model.AuditEntityEncounter, encounterID, in, err)
		return nil, fmt.Errorf("failed to sync encounter: %w", err)
	}

	encounter, err = s.patchEncounter(ctx, encounterID, func(e *model.Encounter) {
		e.FHIREncounterID = model.StringPtr(resource.ID)
	})
	if err != nil {
		return nil, err
	}

	job, err := s.recordJob(ctx, model.AuditEntityEncounter, encounterID, in, resource.ID, nil)
	if err != nil {
		return nil, err
	}

	s.auditor.Log(ctx, model.AuditActionSyncFHIR, model.AuditEntityEncounter, encounterID.String(), model.JSONMap{
		"fhir_id": resource.ID,
	})

	return &model.FHIREncounterSync{
		Encounter: encounter,
		Resource:  resource,
		SyncJob:   job,
		Message:   message,
	}, nil
}

// SearchFHIRPatient looks a NIK up on SATUSEHAT. Nothing is stored.
func (s *Service) SearchFHIRPatient(ctx context.Context, nik string) (*model.FHIRBundle, error) {
	bundle, err := s.gateway.SearchPatient(ctx, nik)
	if err != nil {
		return nil, fmt.Errorf("failed to search fhir patient: %w", err)
	}
	return bundle, nil
}

func (s *Service) ListSyncJobs(ctx context.Context, limit int) ([]*model.SyncJob, error) {
	if limit <= 0 || limit > repository.SyncJobLimit {
		limit = repository.SyncJobLimit
	}
	jobs, err := s.syncJobRepo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync jobs: %w", err)
	}
	return jobs, nil
}

func (s *Service) getPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	patient, err := s.patientRepo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", repository.AppError("Patient", err))
	}
	return patient, nil
}

func (s *Service) getEncounter(ctx context.Context, id uuid.UUID) (*model.Encounter, error) {
	encounter, err := s.encounterRepo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get encounter: %w", repository.AppError("Encounter", err))
	}
	return encounter, nil
}

// patchPatient re-reads the patient and applies only the fields the action
// owns, so edits made while the gateway call was in flight survive. The
// write is checked against the revision just read and retried on conflict.
func (s *Service) patchPatient(ctx context.Context, id uuid.UUID, apply func(*model.Patient)) (*model.Patient, error) {
	for attempt := 0; attempt < writeBackAttempts; attempt++ {
		patient, err := s.getPatient(ctx, id)
		if err != nil {
			return nil, err
		}
		apply(patient)
		err = s.patientRepo.Update(ctx, patient, patient.Revision)
		if errors.Is(err, repository.ErrRevisionConflict) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to update patient: %w", repository.AppError("Patient", err))
		}
		return patient, nil
	}
	return nil, fmt.Errorf("failed to update patient: %w", repository.AppError("Patient", repository.ErrRevisionConflict))
}

func (s *Service) patchEncounter(ctx context.Context, id uuid.UUID, apply func(*model.Encounter)) (*model.Encounter, error) {
	for attempt := 0; attempt < writeBackAttempts; attempt++ {
		encounter, err := s.getEncounter(ctx, id)
		if err != nil {
			return nil, err
		}
		apply(encounter)
		err = s.encounterRepo.Update(ctx, encounter, encounter.Revision)
		if errors.Is(err, repository.ErrRevisionConflict) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to update encounter: %w", repository.AppError("Encounter", err))
		}
		return encounter, nil
	}
	return nil, fmt.Errorf("failed to update encounter: %w", repository.AppError("Encounter", repository.ErrRevisionConflict))
}

// principalDiagnosis returns the first PRINCIPAL diagnosis, or nil.
func (s *Service) principalDiagnosis(ctx context.Context, encounterID uuid.UUID) (*model.Diagnosis, error) {
	diagnoses, err := s.diagnosisRepo.ListByEncounter(ctx, encounterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list diagnoses: %w", err)
	}
	for _, d := range diagnoses {
		if d.Role == model.DiagnosisPrincipal {
			return d, nil
		}
	}
	return nil, nil
}

func (s *Service) recordJob(ctx context.Context, entity string, entityID uuid.UUID, payload interface{}, externalID string, cause error) (*model.SyncJob, error) {
	job := &model.SyncJob{
		Entity:   entity,
		EntityID: entityID,
		Payload:  snapshot(payload),
		Status:   model.SyncJobSuccess,
	}
	if externalID != "" {
		job.ExternalID = model.StringPtr(externalID)
	}
	if cause != nil {
		job.Status = model.SyncJobFailed
		job.Error = model.StringPtr(cause.Error())
	}

	if err := s.syncJobRepo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create sync job: %w", err)
	}
	return job, nil
}

// recordFailure keeps the failed attempt for inspection. Nothing retries it.
func (s *Service) recordFailure(ctx context.Context, entity string, entityID uuid.UUID, payload interface{}, cause error) {
	if _, err := s.recordJob(ctx, entity, entityID, payload, "", cause); err != nil {
		logger.FromContext(ctx).Error().
			Err(err).
			Str("entity", entity).
			Str("entity_id", entityID.String()).
			Msg("Failed to record failed sync")
	}
}

func snapshot(v interface{}) model.JSONMap {
	raw, err := json.Marshal(v)
	if err != nil {
		return model.JSONMap{}
	}
	var out model.JSONMap
	if err := json.Unmarshal(raw, &out); err != nil {
		return model.JSONMap{}
	}
	return out
}
