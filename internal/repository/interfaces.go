package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/puskesmas-merdeka/simpus-api/internal/model"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrRevisionConflict is returned when an update names a revision other
	// than the stored one.
	ErrRevisionConflict = errors.New("revision conflict")
)

// Default listing caps.
const (
	ICD10SearchLimit = 50
	AuditLogLimit    = 100
	SyncJobLimit     = 50
)

// Update methods take the revision the caller last saw. Zero skips the check
// and the last write wins. On success the entity carries its new revision.
type (
	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient, expectedRevision int64) error
		Delete(ctx context.Context, id uuid.UUID) error
		// List returns patients newest first.
		List(ctx context.Context) ([]*model.Patient, error)
		// Search matches name case-insensitively, NIK and BPJS number by
		// substring. A blank query behaves like List.
		Search(ctx context.Context, query string) ([]*model.Patient, error)
	}

	EncounterRepository interface {
		Create(ctx context.Context, encounter *model.Encounter) error
		Get(ctx context.Context, id uuid.UUID) (*model.Encounter, error)
		Update(ctx context.Context, encounter *model.Encounter, expectedRevision int64) error
		// List returns matching encounters newest visit first.
		List(ctx context.Context, filter *model.EncounterFilter) ([]*model.Encounter, error)
	}

	DiagnosisRepository interface {
		Create(ctx context.Context, diagnosis *model.Diagnosis) error
		Get(ctx context.Context, id uuid.UUID) (*model.Diagnosis, error)
		Delete(ctx context.Context, id uuid.UUID) error
		ListByEncounter(ctx context.Context, encounterID uuid.UUID) ([]*model.Diagnosis, error)
		// List returns every diagnosis in creation order.
		List(ctx context.Context) ([]*model.Diagnosis, error)
	}

	LabOrderRepository interface {
		Create(ctx context.Context, order *model.LabOrder) error
		Get(ctx context.Context, id uuid.UUID) (*model.LabOrder, error)
		Update(ctx context.Context, order *model.LabOrder, expectedRevision int64) error
		// List returns orders newest first; uuid.Nil lists all encounters.
		List(ctx context.Context, encounterID uuid.UUID) ([]*model.LabOrder, error)
	}

	LabResultRepository interface {
		Create(ctx context.Context, result *model.LabResult) error
		ListByOrder(ctx context.Context, labOrderID uuid.UUID) ([]*model.LabResult, error)
	}

	ICD10Repository interface {
		// Search matches code or name case-insensitively.
		Search(ctx context.Context, query string, limit int) ([]*model.ICD10Code, error)
	}

	AuditRepository interface {
		Create(ctx context.Context, log *model.AuditLog) error
		// List returns the newest entries first.
		List(ctx context.Context, limit int) ([]*model.AuditLog, error)
	}

	SyncJobRepository interface {
		Create(ctx context.Context, job *model.SyncJob) error
		List(ctx context.Context, limit int) ([]*model.SyncJob, error)
	}
)

// Store bundles one backend's repositories.
type Store struct {
	Patients   PatientRepository
	Encounters EncounterRepository
	Diagnoses  DiagnosisRepository
	LabOrders  LabOrderRepository
	LabResults LabResultRepository
	ICD10      ICD10Repository
	AuditLogs  AuditRepository
	SyncJobs   SyncJobRepository
}
