package model

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog is an append-only record of a user action.
type AuditLog struct {
	ID        uuid.UUID `json:"id" db:"id" yaml:"id"`
	UserID    string    `json:"user_id" db:"user_id" yaml:"user_id"`
	Action    string    `json:"action" db:"action" yaml:"action"`
	Entity    string    `json:"entity" db:"entity" yaml:"entity"`
	EntityID  string    `json:"entity_id" db:"entity_id" yaml:"entity_id"`
	Meta      JSONMap   `json:"meta_json" db:"meta_json" yaml:"meta_json"`
	Timestamp time.Time `json:"timestamp" db:"timestamp" yaml:"timestamp"`
}

func (a *AuditLog) Clone() *AuditLog {
	out := *a
	out.Meta = a.Meta.Clone()
	return &out
}

const (
	AuditActionCreate       = "CREATE"
	AuditActionUpdate       = "UPDATE"
	AuditActionDelete       = "DELETE"
	AuditActionValidateBPJS = "VALIDATE_BPJS"
	AuditActionCreateSEP    = "CREATE_SEP"
	AuditActionSyncFHIR     = "SYNC_FHIR"
	AuditActionLogin        = "LOGIN"
	AuditActionLogout       = "LOGOUT"
	AuditActionExport       = "EXPORT"

	AuditEntityPatient   = "patient"
	AuditEntityEncounter = "encounter"
	AuditEntityDiagnosis = "diagnosis"
	AuditEntityLabOrder  = "lab_order"
	AuditEntityLabResult = "lab_result"
	AuditEntitySession   = "session"
	AuditEntityReport    = "report"
)

type SyncJobStatus string

const (
	SyncJobSuccess SyncJobStatus = "SUCCESS"
	SyncJobFailed  SyncJobStatus = "FAILED"
)

// SyncJob records one attempt to push an entity to SATUSEHAT. Failed jobs
// are kept for inspection only; nothing retries them.
type SyncJob struct {
	ID         uuid.UUID     `json:"id" db:"id" yaml:"id"`
	Entity     string        `json:"entity" db:"entity" yaml:"entity"`
	EntityID   uuid.UUID     `json:"entity_id" db:"entity_id" yaml:"entity_id"`
	ExternalID *string       `json:"external_id,omitempty" db:"external_id" yaml:"external_id"`
	Payload    JSONMap       `json:"payload" db:"payload" yaml:"payload"`
	Status     SyncJobStatus `json:"status" db:"status" yaml:"status"`
	Error      *string       `json:"error,omitempty" db:"error" yaml:"error"`
	CreatedAt  time.Time     `json:"created_at" db:"created_at" yaml:"created_at"`
}

func (j *SyncJob) Clone() *SyncJob {
	out := *j
	out.Payload = j.Payload.Clone()
	if j.ExternalID != nil {
		out.ExternalID = StringPtr(*j.ExternalID)
	}
	if j.Error != nil {
		out.Error = StringPtr(*j.Error)
	}
	return &out
}
