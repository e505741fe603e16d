package model

import (
	"time"

	"github.com/google/uuid"
)

type EncounterStatus string

const (
	EncounterStatusPlanned    EncounterStatus = "PLANNED"
	EncounterStatusArrived    EncounterStatus = "ARRIVED"
	EncounterStatusInProgress EncounterStatus = "IN_PROGRESS"
	EncounterStatusFinished   EncounterStatus = "FINISHED"
	EncounterStatusCancelled  EncounterStatus = "CANCELLED"
)

// Encounter is one outpatient visit with SOAP-style notes.
type Encounter struct {
	Base            `yaml:",inline"`
	PatientID       uuid.UUID       `json:"patient_id" db:"patient_id" yaml:"patient_id"`
	VisitedAt       time.Time       `json:"tanggal" db:"tanggal" yaml:"tanggal"`
	Poli            string          `json:"poli" db:"poli" yaml:"poli"`
	Complaint       string          `json:"keluhan" db:"keluhan" yaml:"keluhan"`
	Anamnesis       string          `json:"anamnesis" db:"anamnesis" yaml:"anamnesis"`
	Examination     string          `json:"pemeriksaan" db:"pemeriksaan" yaml:"pemeriksaan"`
	Assessment      string          `json:"assessment" db:"assessment" yaml:"assessment"`
	Plan            string          `json:"plan" db:"plan" yaml:"plan"`
	Status          EncounterStatus `json:"status" db:"status" yaml:"status"`
	SEPNumber       *string         `json:"no_sep,omitempty" db:"no_sep" yaml:"no_sep"`
	FHIREncounterID *string         `json:"id_fhir_encounter,omitempty" db:"id_fhir_encounter" yaml:"id_fhir_encounter"`
}

func (e *Encounter) Clone() *Encounter {
	out := *e
	if e.SEPNumber != nil {
		out.SEPNumber = StringPtr(*e.SEPNumber)
	}
	if e.FHIREncounterID != nil {
		out.FHIREncounterID = StringPtr(*e.FHIREncounterID)
	}
	return &out
}

type CreateEncounterRequest struct {
	PatientID   uuid.UUID       `json:"patient_id" binding:"required"`
	VisitedAt   time.Time       `json:"tanggal" binding:"required"`
	Poli        string          `json:"poli" binding:"required,max=100"`
	Complaint   string          `json:"keluhan"`
	Anamnesis   string          `json:"anamnesis"`
	Examination string          `json:"pemeriksaan"`
	Assessment  string          `json:"assessment"`
	Plan        string          `json:"plan"`
	Status      EncounterStatus `json:"status" binding:"omitempty,encounter_status"`
}

type UpdateEncounterRequest struct {
	VisitedAt   *time.Time       `json:"tanggal"`
	Poli        *string          `json:"poli" binding:"omitempty,max=100"`
	Complaint   *string          `json:"keluhan"`
	Anamnesis   *string          `json:"anamnesis"`
	Examination *string          `json:"pemeriksaan"`
	Assessment  *string          `json:"assessment"`
	Plan        *string          `json:"plan"`
	Status      *EncounterStatus `json:"status" binding:"omitempty,encounter_status"`
	Revision    int64            `json:"revision"`
}

func (e *Encounter) Apply(req *UpdateEncounterRequest) {
	if req.VisitedAt != nil {
		e.VisitedAt = *req.VisitedAt
	}
	if req.Poli != nil {
		e.Poli = *req.Poli
	}
	if req.Complaint != nil {
		e.Complaint = *req.Complaint
	}
	if req.Anamnesis != nil {
		e.Anamnesis = *req.Anamnesis
	}
	if req.Examination != nil {
		e.Examination = *req.Examination
	}
	if req.Assessment != nil {
		e.Assessment = *req.Assessment
	}
	if req.Plan != nil {
		e.Plan = *req.Plan
	}
	if req.Status != nil {
		e.Status = *req.Status
	}
}

// EncounterFilter narrows encounter listings. Zero values match everything.
type EncounterFilter struct {
	PatientID uuid.UUID
	Poli      string
	// StartDate and EndDate are inclusive YYYY-MM-DD bounds on the visit date.
	StartDate string
	EndDate   string
}

type DiagnosisRole string

const (
	DiagnosisPrincipal    DiagnosisRole = "PRINCIPAL"
	DiagnosisSecondary    DiagnosisRole = "SECONDARY"
	DiagnosisComplication DiagnosisRole = "COMPLICATION"
)

// Diagnosis links an ICD-10 code to an encounter. Reporting assumes at most
// one PRINCIPAL diagnosis per encounter; nothing enforces it.
type Diagnosis struct {
	ID          uuid.UUID     `json:"id" db:"id" yaml:"id"`
	EncounterID uuid.UUID     `json:"encounter_id" db:"encounter_id" yaml:"encounter_id"`
	Code        string        `json:"kode_icd10" db:"kode_icd10" yaml:"kode_icd10"`
	Name        string        `json:"nama_diagnosis" db:"nama_diagnosis" yaml:"nama_diagnosis"`
	Role        DiagnosisRole `json:"jenis" db:"jenis" yaml:"jenis"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at" yaml:"created_at"`
}

type CreateDiagnosisRequest struct {
	Code string        `json:"kode_icd10" binding:"required,max=16"`
	Name string        `json:"nama_diagnosis" binding:"required"`
	Role DiagnosisRole `json:"jenis" binding:"omitempty,diagnosis_role"`
}

type ICD10Code struct {
	Code     string `json:"kode" db:"kode" yaml:"kode"`
	Name     string `json:"nama" db:"nama" yaml:"nama"`
	Category string `json:"kategori" db:"kategori" yaml:"kategori"`
}
