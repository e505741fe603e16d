package model

import (
	"strings"
	"time"
)

type PatientStatus string

const (
	PatientStatusActive   PatientStatus = "ACTIVE"
	PatientStatusInactive PatientStatus = "INACTIVE"
)

// Sex codes as written on the national ID card.
const (
	SexMale   = "L"
	SexFemale = "P"
)

// BPJS participant statuses produced by eligibility validation.
const (
	BPJSStatusActive   = "AKTIF"
	BPJSStatusInactive = "TIDAK AKTIF"
)

// Patient is a registry entry. NIK and the BPJS number are stored as
// entered; neither is checked beyond presence.
type Patient struct {
	Base            `yaml:",inline"`
	NIK             string        `json:"nik" db:"nik" yaml:"nik"`
	BPJSNumber      string        `json:"no_bpjs" db:"no_bpjs" yaml:"no_bpjs"`
	Name            string        `json:"nama" db:"nama" yaml:"nama"`
	BirthDate       Date          `json:"tanggal_lahir" db:"tanggal_lahir" yaml:"tanggal_lahir"`
	Sex             string        `json:"jenis_kelamin" db:"jenis_kelamin" yaml:"jenis_kelamin"`
	Address         string        `json:"alamat" db:"alamat" yaml:"alamat"`
	Phone           string        `json:"telepon" db:"telepon" yaml:"telepon"`
	Status          PatientStatus `json:"status" db:"status" yaml:"status"`
	BPJSStatus      string        `json:"status_bpjs" db:"status_bpjs" yaml:"status_bpjs"`
	BPJSValidatedAt *time.Time    `json:"waktu_validasi_bpjs,omitempty" db:"waktu_validasi_bpjs" yaml:"waktu_validasi_bpjs"`
	FHIRPatientID   *string       `json:"id_fhir_patient,omitempty" db:"id_fhir_patient" yaml:"id_fhir_patient"`
}

// Clone returns a deep copy.
func (p *Patient) Clone() *Patient {
	out := *p
	if p.BPJSValidatedAt != nil {
		t := *p.BPJSValidatedAt
		out.BPJSValidatedAt = &t
	}
	if p.FHIRPatientID != nil {
		out.FHIRPatientID = StringPtr(*p.FHIRPatientID)
	}
	return &out
}

type CreatePatientRequest struct {
	NIK        string        `json:"nik" binding:"required,max=32"`
	BPJSNumber string        `json:"no_bpjs" binding:"max=32"`
	Name       string        `json:"nama" binding:"required,max=200"`
	BirthDate  Date          `json:"tanggal_lahir" binding:"required"`
	Sex        string        `json:"jenis_kelamin" binding:"required,sex"`
	Address    string        `json:"alamat"`
	Phone      string        `json:"telepon" binding:"max=32"`
	Status     PatientStatus `json:"status" binding:"omitempty,patient_status"`
}

// UpdatePatientRequest carries only the fields to change. A non-zero
// Revision must match the stored revision.
type UpdatePatientRequest struct {
	NIK        *string        `json:"nik" binding:"omitempty,min=1,max=32"`
	BPJSNumber *string        `json:"no_bpjs" binding:"omitempty,max=32"`
	Name       *string        `json:"nama" binding:"omitempty,min=1,max=200"`
	BirthDate  *Date          `json:"tanggal_lahir"`
	Sex        *string        `json:"jenis_kelamin" binding:"omitempty,sex"`
	Address    *string        `json:"alamat"`
	Phone      *string        `json:"telepon" binding:"omitempty,max=32"`
	Status     *PatientStatus `json:"status" binding:"omitempty,patient_status"`
	Revision   int64          `json:"revision"`
}

// Apply merges the present fields of req into p. Identifiers and the name
// are trimmed the same way as on create.
func (p *Patient) Apply(req *UpdatePatientRequest) {
	if req.NIK != nil {
		p.NIK = strings.TrimSpace(*req.NIK)
	}
	if req.BPJSNumber != nil {
		p.BPJSNumber = strings.TrimSpace(*req.BPJSNumber)
	}
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.BirthDate != nil {
		p.BirthDate = *req.BirthDate
	}
	if req.Sex != nil {
		p.Sex = *req.Sex
	}
	if req.Address != nil {
		p.Address = *req.Address
	}
	if req.Phone != nil {
		p.Phone = *req.Phone
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
}
