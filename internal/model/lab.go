package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LabOrderStatus string

const (
	LabOrderPending    LabOrderStatus = "PENDING"
	LabOrderInProgress LabOrderStatus = "IN_PROGRESS"
	LabOrderCompleted  LabOrderStatus = "COMPLETED"
	LabOrderCancelled  LabOrderStatus = "CANCELLED"
)

// Interpretations derived from a numeric measurement.
const (
	InterpretationNormal = "NORMAL"
	InterpretationHigh   = "TINGGI"
	InterpretationLow    = "RENDAH"
)

type LabOrder struct {
	Base        `yaml:",inline"`
	EncounterID uuid.UUID      `json:"encounter_id" db:"encounter_id" yaml:"encounter_id"`
	TestName    string         `json:"jenis_pemeriksaan" db:"jenis_pemeriksaan" yaml:"jenis_pemeriksaan"`
	Status      LabOrderStatus `json:"status" db:"status" yaml:"status"`
	Note        string         `json:"catatan" db:"catatan" yaml:"catatan"`
}

type CreateLabOrderRequest struct {
	EncounterID uuid.UUID `json:"encounter_id" binding:"required"`
	TestName    string    `json:"jenis_pemeriksaan" binding:"required,max=200"`
	Note        string    `json:"catatan"`
}

type UpdateLabOrderStatusRequest struct {
	Status   LabOrderStatus `json:"status" binding:"required,lab_status"`
	Revision int64          `json:"revision"`
}

// LabResult keeps the free-text fields every result has. Results captured
// from an analyser also carry a numeric Measurement; the two are stored side
// by side and never reconciled.
type LabResult struct {
	ID             uuid.UUID    `json:"id" db:"id" yaml:"id"`
	LabOrderID     uuid.UUID    `json:"lab_order_id" db:"lab_order_id" yaml:"lab_order_id"`
	Parameter      string       `json:"parameter" db:"parameter" yaml:"parameter"`
	Value          string       `json:"nilai" db:"nilai" yaml:"nilai"`
	Unit           string       `json:"satuan" db:"satuan" yaml:"satuan"`
	ReferenceRange string       `json:"nilai_rujukan" db:"nilai_rujukan" yaml:"nilai_rujukan"`
	Interpretation string       `json:"interpretasi" db:"interpretasi" yaml:"interpretasi"`
	Measurement    *Measurement `json:"measurement,omitempty" db:"-" yaml:"measurement"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at" yaml:"created_at"`
}

func (r *LabResult) Clone() *LabResult {
	out := *r
	if r.Measurement != nil {
		m := r.Measurement.Clone()
		out.Measurement = &m
	}
	return &out
}

type Measurement struct {
	TestCode string           `json:"test_code" yaml:"test_code"`
	Value    decimal.Decimal  `json:"nilai" yaml:"nilai"`
	Unit     string           `json:"unit" yaml:"unit"`
	Min      *decimal.Decimal `json:"rujukan_min,omitempty" yaml:"rujukan_min"`
	Max      *decimal.Decimal `json:"rujukan_max,omitempty" yaml:"rujukan_max"`
}

func (m Measurement) Clone() Measurement {
	out := m
	if m.Min != nil {
		v := *m.Min
		out.Min = &v
	}
	if m.Max != nil {
		v := *m.Max
		out.Max = &v
	}
	return out
}

// Interpret compares the value with the reference bounds that are present.
func (m Measurement) Interpret() string {
	if m.Min != nil && m.Value.LessThan(*m.Min) {
		return InterpretationLow
	}
	if m.Max != nil && m.Value.GreaterThan(*m.Max) {
		return InterpretationHigh
	}
	return InterpretationNormal
}

// ReferenceRange renders the bounds as "min - max".
func (m Measurement) ReferenceRange() string {
	switch {
	case m.Min != nil && m.Max != nil:
		return m.Min.String() + " - " + m.Max.String()
	case m.Min != nil:
		return ">= " + m.Min.String()
	case m.Max != nil:
		return "<= " + m.Max.String()
	}
	return ""
}

type CreateLabResultRequest struct {
	Parameter      string       `json:"parameter" binding:"required,max=200"`
	Value          string       `json:"nilai"`
	Unit           string       `json:"satuan"`
	ReferenceRange string       `json:"nilai_rujukan"`
	Interpretation string       `json:"interpretasi"`
	Measurement    *Measurement `json:"measurement"`
}
