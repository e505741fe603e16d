package memory

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/puskesmas-merdeka/simpus-api/internal/model"
)

//go:embed seed.yml
var seedYAML []byte

// Fixtures is the seed data set, one list per entity.
type Fixtures struct {
	Patients   []*model.Patient   `yaml:"patients"`
	Encounters []*model.Encounter `yaml:"encounters"`
	Diagnoses  []*model.Diagnosis `yaml:"diagnoses"`
	LabOrders  []*model.LabOrder  `yaml:"lab_orders"`
	LabResults []*model.LabResult `yaml:"lab_results"`
	ICD10Codes []*model.ICD10Code `yaml:"icd10_codes"`
	AuditLogs  []*model.AuditLog  `yaml:"audit_logs"`
	SyncJobs   []*model.SyncJob   `yaml:"sync_jobs"`
}

func LoadFixtures(data []byte) (*Fixtures, error) {
	var fx Fixtures
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("failed to decode fixtures: %w", err)
	}
	return &fx, nil
}

// Seed replaces the store contents with copies of fx. Records without a
// revision start at 1.
func (s *Store) Seed(fx *Fixtures) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.patients = s.patients[:0]
	for _, p := range fx.Patients {
		c := p.Clone()
		if c.Revision == 0 {
			c.Revision = 1
		}
		s.patients = append(s.patients, c)
	}

	s.encounters = s.encounters[:0]
	for _, e := range fx.Encounters {
		c := e.Clone()
		if c.Revision == 0 {
			c.Revision = 1
		}
		s.encounters = append(s.encounters, c)
	}

	s.diagnoses = s.diagnoses[:0]
	for _, d := range fx.Diagnoses {
		c := *d
		s.diagnoses = append(s.diagnoses, &c)
	}

	s.labOrders = s.labOrders[:0]
	for _, o := range fx.LabOrders {
		c := *o
		if c.Revision == 0 {
			c.Revision = 1
		}
		s.labOrders = append(s.labOrders, &c)
	}

	s.labResults = s.labResults[:0]
	for _, r := range fx.LabResults {
		s.labResults = append(s.labResults, r.Clone())
	}

	s.icd10 = s.icd10[:0]
	for _, c := range fx.ICD10Codes {
		code := *c
		s.icd10 = append(s.icd10, &code)
	}

	s.auditLogs = s.auditLogs[:0]
	for _, a := range fx.AuditLogs {
		s.auditLogs = append(s.auditLogs, a.Clone())
	}

	s.syncJobs = s.syncJobs[:0]
	for _, j := range fx.SyncJobs {
		s.syncJobs = append(s.syncJobs, j.Clone())
	}
}

// DefaultFixtures decodes the embedded seed set.
func DefaultFixtures() (*Fixtures, error) {
	return LoadFixtures(seedYAML)
}
