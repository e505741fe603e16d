package faker

import (
	"fmt"

	"github.com/puskesmas-merdeka/simpus-api/internal/model"
)

const (
	ErrPatientIncomplete   = InputError("Data pasien tidak lengkap")
	ErrEncounterIncomplete = InputError("Data kunjungan tidak lengkap")
	ErrNIKRequired         = InputError("NIK wajib diisi")
	ErrUnknownResource     = InputError("Resource tidak valid. Gunakan ?resource=Patient atau ?resource=Encounter")

	MessagePatientSynced   = "Data pasien berhasil disinkronkan ke SATUSEHAT"
	MessageEncounterSynced = "Data kunjungan berhasil disinkronkan ke SATUSEHAT"
)

// SatuSehat mocks the national FHIR gateway. Every POST mints a new id, so
// posting the same record twice yields two resources.
type SatuSehat struct {
	src Source
}

func NewSatuSehat(src Source) *SatuSehat {
	return &SatuSehat{src: src}
}

func (s *SatuSehat) CreatePatient(in *model.FHIRPatientInput) (*model.FHIRPatient, error) {
	if in == nil || in.NIK == "" || in.Name == "" {
		return nil, ErrPatientIncomplete
	}

	gender := "female"
	if in.Sex == model.SexMale || in.Sex == "Laki-laki" {
		gender = "male"
	}

	patient := s.patient(in.NIK, in.Name, gender, in.BirthDate)
	if in.Address != "" {
		patient.Address = append(patient.Address, model.FHIRAddress{Use: "home", Text: in.Address})
	}
	if in.Phone != "" {
		patient.Telecom = append(patient.Telecom, model.FHIRContactPoint{System: "phone", Value: in.Phone, Use: "mobile"})
	}
	return patient, nil
}

func (s *SatuSehat) CreateEncounter(in *model.FHIREncounterInput) (*model.FHIREncounter, error) {
	if in == nil || in.PatientID == "" || in.Date == "" {
		return nil, ErrEncounterIncomplete
	}

	encounter := &model.FHIREncounter{
		ResourceType: "Encounter",
		ID:           fmt.Sprintf("E%d%d", s.src.Now().UnixMilli(), s.src.Intn(10000)),
		Status:       "finished",
		Class: model.FHIRCoding{
			System:  model.FHIRSystemActCode,
			Code:    "AMB",
			Display: "ambulatory",
		},
		Subject: model.FHIRReference{
			Reference: "Patient/" + in.FHIRPatientID,
			Display:   orDefault(in.PatientName, "Patient"),
		},
		Period: model.FHIRPeriod{Start: in.Date, End: in.Date},
		ServiceType: model.FHIRCodeableConcept{
			Coding: []model.FHIRCoding{{
				System:  model.FHIRSystemServiceType,
				Code:    orDefault(in.Poli, "general"),
				Display: orDefault(in.Poli, "General Practice"),
			}},
		},
		ReasonCode: []model.FHIRCodeableConcept{},
	}
	if in.Diagnosis != "" {
		encounter.ReasonCode = append(encounter.ReasonCode, model.FHIRCodeableConcept{
			Coding: []model.FHIRCoding{{
				System:  model.FHIRSystemICD10,
				Code:    in.ICD10Code,
				Display: in.Diagnosis,
			}},
		})
	}
	return encounter, nil
}

// SearchPatient answers an identifier search with one fabricated patient.
func (s *SatuSehat) SearchPatient(nik string) (*model.FHIRBundle, error) {
	if nik == "" {
		return nil, ErrNIKRequired
	}

	patient := s.summary(nik, "Pasien "+prefix(nik, 4), "unknown", "1990-01-01")
	return &model.FHIRBundle{
		ResourceType: "Bundle",
		Type:         "searchset",
		Total:        1,
		Entry:        []model.FHIRBundleEntry{{Resource: patient}},
	}, nil
}

func (s *SatuSehat) patient(nik, name, gender, birthDate string) *model.FHIRPatient {
	return &model.FHIRPatient{
		FHIRPatientSummary: *s.summary(nik, name, gender, birthDate),
		Address:            []model.FHIRAddress{},
		Telecom:            []model.FHIRContactPoint{},
	}
}

func (s *SatuSehat) summary(nik, name, gender, birthDate string) *model.FHIRPatientSummary {
	return &model.FHIRPatientSummary{
		ResourceType: "Patient",
		ID:           fmt.Sprintf("P%s%d", nik, s.src.Now().UnixMilli()),
		Identifier: []model.FHIRIdentifier{{
			Use:    "official",
			System: model.FHIRSystemNIK,
			Value:  nik,
		}},
		Name:      []model.FHIRHumanName{{Use: "official", Text: name}},
		Gender:    gender,
		BirthDate: birthDate,
	}
}
