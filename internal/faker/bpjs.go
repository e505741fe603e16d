package faker

import (
	"fmt"

	"github.com/puskesmas-merdeka/simpus-api/internal/model"
)

const (
	ErrCardNumberRequired = InputError("Nomor BPJS wajib diisi")
	ErrSEPIncomplete      = InputError("Data tidak lengkap untuk pembuatan SEP")
	ErrUnknownAction      = InputError("Action tidak valid. Gunakan ?action=validate atau ?action=create-sep")

	MessageParticipantActive   = "Peserta BPJS aktif"
	MessageParticipantInactive = "Peserta BPJS tidak aktif"
	MessageSEPCreated          = "SEP berhasil dibuat"

	// FacilityCode is the provider code of the clinic issuing SEPs.
	FacilityCode = "F001"
	sepPrefix    = "0301R001"

	// activeThreshold gives an 80% chance of an active participant.
	activeThreshold = 0.2
)

// BPJS mocks the insurer's eligibility and SEP endpoints.
type BPJS struct {
	src Source
}

func NewBPJS(src Source) *BPJS {
	return &BPJS{src: src}
}

// Validate fabricates a participant for cardNumber. Whether the participant
// is active is decided by the random source, not by the input.
func (b *BPJS) Validate(cardNumber string) (*model.BPJSParticipant, string, error) {
	if cardNumber == "" {
		return nil, "", ErrCardNumberRequired
	}

	active := b.src.Float64() > activeThreshold

	participant := &model.BPJSParticipant{
		CardNumber: cardNumber,
		Name:       "Pasien BPJS " + prefix(cardNumber, 4),
		NIK:        "320" + prefix(cardNumber, 13),
		BirthDate:  "1990-01-01",
		Status:     model.CodeLabel{Code: "0", Label: model.BPJSStatusInactive},
		Pisa:       "Faskes I Jakarta",
		Provider:   model.Provider{Code: FacilityCode, Name: "PUSKESMAS MERDEKA"},
		Class:      model.CodeLabel{Code: "3", Label: "KELAS III"},
		Participant: model.CodeLabel{
			Code:  "PBI",
			Label: "PENERIMA BANTUAN IURAN",
		},
	}
	message := MessageParticipantInactive
	if active {
		participant.Status = model.CodeLabel{Code: "1", Label: model.BPJSStatusActive}
		message = MessageParticipantActive
	}
	return participant, message, nil
}

// CreateSEP issues a SEP. Only the card number and date are required; the
// rest falls back to outpatient defaults.
func (b *BPJS) CreateSEP(req *model.SEPRequest) (*model.SEP, error) {
	if req == nil || req.CardNumber == "" || req.Date == "" {
		return nil, ErrSEPIncomplete
	}

	sep := &model.SEP{
		Number:     fmt.Sprintf("%s%d%d", sepPrefix, b.src.Now().UnixMilli(), b.src.Intn(10000)),
		Date:       req.Date,
		CardNumber: req.CardNumber,
		Participant: model.SEPParticipant{
			Name:          orDefault(req.PatientName, "Pasien BPJS"),
			MedicalRecord: req.MedicalRecord,
			BirthDate:     orDefault(req.BirthDate, "1990-01-01"),
		},
		Diagnosis:   orDefault(req.DiagnosisCode, "Z00.0"),
		Poli:        orDefault(req.Poli, "Umum"),
		ServiceUnit: FacilityCode,
		ServiceType: "2", // rawat jalan
		Note:        req.Note,
	}
	return sep, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
