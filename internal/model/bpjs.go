package model

// CodeLabel is the {kode, keterangan} pair used throughout the BPJS payloads.
type CodeLabel struct {
	Code  string `json:"kode"`
	Label string `json:"keterangan"`
}

type Provider struct {
	Code string `json:"kdProvider"`
	Name string `json:"nmProvider"`
}

// BPJSParticipant is the beneficiary record returned by eligibility validation.
type BPJSParticipant struct {
	CardNumber  string    `json:"noKartu"`
	Name        string    `json:"nama"`
	NIK         string    `json:"nik"`
	BirthDate   string    `json:"tglLahir"`
	Status      CodeLabel `json:"statusPeserta"`
	Pisa        string    `json:"pisa"`
	Provider    Provider  `json:"provUmum"`
	Class       CodeLabel `json:"hakKelas"`
	Participant CodeLabel `json:"jenisPeserta"`
}

// Active reports whether the participant status code is "1".
func (p *BPJSParticipant) Active() bool {
	return p.Status.Code == "1"
}

// SEPRequest is the create-sep input. Only CardNumber and Date are required.
type SEPRequest struct {
	CardNumber    string `json:"noBpjs"`
	Date          string `json:"tglSep"`
	PatientName   string `json:"namaPasien,omitempty"`
	MedicalRecord string `json:"noMr,omitempty"`
	BirthDate     string `json:"tglLahir,omitempty"`
	DiagnosisCode string `json:"kodeDiagnosa,omitempty"`
	Poli          string `json:"poli,omitempty"`
	Note          string `json:"catatan,omitempty"`
}

type SEPParticipant struct {
	Name          string `json:"nama"`
	MedicalRecord string `json:"noMr"`
	BirthDate     string `json:"tglLahir"`
}

// SEP is an eligibility letter (Surat Eligibilitas Peserta).
type SEP struct {
	Number      string         `json:"noSep"`
	Date        string         `json:"tglSep"`
	CardNumber  string         `json:"noKartu"`
	Participant SEPParticipant `json:"peserta"`
	Diagnosis   string         `json:"diagnosa"`
	Poli        string         `json:"poli"`
	ServiceUnit string         `json:"ppkPelayanan"`
	ServiceType string         `json:"jnsPelayanan"`
	Note        string         `json:"catatan"`
}

// BPJSValidation is the outcome of validating a patient's BPJS number.
type BPJSValidation struct {
	Patient     *Patient         `json:"patient"`
	Participant *BPJSParticipant `json:"participant"`
	Message     string           `json:"message"`
}

// SEPResult is the outcome of issuing a SEP for an encounter.
type SEPResult struct {
	Encounter *Encounter `json:"encounter"`
	SEP       *SEP       `json:"sep"`
	Message   string     `json:"message"`
}

// CreateSEPRequest carries the optional extras for an encounter SEP.
type CreateSEPRequest struct {
	Note string `json:"catatan"`
}
