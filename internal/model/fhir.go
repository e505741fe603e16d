package model

// Minimal FHIR R4 shapes produced by the SATUSEHAT mock.

const (
	FHIRSystemNIK         = "https://fhir.kemkes.go.id/id/nik"
	FHIRSystemActCode     = "http://terminology.hl7.org/CodeSystem/v3-ActCode"
	FHIRSystemServiceType = "http://terminology.hl7.org/CodeSystem/service-type"
	FHIRSystemICD10       = "http://hl7.org/fhir/sid/icd-10"
)

type FHIRIdentifier struct {
	Use    string `json:"use"`
	System string `json:"system"`
	Value  string `json:"value"`
}

type FHIRHumanName struct {
	Use  string `json:"use"`
	Text string `json:"text"`
}

type FHIRAddress struct {
	Use  string `json:"use"`
	Text string `json:"text"`
}

type FHIRContactPoint struct {
	System string `json:"system"`
	Value  string `json:"value"`
	Use    string `json:"use"`
}

type FHIRCoding struct {
	System  string `json:"system"`
	Code    string `json:"code"`
	Display string `json:"display"`
}

type FHIRCodeableConcept struct {
	Coding []FHIRCoding `json:"coding"`
}

type FHIRReference struct {
	Reference string `json:"reference"`
	Display   string `json:"display"`
}

type FHIRPeriod struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// FHIRPatientSummary is the patient as a search entry: no address or
// telecom keys at all.
type FHIRPatientSummary struct {
	ResourceType string           `json:"resourceType"`
	ID           string           `json:"id"`
	Identifier   []FHIRIdentifier `json:"identifier"`
	Name         []FHIRHumanName  `json:"name"`
	Gender       string           `json:"gender"`
	BirthDate    string           `json:"birthDate"`
}

// FHIRPatient is the stored resource. Address and telecom are always
// present, empty when unknown.
type FHIRPatient struct {
	FHIRPatientSummary
	Address []FHIRAddress      `json:"address"`
	Telecom []FHIRContactPoint `json:"telecom"`
}

type FHIREncounter struct {
	ResourceType string                `json:"resourceType"`
	ID           string                `json:"id"`
	Status       string                `json:"status"`
	Class        FHIRCoding            `json:"class"`
	Subject      FHIRReference         `json:"subject"`
	Period       FHIRPeriod            `json:"period"`
	ServiceType  FHIRCodeableConcept   `json:"serviceType"`
	ReasonCode   []FHIRCodeableConcept `json:"reasonCode"`
}

type FHIRBundleEntry struct {
	Resource *FHIRPatientSummary `json:"resource"`
}

type FHIRBundle struct {
	ResourceType string            `json:"resourceType"`
	Type         string            `json:"type"`
	Total        int               `json:"total"`
	Entry        []FHIRBundleEntry `json:"entry"`
}

// FHIRPatientInput is the patient payload posted to the Patient resource.
type FHIRPatientInput struct {
	NIK       string `json:"nik"`
	Name      string `json:"nama"`
	Sex       string `json:"jenis_kelamin"`
	BirthDate string `json:"tanggal_lahir"`
	Address   string `json:"alamat,omitempty"`
	Phone     string `json:"telepon,omitempty"`
}

// FHIREncounterInput is the encounter payload posted to the Encounter resource.
type FHIREncounterInput struct {
	PatientID     string `json:"patient_id"`
	Date          string `json:"tanggal"`
	FHIRPatientID string `json:"id_fhir_patient"`
	PatientName   string `json:"nama_pasien,omitempty"`
	Poli          string `json:"poli,omitempty"`
	Diagnosis     string `json:"diagnosa_utama,omitempty"`
	ICD10Code     string `json:"kode_icd10,omitempty"`
}

// FHIRPatientSync is the outcome of pushing a patient to SATUSEHAT.
type FHIRPatientSync struct {
	Patient  *Patient     `json:"patient"`
	Resource *FHIRPatient `json:"resource"`
	SyncJob  *SyncJob     `json:"sync_job"`
	Message  string       `json:"message"`
}

// FHIREncounterSync is the outcome of pushing an encounter to SATUSEHAT.
type FHIREncounterSync struct {
	Encounter *Encounter     `json:"encounter"`
	Resource  *FHIREncounter `json:"resource"`
	SyncJob   *SyncJob       `json:"sync_job"`
	Message   string         `json:"message"`
}
