package faker

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puskesmas-merdeka/simpus-api/internal/model"
)

type fixedSource struct {
	f   float64
	n   int
	now time.Time
}

func (s fixedSource) Float64() float64 { return s.f }
func (s fixedSource) Intn(int) int      { return s.n }
func (s fixedSource) Now() time.Time    { return s.now }

var jan15 = time.UnixMilli(1705300000000)

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		f          float64
		wantCode   string
		wantStatus string
		wantMsg    string
	}{
		{"active", 0.9, "1", model.BPJSStatusActive, MessageParticipantActive},
		{"inactive", 0.1, "0", model.BPJSStatusInactive, MessageParticipantInactive},
		{"threshold is inactive", 0.2, "0", model.BPJSStatusInactive, MessageParticipantInactive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBPJS(fixedSource{f: tt.f})
			p, msg, err := b.Validate("0001234567890")
			require.NoError(t, err)
			assert.Equal(t, "0001234567890", p.CardNumber)
			assert.Equal(t, "Pasien BPJS 0001", p.Name)
			assert.Equal(t, "3200001234567890", p.NIK)
			assert.Equal(t, tt.wantCode, p.Status.Code)
			assert.Equal(t, tt.wantStatus, p.Status.Label)
			assert.Equal(t, tt.wantMsg, msg)
			assert.Equal(t, FacilityCode, p.Provider.Code)
		})
	}
}

func TestValidateShortCardNumber(t *testing.T) {
	p, _, err := NewBPJS(fixedSource{f: 1}).Validate("12")
	require.NoError(t, err)
	assert.Equal(t, "Pasien BPJS 12", p.Name)
	assert.Equal(t, "32012", p.NIK)
}

func TestValidateRequiresCardNumber(t *testing.T) {
	_, _, err := NewBPJS(fixedSource{}).Validate("")
	assert.Equal(t, ErrCardNumberRequired, err)
}

func TestCreateSEP(t *testing.T) {
	b := NewBPJS(fixedSource{n: 42, now: jan15})

	sep, err := b.CreateSEP(&model.SEPRequest{CardNumber: "0001234567890", Date: "2024-01-15"})
	require.NoError(t, err)
	assert.Equal(t, "0301R001170530000000042", sep.Number)
	assert.True(t, strings.HasPrefix(sep.Number, "0301R001"))
	assert.Equal(t, "Z00.0", sep.Diagnosis)
	assert.Equal(t, "Umum", sep.Poli)
	assert.Equal(t, "Pasien BPJS", sep.Participant.Name)
	assert.Equal(t, "1990-01-01", sep.Participant.BirthDate)
	assert.Equal(t, "2", sep.ServiceType)

	_, err = b.CreateSEP(&model.SEPRequest{CardNumber: "0001234567890"})
	assert.Equal(t, ErrSEPIncomplete, err)
	_, err = b.CreateSEP(nil)
	assert.Equal(t, ErrSEPIncomplete, err)
}

func TestCreatePatient(t *testing.T) {
	s := NewSatuSehat(fixedSource{now: jan15})

	p, err := s.CreatePatient(&model.FHIRPatientInput{NIK: "3201", Name: "Budi", Sex: "L", BirthDate: "1985-05-25", Phone: "0812"})
	require.NoError(t, err)
	assert.Equal(t, "P32011705300000000", p.ID)
	assert.Equal(t, "male", p.Gender)
	assert.Equal(t, model.FHIRSystemNIK, p.Identifier[0].System)
	assert.Empty(t, p.Address)
	require.Len(t, p.Telecom, 1)
	assert.Equal(t, "mobile", p.Telecom[0].Use)

	f, err := s.CreatePatient(&model.FHIRPatientInput{NIK: "3202", Name: "Siti", Sex: "P"})
	require.NoError(t, err)
	assert.Equal(t, "female", f.Gender)

	_, err = s.CreatePatient(&model.FHIRPatientInput{NIK: "3202"})
	assert.Equal(t, ErrPatientIncomplete, err)
}

func TestCreateEncounter(t *testing.T) {
	s := NewSatuSehat(fixedSource{n: 7, now: jan15})

	e, err := s.CreateEncounter(&model.FHIREncounterInput{PatientID: "p1", Date: "2024-01-15T08:30:00+07:00", FHIRPatientID: "P1"})
	require.NoError(t, err)
	assert.Equal(t, "E17053000000007", e.ID)
	assert.Equal(t, "Patient/P1", e.Subject.Reference)
	assert.Equal(t, "Patient", e.Subject.Display)
	assert.Equal(t, "general", e.ServiceType.Coding[0].Code)
	assert.Equal(t, "General Practice", e.ServiceType.Coding[0].Display)
	assert.Empty(t, e.ReasonCode)

	withDx, err := s.CreateEncounter(&model.FHIREncounterInput{PatientID: "p1", Date: "2024-01-15", Poli: "Umum", Diagnosis: "Hipertensi", ICD10Code: "I10"})
	require.NoError(t, err)
	require.Len(t, withDx.ReasonCode, 1)
	assert.Equal(t, "I10", withDx.ReasonCode[0].Coding[0].Code)

	_, err = s.CreateEncounter(&model.FHIREncounterInput{PatientID: "p1"})
	assert.Equal(t, ErrEncounterIncomplete, err)
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(fixedSource{f: 0.9, n: 1, now: jan15}, zerolog.Nop()).RegisterRoutes(r)
	return r
}

func perform(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBPJSHandler(t *testing.T) {
	r := newTestRouter()

	w := perform(r, http.MethodGet, "/bpjs-faker?action=validate&no_bpjs=0001234567890", "")
	require.Equal(t, http.StatusOK, w.Code)
	var ok Response[model.BPJSParticipant]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ok))
	assert.True(t, ok.Success)
	assert.Equal(t, MessageParticipantActive, ok.Message)
	assert.True(t, ok.Data.Active())

	w = perform(r, http.MethodGet, "/bpjs-faker?action=validate", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Nomor BPJS wajib diisi"}`, w.Body.String())

	w = perform(r, http.MethodPost, "/bpjs-faker?action=create-sep", `{"data":{"noBpjs":"0001","tglSep":"2024-01-15"}}`)
	require.Equal(t, http.StatusOK, w.Code)
	var sep Response[model.SEP]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sep))
	assert.True(t, strings.HasPrefix(sep.Data.Number, "0301R001"))
	assert.Equal(t, MessageSEPCreated, sep.Message)

	w = perform(r, http.MethodPost, "/bpjs-faker?action=create-sep", `{"data":{"noBpjs":"0001"}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(r, http.MethodGet, "/bpjs-faker?action=unknown", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Action tidak valid")
}

func TestSatuSehatHandler(t *testing.T) {
	r := newTestRouter()

	w := perform(r, http.MethodPost, "/satusehat-faker?resource=Patient", `{"data":{"nik":"3201","nama":"Budi","jenis_kelamin":"Laki-laki"}}`)
	require.Equal(t, http.StatusOK, w.Code)
	var patient Response[model.FHIRPatient]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &patient))
	assert.Equal(t, "male", patient.Data.Gender)
	assert.Equal(t, MessagePatientSynced, patient.Message)
	assert.Contains(t, w.Body.String(), `"address":[]`)

	w = perform(r, http.MethodGet, "/satusehat-faker?resource=Patient&identifier=3201012505850001", "")
	require.Equal(t, http.StatusOK, w.Code)
	var bundle Response[model.FHIRBundle]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bundle))
	assert.Equal(t, "searchset", bundle.Data.Type)
	assert.Equal(t, "Pasien 3201", bundle.Data.Entry[0].Resource.Name[0].Text)
	assert.NotContains(t, w.Body.String(), `"address"`)
	assert.NotContains(t, w.Body.String(), `"telecom"`)

	w = perform(r, http.MethodGet, "/satusehat-faker?resource=Patient", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(r, http.MethodPost, "/satusehat-faker?resource=Encounter", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Data kunjungan tidak lengkap"}`, w.Body.String())

	w = perform(r, http.MethodGet, "/satusehat-faker?resource=Observation", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(r, http.MethodOptions, "/satusehat-faker", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}
