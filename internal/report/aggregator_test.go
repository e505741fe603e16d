package report

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/puskesmas-merdeka/simpus-api/internal/dateutil"
	"github.com/puskesmas-merdeka/simpus-api/internal/model"
)

func at(day, hour int) time.Time {
	return time.Date(2024, time.January, day, hour, 0, 0, 0, dateutil.Location())
}

func visit(poli string, when time.Time, patient uuid.UUID) *model.Encounter {
	e := &model.Encounter{PatientID: patient, Poli: poli, VisitedAt: when}
	e.ID = uuid.New()
	return e
}

func TestEncountersByPoliFirstSeenOrder(t *testing.T) {
	encounters := []*model.Encounter{
		visit("A", at(1, 8), uuid.Nil),
		visit("B", at(1, 9), uuid.Nil),
		visit("A", at(2, 8), uuid.Nil),
		visit("A", at(3, 8), uuid.Nil),
	}

	assert.Equal(t, []model.PoliCount{{Poli: "A", Count: 3}, {Poli: "B", Count: 1}}, EncountersByPoli(encounters))
	assert.Empty(t, EncountersByPoli(nil))
}

func TestTopDiagnoses(t *testing.T) {
	diagnoses := []*model.Diagnosis{
		{Code: "X", Name: "Ex"},
		{Code: "X", Name: "Ex again"},
		{Code: "Y", Name: "Why"},
	}

	assert.Equal(t, []model.TopDiagnosis{{Code: "X", Description: "Ex", Count: 2}}, TopDiagnoses(diagnoses, 1))

	ties := []*model.Diagnosis{{Code: "B"}, {Code: "A"}, {Code: "C"}, {Code: "C"}}
	top := TopDiagnoses(ties, 0)
	assert.Equal(t, []string{"C", "B", "A"}, []string{top[0].Code, top[1].Code, top[2].Code})
}

func TestDashboardStats(t *testing.T) {
	patients := []*model.Patient{
		{BPJSStatus: model.BPJSStatusActive},
		{BPJSStatus: model.BPJSStatusInactive},
		{BPJSStatus: model.BPJSStatusActive},
	}
	encounters := []*model.Encounter{
		visit("Umum", at(15, 8), uuid.Nil),
		// 23:30 UTC on the 14th is already the 15th in Jakarta
		visit("Umum", time.Date(2024, 1, 14, 23, 30, 0, 0, time.UTC), uuid.Nil),
		visit("KIA", at(16, 8), uuid.Nil),
	}
	orders := []*model.LabOrder{{}, {}}

	stats := DashboardStats(patients, encounters, orders, "2024-01-15")
	assert.Equal(t, 3, stats.TotalPatients)
	assert.Equal(t, 2, stats.TotalEncountersToday)
	assert.Equal(t, 2, stats.TotalLabOrders)
	assert.Equal(t, 2, stats.BPJSActiveCount)
	assert.Equal(t, 67, stats.BPJSCoverage)

	assert.Equal(t, 0, BPJSCoverage(model.DashboardStats{}))
}

func TestEncountersByDateRangeIsInclusive(t *testing.T) {
	encounters := []*model.Encounter{
		visit("A", at(14, 23), uuid.Nil),
		visit("A", at(15, 0), uuid.Nil),
		visit("A", at(20, 23), uuid.Nil),
		visit("A", at(21, 0), uuid.Nil),
	}

	assert.Len(t, EncountersByDateRange(encounters, "2024-01-15", "2024-01-20"), 2)
}

func TestBuildReportRows(t *testing.T) {
	budi := uuid.New()
	patients := []*model.Patient{{Name: "Budi"}}
	patients[0].ID = budi

	late := visit("Umum", at(16, 10), budi)
	early := visit("KIA", at(15, 9), uuid.New())
	outside := visit("Umum", at(25, 9), budi)
	diagnoses := []*model.Diagnosis{
		{EncounterID: late.ID, Code: "R50.9", Name: "Fever", Role: model.DiagnosisSecondary},
		{EncounterID: late.ID, Code: "J06.9", Name: "ISPA", Role: model.DiagnosisPrincipal},
	}

	rows := BuildReportRows([]*model.Encounter{late, outside, early}, patients, diagnoses, "2024-01-15", "2024-01-20", "")
	assert.Equal(t, []model.ReportRow{
		{Date: "2024-01-15", PatientName: UnknownPatient, Poli: "KIA", MainDiagnosis: NoDiagnosis},
		{Date: "2024-01-16", PatientName: "Budi", Poli: "Umum", MainDiagnosis: "ISPA", ICD10Code: "J06.9"},
	}, rows)

	filtered := BuildReportRows([]*model.Encounter{late, early}, patients, diagnoses, "2024-01-01", "2024-01-31", "KIA")
	assert.Len(t, filtered, 1)
	assert.Equal(t, "KIA", filtered[0].Poli)
}

func TestPoliList(t *testing.T) {
	encounters := []*model.Encounter{
		visit("Umum", at(1, 8), uuid.Nil),
		visit("Gigi", at(1, 8), uuid.Nil),
		visit("Umum", at(1, 8), uuid.Nil),
		visit("KIA", at(1, 8), uuid.Nil),
	}

	assert.Equal(t, []string{"Gigi", "KIA", "Umum"}, PoliList(encounters))
}
