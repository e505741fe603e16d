// Package report aggregates clinic records into dashboard figures and visit
// reports, and renders the reports as PDF, XLSX or CSV.
package report

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/puskesmas-merdeka/simpus-api/internal/dateutil"
	"github.com/puskesmas-merdeka/simpus-api/internal/model"
)

const (
	DefaultTopDiagnoses = 10

	UnknownPatient = "Unknown"
	NoDiagnosis    = "Tidak ada diagnosa"
)

// DashboardStats counts the registry. today is a YYYY-MM-DD date in the
// facility timezone.
func DashboardStats(patients []*model.Patient, encounters []*model.Encounter, labOrders []*model.LabOrder, today string) model.DashboardStats {
	stats := model.DashboardStats{
		TotalPatients:  len(patients),
		TotalLabOrders: len(labOrders),
	}
	for _, e := range encounters {
		if dateutil.DateKey(e.VisitedAt) == today {
			stats.TotalEncountersToday++
		}
	}
	for _, p := range patients {
		if p.BPJSStatus == model.BPJSStatusActive {
			stats.BPJSActiveCount++
		}
	}
	stats.BPJSCoverage = BPJSCoverage(stats)
	return stats
}

// BPJSCoverage is the rounded percentage of patients with an active BPJS
// status, or 0 without patients.
func BPJSCoverage(stats model.DashboardStats) int {
	if stats.TotalPatients == 0 {
		return 0
	}
	return int(math.Round(float64(stats.BPJSActiveCount) / float64(stats.TotalPatients) * 100))
}

// EncountersByPoli counts visits per poli in first-seen order.
func EncountersByPoli(encounters []*model.Encounter) []model.PoliCount {
	index := make(map[string]int)
	out := make([]model.PoliCount, 0)
	for _, e := range encounters {
		i, ok := index[e.Poli]
		if !ok {
			i = len(out)
			index[e.Poli] = i
			out = append(out, model.PoliCount{Poli: e.Poli})
		}
		out[i].Count++
	}
	return out
}

// TopDiagnoses counts diagnoses by ICD-10 code, most frequent first. Ties
// keep first-seen order. The description is the first name seen for a code.
func TopDiagnoses(diagnoses []*model.Diagnosis, limit int) []model.TopDiagnosis {
	if limit <= 0 {
		limit = DefaultTopDiagnoses
	}

	index := make(map[string]int)
	out := make([]model.TopDiagnosis, 0)
	for _, d := range diagnoses {
		i, ok := index[d.Code]
		if !ok {
			i = len(out)
			index[d.Code] = i
			out = append(out, model.TopDiagnosis{Code: d.Code, Description: d.Name})
		}
		out[i].Count++
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// EncountersByDateRange keeps visits whose date lies in [start, end].
func EncountersByDateRange(encounters []*model.Encounter, start, end string) []*model.Encounter {
	out := make([]*model.Encounter, 0)
	for _, e := range encounters {
		if dateutil.InRange(e.VisitedAt, start, end) {
			out = append(out, e)
		}
	}
	return out
}

// BuildReportRows lists the visits in [start, end], earliest first, with the
// patient name and the principal diagnosis. An empty poli keeps every poli.
func BuildReportRows(encounters []*model.Encounter, patients []*model.Patient, diagnoses []*model.Diagnosis, start, end, poli string) []model.ReportRow {
	names := make(map[uuid.UUID]string, len(patients))
	for _, p := range patients {
		names[p.ID] = p.Name
	}
	principal := make(map[uuid.UUID]*model.Diagnosis)
	for _, d := range diagnoses {
		if d.Role != model.DiagnosisPrincipal {
			continue
		}
		if _, ok := principal[d.EncounterID]; !ok {
			principal[d.EncounterID] = d
		}
	}

	selected := EncountersByDateRange(encounters, start, end)
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].VisitedAt.Before(selected[j].VisitedAt)
	})

	rows := make([]model.ReportRow, 0, len(selected))
	for _, e := range selected {
		if poli != "" && e.Poli != poli {
			continue
		}
		row := model.ReportRow{
			Date:          dateutil.DateKey(e.VisitedAt),
			PatientName:   UnknownPatient,
			Poli:          e.Poli,
			MainDiagnosis: NoDiagnosis,
		}
		if name, ok := names[e.PatientID]; ok {
			row.PatientName = name
		}
		if d, ok := principal[e.ID]; ok {
			row.MainDiagnosis = d.Name
			row.ICD10Code = d.Code
		}
		rows = append(rows, row)
	}
	return rows
}

// PoliList returns the distinct poli names, sorted.
func PoliList(encounters []*model.Encounter) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, e := range encounters {
		if _, ok := seen[e.Poli]; ok {
			continue
		}
		seen[e.Poli] = struct{}{}
		out = append(out, e.Poli)
	}
	sort.Strings(out)
	return out
}
