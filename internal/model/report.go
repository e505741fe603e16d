package model

type DashboardStats struct {
	TotalPatients        int `json:"totalPatients"`
	TotalEncountersToday int `json:"totalEncountersToday"`
	TotalLabOrders       int `json:"totalLabOrders"`
	BPJSActiveCount      int `json:"bpjsActiveCount"`
	// BPJSCoverage is the rounded percentage of patients with an active BPJS status.
	BPJSCoverage int `json:"bpjsCoverage"`
}

type PoliCount struct {
	Poli  string `json:"poli"`
	Count int    `json:"count"`
}

type TopDiagnosis struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Count       int    `json:"count"`
}

// ReportRow is one visit line of the visit report.
type ReportRow struct {
	Date          string `json:"tanggal"`
	PatientName   string `json:"nama_pasien"`
	Poli          string `json:"poli"`
	MainDiagnosis string `json:"diagnosa_utama"`
	ICD10Code     string `json:"kode_icd10,omitempty"`
}

// ReportFilter selects the visits for a report. Dates are inclusive YYYY-MM-DD.
type ReportFilter struct {
	StartDate string `form:"start" binding:"required,isodate"`
	EndDate   string `form:"end" binding:"required,isodate"`
	Poli      string `form:"poli"`
}

// ReportMeta is printed on exported reports.
type ReportMeta struct {
	Facility  string
	StartDate string
	EndDate   string
	Poli      string
	PrintedAt string
	PrintedBy string
}
