package report

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/puskesmas-merdeka/simpus-api/internal/dateutil"
	"github.com/puskesmas-merdeka/simpus-api/internal/model"
	"github.com/puskesmas-merdeka/simpus-api/internal/report"
	"github.com/puskesmas-merdeka/simpus-api/internal/repository"
	"github.com/puskesmas-merdeka/simpus-api/internal/service/audit"
	"github.com/puskesmas-merdeka/simpus-api/pkg/auth"
	apperrors "github.com/puskesmas-merdeka/simpus-api/pkg/errors"
)

// Export is a rendered report file.
type Export struct {
	Filename    string
	ContentType string
	Body        []byte
}

type Service struct {
	patientRepo   repository.PatientRepository
	encounterRepo repository.EncounterRepository
	diagnosisRepo repository.DiagnosisRepository
	labOrderRepo  repository.LabOrderRepository
	auditor       audit.Logger
	facility      string
	now           func() time.Time
}

func NewService(store *repository.Store, auditor audit.Logger, facility string) *Service {
	if facility == "" {
		facility = report.DefaultFacility
	}
	return &Service{
		patientRepo:   store.Patients,
		encounterRepo: store.Encounters,
		diagnosisRepo: store.Diagnoses,
		labOrderRepo:  store.LabOrders,
		auditor:       auditor,
		facility:      facility,
		now:           time.Now,
	}
}

func (s *Service) Dashboard(ctx context.Context) (*model.DashboardStats, error) {
	patients, err := s.patientRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	encounters, err := s.encounterRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list encounters: %w", err)
	}
	orders, err := s.labOrderRepo.List(ctx, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list lab orders: %w", err)
	}

	stats := report.DashboardStats(patients, encounters, orders, dateutil.DateKey(s.now()))
	return &stats, nil
}

func (s *Service) EncountersByPoli(ctx context.Context) ([]model.PoliCount, error) {
	encounters, err := s.encounterRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list encounters: %w", err)
	}
	return report.EncountersByPoli(encounters), nil
}

func (s *Service) TopDiagnoses(ctx context.Context, limit int) ([]model.TopDiagnosis, error) {
	diagnoses, err := s.diagnosisRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list diagnoses: %w", err)
	}
	return report.TopDiagnoses(diagnoses, limit), nil
}

func (s *Service) PoliList(ctx context.Context) ([]string, error) {
	encounters, err := s.encounterRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list encounters: %w", err)
	}
	return report.PoliList(encounters), nil
}

// Rows builds the visit report for filter.
func (s *Service) Rows(ctx context.Context, filter *model.ReportFilter) ([]model.ReportRow, error) {
	if filter.StartDate > filter.EndDate {
		return nil, apperrors.NewBadRequest("start date must not be after end date", nil)
	}

	encounters, err := s.encounterRepo.List(ctx, &model.EncounterFilter{
		Poli:      filter.Poli,
		StartDate: filter.StartDate,
		EndDate:   filter.EndDate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list encounters: %w", err)
	}
	patients, err := s.patientRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	diagnoses, err := s.diagnosisRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list diagnoses: %w", err)
	}

	return report.BuildReportRows(encounters, patients, diagnoses, filter.StartDate, filter.EndDate, filter.Poli), nil
}

// Export renders the visit report, signed by the session user.
func (s *Service) Export(ctx context.Context, filter *model.ReportFilter, format report.Format) (*Export, error) {
	rows, err := s.Rows(ctx, filter)
	if err != nil {
		return nil, err
	}

	printedBy := auth.SystemActor
	if user, ok := auth.UserFrom(ctx); ok {
		printedBy = user.Name
	}
	meta := model.ReportMeta{
		Facility:  s.facility,
		StartDate: filter.StartDate,
		EndDate:   filter.EndDate,
		Poli:      filter.Poli,
		PrintedAt: dateutil.FormatDate(s.now(), dateutil.DateTime),
		PrintedBy: printedBy,
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, format, rows, meta); err != nil {
		return nil, apperrors.NewInternal(fmt.Errorf("failed to export report: %w", err))
	}

	filename := report.Filename(filter.StartDate, filter.EndDate, format)
	s.auditor.Log(ctx, model.AuditActionExport, model.AuditEntityReport, filename, model.JSONMap{
		"format": string(format),
		"start":  filter.StartDate,
		"end":    filter.EndDate,
		"poli":   filter.Poli,
		"rows":   len(rows),
	})

	return &Export{
		Filename:    filename,
		ContentType: format.ContentType(),
		Body:        buf.Bytes(),
	}, nil
}
