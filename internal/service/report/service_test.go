package report

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puskesmas-merdeka/simpus-api/internal/dateutil"
	"github.com/puskesmas-merdeka/simpus-api/internal/model"
	"github.com/puskesmas-merdeka/simpus-api/internal/report"
	"github.com/puskesmas-merdeka/simpus-api/internal/repository/memory"
	"github.com/puskesmas-merdeka/simpus-api/internal/service/audit"
	"github.com/puskesmas-merdeka/simpus-api/pkg/auth"
	apperrors "github.com/puskesmas-merdeka/simpus-api/pkg/errors"
)

func newTestService(t *testing.T) (*Service, *audit.Service) {
	t.Helper()
	s, err := memory.NewSeeded(memory.WithLatency(0))
	require.NoError(t, err)
	store := s.Repositories()
	auditor := audit.NewService(store.AuditLogs, nil, "", nil)
	svc := NewService(store, auditor, "")
	svc.now = func() time.Time { return time.Date(2024, 1, 15, 10, 0, 0, 0, dateutil.Location()) }
	return svc, auditor
}

func TestDashboard(t *testing.T) {
	svc, _ := newTestService(t)

	stats, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, stats.TotalPatients)
	assert.Equal(t, 2, stats.TotalEncountersToday)
	assert.Equal(t, 3, stats.TotalLabOrders)
	assert.Equal(t, 3, stats.BPJSActiveCount)
	assert.Equal(t, 60, stats.BPJSCoverage)
}

func TestAggregates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	byPoli, err := svc.EncountersByPoli(ctx)
	require.NoError(t, err)
	total := 0
	for _, p := range byPoli {
		total += p.Count
	}
	assert.Equal(t, 6, total)

	top, err := svc.TopDiagnoses(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "J06.9", top[0].Code)
	assert.Equal(t, 2, top[0].Count)

	polis, err := svc.PoliList(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Gigi", "KIA", "Umum"}, polis)
}

func TestRows(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rows, err := svc.Rows(ctx, &model.ReportFilter{StartDate: "2024-01-15", EndDate: "2024-01-16"})
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Budi Santoso", rows[0].PatientName)
	assert.Equal(t, "J06.9", rows[0].ICD10Code)

	rows, err = svc.Rows(ctx, &model.ReportFilter{StartDate: "2024-01-01", EndDate: "2024-01-31", Poli: "Gigi"})
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = svc.Rows(ctx, &model.ReportFilter{StartDate: "2024-02-01", EndDate: "2024-01-01"})
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
}

func TestExportCSV(t *testing.T) {
	svc, auditor := newTestService(t)
	ctx := auth.WithUser(context.Background(), model.NewSessionUser("admin@puskesmas.id", model.RoleAdmin))

	out, err := svc.Export(ctx, &model.ReportFilter{StartDate: "2024-01-15", EndDate: "2024-01-31"}, report.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "Laporan_2024-01-15_2024-01-31.csv", out.Filename)
	assert.True(t, strings.HasPrefix(string(out.Body), "Tanggal,Nama Pasien,Poli,Diagnosa Utama\n"))
	assert.Equal(t, 7, strings.Count(string(out.Body), "\n"))

	logs, err := auditor.List(context.Background(), 0)
	require.NoError(t, err)
	var exported *model.AuditLog
	for _, l := range logs {
		if l.Action == model.AuditActionExport {
			exported = l
		}
	}
	require.NotNil(t, exported)
	assert.Equal(t, "user-admin", exported.UserID)
	assert.Equal(t, out.Filename, exported.EntityID)
}
