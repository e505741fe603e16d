package encounter

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puskesmas-merdeka/simpus-api/internal/model"
	"github.com/puskesmas-merdeka/simpus-api/internal/repository/memory"
	"github.com/puskesmas-merdeka/simpus-api/internal/service/audit"
	apperrors "github.com/puskesmas-merdeka/simpus-api/pkg/errors"
)

var (
	siti       = uuid.MustParse("0b6f1c9e-4a7d-4c1e-9f3a-000000000002")
	firstVisit = uuid.MustParse("5e2d8a41-7b3c-4f0a-8c6d-000000000001")
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	s, err := memory.NewSeeded(memory.WithLatency(0))
	require.NoError(t, err)
	store := s.Repositories()
	return NewService(store, audit.NewService(store.AuditLogs, nil, "", nil))
}

func TestCreateEncounter(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	visit := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	created, err := svc.CreateEncounter(ctx, &model.CreateEncounterRequest{
		PatientID: siti,
		VisitedAt: visit,
		Poli:      " KIA ",
		Complaint: "Kontrol kehamilan",
	})
	require.NoError(t, err)
	assert.Equal(t, "KIA", created.Poli)
	assert.Equal(t, model.EncounterStatusPlanned, created.Status)

	got, err := svc.GetEncounter(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = svc.CreateEncounter(ctx, &model.CreateEncounterRequest{PatientID: uuid.New(), VisitedAt: visit, Poli: "Umum"})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestUpdateEncounter(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	plan := "Kontrol 1 minggu"
	updated, err := svc.UpdateEncounter(ctx, firstVisit, &model.UpdateEncounterRequest{Plan: &plan, Revision: 1})
	require.NoError(t, err)
	assert.Equal(t, firstVisit, updated.ID)
	assert.Equal(t, plan, updated.Plan)
	assert.Equal(t, "Umum", updated.Poli)

	_, err = svc.UpdateEncounter(ctx, firstVisit, &model.UpdateEncounterRequest{Plan: &plan, Revision: 1})
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
}

func TestListEncountersByFilter(t *testing.T) {
	svc := newTestService(t)

	list, err := svc.ListEncounters(context.Background(), &model.EncounterFilter{Poli: "Gigi"})
	require.NoError(t, err)
	require.Len(t, list, 1)

	all, err := svc.ListEncounters(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, all, 6)
}

func TestDiagnoses(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	existing, err := svc.ListDiagnoses(ctx, firstVisit)
	require.NoError(t, err)
	assert.Len(t, existing, 2)

	added, err := svc.AddDiagnosis(ctx, firstVisit, &model.CreateDiagnosisRequest{Code: "r51", Name: "Headache"})
	require.NoError(t, err)
	assert.Equal(t, "R51", added.Code)
	assert.Equal(t, model.DiagnosisPrincipal, added.Role)

	list, err := svc.ListDiagnoses(ctx, firstVisit)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	require.NoError(t, svc.DeleteDiagnosis(ctx, added.ID))
	assert.True(t, apperrors.Is(svc.DeleteDiagnosis(ctx, added.ID), apperrors.ErrNotFound))

	_, err = svc.AddDiagnosis(ctx, uuid.New(), &model.CreateDiagnosisRequest{Code: "R51", Name: "Headache"})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestSearchICD10(t *testing.T) {
	svc := newTestService(t)

	codes, err := svc.SearchICD10(context.Background(), "hypertension")
	require.NoError(t, err)
	require.Len(t, codes, 1)
	assert.Equal(t, "I10", codes[0].Code)

	codes, err = svc.SearchICD10(context.Background(), "j0")
	require.NoError(t, err)
	assert.Len(t, codes, 3)
}
