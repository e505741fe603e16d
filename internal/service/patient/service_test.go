package patient

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puskesmas-merdeka/simpus-api/internal/model"
	"github.com/puskesmas-merdeka/simpus-api/internal/repository"
	"github.com/puskesmas-merdeka/simpus-api/internal/repository/memory"
	"github.com/puskesmas-merdeka/simpus-api/internal/service/audit"
	apperrors "github.com/puskesmas-merdeka/simpus-api/pkg/errors"
)

var budi = uuid.MustParse("0b6f1c9e-4a7d-4c1e-9f3a-000000000001")

func newTestService(t *testing.T) (*Service, *repository.Store, *audit.Service) {
	t.Helper()
	s, err := memory.NewSeeded(memory.WithLatency(0))
	require.NoError(t, err)
	store := s.Repositories()
	auditor := audit.NewService(store.AuditLogs, nil, "", nil)
	return NewService(store.Patients, store.Encounters, auditor), store, auditor
}

func TestCreateThenGet(t *testing.T) {
	svc, _, auditor := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreatePatient(ctx, &model.CreatePatientRequest{
		NIK:       " 3201019999990001 ",
		Name:      "Rina Marlina",
		BirthDate: model.NewDate(1999, time.March, 3),
		Sex:       model.SexFemale,
	})
	require.NoError(t, err)
	assert.Equal(t, model.PatientStatusActive, created.Status)
	assert.Equal(t, "3201019999990001", created.NIK)

	got, err := svc.GetPatient(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	logs, err := auditor.List(ctx, 0)
	require.NoError(t, err)
	var found bool
	for _, l := range logs {
		if l.Action == model.AuditActionCreate && l.EntityID == created.ID.String() {
			found = true
			assert.Equal(t, "Rina Marlina", l.Meta["nama"])
		}
	}
	assert.True(t, found)
}

func TestUpdateMergesAndKeepsID(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	phone := "0800"
	updated, err := svc.UpdatePatient(ctx, budi, &model.UpdatePatientRequest{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, budi, updated.ID)
	assert.Equal(t, "0800", updated.Phone)
	assert.Equal(t, "Budi Santoso", updated.Name)
	assert.Equal(t, int64(2), updated.Revision)

	_, err = svc.UpdatePatient(ctx, budi, &model.UpdatePatientRequest{Phone: &phone, Revision: 1})
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))

	_, err = svc.UpdatePatient(ctx, uuid.New(), &model.UpdatePatientRequest{})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestUpdateTrimsAndKeepsIdentity(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	name := "  Budi S.  "
	updated, err := svc.UpdatePatient(ctx, budi, &model.UpdatePatientRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Budi S.", updated.Name)

	for _, blank := range []*model.UpdatePatientRequest{
		{NIK: model.StringPtr("   ")},
		{Name: model.StringPtr("")},
	} {
		_, err = svc.UpdatePatient(ctx, budi, blank)
		assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
	}

	stored, err := store.Patients.Get(ctx, budi)
	require.NoError(t, err)
	assert.Equal(t, "3201012505850001", stored.NIK)
	assert.Equal(t, "Budi S.", stored.Name)

	_, err = svc.CreatePatient(ctx, &model.CreatePatientRequest{
		NIK:       "3201019999990002",
		Name:      "   ",
		BirthDate: model.NewDate(1999, time.March, 3),
		Sex:       model.SexFemale,
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
}

func TestDeleteKeepsEncounters(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.DeletePatient(ctx, budi))

	_, err := svc.GetPatient(ctx, budi)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "Patient not found", appErr.Message)

	encounters, err := store.Encounters.List(ctx, &model.EncounterFilter{PatientID: budi})
	require.NoError(t, err)
	assert.Len(t, encounters, 2)

	assert.True(t, apperrors.Is(svc.DeletePatient(ctx, budi), apperrors.ErrNotFound))
}

func TestListPatients(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	all, err := svc.ListPatients(ctx, "  ")
	require.NoError(t, err)
	assert.Len(t, all, 5)

	found, err := svc.ListPatients(ctx, "SITI")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Siti Aminah", found[0].Name)

	byBPJS, err := svc.ListPatients(ctx, "0004234")
	require.NoError(t, err)
	require.Len(t, byBPJS, 1)
	assert.Equal(t, "Dewi Lestari", byBPJS[0].Name)
}

func TestListEncounters(t *testing.T) {
	svc, _, _ := newTestService(t)

	encounters, err := svc.ListEncounters(context.Background(), budi)
	require.NoError(t, err)
	assert.Len(t, encounters, 2)

	_, err = svc.ListEncounters(context.Background(), uuid.New())
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}
