package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puskesmas-merdeka/simpus-api/internal/model"
	"github.com/puskesmas-merdeka/simpus-api/internal/repository"
	"github.com/puskesmas-merdeka/simpus-api/pkg/metrics"
)

var fixedNow = time.Date(2024, 2, 1, 3, 0, 0, 0, time.UTC)

func sequentialIDs() func() uuid.UUID {
	var mu sync.Mutex
	n := 0
	return func() uuid.UUID {
		mu.Lock()
		defer mu.Unlock()
		n++
		return uuid.MustParse(fmt.Sprintf("00000000-0000-4000-8000-%012d", n))
	}
}

func newTestStore(t *testing.T) *repository.Store {
	t.Helper()
	s, err := NewSeeded(
		WithLatency(0),
		WithClock(func() time.Time { return fixedNow }),
		WithIDFunc(sequentialIDs()),
	)
	require.NoError(t, err)
	return s.Repositories()
}

func TestSeedLoads(t *testing.T) {
	repos := newTestStore(t)
	ctx := context.Background()

	patients, err := repos.Patients.List(ctx)
	require.NoError(t, err)
	assert.Len(t, patients, 5)
	// newest first
	assert.Equal(t, "Rahmat Hakim", patients[0].Name)
	assert.Equal(t, int64(1), patients[0].Revision)
	assert.Equal(t, "1985-05-25", patients[4].BirthDate.String())

	results, err := repos.LabResults.ListByOrder(ctx, uuid.MustParse("9d1b6f23-8e5a-4c7d-b3e1-000000000001"))
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, r := range results {
		if r.Parameter == "Leukosit" {
			require.NotNil(t, r.Measurement)
			assert.Equal(t, model.InterpretationHigh, r.Measurement.Interpret())
		}
	}
}

func TestPatientCreateThenGet(t *testing.T) {
	repos := newTestStore(t)
	ctx := context.Background()

	p := &model.Patient{NIK: "3201", Name: "Andi", Sex: model.SexMale, Status: model.PatientStatusActive}
	require.NoError(t, repos.Patients.Create(ctx, p))
	assert.Equal(t, "00000000-0000-4000-8000-000000000001", p.ID.String())
	assert.Equal(t, fixedNow, p.CreatedAt)

	got, err := repos.Patients.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	// mutating the returned copy leaves the store untouched
	got.Name = "changed"
	again, err := repos.Patients.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Andi", again.Name)
}

func TestPatientUpdateRevisions(t *testing.T) {
	repos := newTestStore(t)
	ctx := context.Background()
	id := uuid.MustParse("0b6f1c9e-4a7d-4c1e-9f3a-000000000001")

	p, err := repos.Patients.Get(ctx, id)
	require.NoError(t, err)
	created := p.CreatedAt

	p.Phone = "0800"
	require.NoError(t, repos.Patients.Update(ctx, p, 1))
	assert.Equal(t, int64(2), p.Revision)
	assert.Equal(t, created, p.CreatedAt)

	stale := p.Clone()
	stale.Phone = "0900"
	err = repos.Patients.Update(ctx, stale, 1)
	assert.ErrorIs(t, err, repository.ErrRevisionConflict)

	// zero skips the check
	require.NoError(t, repos.Patients.Update(ctx, stale, 0))
	got, _ := repos.Patients.Get(ctx, id)
	assert.Equal(t, "0900", got.Phone)
	assert.Equal(t, int64(3), got.Revision)
}

func TestPatientDelete(t *testing.T) {
	repos := newTestStore(t)
	ctx := context.Background()
	id := uuid.MustParse("0b6f1c9e-4a7d-4c1e-9f3a-000000000003")

	require.NoError(t, repos.Patients.Delete(ctx, id))
	_, err := repos.Patients.Get(ctx, id)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, repos.Patients.Delete(ctx, id), repository.ErrNotFound)

	// encounters of the deleted patient stay
	encs, err := repos.Encounters.List(ctx, &model.EncounterFilter{PatientID: id})
	require.NoError(t, err)
	assert.Len(t, encs, 1)
}

func TestPatientSearch(t *testing.T) {
	repos := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		query string
		want  int
	}{
		{"budi", 1},
		{"SITI", 1},
		{"3201016408", 1},
		{"0004234", 1},
		{"a", 5},
		{"", 5},
		{"   ", 5},
		{"tidak-ada", 0},
	}

	for _, tt := range tests {
		got, err := repos.Patients.Search(ctx, tt.query)
		require.NoError(t, err)
		assert.Len(t, got, tt.want, "query %q", tt.query)
	}
}

func TestEncounterFilters(t *testing.T) {
	repos := newTestStore(t)
	ctx := context.Background()

	all, err := repos.Encounters.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 6)
	assert.True(t, all[0].VisitedAt.After(all[5].VisitedAt))

	byDate, err := repos.Encounters.List(ctx, &model.EncounterFilter{StartDate: "2024-01-16", EndDate: "2024-01-16"})
	require.NoError(t, err)
	assert.Len(t, byDate, 2)

	byPoli, err := repos.Encounters.List(ctx, &model.EncounterFilter{Poli: "Umum"})
	require.NoError(t, err)
	assert.Len(t, byPoli, 4)
}

func TestDiagnosisCreateDelete(t *testing.T) {
	repos := newTestStore(t)
	ctx := context.Background()
	encID := uuid.MustParse("5e2d8a41-7b3c-4f0a-8c6d-000000000003")

	d := &model.Diagnosis{EncounterID: encID, Code: "R51", Name: "Headache", Role: model.DiagnosisSecondary}
	require.NoError(t, repos.Diagnoses.Create(ctx, d))

	list, err := repos.Diagnoses.ListByEncounter(ctx, encID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, repos.Diagnoses.Delete(ctx, d.ID))
	list, _ = repos.Diagnoses.ListByEncounter(ctx, encID)
	assert.Len(t, list, 1)
}

func TestICD10Search(t *testing.T) {
	repos := newTestStore(t)
	ctx := context.Background()

	byCode, err := repos.ICD10.Search(ctx, "j06", repository.ICD10SearchLimit)
	require.NoError(t, err)
	require.Len(t, byCode, 1)
	assert.Equal(t, "J06.9", byCode[0].Code)

	byName, err := repos.ICD10.Search(ctx, "HYPERTENSION", repository.ICD10SearchLimit)
	require.NoError(t, err)
	assert.Len(t, byName, 1)

	limited, err := repos.ICD10.Search(ctx, "", 3)
	require.NoError(t, err)
	assert.Len(t, limited, 3)
}

func TestAuditAndSyncJobsNewestFirst(t *testing.T) {
	repos := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, repos.AuditLogs.Create(ctx, &model.AuditLog{UserID: "user-admin", Action: model.AuditActionDelete, Entity: "patient"}))
	logs, err := repos.AuditLogs.List(ctx, repository.AuditLogLimit)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, model.AuditActionDelete, logs[0].Action)

	require.NoError(t, repos.SyncJobs.Create(ctx, &model.SyncJob{Entity: "patient", Status: model.SyncJobFailed}))
	jobs, err := repos.SyncJobs.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, model.SyncJobFailed, jobs[0].Status)
}

func TestLatencyHonoursContext(t *testing.T) {
	s := New(WithLatency(time.Hour))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := s.Repositories().Patients.List(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLatencyDoesNotSerialize(t *testing.T) {
	s := New(WithLatency(50 * time.Millisecond))
	repos := s.Repositories()

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = repos.Patients.List(context.Background())
		}()
	}
	wg.Wait()

	assert.Less(t, time.Since(start), 200*time.Millisecond)
}

func TestStoreCountsOperations(t *testing.T) {
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	s := New(WithLatency(0), WithMetrics(m))

	_, _ = s.Repositories().Patients.List(context.Background())
	assert.Equal(t, float64(1), testutil.ToFloat64(m.StoreOperations.WithLabelValues("patient.list")))
}
