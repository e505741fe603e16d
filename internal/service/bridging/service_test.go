package bridging

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puskesmas-merdeka/simpus-api/internal/integration"
	"github.com/puskesmas-merdeka/simpus-api/internal/model"
	"github.com/puskesmas-merdeka/simpus-api/internal/repository"
	"github.com/puskesmas-merdeka/simpus-api/internal/repository/memory"
	"github.com/puskesmas-merdeka/simpus-api/internal/service/audit"
	apperrors "github.com/puskesmas-merdeka/simpus-api/pkg/errors"
)

var (
	budi       = uuid.MustParse("0b6f1c9e-4a7d-4c1e-9f3a-000000000001")
	ahmad      = uuid.MustParse("0b6f1c9e-4a7d-4c1e-9f3a-000000000003")
	firstVisit = uuid.MustParse("5e2d8a41-7b3c-4f0a-8c6d-000000000001")
	ahmadVisit = uuid.MustParse("5e2d8a41-7b3c-4f0a-8c6d-000000000003")

	fixedNow = time.Date(2024, 2, 1, 3, 0, 0, 0, time.UTC)
)

type stubSource struct{}

func (stubSource) Float64() float64 { return 0.95 }
func (stubSource) Intn(int) int      { return 3 }
func (stubSource) Now() time.Time    { return time.UnixMilli(1705300000000) }

// downGateway fails every call the way an unreachable endpoint would.
type downGateway struct {
	integration.Gateway
}

func (downGateway) SyncPatient(context.Context, *model.FHIRPatientInput) (*model.FHIRPatient, string, error) {
	return nil, "", apperrors.NewUnavailable(integration.ServiceSatuSehat, context.DeadlineExceeded)
}

func newTestService(t *testing.T, gw integration.Gateway) (*Service, *repository.Store, *audit.Service) {
	t.Helper()
	s, err := memory.NewSeeded(memory.WithLatency(0), memory.WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	store := s.Repositories()
	auditor := audit.NewService(store.AuditLogs, nil, "", nil)
	svc := NewService(gw, store, auditor)
	svc.now = func() time.Time { return fixedNow }
	return svc, store, auditor
}

func lastAudit(t *testing.T, auditor *audit.Service) *model.AuditLog {
	t.Helper()
	logs, err := auditor.List(context.Background(), 0)
	require.NoError(t, err)
	require.NotEmpty(t, logs)
	return logs[0]
}

func TestValidateBPJS(t *testing.T) {
	svc, store, auditor := newTestService(t, integration.NewLocal(stubSource{}))
	ctx := context.Background()

	res, err := svc.ValidateBPJS(ctx, budi)
	require.NoError(t, err)
	assert.True(t, res.Participant.Active())
	assert.Equal(t, model.BPJSStatusActive, res.Patient.BPJSStatus)

	stored, err := store.Patients.Get(ctx, budi)
	require.NoError(t, err)
	assert.Equal(t, model.BPJSStatusActive, stored.BPJSStatus)
	require.NotNil(t, stored.BPJSValidatedAt)
	assert.True(t, fixedNow.Equal(*stored.BPJSValidatedAt))

	entry := lastAudit(t, auditor)
	assert.Equal(t, model.AuditActionValidateBPJS, entry.Action)
	assert.Equal(t, "0001234567890", entry.Meta["no_bpjs"])
	assert.Equal(t, model.BPJSStatusActive, entry.Meta["status"])

	_, err = svc.ValidateBPJS(ctx, ahmad)
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))

	_, err = svc.ValidateBPJS(ctx, uuid.New())
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestCreateSEP(t *testing.T) {
	svc, store, auditor := newTestService(t, integration.NewLocal(stubSource{}))
	ctx := context.Background()

	res, err := svc.CreateSEP(ctx, firstVisit, &model.CreateSEPRequest{Note: "Kontrol"})
	require.NoError(t, err)
	assert.Equal(t, "0301R00117053000000003", res.SEP.Number)
	assert.Equal(t, "J06.9", res.SEP.Diagnosis)
	assert.Equal(t, "2024-01-15", res.SEP.Date)
	assert.Equal(t, "Kontrol", res.SEP.Note)

	stored, err := store.Encounters.Get(ctx, firstVisit)
	require.NoError(t, err)
	require.NotNil(t, stored.SEPNumber)
	assert.Equal(t, res.SEP.Number, *stored.SEPNumber)

	assert.Equal(t, model.AuditActionCreateSEP, lastAudit(t, auditor).Action)

	_, err = svc.CreateSEP(ctx, ahmadVisit, nil)
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
}

func TestSyncPatientWritesJobAndAudit(t *testing.T) {
	svc, store, auditor := newTestService(t, integration.NewLocal(stubSource{}))
	ctx := context.Background()

	res, err := svc.SyncPatient(ctx, budi)
	require.NoError(t, err)
	assert.Equal(t, "P32010125058500011705300000000", res.Resource.ID)
	assert.Equal(t, "male", res.Resource.Gender)

	stored, err := store.Patients.Get(ctx, budi)
	require.NoError(t, err)
	assert.Equal(t, res.Resource.ID, *stored.FHIRPatientID)

	jobs, err := svc.ListSyncJobs(ctx, 0)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, model.SyncJobSuccess, jobs[0].Status)
	assert.Equal(t, budi, jobs[0].EntityID)
	assert.Equal(t, res.Resource.ID, *jobs[0].ExternalID)
	assert.Equal(t, "Budi Santoso", jobs[0].Payload["nama"])

	entry := lastAudit(t, auditor)
	assert.Equal(t, model.AuditActionSyncFHIR, entry.Action)
	assert.Equal(t, res.Resource.ID, entry.Meta["fhir_id"])
}

func TestSyncEncounterUsesPatientAndDiagnosis(t *testing.T) {
	svc, store, _ := newTestService(t, integration.NewLocal(stubSource{}))
	ctx := context.Background()

	_, err := svc.SyncPatient(ctx, budi)
	require.NoError(t, err)

	res, err := svc.SyncEncounter(ctx, firstVisit)
	require.NoError(t, err)
	assert.Equal(t, "E17053000000003", res.Resource.ID)
	assert.Equal(t, "Patient/P32010125058500011705300000000", res.Resource.Subject.Reference)
	require.Len(t, res.Resource.ReasonCode, 1)
	assert.Equal(t, "J06.9", res.Resource.ReasonCode[0].Coding[0].Code)

	stored, err := store.Encounters.Get(ctx, firstVisit)
	require.NoError(t, err)
	assert.Equal(t, "E17053000000003", *stored.FHIREncounterID)
}

func TestSyncFailureRecordsFailedJob(t *testing.T) {
	svc, store, auditor := newTestService(t, downGateway{})
	ctx := context.Background()

	_, err := svc.SyncPatient(ctx, budi)
	assert.True(t, apperrors.Is(err, apperrors.ErrUnavailable))

	jobs, err := svc.ListSyncJobs(ctx, 0)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, model.SyncJobFailed, jobs[0].Status)
	assert.Nil(t, jobs[0].ExternalID)
	require.NotNil(t, jobs[0].Error)
	assert.Contains(t, *jobs[0].Error, "SATUSEHAT unavailable")

	stored, err := store.Patients.Get(ctx, budi)
	require.NoError(t, err)
	assert.Nil(t, stored.FHIRPatientID)

	assert.NotEqual(t, model.AuditActionSyncFHIR, lastAudit(t, auditor).Action)
}

// editingGateway runs edit while the upstream call is in flight, standing in
// for a clerk saving the record at the same moment.
type editingGateway struct {
	integration.Gateway
	edit func()
}

func (g editingGateway) ValidateBPJS(ctx context.Context, card string) (*model.BPJSParticipant, string, error) {
	g.edit()
	return g.Gateway.ValidateBPJS(ctx, card)
}

func (g editingGateway) SyncPatient(ctx context.Context, in *model.FHIRPatientInput) (*model.FHIRPatient, string, error) {
	g.edit()
	return g.Gateway.SyncPatient(ctx, in)
}

func (g editingGateway) CreateSEP(ctx context.Context, req *model.SEPRequest) (*model.SEP, string, error) {
	g.edit()
	return g.Gateway.CreateSEP(ctx, req)
}

func (g editingGateway) SyncEncounter(ctx context.Context, in *model.FHIREncounterInput) (*model.FHIREncounter, string, error) {
	g.edit()
	return g.Gateway.SyncEncounter(ctx, in)
}

func newSlowStore(t *testing.T) *repository.Store {
	t.Helper()
	s, err := memory.NewSeeded(memory.WithLatency(2*time.Millisecond), memory.WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return s.Repositories()
}

func TestPatientActionsKeepConcurrentEdits(t *testing.T) {
	ctx := context.Background()

	for name, run := range map[string]func(*Service) error{
		"validate bpjs": func(svc *Service) error { _, err := svc.ValidateBPJS(ctx, budi); return err },
		"sync fhir":     func(svc *Service) error { _, err := svc.SyncPatient(ctx, budi); return err },
	} {
		t.Run(name, func(t *testing.T) {
			store := newSlowStore(t)
			rename := func() {
				p, err := store.Patients.Get(ctx, budi)
				require.NoError(t, err)
				p.Name = "Renamed By Clerk"
				require.NoError(t, store.Patients.Update(ctx, p, p.Revision))
			}
			gw := editingGateway{Gateway: integration.NewLocal(stubSource{}), edit: rename}
			svc := NewService(gw, store, audit.NewService(store.AuditLogs, nil, "", nil))

			require.NoError(t, run(svc))

			stored, err := store.Patients.Get(ctx, budi)
			require.NoError(t, err)
			assert.Equal(t, "Renamed By Clerk", stored.Name)
			assert.Equal(t, int64(3), stored.Revision)
		})
	}
}

func TestEncounterActionsKeepConcurrentEdits(t *testing.T) {
	ctx := context.Background()

	for name, run := range map[string]func(*Service) error{
		"create sep": func(svc *Service) error { _, err := svc.CreateSEP(ctx, firstVisit, nil); return err },
		"sync fhir":  func(svc *Service) error { _, err := svc.SyncEncounter(ctx, firstVisit); return err },
	} {
		t.Run(name, func(t *testing.T) {
			store := newSlowStore(t)
			replan := func() {
				e, err := store.Encounters.Get(ctx, firstVisit)
				require.NoError(t, err)
				e.Plan = "Kontrol 3 hari"
				require.NoError(t, store.Encounters.Update(ctx, e, e.Revision))
			}
			gw := editingGateway{Gateway: integration.NewLocal(stubSource{}), edit: replan}
			svc := NewService(gw, store, audit.NewService(store.AuditLogs, nil, "", nil))

			require.NoError(t, run(svc))

			stored, err := store.Encounters.Get(ctx, firstVisit)
			require.NoError(t, err)
			assert.Equal(t, "Kontrol 3 hari", stored.Plan)
			assert.True(t, stored.SEPNumber != nil || stored.FHIREncounterID != nil)
		})
	}
}

// contendedPatients loses every write race.
type contendedPatients struct {
	repository.PatientRepository
}

func (contendedPatients) Update(context.Context, *model.Patient, int64) error {
	return repository.ErrRevisionConflict
}

func TestValidateBPJSReportsPersistentConflict(t *testing.T) {
	store := newSlowStore(t)
	store.Patients = contendedPatients{store.Patients}
	svc := NewService(integration.NewLocal(stubSource{}), store, audit.NewService(store.AuditLogs, nil, "", nil))

	_, err := svc.ValidateBPJS(context.Background(), budi)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
}
