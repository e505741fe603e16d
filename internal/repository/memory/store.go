// Package memory is the offline backend: every repository is served from
// slices held by one Store, seeded from fixtures, with a simulated network
// delay on each call.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/puskesmas-merdeka/simpus-api/internal/model"
	"github.com/puskesmas-merdeka/simpus-api/internal/repository"
	"github.com/puskesmas-merdeka/simpus-api/pkg/metrics"
)

const DefaultLatency = 300 * time.Millisecond

type Option func(*Store)

// WithLatency sets the delay applied to every call. Zero disables it.
func WithLatency(d time.Duration) Option {
	return func(s *Store) { s.latency = d }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDFunc(newID func() uuid.UUID) Option {
	return func(s *Store) { s.newID = newID }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// Store holds all offline data. The mutex guards the slices only; the
// latency wait happens outside it so concurrent calls overlap.
type Store struct {
	mu      sync.RWMutex
	latency time.Duration
	now     func() time.Time
	newID   func() uuid.UUID
	metrics *metrics.Metrics

	patients   []*model.Patient
	encounters []*model.Encounter
	diagnoses  []*model.Diagnosis
	labOrders  []*model.LabOrder
	labResults []*model.LabResult
	icd10      []*model.ICD10Code
	auditLogs  []*model.AuditLog
	syncJobs   []*model.SyncJob
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		latency: DefaultLatency,
		now:     time.Now,
		newID:   uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewSeeded returns a store loaded with the embedded fixtures.
func NewSeeded(opts ...Option) (*Store, error) {
	fx, err := DefaultFixtures()
	if err != nil {
		return nil, err
	}
	s := New(opts...)
	s.Seed(fx)
	return s, nil
}

// Repositories exposes the store through the repository contracts.
func (s *Store) Repositories() *repository.Store {
	return &repository.Store{
		Patients:   &patientRepository{s: s},
		Encounters: &encounterRepository{s: s},
		Diagnoses:  &diagnosisRepository{s: s},
		LabOrders:  &labOrderRepository{s: s},
		LabResults: &labResultRepository{s: s},
		ICD10:      &icd10Repository{s: s},
		AuditLogs:  &auditRepository{s: s},
		SyncJobs:   &syncJobRepository{s: s},
	}
}

// wait simulates the round trip, returning early if ctx ends.
func (s *Store) wait(ctx context.Context, op string) error {
	if s.metrics != nil {
		s.metrics.StoreOperations.WithLabelValues(op).Inc()
	}
	if s.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *Store) stamp() time.Time {
	return s.now().UTC()
}

func limitOf(n, limit int) int {
	if limit <= 0 || limit > n {
		return n
	}
	return limit
}

// newestFirst orders by the key descending, keeping insertion order on ties.
func newestFirst[T any](items []T, key func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return key(items[i]).After(key(items[j]))
	})
}
