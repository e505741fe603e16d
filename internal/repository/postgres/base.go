package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/puskesmas-merdeka/simpus-api/internal/repository"
	"github.com/puskesmas-merdeka/simpus-api/pkg/metrics"
)

// execer is what the repositories need from a *sqlx.DB or a *sqlx.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
}

// BaseRepository provides common functionality for all repositories. db is
// the pool, or the transaction inside WithTx.
type BaseRepository struct {
	db      execer
	pool    *sqlx.DB
	metrics *metrics.Metrics
}

// NewBaseRepository creates a new base repository. m may be nil.
func NewBaseRepository(db *sqlx.DB, m *metrics.Metrics) BaseRepository {
	return BaseRepository{db: db, pool: db, metrics: m}
}

// WithTx runs fn with a copy of r bound to a new transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
func (r BaseRepository) WithTx(ctx context.Context, fn func(tx *sqlx.Tx, base BaseRepository) error) error {
	if r.pool == nil {
		return errors.New("already in a transaction")
	}
	tx, err := r.pool.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx, BaseRepository{db: tx, metrics: r.metrics}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// observe records one database call. Use as
// defer r.observe("patient.get", time.Now(), &err).
func (r *BaseRepository) observe(op string, start time.Time, err *error) {
	if r.metrics == nil {
		return
	}
	status := "success"
	if err != nil && *err != nil && !errors.Is(*err, repository.ErrNotFound) {
		status = "error"
	}
	r.metrics.DatabaseOperations.WithLabelValues(op, status).Inc()
	r.metrics.DatabaseLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// revisionMiss decides why a guarded UPDATE touched no row.
func (r *BaseRepository) revisionMiss(ctx context.Context, table string, id interface{}) error {
	var exists bool
	err := r.db.GetContext(ctx, &exists, "SELECT EXISTS (SELECT 1 FROM "+table+" WHERE id = $1)", id)
	if err != nil {
		return err
	}
	if !exists {
		return repository.ErrNotFound
	}
	return repository.ErrRevisionConflict
}

// stampNew fills zero creation times with now. Imported records keep theirs;
// a zero updated time follows created.
func stampNew(created, updated *time.Time) {
	if created.IsZero() {
		*created = time.Now().UTC()
	}
	if updated != nil && updated.IsZero() {
		*updated = *created
	}
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	return err
}

// Repositories wires every postgres repository over one connection pool.
func Repositories(db *sqlx.DB, m *metrics.Metrics) *repository.Store {
	return newStore(NewBaseRepository(db, m))
}

// InTx hands fn the transaction and repositories bound to it. Nothing fn
// wrote survives an error.
func InTx(ctx context.Context, db *sqlx.DB, m *metrics.Metrics, fn func(tx *sqlx.Tx, store *repository.Store) error) error {
	return NewBaseRepository(db, m).WithTx(ctx, func(tx *sqlx.Tx, base BaseRepository) error {
		return fn(tx, newStore(base))
	})
}

func newStore(base BaseRepository) *repository.Store {
	return &repository.Store{
		Patients:   NewPatientRepository(base),
		Encounters: NewEncounterRepository(base),
		Diagnoses:  NewDiagnosisRepository(base),
		LabOrders:  NewLabOrderRepository(base),
		LabResults: NewLabResultRepository(base),
		ICD10:      NewICD10Repository(base, DefaultICD10CacheTTL),
		AuditLogs:  NewAuditRepository(base),
		SyncJobs:   NewSyncJobRepository(base),
	}
}
