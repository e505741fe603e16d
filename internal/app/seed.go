package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/puskesmas-merdeka/simpus-api/internal/repository"
	"github.com/puskesmas-merdeka/simpus-api/internal/repository/memory"
	"github.com/puskesmas-merdeka/simpus-api/internal/repository/postgres"
	"github.com/puskesmas-merdeka/simpus-api/pkg/metrics"
)

// errAlreadySeeded rolls the seed transaction back without reporting a failure.
var errAlreadySeeded = errors.New("database already seeded")

// SeedDatabase loads the demo fixtures into Postgres in one transaction, so a
// failure leaves nothing behind. It does nothing when patients already exist.
// Fixture timestamps are kept. Returns the number of patients written.
func SeedDatabase(ctx context.Context, db *sqlx.DB, m *metrics.Metrics) (int, error) {
	fx, err := memory.DefaultFixtures()
	if err != nil {
		return 0, err
	}

	err = postgres.InTx(ctx, db, m, func(tx *sqlx.Tx, store *repository.Store) error {
		existing, err := store.Patients.List(ctx)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return errAlreadySeeded
		}
		if err := postgres.SeedICD10(ctx, tx, fx.ICD10Codes); err != nil {
			return err
		}
		return seedFixtures(ctx, store, fx)
	})
	switch {
	case errors.Is(err, errAlreadySeeded):
		return 0, nil
	case err != nil:
		return 0, err
	}
	return len(fx.Patients), nil
}

func seedFixtures(ctx context.Context, store *repository.Store, fx *memory.Fixtures) error {
	for _, p := range fx.Patients {
		if err := store.Patients.Create(ctx, p.Clone()); err != nil {
			return fmt.Errorf("patient %s: %w", p.ID, err)
		}
	}
	for _, e := range fx.Encounters {
		if err := store.Encounters.Create(ctx, e.Clone()); err != nil {
			return fmt.Errorf("encounter %s: %w", e.ID, err)
		}
	}
	for _, d := range fx.Diagnoses {
		if err := store.Diagnoses.Create(ctx, d); err != nil {
			return fmt.Errorf("diagnosis %s: %w", d.ID, err)
		}
	}
	for _, o := range fx.LabOrders {
		if err := store.LabOrders.Create(ctx, o); err != nil {
			return fmt.Errorf("lab order %s: %w", o.ID, err)
		}
	}
	for _, r := range fx.LabResults {
		if err := store.LabResults.Create(ctx, r); err != nil {
			return fmt.Errorf("lab result %s: %w", r.ID, err)
		}
	}
	for _, l := range fx.AuditLogs {
		if err := store.AuditLogs.Create(ctx, l); err != nil {
			return fmt.Errorf("audit log %s: %w", l.ID, err)
		}
	}
	for _, j := range fx.SyncJobs {
		if err := store.SyncJobs.Create(ctx, j); err != nil {
			return fmt.Errorf("sync job %s: %w", j.ID, err)
		}
	}
	return nil
}
