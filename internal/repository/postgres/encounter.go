package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/puskesmas-merdeka/simpus-api/internal/dateutil"
	"github.com/puskesmas-merdeka/simpus-api/internal/model"
	"github.com/puskesmas-merdeka/simpus-api/internal/repository"
)

const encounterColumns = `id, patient_id, tanggal, poli, keluhan, anamnesis, pemeriksaan, assessment,
	plan, status, no_sep, id_fhir_encounter, created_at, updated_at, revision`

type encounterRepository struct {
	BaseRepository
}

func NewEncounterRepository(base BaseRepository) repository.EncounterRepository {
	return &encounterRepository{base}
}

func (r *encounterRepository) Create(ctx context.Context, encounter *model.Encounter) (err error) {
	defer r.observe("encounter.create", time.Now(), &err)

	if encounter.ID == uuid.Nil {
		encounter.ID = uuid.New()
	}
	stampNew(&encounter.CreatedAt, &encounter.UpdatedAt)
	encounter.Revision = 1

	query := `
		INSERT INTO encounters (` + encounterColumns + `)
		VALUES (:id, :patient_id, :tanggal, :poli, :keluhan, :anamnesis, :pemeriksaan, :assessment,
			:plan, :status, :no_sep, :id_fhir_encounter, :created_at, :updated_at, :revision)
	`
	if _, err = r.db.NamedExecContext(ctx, query, encounter); err != nil {
		return fmt.Errorf("failed to create encounter: %w", err)
	}
	return nil
}

func (r *encounterRepository) Get(ctx context.Context, id uuid.UUID) (_ *model.Encounter, err error) {
	defer r.observe("encounter.get", time.Now(), &err)

	var encounter model.Encounter
	query := `SELECT ` + encounterColumns + ` FROM encounters WHERE id = $1`
	if err = r.db.GetContext(ctx, &encounter, query, id); err != nil {
		return nil, notFound(err)
	}
	return &encounter, nil
}

func (r *encounterRepository) Update(ctx context.Context, encounter *model.Encounter, expectedRevision int64) (err error) {
	defer r.observe("encounter.update", time.Now(), &err)

	query := `
		UPDATE encounters SET
			patient_id = $2, tanggal = $3, poli = $4, keluhan = $5, anamnesis = $6,
			pemeriksaan = $7, assessment = $8, plan = $9, status = $10,
			no_sep = $11, id_fhir_encounter = $12,
			updated_at = NOW(), revision = revision + 1
		WHERE id = $1 AND ($13 = 0 OR revision = $13)
		RETURNING created_at, updated_at, revision
	`
	row := r.db.QueryRowxContext(ctx, query,
		encounter.ID,
		encounter.PatientID,
		encounter.VisitedAt,
		encounter.Poli,
		encounter.Complaint,
		encounter.Anamnesis,
		encounter.Examination,
		encounter.Assessment,
		encounter.Plan,
		encounter.Status,
		encounter.SEPNumber,
		encounter.FHIREncounterID,
		expectedRevision,
	)
	if err = row.Scan(&encounter.CreatedAt, &encounter.UpdatedAt, &encounter.Revision); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r.revisionMiss(ctx, "encounters", encounter.ID)
		}
		return fmt.Errorf("failed to update encounter: %w", err)
	}
	return nil
}

func (r *encounterRepository) List(ctx context.Context, filter *model.EncounterFilter) (_ []*model.Encounter, err error) {
	defer r.observe("encounter.list", time.Now(), &err)

	if filter == nil {
		filter = &model.EncounterFilter{}
	}

	query := `SELECT ` + encounterColumns + ` FROM encounters WHERE 1=1`
	var args []interface{}

	if filter.PatientID != uuid.Nil {
		args = append(args, filter.PatientID)
		query += fmt.Sprintf(" AND patient_id = $%d", len(args))
	}
	if filter.Poli != "" {
		args = append(args, filter.Poli)
		query += fmt.Sprintf(" AND poli = $%d", len(args))
	}
	// Visit dates compare in the clinic's zone, like the in-memory filter.
	if filter.StartDate != "" {
		args = append(args, filter.StartDate)
		query += fmt.Sprintf(" AND (tanggal AT TIME ZONE '%s')::date >= $%d::date", dateutil.DefaultTimezone, len(args))
	}
	if filter.EndDate != "" {
		args = append(args, filter.EndDate)
		query += fmt.Sprintf(" AND (tanggal AT TIME ZONE '%s')::date <= $%d::date", dateutil.DefaultTimezone, len(args))
	}
	query += " ORDER BY tanggal DESC"

	encounters := make([]*model.Encounter, 0)
	if err = r.db.SelectContext(ctx, &encounters, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list encounters: %w", err)
	}
	return encounters, nil
}
