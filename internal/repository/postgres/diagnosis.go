package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/puskesmas-merdeka/simpus-api/internal/model"
	"github.com/puskesmas-merdeka/simpus-api/internal/repository"
)

const diagnosisColumns = `id, encounter_id, kode_icd10, nama_diagnosis, jenis, created_at`

type diagnosisRepository struct {
	BaseRepository
}

func NewDiagnosisRepository(base BaseRepository) repository.DiagnosisRepository {
	return &diagnosisRepository{base}
}

func (r *diagnosisRepository) Create(ctx context.Context, diagnosis *model.Diagnosis) (err error) {
	defer r.observe("diagnosis.create", time.Now(), &err)

	if diagnosis.ID == uuid.Nil {
		diagnosis.ID = uuid.New()
	}
	stampNew(&diagnosis.CreatedAt, nil)

	query := `
		INSERT INTO diagnoses (` + diagnosisColumns + `)
		VALUES (:id, :encounter_id, :kode_icd10, :nama_diagnosis, :jenis, :created_at)
	`
	if _, err = r.db.NamedExecContext(ctx, query, diagnosis); err != nil {
		return fmt.Errorf("failed to create diagnosis: %w", err)
	}
	return nil
}

func (r *diagnosisRepository) Get(ctx context.Context, id uuid.UUID) (_ *model.Diagnosis, err error) {
	defer r.observe("diagnosis.get", time.Now(), &err)

	var diagnosis model.Diagnosis
	query := `SELECT ` + diagnosisColumns + ` FROM diagnoses WHERE id = $1`
	if err = r.db.GetContext(ctx, &diagnosis, query, id); err != nil {
		return nil, notFound(err)
	}
	return &diagnosis, nil
}

func (r *diagnosisRepository) Delete(ctx context.Context, id uuid.UUID) (err error) {
	defer r.observe("diagnosis.delete", time.Now(), &err)

	res, err := r.db.ExecContext(ctx, `DELETE FROM diagnoses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete diagnosis: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *diagnosisRepository) ListByEncounter(ctx context.Context, encounterID uuid.UUID) (_ []*model.Diagnosis, err error) {
	defer r.observe("diagnosis.list_by_encounter", time.Now(), &err)

	diagnoses := make([]*model.Diagnosis, 0)
	query := `SELECT ` + diagnosisColumns + ` FROM diagnoses WHERE encounter_id = $1 ORDER BY created_at`
	if err = r.db.SelectContext(ctx, &diagnoses, query, encounterID); err != nil {
		return nil, fmt.Errorf("failed to list diagnoses: %w", err)
	}
	return diagnoses, nil
}

func (r *diagnosisRepository) List(ctx context.Context) (_ []*model.Diagnosis, err error) {
	defer r.observe("diagnosis.list", time.Now(), &err)

	diagnoses := make([]*model.Diagnosis, 0)
	query := `SELECT ` + diagnosisColumns + ` FROM diagnoses ORDER BY created_at`
	if err = r.db.SelectContext(ctx, &diagnoses, query); err != nil {
		return nil, fmt.Errorf("failed to list diagnoses: %w", err)
	}
	return diagnoses, nil
}
