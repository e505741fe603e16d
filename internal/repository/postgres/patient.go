package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/puskesmas-merdeka/simpus-api/internal/model"
	"github.com/puskesmas-merdeka/simpus-api/internal/repository"
)

const patientColumns = `id, nik, no_bpjs, nama, tanggal_lahir, jenis_kelamin, alamat, telepon,
	status, status_bpjs, waktu_validasi_bpjs, id_fhir_patient, created_at, updated_at, revision`

type patientRepository struct {
	BaseRepository
}

func NewPatientRepository(base BaseRepository) repository.PatientRepository {
	return &patientRepository{base}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) (err error) {
	defer r.observe("patient.create", time.Now(), &err)

	if patient.ID == uuid.Nil {
		patient.ID = uuid.New()
	}
	stampNew(&patient.CreatedAt, &patient.UpdatedAt)
	patient.Revision = 1

	query := `
		INSERT INTO patients (` + patientColumns + `)
		VALUES (:id, :nik, :no_bpjs, :nama, :tanggal_lahir, :jenis_kelamin, :alamat, :telepon,
			:status, :status_bpjs, :waktu_validasi_bpjs, :id_fhir_patient, :created_at, :updated_at, :revision)
	`
	if _, err = r.db.NamedExecContext(ctx, query, patient); err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (_ *model.Patient, err error) {
	defer r.observe("patient.get", time.Now(), &err)

	var patient model.Patient
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`
	if err = r.db.GetContext(ctx, &patient, query, id); err != nil {
		return nil, notFound(err)
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient, expectedRevision int64) (err error) {
	defer r.observe("patient.update", time.Now(), &err)

	query := `
		UPDATE patients SET
			nik = $2, no_bpjs = $3, nama = $4, tanggal_lahir = $5, jenis_kelamin = $6,
			alamat = $7, telepon = $8, status = $9, status_bpjs = $10,
			waktu_validasi_bpjs = $11, id_fhir_patient = $12,
			updated_at = NOW(), revision = revision + 1
		WHERE id = $1 AND ($13 = 0 OR revision = $13)
		RETURNING created_at, updated_at, revision
	`
	row := r.db.QueryRowxContext(ctx, query,
		patient.ID,
		patient.NIK,
		patient.BPJSNumber,
		patient.Name,
		patient.BirthDate,
		patient.Sex,
		patient.Address,
		patient.Phone,
		patient.Status,
		patient.BPJSStatus,
		patient.BPJSValidatedAt,
		patient.FHIRPatientID,
		expectedRevision,
	)
	if err = row.Scan(&patient.CreatedAt, &patient.UpdatedAt, &patient.Revision); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r.revisionMiss(ctx, "patients", patient.ID)
		}
		return fmt.Errorf("failed to update patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Delete(ctx context.Context, id uuid.UUID) (err error) {
	defer r.observe("patient.delete", time.Now(), &err)

	res, err := r.db.ExecContext(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
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

func (r *patientRepository) List(ctx context.Context) (_ []*model.Patient, err error) {
	defer r.observe("patient.list", time.Now(), &err)

	patients := make([]*model.Patient, 0)
	query := `SELECT ` + patientColumns + ` FROM patients ORDER BY created_at DESC`
	if err = r.db.SelectContext(ctx, &patients, query); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

func (r *patientRepository) Search(ctx context.Context, q string) (_ []*model.Patient, err error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return r.List(ctx)
	}
	defer r.observe("patient.search", time.Now(), &err)

	patients := make([]*model.Patient, 0)
	query := `
		SELECT ` + patientColumns + ` FROM patients
		WHERE nama ILIKE '%' || $2 || '%'
			OR strpos(nik, $1) > 0
			OR strpos(no_bpjs, $1) > 0
		ORDER BY created_at DESC
	`
	if err = r.db.SelectContext(ctx, &patients, query, q, escapeLike(q)); err != nil {
		return nil, fmt.Errorf("failed to search patients: %w", err)
	}
	return patients, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
