package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/puskesmas-merdeka/simpus-api/internal/model"
	"github.com/puskesmas-merdeka/simpus-api/internal/repository"
)

const labOrderColumns = `id, encounter_id, jenis_pemeriksaan, status, catatan, created_at, updated_at, revision`

type labOrderRepository struct {
	BaseRepository
}

func NewLabOrderRepository(base BaseRepository) repository.LabOrderRepository {
	return &labOrderRepository{base}
}

func (r *labOrderRepository) Create(ctx context.Context, order *model.LabOrder) (err error) {
	defer r.observe("lab_order.create", time.Now(), &err)

	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	stampNew(&order.CreatedAt, &order.UpdatedAt)
	order.Revision = 1

	query := `
		INSERT INTO lab_orders (` + labOrderColumns + `)
		VALUES (:id, :encounter_id, :jenis_pemeriksaan, :status, :catatan, :created_at, :updated_at, :revision)
	`
	if _, err = r.db.NamedExecContext(ctx, query, order); err != nil {
		return fmt.Errorf("failed to create lab order: %w", err)
	}
	return nil
}

func (r *labOrderRepository) Get(ctx context.Context, id uuid.UUID) (_ *model.LabOrder, err error) {
	defer r.observe("lab_order.get", time.Now(), &err)

	var order model.LabOrder
	query := `SELECT ` + labOrderColumns + ` FROM lab_orders WHERE id = $1`
	if err = r.db.GetContext(ctx, &order, query, id); err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}

func (r *labOrderRepository) Update(ctx context.Context, order *model.LabOrder, expectedRevision int64) (err error) {
	defer r.observe("lab_order.update", time.Now(), &err)

	query := `
		UPDATE lab_orders SET
			jenis_pemeriksaan = $2, status = $3, catatan = $4,
			updated_at = NOW(), revision = revision + 1
		WHERE id = $1 AND ($5 = 0 OR revision = $5)
		RETURNING encounter_id, created_at, updated_at, revision
	`
	row := r.db.QueryRowxContext(ctx, query, order.ID, order.TestName, order.Status, order.Note, expectedRevision)
	if err = row.Scan(&order.EncounterID, &order.CreatedAt, &order.UpdatedAt, &order.Revision); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r.revisionMiss(ctx, "lab_orders", order.ID)
		}
		return fmt.Errorf("failed to update lab order: %w", err)
	}
	return nil
}

func (r *labOrderRepository) List(ctx context.Context, encounterID uuid.UUID) (_ []*model.LabOrder, err error) {
	defer r.observe("lab_order.list", time.Now(), &err)

	query := `SELECT ` + labOrderColumns + ` FROM lab_orders`
	var args []interface{}
	if encounterID != uuid.Nil {
		query += ` WHERE encounter_id = $1`
		args = append(args, encounterID)
	}
	query += ` ORDER BY created_at DESC`

	orders := make([]*model.LabOrder, 0)
	if err = r.db.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list lab orders: %w", err)
	}
	return orders, nil
}

// labResultRow flattens the optional measurement into nullable columns.
type labResultRow struct {
	model.LabResult
	TestCode    sql.NullString      `db:"test_code"`
	MeasureVal  decimal.NullDecimal `db:"measurement_value"`
	MeasureUnit sql.NullString      `db:"measurement_unit"`
	MeasureMin  decimal.NullDecimal `db:"measurement_min"`
	MeasureMax  decimal.NullDecimal `db:"measurement_max"`
}

func toLabResultRow(lr *model.LabResult) labResultRow {
	row := labResultRow{LabResult: *lr}
	if m := lr.Measurement; m != nil {
		row.TestCode = sql.NullString{String: m.TestCode, Valid: true}
		row.MeasureVal = decimal.NewNullDecimal(m.Value)
		row.MeasureUnit = sql.NullString{String: m.Unit, Valid: true}
		if m.Min != nil {
			row.MeasureMin = decimal.NewNullDecimal(*m.Min)
		}
		if m.Max != nil {
			row.MeasureMax = decimal.NewNullDecimal(*m.Max)
		}
	}
	return row
}

func (row labResultRow) result() *model.LabResult {
	lr := row.LabResult
	if row.MeasureVal.Valid {
		m := &model.Measurement{
			TestCode: row.TestCode.String,
			Value:    row.MeasureVal.Decimal,
			Unit:     row.MeasureUnit.String,
		}
		if row.MeasureMin.Valid {
			v := row.MeasureMin.Decimal
			m.Min = &v
		}
		if row.MeasureMax.Valid {
			v := row.MeasureMax.Decimal
			m.Max = &v
		}
		lr.Measurement = m
	}
	return &lr
}

type labResultRepository struct {
	BaseRepository
}

func NewLabResultRepository(base BaseRepository) repository.LabResultRepository {
	return &labResultRepository{base}
}

func (r *labResultRepository) Create(ctx context.Context, result *model.LabResult) (err error) {
	defer r.observe("lab_result.create", time.Now(), &err)

	if result.ID == uuid.Nil {
		result.ID = uuid.New()
	}
	stampNew(&result.CreatedAt, nil)

	query := `
		INSERT INTO lab_results (
			id, lab_order_id, parameter, nilai, satuan, nilai_rujukan, interpretasi,
			test_code, measurement_value, measurement_unit, measurement_min, measurement_max, created_at
		) VALUES (
			:id, :lab_order_id, :parameter, :nilai, :satuan, :nilai_rujukan, :interpretasi,
			:test_code, :measurement_value, :measurement_unit, :measurement_min, :measurement_max, :created_at
		)
	`
	if _, err = r.db.NamedExecContext(ctx, query, toLabResultRow(result)); err != nil {
		return fmt.Errorf("failed to create lab result: %w", err)
	}
	return nil
}

func (r *labResultRepository) ListByOrder(ctx context.Context, labOrderID uuid.UUID) (_ []*model.LabResult, err error) {
	defer r.observe("lab_result.list", time.Now(), &err)

	query := `
		SELECT id, lab_order_id, parameter, nilai, satuan, nilai_rujukan, interpretasi,
			test_code, measurement_value, measurement_unit, measurement_min, measurement_max, created_at
		FROM lab_results
		WHERE lab_order_id = $1
		ORDER BY created_at DESC
	`
	var rows []labResultRow
	if err = r.db.SelectContext(ctx, &rows, query, labOrderID); err != nil {
		return nil, fmt.Errorf("failed to list lab results: %w", err)
	}

	results := make([]*model.LabResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, row.result())
	}
	return results, nil
}
