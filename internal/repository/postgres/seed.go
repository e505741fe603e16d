package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/puskesmas-merdeka/simpus-api/internal/model"
)

// SeedICD10 loads the code table over db or a transaction. Existing codes
// are left untouched.
func SeedICD10(ctx context.Context, db sqlx.ExtContext, codes []*model.ICD10Code) error {
	if len(codes) == 0 {
		return nil
	}
	query := `
		INSERT INTO icd10_codes (kode, nama, kategori)
		VALUES (:kode, :nama, :kategori)
		ON CONFLICT (kode) DO NOTHING
	`
	if _, err := sqlx.NamedExecContext(ctx, db, query, codes); err != nil {
		return fmt.Errorf("failed to seed icd10 codes: %w", err)
	}
	return nil
}
