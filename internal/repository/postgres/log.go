package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/puskesmas-merdeka/simpus-api/internal/model"
	"github.com/puskesmas-merdeka/simpus-api/internal/repository"
)

// DefaultICD10CacheTTL bounds how long a search result is reused. The code
// table only changes through migrations.
const DefaultICD10CacheTTL = 10 * time.Minute

type icd10Repository struct {
	BaseRepository
	cache *cache.Cache
}

func NewICD10Repository(base BaseRepository, ttl time.Duration) repository.ICD10Repository {
	return &icd10Repository{
		BaseRepository: base,
		cache:          cache.New(ttl, 2*ttl),
	}
}

func (r *icd10Repository) Search(ctx context.Context, q string, limit int) (_ []*model.ICD10Code, err error) {
	q = strings.TrimSpace(q)
	key := fmt.Sprintf("%d:%s", limit, strings.ToLower(q))
	if cached, ok := r.cache.Get(key); ok {
		return copyCodes(cached.([]*model.ICD10Code)), nil
	}

	defer r.observe("icd10.search", time.Now(), &err)

	if limit <= 0 {
		limit = repository.ICD10SearchLimit
	}
	query := `
		SELECT kode, nama, kategori FROM icd10_codes
		WHERE $1 = '' OR kode ILIKE '%' || $1 || '%' OR nama ILIKE '%' || $1 || '%'
		ORDER BY kode
		LIMIT $2
	`
	codes := make([]*model.ICD10Code, 0)
	if err = r.db.SelectContext(ctx, &codes, query, escapeLike(q), limit); err != nil {
		return nil, fmt.Errorf("failed to search icd10 codes: %w", err)
	}

	r.cache.SetDefault(key, copyCodes(codes))
	return codes, nil
}

func copyCodes(codes []*model.ICD10Code) []*model.ICD10Code {
	out := make([]*model.ICD10Code, len(codes))
	for i, c := range codes {
		code := *c
		out[i] = &code
	}
	return out
}

type auditRepository struct {
	BaseRepository
}

func NewAuditRepository(base BaseRepository) repository.AuditRepository {
	return &auditRepository{base}
}

func (r *auditRepository) Create(ctx context.Context, log *model.AuditLog) (err error) {
	defer r.observe("audit_log.create", time.Now(), &err)

	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if log.Timestamp.IsZero() {
		log.Timestamp = time.Now().UTC()
	}

	query := `
		INSERT INTO audit_logs (id, user_id, action, entity, entity_id, meta_json, timestamp)
		VALUES (:id, :user_id, :action, :entity, :entity_id, :meta_json, :timestamp)
	`
	if _, err = r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

func (r *auditRepository) List(ctx context.Context, limit int) (_ []*model.AuditLog, err error) {
	defer r.observe("audit_log.list", time.Now(), &err)

	if limit <= 0 {
		limit = repository.AuditLogLimit
	}
	logs := make([]*model.AuditLog, 0)
	query := `
		SELECT id, user_id, action, entity, entity_id, meta_json, timestamp
		FROM audit_logs
		ORDER BY timestamp DESC
		LIMIT $1
	`
	if err = r.db.SelectContext(ctx, &logs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, nil
}

type syncJobRepository struct {
	BaseRepository
}

func NewSyncJobRepository(base BaseRepository) repository.SyncJobRepository {
	return &syncJobRepository{base}
}

func (r *syncJobRepository) Create(ctx context.Context, job *model.SyncJob) (err error) {
	defer r.observe("sync_job.create", time.Now(), &err)

	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	stampNew(&job.CreatedAt, nil)

	query := `
		INSERT INTO sync_jobs (id, entity, entity_id, external_id, payload, status, error, created_at)
		VALUES (:id, :entity, :entity_id, :external_id, :payload, :status, :error, :created_at)
	`
	if _, err = r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("failed to create sync job: %w", err)
	}
	return nil
}

func (r *syncJobRepository) List(ctx context.Context, limit int) (_ []*model.SyncJob, err error) {
	defer r.observe("sync_job.list", time.Now(), &err)

	if limit <= 0 {
		limit = repository.SyncJobLimit
	}
	jobs := make([]*model.SyncJob, 0)
	query := `
		SELECT id, entity, entity_id, external_id, payload, status, error, created_at
		FROM sync_jobs
		ORDER BY created_at DESC
		LIMIT $1
	`
	if err = r.db.SelectContext(ctx, &jobs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list sync jobs: %w", err)
	}
	return jobs, nil
}
