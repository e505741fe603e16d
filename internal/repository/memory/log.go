package memory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/puskesmas-merdeka/simpus-api/internal/model"
)

type icd10Repository struct {
	s *Store
}

func (r *icd10Repository) Search(ctx context.Context, query string, limit int) ([]*model.ICD10Code, error) {
	if err := r.s.wait(ctx, "icd10.search"); err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(query))

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*model.ICD10Code, 0)
	for _, c := range r.s.icd10 {
		if q == "" || strings.Contains(strings.ToLower(c.Code), q) || strings.Contains(strings.ToLower(c.Name), q) {
			code := *c
			out = append(out, &code)
		}
	}
	return out[:limitOf(len(out), limit)], nil
}

type auditRepository struct {
	s *Store
}

func (r *auditRepository) Create(ctx context.Context, log *model.AuditLog) error {
	if err := r.s.wait(ctx, "audit_log.create"); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if log.ID == uuid.Nil {
		log.ID = r.s.newID()
	}
	if log.Timestamp.IsZero() {
		log.Timestamp = r.s.stamp()
	}
	r.s.auditLogs = append(r.s.auditLogs, log.Clone())
	return nil
}

func (r *auditRepository) List(ctx context.Context, limit int) ([]*model.AuditLog, error) {
	if err := r.s.wait(ctx, "audit_log.list"); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*model.AuditLog, 0, len(r.s.auditLogs))
	for _, a := range r.s.auditLogs {
		out = append(out, a.Clone())
	}
	newestFirst(out, func(a *model.AuditLog) time.Time { return a.Timestamp })
	return out[:limitOf(len(out), limit)], nil
}

type syncJobRepository struct {
	s *Store
}

func (r *syncJobRepository) Create(ctx context.Context, job *model.SyncJob) error {
	if err := r.s.wait(ctx, "sync_job.create"); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if job.ID == uuid.Nil {
		job.ID = r.s.newID()
	}
	job.CreatedAt = r.s.stamp()
	r.s.syncJobs = append(r.s.syncJobs, job.Clone())
	return nil
}

func (r *syncJobRepository) List(ctx context.Context, limit int) ([]*model.SyncJob, error) {
	if err := r.s.wait(ctx, "sync_job.list"); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*model.SyncJob, 0, len(r.s.syncJobs))
	for _, j := range r.s.syncJobs {
		out = append(out, j.Clone())
	}
	newestFirst(out, func(j *model.SyncJob) time.Time { return j.CreatedAt })
	return out[:limitOf(len(out), limit)], nil
}
