package memory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/puskesmas-merdeka/simpus-api/internal/model"
	"github.com/puskesmas-merdeka/simpus-api/internal/repository"
)

type patientRepository struct {
	s *Store
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	if err := r.s.wait(ctx, "patient.create"); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.stamp()
	if patient.ID == uuid.Nil {
		patient.ID = r.s.newID()
	}
	patient.CreatedAt = now
	patient.UpdatedAt = now
	patient.Revision = 1
	r.s.patients = append(r.s.patients, patient.Clone())
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	if err := r.s.wait(ctx, "patient.get"); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.patients {
		if p.ID == id {
			return p.Clone(), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient, expectedRevision int64) error {
	if err := r.s.wait(ctx, "patient.update"); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i, p := range r.s.patients {
		if p.ID != patient.ID {
			continue
		}
		if expectedRevision != 0 && expectedRevision != p.Revision {
			return repository.ErrRevisionConflict
		}
		patient.CreatedAt = p.CreatedAt
		patient.UpdatedAt = r.s.stamp()
		patient.Revision = p.Revision + 1
		r.s.patients[i] = patient.Clone()
		return nil
	}
	return repository.ErrNotFound
}

func (r *patientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.s.wait(ctx, "patient.delete"); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i, p := range r.s.patients {
		if p.ID == id {
			r.s.patients = append(r.s.patients[:i:i], r.s.patients[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *patientRepository) List(ctx context.Context) ([]*model.Patient, error) {
	if err := r.s.wait(ctx, "patient.list"); err != nil {
		return nil, err
	}
	return r.filter(func(*model.Patient) bool { return true }), nil
}

func (r *patientRepository) Search(ctx context.Context, query string) ([]*model.Patient, error) {
	if err := r.s.wait(ctx, "patient.search"); err != nil {
		return nil, err
	}

	q := strings.TrimSpace(query)
	if q == "" {
		return r.filter(func(*model.Patient) bool { return true }), nil
	}
	lower := strings.ToLower(q)

	return r.filter(func(p *model.Patient) bool {
		return strings.Contains(strings.ToLower(p.Name), lower) ||
			strings.Contains(p.NIK, q) ||
			strings.Contains(p.BPJSNumber, q)
	}), nil
}

func (r *patientRepository) filter(keep func(*model.Patient) bool) []*model.Patient {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*model.Patient, 0, len(r.s.patients))
	for _, p := range r.s.patients {
		if keep(p) {
			out = append(out, p.Clone())
		}
	}
	newestFirst(out, func(p *model.Patient) time.Time { return p.CreatedAt })
	return out
}
