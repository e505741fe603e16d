package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/puskesmas-merdeka/simpus-api/internal/model"
	"github.com/puskesmas-merdeka/simpus-api/internal/repository"
)

type diagnosisRepository struct {
	s *Store
}

func (r *diagnosisRepository) Create(ctx context.Context, diagnosis *model.Diagnosis) error {
	if err := r.s.wait(ctx, "diagnosis.create"); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if diagnosis.ID == uuid.Nil {
		diagnosis.ID = r.s.newID()
	}
	diagnosis.CreatedAt = r.s.stamp()
	c := *diagnosis
	r.s.diagnoses = append(r.s.diagnoses, &c)
	return nil
}

func (r *diagnosisRepository) Get(ctx context.Context, id uuid.UUID) (*model.Diagnosis, error) {
	if err := r.s.wait(ctx, "diagnosis.get"); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, d := range r.s.diagnoses {
		if d.ID == id {
			c := *d
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *diagnosisRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.s.wait(ctx, "diagnosis.delete"); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i, d := range r.s.diagnoses {
		if d.ID == id {
			r.s.diagnoses = append(r.s.diagnoses[:i:i], r.s.diagnoses[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *diagnosisRepository) ListByEncounter(ctx context.Context, encounterID uuid.UUID) ([]*model.Diagnosis, error) {
	if err := r.s.wait(ctx, "diagnosis.list_by_encounter"); err != nil {
		return nil, err
	}
	return r.collect(func(d *model.Diagnosis) bool { return d.EncounterID == encounterID }), nil
}

func (r *diagnosisRepository) List(ctx context.Context) ([]*model.Diagnosis, error) {
	if err := r.s.wait(ctx, "diagnosis.list"); err != nil {
		return nil, err
	}
	return r.collect(func(*model.Diagnosis) bool { return true }), nil
}

func (r *diagnosisRepository) collect(keep func(*model.Diagnosis) bool) []*model.Diagnosis {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*model.Diagnosis, 0)
	for _, d := range r.s.diagnoses {
		if keep(d) {
			c := *d
			out = append(out, &c)
		}
	}
	return out
}
