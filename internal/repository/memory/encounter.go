package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/puskesmas-merdeka/simpus-api/internal/dateutil"
	"github.com/puskesmas-merdeka/simpus-api/internal/model"
	"github.com/puskesmas-merdeka/simpus-api/internal/repository"
)

type encounterRepository struct {
	s *Store
}

func (r *encounterRepository) Create(ctx context.Context, encounter *model.Encounter) error {
	if err := r.s.wait(ctx, "encounter.create"); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.stamp()
	if encounter.ID == uuid.Nil {
		encounter.ID = r.s.newID()
	}
	encounter.CreatedAt = now
	encounter.UpdatedAt = now
	encounter.Revision = 1
	r.s.encounters = append(r.s.encounters, encounter.Clone())
	return nil
}

func (r *encounterRepository) Get(ctx context.Context, id uuid.UUID) (*model.Encounter, error) {
	if err := r.s.wait(ctx, "encounter.get"); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, e := range r.s.encounters {
		if e.ID == id {
			return e.Clone(), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *encounterRepository) Update(ctx context.Context, encounter *model.Encounter, expectedRevision int64) error {
	if err := r.s.wait(ctx, "encounter.update"); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i, e := range r.s.encounters {
		if e.ID != encounter.ID {
			continue
		}
		if expectedRevision != 0 && expectedRevision != e.Revision {
			return repository.ErrRevisionConflict
		}
		encounter.CreatedAt = e.CreatedAt
		encounter.UpdatedAt = r.s.stamp()
		encounter.Revision = e.Revision + 1
		r.s.encounters[i] = encounter.Clone()
		return nil
	}
	return repository.ErrNotFound
}

func (r *encounterRepository) List(ctx context.Context, filter *model.EncounterFilter) ([]*model.Encounter, error) {
	if err := r.s.wait(ctx, "encounter.list"); err != nil {
		return nil, err
	}
	if filter == nil {
		filter = &model.EncounterFilter{}
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*model.Encounter, 0, len(r.s.encounters))
	for _, e := range r.s.encounters {
		if filter.PatientID != uuid.Nil && e.PatientID != filter.PatientID {
			continue
		}
		if filter.Poli != "" && e.Poli != filter.Poli {
			continue
		}
		if !dateutil.InRange(e.VisitedAt, filter.StartDate, filter.EndDate) {
			continue
		}
		out = append(out, e.Clone())
	}
	newestFirst(out, func(e *model.Encounter) time.Time { return e.VisitedAt })
	return out, nil
}
