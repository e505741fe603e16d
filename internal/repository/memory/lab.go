package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/puskesmas-merdeka/simpus-api/internal/model"
	"github.com/puskesmas-merdeka/simpus-api/internal/repository"
)

type labOrderRepository struct {
	s *Store
}

func (r *labOrderRepository) Create(ctx context.Context, order *model.LabOrder) error {
	if err := r.s.wait(ctx, "lab_order.create"); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.stamp()
	if order.ID == uuid.Nil {
		order.ID = r.s.newID()
	}
	order.CreatedAt = now
	order.UpdatedAt = now
	order.Revision = 1
	c := *order
	r.s.labOrders = append(r.s.labOrders, &c)
	return nil
}

func (r *labOrderRepository) Get(ctx context.Context, id uuid.UUID) (*model.LabOrder, error) {
	if err := r.s.wait(ctx, "lab_order.get"); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, o := range r.s.labOrders {
		if o.ID == id {
			c := *o
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *labOrderRepository) Update(ctx context.Context, order *model.LabOrder, expectedRevision int64) error {
	if err := r.s.wait(ctx, "lab_order.update"); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i, o := range r.s.labOrders {
		if o.ID != order.ID {
			continue
		}
		if expectedRevision != 0 && expectedRevision != o.Revision {
			return repository.ErrRevisionConflict
		}
		order.CreatedAt = o.CreatedAt
		order.UpdatedAt = r.s.stamp()
		order.Revision = o.Revision + 1
		c := *order
		r.s.labOrders[i] = &c
		return nil
	}
	return repository.ErrNotFound
}

func (r *labOrderRepository) List(ctx context.Context, encounterID uuid.UUID) ([]*model.LabOrder, error) {
	if err := r.s.wait(ctx, "lab_order.list"); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*model.LabOrder, 0, len(r.s.labOrders))
	for _, o := range r.s.labOrders {
		if encounterID != uuid.Nil && o.EncounterID != encounterID {
			continue
		}
		c := *o
		out = append(out, &c)
	}
	newestFirst(out, func(o *model.LabOrder) time.Time { return o.CreatedAt })
	return out, nil
}

type labResultRepository struct {
	s *Store
}

func (r *labResultRepository) Create(ctx context.Context, result *model.LabResult) error {
	if err := r.s.wait(ctx, "lab_result.create"); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if result.ID == uuid.Nil {
		result.ID = r.s.newID()
	}
	result.CreatedAt = r.s.stamp()
	r.s.labResults = append(r.s.labResults, result.Clone())
	return nil
}

func (r *labResultRepository) ListByOrder(ctx context.Context, labOrderID uuid.UUID) ([]*model.LabResult, error) {
	if err := r.s.wait(ctx, "lab_result.list"); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*model.LabResult, 0)
	for _, lr := range r.s.labResults {
		if lr.LabOrderID == labOrderID {
			out = append(out, lr.Clone())
		}
	}
	newestFirst(out, func(lr *model.LabResult) time.Time { return lr.CreatedAt })
	return out, nil
}
