package lab

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/puskesmas-merdeka/simpus-api/internal/model"
	"github.com/puskesmas-merdeka/simpus-api/internal/repository"
	"github.com/puskesmas-merdeka/simpus-api/internal/service/audit"
)

type Service struct {
	orderRepo     repository.LabOrderRepository
	resultRepo    repository.LabResultRepository
	encounterRepo repository.EncounterRepository
	auditor       audit.Logger
}

func NewService(store *repository.Store, auditor audit.Logger) *Service {
	return &Service{
		orderRepo:     store.LabOrders,
		resultRepo:    store.LabResults,
		encounterRepo: store.Encounters,
		auditor:       auditor,
	}
}

func (s *Service) CreateOrder(ctx context.Context, req *model.CreateLabOrderRequest) (*model.LabOrder, error) {
	if _, err := s.encounterRepo.Get(ctx, req.EncounterID); err != nil {
		return nil, fmt.Errorf("failed to get encounter: %w", repository.AppError("Encounter", err))
	}

	order := &model.LabOrder{
		EncounterID: req.EncounterID,
		TestName:    strings.TrimSpace(req.TestName),
		Note:        req.Note,
		Status:      model.LabOrderPending,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create lab order: %w", err)
	}

	s.auditor.Log(ctx, model.AuditActionCreate, model.AuditEntityLabOrder, order.ID.String(), model.JSONMap{
		"encounter_id":      order.EncounterID.String(),
		"jenis_pemeriksaan": order.TestName,
	})
	return order, nil
}

// ListOrders lists every order when encounterID is uuid.Nil.
func (s *Service) ListOrders(ctx context.Context, encounterID uuid.UUID) ([]*model.LabOrder, error) {
	orders, err := s.orderRepo.List(ctx, encounterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lab orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus moves an order to any status; transitions are not checked.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, req *model.UpdateLabOrderStatusRequest) (*model.LabOrder, error) {
	order, err := s.orderRepo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get lab order: %w", repository.AppError("Lab order", err))
	}

	previous := order.Status
	order.Status = req.Status
	if err := s.orderRepo.Update(ctx, order, req.Revision); err != nil {
		return nil, fmt.Errorf("failed to update lab order: %w", repository.AppError("Lab order", err))
	}

	s.auditor.Log(ctx, model.AuditActionUpdate, model.AuditEntityLabOrder, id.String(), model.JSONMap{
		"from": string(previous),
		"to":   string(order.Status),
	})
	return order, nil
}

func (s *Service) ListResults(ctx context.Context, orderID uuid.UUID) ([]*model.LabResult, error) {
	if _, err := s.orderRepo.Get(ctx, orderID); err != nil {
		return nil, fmt.Errorf("failed to get lab order: %w", repository.AppError("Lab order", err))
	}
	results, err := s.resultRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lab results: %w", err)
	}
	return results, nil
}

// AddResult stores a result. When a numeric measurement is supplied the
// free-text fields left blank are filled from it; fields the caller set are
// kept as given even if they disagree.
func (s *Service) AddResult(ctx context.Context, orderID uuid.UUID, req *model.CreateLabResultRequest) (*model.LabResult, error) {
	if _, err := s.orderRepo.Get(ctx, orderID); err != nil {
		return nil, fmt.Errorf("failed to get lab order: %w", repository.AppError("Lab order", err))
	}

	result := &model.LabResult{
		LabOrderID:     orderID,
		Parameter:      strings.TrimSpace(req.Parameter),
		Value:          req.Value,
		Unit:           req.Unit,
		ReferenceRange: req.ReferenceRange,
		Interpretation: req.Interpretation,
	}
	if m := req.Measurement; m != nil {
		c := m.Clone()
		result.Measurement = &c
		if result.Value == "" {
			result.Value = m.Value.String()
		}
		if result.Unit == "" {
			result.Unit = m.Unit
		}
		if result.ReferenceRange == "" {
			result.ReferenceRange = m.ReferenceRange()
		}
		if result.Interpretation == "" {
			result.Interpretation = m.Interpret()
		}
	}

	if err := s.resultRepo.Create(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to create lab result: %w", err)
	}

	s.auditor.Log(ctx, model.AuditActionCreate, model.AuditEntityLabResult, result.ID.String(), model.JSONMap{
		"lab_order_id": orderID.String(),
		"parameter":    result.Parameter,
	})
	return result, nil
}
