package catalog

import (
	"context"

	"github.com/jwalitptl/solar-admin/internal/model"
	"github.com/jwalitptl/solar-admin/internal/repository"
	"github.com/jwalitptl/solar-admin/internal/service/audit"
)

// CustomerPreOrderService reads customer reservations and moves them through
// the backend's status lifecycle.
type CustomerPreOrderService struct {
	repo    repository.CustomerPreOrderRepository
	auditor *audit.AuditLogger
}

func NewCustomerPreOrderService(repo repository.CustomerPreOrderRepository, auditor *audit.AuditLogger) *CustomerPreOrderService {
	return &CustomerPreOrderService{repo: repo, auditor: auditor}
}

func (s *CustomerPreOrderService) List(ctx context.Context, actor model.Actor, filter model.BaseFilter) ([]model.CustomerPreOrder, error) {
	return s.repo.List(ctx, actor.Token, filter)
}

func (s *CustomerPreOrderService) Get(ctx context.Context, actor model.Actor, id string) (*model.CustomerPreOrder, error) {
	return s.repo.Get(ctx, actor.Token, id)
}

func (s *CustomerPreOrderService) UpdateStatus(ctx context.Context, actor model.Actor, id string, req *model.CustomerPreOrderStatusRequest) (*model.CustomerPreOrder, error) {
	cpo, err := s.repo.UpdateStatus(ctx, actor.Token, id, req)
	if err != nil {
		return nil, err
	}
	s.auditor.Log(ctx, actor, audit.ActionStatus, "customer_preorder", id, map[string]string{
		"status": req.Status,
		"note":   req.Note,
	})
	return cpo, nil
}
