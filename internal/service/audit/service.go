package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/solar-admin/internal/model"
	"github.com/jwalitptl/solar-admin/internal/repository"
)

// Actions recorded in the audit trail.
const (
	ActionCreate       = "create"
	ActionUpdate       = "update"
	ActionDelete       = "delete"
	ActionStatus       = "status_change"
	ActionNotify       = "notify"
	ActionLogin        = "login"
	ActionLogout       = "logout"
	ActionSaveAddress  = "save_address"
	ActionRemoveAddress = "remove_address"
)

// Service writes the admin action trail. A Service without a repository
// records nothing; the audit database is optional.
type Service struct {
	repo repository.AuditRepository
	now  func() time.Time
}

func NewService(repo repository.AuditRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Enabled reports whether entries are persisted.
func (s *Service) Enabled() bool {
	return s != nil && s.repo != nil
}

// Log creates an audit log entry
func (s *Service) Log(ctx context.Context, actor model.Actor, action, entityType, entityID string, metadata interface{}) error {
	if !s.Enabled() {
		return nil
	}

	var raw json.RawMessage
	if metadata != nil {
		b, err := json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("encode audit metadata: %w", err)
		}
		raw = b
	}

	return s.repo.Create(ctx, &model.AuditLog{
		ID:         uuid.New(),
		AdminID:    actor.AdminID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Metadata:   raw,
		IPAddress:  actor.IPAddress,
		CreatedAt:  s.now().UTC(),
	})
}

func (s *Service) List(ctx context.Context, filter model.AuditFilter) ([]*model.AuditLog, error) {
	if !s.Enabled() {
		return []*model.AuditLog{}, nil
	}
	return s.repo.List(ctx, filter)
}

// Prune deletes entries older than retention.
func (s *Service) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	if !s.Enabled() || retention <= 0 {
		return 0, nil
	}
	return s.repo.Cleanup(ctx, s.now().Add(-retention))
}
