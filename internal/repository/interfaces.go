package repository

import (
	"context"
	"time"

	"github.com/jwalitptl/solar-admin/internal/model"
)

// All repository interfaces in one file
type (
	// ResourceRepository passes CRUD operations for one backend resource through.
	// body is either a JSON-encodable request or a *backend.Multipart form.
	ResourceRepository[T any] interface {
		List(ctx context.Context, token string, filter model.BaseFilter) ([]T, error)
		Get(ctx context.Context, token, id string) (*T, error)
		Create(ctx context.Context, token string, body interface{}) (*T, error)
		Update(ctx context.Context, token, id string, body interface{}) (*T, error)
		Delete(ctx context.Context, token, id string) error
	}

	CustomerPreOrderRepository interface {
		List(ctx context.Context, token string, filter model.BaseFilter) ([]model.CustomerPreOrder, error)
		Get(ctx context.Context, token, id string) (*model.CustomerPreOrder, error)
		UpdateStatus(ctx context.Context, token, id string, req *model.CustomerPreOrderStatusRequest) (*model.CustomerPreOrder, error)
	}

	AuthRepository interface {
		Login(ctx context.Context, req *model.LoginRequest) (*model.BackendSession, error)
		Logout(ctx context.Context, token string) error
	}

	// NotificationRepository hands a composed notification to the backend,
	// which substitutes tags per recipient and delivers it.
	NotificationRepository interface {
		Send(ctx context.Context, token string, kind model.DraftKind, req *model.NotificationRequest) (*model.NotificationResult, error)
	}

	AuditRepository interface {
		Create(ctx context.Context, log *model.AuditLog) error
		List(ctx context.Context, filter model.AuditFilter) ([]*model.AuditLog, error)
		Cleanup(ctx context.Context, before time.Time) (int64, error)
	}
)
