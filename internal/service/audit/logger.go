package audit

import (
	"context"
	"sync"

	"github.com/jwalitptl/solar-admin/internal/model"
	"github.com/jwalitptl/solar-admin/pkg/logger"
)

// AuditLogger records entries off the request path. Failures are logged,
// never returned to the admin.
type AuditLogger struct {
	service *Service
	logger  *logger.Logger
	wg      sync.WaitGroup
}

func NewAuditLogger(service *Service, log *logger.Logger) *AuditLogger {
	if log == nil {
		log = logger.Nop()
	}
	return &AuditLogger{
		service: service,
		logger:  log,
	}
}

func (l *AuditLogger) Log(ctx context.Context, actor model.Actor, action, entityType, entityID string, metadata interface{}) {
	if l == nil || !l.service.Enabled() {
		return
	}

	// Async logging; the request context is about to be cancelled.
	ctx = context.WithoutCancel(ctx)
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		if err := l.service.Log(ctx, actor, action, entityType, entityID, metadata); err != nil {
			l.logger.Error(err, "failed to write audit log", "action", action, "entity_type", entityType, "entity_id", entityID)
		}
	}()
}

func (l *AuditLogger) LogSync(ctx context.Context, actor model.Actor, action, entityType, entityID string, metadata interface{}) error {
	if l == nil {
		return nil
	}
	return l.service.Log(ctx, actor, action, entityType, entityID, metadata)
}

// Wait blocks until pending entries are written.
func (l *AuditLogger) Wait() {
	if l != nil {
		l.wg.Wait()
	}
}
