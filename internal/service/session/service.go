package session

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/solar-admin/internal/model"
	"github.com/jwalitptl/solar-admin/internal/repository"
	"github.com/jwalitptl/solar-admin/internal/service/audit"
	"github.com/jwalitptl/solar-admin/internal/storage"
	"github.com/jwalitptl/solar-admin/pkg/auth"
	"github.com/jwalitptl/solar-admin/pkg/errors"
	"github.com/jwalitptl/solar-admin/pkg/logger"
	"github.com/jwalitptl/solar-admin/pkg/metrics"
)

const defaultTTL = 12 * time.Hour

// Key is the store key of a session.
func Key(id string) string { return "session:" + id }

type Service struct {
	repo    repository.AuthRepository
	store   storage.Store
	jwt     auth.JWTService
	ttl     time.Duration
	auditor *audit.AuditLogger
	logger  *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(repo repository.AuthRepository, store storage.Store, jwtSvc auth.JWTService,
	ttl time.Duration, auditor *audit.AuditLogger, log *logger.Logger, m *metrics.Metrics) *Service {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:    repo,
		store:   store,
		jwt:     jwtSvc,
		ttl:     ttl,
		auditor: auditor,
		logger:  log.With("component", "session"),
		metrics: m,
		now:     time.Now,
	}
}

// Login authenticates against the backend and opens a dashboard session
// holding the backend token.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest, ipAddress string) (*model.LoginResult, error) {
	bs, err := s.repo.Login(ctx, req)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	expires := now.Add(s.ttl)
	if bs.ExpiresAt != nil && bs.ExpiresAt.Before(expires) {
		expires = bs.ExpiresAt.UTC()
	}
	if !expires.After(now) {
		return nil, errors.Unauthorized(fmt.Errorf("backend session expired at %s", expires.Format(time.RFC3339)))
	}

	sess := &model.Session{
		ID:           uuid.NewString(),
		Admin:        bs.Admin,
		BackendToken: bs.Token,
		CreatedAt:    now,
		ExpiresAt:    expires,
	}
	err = storage.SetJSON(ctx, s.store, Key(sess.ID), sess, expires.Sub(now))
	s.observe("set", err)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("store session: %w", err))
	}

	token, err := s.jwt.GenerateAccessToken(sess)
	if err != nil {
		_ = s.store.Remove(ctx, Key(sess.ID))
		return nil, errors.NewInternal(err)
	}

	s.logger.Info("admin logged in", "admin_id", sess.Admin.ID, "session_id", sess.ID)
	s.auditor.Log(ctx, Actor(sess, ipAddress), audit.ActionLogin, "session", sess.ID, nil)

	return &model.LoginResult{
		AccessToken: token,
		ExpiresAt:   expires,
		Admin:       sess.Admin,
	}, nil
}

// Authenticate resolves a dashboard token to its live session.
func (s *Service) Authenticate(ctx context.Context, token string) (*model.Session, error) {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil, errors.Unauthorized(err)
	}
	return s.Current(ctx, claims.SessionID)
}

func (s *Service) Current(ctx context.Context, sessionID string) (*model.Session, error) {
	var sess model.Session
	err := storage.GetJSON(ctx, s.store, Key(sessionID), &sess)
	if stderrors.Is(err, storage.ErrNotFound) {
		s.observe("get", nil)
		return nil, errors.Unauthorized(fmt.Errorf("session %s expired or logged out", sessionID))
	}
	s.observe("get", err)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &sess, nil
}

// Logout clears the session. The backend logout is best effort.
func (s *Service) Logout(ctx context.Context, sessionID, ipAddress string) error {
	sess, err := s.Current(ctx, sessionID)
	if err != nil {
		if errors.Is(err, errors.ErrUnauthorized) {
			return nil
		}
		return err
	}

	if err := s.repo.Logout(ctx, sess.BackendToken); err != nil {
		s.logger.Warn("backend logout failed", "session_id", sessionID, "error", err.Error())
	}

	err = s.store.Remove(ctx, Key(sessionID))
	s.observe("remove", err)
	if err != nil {
		return errors.NewInternal(err)
	}
	s.auditor.Log(ctx, Actor(sess, ipAddress), audit.ActionLogout, "session", sessionID, nil)
	return nil
}

// Actor builds the request identity from a session.
func Actor(sess *model.Session, ipAddress string) model.Actor {
	return model.Actor{
		SessionID: sess.ID,
		AdminID:   sess.Admin.ID,
		Token:     sess.BackendToken,
		IPAddress: ipAddress,
	}
}

func (s *Service) observe(op string, err error) {
	if s.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.metrics.StoreOperations.WithLabelValues(op, status).Inc()
}
