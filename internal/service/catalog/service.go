// Package catalog is the CRUD pass-through for the dashboard's resources:
// products, categories, promotions, pre-orders, pickup locations and admin users.
package catalog

import (
	"context"
	"fmt"

	"github.com/jwalitptl/solar-admin/internal/backend"
	"github.com/jwalitptl/solar-admin/internal/model"
	"github.com/jwalitptl/solar-admin/internal/repository"
	"github.com/jwalitptl/solar-admin/internal/service/audit"
	"github.com/jwalitptl/solar-admin/pkg/errors"
)

// Encoder turns a bound form into the body sent to the backend.
type Encoder[R any] func(req *R, files []backend.FilePart) (interface{}, error)

// JSON forwards the form as a JSON document. Files are not accepted.
func JSON[R any](req *R, files []backend.FilePart) (interface{}, error) {
	if len(files) > 0 {
		return nil, errors.NewBadRequest("file uploads are not supported for this resource", nil)
	}
	return req, nil
}

// Hooks customise create and update checks beyond the form's binding rules.
type Hooks[R any] struct {
	BeforeCreate func(req *R) error
	BeforeUpdate func(req *R) error
}

type Service[T any, R any] struct {
	entity  string
	repo    repository.ResourceRepository[T]
	encode  Encoder[R]
	hooks   Hooks[R]
	auditor *audit.AuditLogger
	idOf    func(*T) string
}

func NewService[T any, R any](entity string, repo repository.ResourceRepository[T], encode Encoder[R],
	hooks Hooks[R], auditor *audit.AuditLogger, idOf func(*T) string) *Service[T, R] {
	if encode == nil {
		encode = JSON[R]
	}
	return &Service[T, R]{
		entity:  entity,
		repo:    repo,
		encode:  encode,
		hooks:   hooks,
		auditor: auditor,
		idOf:    idOf,
	}
}

// Entity is the audit name of the resource.
func (s *Service[T, R]) Entity() string { return s.entity }

func (s *Service[T, R]) List(ctx context.Context, actor model.Actor, filter model.BaseFilter) ([]T, error) {
	return s.repo.List(ctx, actor.Token, filter)
}

func (s *Service[T, R]) Get(ctx context.Context, actor model.Actor, id string) (*T, error) {
	return s.repo.Get(ctx, actor.Token, id)
}

func (s *Service[T, R]) Create(ctx context.Context, actor model.Actor, req *R, files []backend.FilePart) (*T, error) {
	if s.hooks.BeforeCreate != nil {
		if err := s.hooks.BeforeCreate(req); err != nil {
			return nil, err
		}
	}
	body, err := s.encode(req, files)
	if err != nil {
		return nil, err
	}

	out, err := s.repo.Create(ctx, actor.Token, body)
	if err != nil {
		return nil, err
	}
	s.auditor.Log(ctx, actor, audit.ActionCreate, s.entity, s.id(out), nil)
	return out, nil
}

func (s *Service[T, R]) Update(ctx context.Context, actor model.Actor, id string, req *R, files []backend.FilePart) (*T, error) {
	if s.hooks.BeforeUpdate != nil {
		if err := s.hooks.BeforeUpdate(req); err != nil {
			return nil, err
		}
	}
	body, err := s.encode(req, files)
	if err != nil {
		return nil, err
	}

	out, err := s.repo.Update(ctx, actor.Token, id, body)
	if err != nil {
		return nil, err
	}
	s.auditor.Log(ctx, actor, audit.ActionUpdate, s.entity, id, nil)
	return out, nil
}

func (s *Service[T, R]) Delete(ctx context.Context, actor model.Actor, id string) error {
	if err := s.repo.Delete(ctx, actor.Token, id); err != nil {
		return err
	}
	s.auditor.Log(ctx, actor, audit.ActionDelete, s.entity, id, nil)
	return nil
}

func (s *Service[T, R]) id(v *T) string {
	if v == nil || s.idOf == nil {
		return ""
	}
	return s.idOf(v)
}

func requireField(name, value string) error {
	if value == "" {
		return errors.NewValidation(fmt.Sprintf("%s is required", name), name)
	}
	return nil
}
