// Package remote implements the repositories by passing every operation
// through to the commerce backend.
package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jwalitptl/solar-admin/internal/backend"
	"github.com/jwalitptl/solar-admin/internal/model"
	"github.com/jwalitptl/solar-admin/internal/repository"
	"github.com/jwalitptl/solar-admin/pkg/httputil"
)

// Backend resource paths.
const (
	PathProducts          = "/admin/products"
	PathCategories        = "/admin/categories"
	PathPromotions        = "/admin/promotions"
	PathPreOrders         = "/admin/preorders"
	PathPickupLocations   = "/admin/pickup-locations"
	PathAdminUsers        = "/admin/users"
	PathCustomerPreOrders = "/admin/customer-preorders"
	PathLogin             = "/admin/auth/login"
	PathLogout            = "/admin/auth/logout"
)

// Resource is a generic CRUD pass-through for one backend collection.
type Resource[T any] struct {
	client *backend.Client
	name   string
	path   string
	list   *httputil.Normalizer
	object *httputil.Normalizer
}

// NewResource binds a collection at path. plural and singular are the keys
// the backend may nest lists and records under, e.g. "products"/"product".
func NewResource[T any](client *backend.Client, path, plural, singular string) *Resource[T] {
	return &Resource[T]{
		client: client,
		name:   singular,
		path:   path,
		list:   httputil.ListShapes(plural),
		object: httputil.ObjectShapes(singular),
	}
}

var _ repository.ResourceRepository[model.Product] = (*Resource[model.Product])(nil)

func (r *Resource[T]) List(ctx context.Context, token string, filter model.BaseFilter) ([]T, error) {
	resp, err := r.client.Do(ctx, backend.Request{
		Method: http.MethodGet,
		Path:   r.path,
		Query:  filter.Query(),
		Token:  token,
	})
	if err != nil {
		return nil, backend.ToAppError(r.name, err)
	}

	var items []T
	if _, err := r.list.Decode(resp.Body, &items); err != nil {
		return nil, fmt.Errorf("list %s: %w", r.name, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (r *Resource[T]) Get(ctx context.Context, token, id string) (*T, error) {
	resp, err := r.client.Do(ctx, backend.Request{
		Method: http.MethodGet,
		Path:   r.itemPath(id),
		Token:  token,
	})
	if err != nil {
		return nil, backend.ToAppError(r.name, err)
	}
	return r.decode(resp)
}

func (r *Resource[T]) Create(ctx context.Context, token string, body interface{}) (*T, error) {
	resp, err := r.client.Do(ctx, backend.Request{
		Method: http.MethodPost,
		Path:   r.path,
		Token:  token,
		Body:   body,
	})
	if err != nil {
		return nil, backend.ToAppError(r.name, err)
	}
	return r.decode(resp)
}

func (r *Resource[T]) Update(ctx context.Context, token, id string, body interface{}) (*T, error) {
	resp, err := r.client.Do(ctx, backend.Request{
		Method: http.MethodPut,
		Path:   r.itemPath(id),
		Token:  token,
		Body:   body,
	})
	if err != nil {
		return nil, backend.ToAppError(r.name, err)
	}
	return r.decode(resp)
}

func (r *Resource[T]) Delete(ctx context.Context, token, id string) error {
	_, err := r.client.Do(ctx, backend.Request{
		Method: http.MethodDelete,
		Path:   r.itemPath(id),
		Token:  token,
	})
	if err != nil {
		return backend.ToAppError(r.name, err)
	}
	return nil
}

func (r *Resource[T]) itemPath(id string) string {
	return r.path + "/" + url.PathEscape(id)
}

// decode extracts a single record. Replies without a body yield a zero record.
func (r *Resource[T]) decode(resp *backend.Response) (*T, error) {
	out := new(T)
	if len(resp.Body) == 0 {
		return out, nil
	}
	if _, err := r.object.Decode(resp.Body, out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.name, err)
	}
	return out, nil
}

func NewProductRepository(client *backend.Client) repository.ResourceRepository[model.Product] {
	return NewResource[model.Product](client, PathProducts, "products", "product")
}

func NewCategoryRepository(client *backend.Client) repository.ResourceRepository[model.Category] {
	return NewResource[model.Category](client, PathCategories, "categories", "category")
}

func NewPromotionRepository(client *backend.Client) repository.ResourceRepository[model.Promotion] {
	return NewResource[model.Promotion](client, PathPromotions, "promotions", "promotion")
}

func NewPreOrderRepository(client *backend.Client) repository.ResourceRepository[model.PreOrder] {
	return NewResource[model.PreOrder](client, PathPreOrders, "preorders", "preorder")
}

func NewPickupLocationRepository(client *backend.Client) repository.ResourceRepository[model.PickupLocation] {
	return NewResource[model.PickupLocation](client, PathPickupLocations, "pickup_locations", "pickup_location")
}

func NewAdminUserRepository(client *backend.Client) repository.ResourceRepository[model.AdminUser] {
	return NewResource[model.AdminUser](client, PathAdminUsers, "users", "user")
}
