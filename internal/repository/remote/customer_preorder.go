package remote

import (
	"context"
	"net/http"

	"github.com/jwalitptl/solar-admin/internal/backend"
	"github.com/jwalitptl/solar-admin/internal/model"
	"github.com/jwalitptl/solar-admin/internal/repository"
)

type customerPreOrderRepository struct {
	*Resource[model.CustomerPreOrder]
}

func NewCustomerPreOrderRepository(client *backend.Client) repository.CustomerPreOrderRepository {
	return &customerPreOrderRepository{
		Resource: NewResource[model.CustomerPreOrder](client, PathCustomerPreOrders, "customer_preorders", "customer_preorder"),
	}
}

func (r *customerPreOrderRepository) UpdateStatus(ctx context.Context, token, id string, req *model.CustomerPreOrderStatusRequest) (*model.CustomerPreOrder, error) {
	resp, err := r.client.Do(ctx, backend.Request{
		Method: http.MethodPut,
		Path:   r.itemPath(id) + "/status",
		Token:  token,
		Body:   req,
	})
	if err != nil {
		return nil, backend.ToAppError(r.name, err)
	}
	return r.decode(resp)
}
