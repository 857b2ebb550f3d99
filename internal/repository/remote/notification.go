package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jwalitptl/solar-admin/internal/backend"
	"github.com/jwalitptl/solar-admin/internal/model"
	"github.com/jwalitptl/solar-admin/internal/repository"
)

type notificationRepository struct {
	client *backend.Client
}

func NewNotificationRepository(client *backend.Client) repository.NotificationRepository {
	return &notificationRepository{client: client}
}

// sendPath returns the backend endpoint for a draft kind.
func sendPath(kind model.DraftKind, cpoID string) (string, error) {
	base := PathCustomerPreOrders + "/" + url.PathEscape(cpoID)
	switch kind {
	case model.KindCustomerNotification:
		return base + "/notify", nil
	case model.KindBalanceReminder:
		return base + "/balance-reminder", nil
	default:
		return "", fmt.Errorf("unknown draft kind %q", kind)
	}
}

// Send posts the raw templates. The backend reply message is surfaced verbatim.
func (r *notificationRepository) Send(ctx context.Context, token string, kind model.DraftKind, req *model.NotificationRequest) (*model.NotificationResult, error) {
	path, err := sendPath(kind, req.CustomerPreOrderID)
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Do(ctx, backend.Request{
		Method: http.MethodPost,
		Path:   path,
		Token:  token,
		Body:   req,
	})
	if err != nil {
		return nil, err
	}

	result := &model.NotificationResult{Message: resp.Envelope.Message}
	if len(resp.Envelope.Data) > 0 {
		var data interface{}
		if err := json.Unmarshal(resp.Envelope.Data, &data); err == nil {
			result.Data = data
		}
	}
	return result, nil
}
