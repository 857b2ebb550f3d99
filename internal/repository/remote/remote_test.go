package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/solar-admin/internal/backend"
	"github.com/jwalitptl/solar-admin/internal/model"
	"github.com/jwalitptl/solar-admin/pkg/errors"
)

func newClient(t *testing.T, h http.HandlerFunc) *backend.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return backend.NewClient(backend.Config{BaseURL: srv.URL, Timeout: time.Second}, nil, nil)
}

func TestResource_ListShapes(t *testing.T) {
	bodies := map[string]string{
		"bare array": `[{"id":"1","name":"Panel"}]`,
		"data array": `{"success":true,"data":[{"id":"1","name":"Panel"}]}`,
		"data items": `{"success":true,"data":{"items":[{"id":"1","name":"Panel"}],"total":1}}`,
		"data keyed": `{"success":true,"data":{"products":[{"id":"1","name":"Panel"}]}}`,
		"items":      `{"items":[{"id":"1","name":"Panel"}]}`,
		"keyed":      `{"products":[{"id":"1","name":"Panel"}]}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, PathProducts, r.URL.Path)
				assert.Equal(t, "solar", r.URL.Query().Get("search"))
				_, _ = w.Write([]byte(body))
			})
			repo := NewResource[model.Product](client, PathProducts, "products", "product")

			items, err := repo.List(context.Background(), "tok", model.BaseFilter{SearchTerm: "solar"})
			require.NoError(t, err)
			require.Len(t, items, 1)
			assert.Equal(t, "Panel", items[0].Name)
		})
	}
}

func TestResource_ListUnknownShape(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`"unexpected"`))
	})
	repo := NewResource[model.Category](client, PathCategories, "categories", "category")

	_, err := repo.List(context.Background(), "tok", model.BaseFilter{})
	assert.Error(t, err)
}

func TestResource_GetAndDelete(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == PathPickupLocations+"/loc-1":
			_, _ = w.Write([]byte(`{"success":true,"data":{"pickup_location":{"id":"loc-1","name":"Ikeja Hub","address":"12 Allen Ave"}}}`))
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"success":false,"message":"Pickup location not found"}`))
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
	})
	repo := NewResource[model.PickupLocation](client, PathPickupLocations, "pickup_locations", "pickup_location")

	loc, err := repo.Get(context.Background(), "tok", "loc-1")
	require.NoError(t, err)
	assert.Equal(t, "Ikeja Hub", loc.Name)
	assert.Equal(t, "12 Allen Ave", loc.Address)

	err = repo.Delete(context.Background(), "tok", "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	appErr, _ := errors.As(err)
	assert.Equal(t, "Pickup location not found", appErr.Message)
}

func TestResource_CreateMultipart(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Lithium battery", r.FormValue("name"))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":"p9","name":"Lithium battery"}}`))
	})
	repo := NewResource[model.Product](client, PathProducts, "products", "product")

	p, err := repo.Create(context.Background(), "tok", backend.NewMultipart().Set("name", "Lithium battery"))
	require.NoError(t, err)
	assert.Equal(t, "p9", p.ID)
}

func TestCustomerPreOrderRepository_UpdateStatus(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, PathCustomerPreOrders+"/cpo-1/status", r.URL.Path)
		var body model.CustomerPreOrderStatusRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ready", body.Status)
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":"cpo-1","status":"ready"}}`))
	})
	repo := NewCustomerPreOrderRepository(client)

	cpo, err := repo.UpdateStatus(context.Background(), "tok", "cpo-1", &model.CustomerPreOrderStatusRequest{Status: "ready"})
	require.NoError(t, err)
	assert.Equal(t, "ready", cpo.Status)
}

func TestNotificationRepository_Send(t *testing.T) {
	var gotPath string
	var got model.NotificationRequest
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"success":true,"message":"Notification queued","data":{"queued":2}}`))
	})
	repo := NewNotificationRepository(client)

	req := &model.NotificationRequest{
		CustomerPreOrderID: "cpo-7",
		Mode:               model.ModeBalance,
		Channels:           []model.Channel{model.ChannelEmail},
		Subject:            "Balance due",
		Message:            "Hi {{customer_name}}",
		PaymentDeadline:    "2024-06-01",
	}
	res, err := repo.Send(context.Background(), "tok", model.KindBalanceReminder, req)
	require.NoError(t, err)
	assert.Equal(t, PathCustomerPreOrders+"/cpo-7/balance-reminder", gotPath)
	assert.Equal(t, "Hi {{customer_name}}", got.Message)
	assert.Equal(t, "Notification queued", res.Message)

	_, err = repo.Send(context.Background(), "tok", model.KindCustomerNotification, req)
	require.NoError(t, err)
	assert.Equal(t, PathCustomerPreOrders+"/cpo-7/notify", gotPath)

	_, err = repo.Send(context.Background(), "tok", model.DraftKind("fax"), req)
	assert.Error(t, err)
}

func TestAuthRepository_LoginShapes(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		token string
		admin string
	}{
		{"data token", `{"success":true,"data":{"token":"t1","admin":{"id":"a1","name":"Ada"}}}`, "t1", "Ada"},
		{"data access token", `{"data":{"access_token":"t2","user":{"id":"a1","name":"Bola"}}}`, "t2", "Bola"},
		{"root token", `{"token":"t3","user":{"name":"Chi"}}`, "t3", "Chi"},
		{"root access token", `{"access_token":"t4","expires_in":3600}`, "t4", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, PathLogin, r.URL.Path)
				_, _ = w.Write([]byte(tt.body))
			})
			repo := NewAuthRepository(client)

			sess, err := repo.Login(context.Background(), &model.LoginRequest{Email: "ops@example.com", Password: "secret"})
			require.NoError(t, err)
			assert.Equal(t, tt.token, sess.Token)
			assert.Equal(t, tt.admin, sess.Admin.Name)
			assert.Equal(t, "ops@example.com", sess.Admin.Email)
		})
	}
}

func TestAuthRepository_LoginRejected(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"message":"Invalid credentials"}`))
	})
	repo := NewAuthRepository(client)

	_, err := repo.Login(context.Background(), &model.LoginRequest{Email: "x@example.com", Password: "bad"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))
}

func TestAuthRepository_LoginWithoutToken(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":{"admin":{"name":"Ada"}}}`))
	})
	repo := NewAuthRepository(client)

	_, err := repo.Login(context.Background(), &model.LoginRequest{Email: "x@example.com", Password: "pw"})
	assert.Error(t, err)
}
