package notification

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/solar-admin/internal/backend"
	"github.com/jwalitptl/solar-admin/internal/model"
	"github.com/jwalitptl/solar-admin/pkg/errors"
	"github.com/jwalitptl/solar-admin/pkg/metrics"
)

type mockOrders struct {
	mock.Mock
}

func (m *mockOrders) List(ctx context.Context, token string, filter model.BaseFilter) ([]model.CustomerPreOrder, error) {
	args := m.Called(ctx, token, filter)
	return args.Get(0).([]model.CustomerPreOrder), args.Error(1)
}

func (m *mockOrders) Get(ctx context.Context, token, id string) (*model.CustomerPreOrder, error) {
	args := m.Called(ctx, token, id)
	if r := args.Get(0); r != nil {
		return r.(*model.CustomerPreOrder), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrders) UpdateStatus(ctx context.Context, token, id string, req *model.CustomerPreOrderStatusRequest) (*model.CustomerPreOrder, error) {
	args := m.Called(ctx, token, id, req)
	return args.Get(0).(*model.CustomerPreOrder), args.Error(1)
}

type mockLocations struct {
	mock.Mock
}

func (m *mockLocations) List(ctx context.Context, token string, filter model.BaseFilter) ([]model.PickupLocation, error) {
	args := m.Called(ctx, token, filter)
	return args.Get(0).([]model.PickupLocation), args.Error(1)
}

func (m *mockLocations) Get(ctx context.Context, token, id string) (*model.PickupLocation, error) {
	args := m.Called(ctx, token, id)
	if r := args.Get(0); r != nil {
		return r.(*model.PickupLocation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockLocations) Create(ctx context.Context, token string, body interface{}) (*model.PickupLocation, error) {
	args := m.Called(ctx, token, body)
	return args.Get(0).(*model.PickupLocation), args.Error(1)
}

func (m *mockLocations) Update(ctx context.Context, token, id string, body interface{}) (*model.PickupLocation, error) {
	args := m.Called(ctx, token, id, body)
	return args.Get(0).(*model.PickupLocation), args.Error(1)
}

func (m *mockLocations) Delete(ctx context.Context, token, id string) error {
	return m.Called(ctx, token, id).Error(0)
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, token string, kind model.DraftKind, req *model.NotificationRequest) (*model.NotificationResult, error) {
	args := m.Called(ctx, token, kind, req)
	if r := args.Get(0); r != nil {
		return r.(*model.NotificationResult), args.Error(1)
	}
	return nil, args.Error(1)
}

type stubAddressBook map[string]model.SavedAddress

func (b stubAddressBook) Get(_ context.Context, adminID, id string) (*model.SavedAddress, error) {
	a, ok := b[adminID+"/"+id]
	if !ok {
		return nil, errors.NewNotFound("saved address", nil)
	}
	return &a, nil
}

type fixture struct {
	svc       *Service
	orders    *mockOrders
	locations *mockLocations
	sender    *mockSender
	actor     model.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		orders:    new(mockOrders),
		locations: new(mockLocations),
		sender:    new(mockSender),
		actor:     model.Actor{AdminID: "admin-1", Token: "backend-token"},
	}
	book := stubAddressBook{
		"admin-1/addr-1": {ID: "addr-1", Label: "Site", Address: model.Address{Line1: "9 Solar Close", City: "Abuja"}},
	}
	f.svc = NewService(Config{DraftTTL: time.Minute}, f.orders, f.locations, f.sender, book, nil, nil, nil,
		metrics.NewMetrics("test", prometheus.NewRegistry()))
	f.svc.now = func() time.Time { return today }
	f.orders.On("Get", mock.Anything, "backend-token", "cpo-1").Return(sampleRecord(), nil)
	return f
}

func (f *fixture) open(t *testing.T, kind model.DraftKind, mode model.NotificationMode) *model.DraftView {
	t.Helper()
	v, err := f.svc.Open(context.Background(), f.actor, &model.OpenDraftRequest{Kind: kind, Mode: mode, CustomerPreOrderID: "cpo-1"})
	require.NoError(t, err)
	return v
}

func ptr[T any](v T) *T { return &v }

func TestService_OpenRendersPreview(t *testing.T) {
	f := newFixture(t)
	v := f.open(t, model.KindCustomerNotification, model.ModeReady)

	assert.Equal(t, "Your 5kVA Hybrid Inverter pre-order is ready", v.Preview.Subject)
	assert.Contains(t, v.Preview.Message, "Hello Jane Doe,")
	assert.Contains(t, v.Preview.Message, "Pickup location: Ikeja Hub, 12 Allen Ave, Lagos")
	assert.Contains(t, v.Preview.Message, "$[Remaining Balance]")
	assert.Contains(t, v.Draft.Message, "{{customer_name}}")
	assert.Empty(t, v.Preview.UnknownTags)
	assert.Nil(t, v.Preview.AddressLinePatched)
}

func TestService_OpenUnknownOrder(t *testing.T) {
	f := newFixture(t)
	f.orders.On("Get", mock.Anything, "backend-token", "missing").Return(nil, errors.NewNotFound("customer_preorder", nil))

	_, err := f.svc.Open(context.Background(), f.actor, &model.OpenDraftRequest{Kind: model.KindCustomerNotification, CustomerPreOrderID: "missing"})
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestService_DraftsAreScopedToAdmin(t *testing.T) {
	f := newFixture(t)
	v := f.open(t, model.KindCustomerNotification, "")

	_, err := f.svc.Get(context.Background(), model.Actor{AdminID: "admin-2"}, v.Draft.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestService_UpdateModeSwitchAppliedFirst(t *testing.T) {
	f := newFixture(t)
	v := f.open(t, model.KindCustomerNotification, model.ModeReady)

	v, err := f.svc.Update(context.Background(), f.actor, v.Draft.ID, &model.DraftUpdate{
		Mode:    ptr(model.ModeBalance),
		Reason:  ptr("Shipment landed early"),
		Subject: ptr("Custom subject {{order_reference}}"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.ModeBalance, v.Draft.Mode)
	assert.Equal(t, "Custom subject PO-1042", v.Preview.Subject)
	assert.Contains(t, v.Preview.Message, "Shipment landed early")
	assert.Contains(t, v.Preview.Message, "by 2024-05-27")
}

func TestService_UpdateFulfillmentReportsPatch(t *testing.T) {
	f := newFixture(t)
	v := f.open(t, model.KindCustomerNotification, model.ModeReady)
	id := v.Draft.ID

	v, err := f.svc.Update(context.Background(), f.actor, id, &model.DraftUpdate{
		Fulfillment:   ptr(model.FulfillmentDelivery),
		AddressBookID: ptr("addr-1"),
	})
	require.NoError(t, err)
	require.NotNil(t, v.Preview.AddressLinePatched)
	assert.True(t, *v.Preview.AddressLinePatched)
	assert.Contains(t, v.Preview.Message, "Delivery address: 9 Solar Close, Abuja")

	edited := "Your order ships to you soon."
	_, err = f.svc.Update(context.Background(), f.actor, id, &model.DraftUpdate{Message: &edited})
	require.NoError(t, err)

	v, err = f.svc.Update(context.Background(), f.actor, id, &model.DraftUpdate{Fulfillment: ptr(model.FulfillmentPickup)})
	require.NoError(t, err)
	require.NotNil(t, v.Preview.AddressLinePatched)
	assert.False(t, *v.Preview.AddressLinePatched)
	assert.Equal(t, edited, v.Draft.Message)
}

func TestService_UpdatePickupLocationResolvesFromBackend(t *testing.T) {
	f := newFixture(t)
	v := f.open(t, model.KindCustomerNotification, model.ModeReady)
	f.locations.On("Get", mock.Anything, "backend-token", "loc-2").
		Return(&model.PickupLocation{Base: model.Base{ID: "loc-2"}, Name: "Lekki Depot", Address: "1 Admiralty Way"}, nil).Once()

	v, err := f.svc.Update(context.Background(), f.actor, v.Draft.ID, &model.DraftUpdate{PickupLocationID: ptr("loc-2")})
	require.NoError(t, err)
	assert.Contains(t, v.Preview.Message, "Pickup location: Lekki Depot, 1 Admiralty Way")
	f.locations.AssertExpectations(t)
}

func TestService_UpdateFailedLookupLeavesDraftUnchanged(t *testing.T) {
	tests := []struct {
		name string
		upd  *model.DraftUpdate
	}{
		{
			name: "unknown pickup location",
			upd: &model.DraftUpdate{
				Mode:             ptr(model.ModeBalance),
				Subject:          ptr("edited subject"),
				PickupLocationID: ptr("gone"),
			},
		},
		{
			name: "unknown saved address",
			upd: &model.DraftUpdate{
				Subject:       ptr("edited subject"),
				Fulfillment:   ptr(model.FulfillmentDelivery),
				AddressBookID: ptr("missing"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			before := f.open(t, model.KindCustomerNotification, model.ModeReady)
			f.locations.On("Get", mock.Anything, "backend-token", "gone").
				Return(nil, &backend.Error{Status: http.StatusNotFound, Message: "Pickup location not found"}).Maybe()

			_, err := f.svc.Update(context.Background(), f.actor, before.Draft.ID, tt.upd)
			require.Error(t, err)

			after, err := f.svc.Get(context.Background(), f.actor, before.Draft.ID)
			require.NoError(t, err)
			assert.Equal(t, model.ModeReady, after.Draft.Mode)
			assert.Equal(t, before.Draft.Subject, after.Draft.Subject)
			assert.Equal(t, before.Draft.Message, after.Draft.Message)
			assert.Equal(t, before.Draft.PickupLocationID, after.Draft.PickupLocationID)
			assert.Equal(t, before.Draft.Fulfillment, after.Draft.Fulfillment)
			assert.Equal(t, before.Preview.Message, after.Preview.Message)
		})
	}
}

func TestService_UntouchedDraftExpires(t *testing.T) {
	reg := prometheus.NewRegistry()
	orders := new(mockOrders)
	orders.On("Get", mock.Anything, "backend-token", "cpo-1").Return(sampleRecord(), nil)
	svc := NewService(Config{DraftTTL: 100 * time.Millisecond}, orders, nil, new(mockSender), nil, nil, nil, nil,
		metrics.NewMetrics("test", reg))
	actor := model.Actor{AdminID: "admin-1", Token: "backend-token"}

	v, err := svc.Open(context.Background(), actor, &model.OpenDraftRequest{
		Kind: model.KindBalanceReminder, CustomerPreOrderID: "cpo-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, draftsOpen(t, reg))

	require.Eventually(t, func() bool {
		_, err := svc.Get(context.Background(), actor, v.Draft.ID)
		return errors.Is(err, errors.ErrNotFound)
	}, 2*time.Second, 20*time.Millisecond)
	require.Eventually(t, func() bool {
		return draftsOpen(t, reg) == 0
	}, 2*time.Second, 20*time.Millisecond)
}

func draftsOpen(t *testing.T, reg *prometheus.Registry) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == "test_notification_drafts_open" {
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatal("drafts_open gauge not registered")
	return 0
}

func TestService_InsertTagAndUnknownTags(t *testing.T) {
	f := newFixture(t)
	v := f.open(t, model.KindBalanceReminder, "")

	_, err := f.svc.Update(context.Background(), f.actor, v.Draft.ID, &model.DraftUpdate{Subject: ptr("Hi {{custmer_name}} ")})
	require.NoError(t, err)

	v, cursor, err := f.svc.InsertTag(context.Background(), f.actor, v.Draft.ID, &model.InsertTagRequest{Token: "order_reference", Field: "subject", Position: -1})
	require.NoError(t, err)
	assert.Equal(t, "Hi {{custmer_name}} {{order_reference}}", v.Draft.Subject)
	assert.Equal(t, "Hi {{custmer_name}} PO-1042", v.Preview.Subject)
	assert.Equal(t, []string{"custmer_name"}, v.Preview.UnknownTags)
	assert.Equal(t, len([]rune(v.Draft.Subject)), cursor)
}

func TestService_SubmitValidationBlocksSend(t *testing.T) {
	tests := []struct {
		name  string
		upd   model.DraftUpdate
		field string
	}{
		{"blank message", model.DraftUpdate{Message: ptr("   ")}, "message"},
		{"blank subject", model.DraftUpdate{Subject: ptr("")}, "subject"},
		{"no channel", model.DraftUpdate{Channels: &[]model.Channel{}}, "channels"},
		{"balance without deadline", model.DraftUpdate{Mode: ptr(model.ModeBalance), Deadline: ptr("")}, "payment_deadline"},
		{"ready without ready date", model.DraftUpdate{ReadyDate: ptr("")}, "ready_date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			v := f.open(t, model.KindCustomerNotification, model.ModeReady)
			_, err := f.svc.Update(context.Background(), f.actor, v.Draft.ID, &tt.upd)
			require.NoError(t, err)

			_, err = f.svc.Submit(context.Background(), f.actor, v.Draft.ID)
			require.Error(t, err)
			appErr, ok := errors.As(err)
			require.True(t, ok)
			assert.Equal(t, errors.ErrValidation, appErr.Code)
			assert.Contains(t, appErr.Fields, tt.field)

			f.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			got, err := f.svc.Get(context.Background(), f.actor, v.Draft.ID)
			require.NoError(t, err)
			assert.Equal(t, model.DraftOpen, got.Draft.State)
		})
	}
}

func TestService_SubmitSendsRawTemplateAndCloses(t *testing.T) {
	f := newFixture(t)
	v := f.open(t, model.KindCustomerNotification, model.ModeReady)

	f.sender.On("Send", mock.Anything, "backend-token", model.KindCustomerNotification, mock.MatchedBy(func(r *model.NotificationRequest) bool {
		return r.CustomerPreOrderID == "cpo-1" && r.Message == v.Draft.Message && r.ReadyDate == "2024-05-20"
	})).Return(&model.NotificationResult{Message: "Notification sent"}, nil).Once()

	res, err := f.svc.Submit(context.Background(), f.actor, v.Draft.ID)
	require.NoError(t, err)
	assert.Equal(t, "Notification sent", res.Message)

	_, err = f.svc.Get(context.Background(), f.actor, v.Draft.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	f.sender.AssertExpectations(t)
}

func TestService_SubmitFailureKeepsDraftOpen(t *testing.T) {
	f := newFixture(t)
	v := f.open(t, model.KindBalanceReminder, "")
	_, err := f.svc.Update(context.Background(), f.actor, v.Draft.ID, &model.DraftUpdate{Reason: ptr("Final notice")})
	require.NoError(t, err)

	f.sender.On("Send", mock.Anything, mock.Anything, model.KindBalanceReminder, mock.Anything).
		Return(nil, &backend.Error{Status: http.StatusUnprocessableEntity, Message: "Customer has no phone number"}).Once()

	_, err = f.svc.Submit(context.Background(), f.actor, v.Draft.ID)
	require.Error(t, err)
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, "Customer has no phone number", appErr.Message)
	assert.Equal(t, errors.ErrBadRequest, appErr.Code)

	got, err := f.svc.Get(context.Background(), f.actor, v.Draft.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DraftOpen, got.Draft.State)
	assert.Equal(t, "Final notice", got.Draft.Reason)
	f.sender.AssertNumberOfCalls(t, "Send", 1)
}

func TestService_SubmitNetworkFailureUsesGenericMessage(t *testing.T) {
	f := newFixture(t)
	v := f.open(t, model.KindBalanceReminder, "")
	f.sender.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, context.DeadlineExceeded).Once()

	_, err := f.svc.Submit(context.Background(), f.actor, v.Draft.ID)
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrUpstream, appErr.Code)
	assert.Equal(t, backend.GenericFailure, appErr.Message)
}

func TestService_OneSubmissionInFlight(t *testing.T) {
	f := newFixture(t)
	v := f.open(t, model.KindBalanceReminder, "")

	release := make(chan struct{})
	started := make(chan struct{})
	f.sender.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(&model.NotificationResult{Message: "ok"}, nil).Once()

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = f.svc.Submit(context.Background(), f.actor, v.Draft.ID)
	}()
	<-started

	_, err := f.svc.Submit(context.Background(), f.actor, v.Draft.ID)
	assert.True(t, errors.Is(err, errors.ErrConflict))

	_, err = f.svc.Update(context.Background(), f.actor, v.Draft.ID, &model.DraftUpdate{Reason: ptr("x")})
	assert.True(t, errors.Is(err, errors.ErrConflict))

	assert.True(t, errors.Is(f.svc.Close(context.Background(), f.actor, v.Draft.ID), errors.ErrConflict))

	close(release)
	wg.Wait()
	require.NoError(t, firstErr)
	f.sender.AssertNumberOfCalls(t, "Send", 1)
}

func TestService_CloseDiscards(t *testing.T) {
	f := newFixture(t)
	v := f.open(t, model.KindCustomerNotification, "")

	require.NoError(t, f.svc.Close(context.Background(), f.actor, v.Draft.ID))
	_, err := f.svc.Get(context.Background(), f.actor, v.Draft.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestService_MergeTags(t *testing.T) {
	f := newFixture(t)
	tags := f.svc.MergeTags()
	require.Len(t, tags, 12)
	assert.Equal(t, "{{customer_name}}", tags[0].Tag)
}
