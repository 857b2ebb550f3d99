package notification

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/solar-admin/internal/model"
	"github.com/jwalitptl/solar-admin/pkg/errors"
)

var today = time.Date(2024, 5, 20, 9, 30, 0, 0, time.UTC)

func TestNewDraft_Defaults(t *testing.T) {
	d, err := newDraft("d1", model.KindCustomerNotification, "", sampleRecord(), today)
	require.NoError(t, err)

	assert.Equal(t, model.ModeReady, d.Mode)
	assert.Equal(t, model.DraftOpen, d.State)
	assert.Equal(t, []model.Channel{model.ChannelEmail}, d.Channels)
	assert.Equal(t, "2024-05-27", d.Deadline)
	assert.Equal(t, "2024-05-20", d.ReadyDate)
	assert.Equal(t, model.FulfillmentPickup, d.Fulfillment)
	assert.Equal(t, "loc-1", d.PickupLocationID)
	assert.Contains(t, d.Message, PickupLine)
	assert.NotContains(t, d.Message, DeliveryLine)
}

func TestNewDraft_DeliveryRecordSeedsDeliveryLine(t *testing.T) {
	record := sampleRecord()
	record.FulfillmentMethod = model.FulfillmentDelivery
	d, err := newDraft("d1", model.KindCustomerNotification, model.ModeReady, record, today)
	require.NoError(t, err)
	assert.Contains(t, d.Message, DeliveryLine)
	assert.NotContains(t, d.Message, PickupLine)
}

func TestNewDraft_Modes(t *testing.T) {
	d, err := newDraft("d1", model.KindBalanceReminder, "", sampleRecord(), today)
	require.NoError(t, err)
	assert.Equal(t, model.ModeBalance, d.Mode)
	assert.Equal(t, reminderTemplate.Subject, d.Subject)

	_, err = newDraft("d1", model.KindBalanceReminder, model.ModeReady, sampleRecord(), today)
	assert.True(t, errors.Is(err, errors.ErrBadRequest))

	_, err = newDraft("d1", model.DraftKind("sms_blast"), "", sampleRecord(), today)
	assert.True(t, errors.Is(err, errors.ErrBadRequest))

	_, err = newDraft("d1", model.KindCustomerNotification, model.NotificationMode("urgent"), sampleRecord(), today)
	assert.True(t, errors.Is(err, errors.ErrBadRequest))
}

func TestSwitchMode_ResetsEdits(t *testing.T) {
	d, err := newDraft("d1", model.KindCustomerNotification, model.ModeReady, sampleRecord(), today)
	require.NoError(t, err)
	d.Subject = "edited"
	d.Message = "edited body"
	d.Deadline = "2030-01-01"

	require.NoError(t, switchMode(d, model.ModeBalance, today))
	assert.Equal(t, model.ModeBalance, d.Mode)
	assert.Equal(t, balanceTemplate.Subject, d.Subject)
	assert.Equal(t, balanceTemplate.Message, d.Message)
	assert.Equal(t, "2024-05-27", d.Deadline)

	d.Subject = "edited again"
	require.NoError(t, switchMode(d, model.ModeReady, today))
	subject, message := defaultTemplate(model.KindCustomerNotification, model.ModeReady, model.FulfillmentPickup)
	assert.Equal(t, subject, d.Subject)
	assert.Equal(t, message, d.Message)
}

func TestSwitchMode_SameModeKeepsEdits(t *testing.T) {
	d, err := newDraft("d1", model.KindCustomerNotification, model.ModeReady, sampleRecord(), today)
	require.NoError(t, err)
	d.Subject = "edited"
	require.NoError(t, switchMode(d, model.ModeReady, today))
	assert.Equal(t, "edited", d.Subject)
}

func TestSetFulfillment_SwapsExactlyOneLine(t *testing.T) {
	d, err := newDraft("d1", model.KindCustomerNotification, model.ModeReady, sampleRecord(), today)
	require.NoError(t, err)
	d.Message = "Intro line edited by hand\n\n" + PickupLine + "\n\nOutro, also edited. " + PickupLine
	before := d.Message

	attempted, patched := setFulfillment(d, model.FulfillmentDelivery)
	assert.True(t, attempted)
	assert.True(t, patched)
	assert.Equal(t, strings.Replace(before, PickupLine, DeliveryLine, 1), d.Message)
	assert.Equal(t, 1, strings.Count(d.Message, DeliveryLine))
	assert.Equal(t, 1, strings.Count(d.Message, PickupLine))

	attempted, patched = setFulfillment(d, model.FulfillmentPickup)
	assert.True(t, attempted)
	assert.True(t, patched)
	assert.Equal(t, before, d.Message)
}

func TestSetFulfillment_EditedLineIsLeftAlone(t *testing.T) {
	d, err := newDraft("d1", model.KindCustomerNotification, model.ModeReady, sampleRecord(), today)
	require.NoError(t, err)
	d.Message = strings.Replace(d.Message, PickupLine, "Collect from our Ikeja hub", 1)
	before := d.Message

	attempted, patched := setFulfillment(d, model.FulfillmentDelivery)
	assert.True(t, attempted)
	assert.False(t, patched)
	assert.Equal(t, before, d.Message)
	assert.Equal(t, model.FulfillmentDelivery, d.Fulfillment)
}

func TestSetFulfillment_OutsideReadyMode(t *testing.T) {
	d, err := newDraft("d1", model.KindCustomerNotification, model.ModeBalance, sampleRecord(), today)
	require.NoError(t, err)
	before := d.Message

	attempted, _ := setFulfillment(d, model.FulfillmentDelivery)
	assert.False(t, attempted)
	assert.Equal(t, before, d.Message)
	assert.Equal(t, model.FulfillmentDelivery, d.Fulfillment)

	attempted, _ = setFulfillment(d, model.FulfillmentDelivery)
	assert.False(t, attempted)
}

func TestInsertTag(t *testing.T) {
	d := &model.Draft{Subject: "Hi ", Message: "Dear ,"}

	cursor, err := insertTag(d, "message", "customer_name", 5)
	require.NoError(t, err)
	assert.Equal(t, "Dear {{customer_name}},", d.Message)
	assert.Equal(t, 5+len("{{customer_name}}"), cursor)

	_, err = insertTag(d, "subject", "product_name", -1)
	require.NoError(t, err)
	assert.Equal(t, "Hi {{product_name}}", d.Subject)

	_, err = insertTag(d, "message", "customer_nmae", 0)
	assert.True(t, errors.Is(err, errors.ErrValidation))

	_, err = insertTag(d, "footer", "customer_name", 0)
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestBuildRequest_ModeSpecificFields(t *testing.T) {
	d, err := newDraft("d1", model.KindCustomerNotification, model.ModeReady, sampleRecord(), today)
	require.NoError(t, err)

	req := buildRequest(d)
	assert.Equal(t, "cpo-1", req.CustomerPreOrderID)
	assert.Equal(t, d.Message, req.Message)
	assert.Contains(t, req.Message, "{{customer_name}}")
	assert.Equal(t, "2024-05-20", req.ReadyDate)
	assert.Equal(t, "loc-1", req.PickupLocationID)
	assert.Empty(t, req.PaymentDeadline)

	require.NoError(t, switchMode(d, model.ModeBalance, today))
	req = buildRequest(d)
	assert.Equal(t, "2024-05-27", req.PaymentDeadline)
	assert.Empty(t, req.ReadyDate)
	assert.Empty(t, req.FulfillmentMethod)
}
