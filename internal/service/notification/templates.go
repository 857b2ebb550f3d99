package notification

import (
	"github.com/jwalitptl/solar-admin/internal/model"
	"github.com/jwalitptl/solar-admin/pkg/mergetag"
)

// Address lines swapped when the fulfillment method changes in ready mode.
var (
	PickupLine   = "Pickup location: " + mergetag.Placeholder(mergetag.PickupLocation) + ", " + mergetag.Placeholder(mergetag.PickupAddress)
	DeliveryLine = "Delivery address: " + mergetag.Placeholder(mergetag.DeliveryAddress)
)

// addressLineMarker is replaced by PickupLine or DeliveryLine when seeding.
const addressLineMarker = "\x00address\x00"

type template struct {
	Subject string
	Message string
}

var readyTemplate = template{
	Subject: "Your {{product_name}} pre-order is ready",
	Message: "Hello {{customer_name}},\n\n" +
		"Good news! Your pre-order {{order_reference}} for {{quantity}} x {{product_name}} is ready as of {{ready_date}}.\n\n" +
		addressLineMarker + "\n\n" +
		"Any outstanding balance of {{remaining_amount}} must be settled before release. " +
		"Please quote your order reference when you get in touch.\n\n" +
		"Thank you for your order.",
}

var balanceTemplate = template{
	Subject: "Balance payment due for your {{product_name}} pre-order",
	Message: "Hello {{customer_name}},\n\n" +
		"Your pre-order {{order_reference}} for {{quantity}} x {{product_name}} has an outstanding balance of {{remaining_amount}}.\n\n" +
		"Please complete payment by {{payment_deadline}} to keep your reservation.\n\n" +
		"{{reason}}\n\n" +
		"Thank you.",
}

var reminderTemplate = template{
	Subject: "Reminder: balance due by {{payment_deadline}}",
	Message: "Hi {{customer_name}},\n\n" +
		"This is a reminder that {{remaining_amount}} is still outstanding on pre-order {{order_reference}} ({{product_name}}).\n" +
		"Please pay by {{payment_deadline}} so we can hold your {{quantity}} unit(s).\n\n" +
		"Reason: {{reason}}\n\n" +
		"Thank you.",
}

// addressLine returns the address fragment for a fulfillment method.
func addressLine(method model.FulfillmentMethod) string {
	if method == model.FulfillmentDelivery {
		return DeliveryLine
	}
	return PickupLine
}

// defaultTemplate returns the canonical subject and message for a dialog in mode.
func defaultTemplate(kind model.DraftKind, mode model.NotificationMode, method model.FulfillmentMethod) (string, string) {
	var t template
	switch {
	case kind == model.KindBalanceReminder:
		t = reminderTemplate
	case mode == model.ModeReady:
		t = readyTemplate
	default:
		t = balanceTemplate
	}
	msg := t.Message
	if mode == model.ModeReady {
		msg = replaceOnce(msg, addressLineMarker, addressLine(method))
	}
	return t.Subject, msg
}
