package notification

import (
	"fmt"
	"strings"
	"time"

	"github.com/jwalitptl/solar-admin/internal/model"
	"github.com/jwalitptl/solar-admin/pkg/errors"
	"github.com/jwalitptl/solar-admin/pkg/mergetag"
)

const deadlineDays = 7

// newDraft seeds a draft for a freshly opened dialog.
func newDraft(id string, kind model.DraftKind, mode model.NotificationMode, record *model.CustomerPreOrder, now time.Time) (*model.Draft, error) {
	mode, err := resolveMode(kind, mode)
	if err != nil {
		return nil, err
	}

	method := record.FulfillmentMethod
	if method == "" {
		method = model.FulfillmentPickup
	}

	d := &model.Draft{
		ID:                 id,
		Kind:               kind,
		State:              model.DraftOpen,
		CustomerPreOrderID: record.ID,
		Channels:           []model.Channel{model.ChannelEmail},
		Fulfillment:        method,
		OpenedAt:           now,
		UpdatedAt:          now,
	}
	if record.PickupLocation != nil {
		d.PickupLocationID = record.PickupLocation.ID
	}
	if record.DeliveryAddress != nil {
		addr := *record.DeliveryAddress
		d.DeliveryAddress = &addr
	}
	reseed(d, mode, now)
	return d, nil
}

// resolveMode applies the kind's default and rejects modes it does not allow.
func resolveMode(kind model.DraftKind, mode model.NotificationMode) (model.NotificationMode, error) {
	switch kind {
	case model.KindBalanceReminder:
		if mode != "" && mode != model.ModeBalance {
			return "", errors.NewBadRequest("balance reminders only support balance mode", nil)
		}
		return model.ModeBalance, nil
	case model.KindCustomerNotification:
		switch mode {
		case "":
			return model.ModeReady, nil
		case model.ModeReady, model.ModeBalance:
			return mode, nil
		}
		return "", errors.NewBadRequest(fmt.Sprintf("unknown notification mode %q", mode), nil)
	default:
		return "", errors.NewBadRequest(fmt.Sprintf("unknown draft kind %q", kind), nil)
	}
}

// reseed resets subject, message and dates to the canonical defaults for mode.
// Edits to those fields are discarded.
func reseed(d *model.Draft, mode model.NotificationMode, now time.Time) {
	d.Mode = mode
	d.Subject, d.Message = defaultTemplate(d.Kind, mode, d.Fulfillment)
	d.Deadline = now.AddDate(0, 0, deadlineDays).Format(model.DateLayout)
	d.ReadyDate = now.Format(model.DateLayout)
}

// switchMode changes the mode of a draft. Switching to the current mode is a no-op.
func switchMode(d *model.Draft, mode model.NotificationMode, now time.Time) error {
	resolved, err := resolveMode(d.Kind, mode)
	if err != nil {
		return err
	}
	if resolved == d.Mode {
		return nil
	}
	reseed(d, resolved, now)
	return nil
}

// setFulfillment changes the fulfillment method. In ready mode the message's
// address line is swapped for the new method's line by exact substring
// replacement of the first occurrence. It reports whether a swap was attempted
// and whether it found the line to patch. An admin-edited line is left as is.
func setFulfillment(d *model.Draft, method model.FulfillmentMethod) (attempted, patched bool) {
	prev := d.Fulfillment
	if prev == "" {
		prev = model.FulfillmentPickup
	}
	d.Fulfillment = method
	if d.Mode != model.ModeReady || prev == method {
		return false, false
	}

	from, to := addressLine(prev), addressLine(method)
	if !strings.Contains(d.Message, from) {
		return true, false
	}
	d.Message = replaceOnce(d.Message, from, to)
	return true, true
}

func replaceOnce(s, old, repl string) string {
	return strings.Replace(s, old, repl, 1)
}

// insertTag places a merge tag into the subject or message at a cursor position.
func insertTag(d *model.Draft, field, token string, pos int) (int, error) {
	if !mergetag.Known(token) {
		return 0, errors.NewValidation(fmt.Sprintf("unknown merge tag %q", token), "token")
	}
	var cursor int
	switch field {
	case "subject":
		d.Subject, cursor = mergetag.Insert(d.Subject, token, pos)
	case "", "message":
		d.Message, cursor = mergetag.Insert(d.Message, token, pos)
	default:
		return 0, errors.NewValidation(fmt.Sprintf("cannot insert into %q", field), "field")
	}
	return cursor, nil
}

// buildRequest packages the raw templates and the fields relevant to the mode.
func buildRequest(d *model.Draft) *model.NotificationRequest {
	req := &model.NotificationRequest{
		CustomerPreOrderID: d.CustomerPreOrderID,
		Mode:               d.Mode,
		Channels:           append([]model.Channel(nil), d.Channels...),
		Subject:            d.Subject,
		Message:            d.Message,
		Reason:             strings.TrimSpace(d.Reason),
	}
	switch d.Mode {
	case model.ModeBalance:
		req.PaymentDeadline = d.Deadline
	case model.ModeReady:
		req.ReadyDate = d.ReadyDate
		req.FulfillmentMethod = d.Fulfillment
		if d.Fulfillment == model.FulfillmentDelivery {
			if d.DeliveryAddress != nil {
				addr := *d.DeliveryAddress
				req.DeliveryAddress = &addr
			}
		} else {
			req.PickupLocationID = d.PickupLocationID
		}
	}
	return req
}
