package notification

import (
	"strconv"
	"strings"
	"time"

	"github.com/jwalitptl/solar-admin/internal/model"
	"github.com/jwalitptl/solar-admin/pkg/mergetag"
)

const defaultCurrency = "$"

// ContextOptions tune how preview values are displayed.
type ContextOptions struct {
	// Currency prefixes monetary placeholders; defaults to "$".
	Currency string
	// DateFormat, when set, reformats draft dates for display.
	DateFormat string
	// PickupLocation overrides the record's location when the admin picked another.
	PickupLocation *model.PickupLocation
}

// BuildContext derives the preview values for a draft. Read-only values come
// from the record, editable ones from the draft. Anything missing renders as
// a bracketed placeholder. The remaining balance is never computed here; the
// backend fills it in when it sends.
func BuildContext(record *model.CustomerPreOrder, draft *model.Draft, opts ContextOptions) mergetag.Context {
	if record == nil {
		record = &model.CustomerPreOrder{}
	}
	if draft == nil {
		draft = &model.Draft{}
	}
	currency := opts.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	ctx := mergetag.Context{
		mergetag.CustomerName:    orPlaceholder(record.CustomerName, "Customer Name"),
		mergetag.ProductName:     orPlaceholder(record.ProductName, "Product Name"),
		mergetag.OrderReference:  orPlaceholder(firstNonEmpty(record.Reference, record.ID), "Order Reference"),
		mergetag.Quantity:        "[Quantity]",
		mergetag.RemainingAmount: currency + "[Remaining Balance]",
		mergetag.PaymentDeadline: orPlaceholder(formatDate(draft.Deadline, opts.DateFormat), "Deadline"),
		mergetag.Reason:          orPlaceholder(draft.Reason, "Reason"),
		mergetag.ReadyDate:       orPlaceholder(formatDate(draft.ReadyDate, opts.DateFormat), "Ready Date"),
	}
	if record.Quantity > 0 {
		ctx[mergetag.Quantity] = strconv.Itoa(record.Quantity)
	}

	method := draft.Fulfillment
	if method == "" {
		method = record.FulfillmentMethod
	}
	switch method {
	case model.FulfillmentDelivery:
		ctx[mergetag.FulfillmentMethod] = "Delivery"
	default:
		ctx[mergetag.FulfillmentMethod] = "Pickup"
	}

	loc := opts.PickupLocation
	if loc == nil {
		loc = record.PickupLocation
	}
	if loc != nil {
		ctx[mergetag.PickupLocation] = orPlaceholder(loc.Name, "Pickup Location")
		ctx[mergetag.PickupAddress] = orPlaceholder(joinNonEmpty(loc.Address, loc.City, loc.State), "Pickup Address")
	} else {
		ctx[mergetag.PickupLocation] = "[Pickup Location]"
		ctx[mergetag.PickupAddress] = "[Pickup Address]"
	}

	addr := draft.DeliveryAddress
	if addr == nil || addr.IsZero() {
		addr = record.DeliveryAddress
	}
	if addr != nil && !addr.IsZero() {
		ctx[mergetag.DeliveryAddress] = FormatAddress(*addr)
	} else {
		ctx[mergetag.DeliveryAddress] = "[Delivery Address]"
	}

	return ctx
}

// FormatAddress renders an address on one line.
func FormatAddress(a model.Address) string {
	return joinNonEmpty(a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Country)
}

func orPlaceholder(v, label string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return "[" + label + "]"
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func joinNonEmpty(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}

func formatDate(v, layout string) string {
	if v == "" || layout == "" {
		return v
	}
	t, err := time.Parse(model.DateLayout, v)
	if err != nil {
		return v
	}
	return t.Format(layout)
}
