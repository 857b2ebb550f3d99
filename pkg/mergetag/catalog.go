// Package mergetag implements the {{token}} placeholders used in customer
// notification templates: a fixed catalog of supported tags and a literal,
// single-pass renderer.
package mergetag

// Entry is a supported placeholder and the hint shown on its insert button.
type Entry struct {
	Token       string `json:"token"`
	Tag         string `json:"tag"`
	Description string `json:"description"`
}

const (
	CustomerName      = "customer_name"
	ProductName       = "product_name"
	OrderReference    = "order_reference"
	Quantity          = "quantity"
	RemainingAmount   = "remaining_amount"
	PaymentDeadline   = "payment_deadline"
	Reason            = "reason"
	ReadyDate         = "ready_date"
	FulfillmentMethod = "fulfillment_method"
	PickupLocation    = "pickup_location"
	PickupAddress     = "pickup_address"
	DeliveryAddress   = "delivery_address"
)

// catalog order is the replacement priority order.
var catalog = []Entry{
	{Token: CustomerName, Description: "Customer's full name"},
	{Token: ProductName, Description: "Pre-order product name"},
	{Token: OrderReference, Description: "Pre-order reference number"},
	{Token: Quantity, Description: "Quantity reserved"},
	{Token: RemainingAmount, Description: "Outstanding balance (calculated when sent)"},
	{Token: PaymentDeadline, Description: "Balance payment deadline"},
	{Token: Reason, Description: "Reason given for this notice"},
	{Token: ReadyDate, Description: "Date the order is ready"},
	{Token: FulfillmentMethod, Description: "Pickup or delivery"},
	{Token: PickupLocation, Description: "Pickup location name"},
	{Token: PickupAddress, Description: "Pickup location address"},
	{Token: DeliveryAddress, Description: "Customer delivery address"},
}

var index = func() map[string]int {
	m := make(map[string]int, len(catalog))
	for i, e := range catalog {
		m[e.Token] = i
	}
	return m
}()

// Entries returns a copy of the catalog in registration order.
func Entries() []Entry {
	out := make([]Entry, len(catalog))
	for i, e := range catalog {
		e.Tag = Placeholder(e.Token)
		out[i] = e
	}
	return out
}

// Known reports whether token is in the catalog.
func Known(token string) bool {
	_, ok := index[token]
	return ok
}

// Placeholder returns the literal tag for token, e.g. {{customer_name}}.
func Placeholder(token string) string {
	return "{{" + token + "}}"
}
