package model

// FulfillmentMethod is how a ready order reaches the customer.
type FulfillmentMethod string

const (
	FulfillmentPickup   FulfillmentMethod = "pickup"
	FulfillmentDelivery FulfillmentMethod = "delivery"
)

// Address is a postal address as captured by the dashboard.
type Address struct {
	Line1      string `json:"line1" binding:"required"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city" binding:"required"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// IsZero reports whether no address line has been filled in.
func (a Address) IsZero() bool {
	return a.Line1 == "" && a.City == ""
}

// CustomerPreOrder (CPO) is a customer's reservation against a pre-order product.
type CustomerPreOrder struct {
	Base
	Reference         string            `json:"reference"`
	PreOrderID        string            `json:"preorder_id,omitempty"`
	CustomerID        string            `json:"customer_id,omitempty"`
	CustomerName      string            `json:"customer_name"`
	CustomerEmail     string            `json:"customer_email,omitempty"`
	CustomerPhone     string            `json:"customer_phone,omitempty"`
	ProductName       string            `json:"product_name"`
	Quantity          int               `json:"quantity"`
	DepositPaid       float64           `json:"deposit_paid,omitempty"`
	TotalAmount       float64           `json:"total_amount,omitempty"`
	Status            string            `json:"status,omitempty"`
	FulfillmentMethod FulfillmentMethod `json:"fulfillment_method,omitempty"`
	PickupLocation    *PickupLocation   `json:"pickup_location,omitempty"`
	DeliveryAddress   *Address          `json:"delivery_address,omitempty"`
}

type CustomerPreOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending deposit_paid awaiting_balance paid ready fulfilled cancelled"`
	Note   string `json:"note"`
}
