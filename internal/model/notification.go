package model

import (
	"time"
)

type NotificationMode string

const (
	ModeReady   NotificationMode = "ready"
	ModeBalance NotificationMode = "balance"
)

type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
	ChannelInApp Channel = "in_app"
)

// DraftKind identifies which composition dialog a draft belongs to.
type DraftKind string

const (
	KindCustomerNotification DraftKind = "customer_notification"
	KindBalanceReminder      DraftKind = "balance_reminder"
)

type DraftState string

const (
	DraftOpen       DraftState = "open"
	DraftSubmitting DraftState = "submitting"
	DraftClosed     DraftState = "closed"
)

// DateLayout is the wire format of draft dates.
const DateLayout = "2006-01-02"

// Draft is the in-progress, unsaved composition state of a notification dialog.
// Message and Subject hold raw templates; tags are substituted per recipient by the backend.
type Draft struct {
	ID                 string            `json:"id"`
	Kind               DraftKind         `json:"kind"`
	State              DraftState        `json:"state"`
	CustomerPreOrderID string            `json:"customer_preorder_id"`
	AdminID            string            `json:"admin_id,omitempty"`
	Mode               NotificationMode  `json:"mode" validate:"oneof=ready balance"`
	Channels           []Channel         `json:"channels" validate:"min=1,dive,oneof=email sms in_app"`
	Subject            string            `json:"subject" validate:"notblank"`
	Message            string            `json:"message" validate:"notblank"`
	Deadline           string            `json:"payment_deadline,omitempty" validate:"required_if=Mode balance,omitempty,datetime=2006-01-02"`
	Reason             string            `json:"reason,omitempty"`
	ReadyDate          string            `json:"ready_date,omitempty" validate:"required_if=Mode ready,omitempty,datetime=2006-01-02"`
	Fulfillment        FulfillmentMethod `json:"fulfillment_method,omitempty" validate:"omitempty,oneof=pickup delivery"`
	PickupLocationID   string            `json:"pickup_location_id,omitempty"`
	DeliveryAddress    *Address          `json:"delivery_address,omitempty"`
	OpenedAt           time.Time         `json:"opened_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// HasChannel reports whether ch is selected.
func (d *Draft) HasChannel(ch Channel) bool {
	for _, c := range d.Channels {
		if c == ch {
			return true
		}
	}
	return false
}

// DraftUpdate is a partial edit; nil fields are left unchanged.
// A mode change is applied before every other field.
type DraftUpdate struct {
	Mode             *NotificationMode  `json:"mode" binding:"omitempty,oneof=ready balance"`
	Channels         *[]Channel         `json:"channels" binding:"omitempty,dive,oneof=email sms in_app"`
	Subject          *string            `json:"subject"`
	Message          *string            `json:"message"`
	Deadline         *string            `json:"payment_deadline" binding:"omitempty,datetime=2006-01-02"`
	Reason           *string            `json:"reason"`
	ReadyDate        *string            `json:"ready_date" binding:"omitempty,datetime=2006-01-02"`
	Fulfillment      *FulfillmentMethod `json:"fulfillment_method" binding:"omitempty,oneof=pickup delivery"`
	PickupLocationID *string            `json:"pickup_location_id"`
	DeliveryAddress  *Address           `json:"delivery_address"`
	AddressBookID    *string            `json:"address_book_id"`
}

type OpenDraftRequest struct {
	Kind               DraftKind        `json:"kind" binding:"required,oneof=customer_notification balance_reminder"`
	Mode               NotificationMode `json:"mode" binding:"omitempty,oneof=ready balance"`
	CustomerPreOrderID string           `json:"customer_preorder_id" binding:"required"`
}

type InsertTagRequest struct {
	Token string `json:"token" binding:"required"`
	// Field is subject or message.
	Field string `json:"field" binding:"omitempty,oneof=subject message"`
	// Position is the cursor as a Unicode code point (rune) offset. A
	// textarea's selectionStart counts UTF-16 code units, so callers convert
	// it first when the text holds characters outside the BMP (emoji).
	// Negative or out of range values append.
	Position int `json:"position"`
}

// Preview is a draft rendered against its current context.
type Preview struct {
	Subject            string   `json:"subject"`
	Message            string   `json:"message"`
	UnknownTags        []string `json:"unknown_tags,omitempty"`
	AddressLinePatched *bool    `json:"address_line_patched,omitempty"`
}

// DraftView is what the dashboard receives after every draft operation.
type DraftView struct {
	Draft   *Draft  `json:"draft"`
	Preview Preview `json:"preview"`
}

// NotificationRequest is posted to the backend. Subject and Message are raw templates.
type NotificationRequest struct {
	CustomerPreOrderID string            `json:"customer_preorder_id"`
	Mode               NotificationMode  `json:"mode"`
	Channels           []Channel         `json:"channels"`
	Subject            string            `json:"subject"`
	Message            string            `json:"message"`
	PaymentDeadline    string            `json:"payment_deadline,omitempty"`
	Reason             string            `json:"reason,omitempty"`
	ReadyDate          string            `json:"ready_date,omitempty"`
	FulfillmentMethod  FulfillmentMethod `json:"fulfillment_method,omitempty"`
	PickupLocationID   string            `json:"pickup_location_id,omitempty"`
	DeliveryAddress    *Address          `json:"delivery_address,omitempty"`
}

type NotificationResult struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}
