package model

import "time"

// SavedAddress is an address-book entry kept per admin.
type SavedAddress struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Address   Address   `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

type SaveAddressRequest struct {
	Label   string  `json:"label" binding:"required,max=64"`
	Address Address `json:"address" binding:"required"`
}
