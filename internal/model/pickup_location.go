package model

type PickupLocation struct {
	Base
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Hours   string `json:"hours,omitempty"`
	Active  bool   `json:"active"`
}

type PickupLocationRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address" binding:"required"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state"`
	Phone   string `json:"phone"`
	Hours   string `json:"hours"`
	Active  *bool  `json:"active"`
}
