package model

import "time"

type Promotion struct {
	Base
	Title         string     `json:"title"`
	Code          string     `json:"code,omitempty"`
	Description   string     `json:"description,omitempty"`
	DiscountType  string     `json:"discount_type"`
	DiscountValue float64    `json:"discount_value"`
	StartsAt      *time.Time `json:"starts_at,omitempty"`
	EndsAt        *time.Time `json:"ends_at,omitempty"`
	ProductIDs    []string   `json:"product_ids,omitempty"`
	Active        bool       `json:"active"`
}

type PromotionRequest struct {
	Title         string    `json:"title" binding:"required"`
	Code          string    `json:"code" binding:"omitempty,alphanum,max=32"`
	Description   string    `json:"description"`
	DiscountType  string    `json:"discount_type" binding:"required,oneof=percentage fixed"`
	DiscountValue float64   `json:"discount_value" binding:"required,gt=0"`
	StartsAt      time.Time `json:"starts_at" binding:"required"`
	EndsAt        time.Time `json:"ends_at" binding:"required,gtfield=StartsAt"`
	ProductIDs    []string  `json:"product_ids"`
	Active        *bool     `json:"active"`
}
