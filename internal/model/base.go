package model

import (
	"encoding/json"
	"net/url"
	"strconv"
	"time"
)

// Base contains common fields for records owned by the commerce backend.
// IDs are opaque backend identifiers.
type Base struct {
	ID        string     `json:"id"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func (b Base) GetID() string { return b.ID }

// Pagination represents common pagination parameters
type Pagination struct {
	Page     int `json:"page" form:"page"`
	PageSize int `json:"page_size" form:"page_size"`
}

// SortOrder represents sorting parameters
type SortOrder struct {
	Field string `json:"field" form:"sort_field"`
	Dir   string `json:"direction" form:"sort_dir"`
}

// BaseFilter contains common filter fields
type BaseFilter struct {
	Pagination
	SortOrder
	SearchTerm string `json:"search" form:"search"`
	Status     string `json:"status" form:"status"`
}

// Query renders the filter as backend query parameters; zero values are omitted.
func (f BaseFilter) Query() url.Values {
	q := url.Values{}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.PageSize > 0 {
		q.Set("limit", strconv.Itoa(f.PageSize))
	}
	if f.SearchTerm != "" {
		q.Set("search", f.SearchTerm)
	}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Field != "" {
		q.Set("sort", f.Field)
		if f.Dir != "" {
			q.Set("order", f.Dir)
		}
	}
	return q
}

// JSONMap represents a generic JSON object
type JSONMap map[string]interface{}

// Envelope is the commerce backend's response wrapper.
type Envelope struct {
	Success *bool           `json:"success,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}
