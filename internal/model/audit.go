package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditLog records an admin action passed through to the backend.
type AuditLog struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	AdminID    string          `db:"admin_id" json:"admin_id"`
	Action     string          `db:"action" json:"action"`
	EntityType string          `db:"entity_type" json:"entity_type"`
	EntityID   string          `db:"entity_id" json:"entity_id"`
	Metadata   json.RawMessage `db:"metadata" json:"metadata,omitempty"`
	IPAddress  string          `db:"ip_address" json:"ip_address,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

type AuditFilter struct {
	AdminID    string    `form:"admin_id"`
	EntityType string    `form:"entity_type"`
	EntityID   string    `form:"entity_id"`
	Since      time.Time `form:"since" time_format:"2006-01-02"`
	Limit      int       `form:"limit"`
}
