package model

import (
	"time"

	"github.com/google/uuid"
)

// Audited entity types
const (
	AuditEntityOrder     = "purchase_order"
	AuditEntityOrderItem = "purchase_order_item"
)

// AuditEntry is one append-only field-level change record: for every field
// that differs between the pre-update and post-update snapshot of an order or
// one of its items, one row stores the old and new value stringified.
// Rows are never mutated after insertion.
type AuditEntry struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EntityType   string     `gorm:"type:varchar(50);not null;index" json:"entity_type"` // purchase_order, purchase_order_item
	EntityID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"entity_id"`
	ChangedField string     `gorm:"type:varchar(100);not null" json:"changed_field"`
	OldValue     string     `gorm:"type:text" json:"old_value"`
	NewValue     string     `gorm:"type:text" json:"new_value"`
	ChangedBy    *uuid.UUID `gorm:"type:uuid;index" json:"changed_by"`
	ChangedUser  *User      `gorm:"foreignKey:ChangedBy" json:"changed_user,omitempty"`
	ChangedAt    time.Time  `gorm:"autoCreateTime;index" json:"changed_at"`
}
