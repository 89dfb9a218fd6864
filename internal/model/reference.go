package model

import (
	"time"

	"github.com/google/uuid"
)

// Currency is a reference row for order/invoice currencies.
// Exchange rates are NOT stored here: every order, invoice and budget
// allocation carries its own local-per-USD rate captured at document time.
type Currency struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code      string    `gorm:"type:varchar(10);uniqueIndex;not null" json:"code"` // e.g. "VND", "USD"
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Region groups purchase orders for reporting (e.g. "APAC", "EMEA")
type Region struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
