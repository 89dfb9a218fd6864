package model

import (
	"time"

	"github.com/google/uuid"
)

// RolePermissions is the full permission set a role grants, one named boolean
// per permission. Kept as a flat struct (embedded into Role as columns) so
// every permission is covered at compile time wherever it is read or written.
type RolePermissions struct {
	ManageUsers     bool `gorm:"default:false" json:"manage_users"`
	ManageRoles     bool `gorm:"default:false" json:"manage_roles"`
	ManageSuppliers bool `gorm:"default:false" json:"manage_suppliers"`
	ManageProducts  bool `gorm:"default:false" json:"manage_products"`
	ManageOrders    bool `gorm:"default:false" json:"manage_orders"`
	ApproveOrders   bool `gorm:"default:false" json:"approve_orders"`
	ManageInvoices  bool `gorm:"default:false" json:"manage_invoices"`
	ManageBudgets   bool `gorm:"default:false" json:"manage_budgets"`
	StockIn         bool `gorm:"default:false" json:"stock_in"`
	StockOut        bool `gorm:"default:false" json:"stock_out"`
	ViewReports     bool `gorm:"default:false" json:"view_reports"`
	ViewAuditLogs   bool `gorm:"default:false" json:"view_audit_logs"`
}

// AllPermissions grants everything; used for the built-in admin role
func AllPermissions() RolePermissions {
	return RolePermissions{
		ManageUsers:     true,
		ManageRoles:     true,
		ManageSuppliers: true,
		ManageProducts:  true,
		ManageOrders:    true,
		ApproveOrders:   true,
		ManageInvoices:  true,
		ManageBudgets:   true,
		StockIn:         true,
		StockOut:        true,
		ViewReports:     true,
		ViewAuditLogs:   true,
	}
}

// Role represents a user role with its permission set stored inline
type Role struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name            string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Description     string    `gorm:"type:text" json:"description"`
	IsSystem        bool      `gorm:"default:false" json:"is_system"` // Prevent deletion of built-in roles
	RolePermissions `gorm:"embedded" json:"permissions"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
