package database

import (
	"log"
	"strings"
	"time"

	"erp-backend/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// statementTimeout bounds every statement on the session; a single slow
// query cannot hold a request open past this.
const statementTimeout = "30000" // milliseconds

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(withStatementTimeout(dsn)), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Role{},
		&model.Currency{},
		&model.Region{},
		&model.Supplier{},
		&model.Product{},
		&model.Warehouse{},
		&model.PurchaseOrder{},
		&model.PurchaseOrderItem{},
		&model.PurchaseOrderSmartStatus{},
		&model.OrderUpdateReason{},
		&model.PurchaseInvoice{},
		&model.PurchaseInvoiceItem{},
		&model.BudgetAllocation{},
		&model.InventoryRecord{},
		&model.StockTransaction{},
		&model.StockInEvidence{},
		&model.AuditEntry{},
	)
	if err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}

// withStatementTimeout appends statement_timeout to the DSN unless the
// caller already set one. pgx forwards unrecognized URL parameters to the
// server as session settings.
func withStatementTimeout(dsn string) string {
	if strings.Contains(dsn, "statement_timeout") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "statement_timeout=" + statementTimeout
}
