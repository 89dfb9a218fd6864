package repository

import (
	"context"

	"erp-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditRepository interface {
	CreateAll(ctx context.Context, entries []model.AuditEntry) error
	List(ctx context.Context, entityType string, entityID *uuid.UUID, page, limit int) ([]model.AuditEntry, int64, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) CreateAll(ctx context.Context, entries []model.AuditEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Create(&entries).Error
}

func (r *auditRepository) List(ctx context.Context, entityType string, entityID *uuid.UUID, page, limit int) ([]model.AuditEntry, int64, error) {
	var entries []model.AuditEntry
	var total int64

	db := GetDB(ctx, r.db).Model(&model.AuditEntry{})
	if entityType != "" {
		db = db.Where("entity_type = ?", entityType)
	}
	if entityID != nil {
		db = db.Where("entity_id = ?", *entityID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Preload("ChangedUser").Order("changed_at desc").Offset(offset).Limit(limit).Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
