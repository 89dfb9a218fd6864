package service

import (
	"context"
	"sort"
	"time"

	"erp-backend/internal/model"
	"erp-backend/internal/repository"

	"github.com/google/uuid"
)

// DiffSnapshots compares a before/after snapshot of an entity and produces
// one append-only audit row per changed field. Comparison is strict string
// inequality; updated_at is excluded (it changes on every write). Keys only
// present in the before snapshot are ignored; the diff follows the shape of
// the update, not the full row.
func DiffSnapshots(entityType string, entityID uuid.UUID, before, after map[string]string, changedBy *uuid.UUID) []model.AuditEntry {
	fields := make([]string, 0, len(after))
	for field := range after {
		if field == "updated_at" {
			continue
		}
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var entries []model.AuditEntry
	for _, field := range fields {
		if before[field] == after[field] {
			continue
		}
		entries = append(entries, model.AuditEntry{
			EntityType:   entityType,
			EntityID:     entityID,
			ChangedField: field,
			OldValue:     before[field],
			NewValue:     after[field],
			ChangedBy:    changedBy,
		})
	}
	return entries
}

// --- DTOs ---

type AuditEntryResponse struct {
	ID           string `json:"id"`
	EntityType   string `json:"entity_type"`
	EntityID     string `json:"entity_id"`
	ChangedField string `json:"changed_field"`
	OldValue     string `json:"old_value"`
	NewValue     string `json:"new_value"`
	ChangedBy    string `json:"changed_by"`
	Username     string `json:"username"`
	ChangedAt    string `json:"changed_at"`
}

type AuditService interface {
	GetAuditLogs(ctx context.Context, entityType string, entityID *uuid.UUID, page, limit int) ([]AuditEntryResponse, int64, error)
}

type auditService struct {
	auditRepo repository.AuditRepository
}

// NewAuditService creates a new AuditService instance
func NewAuditService(auditRepo repository.AuditRepository) AuditService {
	return &auditService{auditRepo: auditRepo}
}

func (s *auditService) GetAuditLogs(ctx context.Context, entityType string, entityID *uuid.UUID, page, limit int) ([]AuditEntryResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	entries, total, err := s.auditRepo.List(ctx, entityType, entityID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		username := "System"
		changedBy := ""
		if entry.ChangedUser != nil {
			username = entry.ChangedUser.Username
		}
		if entry.ChangedBy != nil {
			changedBy = entry.ChangedBy.String()
		}

		res = append(res, AuditEntryResponse{
			ID:           entry.ID.String(),
			EntityType:   entry.EntityType,
			EntityID:     entry.EntityID.String(),
			ChangedField: entry.ChangedField,
			OldValue:     entry.OldValue,
			NewValue:     entry.NewValue,
			ChangedBy:    changedBy,
			Username:     username,
			ChangedAt:    entry.ChangedAt.Format(time.RFC3339),
		})
	}

	return res, total, nil
}
