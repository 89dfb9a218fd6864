package service

import (
	"testing"

	"erp-backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffSnapshotsSingleField(t *testing.T) {
	entityID := uuid.New()
	userID := uuid.New()

	before := map[string]string{"note": "old note", "status": "Draft"}
	after := map[string]string{"note": "new note", "status": "Draft"}

	entries := DiffSnapshots(model.AuditEntityOrder, entityID, before, after, &userID)
	require.Len(t, entries, 1)
	assert.Equal(t, model.AuditEntityOrder, entries[0].EntityType)
	assert.Equal(t, entityID, entries[0].EntityID)
	assert.Equal(t, "note", entries[0].ChangedField)
	assert.Equal(t, "old note", entries[0].OldValue)
	assert.Equal(t, "new note", entries[0].NewValue)
	require.NotNil(t, entries[0].ChangedBy)
	assert.Equal(t, userID, *entries[0].ChangedBy)
}

func TestDiffSnapshotsMultipleFieldsSorted(t *testing.T) {
	before := map[string]string{"status": "Draft", "note": "a", "order_no": "PO-1"}
	after := map[string]string{"status": "Approved", "note": "b", "order_no": "PO-1"}

	entries := DiffSnapshots(model.AuditEntityOrder, uuid.New(), before, after, nil)
	require.Len(t, entries, 2)
	assert.Equal(t, "note", entries[0].ChangedField)
	assert.Equal(t, "status", entries[1].ChangedField)
	assert.Nil(t, entries[0].ChangedBy)
}

func TestDiffSnapshotsIgnoresUpdatedAt(t *testing.T) {
	before := map[string]string{"updated_at": "2026-01-01T00:00:00Z"}
	after := map[string]string{"updated_at": "2026-02-01T00:00:00Z"}

	entries := DiffSnapshots(model.AuditEntityOrder, uuid.New(), before, after, nil)
	assert.Empty(t, entries)
}

func TestDiffSnapshotsNoChanges(t *testing.T) {
	snap := map[string]string{"note": "same", "status": "Draft"}

	entries := DiffSnapshots(model.AuditEntityOrder, uuid.New(), snap, snap, nil)
	assert.Empty(t, entries)
}

func TestDiffSnapshotsIgnoresKeysOnlyInBefore(t *testing.T) {
	before := map[string]string{"note": "a", "legacy_field": "x"}
	after := map[string]string{"note": "a"}

	entries := DiffSnapshots(model.AuditEntityOrderItem, uuid.New(), before, after, nil)
	assert.Empty(t, entries)
}

func TestDiffSnapshotsNewKeyInAfter(t *testing.T) {
	before := map[string]string{}
	after := map[string]string{"note": "added"}

	entries := DiffSnapshots(model.AuditEntityOrderItem, uuid.New(), before, after, nil)
	require.Len(t, entries, 1)
	assert.Equal(t, "", entries[0].OldValue)
	assert.Equal(t, "added", entries[0].NewValue)
}
