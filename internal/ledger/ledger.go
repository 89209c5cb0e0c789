// Package ledger maintains the append-only stage history of labour profiles.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/crewline/crewline/internal/faults"
	"github.com/crewline/crewline/internal/models"
	"github.com/crewline/crewline/internal/stage"
	"gorm.io/gorm"
)

// Record appends a new stage attempt row. History is never mutated for a new
// attempt; resolving an existing PENDING attempt goes through Resolve.
func Record(db *gorm.DB, labourID string, s stage.Stage, status stage.Status, notes string, documents []string) (*models.LabourStageHistory, error) {
	if labourID == "" {
		return nil, fmt.Errorf("%w: labour ID is required", faults.ErrValidation)
	}

	docs, err := marshalDocuments(documents)
	if err != nil {
		return nil, fmt.Errorf("ledger: marshal documents: %w", err)
	}

	entry := models.LabourStageHistory{
		LabourID:  labourID,
		Stage:     string(s),
		Status:    string(status),
		Notes:     notes,
		Documents: docs,
	}
	if stage.Terminal(status) {
		now := time.Now()
		entry.CompletedAt = &now
	}

	if err := db.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("ledger: record %s/%s for %s: %w", s, status, labourID, err)
	}
	return &entry, nil
}

// Resolve moves the PENDING attempt for (labour, stage) to a terminal status
// with completed_at set. When no PENDING row exists it records a fresh,
// already-resolved attempt, so out-of-band completions still leave a trace.
func Resolve(db *gorm.DB, labourID string, s stage.Stage, status stage.Status, notes string, documents []string) (*models.LabourStageHistory, error) {
	if !stage.Terminal(status) {
		return nil, fmt.Errorf("%w: %s does not resolve a stage attempt", faults.ErrValidation, status)
	}

	var entry models.LabourStageHistory
	err := db.Where("labour_id = ? AND stage = ? AND status = ?", labourID, string(s), string(stage.StatusPending)).
		Order("created_at DESC, id DESC").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Record(db, labourID, s, status, notes, documents)
	}
	if err != nil {
		return nil, fmt.Errorf("ledger: find pending %s for %s: %w", s, labourID, err)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":       string(status),
		"completed_at": now,
	}
	if notes != "" {
		updates["notes"] = notes
	}
	if len(documents) > 0 {
		docs, err := marshalDocuments(documents)
		if err != nil {
			return nil, fmt.Errorf("ledger: marshal documents: %w", err)
		}
		updates["documents"] = docs
	}
	if err := db.Model(&models.LabourStageHistory{}).Where("id = ?", entry.ID).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("ledger: resolve %s for %s: %w", s, labourID, err)
	}
	entry.Status = string(status)
	entry.CompletedAt = &now
	if notes != "" {
		entry.Notes = notes
	}
	return &entry, nil
}

// Reclassify moves the latest (labour, stage) attempt carrying status from to
// another terminal status, refreshing completed_at. Used when an already
// resolved attempt needs admin confirmation (SIGNED → COMPLETED).
func Reclassify(db *gorm.DB, labourID string, s stage.Stage, from, to stage.Status) (*models.LabourStageHistory, error) {
	if !stage.Terminal(to) {
		return nil, fmt.Errorf("%w: %s does not resolve a stage attempt", faults.ErrValidation, to)
	}

	var entry models.LabourStageHistory
	err := db.Where("labour_id = ? AND stage = ? AND status = ?", labourID, string(s), string(from)).
		Order("created_at DESC, id DESC").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: no %s attempt with status %s for labour %s", faults.ErrPrecondition, s, from, labourID)
	}
	if err != nil {
		return nil, fmt.Errorf("ledger: find %s/%s for %s: %w", s, from, labourID, err)
	}

	now := time.Now()
	if err := db.Model(&models.LabourStageHistory{}).Where("id = ?", entry.ID).Updates(map[string]interface{}{
		"status":       string(to),
		"completed_at": now,
	}).Error; err != nil {
		return nil, fmt.Errorf("ledger: reclassify %s for %s: %w", s, labourID, err)
	}
	entry.Status = string(to)
	entry.CompletedAt = &now
	return &entry, nil
}

// HasEntry reports whether the labour has any attempt for the stage with the
// given status.
func HasEntry(db *gorm.DB, labourID string, s stage.Stage, status stage.Status) (bool, error) {
	var count int64
	err := db.Model(&models.LabourStageHistory{}).
		Where("labour_id = ? AND stage = ? AND status = ?", labourID, string(s), string(status)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("ledger: check %s/%s for %s: %w", s, status, labourID, err)
	}
	return count > 0, nil
}

// OpenStage creates a PENDING attempt for the stage unless one is already open.
func OpenStage(db *gorm.DB, labourID string, s stage.Stage) (*models.LabourStageHistory, error) {
	var existing models.LabourStageHistory
	err := db.Where("labour_id = ? AND stage = ? AND status = ?", labourID, string(s), string(stage.StatusPending)).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("ledger: check open %s for %s: %w", s, labourID, err)
	}
	return Record(db, labourID, s, stage.StatusPending, "", nil)
}

// ClearForLabour hard-deletes every history row for the labour. Invoked by the
// profile reset; partial progress through an abandoned pipeline carries no
// meaning once the profile is detached.
func ClearForLabour(db *gorm.DB, labourID string) error {
	if err := db.Where("labour_id = ?", labourID).Delete(&models.LabourStageHistory{}).Error; err != nil {
		return fmt.Errorf("ledger: clear history for %s: %w", labourID, err)
	}
	return nil
}

// History returns all attempts for the labour, oldest first.
func History(db *gorm.DB, labourID string) ([]models.LabourStageHistory, error) {
	var entries []models.LabourStageHistory
	if err := db.Where("labour_id = ?", labourID).Order("created_at ASC, id ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("ledger: history for %s: %w", labourID, err)
	}
	return entries, nil
}

// marshalDocuments encodes document URLs as a JSON array, empty string for none.
func marshalDocuments(documents []string) (string, error) {
	if len(documents) == 0 {
		return "", nil
	}
	data, err := json.Marshal(documents)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
