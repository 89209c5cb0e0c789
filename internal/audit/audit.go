// Package audit records who changed what. Writes happen after the mutating
// transaction commits and are best-effort: an audit failure is logged, never
// surfaced to the caller.
package audit

import (
	"encoding/json"
	"log"

	"github.com/crewline/crewline/internal/models"
	"gorm.io/gorm"
)

// Entry describes one recorded change. Old and New are snapshotted as JSON;
// either may be nil.
type Entry struct {
	Action      string // e.g. "assignment.create", "stage.update"
	EntityType  string // e.g. "labour_assignment"
	EntityID    string
	PerformedBy string
	Old         interface{}
	New         interface{}
	Fields      []string // names of the fields that changed
}

// Recorder persists audit entries.
type Recorder struct {
	db *gorm.DB
}

// NewRecorder creates a Recorder. A nil db yields a no-op recorder.
func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

// Record writes one audit row. Best-effort: failures are logged, not returned.
func (r *Recorder) Record(e Entry) {
	if r == nil || r.db == nil {
		return
	}
	row := models.AuditLog{
		Action:      e.Action,
		EntityType:  e.EntityType,
		EntityID:    e.EntityID,
		PerformedBy: e.PerformedBy,
		OldData:     marshal(e.Action, e.Old),
		NewData:     marshal(e.Action, e.New),
	}
	if len(e.Fields) > 0 {
		row.AffectedFields = marshal(e.Action, e.Fields)
	}
	if err := r.db.Create(&row).Error; err != nil {
		log.Printf("audit: record %s on %s %s: %v", e.Action, e.EntityType, e.EntityID, err)
	}
}

func marshal(action string, v interface{}) string {
	if v == nil {
		return ""
	}
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("audit: marshal snapshot for %s: %v", action, err)
		return ""
	}
	return string(data)
}
