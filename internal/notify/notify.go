// Package notify bridges pipeline events to chat platforms (Slack, Discord)
// and persists one Notification row per recipient. Delivery is best-effort:
// a down webhook never fails the operation that raised the event.
package notify

import (
	"context"
	"encoding/json"
	"log"

	"github.com/crewline/crewline/internal/models"
	"gorm.io/gorm"
)

// Event is one pipeline occurrence worth telling somebody about.
type Event struct {
	Kind        string // e.g. "assignment.submitted", "stage.stale"
	RecipientID string // tenant the event is addressed to; empty for the admin
	Subject     string
	Body        string
	EntityID    string // the assignment, labour or requirement concerned
}

// Adapter delivers events to one chat platform.
type Adapter interface {
	Name() string
	Send(ctx context.Context, ev Event) error
}

// Dispatcher fans events out to the configured adapters and records them.
type Dispatcher struct {
	db       *gorm.DB
	adapters []Adapter
}

// NewDispatcher creates a Dispatcher over the given adapters. A nil db skips
// persistence; a Dispatcher with no adapters only records.
func NewDispatcher(db *gorm.DB, adapters ...Adapter) *Dispatcher {
	return &Dispatcher{db: db, adapters: adapters}
}

// Dispatch records the event and pushes it to every adapter. Best-effort:
// failures are logged, never returned.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) {
	if d == nil {
		return
	}
	if d.db != nil {
		payload, err := json.Marshal(map[string]string{
			"subject":   ev.Subject,
			"body":      ev.Body,
			"entity_id": ev.EntityID,
		})
		if err != nil {
			log.Printf("notify: marshal %s payload: %v", ev.Kind, err)
			payload = []byte("{}")
		}
		row := models.Notification{
			EventKind:   ev.Kind,
			RecipientID: ev.RecipientID,
			Payload:     string(payload),
		}
		if err := d.db.Create(&row).Error; err != nil {
			log.Printf("notify: record %s: %v", ev.Kind, err)
		}
	}
	for _, a := range d.adapters {
		if err := a.Send(ctx, ev); err != nil {
			log.Printf("notify: %s send %s: %v", a.Name(), ev.Kind, err)
		}
	}
}
