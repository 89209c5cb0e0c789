package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/crewline/crewline/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.Notification{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// mockAdapter records sent events and optionally fails.
type mockAdapter struct {
	name string
	sent []Event
	err  error
}

func (m *mockAdapter) Name() string { return m.name }

func (m *mockAdapter) Send(_ context.Context, ev Event) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, ev)
	return nil
}

func TestDispatch_PersistsAndDelivers(t *testing.T) {
	db := testDB(t)
	mock := &mockAdapter{name: "mock"}
	d := NewDispatcher(db, mock)

	d.Dispatch(context.Background(), Event{
		Kind:        "assignment.submitted",
		RecipientID: "cli-0000aaaa",
		Subject:     "Candidates submitted",
		Body:        "2 candidates await your review",
		EntityID:    "rol-0000aaaa",
	})

	if len(mock.sent) != 1 {
		t.Fatalf("sent = %d events, want 1", len(mock.sent))
	}
	if mock.sent[0].Subject != "Candidates submitted" {
		t.Errorf("subject = %q", mock.sent[0].Subject)
	}

	var rows []models.Notification
	if err := db.Find(&rows).Error; err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].EventKind != "assignment.submitted" {
		t.Errorf("event kind = %q", rows[0].EventKind)
	}
	if rows[0].RecipientID != "cli-0000aaaa" {
		t.Errorf("recipient = %q", rows[0].RecipientID)
	}
}

func TestDispatch_AdapterFailureIsSwallowed(t *testing.T) {
	db := testDB(t)
	broken := &mockAdapter{name: "broken", err: errors.New("webhook down")}
	working := &mockAdapter{name: "working"}
	d := NewDispatcher(db, broken, working)

	d.Dispatch(context.Background(), Event{Kind: "stage.stale", Subject: "x"})

	// The failing adapter must not block the others or the record.
	if len(working.sent) != 1 {
		t.Errorf("working adapter sent = %d, want 1", len(working.sent))
	}
	var count int64
	db.Model(&models.Notification{}).Count(&count)
	if count != 1 {
		t.Errorf("notification rows = %d, want 1", count)
	}
}

func TestDispatch_NoAdapters(t *testing.T) {
	db := testDB(t)
	d := NewDispatcher(db)

	d.Dispatch(context.Background(), Event{Kind: "stage.stale", Subject: "x"})

	var count int64
	db.Model(&models.Notification{}).Count(&count)
	if count != 1 {
		t.Errorf("notification rows = %d, want 1", count)
	}
}

func TestDispatch_NilDispatcher(t *testing.T) {
	var d *Dispatcher
	// Must be a no-op, not a panic.
	d.Dispatch(context.Background(), Event{Kind: "stage.stale"})
}
