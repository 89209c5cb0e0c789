package models

import (
	"reflect"
	"strings"
	"testing"
)

// gormTag extracts the gorm tag from a struct field.
func gormTag(t *testing.T, typ reflect.Type, fieldName string) string {
	t.Helper()
	f, ok := typ.FieldByName(fieldName)
	if !ok {
		t.Fatalf("%s.%s: field not found", typ.Name(), fieldName)
	}
	return f.Tag.Get("gorm")
}

// assertGormTag checks that a struct field's gorm tag contains the expected value.
func assertGormTag(t *testing.T, typ reflect.Type, fieldName, expected string) {
	t.Helper()
	tag := gormTag(t, typ, fieldName)
	if !strings.Contains(tag, expected) {
		t.Errorf("%s.%s gorm tag = %q, want to contain %q", typ.Name(), fieldName, tag, expected)
	}
}

func TestNewID_Format(t *testing.T) {
	id, err := NewID("asg")
	if err != nil {
		t.Fatalf("NewID() error: %v", err)
	}
	if !strings.HasPrefix(id, "asg-") {
		t.Errorf("ID %q missing asg- prefix", id)
	}
	// asg- (4 chars) + 8 hex chars = 12 total
	if len(id) != 12 {
		t.Errorf("ID length = %d, want 12; id = %q", len(id), id)
	}
}

func TestNewID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := NewID("lab")
		if err != nil {
			t.Fatalf("NewID() iteration %d: %v", i, err)
		}
		if seen[id] {
			t.Fatalf("duplicate ID %q on iteration %d", id, i)
		}
		seen[id] = true
	}
}

func TestJobRole_Fields(t *testing.T) {
	typ := reflect.TypeOf(JobRole{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "RequirementID", "index")
	assertGormTag(t, typ, "Quantity", "not null")
	assertGormTag(t, typ, "AdminStatus", "default:PENDING")
	assertGormTag(t, typ, "NeedsMoreLabour", "default:false")
}

func TestLabourProfile_Fields(t *testing.T) {
	typ := reflect.TypeOf(LabourProfile{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "AgencyID", "not null")
	assertGormTag(t, typ, "Status", "default:RECEIVED")
	assertGormTag(t, typ, "CurrentStage", "default:OFFER_LETTER_SIGN")
	assertGormTag(t, typ, "RequirementID", "index")

	f, ok := typ.FieldByName("RequirementID")
	if !ok {
		t.Fatal("RequirementID field not found")
	}
	if f.Type.Kind() != reflect.Ptr {
		t.Errorf("RequirementID must be nullable (pointer), got %s", f.Type)
	}
}

func TestTenantEmail_NullableUnique(t *testing.T) {
	// Email is optional at creation. A non-nullable unique column would make
	// every second tenant without an email collide on the index.
	for _, typ := range []reflect.Type{reflect.TypeOf(Client{}), reflect.TypeOf(Agency{})} {
		assertGormTag(t, typ, "Email", "uniqueIndex")
		f, _ := typ.FieldByName("Email")
		if f.Type.Kind() != reflect.Ptr {
			t.Errorf("%s.Email must be nullable (pointer), got %s", typ.Name(), f.Type)
		}
	}
}

func TestLabourAssignment_Fields(t *testing.T) {
	typ := reflect.TypeOf(LabourAssignment{})

	assertGormTag(t, typ, "JobRoleID", "index")
	assertGormTag(t, typ, "LabourID", "index")
	assertGormTag(t, typ, "Seq", "not null")
	assertGormTag(t, typ, "IsBackup", "default:false")
	assertGormTag(t, typ, "ClientStatus", "default:PENDING")
}

func TestHasAllTravelDocuments(t *testing.T) {
	full := LabourAssignment{
		FlightTicketURL:       "/files/ft.pdf",
		MedicalCertificateURL: "/files/mc.pdf",
		PoliceClearanceURL:    "/files/pc.pdf",
		EmploymentContractURL: "/files/ec.pdf",
	}
	if !full.HasAllTravelDocuments() {
		t.Error("all four documents present, want true")
	}

	missing := full
	missing.PoliceClearanceURL = ""
	if missing.HasAllTravelDocuments() {
		t.Error("police clearance missing, want false")
	}

	var empty LabourAssignment
	if empty.HasAllTravelDocuments() {
		t.Error("no documents, want false")
	}
}

func TestValidDecision(t *testing.T) {
	for _, s := range []string{
		DecisionPending, DecisionAccepted, DecisionRejected, DecisionNeedsRevision,
		DecisionSubmitted, DecisionPartiallySubmitted, DecisionClientReview,
	} {
		if !ValidDecision(s) {
			t.Errorf("ValidDecision(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"", "accepted", "DONE", "MAYBE"} {
		if ValidDecision(s) {
			t.Errorf("ValidDecision(%q) = true, want false", s)
		}
	}
}
