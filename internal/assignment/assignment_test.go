package assignment

import (
	"fmt"
	"testing"

	"github.com/crewline/crewline/internal/models"
	"github.com/crewline/crewline/internal/stage"
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
	err = db.AutoMigrate(
		&models.Client{}, &models.Agency{},
		&models.Requirement{}, &models.JobRole{}, &models.JobRoleForwarding{},
		&models.LabourProfile{}, &models.LabourAssignment{}, &models.LabourStageHistory{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// fixture is a forwarded job role ready to take assignments.
type fixture struct {
	client *models.Client
	agency *models.Agency
	req    *models.Requirement
	role   *models.JobRole
}

// seedPipeline creates client → requirement → role (quantity) forwarded to one
// agency (fwdQuantity slots).
func seedPipeline(t *testing.T, db *gorm.DB, quantity, fwdQuantity int) *fixture {
	t.Helper()
	f := &fixture{
		client: &models.Client{ID: "cli-0000aaaa", Name: "Desert Build Co"},
		agency: &models.Agency{ID: "agc-0000aaaa", Name: "Gulf Manpower"},
	}
	f.req = &models.Requirement{
		ID:       "req-0000aaaa",
		ClientID: f.client.ID,
		Title:    "Site expansion",
		Status:   models.RequirementForwarded,
	}
	f.role = &models.JobRole{
		ID:            "rol-0000aaaa",
		RequirementID: f.req.ID,
		Title:         "Electrician",
		Quantity:      quantity,
		AgencyStatus:  models.DecisionPending,
		AdminStatus:   models.DecisionPending,
	}
	fwd := &models.JobRoleForwarding{
		ID:        "fwd-0000aaaa",
		JobRoleID: f.role.ID,
		AgencyID:  f.agency.ID,
		Quantity:  fwdQuantity,
	}
	for _, m := range []interface{}{f.client, f.agency, f.req, f.role, fwd} {
		if err := db.Create(m).Error; err != nil {
			t.Fatalf("seed fixture: %v", err)
		}
	}
	return f
}

// seedLabour creates n assignment-ready profiles (APPROVED, VERIFIED) under the
// agency and returns their IDs.
func seedLabour(t *testing.T, db *gorm.DB, agencyID string, n int) []string {
	t.Helper()
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("lab-%08d", i+1)
		p := models.LabourProfile{
			ID:           id,
			AgencyID:     agencyID,
			Name:         fmt.Sprintf("Candidate %d", i+1),
			Status:       models.ProfileApproved,
			Verification: models.VerificationVerified,
			CurrentStage: string(stage.OfferLetterSign),
		}
		if err := db.Create(&p).Error; err != nil {
			t.Fatalf("seed labour %s: %v", id, err)
		}
		ids = append(ids, id)
	}
	return ids
}

func getAssignmentT(t *testing.T, db *gorm.DB, id string) *models.LabourAssignment {
	t.Helper()
	a, err := getAssignment(db, id)
	if err != nil {
		t.Fatalf("get assignment %s: %v", id, err)
	}
	return a
}

func getProfileT(t *testing.T, db *gorm.DB, id string) *models.LabourProfile {
	t.Helper()
	var p models.LabourProfile
	if err := db.Where("id = ?", id).First(&p).Error; err != nil {
		t.Fatalf("get profile %s: %v", id, err)
	}
	return &p
}

func getRoleT(t *testing.T, db *gorm.DB, id string) *models.JobRole {
	t.Helper()
	var r models.JobRole
	if err := db.Where("id = ?", id).First(&r).Error; err != nil {
		t.Fatalf("get role %s: %v", id, err)
	}
	return &r
}

func getRequirementT(t *testing.T, db *gorm.DB, id string) *models.Requirement {
	t.Helper()
	var r models.Requirement
	if err := db.Where("id = ?", id).First(&r).Error; err != nil {
		t.Fatalf("get requirement %s: %v", id, err)
	}
	return &r
}
