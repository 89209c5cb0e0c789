package assignment

import (
	"errors"
	"fmt"

	"github.com/crewline/crewline/internal/faults"
	"github.com/crewline/crewline/internal/models"
	"gorm.io/gorm"
)

// Actor identifies the pre-authenticated caller. Authentication happens
// upstream; the workflow only enforces ownership scope.
type Actor struct {
	ID   string
	Role string
}

// Actor roles.
const (
	RoleAdmin  = "ADMIN"
	RoleAgency = "AGENCY"
	RoleClient = "CLIENT"
)

// Admin is the recruitment-admin actor, unconstrained by tenant scope.
var Admin = Actor{Role: RoleAdmin}

// authorizeAssignment checks that the actor may operate on the assignment:
// admins always, agencies only on their own assignments, clients only on
// assignments under their own requirements.
func authorizeAssignment(tx *gorm.DB, actor Actor, a *models.LabourAssignment) error {
	switch actor.Role {
	case RoleAdmin:
		return nil
	case RoleAgency:
		if actor.ID == a.AgencyID {
			return nil
		}
		return fmt.Errorf("%w: assignment %s does not belong to agency %s", faults.ErrForbidden, a.ID, actor.ID)
	case RoleClient:
		var role models.JobRole
		if err := tx.Preload("Requirement").Where("id = ?", a.JobRoleID).First(&role).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: job role %s", faults.ErrNotFound, a.JobRoleID)
			}
			return fmt.Errorf("assignment: load job role %s: %w", a.JobRoleID, err)
		}
		if role.Requirement != nil && role.Requirement.ClientID == actor.ID {
			return nil
		}
		return fmt.Errorf("%w: assignment %s is not under a requirement of client %s", faults.ErrForbidden, a.ID, actor.ID)
	}
	return fmt.Errorf("%w: unknown actor role %q", faults.ErrForbidden, actor.Role)
}

// getAssignment fetches an assignment by ID.
func getAssignment(tx *gorm.DB, id string) (*models.LabourAssignment, error) {
	var a models.LabourAssignment
	if err := tx.Where("id = ?", id).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: assignment %s", faults.ErrNotFound, id)
		}
		return nil, fmt.Errorf("assignment: get %s: %w", id, err)
	}
	return &a, nil
}
