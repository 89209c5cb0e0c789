// Package requirement provides the intake lifecycle for client hiring
// requests: creation, submission, admin review and forwarding of job roles to
// agencies with per-agency quotas.
package requirement

import (
	"errors"
	"fmt"

	"github.com/crewline/crewline/internal/faults"
	"github.com/crewline/crewline/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RoleSpec describes one position on a new requirement.
type RoleSpec struct {
	Title    string
	Quantity int
}

// CreateOpts holds parameters for creating a requirement.
type CreateOpts struct {
	ClientID string
	Title    string
	Notes    string
	Roles    []RoleSpec
}

// Create stores a DRAFT requirement with its job roles.
func Create(db *gorm.DB, opts CreateOpts) (*models.Requirement, error) {
	if opts.ClientID == "" {
		return nil, fmt.Errorf("%w: client ID is required", faults.ErrValidation)
	}
	if opts.Title == "" {
		return nil, fmt.Errorf("%w: title is required", faults.ErrValidation)
	}
	if len(opts.Roles) == 0 {
		return nil, fmt.Errorf("%w: at least one job role is required", faults.ErrValidation)
	}
	for i, r := range opts.Roles {
		if r.Title == "" {
			return nil, fmt.Errorf("%w: roles[%d].title is required", faults.ErrValidation, i)
		}
		if r.Quantity <= 0 {
			return nil, fmt.Errorf("%w: roles[%d].quantity must be positive", faults.ErrValidation, i)
		}
	}

	var count int64
	if err := db.Model(&models.Client{}).Where("id = ?", opts.ClientID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("requirement: check client %s: %w", opts.ClientID, err)
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: client %s", faults.ErrNotFound, opts.ClientID)
	}

	id, err := models.NewID("req")
	if err != nil {
		return nil, err
	}
	req := models.Requirement{
		ID:       id,
		ClientID: opts.ClientID,
		Title:    opts.Title,
		Notes:    opts.Notes,
		Status:   models.RequirementDraft,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&req).Error; err != nil {
			return fmt.Errorf("requirement: create: %w", err)
		}
		for _, r := range opts.Roles {
			roleID, err := models.NewID("role")
			if err != nil {
				return err
			}
			role := models.JobRole{
				ID:            roleID,
				RequirementID: req.ID,
				Title:         r.Title,
				Quantity:      r.Quantity,
				AgencyStatus:  models.DecisionPending,
				AdminStatus:   models.DecisionPending,
			}
			if err := tx.Create(&role).Error; err != nil {
				return fmt.Errorf("requirement: create role %q: %w", r.Title, err)
			}
			req.JobRoles = append(req.JobRoles, role)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// Get fetches a requirement with its job roles.
func Get(db *gorm.DB, id string) (*models.Requirement, error) {
	var req models.Requirement
	if err := db.Preload("JobRoles").Where("id = ?", id).First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: requirement %s", faults.ErrNotFound, id)
		}
		return nil, fmt.Errorf("requirement: get %s: %w", id, err)
	}
	return &req, nil
}

// submitTransitions lists the intake statuses each status may move to.
// The reconciler and the terminal-failure triggers own the later moves
// (ACCEPTED, UNDER_REVIEW reopening) and bypass this table.
var submitTransitions = map[string][]string{
	models.RequirementDraft:       {models.RequirementSubmitted},
	models.RequirementSubmitted:   {models.RequirementUnderReview, models.RequirementRejected},
	models.RequirementUnderReview: {models.RequirementForwarded, models.RequirementRejected},
	models.RequirementForwarded:   {models.RequirementApproved},
	models.RequirementApproved:    {models.RequirementClientReview},
}

// advanceStatus moves the requirement along the intake chain, validating the
// transition.
func advanceStatus(db *gorm.DB, id, to string) (*models.Requirement, error) {
	req, err := Get(db, id)
	if err != nil {
		return nil, err
	}
	allowed := false
	for _, s := range submitTransitions[req.Status] {
		if s == to {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: requirement %s cannot move from %s to %s", faults.ErrPrecondition, id, req.Status, to)
	}
	if err := db.Model(&models.Requirement{}).Where("id = ?", id).Update("status", to).Error; err != nil {
		return nil, fmt.Errorf("requirement: move %s to %s: %w", id, to, err)
	}
	req.Status = to
	return req, nil
}

// Submit moves a draft requirement to SUBMITTED.
func Submit(db *gorm.DB, id string) (*models.Requirement, error) {
	return advanceStatus(db, id, models.RequirementSubmitted)
}

// StartReview moves a submitted requirement under admin review.
func StartReview(db *gorm.DB, id string) (*models.Requirement, error) {
	return advanceStatus(db, id, models.RequirementUnderReview)
}

// Approve marks a forwarded requirement visible to its agencies.
func Approve(db *gorm.DB, id string) (*models.Requirement, error) {
	return advanceStatus(db, id, models.RequirementApproved)
}

// Forward allots quantity slots of a job role to an agency and moves the
// requirement to FORWARDED. Re-forwarding to the same agency updates the quota.
func Forward(db *gorm.DB, jobRoleID, agencyID string, quantity int) (*models.JobRoleForwarding, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: forwarding quantity must be positive", faults.ErrValidation)
	}

	var fwd *models.JobRoleForwarding
	err := db.Transaction(func(tx *gorm.DB) error {
		var role models.JobRole
		if err := tx.Where("id = ?", jobRoleID).First(&role).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: job role %s", faults.ErrNotFound, jobRoleID)
			}
			return fmt.Errorf("requirement: get role %s: %w", jobRoleID, err)
		}
		var count int64
		if err := tx.Model(&models.Agency{}).Where("id = ?", agencyID).Count(&count).Error; err != nil {
			return fmt.Errorf("requirement: check agency %s: %w", agencyID, err)
		}
		if count == 0 {
			return fmt.Errorf("%w: agency %s", faults.ErrNotFound, agencyID)
		}

		id, err := models.NewID("fwd")
		if err != nil {
			return err
		}
		row := models.JobRoleForwarding{
			ID:        id,
			JobRoleID: jobRoleID,
			AgencyID:  agencyID,
			Quantity:  quantity,
		}
		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "job_role_id"}, {Name: "agency_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity"}),
		}).Create(&row).Error
		if err != nil {
			return fmt.Errorf("requirement: forward role %s to agency %s: %w", jobRoleID, agencyID, err)
		}

		err = tx.Model(&models.JobRole{}).Where("id = ?", jobRoleID).
			Update("assigned_agency_id", agencyID).Error
		if err != nil {
			return fmt.Errorf("requirement: assign agency on role %s: %w", jobRoleID, err)
		}
		err = tx.Model(&models.Requirement{}).
			Where("id = ? AND status IN ?", role.RequirementID,
				[]string{models.RequirementUnderReview, models.RequirementForwarded}).
			Update("status", models.RequirementForwarded).Error
		if err != nil {
			return fmt.Errorf("requirement: mark %s forwarded: %w", role.RequirementID, err)
		}

		fwd = &row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fwd, nil
}

// Fulfilled reports whether a job role's quota of client-accepted,
// non-backup assignments is met.
func Fulfilled(db *gorm.DB, jobRoleID string) (bool, error) {
	var role models.JobRole
	if err := db.Where("id = ?", jobRoleID).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, fmt.Errorf("%w: job role %s", faults.ErrNotFound, jobRoleID)
		}
		return false, fmt.Errorf("requirement: get role %s: %w", jobRoleID, err)
	}
	var accepted int64
	err := db.Model(&models.LabourAssignment{}).
		Where("job_role_id = ? AND client_status = ? AND is_backup = ?", jobRoleID, models.DecisionAccepted, false).
		Count(&accepted).Error
	if err != nil {
		return false, fmt.Errorf("requirement: count accepted for role %s: %w", jobRoleID, err)
	}
	return accepted >= int64(role.Quantity), nil
}
