// Package assignment implements the labour-assignment lifecycle: candidate
// assignment, the accept/reject reconciliation over job-role quotas, and the
// stage-progression triggers of the onboarding pipeline. Every operation runs
// as one transaction; the job role row is the contended resource and is locked
// for the duration of any quota-sensitive read-modify-write.
package assignment

import (
	"errors"
	"fmt"

	"github.com/crewline/crewline/internal/faults"
	"github.com/crewline/crewline/internal/ledger"
	"github.com/crewline/crewline/internal/models"
	"github.com/crewline/crewline/internal/profile"
	"github.com/crewline/crewline/internal/stage"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AssignOpts holds parameters for assigning labour profiles to a job role.
type AssignOpts struct {
	JobRoleID string
	AgencyID  string
	LabourIDs []string
}

// Assign creates assignments for the given profiles against one job role.
// Preconditions per profile: status APPROVED, verification at least
// PARTIALLY_VERIFIED, no other active assignment for the same role. The
// agency's forwarding quota bounds existing + new active assignments. Any prior
// rejected assignment for the same (labour, role) pair is deleted first so the
// pair keeps a single assignment row.
func Assign(db *gorm.DB, actor Actor, opts AssignOpts) ([]models.LabourAssignment, error) {
	if opts.JobRoleID == "" || opts.AgencyID == "" {
		return nil, fmt.Errorf("%w: job role and agency are required", faults.ErrValidation)
	}
	if len(opts.LabourIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one labour profile is required", faults.ErrValidation)
	}
	if actor.Role == RoleAgency && actor.ID != opts.AgencyID {
		return nil, fmt.Errorf("%w: agency %s cannot assign on behalf of %s", faults.ErrForbidden, actor.ID, opts.AgencyID)
	}
	if actor.Role == RoleClient {
		return nil, fmt.Errorf("%w: clients cannot assign labour", faults.ErrForbidden)
	}

	var created []models.LabourAssignment

	err := db.Transaction(func(tx *gorm.DB) error {
		role, err := lockJobRole(tx, opts.JobRoleID)
		if err != nil {
			return err
		}

		var fwd models.JobRoleForwarding
		err = tx.Where("job_role_id = ? AND agency_id = ?", role.ID, opts.AgencyID).First(&fwd).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: job role %s is not forwarded to agency %s", faults.ErrForbidden, role.ID, opts.AgencyID)
		}
		if err != nil {
			return fmt.Errorf("assignment: load forwarding for role %s: %w", role.ID, err)
		}

		var active int64
		err = tx.Model(&models.LabourAssignment{}).
			Where("job_role_id = ? AND agency_id = ?", role.ID, opts.AgencyID).
			Where("admin_status <> ? AND client_status <> ?", models.DecisionRejected, models.DecisionRejected).
			Count(&active).Error
		if err != nil {
			return fmt.Errorf("assignment: count active for role %s: %w", role.ID, err)
		}
		if int(active)+len(opts.LabourIDs) > fwd.Quantity {
			return fmt.Errorf("%w: forwarding quota exceeded for role %s: %d active + %d new > %d allowed",
				faults.ErrConflict, role.ID, active, len(opts.LabourIDs), fwd.Quantity)
		}

		seq, err := nextSeq(tx, role.ID)
		if err != nil {
			return err
		}

		for _, labourID := range opts.LabourIDs {
			p, err := profile.Get(tx, labourID)
			if err != nil {
				return err
			}
			if p.AgencyID != opts.AgencyID {
				return fmt.Errorf("%w: labour %s does not belong to agency %s", faults.ErrForbidden, labourID, opts.AgencyID)
			}
			if p.Status != models.ProfileApproved {
				return fmt.Errorf("%w: labour %s has status %s, want %s", faults.ErrPrecondition, labourID, p.Status, models.ProfileApproved)
			}
			if p.Verification != models.VerificationPartiallyVerified && p.Verification != models.VerificationVerified {
				return fmt.Errorf("%w: labour %s is %s, verification required before assignment", faults.ErrPrecondition, labourID, p.Verification)
			}

			// Single active assignment per (labour, role): reject duplicates,
			// clear out any rejected leftovers from a previous attempt.
			var existing int64
			err = tx.Model(&models.LabourAssignment{}).
				Where("labour_id = ? AND job_role_id = ?", labourID, role.ID).
				Where("admin_status <> ? AND client_status <> ?", models.DecisionRejected, models.DecisionRejected).
				Count(&existing).Error
			if err != nil {
				return fmt.Errorf("assignment: check existing for labour %s: %w", labourID, err)
			}
			if existing > 0 {
				return fmt.Errorf("%w: labour %s already has an active assignment for role %s", faults.ErrConflict, labourID, role.ID)
			}
			err = tx.Where("labour_id = ? AND job_role_id = ?", labourID, role.ID).
				Delete(&models.LabourAssignment{}).Error
			if err != nil {
				return fmt.Errorf("assignment: clear rejected rows for labour %s: %w", labourID, err)
			}

			id, err := models.NewID("asg")
			if err != nil {
				return err
			}
			a := models.LabourAssignment{
				ID:           id,
				JobRoleID:    role.ID,
				LabourID:     labourID,
				AgencyID:     opts.AgencyID,
				Seq:          seq,
				AgencyStatus: models.DecisionAccepted,
				AdminStatus:  models.DecisionPending,
				ClientStatus: models.DecisionPending,
			}
			seq++
			if err := tx.Create(&a).Error; err != nil {
				return fmt.Errorf("assignment: create for labour %s: %w", labourID, err)
			}

			err = tx.Model(&models.LabourProfile{}).Where("id = ?", labourID).Updates(map[string]interface{}{
				"status":         models.ProfileShortlisted,
				"requirement_id": role.RequirementID,
				"current_stage":  string(stage.OfferLetterSign),
			}).Error
			if err != nil {
				return fmt.Errorf("assignment: shortlist labour %s: %w", labourID, err)
			}

			if _, err := ledger.OpenStage(tx, labourID, stage.OfferLetterSign); err != nil {
				return err
			}

			created = append(created, a)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return created, nil
}

// lockJobRole loads the job role under a row lock. All quota-sensitive
// reconciliation serializes on this lock. SQLite has no FOR UPDATE and
// serializes writers on its own, so the clause applies to MySQL only.
func lockJobRole(tx *gorm.DB, jobRoleID string) (*models.JobRole, error) {
	q := tx
	if tx.Dialector.Name() == "mysql" {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var role models.JobRole
	err := q.Where("id = ?", jobRoleID).
		First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: job role %s", faults.ErrNotFound, jobRoleID)
	}
	if err != nil {
		return nil, fmt.Errorf("assignment: lock job role %s: %w", jobRoleID, err)
	}
	return &role, nil
}

// nextSeq allocates the next per-role sequence number. Must run under the job
// role lock; (created_at, seq) is the FIFO order used for overflow demotion.
func nextSeq(tx *gorm.DB, jobRoleID string) (int, error) {
	var maxSeq int
	err := tx.Model(&models.LabourAssignment{}).
		Where("job_role_id = ?", jobRoleID).
		Select("COALESCE(MAX(seq), 0)").
		Scan(&maxSeq).Error
	if err != nil {
		return 0, fmt.Errorf("assignment: next seq for role %s: %w", jobRoleID, err)
	}
	return maxSeq + 1, nil
}

// ListByJobRole returns a role's assignments in FIFO order.
func ListByJobRole(db *gorm.DB, jobRoleID string) ([]models.LabourAssignment, error) {
	var out []models.LabourAssignment
	err := db.Where("job_role_id = ?", jobRoleID).
		Order("created_at ASC, seq ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("assignment: list for role %s: %w", jobRoleID, err)
	}
	return out, nil
}
