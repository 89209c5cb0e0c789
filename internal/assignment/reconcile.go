package assignment

import (
	"errors"
	"fmt"

	"github.com/crewline/crewline/internal/faults"
	"github.com/crewline/crewline/internal/models"
	"github.com/crewline/crewline/internal/profile"
	"github.com/crewline/crewline/internal/requirement"
	"gorm.io/gorm"
)

// Feedback written by the fulfillment cascade.
const (
	FeedbackNotSelected     = "Not selected - requirement fulfilled"
	FeedbackBackupFulfilled = "Backup candidate - requirement fulfilled"
)

// Decision is one accept/reject verdict on an assignment. Feedback is required
// on rejection and cleared on acceptance.
type Decision struct {
	AssignmentID string
	Accept       bool
	Feedback     string
}

// validateDecisions rejects malformed input before any mutation.
func validateDecisions(decisions []Decision) error {
	if len(decisions) == 0 {
		return fmt.Errorf("%w: at least one decision is required", faults.ErrValidation)
	}
	for _, d := range decisions {
		if d.AssignmentID == "" {
			return fmt.Errorf("%w: decision missing assignment ID", faults.ErrValidation)
		}
		if !d.Accept && d.Feedback == "" {
			return fmt.Errorf("%w: rejection of %s requires feedback", faults.ErrValidation, d.AssignmentID)
		}
	}
	return nil
}

// AdminDecide applies admin accept/reject verdicts to assignments of one job
// role, then reconciles the role: overflow beyond the role quantity is demoted
// to backup in FIFO order, and the role's admin status is recomputed. The whole
// reconciliation is one transaction over the locked job role.
func AdminDecide(db *gorm.DB, actor Actor, jobRoleID string, decisions []Decision) error {
	if actor.Role != RoleAdmin {
		return fmt.Errorf("%w: only the admin reviews agency submissions", faults.ErrForbidden)
	}
	if err := validateDecisions(decisions); err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		role, err := lockJobRole(tx, jobRoleID)
		if err != nil {
			return err
		}

		for _, d := range decisions {
			a, err := getAssignment(tx, d.AssignmentID)
			if err != nil {
				return err
			}
			if a.JobRoleID != role.ID {
				return fmt.Errorf("%w: assignment %s does not belong to job role %s", faults.ErrNotFound, a.ID, role.ID)
			}

			updates := map[string]interface{}{}
			if d.Accept {
				updates["admin_status"] = models.DecisionAccepted
				updates["admin_feedback"] = ""
				// Accepted submissions move on to the client's desk.
				updates["client_status"] = models.DecisionClientReview
			} else {
				updates["admin_status"] = models.DecisionRejected
				updates["admin_feedback"] = d.Feedback
				updates["client_status"] = models.DecisionPending
			}
			if err := tx.Model(&models.LabourAssignment{}).Where("id = ?", a.ID).Updates(updates).Error; err != nil {
				return fmt.Errorf("assignment: apply admin decision on %s: %w", a.ID, err)
			}
		}

		if err := demoteOverflow(tx, role); err != nil {
			return err
		}
		return recomputeRoleAdminStatus(tx, role.ID)
	})
}

// demoteOverflow enforces the role quantity at the admin-acceptance layer.
// When more assignments are admin-accepted than the role needs, the earliest
// created (created_at, seq — first-come-first-served) keep their slot and go
// to the client as SUBMITTED; the rest are held back as backups with client
// status PENDING.
func demoteOverflow(tx *gorm.DB, role *models.JobRole) error {
	var accepted []models.LabourAssignment
	err := tx.Where("job_role_id = ? AND admin_status = ?", role.ID, models.DecisionAccepted).
		Order("created_at ASC, seq ASC").
		Find(&accepted).Error
	if err != nil {
		return fmt.Errorf("assignment: list admin-accepted for role %s: %w", role.ID, err)
	}
	if len(accepted) <= role.Quantity {
		return nil
	}

	for i, a := range accepted {
		updates := map[string]interface{}{}
		if i < role.Quantity {
			updates["is_backup"] = false
			updates["client_status"] = models.DecisionSubmitted
		} else {
			updates["is_backup"] = true
			updates["client_status"] = models.DecisionPending
		}
		if err := tx.Model(&models.LabourAssignment{}).Where("id = ?", a.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("assignment: demote overflow on %s: %w", a.ID, err)
		}
	}
	return nil
}

// recomputeRoleAdminStatus derives the job role's admin status from its
// assignments: ACCEPTED when every one is accepted, NEEDS_REVISION when any is
// rejected, otherwise left unchanged.
func recomputeRoleAdminStatus(tx *gorm.DB, jobRoleID string) error {
	var all []models.LabourAssignment
	if err := tx.Where("job_role_id = ?", jobRoleID).Find(&all).Error; err != nil {
		return fmt.Errorf("assignment: list for role %s: %w", jobRoleID, err)
	}
	if len(all) == 0 {
		return nil
	}

	allAccepted := true
	anyRejected := false
	for _, a := range all {
		if a.AdminStatus != models.DecisionAccepted {
			allAccepted = false
		}
		if a.AdminStatus == models.DecisionRejected {
			anyRejected = true
		}
	}

	var status string
	switch {
	case allAccepted:
		status = models.DecisionAccepted
	case anyRejected:
		status = models.DecisionNeedsRevision
	default:
		return nil
	}
	if err := tx.Model(&models.JobRole{}).Where("id = ?", jobRoleID).Update("admin_status", status).Error; err != nil {
		return fmt.Errorf("assignment: recompute role %s admin status: %w", jobRoleID, err)
	}
	return nil
}

// ClientDecide applies client accept/reject verdicts. Precondition per
// assignment: the admin already accepted it. Acceptance mirrors agency and
// admin statuses to ACCEPTED. Once accepted assignments reach the role
// quantity, the fulfillment cascade rejects everyone else, frees the backups
// and, when every sibling role is fulfilled, accepts the whole requirement.
func ClientDecide(db *gorm.DB, actor Actor, jobRoleID string, decisions []Decision) error {
	if actor.Role != RoleClient && actor.Role != RoleAdmin {
		return fmt.Errorf("%w: only the client reviews submitted candidates", faults.ErrForbidden)
	}
	if err := validateDecisions(decisions); err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		role, err := lockJobRole(tx, jobRoleID)
		if err != nil {
			return err
		}

		var req models.Requirement
		err = tx.Where("id = ?", role.RequirementID).First(&req).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: requirement %s", faults.ErrNotFound, role.RequirementID)
		}
		if err != nil {
			return fmt.Errorf("assignment: load requirement %s: %w", role.RequirementID, err)
		}
		if actor.Role == RoleClient && req.ClientID != actor.ID {
			return fmt.Errorf("%w: requirement %s does not belong to client %s", faults.ErrForbidden, req.ID, actor.ID)
		}

		for _, d := range decisions {
			a, err := getAssignment(tx, d.AssignmentID)
			if err != nil {
				return err
			}
			if a.JobRoleID != role.ID {
				return fmt.Errorf("%w: assignment %s does not belong to job role %s", faults.ErrNotFound, a.ID, role.ID)
			}
			if a.AdminStatus != models.DecisionAccepted {
				return fmt.Errorf("%w: assignment %s is not admin-accepted", faults.ErrPrecondition, a.ID)
			}

			updates := map[string]interface{}{}
			if d.Accept {
				updates["client_status"] = models.DecisionAccepted
				updates["client_feedback"] = ""
				updates["agency_status"] = models.DecisionAccepted
				updates["admin_status"] = models.DecisionAccepted
			} else {
				updates["client_status"] = models.DecisionRejected
				updates["client_feedback"] = d.Feedback
			}
			if err := tx.Model(&models.LabourAssignment{}).Where("id = ?", a.ID).Updates(updates).Error; err != nil {
				return fmt.Errorf("assignment: apply client decision on %s: %w", a.ID, err)
			}
		}

		accepted, err := clientAcceptedCount(tx, role.ID)
		if err != nil {
			return err
		}
		if accepted >= int64(role.Quantity) {
			if err := fulfillRole(tx, role); err != nil {
				return err
			}
			return completeRequirement(tx, &req)
		}
		return nil
	})
}

// clientAcceptedCount counts a role's client-accepted assignments.
func clientAcceptedCount(tx *gorm.DB, jobRoleID string) (int64, error) {
	var n int64
	err := tx.Model(&models.LabourAssignment{}).
		Where("job_role_id = ? AND client_status = ?", jobRoleID, models.DecisionAccepted).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("assignment: count client-accepted for role %s: %w", jobRoleID, err)
	}
	return n, nil
}

// fulfillRole closes out a role whose quota is met: every remaining
// non-accepted assignment is force-rejected, and backup candidates are freed
// for reuse (profile back to APPROVED/VERIFIED, pipeline detached). Safe to
// run again once fulfilled — already rejected assignments are skipped.
func fulfillRole(tx *gorm.DB, role *models.JobRole) error {
	var rest []models.LabourAssignment
	err := tx.Where("job_role_id = ? AND client_status NOT IN ?", role.ID,
		[]string{models.DecisionAccepted, models.DecisionRejected}).
		Find(&rest).Error
	if err != nil {
		return fmt.Errorf("assignment: list non-accepted for role %s: %w", role.ID, err)
	}

	for _, a := range rest {
		feedback := FeedbackNotSelected
		if a.IsBackup {
			feedback = FeedbackBackupFulfilled
		}
		err := tx.Model(&models.LabourAssignment{}).Where("id = ?", a.ID).Updates(map[string]interface{}{
			"client_status":   models.DecisionRejected,
			"client_feedback": feedback,
		}).Error
		if err != nil {
			return fmt.Errorf("assignment: force-reject %s: %w", a.ID, err)
		}

		if a.IsBackup {
			if err := profile.ResetForReassignment(tx, a.LabourID); err != nil {
				return err
			}
			err := tx.Model(&models.LabourProfile{}).Where("id = ?", a.LabourID).
				Update("verification", models.VerificationVerified).Error
			if err != nil {
				return fmt.Errorf("assignment: free backup labour %s: %w", a.LabourID, err)
			}
		}
	}
	return nil
}

// completeRequirement accepts the requirement once every job role under it has
// met its quota of client-accepted assignments.
func completeRequirement(tx *gorm.DB, req *models.Requirement) error {
	var roles []models.JobRole
	if err := tx.Where("requirement_id = ?", req.ID).Find(&roles).Error; err != nil {
		return fmt.Errorf("assignment: list roles for requirement %s: %w", req.ID, err)
	}

	for _, r := range roles {
		ok, err := requirement.Fulfilled(tx, r.ID)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}

	if err := tx.Model(&models.Requirement{}).Where("id = ?", req.ID).
		Update("status", models.RequirementAccepted).Error; err != nil {
		return fmt.Errorf("assignment: accept requirement %s: %w", req.ID, err)
	}
	return nil
}
