package assignment

import (
	"fmt"
	"time"

	"github.com/crewline/crewline/internal/faults"
	"github.com/crewline/crewline/internal/ledger"
	"github.com/crewline/crewline/internal/models"
	"github.com/crewline/crewline/internal/profile"
	"github.com/crewline/crewline/internal/stage"
	"gorm.io/gorm"
)

// Feedback written by the terminal-failure triggers.
const (
	FeedbackContractRefused = "Labour refused to sign contract"
	FeedbackFingerprintFail = "Labour failed fingerprint verification"
	FeedbackMedicalUnfit    = "Labour deemed medically unfit"
)

// requireStage guards a trigger against out-of-order execution.
func requireStage(p *models.LabourProfile, want stage.Stage) error {
	if p.CurrentStage != string(want) {
		return fmt.Errorf("%w: labour %s is at stage %s, want %s", faults.ErrPrecondition, p.ID, p.CurrentStage, want)
	}
	return nil
}

// VerifySignedOfferLetter confirms the uploaded signed offer letter and opens
// the visa stage. Preconditions: the letter URL is on the assignment and the
// agency has already marked OFFER_LETTER_SIGN as SIGNED in the ledger.
func VerifySignedOfferLetter(db *gorm.DB, actor Actor, assignmentID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		a, err := getAssignment(tx, assignmentID)
		if err != nil {
			return err
		}
		if err := authorizeAssignment(tx, actor, a); err != nil {
			return err
		}
		if a.SignedOfferLetterURL == "" {
			return fmt.Errorf("%w: assignment %s has no signed offer letter", faults.ErrPrecondition, a.ID)
		}
		if _, err := ledger.Reclassify(tx, a.LabourID, stage.OfferLetterSign, stage.StatusSigned, stage.StatusCompleted); err != nil {
			return err
		}
		if _, err := ledger.OpenStage(tx, a.LabourID, stage.VisaApplying); err != nil {
			return err
		}
		return profile.Advance(tx, a.LabourID, stage.VisaApplying)
	})
}

// MarkVisaApplied records the visa application and opens the QVC payment stage.
func MarkVisaApplied(db *gorm.DB, actor Actor, assignmentID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		a, p, err := getScopedAssignment(tx, actor, assignmentID)
		if err != nil {
			return err
		}
		if err := requireStage(p, stage.VisaApplying); err != nil {
			return err
		}
		if _, err := ledger.Resolve(tx, a.LabourID, stage.VisaApplying, stage.StatusCompleted, "", nil); err != nil {
			return err
		}
		if _, err := ledger.OpenStage(tx, a.LabourID, stage.QVCPayment); err != nil {
			return err
		}
		return profile.Advance(tx, a.LabourID, stage.QVCPayment)
	})
}

// MarkQVCPaid records the QVC fee payment and opens the contract stage.
func MarkQVCPaid(db *gorm.DB, actor Actor, assignmentID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		a, _, err := getScopedAssignment(tx, actor, assignmentID)
		if err != nil {
			return err
		}
		if _, err := ledger.Resolve(tx, a.LabourID, stage.QVCPayment, stage.StatusPaid, "", nil); err != nil {
			return err
		}
		if _, err := ledger.OpenStage(tx, a.LabourID, stage.ContractSign); err != nil {
			return err
		}
		return profile.Advance(tx, a.LabourID, stage.ContractSign)
	})
}

// RefuseContract records the labourer's refusal to sign and ejects the
// candidate from the pipeline.
func RefuseContract(db *gorm.DB, actor Actor, assignmentID, notes string) error {
	return terminalFailure(db, actor, assignmentID, stage.ContractSign, stage.StatusRefused, FeedbackContractRefused, notes)
}

// FailFingerprint records a failed fingerprint verification and ejects the
// candidate from the pipeline.
func FailFingerprint(db *gorm.DB, actor Actor, assignmentID, notes string) error {
	return terminalFailure(db, actor, assignmentID, stage.Fingerprint, stage.StatusFailed, FeedbackFingerprintFail, notes)
}

// FailMedical records an unfit medical result and ejects the candidate from
// the pipeline.
func FailMedical(db *gorm.DB, actor Actor, assignmentID, notes string) error {
	return terminalFailure(db, actor, assignmentID, stage.MedicalStatus, stage.StatusFailed, FeedbackMedicalUnfit, notes)
}

// terminalFailure is the shared shape of the three pipeline-exit triggers:
// resolve the failed stage, reject the assignment, reset the profile for
// reassignment, flag the role as needing more labour and push the requirement
// back under review.
func terminalFailure(db *gorm.DB, actor Actor, assignmentID string, s stage.Stage, ledgerStatus stage.Status, feedback, notes string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		a, p, err := getScopedAssignment(tx, actor, assignmentID)
		if err != nil {
			return err
		}
		if err := requireStage(p, s); err != nil {
			return err
		}

		if _, err := ledger.Resolve(tx, a.LabourID, s, ledgerStatus, notes, nil); err != nil {
			return err
		}

		err = tx.Model(&models.LabourAssignment{}).Where("id = ?", a.ID).Updates(map[string]interface{}{
			"admin_status":   models.DecisionRejected,
			"admin_feedback": feedback,
		}).Error
		if err != nil {
			return fmt.Errorf("assignment: reject %s after %s: %w", a.ID, s, err)
		}

		if err := profile.ResetForReassignment(tx, a.LabourID); err != nil {
			return err
		}

		role, err := lockJobRole(tx, a.JobRoleID)
		if err != nil {
			return err
		}
		err = tx.Model(&models.JobRole{}).Where("id = ?", role.ID).Updates(map[string]interface{}{
			"needs_more_labour": true,
			"admin_status":      models.DecisionNeedsRevision,
		}).Error
		if err != nil {
			return fmt.Errorf("assignment: flag role %s: %w", role.ID, err)
		}

		err = tx.Model(&models.Requirement{}).Where("id = ?", role.RequirementID).
			Update("status", models.RequirementUnderReview).Error
		if err != nil {
			return fmt.Errorf("assignment: reopen requirement %s: %w", role.RequirementID, err)
		}
		return nil
	})
}

// TravelDocuments carries the uploaded travel artifacts. Zero values leave the
// stored fields untouched.
type TravelDocuments struct {
	FlightTicketURL       string
	MedicalCertificateURL string
	PoliceClearanceURL    string
	EmploymentContractURL string
	TravelDate            *time.Time
}

// UploadTravelDocuments persists travel documents onto the assignment. Only
// when all four required documents and a travel date are present does the
// pipeline advance: READY_TO_TRAVEL completes and TRAVEL_CONFIRMATION opens.
// A partial upload changes documents only, never the stage, and the gate fires
// at most once.
func UploadTravelDocuments(db *gorm.DB, actor Actor, assignmentID string, docs TravelDocuments) error {
	return db.Transaction(func(tx *gorm.DB) error {
		a, p, err := getScopedAssignment(tx, actor, assignmentID)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if docs.FlightTicketURL != "" {
			updates["flight_ticket_url"] = docs.FlightTicketURL
			a.FlightTicketURL = docs.FlightTicketURL
		}
		if docs.MedicalCertificateURL != "" {
			updates["medical_certificate_url"] = docs.MedicalCertificateURL
			a.MedicalCertificateURL = docs.MedicalCertificateURL
		}
		if docs.PoliceClearanceURL != "" {
			updates["police_clearance_url"] = docs.PoliceClearanceURL
			a.PoliceClearanceURL = docs.PoliceClearanceURL
		}
		if docs.EmploymentContractURL != "" {
			updates["employment_contract_url"] = docs.EmploymentContractURL
			a.EmploymentContractURL = docs.EmploymentContractURL
		}
		if docs.TravelDate != nil {
			updates["travel_date"] = *docs.TravelDate
			a.TravelDate = docs.TravelDate
		}
		if len(updates) == 0 {
			return fmt.Errorf("%w: no documents provided", faults.ErrValidation)
		}
		if err := tx.Model(&models.LabourAssignment{}).Where("id = ?", a.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("assignment: save travel documents on %s: %w", a.ID, err)
		}

		if !a.HasAllTravelDocuments() || a.TravelDate == nil {
			return nil
		}
		if p.CurrentStage != string(stage.ReadyToTravel) {
			return nil
		}

		if _, err := ledger.Resolve(tx, a.LabourID, stage.ReadyToTravel, stage.StatusCompleted, "", nil); err != nil {
			return err
		}
		if _, err := ledger.OpenStage(tx, a.LabourID, stage.TravelConfirmation); err != nil {
			return err
		}
		return profile.Advance(tx, a.LabourID, stage.TravelConfirmation)
	})
}

// ConfirmTravel settles the travel-confirmation stage. TRAVELED advances to
// arrival; RESCHEDULED keeps the stage open and moves the travel date;
// CANCELED rewinds the pipeline to the start while keeping the requirement
// linkage and history intact (a logistics event, not a candidate rejection).
func ConfirmTravel(db *gorm.DB, actor Actor, assignmentID string, outcome stage.Status, newTravelDate *time.Time, notes string) error {
	switch outcome {
	case stage.StatusTraveled, stage.StatusRescheduled, stage.StatusCanceled:
	default:
		return fmt.Errorf("%w: invalid travel outcome %q", faults.ErrValidation, outcome)
	}
	if outcome == stage.StatusRescheduled && newTravelDate == nil {
		return fmt.Errorf("%w: rescheduling requires a new travel date", faults.ErrValidation)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		a, p, err := getScopedAssignment(tx, actor, assignmentID)
		if err != nil {
			return err
		}
		if err := requireStage(p, stage.TravelConfirmation); err != nil {
			return err
		}

		switch outcome {
		case stage.StatusTraveled:
			if _, err := ledger.Resolve(tx, a.LabourID, stage.TravelConfirmation, stage.StatusTraveled, notes, nil); err != nil {
				return err
			}
			if _, err := ledger.OpenStage(tx, a.LabourID, stage.ArrivalConfirmation); err != nil {
				return err
			}
			return profile.Advance(tx, a.LabourID, stage.ArrivalConfirmation)

		case stage.StatusRescheduled:
			if _, err := ledger.Record(tx, a.LabourID, stage.TravelConfirmation, stage.StatusRescheduled, notes, nil); err != nil {
				return err
			}
			err := tx.Model(&models.LabourAssignment{}).Where("id = ?", a.ID).
				Update("travel_date", *newTravelDate).Error
			if err != nil {
				return fmt.Errorf("assignment: reschedule travel on %s: %w", a.ID, err)
			}
			return nil

		default: // CANCELED
			if _, err := ledger.Resolve(tx, a.LabourID, stage.TravelConfirmation, stage.StatusCanceled, notes, nil); err != nil {
				return err
			}
			if _, err := ledger.OpenStage(tx, a.LabourID, stage.OfferLetterSign); err != nil {
				return err
			}
			return profile.Advance(tx, a.LabourID, stage.OfferLetterSign)
		}
	})
}

// ConfirmArrival completes the pipeline: the arrival attempt resolves (or is
// created already resolved), a DEPLOYED record is appended and the profile is
// marked deployed.
func ConfirmArrival(db *gorm.DB, actor Actor, assignmentID, notes string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		a, p, err := getScopedAssignment(tx, actor, assignmentID)
		if err != nil {
			return err
		}
		if err := requireStage(p, stage.ArrivalConfirmation); err != nil {
			return err
		}
		if _, err := ledger.Resolve(tx, a.LabourID, stage.ArrivalConfirmation, stage.StatusCompleted, notes, nil); err != nil {
			return err
		}
		if _, err := ledger.Record(tx, a.LabourID, stage.Deployed, stage.StatusCompleted, "", nil); err != nil {
			return err
		}
		return profile.MarkDeployed(tx, a.LabourID)
	})
}

// UploadVisa stores the printed visa and opens the ready-to-travel stage. The
// caller notifies the labourer after commit, best-effort.
func UploadVisa(db *gorm.DB, actor Actor, assignmentID, visaURL string) error {
	if visaURL == "" {
		return fmt.Errorf("%w: visa URL is required", faults.ErrValidation)
	}
	return db.Transaction(func(tx *gorm.DB) error {
		a, _, err := getScopedAssignment(tx, actor, assignmentID)
		if err != nil {
			return err
		}
		if err := tx.Model(&models.LabourAssignment{}).Where("id = ?", a.ID).Update("visa_url", visaURL).Error; err != nil {
			return fmt.Errorf("assignment: save visa on %s: %w", a.ID, err)
		}
		if _, err := ledger.Resolve(tx, a.LabourID, stage.VisaPrinting, stage.StatusCompleted, "", nil); err != nil {
			return err
		}
		if _, err := ledger.OpenStage(tx, a.LabourID, stage.ReadyToTravel); err != nil {
			return err
		}
		return profile.Advance(tx, a.LabourID, stage.ReadyToTravel)
	})
}

// UpdateStage is the generic agency-driven ledger update. Terminal statuses
// resolve the stage's pending attempt; PENDING and RESCHEDULED append a new
// attempt. Completing a stage opens the next one and advances the profile;
// completing ARRIVAL_CONFIRMATION additionally deploys the profile.
func UpdateStage(db *gorm.DB, actor Actor, labourID, stageName, statusName, notes string, documents []string) error {
	s, err := stage.Parse(stageName)
	if err != nil {
		return fmt.Errorf("%w: %v", faults.ErrValidation, err)
	}
	st, err := stage.ParseStatus(statusName)
	if err != nil {
		return fmt.Errorf("%w: %v", faults.ErrValidation, err)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		p, err := profile.Get(tx, labourID)
		if err != nil {
			return err
		}
		if actor.Role == RoleAgency && actor.ID != p.AgencyID {
			return fmt.Errorf("%w: labour %s does not belong to agency %s", faults.ErrForbidden, labourID, actor.ID)
		}
		if actor.Role == RoleClient {
			return fmt.Errorf("%w: clients cannot drive stage updates", faults.ErrForbidden)
		}

		if stage.Terminal(st) {
			if _, err := ledger.Resolve(tx, labourID, s, st, notes, documents); err != nil {
				return err
			}
		} else {
			if _, err := ledger.Record(tx, labourID, s, st, notes, documents); err != nil {
				return err
			}
		}

		if st != stage.StatusCompleted {
			return nil
		}
		if s == stage.ArrivalConfirmation {
			if _, err := ledger.Record(tx, labourID, stage.Deployed, stage.StatusCompleted, "", nil); err != nil {
				return err
			}
			return profile.MarkDeployed(tx, labourID)
		}
		next, ok := stage.Next(s)
		if !ok {
			return nil
		}
		if _, err := ledger.OpenStage(tx, labourID, next); err != nil {
			return err
		}
		return profile.Advance(tx, labourID, next)
	})
}

// getScopedAssignment loads the assignment and its labour profile, enforcing
// the actor's ownership scope before anything is mutated.
func getScopedAssignment(tx *gorm.DB, actor Actor, assignmentID string) (*models.LabourAssignment, *models.LabourProfile, error) {
	a, err := getAssignment(tx, assignmentID)
	if err != nil {
		return nil, nil, err
	}
	if err := authorizeAssignment(tx, actor, a); err != nil {
		return nil, nil, err
	}
	p, err := profile.Get(tx, a.LabourID)
	if err != nil {
		return nil, nil, err
	}
	return a, p, nil
}
