// Package profile owns the labour profile's aggregate state: status,
// current stage and requirement linkage. These fields are the denormalized
// projection of the stage ledger and are mutated only here, by the transition
// triggers and by the reconciler.
package profile

import (
	"errors"
	"fmt"

	"github.com/crewline/crewline/internal/faults"
	"github.com/crewline/crewline/internal/ledger"
	"github.com/crewline/crewline/internal/models"
	"github.com/crewline/crewline/internal/stage"
	"gorm.io/gorm"
)

// CreateOpts holds parameters for registering a new labour candidate.
type CreateOpts struct {
	AgencyID   string
	Name       string
	PassportNo string
	Trade      string
}

// Create registers a candidate under an agency with status RECEIVED.
func Create(db *gorm.DB, opts CreateOpts) (*models.LabourProfile, error) {
	if opts.AgencyID == "" {
		return nil, fmt.Errorf("%w: agency ID is required", faults.ErrValidation)
	}
	if opts.Name == "" {
		return nil, fmt.Errorf("%w: name is required", faults.ErrValidation)
	}

	var count int64
	if err := db.Model(&models.Agency{}).Where("id = ?", opts.AgencyID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("profile: check agency %s: %w", opts.AgencyID, err)
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: agency %s", faults.ErrNotFound, opts.AgencyID)
	}

	id, err := models.NewID("lab")
	if err != nil {
		return nil, err
	}
	p := models.LabourProfile{
		ID:           id,
		AgencyID:     opts.AgencyID,
		Name:         opts.Name,
		PassportNo:   opts.PassportNo,
		Trade:        opts.Trade,
		Status:       models.ProfileReceived,
		Verification: models.VerificationUnverified,
		CurrentStage: string(stage.OfferLetterSign),
	}
	if err := db.Create(&p).Error; err != nil {
		return nil, fmt.Errorf("profile: create: %w", err)
	}
	return &p, nil
}

// Review moves a profile through the admin review: RECEIVED → UNDER_REVIEW →
// APPROVED (with a verification level) or REJECTED.
func Review(db *gorm.DB, labourID, status, verification string) (*models.LabourProfile, error) {
	switch status {
	case models.ProfileUnderReview, models.ProfileApproved, models.ProfileRejected:
	default:
		return nil, fmt.Errorf("%w: invalid review status %q", faults.ErrValidation, status)
	}
	if verification != "" {
		switch verification {
		case models.VerificationUnverified, models.VerificationPartiallyVerified, models.VerificationVerified:
		default:
			return nil, fmt.Errorf("%w: invalid verification %q", faults.ErrValidation, verification)
		}
	}

	p, err := Get(db, labourID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"status": status}
	if verification != "" {
		updates["verification"] = verification
	}
	if err := db.Model(&models.LabourProfile{}).Where("id = ?", labourID).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("profile: review %s: %w", labourID, err)
	}
	p.Status = status
	if verification != "" {
		p.Verification = verification
	}
	return p, nil
}

// Get fetches a profile by ID.
func Get(db *gorm.DB, labourID string) (*models.LabourProfile, error) {
	var p models.LabourProfile
	if err := db.Where("id = ?", labourID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: labour profile %s", faults.ErrNotFound, labourID)
		}
		return nil, fmt.Errorf("profile: get %s: %w", labourID, err)
	}
	return &p, nil
}

// Advance moves the profile's current stage pointer.
func Advance(db *gorm.DB, labourID string, to stage.Stage) error {
	if stage.Index(to) == -1 {
		return fmt.Errorf("%w: unknown stage %q", faults.ErrValidation, to)
	}
	res := db.Model(&models.LabourProfile{}).Where("id = ?", labourID).
		Update("current_stage", string(to))
	if res.Error != nil {
		return fmt.Errorf("profile: advance %s to %s: %w", labourID, to, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: labour profile %s", faults.ErrNotFound, labourID)
	}
	return nil
}

// MarkDeployed records successful arrival: status and stage both DEPLOYED.
func MarkDeployed(db *gorm.DB, labourID string) error {
	res := db.Model(&models.LabourProfile{}).Where("id = ?", labourID).Updates(map[string]interface{}{
		"status":        models.ProfileDeployed,
		"current_stage": string(stage.Deployed),
	})
	if res.Error != nil {
		return fmt.Errorf("profile: mark deployed %s: %w", labourID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: labour profile %s", faults.ErrNotFound, labourID)
	}
	return nil
}

// ResetForReassignment detaches the profile from its pipeline after a terminal
// failure: status back to APPROVED, requirement link cleared, stage pointer
// rewound and the entire stage history deleted, so the next assignment starts
// with a clean ledger.
func ResetForReassignment(db *gorm.DB, labourID string) error {
	res := db.Model(&models.LabourProfile{}).Where("id = ?", labourID).Updates(map[string]interface{}{
		"status":         models.ProfileApproved,
		"requirement_id": nil,
		"current_stage":  string(stage.OfferLetterSign),
	})
	if res.Error != nil {
		return fmt.Errorf("profile: reset %s: %w", labourID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: labour profile %s", faults.ErrNotFound, labourID)
	}
	return ledger.ClearForLabour(db, labourID)
}
