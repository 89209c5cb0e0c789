package models

// Requirement lifecycle statuses.
const (
	RequirementDraft        = "DRAFT"
	RequirementSubmitted    = "SUBMITTED"
	RequirementUnderReview  = "UNDER_REVIEW"
	RequirementForwarded    = "FORWARDED"
	RequirementApproved     = "APPROVED"
	RequirementClientReview = "CLIENT_REVIEW"
	RequirementAccepted     = "ACCEPTED"
	RequirementRejected     = "REJECTED"
)

// Per-party decision statuses carried by LabourAssignment and JobRole.
const (
	DecisionPending            = "PENDING"
	DecisionAccepted           = "ACCEPTED"
	DecisionRejected           = "REJECTED"
	DecisionNeedsRevision      = "NEEDS_REVISION"
	DecisionSubmitted          = "SUBMITTED"
	DecisionPartiallySubmitted = "PARTIALLY_SUBMITTED"
	DecisionClientReview       = "CLIENT_REVIEW"
)

// Labour profile statuses.
const (
	ProfileReceived    = "RECEIVED"
	ProfileUnderReview = "UNDER_REVIEW"
	ProfileApproved    = "APPROVED"
	ProfileShortlisted = "SHORTLISTED"
	ProfileDeployed    = "DEPLOYED"
	ProfileRejected    = "REJECTED"
)

// Labour profile verification levels.
const (
	VerificationUnverified        = "UNVERIFIED"
	VerificationPartiallyVerified = "PARTIALLY_VERIFIED"
	VerificationVerified          = "VERIFIED"
)

// ValidDecision reports whether s is a known per-party decision status.
func ValidDecision(s string) bool {
	switch s {
	case DecisionPending, DecisionAccepted, DecisionRejected, DecisionNeedsRevision,
		DecisionSubmitted, DecisionPartiallySubmitted, DecisionClientReview:
		return true
	}
	return false
}
