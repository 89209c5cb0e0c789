// Package stage defines the fixed onboarding pipeline a labour profile passes
// through after assignment.
//
// Pipeline order:
//
//	OFFER_LETTER_SIGN → VISA_APPLYING → QVC_PAYMENT → CONTRACT_SIGN →
//	MEDICAL_STATUS → FINGERPRINT → VISA_PRINTING → READY_TO_TRAVEL →
//	TRAVEL_CONFIRMATION → ARRIVAL_CONFIRMATION → DEPLOYED
//
// CONTRACT_SIGN, MEDICAL_STATUS and FINGERPRINT carry a failure edge that
// ejects the candidate from the pipeline; TRAVEL_CONFIRMATION may loop
// (rescheduled) or rewind to the start (canceled). Every other edge is strictly
// forward-only.
package stage

import "fmt"

// Stage is one step of the onboarding pipeline.
type Stage string

const (
	OfferLetterSign     Stage = "OFFER_LETTER_SIGN"
	VisaApplying        Stage = "VISA_APPLYING"
	QVCPayment          Stage = "QVC_PAYMENT"
	ContractSign        Stage = "CONTRACT_SIGN"
	MedicalStatus       Stage = "MEDICAL_STATUS"
	Fingerprint         Stage = "FINGERPRINT"
	VisaPrinting        Stage = "VISA_PRINTING"
	ReadyToTravel       Stage = "READY_TO_TRAVEL"
	TravelConfirmation  Stage = "TRAVEL_CONFIRMATION"
	ArrivalConfirmation Stage = "ARRIVAL_CONFIRMATION"
	Deployed            Stage = "DEPLOYED"
)

// Pipeline is the full ordered stage list.
var Pipeline = []Stage{
	OfferLetterSign,
	VisaApplying,
	QVCPayment,
	ContractSign,
	MedicalStatus,
	Fingerprint,
	VisaPrinting,
	ReadyToTravel,
	TravelConfirmation,
	ArrivalConfirmation,
	Deployed,
}

// Party is the side responsible for completing a stage, used for reminder routing.
type Party string

const (
	PartyClient Party = "CLIENT"
	PartyAgency Party = "AGENCY"
)

// owners maps each stage to the party that must act on it.
var owners = map[Stage]Party{
	OfferLetterSign:     PartyAgency,
	VisaApplying:        PartyClient,
	QVCPayment:          PartyClient,
	ContractSign:        PartyAgency,
	MedicalStatus:       PartyAgency,
	Fingerprint:         PartyAgency,
	VisaPrinting:        PartyClient,
	ReadyToTravel:       PartyAgency,
	TravelConfirmation:  PartyAgency,
	ArrivalConfirmation: PartyClient,
	Deployed:            PartyClient,
}

// Status is the outcome recorded for one stage attempt.
type Status string

const (
	StatusPending     Status = "PENDING"
	StatusCompleted   Status = "COMPLETED"
	StatusFailed      Status = "FAILED"
	StatusRefused     Status = "REFUSED"
	StatusPaid        Status = "PAID"
	StatusSigned      Status = "SIGNED"
	StatusTraveled    Status = "TRAVELED"
	StatusRescheduled Status = "RESCHEDULED"
	StatusCanceled    Status = "CANCELED"
)

// Next returns the stage after s in the pipeline. The second return is false
// at the terminal stage.
func Next(s Stage) (Stage, bool) {
	for i, st := range Pipeline {
		if st == s {
			if i+1 < len(Pipeline) {
				return Pipeline[i+1], true
			}
			return "", false
		}
	}
	return "", false
}

// Index returns the zero-based position of s in the pipeline, or -1 for an
// unknown stage.
func Index(s Stage) int {
	for i, st := range Pipeline {
		if st == s {
			return i
		}
	}
	return -1
}

// OwnerOf returns the party responsible for completing s.
func OwnerOf(s Stage) Party {
	return owners[s]
}

// Parse converts a raw string to a Stage, rejecting unknown values.
func Parse(s string) (Stage, error) {
	st := Stage(s)
	if Index(st) == -1 {
		return "", fmt.Errorf("stage: unknown stage %q", s)
	}
	return st, nil
}

// ParseStatus converts a raw string to a Status, rejecting unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusPending, StatusCompleted, StatusFailed, StatusRefused, StatusPaid,
		StatusSigned, StatusTraveled, StatusRescheduled, StatusCanceled:
		return st, nil
	}
	return "", fmt.Errorf("stage: unknown stage status %q", s)
}

// Terminal reports whether a status resolves a stage attempt (anything but
// PENDING and RESCHEDULED closes the attempt).
func Terminal(s Status) bool {
	return s != StatusPending && s != StatusRescheduled
}
