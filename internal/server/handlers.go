package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/crewline/crewline/internal/assignment"
	"github.com/crewline/crewline/internal/audit"
	"github.com/crewline/crewline/internal/db"
	"github.com/crewline/crewline/internal/faults"
	"github.com/crewline/crewline/internal/ledger"
	"github.com/crewline/crewline/internal/models"
	"github.com/crewline/crewline/internal/notify"
	"github.com/crewline/crewline/internal/profile"
	"github.com/crewline/crewline/internal/requirement"
	"github.com/crewline/crewline/internal/stage"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// optional turns a bound string field into a nullable column value.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// notifyEvent dispatches a notification after a successful mutation.
// Best-effort and outside the transaction that made the change.
func notifyEvent(c *gin.Context, d Deps, ev notify.Event) {
	d.Dispatcher.Dispatch(c.Request.Context(), ev)
}

func handleCreateClient(d Deps) gin.HandlerFunc {
	type req struct {
		Name        string `json:"name"`
		Email       string `json:"email"`
		CompanyName string `json:"company_name"`
	}
	return func(c *gin.Context) {
		var body req
		if err := c.ShouldBindJSON(&body); err != nil {
			writeError(c, fmt.Errorf("%w: %v", faults.ErrValidation, err))
			return
		}
		if body.Name == "" {
			writeError(c, fmt.Errorf("%w: name is required", faults.ErrValidation))
			return
		}
		id, err := models.NewID("cli")
		if err != nil {
			writeError(c, err)
			return
		}
		client := models.Client{ID: id, Name: body.Name, Email: optional(body.Email), CompanyName: body.CompanyName}
		if err := d.DB.Create(&client).Error; err != nil {
			if db.IsDuplicateEntry(err) {
				writeError(c, fmt.Errorf("%w: a client with email %s already exists", faults.ErrConflict, body.Email))
				return
			}
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, client)
	}
}

func handleCreateAgency(d Deps) gin.HandlerFunc {
	type req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Country string `json:"country"`
	}
	return func(c *gin.Context) {
		var body req
		if err := c.ShouldBindJSON(&body); err != nil {
			writeError(c, fmt.Errorf("%w: %v", faults.ErrValidation, err))
			return
		}
		if body.Name == "" {
			writeError(c, fmt.Errorf("%w: name is required", faults.ErrValidation))
			return
		}
		id, err := models.NewID("agc")
		if err != nil {
			writeError(c, err)
			return
		}
		agency := models.Agency{ID: id, Name: body.Name, Email: optional(body.Email), Country: body.Country}
		if err := d.DB.Create(&agency).Error; err != nil {
			if db.IsDuplicateEntry(err) {
				writeError(c, fmt.Errorf("%w: an agency with email %s already exists", faults.ErrConflict, body.Email))
				return
			}
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, agency)
	}
}

func handleCreateRequirement(d Deps) gin.HandlerFunc {
	type roleReq struct {
		Title    string `json:"title"`
		Quantity int    `json:"quantity"`
	}
	type req struct {
		ClientID string    `json:"client_id"`
		Title    string    `json:"title"`
		Notes    string    `json:"notes"`
		Roles    []roleReq `json:"roles"`
	}
	return func(c *gin.Context) {
		actor := actorFrom(c)
		var body req
		if err := c.ShouldBindJSON(&body); err != nil {
			writeError(c, fmt.Errorf("%w: %v", faults.ErrValidation, err))
			return
		}
		clientID := body.ClientID
		if actor.Role == assignment.RoleClient {
			clientID = actor.ID
		}
		opts := requirement.CreateOpts{ClientID: clientID, Title: body.Title, Notes: body.Notes}
		for _, r := range body.Roles {
			opts.Roles = append(opts.Roles, requirement.RoleSpec{Title: r.Title, Quantity: r.Quantity})
		}
		created, err := requirement.Create(d.DB, opts)
		if err != nil {
			writeError(c, err)
			return
		}
		d.Recorder.Record(auditEntry(actor, "requirement.create", "requirement", created.ID, nil, created))
		c.JSON(http.StatusCreated, created)
	}
}

func handleGetRequirement(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := actorFrom(c)
		req, err := requirement.Get(d.DB, c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		if actor.Role == assignment.RoleClient && req.ClientID != actor.ID {
			writeError(c, fmt.Errorf("%w: requirement %s does not belong to client %s", faults.ErrForbidden, req.ID, actor.ID))
			return
		}
		c.JSON(http.StatusOK, req)
	}
}

// requireOwnRequirement loads the requirement and checks client ownership.
func requireOwnRequirement(c *gin.Context, d Deps, id string) (*models.Requirement, error) {
	actor := actorFrom(c)
	req, err := requirement.Get(d.DB, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == assignment.RoleClient && req.ClientID != actor.ID {
		return nil, fmt.Errorf("%w: requirement %s does not belong to client %s", faults.ErrForbidden, req.ID, actor.ID)
	}
	return req, nil
}

func handleSubmitRequirement(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := requireOwnRequirement(c, d, c.Param("id")); err != nil {
			writeError(c, err)
			return
		}
		req, err := requirement.Submit(d.DB, c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		notifyEvent(c, d, notify.Event{
			Kind:     "requirement.submitted",
			Subject:  "Requirement submitted: " + req.Title,
			Body:     "A new hiring requirement awaits review",
			EntityID: req.ID,
		})
		c.JSON(http.StatusOK, req)
	}
}

func handleReviewRequirement(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := requirement.StartReview(d.DB, c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, req)
	}
}

func handleApproveRequirement(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := requirement.Approve(d.DB, c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		notifyEvent(c, d, notify.Event{
			Kind:        "requirement.approved",
			RecipientID: req.ClientID,
			Subject:     "Requirement approved: " + req.Title,
			EntityID:    req.ID,
		})
		c.JSON(http.StatusOK, req)
	}
}

func handleForwardRole(d Deps) gin.HandlerFunc {
	type req struct {
		AgencyID string `json:"agency_id"`
		Quantity int    `json:"quantity"`
	}
	return func(c *gin.Context) {
		var body req
		if err := c.ShouldBindJSON(&body); err != nil {
			writeError(c, fmt.Errorf("%w: %v", faults.ErrValidation, err))
			return
		}
		fwd, err := requirement.Forward(d.DB, c.Param("id"), body.AgencyID, body.Quantity)
		if err != nil {
			writeError(c, err)
			return
		}
		notifyEvent(c, d, notify.Event{
			Kind:        "role.forwarded",
			RecipientID: body.AgencyID,
			Subject:     "Job role forwarded to your agency",
			Body:        fmt.Sprintf("%d slot(s) to fill", body.Quantity),
			EntityID:    fwd.JobRoleID,
		})
		c.JSON(http.StatusCreated, fwd)
	}
}

func handleCreateLabour(d Deps) gin.HandlerFunc {
	type req struct {
		AgencyID   string `json:"agency_id"`
		Name       string `json:"name"`
		PassportNo string `json:"passport_no"`
		Trade      string `json:"trade"`
	}
	return func(c *gin.Context) {
		actor := actorFrom(c)
		var body req
		if err := c.ShouldBindJSON(&body); err != nil {
			writeError(c, fmt.Errorf("%w: %v", faults.ErrValidation, err))
			return
		}
		agencyID := body.AgencyID
		if actor.Role == assignment.RoleAgency {
			agencyID = actor.ID
		}
		p, err := profile.Create(d.DB, profile.CreateOpts{
			AgencyID:   agencyID,
			Name:       body.Name,
			PassportNo: body.PassportNo,
			Trade:      body.Trade,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		d.Recorder.Record(auditEntry(actor, "labour.create", "labour_profile", p.ID, nil, p))
		c.JSON(http.StatusCreated, p)
	}
}

// requireOwnLabour loads the profile and checks agency ownership.
func requireOwnLabour(c *gin.Context, d Deps, id string) (*models.LabourProfile, error) {
	actor := actorFrom(c)
	p, err := profile.Get(d.DB, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == assignment.RoleAgency && p.AgencyID != actor.ID {
		return nil, fmt.Errorf("%w: labour %s does not belong to agency %s", faults.ErrForbidden, p.ID, actor.ID)
	}
	return p, nil
}

func handleGetLabour(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := requireOwnLabour(c, d, c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func handleReviewLabour(d Deps) gin.HandlerFunc {
	type req struct {
		Status       string `json:"status"`
		Verification string `json:"verification"`
	}
	return func(c *gin.Context) {
		actor := actorFrom(c)
		var body req
		if err := c.ShouldBindJSON(&body); err != nil {
			writeError(c, fmt.Errorf("%w: %v", faults.ErrValidation, err))
			return
		}
		p, err := profile.Review(d.DB, c.Param("id"), body.Status, body.Verification)
		if err != nil {
			writeError(c, err)
			return
		}
		d.Recorder.Record(auditEntry(actor, "labour.review", "labour_profile", p.ID, nil, p))
		notifyEvent(c, d, notify.Event{
			Kind:        "labour.reviewed",
			RecipientID: p.AgencyID,
			Subject:     "Profile review for " + p.Name + ": " + p.Status,
			EntityID:    p.ID,
		})
		c.JSON(http.StatusOK, p)
	}
}

func handleLabourHistory(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := requireOwnLabour(c, d, c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		history, err := ledger.History(d.DB, p.ID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, history)
	}
}

func handleUpdateStage(d Deps) gin.HandlerFunc {
	type req struct {
		Stage     string   `json:"stage"`
		Status    string   `json:"status"`
		Notes     string   `json:"notes"`
		Documents []string `json:"documents"`
	}
	return func(c *gin.Context) {
		actor := actorFrom(c)
		var body req
		if err := c.ShouldBindJSON(&body); err != nil {
			writeError(c, fmt.Errorf("%w: %v", faults.ErrValidation, err))
			return
		}
		err := assignment.UpdateStage(d.DB, actor, c.Param("id"), body.Stage, body.Status, body.Notes, body.Documents)
		if err != nil {
			writeError(c, err)
			return
		}
		d.Recorder.Record(auditEntry(actor, "stage.update", "labour_profile", c.Param("id"), nil,
			map[string]string{"stage": body.Stage, "status": body.Status}))
		c.Status(http.StatusNoContent)
	}
}

func handleAssign(d Deps) gin.HandlerFunc {
	type req struct {
		AgencyID  string   `json:"agency_id"`
		LabourIDs []string `json:"labour_ids"`
	}
	return func(c *gin.Context) {
		actor := actorFrom(c)
		var body req
		if err := c.ShouldBindJSON(&body); err != nil {
			writeError(c, fmt.Errorf("%w: %v", faults.ErrValidation, err))
			return
		}
		agencyID := body.AgencyID
		if actor.Role == assignment.RoleAgency {
			agencyID = actor.ID
		}
		created, err := assignment.Assign(d.DB, actor, assignment.AssignOpts{
			JobRoleID: c.Param("id"),
			AgencyID:  agencyID,
			LabourIDs: body.LabourIDs,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		for _, a := range created {
			d.Recorder.Record(auditEntry(actor, "assignment.create", "labour_assignment", a.ID, nil, a))
		}
		notifyEvent(c, d, notify.Event{
			Kind:     "assignment.created",
			Subject:  "Candidates assigned for review",
			Body:     fmt.Sprintf("%d candidate(s) assigned by agency %s", len(created), agencyID),
			EntityID: c.Param("id"),
		})
		c.JSON(http.StatusCreated, created)
	}
}

func handleListAssignments(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := assignment.ListByJobRole(d.DB, c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func bindDecisions(c *gin.Context) ([]assignment.Decision, error) {
	type decisionReq struct {
		AssignmentID string `json:"assignment_id"`
		Accept       bool   `json:"accept"`
		Feedback     string `json:"feedback"`
	}
	var body struct {
		Decisions []decisionReq `json:"decisions"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", faults.ErrValidation, err)
	}
	out := make([]assignment.Decision, 0, len(body.Decisions))
	for _, dec := range body.Decisions {
		out = append(out, assignment.Decision{
			AssignmentID: dec.AssignmentID,
			Accept:       dec.Accept,
			Feedback:     dec.Feedback,
		})
	}
	return out, nil
}

func handleAdminDecide(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := actorFrom(c)
		decisions, err := bindDecisions(c)
		if err != nil {
			writeError(c, err)
			return
		}
		if err := assignment.AdminDecide(d.DB, actor, c.Param("id"), decisions); err != nil {
			writeError(c, err)
			return
		}
		d.Recorder.Record(auditEntry(actor, "assignment.admin_decide", "job_role", c.Param("id"), nil, decisions))
		notifyEvent(c, d, notify.Event{
			Kind:     "assignment.admin_decided",
			Subject:  "Candidates reviewed by admin",
			Body:     fmt.Sprintf("%d decision(s) applied", len(decisions)),
			EntityID: c.Param("id"),
		})
		c.Status(http.StatusNoContent)
	}
}

func handleClientDecide(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := actorFrom(c)
		decisions, err := bindDecisions(c)
		if err != nil {
			writeError(c, err)
			return
		}
		if err := assignment.ClientDecide(d.DB, actor, c.Param("id"), decisions); err != nil {
			writeError(c, err)
			return
		}
		d.Recorder.Record(auditEntry(actor, "assignment.client_decide", "job_role", c.Param("id"), nil, decisions))
		notifyEvent(c, d, notify.Event{
			Kind:     "assignment.client_decided",
			Subject:  "Candidates reviewed by client",
			Body:     fmt.Sprintf("%d decision(s) applied", len(decisions)),
			EntityID: c.Param("id"),
		})
		c.Status(http.StatusNoContent)
	}
}

// handleUploadOfferLetter accepts the signed offer letter as a multipart
// upload, stores it and records the SIGNED attempt in the ledger.
func handleUploadOfferLetter(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := actorFrom(c)
		a, err := scopedAssignment(c, d)
		if err != nil {
			writeError(c, err)
			return
		}
		url, err := saveUpload(c, d)
		if err != nil {
			writeError(c, err)
			return
		}
		err = d.DB.Model(&models.LabourAssignment{}).Where("id = ?", a.ID).
			Update("signed_offer_letter_url", url).Error
		if err != nil {
			writeError(c, err)
			return
		}
		err = assignment.UpdateStage(d.DB, actor, a.LabourID,
			string(stage.OfferLetterSign), string(stage.StatusSigned), "", []string{url})
		if err != nil {
			writeError(c, err)
			return
		}
		notifyEvent(c, d, notify.Event{
			Kind:     "offer_letter.uploaded",
			Subject:  "Signed offer letter uploaded",
			EntityID: a.ID,
		})
		c.JSON(http.StatusOK, gin.H{"url": url})
	}
}

func handleVerifyOfferLetter(d Deps) gin.HandlerFunc {
	return trigger(d, "offer_letter.verified", func(c *gin.Context, a *models.LabourAssignment) error {
		return assignment.VerifySignedOfferLetter(d.DB, actorFrom(c), a.ID)
	})
}

func handleVisaApplied(d Deps) gin.HandlerFunc {
	return trigger(d, "visa.applied", func(c *gin.Context, a *models.LabourAssignment) error {
		return assignment.MarkVisaApplied(d.DB, actorFrom(c), a.ID)
	})
}

func handleQVCPaid(d Deps) gin.HandlerFunc {
	return trigger(d, "qvc.paid", func(c *gin.Context, a *models.LabourAssignment) error {
		return assignment.MarkQVCPaid(d.DB, actorFrom(c), a.ID)
	})
}

func handleContractRefused(d Deps) gin.HandlerFunc {
	return failureTrigger(d, "contract.refused", assignment.RefuseContract)
}

func handleFingerprintFailed(d Deps) gin.HandlerFunc {
	return failureTrigger(d, "fingerprint.failed", assignment.FailFingerprint)
}

func handleMedicalUnfit(d Deps) gin.HandlerFunc {
	return failureTrigger(d, "medical.unfit", assignment.FailMedical)
}

func handleUploadVisa(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := actorFrom(c)
		a, err := scopedAssignment(c, d)
		if err != nil {
			writeError(c, err)
			return
		}
		var url string
		if strings.HasPrefix(c.ContentType(), "multipart/") {
			url, err = saveUpload(c, d)
			if err != nil {
				writeError(c, err)
				return
			}
		} else {
			var body struct {
				VisaURL string `json:"visa_url"`
			}
			if err := c.ShouldBindJSON(&body); err != nil {
				writeError(c, fmt.Errorf("%w: %v", faults.ErrValidation, err))
				return
			}
			url = body.VisaURL
		}
		if err := assignment.UploadVisa(d.DB, actor, a.ID, url); err != nil {
			writeError(c, err)
			return
		}
		notifyEvent(c, d, notify.Event{
			Kind:        "visa.printed",
			RecipientID: a.AgencyID,
			Subject:     "Visa ready, prepare travel documents",
			EntityID:    a.ID,
		})
		c.JSON(http.StatusOK, gin.H{"url": url})
	}
}

func handleTravelDocuments(d Deps) gin.HandlerFunc {
	type req struct {
		FlightTicketURL       string `json:"flight_ticket_url"`
		MedicalCertificateURL string `json:"medical_certificate_url"`
		PoliceClearanceURL    string `json:"police_clearance_url"`
		EmploymentContractURL string `json:"employment_contract_url"`
		TravelDate            string `json:"travel_date"`
	}
	return func(c *gin.Context) {
		actor := actorFrom(c)
		var body req
		if err := c.ShouldBindJSON(&body); err != nil {
			writeError(c, fmt.Errorf("%w: %v", faults.ErrValidation, err))
			return
		}
		docs := assignment.TravelDocuments{
			FlightTicketURL:       body.FlightTicketURL,
			MedicalCertificateURL: body.MedicalCertificateURL,
			PoliceClearanceURL:    body.PoliceClearanceURL,
			EmploymentContractURL: body.EmploymentContractURL,
		}
		if body.TravelDate != "" {
			ts, err := time.Parse(dateLayout, body.TravelDate)
			if err != nil {
				writeError(c, fmt.Errorf("%w: travel_date must be YYYY-MM-DD", faults.ErrValidation))
				return
			}
			docs.TravelDate = &ts
		}
		if err := assignment.UploadTravelDocuments(d.DB, actor, c.Param("id"), docs); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func handleTravelConfirmation(d Deps) gin.HandlerFunc {
	type req struct {
		Outcome       string `json:"outcome"`
		NewTravelDate string `json:"new_travel_date"`
		Notes         string `json:"notes"`
	}
	return func(c *gin.Context) {
		actor := actorFrom(c)
		var body req
		if err := c.ShouldBindJSON(&body); err != nil {
			writeError(c, fmt.Errorf("%w: %v", faults.ErrValidation, err))
			return
		}
		var newDate *time.Time
		if body.NewTravelDate != "" {
			ts, err := time.Parse(dateLayout, body.NewTravelDate)
			if err != nil {
				writeError(c, fmt.Errorf("%w: new_travel_date must be YYYY-MM-DD", faults.ErrValidation))
				return
			}
			newDate = &ts
		}
		err := assignment.ConfirmTravel(d.DB, actor, c.Param("id"), stage.Status(body.Outcome), newDate, body.Notes)
		if err != nil {
			writeError(c, err)
			return
		}
		d.Recorder.Record(auditEntry(actor, "travel.confirm", "labour_assignment", c.Param("id"), nil,
			map[string]string{"outcome": body.Outcome}))
		c.Status(http.StatusNoContent)
	}
}

func handleArrival(d Deps) gin.HandlerFunc {
	type req struct {
		Notes string `json:"notes"`
	}
	return func(c *gin.Context) {
		actor := actorFrom(c)
		var body req
		if err := c.ShouldBindJSON(&body); err != nil && c.Request.ContentLength > 0 {
			writeError(c, fmt.Errorf("%w: %v", faults.ErrValidation, err))
			return
		}
		a, err := scopedAssignment(c, d)
		if err != nil {
			writeError(c, err)
			return
		}
		if err := assignment.ConfirmArrival(d.DB, actor, a.ID, body.Notes); err != nil {
			writeError(c, err)
			return
		}
		d.Recorder.Record(auditEntry(actor, "arrival.confirm", "labour_assignment", a.ID, nil, nil))
		notifyEvent(c, d, notify.Event{
			Kind:        "labour.deployed",
			RecipientID: a.AgencyID,
			Subject:     "Candidate deployed",
			EntityID:    a.LabourID,
		})
		c.Status(http.StatusNoContent)
	}
}

// trigger wraps the no-body stage triggers: run, audit, notify, 204.
func trigger(d Deps, kind string, fn func(c *gin.Context, a *models.LabourAssignment) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		a, err := scopedAssignment(c, d)
		if err != nil {
			writeError(c, err)
			return
		}
		if err := fn(c, a); err != nil {
			writeError(c, err)
			return
		}
		d.Recorder.Record(auditEntry(actorFrom(c), kind, "labour_assignment", a.ID, nil, nil))
		notifyEvent(c, d, notify.Event{Kind: kind, RecipientID: a.AgencyID, Subject: kind, EntityID: a.ID})
		c.Status(http.StatusNoContent)
	}
}

// failureTrigger wraps the terminal-failure triggers, which take optional notes.
func failureTrigger(d Deps, kind string, fn func(db *gorm.DB, actor assignment.Actor, assignmentID, notes string) error) gin.HandlerFunc {
	type req struct {
		Notes string `json:"notes"`
	}
	return func(c *gin.Context) {
		actor := actorFrom(c)
		var body req
		if err := c.ShouldBindJSON(&body); err != nil && c.Request.ContentLength > 0 {
			writeError(c, fmt.Errorf("%w: %v", faults.ErrValidation, err))
			return
		}
		a, err := scopedAssignment(c, d)
		if err != nil {
			writeError(c, err)
			return
		}
		if err := fn(d.DB, actor, a.ID, body.Notes); err != nil {
			writeError(c, err)
			return
		}
		d.Recorder.Record(auditEntry(actor, kind, "labour_assignment", a.ID, nil,
			map[string]string{"notes": body.Notes}))
		notifyEvent(c, d, notify.Event{
			Kind:        kind,
			RecipientID: a.AgencyID,
			Subject:     "Candidate removed from pipeline: " + kind,
			EntityID:    a.ID,
		})
		c.Status(http.StatusNoContent)
	}
}

// scopedAssignment loads the :id assignment without mutating anything; the
// workflow layer re-checks scope inside its own transaction.
func scopedAssignment(c *gin.Context, d Deps) (*models.LabourAssignment, error) {
	var a models.LabourAssignment
	if err := d.DB.Where("id = ?", c.Param("id")).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: assignment %s", faults.ErrNotFound, c.Param("id"))
		}
		return nil, err
	}
	return &a, nil
}

// saveUpload stores the multipart "document" file and returns its URL.
func saveUpload(c *gin.Context, d Deps) (string, error) {
	if d.Store == nil {
		return "", fmt.Errorf("%w: document uploads are not configured", faults.ErrPrecondition)
	}
	fh, err := c.FormFile("document")
	if err != nil {
		return "", fmt.Errorf("%w: multipart field 'document' is required", faults.ErrValidation)
	}
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("server: open upload: %w", err)
	}
	defer f.Close()
	return d.Store.Save(fh.Filename, f)
}

func auditEntry(actor assignment.Actor, action, entityType, entityID string, oldData, newData interface{}) audit.Entry {
	by := actor.ID
	if actor.Role == assignment.RoleAdmin && by == "" {
		by = "admin"
	}
	return audit.Entry{
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		PerformedBy: by,
		Old:         oldData,
		New:         newData,
	}
}
