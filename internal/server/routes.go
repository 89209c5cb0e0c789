package server

import (
	"errors"
	"log"
	"net/http"

	"github.com/crewline/crewline/internal/assignment"
	"github.com/crewline/crewline/internal/faults"
	"github.com/gin-gonic/gin"
)

// newRouter builds the Gin router with all API routes registered.
func newRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	if d.Store != nil {
		router.Static("/files", d.Store.Dir())
	}

	api := router.Group("/api", identity())

	// Tenants.
	api.POST("/clients", requireRole(assignment.RoleAdmin), handleCreateClient(d))
	api.POST("/agencies", requireRole(assignment.RoleAdmin), handleCreateAgency(d))

	// Requirement intake.
	api.POST("/requirements", requireRole(assignment.RoleClient, assignment.RoleAdmin), handleCreateRequirement(d))
	api.GET("/requirements/:id", handleGetRequirement(d))
	api.POST("/requirements/:id/submit", requireRole(assignment.RoleClient, assignment.RoleAdmin), handleSubmitRequirement(d))
	api.POST("/requirements/:id/review", requireRole(assignment.RoleAdmin), handleReviewRequirement(d))
	api.POST("/requirements/:id/approve", requireRole(assignment.RoleAdmin), handleApproveRequirement(d))
	api.POST("/roles/:id/forward", requireRole(assignment.RoleAdmin), handleForwardRole(d))

	// Labour profiles.
	api.POST("/labour", requireRole(assignment.RoleAgency, assignment.RoleAdmin), handleCreateLabour(d))
	api.GET("/labour/:id", handleGetLabour(d))
	api.POST("/labour/:id/review", requireRole(assignment.RoleAdmin), handleReviewLabour(d))
	api.GET("/labour/:id/history", handleLabourHistory(d))
	api.POST("/labour/:id/stage", handleUpdateStage(d))

	// Assignment and reconciliation.
	api.POST("/roles/:id/assign", handleAssign(d))
	api.GET("/roles/:id/assignments", handleListAssignments(d))
	api.POST("/roles/:id/admin-decision", handleAdminDecide(d))
	api.POST("/roles/:id/client-decision", handleClientDecide(d))

	// Stage-progression triggers.
	api.POST("/assignments/:id/offer-letter", handleUploadOfferLetter(d))
	api.POST("/assignments/:id/verify-offer-letter", handleVerifyOfferLetter(d))
	api.POST("/assignments/:id/visa-applied", handleVisaApplied(d))
	api.POST("/assignments/:id/qvc-paid", handleQVCPaid(d))
	api.POST("/assignments/:id/contract-refused", handleContractRefused(d))
	api.POST("/assignments/:id/fingerprint-failed", handleFingerprintFailed(d))
	api.POST("/assignments/:id/medical-unfit", handleMedicalUnfit(d))
	api.POST("/assignments/:id/visa", handleUploadVisa(d))
	api.POST("/assignments/:id/travel-documents", handleTravelDocuments(d))
	api.POST("/assignments/:id/travel-confirmation", handleTravelConfirmation(d))
	api.POST("/assignments/:id/arrival", handleArrival(d))

	return router
}

// identity resolves the caller from the X-User-ID and X-User-Role headers.
func identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetHeader("X-User-Role")
		switch role {
		case assignment.RoleAdmin, assignment.RoleAgency, assignment.RoleClient:
		default:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid X-User-Role header"})
			return
		}
		id := c.GetHeader("X-User-ID")
		if role != assignment.RoleAdmin && id == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "X-User-ID header is required"})
			return
		}
		c.Set("actor", assignment.Actor{ID: id, Role: role})
		c.Next()
	}
}

// requireRole rejects callers whose role is not in the allowed set.
func requireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := actorFrom(c)
		for _, r := range roles {
			if actor.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "role " + actor.Role + " may not perform this operation"})
	}
}

func actorFrom(c *gin.Context) assignment.Actor {
	v, _ := c.Get("actor")
	actor, _ := v.(assignment.Actor)
	return actor
}

// writeError maps workflow errors to HTTP status codes.
func writeError(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, faults.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, faults.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, faults.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, faults.ErrPrecondition), errors.Is(err, faults.ErrConflict):
		status = http.StatusConflict
	default:
		log.Printf("server: %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
