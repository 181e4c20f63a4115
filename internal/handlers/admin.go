package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"clinic-app-server/internal/middleware"
	"clinic-app-server/internal/store"
	"clinic-app-server/internal/utils"
	"clinic-app-server/internal/validation"
)

// AdminHandler handles the deletion/audit subsystem: soft and hard
// deletes, restores, and compliance listings.
type AdminHandler struct {
	Store *store.Store
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(s *store.Store) *AdminHandler {
	return &AdminHandler{Store: s}
}

// DeletePatientRequest carries the reason recorded with a soft delete.
type DeletePatientRequest struct {
	Reason string `json:"reason"`
}

// DeletePatient soft-deletes a patient and all of its visits.
func (h *AdminHandler) DeletePatient(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req DeletePatientRequest
	_ = c.ShouldBindJSON(&req)

	actor, _ := middleware.GetActorFromContext(c)
	result, err := h.Store.SoftDeletePatient(id, validation.Sanitize(req.Reason), actor)
	if errors.Is(err, store.ErrNotFound) {
		utils.NotFound(c, "Patient not found or already deleted")
		return
	}
	if err != nil {
		utils.InternalServerError(c, "Failed to delete patient: "+err.Error())
		return
	}
	message := fmt.Sprintf("Patient '%s' and %d visits marked as deleted successfully",
		result.PatientName, result.VisitCount)
	utils.Success(c, message, result)
}

// HardDeletePatientRequest carries the confirmation code required for
// permanent deletion.
type HardDeletePatientRequest struct {
	ConfirmationCode string `json:"confirmationCode" binding:"required"`
}

// HardDeletePatient permanently removes a patient and all of its
// visits. Requires the confirmation code DELETE-{id}-PERMANENT.
func (h *AdminHandler) HardDeletePatient(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req HardDeletePatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	actor, _ := middleware.GetActorFromContext(c)
	result, err := h.Store.HardDeletePatient(id, req.ConfirmationCode, actor)
	if errors.Is(err, store.ErrInvalidConfirmation) {
		utils.BadRequest(c, fmt.Sprintf("Invalid confirmation code. Required: DELETE-%d-PERMANENT", id))
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		utils.NotFound(c, "Patient not found")
		return
	}
	if err != nil {
		utils.InternalServerError(c, "Failed to permanently delete patient: "+err.Error())
		return
	}
	message := fmt.Sprintf("Patient '%s' and %d visits permanently deleted",
		result.PatientName, result.VisitsDeleted)
	utils.Success(c, message, result)
}

// RestorePatient clears the deletion flag on a soft-deleted patient
// and its visits.
func (h *AdminHandler) RestorePatient(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	actor, _ := middleware.GetActorFromContext(c)
	result, err := h.Store.RestorePatient(id, actor)
	if errors.Is(err, store.ErrNotFound) {
		utils.NotFound(c, "Patient not found in deleted records")
		return
	}
	if err != nil {
		utils.InternalServerError(c, "Failed to restore patient: "+err.Error())
		return
	}
	message := fmt.Sprintf("Patient '%s' and %d visits restored successfully",
		result.PatientName, result.VisitsRestored)
	utils.Success(c, message, result)
}

// ListDeletedRecords returns recent deletions for admin review.
func (h *AdminHandler) ListDeletedRecords(c *gin.Context) {
	limit := parseLimit(c, 50)
	records, err := h.Store.ListDeletedRecords(limit)
	if err != nil {
		utils.InternalServerError(c, "Failed to list deleted records: "+err.Error())
		return
	}
	utils.Success(c, "Deleted records retrieved", records)
}

// ListAuditLog returns recent audit entries for compliance review.
func (h *AdminHandler) ListAuditLog(c *gin.Context) {
	limit := parseLimit(c, 100)
	entries, err := h.Store.ListAuditLog(limit)
	if err != nil {
		utils.InternalServerError(c, "Failed to list audit log: "+err.Error())
		return
	}
	utils.Success(c, "Audit log retrieved", entries)
}

func parseLimit(c *gin.Context, fallback int) int {
	raw := c.Query("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}
