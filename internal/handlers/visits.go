package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"clinic-app-server/internal/middleware"
	"clinic-app-server/internal/store"
	"clinic-app-server/internal/utils"
	"clinic-app-server/internal/validation"
)

// VisitHandler handles visit recording and history.
type VisitHandler struct {
	Store *store.Store
}

// NewVisitHandler creates a new VisitHandler.
func NewVisitHandler(s *store.Store) *VisitHandler {
	return &VisitHandler{Store: s}
}

// CreateVisitRequest represents the request body for recording a
// visit.
type CreateVisitRequest struct {
	VisitDate     string   `json:"visitDate" binding:"required"`
	Symptoms      string   `json:"symptoms"`
	Medicines     string   `json:"medicines"`
	DietNotes     string   `json:"dietNotes"`
	Weight        *float64 `json:"weight"`
	BloodPressure string   `json:"bloodPressure"`
	Notes         string   `json:"notes"`
}

// CreateVisit records a visit for a patient.
func (h *VisitHandler) CreateVisit(c *gin.Context) {
	patientID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req CreateVisitRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	symptoms := validation.Sanitize(req.Symptoms)
	medicines := validation.Sanitize(req.Medicines)
	dietNotes := validation.Sanitize(req.DietNotes)
	notes := validation.Sanitize(req.Notes)
	bloodPressure := validation.Sanitize(req.BloodPressure)

	if ok, errs := validation.ValidateVisit(req.VisitDate, symptoms, medicines, dietNotes, req.Weight, bloodPressure, notes); !ok {
		utils.ValidationFailed(c, errs)
		return
	}

	id, err := h.Store.AddVisit(patientID, store.NewVisit{
		VisitDate:     req.VisitDate,
		Symptoms:      symptoms,
		Medicines:     medicines,
		DietNotes:     dietNotes,
		Weight:        req.Weight,
		BloodPressure: bloodPressure,
		Notes:         notes,
	})
	if errors.Is(err, store.ErrNotFound) {
		utils.NotFound(c, "Patient not found")
		return
	}
	if err != nil {
		utils.InternalServerError(c, "Failed to add visit: "+err.Error())
		return
	}

	utils.Created(c, "Visit added successfully", gin.H{"visitId": id})
}

// GetVisits lists a patient's active visits, most recent first.
func (h *VisitHandler) GetVisits(c *gin.Context) {
	patientID, ok := parseID(c, "id")
	if !ok {
		return
	}

	visits, err := h.Store.GetVisits(patientID)
	if err != nil {
		utils.InternalServerError(c, "Failed to list visits: "+err.Error())
		return
	}
	utils.Success(c, "Visits retrieved", visits)
}

// DeleteVisitRequest carries the reason recorded with a deletion.
type DeleteVisitRequest struct {
	Reason string `json:"reason"`
}

// DeleteVisit soft-deletes a single visit.
func (h *VisitHandler) DeleteVisit(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req DeleteVisitRequest
	// The body is optional; a missing reason is recorded as empty.
	_ = c.ShouldBindJSON(&req)

	actor, _ := middleware.GetActorFromContext(c)
	result, err := h.Store.SoftDeleteVisit(id, validation.Sanitize(req.Reason), actor)
	if errors.Is(err, store.ErrNotFound) {
		utils.NotFound(c, "Visit not found or already deleted")
		return
	}
	if err != nil {
		utils.InternalServerError(c, "Failed to delete visit: "+err.Error())
		return
	}
	utils.Success(c, "Visit for '"+result.PatientName+"' on "+validation.DisplayDate(result.VisitDate)+" marked as deleted", result)
}
