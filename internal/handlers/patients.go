package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"clinic-app-server/internal/middleware"
	"clinic-app-server/internal/models"
	"clinic-app-server/internal/store"
	"clinic-app-server/internal/utils"
	"clinic-app-server/internal/validation"
)

// PatientHandler handles patient registration, lookup and updates.
type PatientHandler struct {
	Store *store.Store
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(s *store.Store) *PatientHandler {
	return &PatientHandler{Store: s}
}

// CreatePatientRequest represents the request body for registering a
// patient. Force skips the similar-patient warning but never the
// duplicate-phone check.
type CreatePatientRequest struct {
	Name             string   `json:"name" binding:"required"`
	Age              int      `json:"age"`
	Gender           string   `json:"gender" binding:"required"`
	Phone            string   `json:"phone" binding:"required"`
	Weight           *float64 `json:"weight"`
	Conditions       string   `json:"conditions"`
	RegistrationDate string   `json:"registrationDate"`
	Force            bool     `json:"force"`
}

// CreatePatient registers a new patient after validation and duplicate
// detection.
func (h *PatientHandler) CreatePatient(c *gin.Context) {
	var req CreatePatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	name := validation.Sanitize(req.Name)
	conditions := validation.Sanitize(req.Conditions)
	phone := validation.NormalizePhone(req.Phone)

	if ok, errs := validation.ValidatePatient(name, req.Age, req.Gender, phone, req.Weight, conditions); !ok {
		utils.ValidationFailed(c, errs)
		return
	}
	gender, _ := models.ParseGender(req.Gender)

	if !req.Force {
		similar, err := h.Store.FindSimilar(name, phone)
		if err != nil {
			utils.InternalServerError(c, "Failed to check for similar patients: "+err.Error())
			return
		}
		if len(similar) > 0 {
			c.JSON(http.StatusConflict, utils.ResponseData{
				Status:  http.StatusConflict,
				Message: "Similar patients found. Resubmit with force to register anyway.",
				Data:    gin.H{"similarPatients": similar},
			})
			return
		}
	}

	id, err := h.Store.AddPatient(store.NewPatient{
		Name:             name,
		Age:              req.Age,
		Gender:           gender,
		Phone:            phone,
		Weight:           req.Weight,
		Conditions:       conditions,
		RegistrationDate: req.RegistrationDate,
	})
	if errors.Is(err, store.ErrDuplicatePhone) {
		utils.Conflict(c, "Phone number already exists")
		return
	}
	if err != nil {
		utils.InternalServerError(c, "Failed to add patient: "+err.Error())
		return
	}

	utils.Created(c, "Patient "+name+" added successfully", gin.H{"patientId": id})
}

// GetPatients lists all active patients.
func (h *PatientHandler) GetPatients(c *gin.Context) {
	patients, err := h.Store.GetAllPatients()
	if err != nil {
		utils.InternalServerError(c, "Failed to list patients: "+err.Error())
		return
	}
	utils.Success(c, "Patients retrieved", patients)
}

// SearchPatients matches active patients by name or phone. With
// withVisits=true each result carries its visit count.
func (h *PatientHandler) SearchPatients(c *gin.Context) {
	term := validation.Sanitize(c.Query("q"))
	if ok, errs := validation.ValidateSearchTerm(term); !ok {
		utils.ValidationFailed(c, errs)
		return
	}

	if c.Query("withVisits") == "true" {
		results, err := h.Store.SearchPatientsWithVisitInfo(term)
		if err != nil {
			utils.InternalServerError(c, "Search failed: "+err.Error())
			return
		}
		utils.Success(c, "Search results", results)
		return
	}

	results, err := h.Store.SearchPatients(term)
	if err != nil {
		utils.InternalServerError(c, "Search failed: "+err.Error())
		return
	}
	utils.Success(c, "Search results", results)
}

// GetPatientByID returns a single active patient.
func (h *PatientHandler) GetPatientByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	patient, err := h.Store.GetPatient(id)
	if errors.Is(err, store.ErrNotFound) {
		utils.NotFound(c, "Patient not found")
		return
	}
	if err != nil {
		utils.InternalServerError(c, "Failed to load patient: "+err.Error())
		return
	}
	utils.Success(c, "Patient retrieved", patient)
}

// GetPatientSummary returns a patient together with visit-history
// highlights.
func (h *PatientHandler) GetPatientSummary(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	summary, err := h.Store.GetPatientSummary(id)
	if errors.Is(err, store.ErrNotFound) {
		utils.NotFound(c, "Patient not found")
		return
	}
	if err != nil {
		utils.InternalServerError(c, "Failed to load patient summary: "+err.Error())
		return
	}
	utils.Success(c, "Patient summary retrieved", summary)
}

// UpdatePatientRequest represents the partial-update body. Absent
// fields are left unchanged.
type UpdatePatientRequest struct {
	Name       *string  `json:"name"`
	Age        *int     `json:"age"`
	Gender     *string  `json:"gender"`
	Phone      *string  `json:"phone"`
	Weight     *float64 `json:"weight"`
	Conditions *string  `json:"conditions"`
}

// UpdatePatient applies a partial update to a patient. The patched
// record is validated as a whole before anything is written.
func (h *PatientHandler) UpdatePatient(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdatePatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	existing, err := h.Store.GetPatient(id)
	if errors.Is(err, store.ErrNotFound) {
		utils.NotFound(c, "Patient not found")
		return
	}
	if err != nil {
		utils.InternalServerError(c, "Failed to load patient: "+err.Error())
		return
	}

	patch := store.PatientPatch{Age: req.Age, Weight: req.Weight}
	merged := *existing
	if req.Name != nil {
		name := validation.Sanitize(*req.Name)
		patch.Name = &name
		merged.Name = name
	}
	if req.Age != nil {
		merged.Age = *req.Age
	}
	if req.Gender != nil {
		gender, ok := models.ParseGender(*req.Gender)
		if ok {
			patch.Gender = &gender
		}
		merged.Gender = models.Gender(*req.Gender)
	}
	if req.Phone != nil {
		phone := validation.NormalizePhone(*req.Phone)
		patch.Phone = &phone
		merged.Phone = phone
	}
	if req.Weight != nil {
		merged.Weight = req.Weight
	}
	if req.Conditions != nil {
		conditions := validation.Sanitize(*req.Conditions)
		patch.Conditions = &conditions
		merged.Conditions = conditions
	}

	if ok, errs := validation.ValidatePatient(merged.Name, merged.Age, string(merged.Gender), merged.Phone, merged.Weight, merged.Conditions); !ok {
		utils.ValidationFailed(c, errs)
		return
	}

	err = h.Store.UpdatePatient(id, patch)
	if errors.Is(err, store.ErrNoFields) {
		utils.BadRequest(c, "No fields to update")
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		utils.NotFound(c, "Patient not found")
		return
	}
	if err != nil {
		utils.InternalServerError(c, "Failed to update patient: "+err.Error())
		return
	}
	utils.Success(c, "Patient updated successfully", nil)
}

// MergePatientsRequest represents the merge request body.
type MergePatientsRequest struct {
	KeepID      uint `json:"keepId" binding:"required"`
	DuplicateID uint `json:"duplicateId" binding:"required"`
}

// MergePatients transfers all visits from the duplicate patient to the
// kept one and removes the duplicate.
func (h *PatientHandler) MergePatients(c *gin.Context) {
	var req MergePatientsRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if req.KeepID == req.DuplicateID {
		utils.BadRequest(c, "Cannot merge a patient into itself")
		return
	}

	actor, _ := middleware.GetActorFromContext(c)
	result, err := h.Store.MergePatients(req.KeepID, req.DuplicateID, actor)
	if errors.Is(err, store.ErrNotFound) {
		utils.NotFound(c, "One or both patients not found")
		return
	}
	if err != nil {
		utils.InternalServerError(c, "Failed to merge patients: "+err.Error())
		return
	}
	utils.Success(c, "Patients merged successfully", result)
}

// GetWeightProgression returns the time-ordered weight history from
// registration and visits.
func (h *PatientHandler) GetWeightProgression(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	points, err := h.Store.GetWeightProgression(id)
	if errors.Is(err, store.ErrNotFound) {
		utils.NotFound(c, "Patient not found")
		return
	}
	if err != nil {
		utils.InternalServerError(c, "Failed to load weight progression: "+err.Error())
		return
	}
	utils.Success(c, "Weight progression retrieved", points)
}

func parseID(c *gin.Context, param string) (uint, bool) {
	raw := c.Param(param)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		utils.BadRequest(c, "Invalid id: "+raw)
		return 0, false
	}
	return uint(id), true
}
