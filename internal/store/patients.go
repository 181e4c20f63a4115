package store

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"clinic-app-server/internal/models"
	"clinic-app-server/internal/validation"
)

// NewPatient carries the fields accepted at registration. Presentation
// is expected to have validated and sanitized them already.
type NewPatient struct {
	Name             string
	Age              int
	Gender           models.Gender
	Phone            string
	Weight           *float64
	Conditions       string
	RegistrationDate string
}

// PatientPatch is an explicit partial update: nil fields are left
// unchanged, set fields overwrite the stored value.
type PatientPatch struct {
	Name       *string
	Age        *int
	Gender     *models.Gender
	Phone      *string
	Weight     *float64
	Conditions *string
}

// PatientMatch is a similar-patient candidate surfaced before insert.
type PatientMatch struct {
	models.Patient
	IsPhoneMatch  bool `json:"isPhoneMatch"`
	IsNameSimilar bool `json:"isNameSimilar"`
}

// PatientWithVisits augments a patient with visit-count information.
type PatientWithVisits struct {
	models.Patient
	VisitCount         int64 `json:"visitCount"`
	IsNewPatient       bool  `json:"isNewPatient"`
	IsReturningPatient bool  `json:"isReturningPatient"`
}

// PatientSummary combines a patient with visit history highlights.
type PatientSummary struct {
	Patient            models.Patient `json:"patient"`
	VisitCount         int64          `json:"visitCount"`
	LastVisit          *models.Visit  `json:"lastVisit,omitempty"`
	LastWeight         *float64       `json:"lastWeight,omitempty"`
	IsNewPatient       bool           `json:"isNewPatient"`
	IsReturningPatient bool           `json:"isReturningPatient"`
}

// MergeResult reports the outcome of merging duplicate records.
type MergeResult struct {
	KeptName          string `json:"keptName"`
	DuplicateName     string `json:"duplicateName"`
	VisitsTransferred int64  `json:"visitsTransferred"`
}

// AddPatient registers a new patient. It fails with ErrDuplicatePhone
// when an active patient already holds the phone number; a phone
// belonging only to soft-deleted patients may be reused. The
// registration date defaults to today.
func (s *Store) AddPatient(p NewPatient) (uint, error) {
	registrationDate := p.RegistrationDate
	if registrationDate == "" {
		registrationDate = validation.Today()
	} else {
		normalized, err := validation.NormalizeDate(registrationDate)
		if err != nil {
			return 0, err
		}
		registrationDate = normalized
	}

	patient := models.Patient{
		Name:        p.Name,
		Age:         p.Age,
		Gender:      p.Gender,
		Phone:       p.Phone,
		Weight:      p.Weight,
		Conditions:  p.Conditions,
		CreatedDate: registrationDate,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := active(tx.Model(&models.Patient{})).Where("phone = ?", p.Phone).Count(&count).Error; err != nil {
			return fmt.Errorf("checking phone uniqueness: %w", err)
		}
		if count > 0 {
			return ErrDuplicatePhone
		}
		if err := tx.Create(&patient).Error; err != nil {
			return fmt.Errorf("inserting patient: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.Info().Uint("patient_id", patient.ID).Str("registered", registrationDate).Msg("patient added")
	return patient.ID, nil
}

// GetPatient returns an active patient by id.
func (s *Store) GetPatient(id uint) (*models.Patient, error) {
	var patient models.Patient
	err := active(s.db).Where("patient_id = ?", id).First(&patient).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading patient: %w", err)
	}
	return &patient, nil
}

// FindByPhone returns the active patient holding an exact phone number.
func (s *Store) FindByPhone(phone string) (*models.Patient, error) {
	var patient models.Patient
	err := active(s.db).Where("phone = ?", phone).First(&patient).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("looking up phone: %w", err)
	}
	return &patient, nil
}

// FindSimilar surfaces registration duplicates: active patients with
// the exact phone number or a case-insensitive substring name match,
// phone matches first.
func (s *Store) FindSimilar(name, phone string) ([]PatientMatch, error) {
	var patients []models.Patient
	namePattern := "%" + name + "%"
	err := active(s.db).
		Where("phone = ? OR LOWER(name) LIKE LOWER(?)", phone, namePattern).
		Find(&patients).Error
	if err != nil {
		return nil, fmt.Errorf("finding similar patients: %w", err)
	}

	matches := make([]PatientMatch, 0, len(patients))
	loweredName := strings.ToLower(name)
	for _, p := range patients {
		loweredCandidate := strings.ToLower(p.Name)
		matches = append(matches, PatientMatch{
			Patient:      p,
			IsPhoneMatch: p.Phone == phone,
			IsNameSimilar: strings.Contains(loweredCandidate, loweredName) ||
				strings.Contains(loweredName, loweredCandidate),
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].IsPhoneMatch != matches[j].IsPhoneMatch {
			return matches[i].IsPhoneMatch
		}
		return matches[i].Name < matches[j].Name
	})
	return matches, nil
}

// SearchPatients matches active patients by name or phone substring,
// ordered by name.
func (s *Store) SearchPatients(searchTerm string) ([]models.Patient, error) {
	var patients []models.Patient
	pattern := "%" + searchTerm + "%"
	err := active(s.db).
		Where("LOWER(name) LIKE LOWER(?) OR phone LIKE ?", pattern, pattern).
		Order("name").
		Find(&patients).Error
	if err != nil {
		return nil, fmt.Errorf("searching patients: %w", err)
	}
	return patients, nil
}

// SearchPatientsWithVisitInfo runs SearchPatients and annotates each
// result with its visit count.
func (s *Store) SearchPatientsWithVisitInfo(searchTerm string) ([]PatientWithVisits, error) {
	patients, err := s.SearchPatients(searchTerm)
	if err != nil {
		return nil, err
	}

	results := make([]PatientWithVisits, 0, len(patients))
	for _, p := range patients {
		count, err := s.GetVisitCount(p.ID)
		if err != nil {
			return nil, err
		}
		results = append(results, PatientWithVisits{
			Patient:            p,
			VisitCount:         count,
			IsNewPatient:       count == 0,
			IsReturningPatient: count > 0,
		})
	}
	return results, nil
}

// GetAllPatients returns every active patient, most recently
// registered first.
func (s *Store) GetAllPatients() ([]models.Patient, error) {
	var patients []models.Patient
	err := active(s.db).Order("created_date DESC").Find(&patients).Error
	if err != nil {
		return nil, fmt.Errorf("listing patients: %w", err)
	}
	return patients, nil
}

// UpdatePatient applies a partial update. Only set patch fields are
// written; the updated timestamp is touched on success.
func (s *Store) UpdatePatient(id uint, patch PatientPatch) error {
	updates := map[string]interface{}{}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Age != nil {
		updates["age"] = *patch.Age
	}
	if patch.Gender != nil {
		updates["gender"] = *patch.Gender
	}
	if patch.Phone != nil {
		updates["phone"] = *patch.Phone
	}
	if patch.Weight != nil {
		updates["weight"] = *patch.Weight
	}
	if patch.Conditions != nil {
		updates["conditions"] = *patch.Conditions
	}
	if len(updates) == 0 {
		return ErrNoFields
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var patient models.Patient
		err := tx.Where("patient_id = ?", id).First(&patient).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("loading patient for update: %w", err)
		}
		if err := tx.Model(&patient).Updates(updates).Error; err != nil {
			return fmt.Errorf("updating patient: %w", err)
		}
		return nil
	})
}

// MergePatients reassigns all of the duplicate's visits to the kept
// patient and removes the duplicate row outright. The removal is a
// hard delete; a MERGE audit entry records the transfer.
func (s *Store) MergePatients(keepID, duplicateID uint, actor string) (*MergeResult, error) {
	var result MergeResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var keep, duplicate models.Patient
		if err := tx.Where("patient_id = ?", keepID).First(&keep).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("loading kept patient: %w", err)
		}
		if err := tx.Where("patient_id = ?", duplicateID).First(&duplicate).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("loading duplicate patient: %w", err)
		}

		transfer := tx.Model(&models.Visit{}).
			Where("patient_id = ?", duplicateID).
			UpdateColumn("patient_id", keepID)
		if transfer.Error != nil {
			return fmt.Errorf("transferring visits: %w", transfer.Error)
		}

		if err := tx.Delete(&models.Patient{}, duplicateID).Error; err != nil {
			return fmt.Errorf("removing duplicate patient: %w", err)
		}

		result = MergeResult{
			KeptName:          keep.Name,
			DuplicateName:     duplicate.Name,
			VisitsTransferred: transfer.RowsAffected,
		}

		snapshot, err := models.EncodeSnapshot(models.NewPatientSnapshot(&duplicate, transfer.RowsAffected))
		if err != nil {
			return err
		}
		details := fmt.Sprintf("Merged patient '%s' into '%s'. Transferred %d visits.",
			duplicate.Name, keep.Name, transfer.RowsAffected)
		return s.logAudit(tx, models.ActionMerge, "patients", duplicateID, snapshot, "", actor, details)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Uint("kept", keepID).Uint("duplicate", duplicateID).
		Int64("visits", result.VisitsTransferred).Msg("patients merged")
	return &result, nil
}

// GetPatientSummary assembles a patient with visit-history highlights:
// total visit count, the most recent visit, and the last recorded
// weight from visits or registration.
func (s *Store) GetPatientSummary(id uint) (*PatientSummary, error) {
	patient, err := s.GetPatient(id)
	if err != nil {
		return nil, err
	}

	visitCount, err := s.GetVisitCount(id)
	if err != nil {
		return nil, err
	}
	visits, err := s.GetVisits(id)
	if err != nil {
		return nil, err
	}

	summary := PatientSummary{
		Patient:            *patient,
		VisitCount:         visitCount,
		IsNewPatient:       visitCount == 0,
		IsReturningPatient: visitCount > 0,
	}
	if len(visits) > 0 {
		summary.LastVisit = &visits[0]
		for i := range visits {
			if visits[i].Weight != nil {
				summary.LastWeight = visits[i].Weight
				break
			}
		}
	}
	if summary.LastWeight == nil {
		summary.LastWeight = patient.Weight
	}
	return &summary, nil
}
