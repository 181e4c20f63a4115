package store

import (
	"errors"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"clinic-app-server/internal/models"
	"clinic-app-server/internal/validation"
)

// NewVisit carries the fields accepted when recording a visit.
type NewVisit struct {
	VisitDate     string
	Symptoms      string
	Medicines     string
	DietNotes     string
	Weight        *float64
	BloodPressure string
	Notes         string
}

// WeightPoint is one entry of a patient's weight progression.
type WeightPoint struct {
	Date   string  `json:"date"`
	Weight float64 `json:"weight"`
	Source string  `json:"type"`
}

// Weight progression sources.
const (
	WeightSourceRegistration = "Registration"
	WeightSourceVisit        = "Visit"
)

// AddVisit records a visit for an existing patient. The visit date is
// normalized to canonical YYYY-MM-DD form regardless of input format.
func (s *Store) AddVisit(patientID uint, v NewVisit) (uint, error) {
	storageDate, err := validation.NormalizeDate(v.VisitDate)
	if err != nil {
		return 0, err
	}

	visit := models.Visit{
		PatientID:     patientID,
		VisitDate:     storageDate,
		Symptoms:      v.Symptoms,
		Medicines:     v.Medicines,
		DietNotes:     v.DietNotes,
		Weight:        v.Weight,
		BloodPressure: v.BloodPressure,
		Notes:         v.Notes,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Patient{}).Where("patient_id = ?", patientID).Count(&count).Error; err != nil {
			return fmt.Errorf("checking patient: %w", err)
		}
		if count == 0 {
			return ErrNotFound
		}
		if err := tx.Create(&visit).Error; err != nil {
			return fmt.Errorf("inserting visit: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.Info().Uint("visit_id", visit.ID).Uint("patient_id", patientID).
		Str("date", storageDate).Msg("visit added")
	return visit.ID, nil
}

// GetVisits returns a patient's active visits, most recent first.
// Ties on visit date are broken by creation timestamp.
func (s *Store) GetVisits(patientID uint) ([]models.Visit, error) {
	var visits []models.Visit
	err := active(s.db).
		Where("patient_id = ?", patientID).
		Order("visit_date DESC, created_timestamp DESC").
		Find(&visits).Error
	if err != nil {
		return nil, fmt.Errorf("listing visits: %w", err)
	}
	return visits, nil
}

// GetVisitCount returns the total number of visits recorded for a
// patient, deleted ones included.
func (s *Store) GetVisitCount(patientID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.Visit{}).Where("patient_id = ?", patientID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting visits: %w", err)
	}
	return count, nil
}

// GetWeightProgression merges the registration weight with every
// recorded visit weight, sorted ascending by date. Same-day entries
// from both sources remain distinct points, registration first.
func (s *Store) GetWeightProgression(patientID uint) ([]WeightPoint, error) {
	var patient models.Patient
	err := s.db.Where("patient_id = ?", patientID).First(&patient).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading patient: %w", err)
	}

	var points []WeightPoint
	if patient.Weight != nil {
		points = append(points, WeightPoint{
			Date:   patient.CreatedDate,
			Weight: *patient.Weight,
			Source: WeightSourceRegistration,
		})
	}

	var visits []models.Visit
	err = active(s.db).
		Where("patient_id = ? AND weight IS NOT NULL", patientID).
		Order("visit_date ASC").
		Find(&visits).Error
	if err != nil {
		return nil, fmt.Errorf("listing visit weights: %w", err)
	}
	for _, v := range visits {
		points = append(points, WeightPoint{
			Date:   v.VisitDate,
			Weight: *v.Weight,
			Source: WeightSourceVisit,
		})
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date < points[j].Date
	})
	return points, nil
}
