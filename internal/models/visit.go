package models

import (
	"time"
)

// Visit represents a single consultation. VisitDate is stored in
// canonical YYYY-MM-DD form. Visits are never updated in place; they
// are soft-deleted individually or together with their patient.
type Visit struct {
	ID            uint     `gorm:"primaryKey;column:visit_id" json:"visitId"`
	PatientID     uint     `gorm:"not null;index" json:"patientId"`
	VisitDate     string   `gorm:"size:10;not null" json:"visitDate"`
	Symptoms      string   `gorm:"size:1000" json:"symptoms,omitempty"`
	Medicines     string   `gorm:"size:1000" json:"medicines,omitempty"`
	DietNotes     string   `gorm:"size:1000" json:"dietNotes,omitempty"`
	Weight        *float64 `json:"weight,omitempty"`
	BloodPressure string   `gorm:"size:10" json:"bloodPressure,omitempty"`
	Notes         string   `gorm:"size:1000" json:"notes,omitempty"`
	CreatedAt     time.Time `gorm:"column:created_timestamp" json:"createdAt"`
	IsDeleted     bool     `gorm:"default:false;index" json:"isDeleted"`
}

// TableName keeps the historical table name.
func (Visit) TableName() string {
	return "visits"
}
