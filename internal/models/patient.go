package models

import (
	"strings"
	"time"
)

// Gender enum
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// ParseGender normalizes a gender value to the stored enum form.
func ParseGender(value string) (Gender, bool) {
	switch Gender(strings.ToLower(strings.TrimSpace(value))) {
	case GenderMale:
		return GenderMale, true
	case GenderFemale:
		return GenderFemale, true
	case GenderOther:
		return GenderOther, true
	}
	return "", false
}

// Patient represents a registered patient. CreatedDate is the
// registration date in canonical YYYY-MM-DD form. Phone uniqueness is
// enforced by the store among active patients only, so there is no
// unique index on the column.
type Patient struct {
	ID          uint     `gorm:"primaryKey;column:patient_id" json:"patientId"`
	Name        string   `gorm:"size:100;not null" json:"name"`
	Age         int      `gorm:"not null" json:"age"`
	Gender      Gender   `gorm:"size:10;not null" json:"gender"`
	Phone       string   `gorm:"size:20;not null;index" json:"phone"`
	Weight      *float64 `json:"weight,omitempty"`
	Conditions  string   `gorm:"size:500" json:"conditions,omitempty"`
	CreatedDate string   `gorm:"size:10;not null;column:created_date" json:"createdDate"`
	UpdatedAt   time.Time `gorm:"column:updated_date" json:"updatedAt"`
	IsDeleted   bool     `gorm:"default:false;index" json:"isDeleted"`

	Visits []Visit `gorm:"foreignKey:PatientID" json:"-"`
}

// TableName keeps the historical table name.
func (Patient) TableName() string {
	return "patients"
}
