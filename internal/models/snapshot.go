package models

import (
	"encoding/json"
	"fmt"
)

// SnapshotSchemaVersion is bumped whenever a snapshot structure
// changes shape, so historical audit entries stay decodable.
const SnapshotSchemaVersion = 1

// PatientSnapshot is the serialized pre-deletion state of a patient
// stored in audit_log and deleted_records entries.
type PatientSnapshot struct {
	SchemaVersion        int      `json:"schema_version"`
	PatientID            uint     `json:"patient_id"`
	Name                 string   `json:"name"`
	Age                  int      `json:"age"`
	Gender               Gender   `json:"gender"`
	Phone                string   `json:"phone"`
	Weight               *float64 `json:"weight,omitempty"`
	Conditions           string   `json:"conditions,omitempty"`
	CreatedDate          string   `json:"created_date"`
	VisitCountAtDeletion int64    `json:"visit_count_at_deletion,omitempty"`
}

// NewPatientSnapshot captures the current state of a patient.
func NewPatientSnapshot(p *Patient, visitCount int64) PatientSnapshot {
	return PatientSnapshot{
		SchemaVersion:        SnapshotSchemaVersion,
		PatientID:            p.ID,
		Name:                 p.Name,
		Age:                  p.Age,
		Gender:               p.Gender,
		Phone:                p.Phone,
		Weight:               p.Weight,
		Conditions:           p.Conditions,
		CreatedDate:          p.CreatedDate,
		VisitCountAtDeletion: visitCount,
	}
}

// VisitSnapshot is the serialized pre-deletion state of a visit.
type VisitSnapshot struct {
	SchemaVersion int      `json:"schema_version"`
	VisitID       uint     `json:"visit_id"`
	PatientID     uint     `json:"patient_id"`
	VisitDate     string   `json:"visit_date"`
	Symptoms      string   `json:"symptoms,omitempty"`
	Medicines     string   `json:"medicines,omitempty"`
	DietNotes     string   `json:"diet_notes,omitempty"`
	Weight        *float64 `json:"weight,omitempty"`
	BloodPressure string   `json:"blood_pressure,omitempty"`
	Notes         string   `json:"notes,omitempty"`
}

// NewVisitSnapshot captures the current state of a visit.
func NewVisitSnapshot(v *Visit) VisitSnapshot {
	return VisitSnapshot{
		SchemaVersion: SnapshotSchemaVersion,
		VisitID:       v.ID,
		PatientID:     v.PatientID,
		VisitDate:     v.VisitDate,
		Symptoms:      v.Symptoms,
		Medicines:     v.Medicines,
		DietNotes:     v.DietNotes,
		Weight:        v.Weight,
		BloodPressure: v.BloodPressure,
		Notes:         v.Notes,
	}
}

// EncodeSnapshot serializes a snapshot for storage in a text column.
func EncodeSnapshot(snapshot interface{}) (string, error) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return string(data), nil
}

// DecodePatientSnapshot parses a stored patient snapshot, rejecting
// versions this build does not understand.
func DecodePatientSnapshot(data string) (*PatientSnapshot, error) {
	var snapshot PatientSnapshot
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode patient snapshot: %w", err)
	}
	if snapshot.SchemaVersion > SnapshotSchemaVersion {
		return nil, fmt.Errorf("unsupported patient snapshot version %d", snapshot.SchemaVersion)
	}
	return &snapshot, nil
}

// DecodeVisitSnapshot parses a stored visit snapshot.
func DecodeVisitSnapshot(data string) (*VisitSnapshot, error) {
	var snapshot VisitSnapshot
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode visit snapshot: %w", err)
	}
	if snapshot.SchemaVersion > SnapshotSchemaVersion {
		return nil, fmt.Errorf("unsupported visit snapshot version %d", snapshot.SchemaVersion)
	}
	return &snapshot, nil
}
