package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatientSnapshotRoundTrip(t *testing.T) {
	weight := 62.5
	patient := Patient{
		ID:          7,
		Name:        "Asha Sharma",
		Age:         34,
		Gender:      GenderFemale,
		Phone:       "9876543210",
		Weight:      &weight,
		Conditions:  "mild hypertension",
		CreatedDate: "2024-03-15",
	}

	encoded, err := EncodeSnapshot(NewPatientSnapshot(&patient, 3))
	require.NoError(t, err)

	decoded, err := DecodePatientSnapshot(encoded)
	require.NoError(t, err)
	assert.Equal(t, SnapshotSchemaVersion, decoded.SchemaVersion)
	assert.Equal(t, uint(7), decoded.PatientID)
	assert.Equal(t, "Asha Sharma", decoded.Name)
	assert.Equal(t, GenderFemale, decoded.Gender)
	require.NotNil(t, decoded.Weight)
	assert.Equal(t, 62.5, *decoded.Weight)
	assert.Equal(t, int64(3), decoded.VisitCountAtDeletion)
}

func TestVisitSnapshotRoundTrip(t *testing.T) {
	visit := Visit{
		ID:            11,
		PatientID:     7,
		VisitDate:     "2024-03-15",
		Symptoms:      "fever",
		BloodPressure: "120/80",
	}

	encoded, err := EncodeSnapshot(NewVisitSnapshot(&visit))
	require.NoError(t, err)

	decoded, err := DecodeVisitSnapshot(encoded)
	require.NoError(t, err)
	assert.Equal(t, uint(11), decoded.VisitID)
	assert.Equal(t, uint(7), decoded.PatientID)
	assert.Equal(t, "fever", decoded.Symptoms)
	assert.Equal(t, "120/80", decoded.BloodPressure)
}

func TestDecodeSnapshotRejectsNewerVersions(t *testing.T) {
	_, err := DecodePatientSnapshot(`{"schema_version": 2, "patient_id": 1}`)
	assert.Error(t, err)

	_, err = DecodeVisitSnapshot(`{"schema_version": 99}`)
	assert.Error(t, err)
}

func TestDecodeSnapshotRejectsGarbage(t *testing.T) {
	_, err := DecodePatientSnapshot("not json")
	assert.Error(t, err)
}

func TestParseGender(t *testing.T) {
	for input, want := range map[string]Gender{
		"male":    GenderMale,
		" Female": GenderFemale,
		"OTHER":   GenderOther,
	} {
		got, ok := ParseGender(input)
		assert.True(t, ok, input)
		assert.Equal(t, want, got)
	}

	_, ok := ParseGender("unknown")
	assert.False(t, ok)
}
