package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddVisitUnknownPatient(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddVisit(99, NewVisit{VisitDate: today()})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddVisitNormalizesDate(t *testing.T) {
	s := newTestStore(t)
	id := addTestPatient(t, s, "Asha Sharma", "9876543210")

	_, err := s.AddVisit(id, NewVisit{VisitDate: "15/03/2024", Symptoms: "fever"})
	require.NoError(t, err)

	visits, err := s.GetVisits(id)
	require.NoError(t, err)
	require.Len(t, visits, 1)
	assert.Equal(t, "2024-03-15", visits[0].VisitDate)
	assert.Equal(t, "fever", visits[0].Symptoms)
}

func TestAddVisitRejectsBadDate(t *testing.T) {
	s := newTestStore(t)
	id := addTestPatient(t, s, "Asha Sharma", "9876543210")

	_, err := s.AddVisit(id, NewVisit{VisitDate: "not-a-date"})
	assert.Error(t, err)

	count, err := s.GetVisitCount(id)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestGetVisitsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	id := addTestPatient(t, s, "Asha Sharma", "9876543210")

	for _, date := range []string{"2024-03-02", "2024-03-01", "2024-03-03"} {
		_, err := s.AddVisit(id, NewVisit{VisitDate: date})
		require.NoError(t, err)
	}

	visits, err := s.GetVisits(id)
	require.NoError(t, err)
	require.Len(t, visits, 3)
	assert.Equal(t, "2024-03-03", visits[0].VisitDate)
	assert.Equal(t, "2024-03-02", visits[1].VisitDate)
	assert.Equal(t, "2024-03-01", visits[2].VisitDate)
}

func TestGetVisitsExcludesDeleted(t *testing.T) {
	s := newTestStore(t)
	id := addTestPatient(t, s, "Asha Sharma", "9876543210")

	visitID, err := s.AddVisit(id, NewVisit{VisitDate: "2024-03-01"})
	require.NoError(t, err)
	_, err = s.AddVisit(id, NewVisit{VisitDate: "2024-03-02"})
	require.NoError(t, err)

	_, err = s.SoftDeleteVisit(visitID, "duplicate entry", "")
	require.NoError(t, err)

	visits, err := s.GetVisits(id)
	require.NoError(t, err)
	require.Len(t, visits, 1)
	assert.Equal(t, "2024-03-02", visits[0].VisitDate)

	// The raw count still includes the deleted visit.
	count, err := s.GetVisitCount(id)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestGetWeightProgression(t *testing.T) {
	s := newTestStore(t)
	id, err := s.AddPatient(NewPatient{
		Name: "Asha Sharma", Age: 34, Gender: "female",
		Phone: "9876543210", Weight: floatPtr(70),
		RegistrationDate: "2024-01-01",
	})
	require.NoError(t, err)

	_, err = s.AddVisit(id, NewVisit{VisitDate: "2024-02-01", Weight: floatPtr(68)})
	require.NoError(t, err)
	_, err = s.AddVisit(id, NewVisit{VisitDate: "2024-01-15"})
	require.NoError(t, err)
	skipped, err := s.AddVisit(id, NewVisit{VisitDate: "2024-03-01", Weight: floatPtr(90)})
	require.NoError(t, err)
	_, err = s.SoftDeleteVisit(skipped, "wrong patient", "")
	require.NoError(t, err)

	points, err := s.GetWeightProgression(id)
	require.NoError(t, err)
	require.Len(t, points, 2, "weightless and deleted visits contribute no points")

	assert.Equal(t, WeightPoint{Date: "2024-01-01", Weight: 70, Source: WeightSourceRegistration}, points[0])
	assert.Equal(t, WeightPoint{Date: "2024-02-01", Weight: 68, Source: WeightSourceVisit}, points[1])
}

func TestGetWeightProgressionSameDayRegistrationFirst(t *testing.T) {
	s := newTestStore(t)
	id, err := s.AddPatient(NewPatient{
		Name: "Asha Sharma", Age: 34, Gender: "female",
		Phone: "9876543210", Weight: floatPtr(70),
		RegistrationDate: "2024-01-01",
	})
	require.NoError(t, err)
	_, err = s.AddVisit(id, NewVisit{VisitDate: "2024-01-01", Weight: floatPtr(69.5)})
	require.NoError(t, err)

	points, err := s.GetWeightProgression(id)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, WeightSourceRegistration, points[0].Source)
	assert.Equal(t, WeightSourceVisit, points[1].Source)
}

func TestGetWeightProgressionUnknownPatient(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetWeightProgression(99)
	assert.ErrorIs(t, err, ErrNotFound)
}
