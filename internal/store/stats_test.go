package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-app-server/internal/models"
	"clinic-app-server/internal/validation"
)

func TestGetStats(t *testing.T) {
	s := newTestStore(t)
	oldDate := time.Now().AddDate(0, 0, -30).Format(validation.DateLayout)

	recent := addTestPatient(t, s, "Asha Sharma", "9876543210")
	_, err := s.AddPatient(NewPatient{
		Name: "Old Patient", Age: 60, Gender: models.GenderMale,
		Phone: "9876500000", RegistrationDate: oldDate,
	})
	require.NoError(t, err)

	_, err = s.AddVisit(recent, NewVisit{VisitDate: today()})
	require.NoError(t, err)
	_, err = s.AddVisit(recent, NewVisit{VisitDate: oldDate})
	require.NoError(t, err)

	stats, err := s.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalPatients)
	assert.Equal(t, int64(2), stats.TotalVisits)
	assert.Equal(t, int64(1), stats.RecentPatients)
	assert.Equal(t, int64(1), stats.RecentVisits)
}

func TestGetStatsCountsDeletedRows(t *testing.T) {
	s := newTestStore(t)
	id := addTestPatient(t, s, "Asha Sharma", "9876543210")
	_, err := s.AddVisit(id, NewVisit{VisitDate: today()})
	require.NoError(t, err)
	_, err = s.SoftDeletePatient(id, "", "")
	require.NoError(t, err)

	// Totals reflect physical rows; soft-deleted data is still there.
	stats, err := s.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalPatients)
	assert.Equal(t, int64(1), stats.TotalVisits)
}
