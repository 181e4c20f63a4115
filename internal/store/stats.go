package store

import (
	"fmt"
	"time"

	"clinic-app-server/internal/models"
	"clinic-app-server/internal/validation"
)

// Stats aggregates record counts for the dashboard.
type Stats struct {
	TotalPatients  int64 `json:"totalPatients"`
	TotalVisits    int64 `json:"totalVisits"`
	RecentPatients int64 `json:"recentPatients"`
	RecentVisits   int64 `json:"recentVisits"`
}

// GetStats returns total patient/visit counts plus registrations and
// visits from the last 7 days.
func (s *Store) GetStats() (*Stats, error) {
	var stats Stats
	cutoff := time.Now().AddDate(0, 0, -7).Format(validation.DateLayout)

	if err := s.db.Model(&models.Patient{}).Count(&stats.TotalPatients).Error; err != nil {
		return nil, fmt.Errorf("counting patients: %w", err)
	}
	if err := s.db.Model(&models.Visit{}).Count(&stats.TotalVisits).Error; err != nil {
		return nil, fmt.Errorf("counting visits: %w", err)
	}
	if err := s.db.Model(&models.Patient{}).Where("created_date >= ?", cutoff).
		Count(&stats.RecentPatients).Error; err != nil {
		return nil, fmt.Errorf("counting recent patients: %w", err)
	}
	if err := s.db.Model(&models.Visit{}).Where("visit_date >= ?", cutoff).
		Count(&stats.RecentVisits).Error; err != nil {
		return nil, fmt.Errorf("counting recent visits: %w", err)
	}
	return &stats, nil
}
