package backup

import (
	"fmt"
	"os"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"clinic-app-server/internal/validation"
)

// IntegrityReport collects every structural violation found, not just
// the first.
type IntegrityReport struct {
	Healthy bool     `json:"healthy"`
	Issues  []string `json:"issues"`
}

// Stats reports store file size and record activity.
type Stats struct {
	PatientCount    int64  `json:"patientCount"`
	VisitCount      int64  `json:"visitCount"`
	NewPatientsWeek int64  `json:"newPatientsWeek"`
	VisitsWeek      int64  `json:"visitsWeek"`
	DBSizeBytes     int64  `json:"dbSizeBytes"`
	LastUpdated     string `json:"lastUpdated"`
}

func openDatabase(path string) (*gorm.DB, func(), error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, nil, err
	}
	closer := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	return db, closer, nil
}

// countCoreRows opens a store file and counts both core entities,
// which doubles as the restore sanity check: a file missing either
// table fails here.
func countCoreRows(path string) (patients, visits int64, err error) {
	db, closer, err := openDatabase(path)
	if err != nil {
		return 0, 0, err
	}
	defer closer()

	if err := db.Table("patients").Count(&patients).Error; err != nil {
		return 0, 0, err
	}
	if err := db.Table("visits").Count(&visits).Error; err != nil {
		return 0, 0, err
	}
	return patients, visits, nil
}

// VerifyIntegrity checks the live store file for structural problems:
// missing tables, orphaned visits, duplicate active phone numbers,
// patients missing required fields, and file permission issues.
func (m *Manager) VerifyIntegrity() (*IntegrityReport, error) {
	var issues []string

	if _, err := os.Stat(m.dbPath); os.IsNotExist(err) {
		return &IntegrityReport{Healthy: false, Issues: []string{"Database file does not exist"}}, nil
	}

	db, closer, err := openDatabase(m.dbPath)
	if err != nil {
		return &IntegrityReport{
			Healthy: false,
			Issues:  []string{fmt.Sprintf("Database integrity check failed: %v", err)},
		}, nil
	}
	defer closer()

	migrator := db.Migrator()
	if !migrator.HasTable("patients") {
		issues = append(issues, "Patients table is missing")
	}
	if !migrator.HasTable("visits") {
		issues = append(issues, "Visits table is missing")
	}
	if len(issues) > 0 {
		return &IntegrityReport{Healthy: false, Issues: issues}, nil
	}

	var orphanedVisits int64
	err = db.Raw(`SELECT COUNT(*) FROM visits v
		WHERE NOT EXISTS (SELECT 1 FROM patients p WHERE p.patient_id = v.patient_id)`).
		Scan(&orphanedVisits).Error
	if err != nil {
		return nil, fmt.Errorf("checking orphaned visits: %w", err)
	}
	if orphanedVisits > 0 {
		issues = append(issues, fmt.Sprintf("Found %d orphaned visits (visits without corresponding patients)", orphanedVisits))
	}

	var duplicatePhones int64
	err = db.Raw(`SELECT COUNT(*) FROM (
			SELECT phone FROM patients
			WHERE phone IS NOT NULL AND phone != ''
			AND (is_deleted = 0 OR is_deleted IS NULL)
			GROUP BY phone HAVING COUNT(*) > 1
		)`).Scan(&duplicatePhones).Error
	if err != nil {
		return nil, fmt.Errorf("checking duplicate phones: %w", err)
	}
	if duplicatePhones > 0 {
		issues = append(issues, fmt.Sprintf("Found %d duplicate phone numbers", duplicatePhones))
	}

	var invalidPatients int64
	err = db.Raw(`SELECT COUNT(*) FROM patients
		WHERE name IS NULL OR name = '' OR age IS NULL OR gender IS NULL
		OR phone IS NULL OR phone = ''`).Scan(&invalidPatients).Error
	if err != nil {
		return nil, fmt.Errorf("checking required fields: %w", err)
	}
	if invalidPatients > 0 {
		issues = append(issues, fmt.Sprintf("Found %d patients with missing required information", invalidPatients))
	}

	if f, err := os.OpenFile(m.dbPath, os.O_RDONLY, 0); err != nil {
		issues = append(issues, "Cannot read database file")
	} else {
		f.Close()
	}
	if f, err := os.OpenFile(m.dbPath, os.O_WRONLY, 0); err != nil {
		issues = append(issues, "Cannot write to database file")
	} else {
		f.Close()
	}

	return &IntegrityReport{Healthy: len(issues) == 0, Issues: issues}, nil
}

// GetStats reports store file size plus record counts and last-7-day
// activity.
func (m *Manager) GetStats() (*Stats, error) {
	info, err := os.Stat(m.dbPath)
	if os.IsNotExist(err) {
		return nil, ErrDatabaseMissing
	}
	if err != nil {
		return nil, fmt.Errorf("checking database file: %w", err)
	}

	db, closer, err := openDatabase(m.dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	defer closer()

	stats := Stats{
		DBSizeBytes: info.Size(),
		LastUpdated: time.Now().Format(validation.DisplayLayout + " 15:04:05"),
	}
	if err := db.Table("patients").Count(&stats.PatientCount).Error; err != nil {
		return nil, fmt.Errorf("counting patients: %w", err)
	}
	if err := db.Table("visits").Count(&stats.VisitCount).Error; err != nil {
		return nil, fmt.Errorf("counting visits: %w", err)
	}

	cutoff := time.Now().AddDate(0, 0, -7).Format(validation.DateLayout)
	if err := db.Table("patients").Where("created_date >= ?", cutoff).
		Count(&stats.NewPatientsWeek).Error; err != nil {
		return nil, fmt.Errorf("counting recent patients: %w", err)
	}
	if err := db.Table("visits").Where("visit_date >= ?", cutoff).
		Count(&stats.VisitsWeek).Error; err != nil {
		return nil, fmt.Errorf("counting recent visits: %w", err)
	}
	return &stats, nil
}
