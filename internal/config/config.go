package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for our application
type Config struct {
	Port                 string
	Origin               string
	Environment          string
	JWTSecret            string
	JWTExpirationMinutes int
	Database             DatabaseConfig
	Backup               BackupConfig
	Clinic               ClinicConfig
	AppVersion           string
}

// DatabaseConfig holds the location of the single-file store
type DatabaseConfig struct {
	Path string
}

// BackupConfig holds backup directory and retention settings
type BackupConfig struct {
	Dir       string
	KeepCount int
}

// ClinicConfig holds the clinic's login credentials and display details.
// PinHash, when set, takes precedence over Pin and must be a bcrypt hash.
type ClinicConfig struct {
	Mobile            string
	Pin               string
	PinHash           string
	ClinicName        string
	DoctorName        string
	Phone             string
	ConsultationHours string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	dbConfig := DatabaseConfig{
		Path: getEnv("DB_PATH", "data/clinic.db"),
	}

	keepCount, err := strconv.Atoi(getEnv("BACKUP_KEEP_COUNT", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid BACKUP_KEEP_COUNT: %w", err)
	}

	backupConfig := BackupConfig{
		Dir:       getEnv("BACKUP_DIR", "backups"),
		KeepCount: keepCount,
	}

	clinicConfig := ClinicConfig{
		Mobile:            getEnv("CLINIC_MOBILE", ""),
		Pin:               getEnv("CLINIC_PIN", ""),
		PinHash:           getEnv("CLINIC_PIN_HASH", ""),
		ClinicName:        getEnv("CLINIC_NAME", "Ayurvedic Clinic"),
		DoctorName:        getEnv("CLINIC_DOCTOR_NAME", ""),
		Phone:             getEnv("CLINIC_PHONE", ""),
		ConsultationHours: getEnv("CLINIC_HOURS", "Mon-Sat: 9:00 AM - 6:00 PM"),
	}

	jwtExpMinutes, err := strconv.Atoi(getEnv("JWT_EXPIRATION_MINUTES", "720"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_MINUTES: %w", err)
	}

	return &Config{
		Port:                 getEnv("PORT", "3001"),
		Origin:               getEnv("ORIGIN", "http://localhost:4200"),
		Environment:          getEnv("APP_ENV", "development"),
		JWTSecret:            getEnv("JWT_SECRET", "default_jwt_secret"),
		JWTExpirationMinutes: jwtExpMinutes,
		Database:             dbConfig,
		Backup:               backupConfig,
		Clinic:               clinicConfig,
		AppVersion:           getEnv("APP_VERSION", "1.0.0"),
	}, nil
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
