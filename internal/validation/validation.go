package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	nameRe       = regexp.MustCompile(`^[a-zA-Z\s.',-]+$`)
	nonDigitRe   = regexp.MustCompile(`[^\d]`)
	bpRe         = regexp.MustCompile(`^\d{2,3}/\d{2,3}$`)
	unsafeRe     = regexp.MustCompile(`[<>"]`)
	validGenders = []string{"male", "female", "other"}
)

// ValidatePatient checks all patient field constraints and returns
// every violation found rather than stopping at the first.
func ValidatePatient(name string, age int, gender string, phone string, weight *float64, conditions string) (bool, []string) {
	var errors []string

	trimmedName := strings.TrimSpace(name)
	if trimmedName == "" {
		errors = append(errors, "Patient name is required")
	} else if len(trimmedName) < 2 {
		errors = append(errors, "Patient name must be at least 2 characters long")
	} else if len(trimmedName) > 100 {
		errors = append(errors, "Patient name cannot exceed 100 characters")
	} else if !nameRe.MatchString(trimmedName) {
		errors = append(errors, "Patient name can only contain letters, spaces, and common punctuation")
	}

	if age < 0 {
		errors = append(errors, "Age cannot be negative")
	} else if age > 150 {
		errors = append(errors, "Age cannot exceed 150 years")
	}

	if !isValidGender(gender) {
		errors = append(errors, "Please select a valid gender (Male, Female, or Other)")
	}

	if strings.TrimSpace(phone) == "" {
		errors = append(errors, "Phone number is required")
	} else {
		digits := nonDigitRe.ReplaceAllString(strings.TrimSpace(phone), "")
		if len(digits) != 10 {
			errors = append(errors, "Phone number must be exactly 10 digits")
		} else if digits[0] == '0' {
			errors = append(errors, "Phone number cannot start with 0")
		}
	}

	errors = append(errors, validateWeight(weight)...)

	if len(strings.TrimSpace(conditions)) > 500 {
		errors = append(errors, "Medical conditions description cannot exceed 500 characters")
	}

	return len(errors) == 0, errors
}

// ValidateVisit checks visit field constraints. Dates up to 7 days
// ahead are allowed for scheduling; dates more than 10 years back are
// rejected.
func ValidateVisit(visitDate string, symptoms, medicines, dietNotes string, weight *float64, bloodPressure, notes string) (bool, []string) {
	var errors []string

	if strings.TrimSpace(visitDate) == "" {
		errors = append(errors, "Visit date is required")
	} else if parsed, err := ParseDate(visitDate); err != nil {
		errors = append(errors, "Invalid date format. Please use a valid date")
	} else {
		errors = append(errors, visitDateWindowIssues(parsed, time.Now())...)
	}

	errors = append(errors, validateWeight(weight)...)
	errors = append(errors, validateBloodPressure(bloodPressure)...)

	textFields := map[string]string{
		"Symptoms":   symptoms,
		"Medicines":  medicines,
		"Diet Notes": dietNotes,
		"Notes":      notes,
	}
	for label, value := range textFields {
		if len(strings.TrimSpace(value)) > 1000 {
			errors = append(errors, fmt.Sprintf("%s cannot exceed 1000 characters", label))
		}
	}

	return len(errors) == 0, errors
}

// ValidateSearchTerm checks search input length constraints.
func ValidateSearchTerm(searchTerm string) (bool, []string) {
	var errors []string

	trimmed := strings.TrimSpace(searchTerm)
	if trimmed == "" {
		errors = append(errors, "Please enter a search term")
	} else if len(trimmed) < 2 {
		errors = append(errors, "Search term must be at least 2 characters long")
	} else if len(trimmed) > 50 {
		errors = append(errors, "Search term cannot exceed 50 characters")
	}

	return len(errors) == 0, errors
}

// Sanitize trims text and strips characters that could break rendered
// markup.
func Sanitize(text string) string {
	return unsafeRe.ReplaceAllString(strings.TrimSpace(text), "")
}

// NormalizePhone strips all non-digit characters and returns the
// 10-digit result. Anything else comes back unchanged so callers can
// re-validate and report the original input.
func NormalizePhone(phone string) string {
	if phone == "" {
		return ""
	}
	digits := nonDigitRe.ReplaceAllString(strings.TrimSpace(phone), "")
	if len(digits) == 10 {
		return digits
	}
	return phone
}

func isValidGender(gender string) bool {
	lowered := strings.ToLower(strings.TrimSpace(gender))
	for _, g := range validGenders {
		if lowered == g {
			return true
		}
	}
	return false
}

func validateWeight(weight *float64) []string {
	if weight == nil {
		return nil
	}
	if *weight <= 0 {
		return []string{"Weight must be greater than 0"}
	}
	if *weight > 500 {
		return []string{"Weight cannot exceed 500 kg"}
	}
	return nil
}

func validateBloodPressure(bloodPressure string) []string {
	trimmed := strings.TrimSpace(bloodPressure)
	if trimmed == "" {
		return nil
	}
	if !bpRe.MatchString(trimmed) {
		return []string{"Blood pressure must be in format: 120/80"}
	}

	var errors []string
	parts := strings.SplitN(trimmed, "/", 2)
	systolic, _ := strconv.Atoi(parts[0])
	diastolic, _ := strconv.Atoi(parts[1])
	if systolic < 50 || systolic > 300 {
		errors = append(errors, "Systolic pressure must be between 50-300")
	}
	if diastolic < 30 || diastolic > 200 {
		errors = append(errors, "Diastolic pressure must be between 30-200")
	}
	if systolic <= diastolic {
		errors = append(errors, "Systolic pressure must be higher than diastolic")
	}
	return errors
}

// visitDateWindowIssues checks the allowed scheduling window with
// calendar arithmetic; wall-clock hour math would shift the boundary
// by a day across DST transitions.
func visitDateWindowIssues(parsed, now time.Time) []string {
	var issues []string
	today := truncateToDay(now)
	if parsed.After(today.AddDate(0, 0, 7)) {
		issues = append(issues, "Visit date cannot be more than 7 days in the future")
	}
	if parsed.Before(today.AddDate(0, 0, -3650)) {
		issues = append(issues, "Visit date cannot be more than 10 years in the past")
	}
	return issues
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
