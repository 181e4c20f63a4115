package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 {
	return &v
}

func TestValidatePatient_Valid(t *testing.T) {
	ok, errs := ValidatePatient("Asha Sharma", 34, "Female", "9876543210", floatPtr(62.5), "mild hypertension")
	assert.True(t, ok)
	assert.Empty(t, errs)
}

func TestValidatePatient_CollectsAllErrors(t *testing.T) {
	ok, errs := ValidatePatient("A", 200, "unknown", "0123", floatPtr(-5), strings.Repeat("x", 501))
	require.False(t, ok)
	// Every violated constraint is reported, not just the first.
	assert.Len(t, errs, 6)
}

func TestValidatePatient_PhoneRules(t *testing.T) {
	ok, errs := ValidatePatient("Asha Sharma", 34, "female", "98765", nil, "")
	require.False(t, ok)
	assert.Contains(t, errs, "Phone number must be exactly 10 digits")

	ok, errs = ValidatePatient("Asha Sharma", 34, "female", "0876543210", nil, "")
	require.False(t, ok)
	assert.Contains(t, errs, "Phone number cannot start with 0")

	// Formatting characters are ignored when counting digits.
	ok, _ = ValidatePatient("Asha Sharma", 34, "female", "(987) 654-3210", nil, "")
	assert.True(t, ok)
}

func TestValidatePatient_NameCharacters(t *testing.T) {
	ok, _ := ValidatePatient("Dr. O'Brien-Smith, Jr", 40, "male", "9876543210", nil, "")
	assert.True(t, ok)

	ok, errs := ValidatePatient("Asha<script>", 40, "male", "9876543210", nil, "")
	require.False(t, ok)
	assert.Contains(t, errs, "Patient name can only contain letters, spaces, and common punctuation")
}

func TestValidateVisit_BloodPressure(t *testing.T) {
	ok, _ := ValidateVisit(Today(), "", "", "", nil, "120/80", "")
	assert.True(t, ok)

	ok, errs := ValidateVisit(Today(), "", "", "", nil, "80/120", "")
	require.False(t, ok)
	assert.Contains(t, errs, "Systolic pressure must be higher than diastolic")

	ok, errs = ValidateVisit(Today(), "", "", "", nil, "1200/80", "")
	require.False(t, ok)
	assert.Contains(t, errs, "Blood pressure must be in format: 120/80")

	ok, errs = ValidateVisit(Today(), "", "", "", nil, "40/20", "")
	require.False(t, ok)
	assert.Contains(t, errs, "Systolic pressure must be between 50-300")
	assert.Contains(t, errs, "Diastolic pressure must be between 30-200")
}

func TestValidateVisit_DateWindow(t *testing.T) {
	day := func(offset int) string {
		return time.Now().AddDate(0, 0, offset).Format(DateLayout)
	}

	ok, _ := ValidateVisit(day(7), "", "", "", nil, "", "")
	assert.True(t, ok, "exactly 7 days ahead is allowed for scheduling")

	ok, errs := ValidateVisit(day(8), "", "", "", nil, "", "")
	require.False(t, ok)
	assert.Contains(t, errs, "Visit date cannot be more than 7 days in the future")

	ok, _ = ValidateVisit(day(-3650), "", "", "", nil, "", "")
	assert.True(t, ok, "exactly 10 years back is allowed")

	elevenYearsAgo := time.Now().AddDate(-11, 0, 0).Format(DateLayout)
	ok, errs = ValidateVisit(elevenYearsAgo, "", "", "", nil, "", "")
	require.False(t, ok)
	assert.Contains(t, errs, "Visit date cannot be more than 10 years in the past")
}

func TestVisitDateWindowAcrossDSTTransition(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// Spring forward 2024-03-10: the window to 2024-03-13 spans 191
	// wall-clock hours but 8 calendar days.
	now := time.Date(2024, 3, 5, 12, 0, 0, 0, loc)

	issues := visitDateWindowIssues(time.Date(2024, 3, 13, 0, 0, 0, 0, loc), now)
	require.Len(t, issues, 1, "8 calendar days ahead is out of the window")
	assert.Contains(t, issues[0], "7 days in the future")

	assert.Empty(t, visitDateWindowIssues(time.Date(2024, 3, 12, 0, 0, 0, 0, loc), now),
		"7 calendar days ahead stays allowed across the transition")
}

func TestValidateVisit_RequiresParseableDate(t *testing.T) {
	ok, errs := ValidateVisit("", "", "", "", nil, "", "")
	require.False(t, ok)
	assert.Contains(t, errs, "Visit date is required")

	ok, errs = ValidateVisit("not-a-date", "", "", "", nil, "", "")
	require.False(t, ok)
	assert.Contains(t, errs, "Invalid date format. Please use a valid date")
}

func TestValidateVisit_TextLimits(t *testing.T) {
	long := strings.Repeat("y", 1001)
	ok, errs := ValidateVisit(Today(), long, "", "", nil, "", "")
	require.False(t, ok)
	assert.Contains(t, errs, "Symptoms cannot exceed 1000 characters")
}

func TestValidateSearchTerm(t *testing.T) {
	ok, _ := ValidateSearchTerm("as")
	assert.True(t, ok)

	ok, errs := ValidateSearchTerm(" ")
	require.False(t, ok)
	assert.Contains(t, errs, "Please enter a search term")

	ok, errs = ValidateSearchTerm("a")
	require.False(t, ok)
	assert.Contains(t, errs, "Search term must be at least 2 characters long")

	ok, errs = ValidateSearchTerm(strings.Repeat("z", 51))
	require.False(t, ok)
	assert.Contains(t, errs, "Search term cannot exceed 50 characters")
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "scriptalert(1)/script", Sanitize(`  <script>alert("1")</script> `))
	assert.Equal(t, "", Sanitize(""))
	assert.Equal(t, "plain text", Sanitize("plain text"))
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "9876543210", NormalizePhone("(987) 654-3210"))
	assert.Equal(t, "9876543210", NormalizePhone("987-654-3210"))
	// Inputs that do not reduce to 10 digits come back unchanged.
	assert.Equal(t, "12345", NormalizePhone("12345"))
	assert.Equal(t, "", NormalizePhone(""))
}
