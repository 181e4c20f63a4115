package healthfacts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyIsDeterministicPerDate(t *testing.T) {
	day := time.Date(2024, 3, 15, 8, 0, 0, 0, time.Local)
	evening := time.Date(2024, 3, 15, 22, 30, 0, 0, time.Local)
	nextDay := time.Date(2024, 3, 16, 8, 0, 0, 0, time.Local)

	n := len(allFacts())
	assert.Equal(t, dailyIndex(day, n), dailyIndex(evening, n),
		"the same date always picks the same fact")
	// Different dates usually differ; at minimum the index stays in range.
	assert.GreaterOrEqual(t, dailyIndex(nextDay, n), 0)
	assert.Less(t, dailyIndex(nextDay, n), n)
}

func TestDailyMatchesTodayIndex(t *testing.T) {
	facts := allFacts()
	want := facts[dailyIndex(time.Now(), len(facts))]
	assert.Equal(t, want, Daily())
}

func TestRandomReturnsKnownFact(t *testing.T) {
	assert.Contains(t, allFacts(), Random())
}

func TestAyurvedicTipOfDay(t *testing.T) {
	assert.Contains(t, ayurvedicFacts, AyurvedicTipOfDay())
}

func TestByCategory(t *testing.T) {
	nutrition := ByCategory("nutrition")
	require.NotEmpty(t, nutrition)
	for _, f := range nutrition {
		assert.Equal(t, "Nutrition", f.Category)
	}

	assert.Empty(t, ByCategory("no-such-category"))
}
