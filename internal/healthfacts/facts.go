// Package healthfacts serves the rotating educational tips shown on
// the clinic dashboard.
package healthfacts

import (
	"math/rand"
	"strings"
	"time"
)

// Fact is one educational tip.
type Fact struct {
	Title    string `json:"title"`
	Fact     string `json:"fact"`
	Category string `json:"category"`
}

var ayurvedicFacts = []Fact{
	{"Golden Milk Benefits", "Turmeric milk (Haldi Doodh) before bedtime helps reduce inflammation and promotes better sleep naturally.", "Ayurvedic Remedies"},
	{"Morning Routine", "Drinking warm water with lemon and honey on empty stomach helps detoxify liver and boost metabolism.", "Daily Wellness"},
	{"Digestive Health", "Eating your largest meal at lunchtime (12-2 PM) when digestive fire (Agni) is strongest improves digestion.", "Digestion"},
	{"Stress Relief", "Pranayama (breathing exercises) for just 5 minutes daily can reduce stress and lower blood pressure naturally.", "Mental Health"},
	{"Immunity Booster", "Chyawanprash with warm milk increases immunity and provides essential vitamins for all age groups.", "Immunity"},
	{"Sleep Quality", "Massaging feet with sesame oil before bed (Padabhyanga) promotes deep sleep and reduces anxiety.", "Sleep & Rest"},
	{"Skin Health", "Rose water and sandalwood paste as a face mask helps maintain healthy, glowing skin naturally.", "Beauty & Skin"},
	{"Joint Health", "Regular consumption of ginger tea helps reduce joint pain and inflammation in arthritis patients.", "Joint Care"},
	{"Weight Management", "Drinking cumin water (Jeera water) 30 minutes before meals helps boost metabolism and aids weight loss.", "Weight Management"},
	{"Heart Health", "Arjuna bark tea is excellent for heart health and helps maintain healthy cholesterol levels naturally.", "Cardiovascular"},
	{"Mental Clarity", "Brahmi (Bacopa) herb enhances memory, concentration, and overall brain function when taken regularly.", "Brain Health"},
	{"Seasonal Health", "During monsoon, consume warm, cooked foods and avoid raw salads to maintain digestive health.", "Seasonal Care"},
	{"Hydration", "Room temperature water is better than cold water for digestion according to Ayurvedic principles.", "Hydration"},
	{"Energy Levels", "Ashwagandha with warm milk at bedtime helps combat fatigue and increases energy levels naturally.", "Energy & Vitality"},
}

var generalTips = []Fact{
	{"Daily Exercise", "Just 30 minutes of walking daily can improve cardiovascular health and maintain healthy weight.", "Fitness"},
	{"Mindful Eating", "Eating slowly and chewing thoroughly improves digestion and prevents overeating.", "Nutrition"},
	{"Meditation Benefits", "Just 10 minutes of daily meditation can reduce stress hormones and improve immune function.", "Mental Wellness"},
	{"Nutrition", "Eating 5 servings of fruits and vegetables daily provides essential vitamins and reduces disease risk.", "Nutrition"},
	{"Sleep Importance", "7-8 hours of quality sleep is essential for memory consolidation and cellular repair.", "Sleep"},
}

func allFacts() []Fact {
	combined := make([]Fact, 0, len(ayurvedicFacts)+len(generalTips))
	combined = append(combined, ayurvedicFacts...)
	combined = append(combined, generalTips...)
	return combined
}

// Daily returns the fact of the day. The calendar date seeds the
// selection, so every call on the same day yields the same fact.
func Daily() Fact {
	facts := allFacts()
	return facts[dailyIndex(time.Now(), len(facts))]
}

// Random returns a uniformly random fact.
func Random() Fact {
	facts := allFacts()
	return facts[rand.Intn(len(facts))]
}

// AyurvedicTipOfDay returns the daily tip drawn from the Ayurvedic
// facts only.
func AyurvedicTipOfDay() Fact {
	return ayurvedicFacts[dailyIndex(time.Now(), len(ayurvedicFacts))]
}

// ByCategory returns all facts in a category, case-insensitively.
func ByCategory(category string) []Fact {
	var matched []Fact
	for _, f := range allFacts() {
		if strings.EqualFold(f.Category, category) {
			matched = append(matched, f)
		}
	}
	return matched
}

func dailyIndex(now time.Time, n int) int {
	seed := int64(now.Year())*10000 + int64(now.Month())*100 + int64(now.Day())
	return int(rand.New(rand.NewSource(seed)).Intn(n))
}
