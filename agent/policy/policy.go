// Package policy holds the slot-filling decision logic: which field to ask
// for next, when the weather enrichment fires, and how an advisory maps to
// a seating suggestion. Everything here is pure; side effects stay in the
// turn pipeline.
package policy

import (
	"strings"

	statex "github.com/vaiulabs/bistro-host/agent/state"
)

var questions = map[statex.Field]string{
	statex.FieldCustomerName:      "May I have your name, please?",
	statex.FieldBookingDate:       "What date would you like to book?",
	statex.FieldBookingTime:       "What time should we expect you?",
	statex.FieldNumberOfGuests:    "How many guests will be joining?",
	statex.FieldCuisinePreference: "Do you have a cuisine preference?",
	statex.FieldSpecialRequests:   "Any special requests, allergies, or occasions? Just say none if not.",
}

// NextAsk returns the first missing required field and its canned question.
// ok is false when the draft is complete.
func NextAsk(d statex.BookingDraft) (statex.Field, string, bool) {
	missing := d.MissingRequired()
	if len(missing) == 0 {
		return "", "", false
	}
	return missing[0], questions[missing[0]], true
}

// QuestionFor returns the canned question for one field. Used when the
// caller rejects the recap and names the detail to fix.
func QuestionFor(field statex.Field) (string, bool) {
	q, ok := questions[field]
	return q, ok
}

// ShouldEnrichWeather arms the single advisory lookup: a date and a
// location mention are both known and the lookup has not run yet. The
// trigger is orthogonal to which required field is currently being asked.
func ShouldEnrichWeather(st *statex.SessionState) bool {
	if st == nil || st.WeatherDone {
		return false
	}
	return st.Draft.Has(statex.FieldBookingDate) && strings.TrimSpace(st.Location) != ""
}

var indoorHints = []string{"rain", "drizzle", "storm", "thunder", "snow", "sleet", "hail"}

// SeatingFor maps an advisory to a seating suggestion. An empty result
// means the advisory gave nothing to go on and no preference is recorded.
func SeatingFor(advisory string) string {
	lowered := strings.ToLower(strings.TrimSpace(advisory))
	if lowered == "" {
		return ""
	}
	for _, hint := range indoorHints {
		if strings.Contains(lowered, hint) {
			return "Indoor"
		}
	}
	return "Outdoor"
}
