package state

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Field names one draft attribute. Values match the JSON keys of the
// booking backend so a completed draft marshals straight into the
// POST /bookings body.
type Field string

const (
	FieldCustomerName      Field = "customerName"
	FieldBookingDate       Field = "bookingDate"
	FieldBookingTime       Field = "bookingTime"
	FieldNumberOfGuests    Field = "numberOfGuests"
	FieldCuisinePreference Field = "cuisinePreference"
	FieldSpecialRequests   Field = "specialRequests"
	FieldSeatingPreference Field = "seatingPreference"
	FieldWeatherInfo       Field = "weatherInfo"
)

// RequiredFields is the fixed ask order. The policy always asks for the
// first missing entry of this list and never bundles two asks in one turn.
var RequiredFields = []Field{
	FieldCustomerName,
	FieldBookingDate,
	FieldBookingTime,
	FieldNumberOfGuests,
	FieldCuisinePreference,
	FieldSpecialRequests,
}

// KnownField reports whether name is a draft attribute, required or not.
func KnownField(name string) (Field, bool) {
	switch Field(strings.TrimSpace(name)) {
	case FieldCustomerName, FieldBookingDate, FieldBookingTime,
		FieldNumberOfGuests, FieldCuisinePreference, FieldSpecialRequests,
		FieldSeatingPreference, FieldWeatherInfo:
		return Field(strings.TrimSpace(name)), true
	}
	return "", false
}

// BookingDraft is the booking-in-progress. A zero value on a field means
// absent; NumberOfGuests is absent while 0 since 0 never validates.
type BookingDraft struct {
	CustomerName      string `json:"customerName,omitempty"`
	NumberOfGuests    int    `json:"numberOfGuests,omitempty"`
	BookingDate       string `json:"bookingDate,omitempty"`
	BookingTime       string `json:"bookingTime,omitempty"`
	CuisinePreference string `json:"cuisinePreference,omitempty"`
	SpecialRequests   string `json:"specialRequests,omitempty"`
	SeatingPreference string `json:"seatingPreference,omitempty"`
	WeatherInfo       string `json:"weatherInfo,omitempty"`
}

// ValidationError rejects one field value. It is local and recoverable:
// the policy re-asks the same field and the draft is left untouched.
type ValidationError struct {
	Field  Field
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Loose shape checks. A date or time only has to look date- or time-like;
// exact parsing is the caller's problem downstream.
var (
	digitPattern    = regexp.MustCompile(`[0-9]`)
	dateWordPattern = regexp.MustCompile(`(?i)\b(today|tomorrow|tonight|mon(day)?|tue(s(day)?)?|wed(nesday)?|thu(rs(day)?)?|fri(day)?|sat(urday)?|sun(day)?|jan(uary)?|feb(ruary)?|mar(ch)?|apr(il)?|may|jun(e)?|jul(y)?|aug(ust)?|sep(t(ember)?)?|oct(ober)?|nov(ember)?|dec(ember)?)\b`)
	timeWordPattern = regexp.MustCompile(`(?i)\b(noon|midnight)\b`)
)

// Set validates value for field and mutates the draft only on success.
// Invalid input returns *ValidationError and leaves the draft unchanged.
func (d *BookingDraft) Set(field Field, value any) error {
	switch field {
	case FieldNumberOfGuests:
		n, err := coerceGuests(value)
		if err != nil {
			return &ValidationError{Field: field, Reason: err.Error()}
		}
		d.NumberOfGuests = n
		return nil
	case FieldCustomerName, FieldBookingDate, FieldBookingTime,
		FieldCuisinePreference, FieldSpecialRequests,
		FieldSeatingPreference, FieldWeatherInfo:
		text, ok := value.(string)
		if !ok {
			text = fmt.Sprint(value)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return &ValidationError{Field: field, Reason: "value is empty"}
		}
		if field == FieldBookingDate && !looksLikeDate(text) {
			return &ValidationError{Field: field, Reason: "does not look like a date"}
		}
		if field == FieldBookingTime && !looksLikeTime(text) {
			return &ValidationError{Field: field, Reason: "does not look like a time"}
		}
		d.setText(field, text)
		return nil
	default:
		return &ValidationError{Field: field, Reason: "unknown field"}
	}
}

func (d *BookingDraft) setText(field Field, text string) {
	switch field {
	case FieldCustomerName:
		d.CustomerName = text
	case FieldBookingDate:
		d.BookingDate = text
	case FieldBookingTime:
		d.BookingTime = text
	case FieldCuisinePreference:
		d.CuisinePreference = text
	case FieldSpecialRequests:
		d.SpecialRequests = text
	case FieldSeatingPreference:
		d.SeatingPreference = text
	case FieldWeatherInfo:
		d.WeatherInfo = text
	}
}

// Clear resets one field to absent. Used when the caller rejects the recap
// and names the detail that is wrong.
func (d *BookingDraft) Clear(field Field) {
	if field == FieldNumberOfGuests {
		d.NumberOfGuests = 0
		return
	}
	d.setText(field, "")
}

// Has reports presence of a field value.
func (d *BookingDraft) Has(field Field) bool {
	if field == FieldNumberOfGuests {
		return d.NumberOfGuests > 0
	}
	return d.text(field) != ""
}

func (d *BookingDraft) text(field Field) string {
	switch field {
	case FieldCustomerName:
		return d.CustomerName
	case FieldBookingDate:
		return d.BookingDate
	case FieldBookingTime:
		return d.BookingTime
	case FieldCuisinePreference:
		return d.CuisinePreference
	case FieldSpecialRequests:
		return d.SpecialRequests
	case FieldSeatingPreference:
		return d.SeatingPreference
	case FieldWeatherInfo:
		return d.WeatherInfo
	}
	return ""
}

// Value returns the field value for display. Guests render as digits.
func (d *BookingDraft) Value(field Field) string {
	if field == FieldNumberOfGuests {
		if d.NumberOfGuests <= 0 {
			return ""
		}
		return strconv.Itoa(d.NumberOfGuests)
	}
	return d.text(field)
}

// MissingRequired returns the ordered subsequence of RequiredFields not
// yet present.
func (d *BookingDraft) MissingRequired() []Field {
	missing := make([]Field, 0, len(RequiredFields))
	for _, f := range RequiredFields {
		if !d.Has(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

func (d *BookingDraft) IsComplete() bool {
	return len(d.MissingRequired()) == 0
}

// Summary renders present fields as a map for LLM payloads.
func (d *BookingDraft) Summary() map[string]any {
	out := make(map[string]any, 8)
	for _, f := range []Field{
		FieldCustomerName, FieldBookingDate, FieldBookingTime,
		FieldNumberOfGuests, FieldCuisinePreference, FieldSpecialRequests,
		FieldSeatingPreference, FieldWeatherInfo,
	} {
		if !d.Has(f) {
			continue
		}
		if f == FieldNumberOfGuests {
			out[string(f)] = d.NumberOfGuests
		} else {
			out[string(f)] = d.text(f)
		}
	}
	return out
}

func coerceGuests(value any) (int, error) {
	var n int
	switch v := value.(type) {
	case int:
		n = v
	case int64:
		n = int(v)
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("guest count must be a whole number")
		}
		n = int(v)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("guest count must be a number")
		}
		n = parsed
	default:
		return 0, fmt.Errorf("guest count must be a number")
	}
	if n <= 0 {
		return 0, fmt.Errorf("guest count must be positive")
	}
	return n, nil
}

func looksLikeDate(text string) bool {
	return digitPattern.MatchString(text) || dateWordPattern.MatchString(text)
}

func looksLikeTime(text string) bool {
	return digitPattern.MatchString(text) || timeWordPattern.MatchString(text)
}
