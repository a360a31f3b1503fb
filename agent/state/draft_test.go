package state

import (
	"errors"
	"testing"
)

func completeDraft() BookingDraft {
	return BookingDraft{
		CustomerName:      "Alice",
		NumberOfGuests:    4,
		BookingDate:       "next Friday",
		BookingTime:       "7pm",
		CuisinePreference: "italian",
		SpecialRequests:   "none",
	}
}

func TestDraftSetValidValues(t *testing.T) {
	t.Parallel()

	var d BookingDraft
	cases := []struct {
		field Field
		value any
	}{
		{FieldCustomerName, "Alice"},
		{FieldBookingDate, "next Friday"},
		{FieldBookingTime, "7pm"},
		{FieldNumberOfGuests, 4},
		{FieldCuisinePreference, "thai"},
		{FieldSpecialRequests, "window seat"},
		{FieldSeatingPreference, "Outdoor"},
		{FieldWeatherInfo, "Clear, 24.0°C"},
	}
	for _, tc := range cases {
		if err := d.Set(tc.field, tc.value); err != nil {
			t.Fatalf("Set(%s, %v) error = %v", tc.field, tc.value, err)
		}
		if !d.Has(tc.field) {
			t.Fatalf("Has(%s) = false after Set", tc.field)
		}
	}
}

func TestDraftSetInvalidLeavesDraftUnchanged(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		field Field
		value any
	}{
		{"zero guests", FieldNumberOfGuests, 0},
		{"negative guests", FieldNumberOfGuests, -2},
		{"fractional guests", FieldNumberOfGuests, 2.5},
		{"non numeric guests", FieldNumberOfGuests, "a few"},
		{"empty name", FieldCustomerName, "   "},
		{"dateless date", FieldBookingDate, "whenever"},
		{"timeless time", FieldBookingTime, "sometime"},
		{"unknown field", Field("partySize"), 3},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			d := completeDraft()
			before := d

			err := d.Set(tc.field, tc.value)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Set(%s, %v) error = %v, want *ValidationError", tc.field, tc.value, err)
			}
			if d != before {
				t.Errorf("draft mutated on invalid input: %+v", d)
			}
		})
	}
}

func TestDraftSetGuestsCoercion(t *testing.T) {
	t.Parallel()

	for _, value := range []any{4, int64(4), float64(4), "4", " 4 "} {
		var d BookingDraft
		if err := d.Set(FieldNumberOfGuests, value); err != nil {
			t.Fatalf("Set(numberOfGuests, %T %v) error = %v", value, value, err)
		}
		if d.NumberOfGuests != 4 {
			t.Fatalf("NumberOfGuests = %d, want 4", d.NumberOfGuests)
		}
	}
}

func TestDraftDateAndTimeShapes(t *testing.T) {
	t.Parallel()

	var d BookingDraft
	for _, date := range []string{"2025-06-12", "next Friday", "tomorrow", "12th of June"} {
		if err := d.Set(FieldBookingDate, date); err != nil {
			t.Errorf("Set(bookingDate, %q) error = %v", date, err)
		}
	}
	for _, tm := range []string{"7pm", "19:30", "noon", "half past 8"} {
		if err := d.Set(FieldBookingTime, tm); err != nil {
			t.Errorf("Set(bookingTime, %q) error = %v", tm, err)
		}
	}
}

func TestDraftMissingRequiredOrder(t *testing.T) {
	t.Parallel()

	var d BookingDraft
	got := d.MissingRequired()
	if len(got) != len(RequiredFields) {
		t.Fatalf("MissingRequired() on empty draft = %v", got)
	}
	for i, f := range RequiredFields {
		if got[i] != f {
			t.Fatalf("MissingRequired()[%d] = %s, want %s", i, got[i], f)
		}
	}

	// Filling out of order must not change the ask order.
	if err := d.Set(FieldBookingTime, "7pm"); err != nil {
		t.Fatal(err)
	}
	if err := d.Set(FieldSpecialRequests, "none"); err != nil {
		t.Fatal(err)
	}
	got = d.MissingRequired()
	want := []Field{FieldCustomerName, FieldBookingDate, FieldNumberOfGuests, FieldCuisinePreference}
	if len(got) != len(want) {
		t.Fatalf("MissingRequired() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("MissingRequired()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestDraftClear(t *testing.T) {
	t.Parallel()

	d := completeDraft()
	if !d.IsComplete() {
		t.Fatal("fixture draft should be complete")
	}

	d.Clear(FieldNumberOfGuests)
	if d.Has(FieldNumberOfGuests) {
		t.Error("guests still present after Clear")
	}
	d.Clear(FieldBookingDate)
	if d.Has(FieldBookingDate) {
		t.Error("date still present after Clear")
	}
	if d.IsComplete() {
		t.Error("draft still complete after Clear")
	}
}

func TestDraftSummaryOmitsAbsent(t *testing.T) {
	t.Parallel()

	var d BookingDraft
	if err := d.Set(FieldCustomerName, "Bob"); err != nil {
		t.Fatal(err)
	}
	if err := d.Set(FieldNumberOfGuests, 2); err != nil {
		t.Fatal(err)
	}

	summary := d.Summary()
	if len(summary) != 2 {
		t.Fatalf("Summary() = %v, want 2 entries", summary)
	}
	if summary["customerName"] != "Bob" {
		t.Errorf("customerName = %v", summary["customerName"])
	}
	if summary["numberOfGuests"] != 2 {
		t.Errorf("numberOfGuests = %v", summary["numberOfGuests"])
	}
}

func TestKnownField(t *testing.T) {
	t.Parallel()

	if f, ok := KnownField(" bookingDate "); !ok || f != FieldBookingDate {
		t.Errorf("KnownField(bookingDate) = %s, %v", f, ok)
	}
	if _, ok := KnownField("partySize"); ok {
		t.Error("KnownField(partySize) = true, want false")
	}
}
