// Package confirm renders the pre-commit recap. The recap is a pure
// function of the draft: identical drafts always produce identical text,
// so an ambiguous reply can re-emit it verbatim without re-litigating
// details the caller already confirmed.
package confirm

import (
	"strings"

	statex "github.com/vaiulabs/bistro-host/agent/state"
)

var labels = map[statex.Field]string{
	statex.FieldCustomerName:      "name",
	statex.FieldBookingDate:       "date",
	statex.FieldBookingTime:       "time",
	statex.FieldNumberOfGuests:    "guests",
	statex.FieldCuisinePreference: "cuisine",
	statex.FieldSpecialRequests:   "special requests",
}

// Recap renders required fields in ask order, then the seating suggestion
// if present.
func Recap(d statex.BookingDraft) string {
	var b strings.Builder
	b.WriteString("Let me confirm everything: ")
	for i, f := range statex.RequiredFields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(labels[f])
		b.WriteString(" ")
		b.WriteString(d.Value(f))
	}
	if seating := d.Value(statex.FieldSeatingPreference); seating != "" {
		b.WriteString(", seating ")
		b.WriteString(seating)
	}
	b.WriteString(". Is this correct?")
	return b.String()
}
