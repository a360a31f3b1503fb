// Package backend is the booking persistence service: a small HTTP API in
// front of a Postgres table. Records are append-only; a booking that made
// it here is immutable.
package backend

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

type Booking struct {
	bun.BaseModel `bun:"table:bookings,alias:b"`

	ID                string    `bun:"id,pk" json:"id"`
	CustomerName      string    `bun:"customer_name,notnull" json:"customerName"`
	NumberOfGuests    int       `bun:"number_of_guests,notnull" json:"numberOfGuests"`
	BookingDate       string    `bun:"booking_date,notnull" json:"bookingDate"`
	BookingTime       string    `bun:"booking_time,notnull" json:"bookingTime"`
	CuisinePreference string    `bun:"cuisine_preference" json:"cuisinePreference"`
	SpecialRequests   string    `bun:"special_requests" json:"specialRequests"`
	SeatingPreference string    `bun:"seating_preference" json:"seatingPreference"`
	WeatherInfo       string    `bun:"weather_info" json:"weatherInfo"`
	CreatedAt         time.Time `bun:"created_at,notnull" json:"createdAt"`
}

// Store is the persistence contract the handlers run against.
type Store interface {
	Insert(ctx context.Context, booking *Booking) error
	List(ctx context.Context) ([]Booking, error)
}

// BunStore backs Store with Postgres through bun.
type BunStore struct {
	db *bun.DB
}

func NewBunStore(db *bun.DB) *BunStore {
	return &BunStore{db: db}
}

// Init creates the bookings table if it does not exist yet.
func (s *BunStore) Init(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*Booking)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

// Insert writes one booking. A single INSERT, so a failed attempt leaves
// no partial record behind.
func (s *BunStore) Insert(ctx context.Context, booking *Booking) error {
	_, err := s.db.NewInsert().Model(booking).Exec(ctx)
	return err
}

// List returns every booking, newest first.
func (s *BunStore) List(ctx context.Context) ([]Booking, error) {
	var out []Booking
	if err := s.db.NewSelect().
		Model(&out).
		Order("created_at DESC").
		Scan(ctx); err != nil {
		return nil, err
	}
	return out, nil
}
