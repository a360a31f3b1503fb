package backend

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type createBookingInput struct {
	CustomerName      string `json:"customerName" binding:"required"`
	NumberOfGuests    int    `json:"numberOfGuests" binding:"required,gt=0"`
	BookingDate       string `json:"bookingDate" binding:"required"`
	BookingTime       string `json:"bookingTime" binding:"required"`
	CuisinePreference string `json:"cuisinePreference"`
	SpecialRequests   string `json:"specialRequests"`
	SeatingPreference string `json:"seatingPreference"`
	WeatherInfo       string `json:"weatherInfo"`
}

// NewRouter wires the booking API. now is injectable for tests.
func NewRouter(store Store, now func() time.Time) *gin.Engine {
	if now == nil {
		now = time.Now
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	router.POST("/bookings", createBooking(store, now))
	router.GET("/bookings", listBookings(store))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}

func createBooking(store Store, now func() time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input createBookingInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}

		booking := &Booking{
			ID:                uuid.NewString(),
			CustomerName:      input.CustomerName,
			NumberOfGuests:    input.NumberOfGuests,
			BookingDate:       input.BookingDate,
			BookingTime:       input.BookingTime,
			CuisinePreference: input.CuisinePreference,
			SpecialRequests:   input.SpecialRequests,
			SeatingPreference: input.SeatingPreference,
			WeatherInfo:       input.WeatherInfo,
			CreatedAt:         now().UTC(),
		}

		if err := store.Insert(c.Request.Context(), booking); err != nil {
			log.Error().Err(err).Str("customer", input.CustomerName).Msg("failed to save booking")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false})
			return
		}

		log.Info().Str("booking_id", booking.ID).Str("customer", booking.CustomerName).Msg("booking saved")
		c.JSON(http.StatusCreated, gin.H{"success": true, "id": booking.ID})
	}
}

func listBookings(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		records, err := store.List(c.Request.Context())
		if err != nil {
			log.Error().Err(err).Msg("failed to list bookings")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch bookings"})
			return
		}
		if records == nil {
			records = []Booking{}
		}
		c.JSON(http.StatusOK, records)
	}
}
