// Package queue defines message payloads exchanged over the message broker.
package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// Booking event types.
const (
	BookingCreated   = "booking.created"
	BookingUpdated   = "booking.updated"
	BookingCancelled = "booking.cancelled"
)

// BookingEvent is published whenever a booking is created, replaced or
// cancelled.  It carries enough of the booking for downstream consumers to
// log or notify without querying the primary database.
type BookingEvent struct {
	ID         string   `json:"id"`
	Type       string   `json:"type"`
	BookingID  uint64   `json:"bookingId"`
	UserID     uint64   `json:"userId"`
	MovieName  string   `json:"movieName"`
	MovieDate  string   `json:"movieDate"`
	MovieTime  string   `json:"movieTime"`
	Seats      []string `json:"seats"`
	Email      string   `json:"email"`
	OccurredAt string   `json:"occurredAt"`
}

// NewBookingEvent builds an event of type typ from b.
func NewBookingEvent(typ string, b model.Booking) BookingEvent {
	return BookingEvent{
		ID:         uuid.NewString(),
		Type:       typ,
		BookingID:  b.ID,
		UserID:     b.UserID,
		MovieName:  b.MovieName,
		MovieDate:  b.MovieDate,
		MovieTime:  b.MovieTime,
		Seats:      append([]string(nil), b.SeatNumbers...),
		Email:      b.Email,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
}
