package model

import "time"

// Booking records a patron's seats for one showtime.  The showtime is the
// composite (MovieName, MovieDate, MovieTime); MovieID is set when the
// booking was made against a catalog entry.
//
// Fields:
//
//	ID          – primary key identifier.
//	UserID      – account that created the booking.
//	MovieID     – optional catalog reference.
//	MovieName   – movie title as shown to the patron.
//	MovieDate   – calendar date, YYYY-MM-DD.
//	MovieTime   – showtime label such as "7:00 PM".
//	SeatNumbers – ordered seat labels; never empty.
//	Name/Email/Phone – contact details of the patron.
type Booking struct {
	ID          uint64    `json:"id"`
	UserID      uint64    `json:"userId"`
	MovieID     *uint64   `json:"movieId,omitempty"`
	MovieName   string    `json:"movieName"`
	MovieDate   string    `json:"movieDate"`
	MovieTime   string    `json:"movieTime"`
	SeatNumbers []string  `json:"seatNumbers"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Showtime identifies a single screening.
type Showtime struct {
	MovieName string `json:"movieName"`
	MovieDate string `json:"movieDate"`
	MovieTime string `json:"movieTime"`
}

// Showtime returns the screening this booking belongs to.
func (b Booking) Showtime() Showtime {
	return Showtime{MovieName: b.MovieName, MovieDate: b.MovieDate, MovieTime: b.MovieTime}
}

// SeatAllocation is the seat list one booking holds for a showtime.  The
// occupancy query is computed from these rows rather than from a stored
// "occupied seats" value.
type SeatAllocation struct {
	BookingID uint64   `json:"bookingId"`
	Seats     []string `json:"seats"`
}
