// Package service holds the business rules of the cinema: bookings and seat
// occupancy, the movie-buddy directory, accounts, the movie catalog and food
// orders.  Handlers translate the errors declared here into HTTP statuses.
package service

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/iliyamo/cinema-booking/internal/repository"
)

// Sentinels shared with the storage layer so callers only import service.
var (
	ErrNotFound    = repository.ErrNotFound
	ErrForbidden   = repository.ErrForbidden
	ErrConflict    = repository.ErrConflict
	ErrSeatTaken   = repository.ErrSeatTaken
	ErrEmailExists = repository.ErrEmailExists
)

// ErrUnauthorized is returned for any failed login.  The message is the same
// for unknown emails and wrong passwords.
var ErrUnauthorized = errors.New("invalid credentials")

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// width is a field bounded by its column size, in characters.
type width struct {
	field string
	value string
	max   int
}

// checkWidths rejects the first value longer than its column.
func checkWidths(ws ...width) error {
	for _, w := range ws {
		if utf8.RuneCountInString(w.value) > w.max {
			return invalid("%s must be at most %d characters", w.field, w.max)
		}
	}
	return nil
}

// SeatConflictError lists the requested seats that another booking already
// holds for the same showtime.
type SeatConflictError struct {
	Seats []string
}

func (e *SeatConflictError) Error() string {
	if len(e.Seats) == 0 {
		return "selected seats are already booked"
	}
	return "seats already booked: " + strings.Join(e.Seats, ", ")
}

func (e *SeatConflictError) Unwrap() error { return ErrSeatTaken }
