package model

import "time"

// Movie is a catalog entry.  Bookings reference it by title; the booked-seats
// query also accepts its ID.
type Movie struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title"`
	Genre       string    `json:"genre"`
	Language    string    `json:"language"`
	DurationMin uint32    `json:"durationMin"`
	ReleaseDate string    `json:"releaseDate"`
	Description string    `json:"description"`
	PosterURL   string    `json:"posterUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
