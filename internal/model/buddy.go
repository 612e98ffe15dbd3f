package model

import "time"

// Gender values accepted on buddy profiles.
const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOther  = "Other"
)

// PrivacySettings controls which contact fields other patrons may see.
// When ShowName is false, PetName is displayed instead of the real name.
type PrivacySettings struct {
	ShowName  bool   `json:"showName"`
	ShowEmail bool   `json:"showEmail"`
	ShowPhone bool   `json:"showPhone"`
	PetName   string `json:"petName"`
}

// MovieBuddyProfile is the movie-buddy record of one patron for one
// showtime.  Credentials are not stored here; the profile belongs to the
// account identified by UserID.  BookingID is the canonical business key
// when present; (Email, showtime) is the secondary lookup.
type MovieBuddyProfile struct {
	ID               uint64          `json:"id"`
	UserID           uint64          `json:"userId"`
	BookingID        string          `json:"bookingId,omitempty"`
	MovieName        string          `json:"movieName"`
	MovieDate        string          `json:"movieDate"`
	MovieTime        string          `json:"movieTime"`
	Name             string          `json:"name"`
	Age              int             `json:"age"`
	Gender           string          `json:"gender"`
	Email            string          `json:"email"`
	Phone            string          `json:"phone"`
	BookingDate      string          `json:"bookingDate,omitempty"`
	SeatNumbers      []string        `json:"seatNumbers"`
	MoviePreferences []string        `json:"moviePreferences"`
	PrivacySettings  PrivacySettings `json:"privacySettings"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// Showtime returns the screening the profile is attached to.
func (p MovieBuddyProfile) Showtime() Showtime {
	return Showtime{MovieName: p.MovieName, MovieDate: p.MovieDate, MovieTime: p.MovieTime}
}

// IsGroup reports whether the profile covers more than one seat.
func (p MovieBuddyProfile) IsGroup() bool { return len(p.SeatNumbers) > 1 }

// BuddyView is the redacted projection of a profile that other patrons see.
type BuddyView struct {
	ID               uint64   `json:"id"`
	BookingID        string   `json:"bookingId,omitempty"`
	MovieName        string   `json:"movieName"`
	MovieDate        string   `json:"movieDate"`
	MovieTime        string   `json:"movieTime"`
	Name             string   `json:"name"`
	Age              int      `json:"age"`
	Gender           string   `json:"gender"`
	Email            string   `json:"email"`
	Phone            string   `json:"phone"`
	SeatNumbers      []string `json:"seatNumbers"`
	MoviePreferences []string `json:"moviePreferences"`
	IsGroup          bool     `json:"isGroup"`
}

// BuddyGroup collects the buddies of one showtime.
type BuddyGroup struct {
	MovieName string      `json:"movieName"`
	MovieDate string      `json:"movieDate"`
	MovieTime string      `json:"movieTime"`
	Buddies   []BuddyView `json:"buddies"`
}
