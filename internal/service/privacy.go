package service

import (
	"github.com/samber/lo"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// AnonymousName is shown for profiles that hide their name without a pet
// name.  Validation rejects that combination, so only legacy rows hit it.
const AnonymousName = "Anonymous"

// ToDisplayView is the only way a buddy profile leaves the service for other
// patrons.  It works on a copy and never touches p.  Hidden email and phone
// become empty strings; a hidden name is replaced by the pet name.
func ToDisplayView(p model.MovieBuddyProfile) model.BuddyView {
	v := model.BuddyView{
		ID:               p.ID,
		BookingID:        p.BookingID,
		MovieName:        p.MovieName,
		MovieDate:        p.MovieDate,
		MovieTime:        p.MovieTime,
		Name:             p.Name,
		Age:              p.Age,
		Gender:           p.Gender,
		Email:            p.Email,
		Phone:            p.Phone,
		SeatNumbers:      append([]string{}, p.SeatNumbers...),
		MoviePreferences: append([]string{}, p.MoviePreferences...),
		IsGroup:          p.IsGroup(),
	}
	ps := p.PrivacySettings
	if !ps.ShowEmail {
		v.Email = ""
	}
	if !ps.ShowPhone {
		v.Phone = ""
	}
	if !ps.ShowName {
		v.Name = lo.Ternary(ps.PetName != "", ps.PetName, AnonymousName)
	}
	return v
}

// displayViews maps ToDisplayView over ps.
func displayViews(ps []model.MovieBuddyProfile) []model.BuddyView {
	return lo.Map(ps, func(p model.MovieBuddyProfile, _ int) model.BuddyView { return ToDisplayView(p) })
}
