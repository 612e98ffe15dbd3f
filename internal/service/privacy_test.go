package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/cinema-booking/internal/model"
)

func aliceProfile() model.MovieBuddyProfile {
	return model.MovieBuddyProfile{
		ID: 1, UserID: 9, BookingID: "B1",
		MovieName: "Dune", MovieDate: "2024-05-01", MovieTime: "7:00 PM",
		Name: "Alice", Age: 30, Gender: model.GenderFemale,
		Email: "a@x.com", Phone: "555-1111",
		SeatNumbers: []string{"A1"}, MoviePreferences: []string{"Sci-Fi"},
		PrivacySettings: model.PrivacySettings{ShowName: false, ShowEmail: false, ShowPhone: true, PetName: "Shadow"},
	}
}

func TestToDisplayViewRedacts(t *testing.T) {
	p := aliceProfile()
	v := ToDisplayView(p)

	assert.Equal(t, "Shadow", v.Name)
	assert.Equal(t, "", v.Email)
	assert.Equal(t, "555-1111", v.Phone)
	assert.False(t, v.IsGroup)

	// source profile is untouched
	assert.Equal(t, "Alice", p.Name)
	assert.Equal(t, "a@x.com", p.Email)
}

func TestToDisplayViewShowsEverything(t *testing.T) {
	p := aliceProfile()
	p.PrivacySettings = model.PrivacySettings{ShowName: true, ShowEmail: true, ShowPhone: true, PetName: "Shadow"}
	p.SeatNumbers = []string{"A1", "A2"}
	v := ToDisplayView(p)

	assert.Equal(t, "Alice", v.Name)
	assert.Equal(t, "a@x.com", v.Email)
	assert.Equal(t, "555-1111", v.Phone)
	assert.True(t, v.IsGroup)
}

func TestToDisplayViewHiddenNameWithoutPetName(t *testing.T) {
	p := aliceProfile()
	p.PrivacySettings.PetName = ""
	assert.Equal(t, AnonymousName, ToDisplayView(p).Name)
}

func TestToDisplayViewIdempotent(t *testing.T) {
	p := aliceProfile()
	once := ToDisplayView(p)

	// Re-apply to a profile rebuilt from the view, with the same settings.
	again := p
	again.Name, again.Email, again.Phone = once.Name, once.Email, once.Phone
	assert.Equal(t, once, ToDisplayView(again))
}

func TestToDisplayViewCopiesSlices(t *testing.T) {
	p := aliceProfile()
	v := ToDisplayView(p)
	v.SeatNumbers[0] = "Z9"
	assert.Equal(t, "A1", p.SeatNumbers[0])
}
