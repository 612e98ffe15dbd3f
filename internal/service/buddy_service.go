package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/iliyamo/cinema-booking/internal/logging"
	"github.com/iliyamo/cinema-booking/internal/metrics"
	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/realtime"
)

// MinBuddyAge is the youngest age accepted on a buddy profile.
const MinBuddyAge = 18

const (
	maxBookingDateLen = 32
	maxPetNameLen     = 100
)

// BuddyInput is one profile in an upsert request.  A nil PrivacySettings
// shows the name and hides email and phone.
type BuddyInput struct {
	BookingID        string                 `json:"bookingId"`
	MovieName        string                 `json:"movieName"`
	MovieDate        string                 `json:"movieDate"`
	MovieTime        string                 `json:"movieTime"`
	Name             string                 `json:"name"`
	Age              int                    `json:"age"`
	Gender           string                 `json:"gender"`
	Email            string                 `json:"email"`
	Phone            string                 `json:"phone"`
	BookingDate      string                 `json:"bookingDate"`
	SeatNumbers      []string               `json:"seatNumbers"`
	MoviePreferences []string               `json:"moviePreferences"`
	PrivacySettings  *model.PrivacySettings `json:"privacySettings"`
}

// UpsertResult is the stored profile and whether it was newly created.
type UpsertResult struct {
	Profile model.MovieBuddyProfile `json:"profile"`
	Created bool                    `json:"created"`
}

// BuddyService manages movie-buddy profiles.  Every listing meant for other
// patrons goes through ToDisplayView.
type BuddyService struct {
	buddies  BuddyStore
	bookings BookingStore
	users    UserStore
	notifier Notifier
}

// NewBuddyService wires the buddy service.  notifier may be nil.
func NewBuddyService(buddies BuddyStore, bookings BookingStore, users UserStore, notifier Notifier) *BuddyService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &BuddyService{buddies: buddies, bookings: bookings, users: users, notifier: notifier}
}

// Upsert creates or updates the actor's profiles.  Lookup is by bookingId
// first, then by email and showtime; a match owned by another account is an
// ErrConflict.  A bookingId must name one of the actor's own bookings.  All
// inputs are validated before anything is written.
func (s *BuddyService) Upsert(ctx context.Context, actor Actor, inputs []BuddyInput) ([]UpsertResult, error) {
	if len(inputs) == 0 {
		return nil, invalid("at least one profile is required")
	}
	numbered := func(i int, err error) error {
		var ve *ValidationError
		if len(inputs) > 1 && errors.As(err, &ve) {
			return invalid("profile %d: %s", i+1, ve.Message)
		}
		return err
	}
	var accountEmail string
	profiles := make([]model.MovieBuddyProfile, 0, len(inputs))
	for i, in := range inputs {
		p, err := buildProfile(in)
		if err != nil {
			return nil, numbered(i, err)
		}
		if p.BookingID != "" {
			if p.BookingID, err = s.ownBooking(ctx, actor, p.BookingID); err != nil {
				return nil, numbered(i, err)
			}
		}
		if p.Email == "" {
			if accountEmail == "" {
				u, err := s.users.GetByID(ctx, actor.UserID)
				if err != nil {
					return nil, fmt.Errorf("load account: %w", err)
				}
				accountEmail = u.Email
			}
			p.Email = accountEmail
		}
		p.UserID = actor.UserID
		profiles = append(profiles, p)
	}

	results := make([]UpsertResult, 0, len(profiles))
	for _, p := range profiles {
		res, err := s.upsertOne(ctx, actor, p)
		if err != nil {
			result := "error"
			if errors.Is(err, ErrConflict) {
				result = "conflict"
			}
			metrics.BuddyUpserts.WithLabelValues(result).Inc()
			return nil, err
		}
		metrics.BuddyUpserts.WithLabelValues(lo.Ternary(res.Created, "created", "updated")).Inc()
		results = append(results, res)
	}
	return results, nil
}

func (s *BuddyService) upsertOne(ctx context.Context, actor Actor, p model.MovieBuddyProfile) (UpsertResult, error) {
	existing, err := s.findExisting(ctx, p)
	if err != nil {
		return UpsertResult{}, err
	}
	if existing == nil {
		if err := s.buddies.Create(ctx, &p); err != nil {
			return UpsertResult{}, err
		}
		notifyMovieDetails(ctx, s.notifier, p)
		return UpsertResult{Profile: p, Created: true}, nil
	}
	if existing.UserID != actor.UserID {
		return UpsertResult{}, ErrConflict
	}

	moved := existing.Showtime() != p.Showtime() || !slices.Equal(existing.SeatNumbers, p.SeatNumbers)
	p.ID = existing.ID
	p.UserID = existing.UserID
	if p.BookingID == "" {
		p.BookingID = existing.BookingID
	}
	if err := s.buddies.Update(ctx, &p); err != nil {
		return UpsertResult{}, err
	}
	if moved {
		notifyMovieDetails(ctx, s.notifier, p)
	}
	return UpsertResult{Profile: p}, nil
}

// ownBooking checks that raw names a booking held by actor and returns its
// canonical form.
func (s *BuddyService) ownBooking(ctx context.Context, actor Actor, raw string) (string, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return "", invalid("bookingId must reference one of your bookings")
	}
	b, err := s.bookings.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return "", invalid("bookingId must reference one of your bookings")
	}
	if err != nil {
		return "", fmt.Errorf("load booking %d: %w", id, err)
	}
	if b.UserID != actor.UserID {
		return "", ErrForbidden
	}
	return strconv.FormatUint(id, 10), nil
}

// findExisting resolves the canonical record of p, or nil when there is none.
func (s *BuddyService) findExisting(ctx context.Context, p model.MovieBuddyProfile) (*model.MovieBuddyProfile, error) {
	if p.BookingID != "" {
		found, err := s.buddies.GetByBookingID(ctx, p.BookingID)
		if err == nil {
			return found, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	found, err := s.buddies.GetByEmailShowtime(ctx, p.Email, p.Showtime())
	if err == nil {
		return found, nil
	}
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return nil, err
}

// Groups returns every profile grouped by showtime.  Groups keep the order
// in which their first member appears in the newest-first listing.
func (s *BuddyService) Groups(ctx context.Context) ([]model.BuddyGroup, error) {
	all, err := s.buddies.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	groups := make([]model.BuddyGroup, 0)
	index := make(map[model.Showtime]int)
	for _, p := range all {
		st := p.Showtime()
		i, ok := index[st]
		if !ok {
			i = len(groups)
			index[st] = i
			groups = append(groups, model.BuddyGroup{
				MovieName: st.MovieName, MovieDate: st.MovieDate, MovieTime: st.MovieTime,
				Buddies: []model.BuddyView{},
			})
		}
		groups[i].Buddies = append(groups[i].Buddies, ToDisplayView(p))
	}
	return groups, nil
}

// Find lists the other patrons of a showtime.  Profiles of the actor and
// profiles whose email matches excludeEmail (case-insensitively) are left
// out.
func (s *BuddyService) Find(ctx context.Context, actor Actor, st model.Showtime, excludeEmail string) ([]model.BuddyView, error) {
	st, err := requireShowtime(st)
	if err != nil {
		return nil, err
	}
	ps, err := s.buddies.ListByShowtime(ctx, st)
	if err != nil {
		return nil, err
	}
	excludeEmail = strings.TrimSpace(excludeEmail)
	others := lo.Filter(ps, func(p model.MovieBuddyProfile, _ int) bool {
		if p.UserID == actor.UserID {
			return false
		}
		return excludeEmail == "" || !strings.EqualFold(p.Email, excludeEmail)
	})
	return displayViews(others), nil
}

// Mine returns the actor's own profiles unredacted.
func (s *BuddyService) Mine(ctx context.Context, actor Actor) ([]model.MovieBuddyProfile, error) {
	return s.buddies.ListByUser(ctx, actor.UserID)
}

// DeleteGroup removes every profile of a showtime.  Admin only.
func (s *BuddyService) DeleteGroup(ctx context.Context, actor Actor, st model.Showtime) (int64, error) {
	if !actor.IsAdmin() {
		return 0, ErrForbidden
	}
	st, err := requireShowtime(st)
	if err != nil {
		return 0, err
	}
	n, err := s.buddies.DeleteByShowtime(ctx, st)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrNotFound
	}
	return n, nil
}

func requireShowtime(st model.Showtime) (model.Showtime, error) {
	st = model.Showtime{
		MovieName: strings.TrimSpace(st.MovieName),
		MovieDate: strings.TrimSpace(st.MovieDate),
		MovieTime: strings.TrimSpace(st.MovieTime),
	}
	if st.MovieName == "" || st.MovieDate == "" || st.MovieTime == "" {
		return st, invalid("movieName, movieDate and movieTime are required")
	}
	return st, nil
}

func buildProfile(in BuddyInput) (model.MovieBuddyProfile, error) {
	st, err := requireShowtime(model.Showtime{MovieName: in.MovieName, MovieDate: in.MovieDate, MovieTime: in.MovieTime})
	if err != nil {
		return model.MovieBuddyProfile{}, err
	}
	if _, err := time.Parse(dateLayout, st.MovieDate); err != nil {
		return model.MovieBuddyProfile{}, invalid("movieDate must be a date in YYYY-MM-DD format")
	}
	p := model.MovieBuddyProfile{
		BookingID:   strings.TrimSpace(in.BookingID),
		MovieName:   st.MovieName,
		MovieDate:   st.MovieDate,
		MovieTime:   st.MovieTime,
		Name:        strings.TrimSpace(in.Name),
		Age:         in.Age,
		Gender:      strings.TrimSpace(in.Gender),
		Email:       strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:       strings.TrimSpace(in.Phone),
		BookingDate: strings.TrimSpace(in.BookingDate),
		SeatNumbers: lo.Compact(lo.Map(in.SeatNumbers, func(seat string, _ int) string {
			return strings.ToUpper(strings.TrimSpace(seat))
		})),
		MoviePreferences: lo.Uniq(lo.Compact(lo.Map(in.MoviePreferences, func(g string, _ int) string {
			return strings.TrimSpace(g)
		}))),
		PrivacySettings: model.PrivacySettings{ShowName: true},
	}
	if in.PrivacySettings != nil {
		p.PrivacySettings = *in.PrivacySettings
		p.PrivacySettings.PetName = strings.TrimSpace(p.PrivacySettings.PetName)
	}

	switch {
	case p.Name == "":
		return p, invalid("name is required")
	case p.Age < MinBuddyAge:
		return p, invalid("age must be at least %d", MinBuddyAge)
	case !lo.Contains([]string{model.GenderMale, model.GenderFemale, model.GenderOther}, p.Gender):
		return p, invalid("gender must be one of Male, Female, Other")
	case !p.PrivacySettings.ShowName && p.PrivacySettings.PetName == "":
		return p, invalid("petName is required when showName is false")
	}
	if p.Email != "" {
		if _, err := mail.ParseAddress(p.Email); err != nil {
			return p, invalid("a valid email is required")
		}
	}
	return p, checkWidths(
		width{"movieName", p.MovieName, maxTextLen},
		width{"movieTime", p.MovieTime, maxMovieTimeLen},
		width{"name", p.Name, maxTextLen},
		width{"email", p.Email, maxTextLen},
		width{"phone", p.Phone, maxPhoneLen},
		width{"bookingDate", p.BookingDate, maxBookingDateLen},
		width{"petName", p.PrivacySettings.PetName, maxPetNameLen},
	)
}

// notifyMovieDetails broadcasts the redacted profile to realtime clients.
func notifyMovieDetails(ctx context.Context, n Notifier, p model.MovieBuddyProfile) {
	ev, err := realtime.NewEvent(realtime.MovieDetailsUpdated, ToDisplayView(p))
	if err != nil {
		logging.FromContext(ctx).WithError(err).Warn("encode movieDetailsUpdated")
		return
	}
	n.Publish(ctx, ev)
}
