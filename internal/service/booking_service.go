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
	"unicode/utf8"

	"github.com/samber/lo"

	"github.com/iliyamo/cinema-booking/internal/logging"
	"github.com/iliyamo/cinema-booking/internal/metrics"
	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/queue"
)

const dateLayout = "2006-01-02"

// Column widths shared by the bookings, booking_seats and movie_buddies
// tables.
const (
	maxSeatLabelLen = 16
	maxMovieTimeLen = 32
	maxTextLen      = 255
	maxPhoneLen     = 64
)

// BookingInput is the client-supplied part of a booking.  Either MovieID or
// MovieName identifies the movie; MovieID wins when both are set.
type BookingInput struct {
	MovieID     *uint64  `json:"movieId"`
	MovieName   string   `json:"movieName"`
	MovieDate   string   `json:"movieDate"`
	MovieTime   string   `json:"movieTime"`
	SeatNumbers []string `json:"seatNumbers"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
}

// SeatQuery selects the showtime whose occupied seats are requested.  With
// neither MovieID nor MovieName every movie at MovieDate/MovieTime counts.
type SeatQuery struct {
	MovieID          *uint64
	MovieName        string
	MovieDate        string
	MovieTime        string
	ExcludeBookingID *uint64
}

// BookingService implements booking CRUD and the seat occupancy query.
type BookingService struct {
	bookings BookingStore
	buddies  BuddyStore
	movies   MovieStore
	cache    *SeatCache
	events   EventPublisher
	notifier Notifier
}

// NewBookingService wires the booking service.  cache, events and notifier
// may be nil.
func NewBookingService(bookings BookingStore, buddies BuddyStore, movies MovieStore, cache *SeatCache, events EventPublisher, notifier Notifier) *BookingService {
	if events == nil {
		events = nopPublisher{}
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &BookingService{bookings: bookings, buddies: buddies, movies: movies, cache: cache, events: events, notifier: notifier}
}

// OccupiedSeats returns the seats booked for the showtime, flattened in
// booking order.  Seats held by two bookings appear twice.  The seats of
// ExcludeBookingID are left out so a booking being edited can keep them.
func (s *BookingService) OccupiedSeats(ctx context.Context, q SeatQuery) ([]string, error) {
	date, tm := strings.TrimSpace(q.MovieDate), strings.TrimSpace(q.MovieTime)
	if date == "" || tm == "" {
		return nil, invalid("movieDate and movieTime are required")
	}
	movieName := strings.TrimSpace(q.MovieName)
	if q.MovieID != nil {
		m, err := s.movies.GetByID(ctx, *q.MovieID)
		if err != nil {
			return nil, fmt.Errorf("movie %d: %w", *q.MovieID, err)
		}
		movieName = m.Title
	}

	allocs, err := s.allocations(ctx, movieName, date, tm)
	if err != nil {
		return nil, err
	}
	kept := lo.Filter(allocs, func(a model.SeatAllocation, _ int) bool {
		return q.ExcludeBookingID == nil || a.BookingID != *q.ExcludeBookingID
	})
	seats := lo.FlatMap(kept, func(a model.SeatAllocation, _ int) []string { return a.Seats })
	if seats == nil {
		seats = []string{}
	}
	return seats, nil
}

func (s *BookingService) allocations(ctx context.Context, movieName, date, tm string) ([]model.SeatAllocation, error) {
	key := SeatCacheKey(movieName, date, tm)
	allocs, fill, ok := s.cache.Get(ctx, key)
	if ok {
		return allocs, nil
	}
	allocs, err := s.bookings.SeatAllocations(ctx, movieName, date, tm)
	if err != nil {
		return nil, fmt.Errorf("load seat allocations: %w", err)
	}
	s.cache.Set(ctx, key, fill, allocs)
	return allocs, nil
}

// Create validates in and stores a booking owned by actor.  Seats already
// held by another booking yield a *SeatConflictError and nothing is stored.
func (s *BookingService) Create(ctx context.Context, actor Actor, in BookingInput) (*model.Booking, error) {
	b, err := s.build(ctx, in)
	if err != nil {
		return nil, err
	}
	b.UserID = actor.UserID
	if err := s.bookings.Create(ctx, b); err != nil {
		if errors.Is(err, ErrSeatTaken) {
			return nil, s.seatConflict(ctx, b, 0)
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}
	s.cache.Invalidate(ctx, b.Showtime())
	metrics.BookingsCreated.Inc()
	_ = s.events.PublishBooking(ctx, queue.NewBookingEvent(queue.BookingCreated, *b))
	return b, nil
}

// Get returns a booking the actor may see.
func (s *BookingService) Get(ctx context.Context, actor Actor, id uint64) (*model.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.canAccess(b.UserID) {
		return nil, ErrForbidden
	}
	return b, nil
}

// List returns the actor's bookings, or every booking for admins.
func (s *BookingService) List(ctx context.Context, actor Actor) ([]model.Booking, error) {
	if actor.IsAdmin() {
		return s.bookings.List(ctx)
	}
	return s.bookings.ListByUser(ctx, actor.UserID)
}

// Update replaces every mutable field of booking id.  Buddy profiles linked
// to the booking are brought in line with the new showtime and seats.
func (s *BookingService) Update(ctx context.Context, actor Actor, id uint64, in BookingInput) (*model.Booking, error) {
	b, err := s.build(ctx, in)
	if err != nil {
		return nil, err
	}
	old, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	b.ID = id
	b.UserID = old.UserID
	if err := s.bookings.Update(ctx, b); err != nil {
		if errors.Is(err, ErrSeatTaken) {
			return nil, s.seatConflict(ctx, b, id)
		}
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update booking: %w", err)
	}
	s.cache.Invalidate(ctx, old.Showtime(), b.Showtime())
	_ = s.events.PublishBooking(ctx, queue.NewBookingEvent(queue.BookingUpdated, *b))
	s.syncBuddyProfile(ctx, b)
	return b, nil
}

// Delete cancels a booking.
func (s *BookingService) Delete(ctx context.Context, actor Actor, id uint64) error {
	b, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.bookings.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, b.Showtime())
	_ = s.events.PublishBooking(ctx, queue.NewBookingEvent(queue.BookingCancelled, *b))
	return nil
}

func (s *BookingService) build(ctx context.Context, in BookingInput) (*model.Booking, error) {
	b := &model.Booking{
		MovieID:   in.MovieID,
		MovieName: strings.TrimSpace(in.MovieName),
		MovieDate: strings.TrimSpace(in.MovieDate),
		MovieTime: strings.TrimSpace(in.MovieTime),
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:     strings.TrimSpace(in.Phone),
	}
	seats, err := normalizeSeats(in.SeatNumbers)
	if err != nil {
		return nil, err
	}
	b.SeatNumbers = seats
	if b.MovieID == nil && b.MovieName == "" {
		return nil, invalid("movieName is required")
	}
	if _, err := time.Parse(dateLayout, b.MovieDate); err != nil {
		return nil, invalid("movieDate must be a date in YYYY-MM-DD format")
	}
	if b.MovieTime == "" {
		return nil, invalid("movieTime is required")
	}
	if b.Name == "" {
		return nil, invalid("name is required")
	}
	if _, err := mail.ParseAddress(b.Email); err != nil {
		return nil, invalid("a valid email is required")
	}
	if err := checkWidths(
		width{"movieName", b.MovieName, maxTextLen},
		width{"movieTime", b.MovieTime, maxMovieTimeLen},
		width{"name", b.Name, maxTextLen},
		width{"email", b.Email, maxTextLen},
		width{"phone", b.Phone, maxPhoneLen},
	); err != nil {
		return nil, err
	}
	if b.MovieID != nil {
		m, err := s.movies.GetByID(ctx, *b.MovieID)
		if err != nil {
			return nil, fmt.Errorf("movie %d: %w", *b.MovieID, err)
		}
		b.MovieName = m.Title
	}
	return b, nil
}

// normalizeSeats trims labels and rejects empty lists, blank labels and
// labels repeated within one booking.
func normalizeSeats(in []string) ([]string, error) {
	if len(in) == 0 {
		return nil, invalid("at least one seat must be selected")
	}
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, raw := range in {
		seat := strings.ToUpper(strings.TrimSpace(raw))
		if seat == "" {
			return nil, invalid("seat labels must not be empty")
		}
		if utf8.RuneCountInString(seat) > maxSeatLabelLen {
			return nil, invalid("seat labels must be at most %d characters", maxSeatLabelLen)
		}
		if _, dup := seen[seat]; dup {
			return nil, invalid("seat %s is selected more than once", seat)
		}
		seen[seat] = struct{}{}
		out = append(out, seat)
	}
	return out, nil
}

// seatConflict reports which of b's seats other bookings hold.  The lookup
// bypasses the cache since it runs right after a lost race.
func (s *BookingService) seatConflict(ctx context.Context, b *model.Booking, self uint64) error {
	metrics.SeatConflicts.Inc()
	allocs, err := s.bookings.SeatAllocations(ctx, b.MovieName, b.MovieDate, b.MovieTime)
	if err != nil {
		logging.FromContext(ctx).WithError(err).Warn("load seat allocations after conflict")
		return &SeatConflictError{}
	}
	taken := make(map[string]struct{})
	for _, a := range allocs {
		if a.BookingID == self {
			continue
		}
		for _, seat := range a.Seats {
			taken[seat] = struct{}{}
		}
	}
	return &SeatConflictError{Seats: lo.Filter(b.SeatNumbers, func(seat string, _ int) bool {
		_, ok := taken[seat]
		return ok
	})}
}

// syncBuddyProfile copies the booking's showtime and seats onto the buddy
// profile keyed by its ID when the booking owner also owns that profile.
// Failures are logged; the booking is already committed.
func (s *BookingService) syncBuddyProfile(ctx context.Context, b *model.Booking) {
	if s.buddies == nil {
		return
	}
	log := logging.FromContext(ctx).WithField("booking_id", b.ID)
	p, err := s.buddies.GetByBookingID(ctx, strconv.FormatUint(b.ID, 10))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.WithError(err).Warn("load linked buddy profile")
		}
		return
	}
	if p.UserID != b.UserID {
		log.WithField("profile_id", p.ID).Warn("linked buddy profile belongs to another account")
		return
	}
	if p.Showtime() == b.Showtime() && slices.Equal(p.SeatNumbers, b.SeatNumbers) {
		return
	}
	p.MovieName, p.MovieDate, p.MovieTime = b.MovieName, b.MovieDate, b.MovieTime
	p.SeatNumbers = append([]string{}, b.SeatNumbers...)
	if err := s.buddies.Update(ctx, p); err != nil {
		log.WithError(err).Warn("sync linked buddy profile")
		return
	}
	notifyMovieDetails(ctx, s.notifier, *p)
}
