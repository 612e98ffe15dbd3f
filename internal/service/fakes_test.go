package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/queue"
	"github.com/iliyamo/cinema-booking/internal/realtime"
)

// memBookings mirrors the unique showtime/seat index of the MySQL store.
type memBookings struct {
	mu         sync.Mutex
	rows       []model.Booking
	next       uint64
	allocCalls int
}

func (m *memBookings) taken(b *model.Booking) bool {
	for _, r := range m.rows {
		if r.ID == b.ID || r.Showtime() != b.Showtime() {
			continue
		}
		for _, s := range r.SeatNumbers {
			for _, want := range b.SeatNumbers {
				if s == want {
					return true
				}
			}
		}
	}
	return false
}

func (m *memBookings) Create(_ context.Context, b *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.taken(b) {
		return ErrSeatTaken
	}
	m.next++
	b.ID = m.next
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	cp := *b
	cp.SeatNumbers = append([]string{}, b.SeatNumbers...)
	m.rows = append(m.rows, cp)
	return nil
}

func (m *memBookings) Update(_ context.Context, b *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == b.ID {
			if m.taken(b) {
				return ErrSeatTaken
			}
			cp := *b
			cp.SeatNumbers = append([]string{}, b.SeatNumbers...)
			m.rows[i] = cp
			return nil
		}
	}
	return ErrNotFound
}

func (m *memBookings) Delete(_ context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *memBookings) GetByID(_ context.Context, id uint64) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ID == id {
			cp := r
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memBookings) List(_ context.Context) ([]model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]model.Booking{}, m.rows...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memBookings) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	all, _ := m.List(ctx)
	out := []model.Booking{}
	for _, b := range all {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memBookings) SeatAllocations(_ context.Context, movieName, movieDate, movieTime string) ([]model.SeatAllocation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allocCalls++
	out := []model.SeatAllocation{}
	for _, r := range m.rows {
		if r.MovieDate != movieDate || r.MovieTime != movieTime {
			continue
		}
		if movieName != "" && r.MovieName != movieName {
			continue
		}
		out = append(out, model.SeatAllocation{BookingID: r.ID, Seats: append([]string{}, r.SeatNumbers...)})
	}
	return out, nil
}

// memBuddies mirrors the two unique indexes of movie_buddies.
type memBuddies struct {
	mu   sync.Mutex
	rows []model.MovieBuddyProfile
	next uint64
}

func (m *memBuddies) clash(p *model.MovieBuddyProfile) bool {
	for _, r := range m.rows {
		if r.ID == p.ID {
			continue
		}
		if p.BookingID != "" && r.BookingID == p.BookingID {
			return true
		}
		if r.Email == p.Email && r.Showtime() == p.Showtime() {
			return true
		}
	}
	return false
}

func (m *memBuddies) GetByBookingID(_ context.Context, bookingID string) (*model.MovieBuddyProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.BookingID == bookingID {
			cp := r
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memBuddies) GetByEmailShowtime(_ context.Context, email string, st model.Showtime) (*model.MovieBuddyProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.Email == email && r.Showtime() == st {
			cp := r
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memBuddies) Create(_ context.Context, p *model.MovieBuddyProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.clash(p) {
		return ErrConflict
	}
	m.next++
	p.ID = m.next
	m.rows = append(m.rows, *p)
	return nil
}

func (m *memBuddies) Update(_ context.Context, p *model.MovieBuddyProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.clash(p) {
		return ErrConflict
	}
	for i := range m.rows {
		if m.rows[i].ID == p.ID {
			m.rows[i] = *p
			return nil
		}
	}
	return ErrNotFound
}

func (m *memBuddies) newestFirst(keep func(model.MovieBuddyProfile) bool) []model.MovieBuddyProfile {
	out := []model.MovieBuddyProfile{}
	for i := len(m.rows) - 1; i >= 0; i-- {
		if keep(m.rows[i]) {
			out = append(out, m.rows[i])
		}
	}
	return out
}

func (m *memBuddies) ListAll(_ context.Context) ([]model.MovieBuddyProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.newestFirst(func(model.MovieBuddyProfile) bool { return true }), nil
}

func (m *memBuddies) ListByShowtime(_ context.Context, st model.Showtime) ([]model.MovieBuddyProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.newestFirst(func(p model.MovieBuddyProfile) bool { return p.Showtime() == st }), nil
}

func (m *memBuddies) ListByUser(_ context.Context, userID uint64) ([]model.MovieBuddyProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.newestFirst(func(p model.MovieBuddyProfile) bool { return p.UserID == userID }), nil
}

func (m *memBuddies) DeleteByShowtime(_ context.Context, st model.Showtime) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.rows[:0]
	var n int64
	for _, r := range m.rows {
		if r.Showtime() == st {
			n++
			continue
		}
		kept = append(kept, r)
	}
	m.rows = kept
	return n, nil
}

type memMovies struct {
	byID map[uint64]model.Movie
}

func (m *memMovies) Create(_ context.Context, mv *model.Movie) error {
	for _, existing := range m.byID {
		if existing.Title == mv.Title {
			return ErrConflict
		}
	}
	mv.ID = uint64(len(m.byID) + 1)
	m.byID[mv.ID] = *mv
	return nil
}

func (m *memMovies) Update(_ context.Context, mv *model.Movie) error {
	if _, ok := m.byID[mv.ID]; !ok {
		return ErrNotFound
	}
	m.byID[mv.ID] = *mv
	return nil
}

func (m *memMovies) Delete(_ context.Context, id uint64) error {
	if _, ok := m.byID[id]; !ok {
		return ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memMovies) GetByID(_ context.Context, id uint64) (*model.Movie, error) {
	mv, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &mv, nil
}

func (m *memMovies) List(context.Context, string) ([]model.Movie, error) {
	out := []model.Movie{}
	for _, mv := range m.byID {
		out = append(out, mv)
	}
	return out, nil
}

type memUsers struct {
	rows []model.User
}

func (m *memUsers) Create(_ context.Context, u *model.User) error {
	for _, r := range m.rows {
		if r.Email == u.Email {
			return ErrEmailExists
		}
	}
	u.ID = uint64(len(m.rows) + 1)
	m.rows = append(m.rows, *u)
	return nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, r := range m.rows {
		if r.Email == email {
			cp := r
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memUsers) GetByID(_ context.Context, id uint64) (*model.User, error) {
	for _, r := range m.rows {
		if r.ID == id {
			cp := r
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

type recordingNotifier struct {
	events []realtime.Event
}

func (n *recordingNotifier) Publish(_ context.Context, ev realtime.Event) { n.events = append(n.events, ev) }

type recordingPublisher struct {
	events []queue.BookingEvent
}

func (p *recordingPublisher) PublishBooking(_ context.Context, ev queue.BookingEvent) error {
	p.events = append(p.events, ev)
	return nil
}
