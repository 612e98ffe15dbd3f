package service

import (
	"context"
	"time"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/queue"
	"github.com/iliyamo/cinema-booking/internal/realtime"
)

// BookingStore is implemented by repository.BookingRepo.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	Update(ctx context.Context, b *model.Booking) error
	Delete(ctx context.Context, id uint64) error
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)
	List(ctx context.Context) ([]model.Booking, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error)
	SeatAllocations(ctx context.Context, movieName, movieDate, movieTime string) ([]model.SeatAllocation, error)
}

// BuddyStore is implemented by repository.BuddyRepo.
type BuddyStore interface {
	GetByBookingID(ctx context.Context, bookingID string) (*model.MovieBuddyProfile, error)
	GetByEmailShowtime(ctx context.Context, email string, st model.Showtime) (*model.MovieBuddyProfile, error)
	Create(ctx context.Context, p *model.MovieBuddyProfile) error
	Update(ctx context.Context, p *model.MovieBuddyProfile) error
	ListAll(ctx context.Context) ([]model.MovieBuddyProfile, error)
	ListByShowtime(ctx context.Context, st model.Showtime) ([]model.MovieBuddyProfile, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.MovieBuddyProfile, error)
	DeleteByShowtime(ctx context.Context, st model.Showtime) (int64, error)
}

// MovieStore is implemented by repository.MovieRepo.
type MovieStore interface {
	Create(ctx context.Context, m *model.Movie) error
	Update(ctx context.Context, m *model.Movie) error
	Delete(ctx context.Context, id uint64) error
	GetByID(ctx context.Context, id uint64) (*model.Movie, error)
	List(ctx context.Context, genre string) ([]model.Movie, error)
}

// UserStore is implemented by repository.UserRepo.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
}

// TokenStore is implemented by repository.TokenRepo.
type TokenStore interface {
	Revoke(ctx context.Context, jti string, exp time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// FoodOrderStore is implemented by repository.FoodOrderRepo.
type FoodOrderStore interface {
	Create(ctx context.Context, o *model.FoodOrder) error
	GetByID(ctx context.Context, id uint64) (*model.FoodOrder, error)
	List(ctx context.Context) ([]model.FoodOrder, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.FoodOrder, error)
	Delete(ctx context.Context, id uint64) error
}

// EventPublisher is implemented by queue.Publisher.
type EventPublisher interface {
	PublishBooking(ctx context.Context, ev queue.BookingEvent) error
}

// Notifier is implemented by realtime.Hub.
type Notifier interface {
	Publish(ctx context.Context, ev realtime.Event)
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID uint64
	Role   string
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool { return a.Role == model.RoleAdmin }

// canAccess reports whether a may read or modify a resource owned by ownerID.
func (a Actor) canAccess(ownerID uint64) bool { return a.IsAdmin() || a.UserID == ownerID }

type nopPublisher struct{}

func (nopPublisher) PublishBooking(context.Context, queue.BookingEvent) error { return nil }

type nopNotifier struct{}

func (nopNotifier) Publish(context.Context, realtime.Event) {}
