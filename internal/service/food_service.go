package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// FoodOrderInput is the body of a food order request.
type FoodOrderInput struct {
	BookingID *uint64          `json:"bookingId"`
	Items     []model.FoodItem `json:"items"`
}

// FoodService takes concession orders, optionally attached to a booking the
// caller owns.
type FoodService struct {
	orders   FoodOrderStore
	bookings BookingStore
}

func NewFoodService(orders FoodOrderStore, bookings BookingStore) *FoodService {
	return &FoodService{orders: orders, bookings: bookings}
}

// Place validates and stores an order for actor.
func (s *FoodService) Place(ctx context.Context, actor Actor, in FoodOrderInput) (*model.FoodOrder, error) {
	if len(in.Items) == 0 {
		return nil, invalid("at least one item must be ordered")
	}
	items := make([]model.FoodItem, 0, len(in.Items))
	for i, it := range in.Items {
		it.Name = strings.TrimSpace(it.Name)
		if it.Name == "" {
			return nil, invalid("item %d: name is required", i+1)
		}
		if it.Quantity < 1 {
			return nil, invalid("item %d: quantity must be at least 1", i+1)
		}
		items = append(items, it)
	}
	if in.BookingID != nil {
		b, err := s.bookings.GetByID(ctx, *in.BookingID)
		if err != nil {
			return nil, fmt.Errorf("booking %d: %w", *in.BookingID, err)
		}
		if !actor.canAccess(b.UserID) {
			return nil, ErrForbidden
		}
	}
	o := &model.FoodOrder{
		UserID:    actor.UserID,
		BookingID: in.BookingID,
		Items:     items,
		Status:    model.FoodOrderPlaced,
	}
	o.TotalCents = o.Total()
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// List returns the actor's orders, or all orders for admins.
func (s *FoodService) List(ctx context.Context, actor Actor) ([]model.FoodOrder, error) {
	if actor.IsAdmin() {
		return s.orders.List(ctx)
	}
	return s.orders.ListByUser(ctx, actor.UserID)
}

func (s *FoodService) Get(ctx context.Context, actor Actor, id uint64) (*model.FoodOrder, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.canAccess(o.UserID) {
		return nil, ErrForbidden
	}
	return o, nil
}

func (s *FoodService) Cancel(ctx context.Context, actor Actor, id uint64) error {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return err
	}
	return s.orders.Delete(ctx, id)
}
