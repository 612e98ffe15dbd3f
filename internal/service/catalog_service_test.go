package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking/internal/model"
)

func TestMovieServiceValidatesAndRejectsDuplicates(t *testing.T) {
	svc := NewMovieService(&memMovies{byID: map[uint64]model.Movie{}})
	ctx := context.Background()

	_, err := svc.Create(ctx, MovieInput{Title: "  "})
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
	_, err = svc.Create(ctx, MovieInput{Title: "Dune", ReleaseDate: "yesterday"})
	assert.ErrorAs(t, err, &ve)

	m, err := svc.Create(ctx, MovieInput{Title: " Dune ", Genre: "Sci-Fi", ReleaseDate: "2021-10-22"})
	require.NoError(t, err)
	assert.Equal(t, "Dune", m.Title)
	_, err = svc.Create(ctx, MovieInput{Title: "Dune"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.Update(ctx, 77, MovieInput{Title: "Alien"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFoodOrders(t *testing.T) {
	bookings := &memBookings{}
	ctx := context.Background()
	b := &model.Booking{UserID: alice.UserID, MovieName: "Dune", MovieDate: "2024-05-01", MovieTime: "7:00 PM", SeatNumbers: []string{"A1"}}
	require.NoError(t, bookings.Create(ctx, b))
	orders := &memFoodOrders{}
	svc := NewFoodService(orders, bookings)

	_, err := svc.Place(ctx, alice, FoodOrderInput{})
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
	_, err = svc.Place(ctx, alice, FoodOrderInput{Items: []model.FoodItem{{Name: "Popcorn", Quantity: 0}}})
	assert.ErrorAs(t, err, &ve)

	_, err = svc.Place(ctx, bob, FoodOrderInput{BookingID: &b.ID, Items: []model.FoodItem{{Name: "Popcorn", Quantity: 1, UnitPriceCents: 500}}})
	assert.ErrorIs(t, err, ErrForbidden)

	o, err := svc.Place(ctx, alice, FoodOrderInput{BookingID: &b.ID, Items: []model.FoodItem{
		{Name: "Popcorn", Quantity: 2, UnitPriceCents: 500},
		{Name: "Soda", Quantity: 1, UnitPriceCents: 300},
	}})
	require.NoError(t, err)
	assert.Equal(t, uint32(1300), o.TotalCents)
	assert.Equal(t, model.FoodOrderPlaced, o.Status)

	_, err = svc.Get(ctx, bob, o.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	list, err := svc.List(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Cancel(ctx, alice, o.ID))
	_, err = svc.Get(ctx, alice, o.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

type memFoodOrders struct {
	rows []model.FoodOrder
}

func (m *memFoodOrders) Create(_ context.Context, o *model.FoodOrder) error {
	o.ID = uint64(len(m.rows) + 1)
	m.rows = append(m.rows, *o)
	return nil
}

func (m *memFoodOrders) GetByID(_ context.Context, id uint64) (*model.FoodOrder, error) {
	for _, o := range m.rows {
		if o.ID == id {
			cp := o
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memFoodOrders) List(context.Context) ([]model.FoodOrder, error) {
	return append([]model.FoodOrder{}, m.rows...), nil
}

func (m *memFoodOrders) ListByUser(_ context.Context, userID uint64) ([]model.FoodOrder, error) {
	out := []model.FoodOrder{}
	for _, o := range m.rows {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memFoodOrders) Delete(_ context.Context, id uint64) error {
	for i, o := range m.rows {
		if o.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
