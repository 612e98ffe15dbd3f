package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// FoodOrderRepo persists concession orders.  Items are stored as a JSON
// document on the order row.
type FoodOrderRepo struct {
	db *sql.DB
}

// NewFoodOrderRepo returns a new FoodOrderRepo bound to the given database.
func NewFoodOrderRepo(db *sql.DB) *FoodOrderRepo { return &FoodOrderRepo{db: db} }

const foodOrderColumns = `id, user_id, booking_id, items, total_cents, status, created_at`

// Create inserts the order and populates its ID and creation time.
func (r *FoodOrderRepo) Create(ctx context.Context, o *model.FoodOrder) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO food_orders (user_id, booking_id, items, total_cents, status) VALUES (?, ?, ?, ?, ?)`,
		o.UserID, o.BookingID, string(items), o.TotalCents, o.Status)
	if err != nil {
		return fmt.Errorf("insert food order: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	return r.db.QueryRowContext(ctx, `SELECT created_at FROM food_orders WHERE id = ?`, o.ID).Scan(&o.CreatedAt)
}

// GetByID returns one order or ErrNotFound.
func (r *FoodOrderRepo) GetByID(ctx context.Context, id uint64) (*model.FoodOrder, error) {
	o, err := scanFoodOrder(r.db.QueryRowContext(ctx, `SELECT `+foodOrderColumns+` FROM food_orders WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

// List returns every order, newest first.
func (r *FoodOrderRepo) List(ctx context.Context) ([]model.FoodOrder, error) {
	return r.list(ctx, `SELECT `+foodOrderColumns+` FROM food_orders ORDER BY created_at DESC, id DESC`)
}

// ListByUser returns the orders of userID, newest first.
func (r *FoodOrderRepo) ListByUser(ctx context.Context, userID uint64) ([]model.FoodOrder, error) {
	return r.list(ctx, `SELECT `+foodOrderColumns+` FROM food_orders WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
}

// Delete removes an order.
func (r *FoodOrderRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM food_orders WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *FoodOrderRepo) list(ctx context.Context, q string, args ...interface{}) ([]model.FoodOrder, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.FoodOrder, 0)
	for rows.Next() {
		o, err := scanFoodOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func scanFoodOrder(s rowScanner) (*model.FoodOrder, error) {
	var o model.FoodOrder
	var bookingID sql.NullInt64
	var items []byte
	if err := s.Scan(&o.ID, &o.UserID, &bookingID, &items, &o.TotalCents, &o.Status, &o.CreatedAt); err != nil {
		return nil, err
	}
	if bookingID.Valid {
		id := uint64(bookingID.Int64)
		o.BookingID = &id
	}
	o.Items = []model.FoodItem{}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &o.Items); err != nil {
			return nil, fmt.Errorf("decode items: %w", err)
		}
	}
	return &o, nil
}
