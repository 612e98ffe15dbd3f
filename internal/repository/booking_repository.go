package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// BookingRepo persists bookings and their per-seat rows.  Each booked seat
// is a row in booking_seats carrying a copy of the showtime; the unique
// index over (movie_name, movie_date, movie_time, seat_label) is what keeps
// two bookings from holding the same seat.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, user_id, movie_id, movie_name, movie_date, movie_time, name, email, phone, created_at, updated_at`

// Create inserts the booking and one booking_seats row per seat in a single
// transaction.  If any seat is already taken for the showtime the
// transaction is rolled back and ErrSeatTaken is returned.  On success the
// generated ID and timestamps are populated on b.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	const q = `INSERT INTO bookings (user_id, movie_id, movie_name, movie_date, movie_time, name, email, phone) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, b.UserID, b.MovieID, b.MovieName, b.MovieDate, b.MovieTime, b.Name, b.Email, b.Phone)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)

	if err := insertSeatsTx(ctx, tx, b); err != nil {
		return err
	}
	if err := scanBookingTimesTx(ctx, tx, b); err != nil {
		return err
	}
	return tx.Commit()
}

// Update replaces every mutable field of the booking and its seat list.  The
// old seat rows are deleted inside the same transaction, so a booking can
// keep seats it already holds.  It returns ErrNotFound when the booking does
// not exist and ErrSeatTaken when a new seat collides with another booking.
func (r *BookingRepo) Update(ctx context.Context, b *model.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// Lock the row so concurrent updates of the same booking serialize.
	var exists uint64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM bookings WHERE id = ? FOR UPDATE`, b.ID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	const q = `UPDATE bookings SET movie_id = ?, movie_name = ?, movie_date = ?, movie_time = ?, name = ?, email = ?, phone = ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, q, b.MovieID, b.MovieName, b.MovieDate, b.MovieTime, b.Name, b.Email, b.Phone, b.ID); err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM booking_seats WHERE booking_id = ?`, b.ID); err != nil {
		return fmt.Errorf("delete booking seats: %w", err)
	}
	if err := insertSeatsTx(ctx, tx, b); err != nil {
		return err
	}
	if err := scanBookingTimesTx(ctx, tx, b); err != nil {
		return err
	}
	return tx.Commit()
}

// insertSeatsTx writes all seats of b in one multi-row INSERT.  A duplicate
// key on the showtime/seat index is translated into ErrSeatTaken.
func insertSeatsTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	if len(b.SeatNumbers) == 0 {
		return nil
	}
	query := `INSERT INTO booking_seats (booking_id, movie_name, movie_date, movie_time, seat_label, position) VALUES `
	args := make([]interface{}, 0, len(b.SeatNumbers)*6)
	for i, seat := range b.SeatNumbers {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?)"
		args = append(args, b.ID, b.MovieName, b.MovieDate, b.MovieTime, seat, i)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isDuplicateKey(err) {
			return ErrSeatTaken
		}
		return fmt.Errorf("insert booking seats: %w", err)
	}
	return nil
}

func scanBookingTimesTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	return tx.QueryRowContext(ctx, `SELECT user_id, created_at, updated_at FROM bookings WHERE id = ?`, b.ID).
		Scan(&b.UserID, &b.CreatedAt, &b.UpdatedAt)
}

// Delete removes a booking; its seat rows go with it through the FK cascade.
func (r *BookingRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID loads one booking with its seats.  It returns ErrNotFound if
// there is no matching row.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	out := []model.Booking{*b}
	if err := r.attachSeats(ctx, out); err != nil {
		return nil, err
	}
	return &out[0], nil
}

// List returns every booking, newest first.
func (r *BookingRepo) List(ctx context.Context) ([]model.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY created_at DESC, id DESC`)
}

// ListByUser returns the bookings created by userID, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
}

func (r *BookingRepo) list(ctx context.Context, q string, args ...interface{}) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachSeats(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// SeatAllocations returns, per booking, the seats held for a showtime.  An
// empty movieName matches every movie screened at that date and time.
// Bookings are ordered by ID and seats by their position in the booking.
func (r *BookingRepo) SeatAllocations(ctx context.Context, movieName, movieDate, movieTime string) ([]model.SeatAllocation, error) {
	q := `SELECT booking_id, seat_label FROM booking_seats WHERE movie_date = ? AND movie_time = ?`
	args := []interface{}{movieDate, movieTime}
	if movieName != "" {
		q += ` AND movie_name = ?`
		args = append(args, movieName)
	}
	q += ` ORDER BY booking_id, position`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.SeatAllocation, 0)
	for rows.Next() {
		var bookingID uint64
		var seat string
		if err := rows.Scan(&bookingID, &seat); err != nil {
			return nil, err
		}
		if n := len(out); n > 0 && out[n-1].BookingID == bookingID {
			out[n-1].Seats = append(out[n-1].Seats, seat)
			continue
		}
		out = append(out, model.SeatAllocation{BookingID: bookingID, Seats: []string{seat}})
	}
	return out, rows.Err()
}

// attachSeats loads seat labels for all bookings in one query.
func (r *BookingRepo) attachSeats(ctx context.Context, bookings []model.Booking) error {
	if len(bookings) == 0 {
		return nil
	}
	index := make(map[uint64]int, len(bookings))
	ids := make([]interface{}, 0, len(bookings))
	placeholders := make([]string, 0, len(bookings))
	for i := range bookings {
		bookings[i].SeatNumbers = []string{}
		index[bookings[i].ID] = i
		ids = append(ids, bookings[i].ID)
		placeholders = append(placeholders, "?")
	}
	q := `SELECT booking_id, seat_label FROM booking_seats WHERE booking_id IN (` + strings.Join(placeholders, ",") + `) ORDER BY booking_id, position`
	rows, err := r.db.QueryContext(ctx, q, ids...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var bookingID uint64
		var seat string
		if err := rows.Scan(&bookingID, &seat); err != nil {
			return err
		}
		if i, ok := index[bookingID]; ok {
			bookings[i].SeatNumbers = append(bookings[i].SeatNumbers, seat)
		}
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(s rowScanner) (*model.Booking, error) {
	var b model.Booking
	var movieID sql.NullInt64
	if err := s.Scan(&b.ID, &b.UserID, &movieID, &b.MovieName, &b.MovieDate, &b.MovieTime,
		&b.Name, &b.Email, &b.Phone, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	if movieID.Valid {
		id := uint64(movieID.Int64)
		b.MovieID = &id
	}
	return &b, nil
}
