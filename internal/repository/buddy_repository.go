package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// BuddyRepo persists movie-buddy profiles.  bookingId is the canonical
// unique key; (email, movie_name, movie_date, movie_time) is a second unique
// index used for lookups when no bookingId is supplied.
type BuddyRepo struct {
	db *sql.DB
}

// NewBuddyRepo constructs a BuddyRepo with the given DB handle.
func NewBuddyRepo(db *sql.DB) *BuddyRepo { return &BuddyRepo{db: db} }

const buddyColumns = `id, user_id, booking_id, movie_name, movie_date, movie_time, name, age, gender, email, phone,
	booking_date, seat_numbers, movie_preferences, show_name, show_email, show_phone, pet_name, created_at, updated_at`

// GetByBookingID returns the profile keyed by bookingID or ErrNotFound.
func (r *BuddyRepo) GetByBookingID(ctx context.Context, bookingID string) (*model.MovieBuddyProfile, error) {
	return r.getOne(ctx, `SELECT `+buddyColumns+` FROM movie_buddies WHERE booking_id = ? LIMIT 1`, bookingID)
}

// GetByEmailShowtime returns the profile of email for the showtime or ErrNotFound.
func (r *BuddyRepo) GetByEmailShowtime(ctx context.Context, email string, st model.Showtime) (*model.MovieBuddyProfile, error) {
	return r.getOne(ctx, `SELECT `+buddyColumns+` FROM movie_buddies
		WHERE email = ? AND movie_name = ? AND movie_date = ? AND movie_time = ? LIMIT 1`,
		email, st.MovieName, st.MovieDate, st.MovieTime)
}

func (r *BuddyRepo) getOne(ctx context.Context, q string, args ...interface{}) (*model.MovieBuddyProfile, error) {
	p, err := scanBuddy(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// Create inserts a profile and populates its ID and timestamps.  A unique
// key violation (bookingId or email+showtime) yields ErrConflict.
func (r *BuddyRepo) Create(ctx context.Context, p *model.MovieBuddyProfile) error {
	seats, prefs, err := encodeLists(p)
	if err != nil {
		return err
	}
	const q = `INSERT INTO movie_buddies (user_id, booking_id, movie_name, movie_date, movie_time, name, age, gender, email, phone,
		booking_date, seat_numbers, movie_preferences, show_name, show_email, show_phone, pet_name)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, p.UserID, nullString(p.BookingID), p.MovieName, p.MovieDate, p.MovieTime,
		p.Name, p.Age, p.Gender, p.Email, p.Phone, p.BookingDate, seats, prefs,
		p.PrivacySettings.ShowName, p.PrivacySettings.ShowEmail, p.PrivacySettings.ShowPhone, p.PrivacySettings.PetName)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert buddy: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return r.db.QueryRowContext(ctx, `SELECT created_at, updated_at FROM movie_buddies WHERE id = ?`, p.ID).
		Scan(&p.CreatedAt, &p.UpdatedAt)
}

// Update overwrites every mutable column of the profile identified by p.ID.
func (r *BuddyRepo) Update(ctx context.Context, p *model.MovieBuddyProfile) error {
	seats, prefs, err := encodeLists(p)
	if err != nil {
		return err
	}
	const q = `UPDATE movie_buddies SET booking_id = ?, movie_name = ?, movie_date = ?, movie_time = ?, name = ?, age = ?,
		gender = ?, email = ?, phone = ?, booking_date = ?, seat_numbers = ?, movie_preferences = ?,
		show_name = ?, show_email = ?, show_phone = ?, pet_name = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, nullString(p.BookingID), p.MovieName, p.MovieDate, p.MovieTime, p.Name, p.Age,
		p.Gender, p.Email, p.Phone, p.BookingDate, seats, prefs,
		p.PrivacySettings.ShowName, p.PrivacySettings.ShowEmail, p.PrivacySettings.ShowPhone, p.PrivacySettings.PetName, p.ID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return fmt.Errorf("update buddy: %w", err)
	}
	// MySQL reports 0 affected rows when values are unchanged, so confirm
	// existence separately instead of trusting RowsAffected.
	if n, _ := res.RowsAffected(); n == 0 {
		var id uint64
		if err := r.db.QueryRowContext(ctx, `SELECT id FROM movie_buddies WHERE id = ?`, p.ID).Scan(&id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
	}
	return r.db.QueryRowContext(ctx, `SELECT created_at, updated_at FROM movie_buddies WHERE id = ?`, p.ID).
		Scan(&p.CreatedAt, &p.UpdatedAt)
}

// ListAll returns every profile, newest first.
func (r *BuddyRepo) ListAll(ctx context.Context) ([]model.MovieBuddyProfile, error) {
	return r.list(ctx, `SELECT `+buddyColumns+` FROM movie_buddies ORDER BY created_at DESC, id DESC`)
}

// ListByShowtime returns the profiles of one showtime, newest first.
func (r *BuddyRepo) ListByShowtime(ctx context.Context, st model.Showtime) ([]model.MovieBuddyProfile, error) {
	return r.list(ctx, `SELECT `+buddyColumns+` FROM movie_buddies
		WHERE movie_name = ? AND movie_date = ? AND movie_time = ? ORDER BY created_at DESC, id DESC`,
		st.MovieName, st.MovieDate, st.MovieTime)
}

// ListByUser returns the profiles owned by userID, newest first.
func (r *BuddyRepo) ListByUser(ctx context.Context, userID uint64) ([]model.MovieBuddyProfile, error) {
	return r.list(ctx, `SELECT `+buddyColumns+` FROM movie_buddies WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
}

// DeleteByShowtime removes every profile of a showtime and returns how many
// rows were deleted.
func (r *BuddyRepo) DeleteByShowtime(ctx context.Context, st model.Showtime) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM movie_buddies WHERE movie_name = ? AND movie_date = ? AND movie_time = ?`,
		st.MovieName, st.MovieDate, st.MovieTime)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *BuddyRepo) list(ctx context.Context, q string, args ...interface{}) ([]model.MovieBuddyProfile, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.MovieBuddyProfile, 0)
	for rows.Next() {
		p, err := scanBuddy(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func scanBuddy(s rowScanner) (*model.MovieBuddyProfile, error) {
	var p model.MovieBuddyProfile
	var bookingID sql.NullString
	var seats, prefs []byte
	if err := s.Scan(&p.ID, &p.UserID, &bookingID, &p.MovieName, &p.MovieDate, &p.MovieTime, &p.Name, &p.Age,
		&p.Gender, &p.Email, &p.Phone, &p.BookingDate, &seats, &prefs,
		&p.PrivacySettings.ShowName, &p.PrivacySettings.ShowEmail, &p.PrivacySettings.ShowPhone, &p.PrivacySettings.PetName,
		&p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.BookingID = bookingID.String
	p.SeatNumbers = []string{}
	p.MoviePreferences = []string{}
	if len(seats) > 0 {
		if err := json.Unmarshal(seats, &p.SeatNumbers); err != nil {
			return nil, fmt.Errorf("decode seat_numbers: %w", err)
		}
	}
	if len(prefs) > 0 {
		if err := json.Unmarshal(prefs, &p.MoviePreferences); err != nil {
			return nil, fmt.Errorf("decode movie_preferences: %w", err)
		}
	}
	return &p, nil
}

func encodeLists(p *model.MovieBuddyProfile) (string, string, error) {
	seats := p.SeatNumbers
	if seats == nil {
		seats = []string{}
	}
	prefs := p.MoviePreferences
	if prefs == nil {
		prefs = []string{}
	}
	sb, err := json.Marshal(seats)
	if err != nil {
		return "", "", err
	}
	pb, err := json.Marshal(prefs)
	if err != nil {
		return "", "", err
	}
	return string(sb), string(pb), nil
}

// nullString stores empty business keys as NULL so the unique index on
// booking_id ignores profiles created without one.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
