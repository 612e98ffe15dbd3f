// Package repository contains data access logic for the movie catalog.  A
// Movie is referenced by bookings through its title and, optionally, its ID.
package repository

import (
	"context"      // context for controlling query lifetime
	"database/sql" // sql provides DB abstraction
	"errors"       // errors for sentinel comparisons
	"fmt"
	"strings"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// MovieRepo manages persistence for catalog movies.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo constructs a MovieRepo with the given DB handle.
func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{db: db} }

const movieColumns = `id, title, genre, language, duration_min, release_date, COALESCE(description, ''), poster_url, created_at, updated_at`

// Create inserts a new movie and assigns the generated ID and timestamps.
// A duplicate title yields ErrConflict.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	const q = `INSERT INTO movies (title, genre, language, duration_min, release_date, description, poster_url) VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, m.Title, m.Genre, m.Language, m.DurationMin, m.ReleaseDate, m.Description, m.PosterURL)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert movie: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return r.db.QueryRowContext(ctx, `SELECT created_at, updated_at FROM movies WHERE id = ?`, m.ID).Scan(&m.CreatedAt, &m.UpdatedAt)
}

// GetByID retrieves a movie by its ID.  It returns ErrNotFound if there is
// no matching row.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	m, err := scanMovie(r.db.QueryRowContext(ctx, `SELECT `+movieColumns+` FROM movies WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

// List returns the catalog ordered by title.  A non-empty genre filters
// case-insensitively.
func (r *MovieRepo) List(ctx context.Context, genre string) ([]model.Movie, error) {
	q := `SELECT ` + movieColumns + ` FROM movies`
	var args []interface{}
	if g := strings.TrimSpace(genre); g != "" {
		q += ` WHERE LOWER(genre) = LOWER(?)`
		args = append(args, g)
	}
	q += ` ORDER BY title`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Movie, 0)
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// Update overwrites the mutable fields of a movie.  It returns ErrNotFound
// for an unknown ID and ErrConflict when the new title is taken.
func (r *MovieRepo) Update(ctx context.Context, m *model.Movie) error {
	const q = `UPDATE movies SET title = ?, genre = ?, language = ?, duration_min = ?, release_date = ?, description = ?, poster_url = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, m.Title, m.Genre, m.Language, m.DurationMin, m.ReleaseDate, m.Description, m.PosterURL, m.ID); err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return fmt.Errorf("update movie: %w", err)
	}
	err := r.db.QueryRowContext(ctx, `SELECT created_at, updated_at FROM movies WHERE id = ?`, m.ID).Scan(&m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// Delete removes a movie.  Existing bookings keep their denormalized title.
func (r *MovieRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM movies WHERE id = ?`, id)
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

func scanMovie(s rowScanner) (*model.Movie, error) {
	var m model.Movie
	if err := s.Scan(&m.ID, &m.Title, &m.Genre, &m.Language, &m.DurationMin, &m.ReleaseDate,
		&m.Description, &m.PosterURL, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}
