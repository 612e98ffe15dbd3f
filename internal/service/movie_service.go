package service

import (
	"context"
	"strings"
	"time"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// MovieInput is the writable part of a catalog entry.
type MovieInput struct {
	Title       string `json:"title"`
	Genre       string `json:"genre"`
	Language    string `json:"language"`
	DurationMin uint32 `json:"durationMin"`
	ReleaseDate string `json:"releaseDate"`
	Description string `json:"description"`
	PosterURL   string `json:"posterUrl"`
}

// MovieService manages the movie catalog.
type MovieService struct {
	movies MovieStore
}

func NewMovieService(movies MovieStore) *MovieService { return &MovieService{movies: movies} }

func (s *MovieService) List(ctx context.Context, genre string) ([]model.Movie, error) {
	return s.movies.List(ctx, genre)
}

func (s *MovieService) Get(ctx context.Context, id uint64) (*model.Movie, error) {
	return s.movies.GetByID(ctx, id)
}

// Create adds a movie.  A duplicate title yields ErrConflict.
func (s *MovieService) Create(ctx context.Context, in MovieInput) (*model.Movie, error) {
	m, err := buildMovie(in)
	if err != nil {
		return nil, err
	}
	if err := s.movies.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Update replaces the catalog entry id.
func (s *MovieService) Update(ctx context.Context, id uint64, in MovieInput) (*model.Movie, error) {
	m, err := buildMovie(in)
	if err != nil {
		return nil, err
	}
	m.ID = id
	if err := s.movies.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *MovieService) Delete(ctx context.Context, id uint64) error {
	return s.movies.Delete(ctx, id)
}

func buildMovie(in MovieInput) (*model.Movie, error) {
	m := &model.Movie{
		Title:       strings.TrimSpace(in.Title),
		Genre:       strings.TrimSpace(in.Genre),
		Language:    strings.TrimSpace(in.Language),
		DurationMin: in.DurationMin,
		ReleaseDate: strings.TrimSpace(in.ReleaseDate),
		Description: strings.TrimSpace(in.Description),
		PosterURL:   strings.TrimSpace(in.PosterURL),
	}
	if m.Title == "" {
		return nil, invalid("title is required")
	}
	if m.ReleaseDate != "" {
		if _, err := time.Parse(dateLayout, m.ReleaseDate); err != nil {
			return nil, invalid("releaseDate must be a date in YYYY-MM-DD format")
		}
	}
	return m, nil
}
