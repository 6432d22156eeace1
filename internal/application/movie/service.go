package movie

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-watchlist-api/internal/domain"
	"github.com/go-watchlist-api/internal/pkg/id"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldTitle       = "title"
	fieldDescription = "description"
	fieldDirector    = "director"
	fieldYear        = "year"
	fieldGenre       = "genre"
	fieldRating      = "rating"
	fieldPosterKey   = "poster_key"
)

// Service covers the movie catalog plus each user's watchlist. Catalog reads
// are open; mutations are restricted at the transport layer.
type Service interface {
	Create(ctx context.Context, req domain.CreateMovieRequest) (*domain.Movie, error)
	List(ctx context.Context) ([]domain.Movie, error)
	Get(ctx context.Context, movieID string) (*domain.Movie, error)
	Update(ctx context.Context, movieID string, req domain.UpdateMovieRequest) (*domain.Movie, error)
	Delete(ctx context.Context, movieID string) error

	UploadPoster(ctx context.Context, movieID string, r io.Reader, contentType string) error
	DownloadPoster(ctx context.Context, movieID string) (io.ReadCloser, string, error)

	AddToWatchlist(ctx context.Context, userID, movieID string) (*domain.WatchlistEntry, error)
	Watchlist(ctx context.Context, userID string) ([]domain.WatchlistMovie, error)
	WatchlistAll(ctx context.Context) ([]domain.WatchlistMovie, error)
	UpdateWatchStatus(ctx context.Context, userID, movieID, status string) error
	RemoveFromWatchlist(ctx context.Context, userID, movieID string) error
}

type movieStore interface {
	Put(ctx context.Context, m *domain.Movie) error
	Get(ctx context.Context, movieID string) (*domain.Movie, error)
	List(ctx context.Context) ([]domain.Movie, error)
	Update(ctx context.Context, movieID string, updates map[string]interface{}) error
	Delete(ctx context.Context, movieID string) error
}

type watchlistStore interface {
	Add(ctx context.Context, e *domain.WatchlistEntry) error
	ListByUser(ctx context.Context, userID string) ([]domain.WatchlistEntry, error)
	ListAll(ctx context.Context) ([]domain.WatchlistEntry, error)
	UpdateStatus(ctx context.Context, userID, movieID, status string) error
	Remove(ctx context.Context, userID, movieID string) error
}

type posterStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) error
	Download(ctx context.Context, key string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, key string) error
}

type service struct {
	movieRepo     movieStore
	watchlistRepo watchlistStore
	posters       posterStore
}

type ServiceDeps struct {
	MovieRepo     movieStore
	WatchlistRepo watchlistStore
	Posters       posterStore
}

func NewService(deps ServiceDeps) Service {
	return &service{
		movieRepo:     deps.MovieRepo,
		watchlistRepo: deps.WatchlistRepo,
		posters:       deps.Posters,
	}
}

// checkYear bounds the release year: the validator tag covers the lower bound,
// but the upper one moves with the clock.
func checkYear(year int) error {
	if year > time.Now().Year()+10 {
		return fmt.Errorf("year too far in the future: %w", domain.ErrBadRequest)
	}
	return nil
}

func (s *service) Create(ctx context.Context, req domain.CreateMovieRequest) (*domain.Movie, error) {
	if req.Year != nil {
		if err := checkYear(*req.Year); err != nil {
			return nil, err
		}
	}
	now := time.Now().UTC()
	m := &domain.Movie{
		MovieID:   id.New(),
		Title:     req.Title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Description != nil {
		m.Description = *req.Description
	}
	if req.Director != nil {
		m.Director = *req.Director
	}
	if req.Year != nil {
		m.Year = *req.Year
	}
	if req.Genre != nil {
		m.Genre = *req.Genre
	}
	if req.Rating != nil {
		m.Rating = *req.Rating
	}
	if err := s.movieRepo.Put(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *service) List(ctx context.Context) ([]domain.Movie, error) {
	return s.movieRepo.List(ctx)
}

func (s *service) Get(ctx context.Context, movieID string) (*domain.Movie, error) {
	return s.movieRepo.Get(ctx, movieID)
}

func (s *service) Update(ctx context.Context, movieID string, req domain.UpdateMovieRequest) (*domain.Movie, error) {
	if req.Year != nil {
		if err := checkYear(*req.Year); err != nil {
			return nil, err
		}
	}
	updates := map[string]interface{}{}
	if req.Title != nil {
		updates[fieldTitle] = *req.Title
	}
	if req.Description != nil {
		updates[fieldDescription] = *req.Description
	}
	if req.Director != nil {
		updates[fieldDirector] = *req.Director
	}
	if req.Year != nil {
		updates[fieldYear] = *req.Year
	}
	if req.Genre != nil {
		updates[fieldGenre] = *req.Genre
	}
	if req.Rating != nil {
		updates[fieldRating] = *req.Rating
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("no fields to update: %w", domain.ErrBadRequest)
	}
	if _, err := s.movieRepo.Get(ctx, movieID); err != nil {
		return nil, err
	}
	if err := s.movieRepo.Update(ctx, movieID, updates); err != nil {
		return nil, err
	}
	return s.movieRepo.Get(ctx, movieID)
}

func (s *service) Delete(ctx context.Context, movieID string) error {
	m, err := s.movieRepo.Get(ctx, movieID)
	if err != nil {
		return err
	}
	if m.PosterKey != "" {
		// Orphaned posters are worse than a failed delete here, so remove the
		// object first.
		if err := s.posters.Delete(ctx, m.PosterKey); err != nil {
			return err
		}
	}
	return s.movieRepo.Delete(ctx, movieID)
}

func (s *service) UploadPoster(ctx context.Context, movieID string, r io.Reader, contentType string) error {
	if _, err := s.movieRepo.Get(ctx, movieID); err != nil {
		return err
	}
	key := "posters/" + movieID
	if err := s.posters.Upload(ctx, key, r, contentType); err != nil {
		return err
	}
	return s.movieRepo.Update(ctx, movieID, map[string]interface{}{fieldPosterKey: key})
}

func (s *service) DownloadPoster(ctx context.Context, movieID string) (io.ReadCloser, string, error) {
	m, err := s.movieRepo.Get(ctx, movieID)
	if err != nil {
		return nil, "", err
	}
	if m.PosterKey == "" {
		return nil, "", fmt.Errorf("movie has no poster: %w", domain.ErrNotFound)
	}
	return s.posters.Download(ctx, m.PosterKey)
}

func (s *service) AddToWatchlist(ctx context.Context, userID, movieID string) (*domain.WatchlistEntry, error) {
	if _, err := s.movieRepo.Get(ctx, movieID); err != nil {
		return nil, err
	}
	e := &domain.WatchlistEntry{
		UserID:  userID,
		MovieID: movieID,
		Status:  domain.StatusWantToWatch,
		AddedAt: time.Now().UTC(),
	}
	// The conditional put in the repo makes duplicate detection atomic. The
	// duplicate surfaces as Forbidden, not Conflict, matching the status the
	// API has always answered with.
	if err := s.watchlistRepo.Add(ctx, e); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("movie already in watchlist: %w", domain.ErrForbidden)
		}
		return nil, err
	}
	return e, nil
}

func (s *service) Watchlist(ctx context.Context, userID string) ([]domain.WatchlistMovie, error) {
	entries, err := s.watchlistRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.joinMovies(ctx, entries, false)
}

func (s *service) WatchlistAll(ctx context.Context) ([]domain.WatchlistMovie, error) {
	entries, err := s.watchlistRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.joinMovies(ctx, entries, true)
}

func (s *service) joinMovies(ctx context.Context, entries []domain.WatchlistEntry, withUser bool) ([]domain.WatchlistMovie, error) {
	out := make([]domain.WatchlistMovie, 0, len(entries))
	for _, e := range entries {
		m, err := s.movieRepo.Get(ctx, e.MovieID)
		if err != nil {
			// Movies deleted after being listed simply drop out of the view.
			continue
		}
		added := e.AddedAt
		wm := domain.WatchlistMovie{
			Movie:       *m,
			WatchStatus: e.Status,
			AddedAt:     &added,
		}
		if withUser {
			wm.UserID = e.UserID
		}
		out = append(out, wm)
	}
	return out, nil
}

func (s *service) UpdateWatchStatus(ctx context.Context, userID, movieID, status string) error {
	return s.watchlistRepo.UpdateStatus(ctx, userID, movieID, status)
}

func (s *service) RemoveFromWatchlist(ctx context.Context, userID, movieID string) error {
	return s.watchlistRepo.Remove(ctx, userID, movieID)
}
