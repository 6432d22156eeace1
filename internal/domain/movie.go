package domain

import "time"

// Watch status values for watchlist entries.
const (
	StatusWantToWatch = "WANT_TO_WATCH"
	StatusWatching    = "WATCHING"
	StatusWatched     = "WATCHED"
)

type Movie struct {
	MovieID     string    `json:"id" dynamodbav:"movie_id"`
	Title       string    `json:"title" dynamodbav:"title"`
	Description string    `json:"description,omitempty" dynamodbav:"description"`
	Director    string    `json:"director,omitempty" dynamodbav:"director"`
	Year        int       `json:"year,omitempty" dynamodbav:"year"`
	Genre       string    `json:"genre,omitempty" dynamodbav:"genre"`
	Rating      float64   `json:"rating,omitempty" dynamodbav:"rating"`
	PosterKey   string    `json:"-" dynamodbav:"poster_key"`
	CreatedAt   time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

// WatchlistEntry ties a movie to a user's watchlist.
// PK: user_id, SK: movie_id.
type WatchlistEntry struct {
	UserID  string    `json:"user_id" dynamodbav:"user_id"`
	MovieID string    `json:"movie_id" dynamodbav:"movie_id"`
	Status  string    `json:"status" dynamodbav:"status"`
	AddedAt time.Time `json:"added_at" dynamodbav:"added_at"`
}

// WatchlistMovie is a movie joined with its watchlist state. UserID is set
// only in the cross-user listing.
type WatchlistMovie struct {
	Movie
	UserID      string     `json:"user_id,omitempty"`
	WatchStatus string     `json:"watch_status,omitempty"`
	AddedAt     *time.Time `json:"added_to_watchlist_at,omitempty"`
}

type CreateMovieRequest struct {
	Title       string   `json:"title" validate:"required"`
	Description *string  `json:"description"`
	Director    *string  `json:"director"`
	Year        *int     `json:"year" validate:"omitempty,min=1900"`
	Genre       *string  `json:"genre"`
	Rating      *float64 `json:"rating" validate:"omitempty,min=0,max=10"`
}

type UpdateMovieRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Director    *string  `json:"director"`
	Year        *int     `json:"year" validate:"omitempty,min=1900"`
	Genre       *string  `json:"genre"`
	Rating      *float64 `json:"rating" validate:"omitempty,min=0,max=10"`
}

type UpdateWatchStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=WANT_TO_WATCH WATCHING WATCHED"`
}
