package http

import (
	"github.com/go-watchlist-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-watchlist-api/internal/infrastructure/jwt"
	s3infra "github.com/go-watchlist-api/internal/infrastructure/s3"
	"github.com/go-watchlist-api/internal/infrastructure/smtp"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo         *dynamo.UserRepo
	VerificationRepo *dynamo.VerificationRepo
	TwoFactorRepo    *dynamo.TwoFactorRepo
	MovieRepo        *dynamo.MovieRepo
	WatchlistRepo    *dynamo.WatchlistRepo
	S3Store          *s3infra.Store
	Mailer           smtp.Mailer
	JWTProvider      *jwtinfra.Provider
}
