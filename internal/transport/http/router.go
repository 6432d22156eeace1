package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-watchlist-api/internal/application/auth"
	"github.com/go-watchlist-api/internal/application/movie"
	"github.com/go-watchlist-api/internal/application/user"
	"github.com/go-watchlist-api/internal/config"
	"github.com/go-watchlist-api/internal/domain"
	"github.com/go-watchlist-api/internal/transport/http/handler"
	appmiddleware "github.com/go-watchlist-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// guard binds a route policy to the shared token provider.
	guard := func(p appmiddleware.Policy) func(http.Handler) http.Handler {
		return appmiddleware.Guard(deps.JWTProvider, p)
	}
	public := guard(appmiddleware.Policy{Public: true})
	verified := guard(appmiddleware.Policy{RequireVerifiedEmail: true})
	admin := guard(appmiddleware.Policy{Roles: []string{domain.RoleAdmin}, RequireVerifiedEmail: true})

	// 5 requests/second, burst of 10, applied to the credential endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	authSvc := auth.NewService(auth.ServiceDeps{
		UserRepo:         deps.UserRepo,
		VerificationRepo: deps.VerificationRepo,
		TwoFactorRepo:    deps.TwoFactorRepo,
		Mailer:           deps.Mailer,
		Tokens:           deps.JWTProvider,
		AppURL:           cfg.AppURL,
	})
	userSvc := user.NewService(user.ServiceDeps{UserRepo: deps.UserRepo})
	movieSvc := movie.NewService(movie.ServiceDeps{
		MovieRepo:     deps.MovieRepo,
		WatchlistRepo: deps.WatchlistRepo,
		Posters:       deps.S3Store,
	})

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc)
	userH := handler.NewUserHandler(userSvc)
	movieH := handler.NewMovieHandler(movieSvc)

	r.Route("/v1", func(r chi.Router) {
		r.With(public).Get("/health-check", healthH.Ping)

		r.Route("/auth", func(r chi.Router) {
			r.With(public, sensitiveRL.Limit).Post("/register", authH.Register)
			r.With(public, sensitiveRL.Limit).Post("/login", authH.Login)
			// Public on purpose: the temp token is checked inside the flow,
			// never by the guard.
			r.With(public, sensitiveRL.Limit).Post("/verify-2fa", authH.VerifyTwoFactor)
			r.With(public).Get("/verify-email", authH.VerifyEmail)
		})

		r.Route("/users", func(r chi.Router) {
			r.With(verified).Get("/profile", userH.Profile)
			r.With(admin).Get("/", userH.List)
			r.With(admin).Get("/{id}", userH.Get)
			r.With(admin).Put("/{id}/role", userH.UpdateRole)
			r.With(admin).Delete("/{id}", userH.Delete)
		})

		r.Route("/movies", func(r chi.Router) {
			r.With(public).Get("/", movieH.List)

			// Static segments win over {id}, so these must not shadow each
			// other; chi routes "watchlist" before the wildcard.
			r.With(verified).Get("/watchlist/my", movieH.Watchlist)
			r.With(verified).Get("/watchlist/all", movieH.WatchlistAll)

			r.With(public).Get("/{id}", movieH.Get)
			r.With(public).Get("/{id}/poster", movieH.DownloadPoster)

			r.With(admin).Post("/", movieH.Create)
			r.With(admin).Put("/{id}", movieH.Update)
			r.With(admin).Delete("/{id}", movieH.Delete)
			r.With(admin).Post("/{id}/poster", movieH.UploadPoster)

			r.With(verified).Post("/{id}/watchlist", movieH.AddToWatchlist)
			r.With(verified).Put("/{id}/watch-status", movieH.UpdateWatchStatus)
			r.With(verified).Delete("/{id}/watchlist", movieH.RemoveFromWatchlist)
		})
	})

	return r
}
