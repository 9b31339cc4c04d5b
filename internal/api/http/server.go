package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"restaurant-reviews/internal/eventpublisher"
	"restaurant-reviews/internal/identity"
	"restaurant-reviews/internal/ratelimiter"
	"restaurant-reviews/internal/service/reviews"
	"restaurant-reviews/internal/service/search"
	"restaurant-reviews/internal/service/trending"
	"restaurant-reviews/internal/service/users"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = time.Second * 10

type Options struct {
	Addr            string
	AllowedOrigins  []string
	RequestTimeout  time.Duration
	StaticDir       string
	MaxUploadBytes  int64
	FirebaseEnabled bool
}

// Dependencies are the services behind the routes. LiveFeed and Limiter may be nil.
type Dependencies struct {
	Reviews  reviews.IService
	Trending trending.IService
	Search   search.IService
	Users    users.IService
	Identity identity.IProvider
	LiveFeed eventpublisher.Publisher
	Limiter  ratelimiter.Limiter
}

type Server struct {
	opts Options
	deps Dependencies
}

func New(opts Options, deps Dependencies) *Server {
	return &Server{opts: opts, deps: deps}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(capturePeer)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(log.Logger))
	r.Use(hlog.RemoteAddrHandler("ip"))
	r.Use(hlog.AccessHandler(accessLog))
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Type", "X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           600,
	}))

	if s.deps.Limiter != nil {
		r.Use(RateLimiterMiddleware(s.deps.Limiter))
	}

	r.Route("/api", func(r chi.Router) {
		// long lived, so it stays outside the request timeout
		r.Get("/reviews/live", s.liveReviewsHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(s.opts.RequestTimeout))

			r.Get("/health", s.healthCheckHandler)
			r.Get("/test", s.testHandler)

			r.Route("/reviews", func(r chi.Router) {
				r.Get("/", s.listReviewsHandler)
				r.Post("/", s.createReviewHandler)
				r.Get("/{reviewID}", s.getReviewHandler)
			})

			r.Get("/trending", s.trendingHandler)
			r.Get("/search", s.searchHandler)

			r.Route("/users/{userID}", func(r chi.Router) {
				r.Get("/", s.getUserHandler)
				r.With(AuthTokenMiddleware(s.deps.Identity)).Post("/", s.updateUserHandler)
				r.Post("/favorites", s.addFavoriteHandler)
				r.With(AuthTokenMiddleware(s.deps.Identity)).Delete("/favorites/{reviewID}", s.removeFavoriteHandler)
			})
		})
	})

	if s.opts.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.opts.StaticDir)))
	}

	return r
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: time.Second * 10,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.opts.Addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Info().Msg("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
