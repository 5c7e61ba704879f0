// Package rest exposes the address book as a JSON HTTP API routed by chi.
package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/addressbook/internal/logging"
	"github.com/dmitrijs2005/addressbook/internal/server/config"
	"github.com/dmitrijs2005/addressbook/internal/server/ratelimit"
	"github.com/dmitrijs2005/addressbook/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
)

const shutdownTimeout = 10 * time.Second

// Pinger reports database readiness; *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HTTPServer struct {
	address     string
	logger      logging.Logger
	auth        *services.AuthService
	users       *services.UserService
	contacts    *services.ContactService
	limiter     ratelimit.Limiter
	db          Pinger
	jwtSecret   []byte
	corsOrigins []string
	limits      routeLimits
	validate    *validator.Validate
}

// routeLimits is the number of requests per window a client may make on a
// single route. Auth mutations get the stricter budget.
type routeLimits struct {
	general int
	auth    int
	window  time.Duration
}

func NewHTTPServer(cfg *config.Config, l logging.Logger, db Pinger,
	as *services.AuthService, us *services.UserService, cs *services.ContactService,
	limiter ratelimit.Limiter) *HTTPServer {
	return &HTTPServer{
		address:     cfg.EndpointAddrHTTP,
		logger:      l.With("module", "http_server"),
		auth:        as,
		users:       us,
		contacts:    cs,
		limiter:     limiter,
		db:          db,
		jwtSecret:   []byte(cfg.SecretKey),
		corsOrigins: cfg.CORSAllowedOrigins,
		limits: routeLimits{
			general: cfg.RateLimitRequests,
			auth:    cfg.AuthRateLimitRequests,
			window:  cfg.RateLimitWindow,
		},
		validate: newValidator(),
	}
}

// Router builds the route table.
func (s *HTTPServer) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Retry-After", middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not_found", Detail: "route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method_not_allowed", Detail: r.Method + " is not allowed here"})
	})

	r.Get("/health", s.health)

	r.Route("/auth", func(r chi.Router) {
		r.With(s.rateLimit("auth.register", s.limits.auth)).Post("/register", s.register)
		r.With(s.rateLimit("auth.login", s.limits.auth)).Post("/login", s.login)
		r.With(s.rateLimit("auth.refresh", s.limits.general)).Post("/refresh", s.refresh)
		r.With(s.rateLimit("auth.logout", s.limits.general)).Post("/logout", s.logout)
		r.With(s.rateLimit("auth.verify", s.limits.general)).Get("/verify/{token}", s.verifyEmail)
		r.With(s.rateLimit("auth.request_email", s.limits.auth)).Post("/request-email", s.requestEmail)
		r.With(s.rateLimit("auth.password_reset_request", s.limits.auth)).Post("/password-reset-request", s.requestPasswordReset)
		r.With(s.rateLimit("auth.password_reset", s.limits.auth)).Post("/password-reset", s.resetPassword)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		r.Route("/users", func(r chi.Router) {
			r.With(s.rateLimit("users.me", s.limits.general)).Get("/me", s.me)
			r.With(s.rateLimit("users.avatar", s.limits.auth)).Patch("/avatar", s.uploadAvatar)
		})

		r.Route("/contacts", func(r chi.Router) {
			r.With(s.rateLimit("contacts.list", s.limits.general)).Get("/", s.listContacts)
			r.With(s.rateLimit("contacts.create", s.limits.general)).Post("/", s.createContact)
			r.With(s.rateLimit("contacts.birthdays", s.limits.general)).Get("/birthdays", s.upcomingBirthdays)
			r.With(s.rateLimit("contacts.get", s.limits.general)).Get("/{id}", s.getContact)
			r.With(s.rateLimit("contacts.update", s.limits.general)).Put("/{id}", s.updateContact)
			r.With(s.rateLimit("contacts.delete", s.limits.general)).Delete("/{id}", s.deleteContact)
		})
	})

	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
