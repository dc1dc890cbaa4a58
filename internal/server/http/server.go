// Package httpserver exposes the journal HTTP API.
package httpserver

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/and161185/gratitude-journal/internal/service"
	"github.com/and161185/gratitude-journal/internal/token"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options carries the server dependencies. Log, Metrics and Ready are optional.
type Options struct {
	Auth        service.AuthService
	Entries     service.EntryService
	Loader      IdentityLoader
	Codec       *token.Codec
	Ready       Pinger
	Cookies     CookieConfig
	CORSOrigins []string
	Log         *zap.Logger
	Metrics     *Metrics
}

// Server wires services into HTTP handlers.
type Server struct {
	auth    service.AuthService
	entries service.EntryService
	gate    *Gate
	ready   Pinger
	cookies CookieConfig
	origins []string
	log     *zap.Logger
	metrics *Metrics
}

// New constructs a server with injected services.
func New(opts Options) *Server {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	m := opts.Metrics
	if m == nil {
		m = NewMetrics()
	}
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return &Server{
		auth:    opts.Auth,
		entries: opts.Entries,
		gate:    NewGate(opts.Codec, opts.Loader, log, m),
		ready:   opts.Ready,
		cookies: opts.Cookies,
		origins: origins,
		log:     log,
		metrics: m,
	}
}

// route is one entry of the route table. Public routes are mounted
// outside the gate.
type route struct {
	method  string
	pattern string
	public  bool
	handler http.HandlerFunc
}

func (s *Server) routes() []route {
	return []route{
		{http.MethodPost, "/auth/register", true, s.handleRegister},
		{http.MethodPost, "/auth/signin", true, s.handleSignIn},
		{http.MethodPost, "/auth/refresh", true, s.handleRefresh},
		{http.MethodGet, "/auth/validate", true, s.handleValidate},
		{http.MethodGet, "/healthz", true, s.handleHealth},
		{http.MethodGet, "/readyz", true, s.handleReady},
		{http.MethodGet, "/metrics", true, s.metrics.Handler().ServeHTTP},

		{http.MethodPost, "/auth/logout", false, s.handleLogout},
		{http.MethodGet, "/auth/me", false, s.handleMe},
		{http.MethodPut, "/auth/change-password", false, s.handleChangePassword},
		{http.MethodDelete, "/auth/delete-account", false, s.handleDeleteAccount},
		{http.MethodGet, "/users/me", false, s.handleMe},
		{http.MethodPut, "/users/me", false, s.handleUpdateProfile},
		{http.MethodGet, "/calendar", false, s.handleListEntries},
		{http.MethodPost, "/calendar", false, s.handleCreateEntry},
		{http.MethodGet, "/calendar/{id}", false, s.handleGetEntry},
		{http.MethodPut, "/calendar/{id}", false, s.handleUpdateEntry},
		{http.MethodDelete, "/calendar/{id}", false, s.handleDeleteEntry},
	}
}

// Handler assembles the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(Logging(s.log))
	r.Use(s.metrics.Middleware)
	r.Use(Recover(s.log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusNotFound, msgNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	rs := s.routes()
	r.Group(func(pub chi.Router) {
		for _, rt := range rs {
			if rt.public {
				pub.Method(rt.method, rt.pattern, rt.handler)
			}
		}
	})
	r.Group(func(priv chi.Router) {
		priv.Use(s.gate.Handler)
		for _, rt := range rs {
			if !rt.public {
				priv.Method(rt.method, rt.pattern, rt.handler)
			}
		}
	})
	return r
}
