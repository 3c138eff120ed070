package http

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	sessioncontext "baletrack/frontend/shared/context"
	"baletrack/infrastructure/audit"
	"baletrack/infrastructure/collections"
	"baletrack/infrastructure/metrics"
	"baletrack/infrastructure/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed assets/*
var assets embed.FS

var ShutdownTimeout = 2 * time.Second

// Options carries the settings the server takes from configuration.
type Options struct {
	Addr           string
	SecureCookies  bool
	RequestTimeout time.Duration
}

// Server bundles dependencies and route wiring.
type Server struct {
	Addr   string
	ln     net.Listener
	server *http.Server
	router *chi.Mux

	Data          *collections.Client
	Sessions      *session.Manager
	Audit         *audit.Service
	SecureCookies bool
}

// NewServer creates a new http server.
func NewServer(opts Options, data *collections.Client, sessions *session.Manager, auditSvc *audit.Service) *Server {
	s := &Server{
		Addr:          opts.Addr,
		router:        chi.NewRouter(),
		Data:          data,
		Sessions:      sessions,
		Audit:         auditSvc,
		SecureCookies: opts.SecureCookies,
		server: &http.Server{
			MaxHeaderBytes:    1 << 20,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	// Secure headers first.
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("X-XSS-Protection", "1; mode=block")
			next.ServeHTTP(w, r)
		})
	})

	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Compress(5))
	if opts.RequestTimeout > 0 {
		s.router.Use(middleware.Timeout(opts.RequestTimeout))
	}
	s.router.Use(s.CSRFMiddleware)

	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.authorize(r); !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	})

	s.router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	s.router.Handle("/metrics", metrics.Handler())

	// Serve assets from embedded FS.
	var assetsFS fs.FS = assets
	if sub, err := fs.Sub(assets, "assets"); err == nil {
		assetsFS = sub
	} else {
		slog.Error("assets subfs init failed; serving fallback fs", slog.Any("err", err))
	}
	s.router.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.FS(assetsFS))))

	s.RegisterLoginRoutes()

	s.router.Group(func(r chi.Router) {
		r.Use(s.AuthenticateMiddleware)
		s.RegisterFrontendRoutes(r)
	})

	s.server.Handler = s.router
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// authorize matches the request's binding cookie against the live session.
func (s *Server) authorize(r *http.Request) (string, bool) {
	c, err := r.Cookie(session.CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	if _, ok := s.Sessions.Authorize(c.Value); !ok {
		return c.Value, false
	}
	return c.Value, true
}

// AuthenticateMiddleware admits only the browser bound to the live session.
func (s *Server) AuthenticateMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		binding, ok := s.authorize(r)
		if !ok {
			// Finish an expiry the watcher has not seen yet so the login
			// screen can say why the operator was signed out.
			s.Sessions.CheckExpiry(r.Context())
			if binding != "" {
				http.SetCookie(w, session.ClearCookie(s.SecureCookies))
				slog.Warn("rejected session cookie", slog.String("method", r.Method), slog.String("path", r.URL.Path))
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		current, ok := s.Sessions.Current()
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		ctx := sessioncontext.NewContextWithSession(r.Context(), current)
		ctx = sessioncontext.NewContextWithCountdown(ctx, s.Sessions.FormatRemaining(), s.Sessions.Remaining())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	var err error
	if s.ln, err = net.Listen("tcp", s.Addr); err != nil {
		return err
	}
	go s.server.Serve(s.ln)
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	if s.ln == nil {
		return fmt.Errorf("HTTP server has not been started or is already stopped")
	}
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %v", err)
	}
	s.ln = nil
	return nil
}
