package http

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	checkreceipt "stockreceipter/frontend/receipts/checkReceipt"
	importreceipt "stockreceipter/frontend/receipts/importReceipt"
	sessioncontext "stockreceipter/frontend/shared/context"
	"stockreceipter/frontend/shared/respond"
	"stockreceipter/infrastructure/audit"
	"stockreceipter/infrastructure/metrics"
	"stockreceipter/infrastructure/rbac"
	"stockreceipter/infrastructure/sqlite"
)

// Identity headers set by the authenticating gateway.
const (
	HeaderUserID    = "X-User-ID"
	HeaderUserName  = "X-User-Name"
	HeaderUserRoles = "X-User-Roles"
)

var ShutdownTimeout = 2 * time.Second

// Server bundles dependencies and route wiring.
type Server struct {
	Addr   string
	ln     net.Listener
	server *http.Server
	router *chi.Mux

	DB      *sqlite.DB
	Rbac    *rbac.Rbac
	Audit   *audit.Service
	Imports *importreceipt.Service
	Checks  *checkreceipt.Service
	Metrics *metrics.Metrics
	Log     *slog.Logger
}

// Deps are the collaborators wired into the router. Metrics may be nil to
// disable /metrics.
type Deps struct {
	DB      *sqlite.DB
	Rbac    *rbac.Rbac
	Audit   *audit.Service
	Imports *importreceipt.Service
	Checks  *checkreceipt.Service
	Metrics *metrics.Metrics
	Log     *slog.Logger
}

// NewServer creates a new http server.
func NewServer(addr string, d Deps) *Server {
	s := &Server{
		Addr:    addr,
		router:  chi.NewRouter(),
		DB:      d.DB,
		Rbac:    d.Rbac,
		Audit:   d.Audit,
		Imports: d.Imports,
		Checks:  d.Checks,
		Metrics: d.Metrics,
		Log:     d.Log,
		server: &http.Server{
			MaxHeaderBytes:    1 << 20,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	if s.Log == nil {
		s.Log = slog.Default()
	}

	// Secure headers first.
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			next.ServeHTTP(w, r)
		})
	})

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.DB.Ping(ctx); err != nil {
			s.Log.Error("health check failed", slog.Any("err", err))
			respond.Fail(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if s.Metrics != nil {
		s.router.Handle("/metrics", s.Metrics.Handler())
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Use(s.AuthenticateMiddleware)
		s.RegisterImportRoutes(r)
		s.RegisterCheckRoutes(r)
		s.RegisterProductRoutes(r)
	})

	s.server.Handler = s.router
	return s
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// AuthenticateMiddleware reads the gateway identity headers, rejects
// anonymous calls and applies RBAC checks.
func (s *Server) AuthenticateMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(strings.TrimSpace(r.Header.Get(HeaderUserID)))
		if err != nil || id == uuid.Nil {
			respond.Fail(w, http.StatusUnauthorized, "missing or invalid "+HeaderUserID)
			return
		}
		name := strings.TrimSpace(r.Header.Get(HeaderUserName))
		if name == "" {
			respond.Fail(w, http.StatusUnauthorized, "missing "+HeaderUserName)
			return
		}
		actor := sessioncontext.Actor{
			ID:    id,
			Name:  name,
			Roles: rbac.ParseRoles(r.Header.Get(HeaderUserRoles)),
		}

		if !s.Rbac.Allowed(actor.Roles, r.URL.Path, r.Method) {
			s.Log.Warn("rbac denied",
				slog.String("user_id", id.String()),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path))
			respond.Fail(w, http.StatusForbidden, "forbidden")
			return
		}

		ctx := sessioncontext.NewContextWithActor(r.Context(), actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	var err error
	if s.ln, err = net.Listen("tcp", s.Addr); err != nil {
		return err
	}
	go func() {
		if err := s.server.Serve(s.ln); err != nil && err != http.ErrServerClosed {
			s.Log.Error("http server stopped", slog.Any("err", err))
		}
	}()
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
