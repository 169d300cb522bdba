// Package httpapi serves the admin HTTP surface and the Prometheus endpoint.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/kitlibrarian/internal/common"
	"github.com/dmitrijs2005/kitlibrarian/internal/logging"
	"github.com/dmitrijs2005/kitlibrarian/internal/server/auth"
	"github.com/dmitrijs2005/kitlibrarian/internal/server/reminders"
	"github.com/dmitrijs2005/kitlibrarian/internal/server/retention"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 10 * time.Second

type ReminderService interface {
	Trigger(ctx context.Context) (reminders.Result, error)
	Preview(ctx context.Context, borrowerID string) (reminders.Email, error)
	Notifications(ctx context.Context, borrowerID string) ([]reminders.Notification, error)
}

type RetentionService interface {
	Run(ctx context.Context) (retention.Result, error)
}

type Server struct {
	address   string
	reminders ReminderService
	retention RetentionService
	gatherer  prometheus.Gatherer
	jwtSecret []byte
	logger    logging.Logger
	router    *mux.Router
}

func NewServer(address string, l logging.Logger, rs ReminderService, ret RetentionService, g prometheus.Gatherer, secretKey string) *Server {
	s := &Server{
		address:   address,
		reminders: rs,
		retention: ret,
		gatherer:  g,
		jwtSecret: []byte(secretKey),
		logger:    l.With("module", "http_server"),
		router:    mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	admin := s.router.PathPrefix("/admin").Subrouter()
	admin.Use(s.requireAdmin)
	admin.HandleFunc("/reminders/run", s.handleRunCycle).Methods(http.MethodPost)
	admin.HandleFunc("/reminders/preview/{borrowerID}", s.handlePreview).Methods(http.MethodGet)
	admin.HandleFunc("/borrowers/{borrowerID}/notifications", s.handleNotifications).Methods(http.MethodGet)
	admin.HandleFunc("/retention/run", s.handleRunRetention).Methods(http.MethodPost)
}

// ServeHTTP makes the Server usable as an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run listens on the configured address until ctx is done, then shuts down.
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{Handler: s.router, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", lis.Addr().String())
	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// requireAdmin accepts "Authorization: Bearer <token>" or the access_token header.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(common.AccessTokenHeaderName)
		if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
			token = strings.TrimPrefix(h, "Bearer ")
		}
		if token == "" {
			s.sendError(w, http.StatusUnauthorized, "missing token")
			return
		}

		subject, err := auth.GetSubjectFromToken(token, s.jwtSecret)
		if err != nil {
			s.sendError(w, http.StatusUnauthorized, err.Error())
			return
		}
		if subject != auth.AdminSubject {
			s.sendError(w, http.StatusForbidden, "admin token required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
