package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/md-rashed-zaman/patientportal/libs/httpx"
	"github.com/md-rashed-zaman/patientportal/libs/runtime"
	"github.com/md-rashed-zaman/patientportal/services/portal-service/internal/backend"
	"github.com/md-rashed-zaman/patientportal/services/portal-service/internal/directory"
	"github.com/md-rashed-zaman/patientportal/services/portal-service/internal/metrics"
	"github.com/md-rashed-zaman/patientportal/services/portal-service/internal/notify"
	"github.com/md-rashed-zaman/patientportal/services/portal-service/internal/page"
	"github.com/md-rashed-zaman/patientportal/services/portal-service/internal/session"
)

const sessionCookie = "portal_session"

// Backend is everything the portal asks of the booking API.
type Backend interface {
	page.Backend
	Login(ctx context.Context, email, password string) (token, userID string, err error)
	StaffLogin(ctx context.Context, role backend.StaffRole, email, password string) (string, error)
}

type Config struct {
	Backend   Backend
	Sessions  session.Store
	Directory *directory.Directory
	// PaymentLimiter throttles POST /payment per session. Nil disables it.
	PaymentLimiter httpx.Limiter
	Logger         *slog.Logger
	Metrics        *metrics.PortalMetrics
	MetricsHandler http.Handler
	ReadyChecks    []runtime.ReadyCheck
	SessionTTL     time.Duration
	CookieSecure   bool
	// JWTSecret verifies patient tokens when the backend login reply has no
	// user id. Empty means decode without verifying.
	JWTSecret string
	Now       func() time.Time
}

type Server struct {
	cfg   Config
	pages *registry
	views *views
}

func New(cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	v, err := loadViews()
	if err != nil {
		return nil, err
	}
	s := &Server{cfg: cfg, views: v}
	s.pages = newRegistry(s.newPage, cfg.SessionTTL, cfg.Now)
	return s, nil
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", runtime.Healthz)
	r.Get("/readyz", runtime.Readyz(s.cfg.ReadyChecks...))
	if s.cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", s.cfg.MetricsHandler)
	}

	r.Get("/", s.handleIndex)
	r.Get("/login", s.handleLoginPage)
	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)

	r.With(s.requireStaff).Get("/staff", s.handleStaff)

	r.Group(func(r chi.Router) {
		r.Use(s.requireSession)
		r.Get("/my-appointments", s.handleAppointments)
		r.Post("/my-appointments/{id}/cancel", s.handleCancel)
		r.Post("/my-appointments/{id}/pay", s.handleOpenPayment)
		r.Post("/payment/close", s.handleClosePayment)
		if s.cfg.PaymentLimiter != nil {
			r.With(httpx.WithRateLimit(s.cfg.PaymentLimiter, paymentKey, s.cfg.Logger, true)).
				Post("/payment", s.handleSubmitPayment)
		} else {
			r.Post("/payment", s.handleSubmitPayment)
		}
	})
	return r
}

func (s *Server) newPage(sess session.Session) *pageEntry {
	flash := notify.NewFlash()
	cfg := page.Config{
		Backend:  s.cfg.Backend,
		Notifier: notify.Logging{Next: flash, Logger: s.cfg.Logger.With("session_id", sess.ID)},
		Now:      s.cfg.Now,
		Logger:   s.cfg.Logger,
		Metrics:  s.cfg.Metrics,
	}
	if s.cfg.Directory != nil {
		cfg.RefreshDirectory = s.cfg.Directory.Refresh
	}
	return &pageEntry{page: page.New(sess, cfg), flash: flash}
}

func paymentKey(r *http.Request) string {
	if sess := sessionFrom(r.Context()); sess != nil {
		return "payment:" + sess.ID
	}
	return "payment:" + httpx.ClientKey(r)
}
