package page

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	otelx "github.com/md-rashed-zaman/patientportal/libs/otel"
	"github.com/md-rashed-zaman/patientportal/services/portal-service/internal/appointments"
	"github.com/md-rashed-zaman/patientportal/services/portal-service/internal/backend"
	"github.com/md-rashed-zaman/patientportal/services/portal-service/internal/metrics"
	"github.com/md-rashed-zaman/patientportal/services/portal-service/internal/notify"
	"github.com/md-rashed-zaman/patientportal/services/portal-service/internal/payment"
	"github.com/md-rashed-zaman/patientportal/services/portal-service/internal/session"
	"go.opentelemetry.io/otel/attribute"
)

const (
	MsgFetchFailed   = "Failed to fetch appointments."
	MsgCancelFailed  = "Failed to cancel appointment."
	MsgCancelled     = "Appointment cancelled."
	MsgPaymentOK     = "Payment successful!"
	MsgPaymentFailed = "Payment failed."
)

var (
	ErrUnknownAppointment = errors.New("appointment not in list")
	ErrPaymentClosed      = errors.New("payment modal is closed")
	ErrMissingUser        = errors.New("session has no user id")
	ErrMissingAppointment = errors.New("appointment id is empty")
)

// Backend is the part of the booking API the page calls.
type Backend interface {
	ListAppointments(ctx context.Context, token string) ([]appointments.Appointment, error)
	CancelAppointment(ctx context.Context, token, appointmentID, userID string) (string, error)
	CompletePayment(ctx context.Context, token, appointmentID string, form payment.Form) (string, error)
}

type Config struct {
	Backend  Backend
	Notifier notify.Notifier
	// RefreshDirectory runs after a successful cancellation. Its error is
	// not shown to the patient.
	RefreshDirectory func(context.Context) error
	Now              func() time.Time
	Logger           *slog.Logger
	Metrics          *metrics.PortalMetrics
}

type View int

const (
	ViewLoading View = iota
	ViewEmpty
	ViewList
)

// Modal is the payment dialog. The zero value is closed.
type Modal struct {
	Open        bool
	Appointment appointments.Appointment
	Form        payment.Form
}

// Page is the "My Appointments" screen for one session. The mutex guards
// state only and is never held across a backend call, so a cancel and a
// payment may be in flight together; each ends with its own re-fetch.
type Page struct {
	sess    session.Session
	backend Backend
	notify  notify.Notifier
	refresh func(context.Context) error
	now     func() time.Time
	logger  *slog.Logger
	metrics *metrics.PortalMetrics

	mu       sync.Mutex
	inflight int
	list     []appointments.Appointment
	modal    Modal
}

func New(sess session.Session, cfg Config) *Page {
	p := &Page{
		sess:    sess,
		backend: cfg.Backend,
		notify:  cfg.Notifier,
		refresh: cfg.RefreshDirectory,
		now:     cfg.Now,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
	}
	if p.notify == nil {
		p.notify = notify.NewFlash()
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Mount is called whenever the page is shown.
func (p *Page) Mount(ctx context.Context) error {
	return p.Refresh(ctx)
}

// Refresh discards local state and reloads it from the backend. Every
// mutation ends here.
func (p *Page) Refresh(ctx context.Context) error {
	return p.Load(ctx)
}

// Load fetches the list. It does nothing without a token and keeps the
// previous list when the fetch fails.
func (p *Page) Load(ctx context.Context) (err error) {
	if p.sess.Token == "" {
		return nil
	}
	p.mu.Lock()
	p.inflight++
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.inflight--
		p.mu.Unlock()
	}()

	ctx, span := otelx.StartSpan(ctx, "appointments.load")
	defer func() { otelx.End(span, err) }()

	start := time.Now()
	list, err := p.backend.ListAppointments(ctx, p.sess.Token)
	p.metrics.ObserveLatency("load", time.Since(start))
	if err != nil {
		p.metrics.Observe("load", outcome(err))
		p.logger.Warn("load appointments failed", "user_id", p.sess.UserID, "err", err)
		p.notify.Error(messageOr(err, MsgFetchFailed))
		return err
	}
	p.metrics.Observe("load", metrics.OutcomeSuccess)

	p.mu.Lock()
	p.list = appointments.Reversed(list)
	p.mu.Unlock()
	return nil
}

func (p *Page) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inflight > 0
}

// Appointments returns the list newest first.
func (p *Page) Appointments() []appointments.Appointment {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]appointments.Appointment, len(p.list))
	copy(out, p.list)
	return out
}

func (p *Page) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case p.inflight > 0:
		return ViewLoading
	case len(p.list) == 0:
		return ViewEmpty
	default:
		return ViewList
	}
}

// Cancel asks the backend to cancel appointmentID, then re-fetches the list
// and the doctor directory.
func (p *Page) Cancel(ctx context.Context, appointmentID string) (err error) {
	switch {
	case p.sess.UserID == "":
		err = ErrMissingUser
	case appointmentID == "":
		err = ErrMissingAppointment
	}
	if err != nil {
		p.metrics.Observe("cancel", metrics.OutcomeInvalid)
		p.notify.Error(MsgCancelFailed)
		return err
	}

	ctx, span := otelx.StartSpan(ctx, "appointments.cancel", attribute.String("appointment.id", appointmentID))
	defer func() { otelx.End(span, err) }()

	start := time.Now()
	msg, err := p.backend.CancelAppointment(ctx, p.sess.Token, appointmentID, p.sess.UserID)
	p.metrics.ObserveLatency("cancel", time.Since(start))
	if err != nil {
		p.metrics.Observe("cancel", outcome(err))
		p.logger.Warn("cancel appointment failed", "appointment_id", appointmentID, "err", err)
		p.notify.Error(messageOr(err, MsgCancelFailed))
		return err
	}
	p.metrics.Observe("cancel", metrics.OutcomeSuccess)
	p.logger.Info("appointment cancelled", "appointment_id", appointmentID)
	if msg == "" {
		msg = MsgCancelled
	}
	p.notify.Success(msg)

	_ = p.Refresh(ctx)
	if p.refresh != nil {
		if err := p.refresh(ctx); err != nil {
			p.logger.Warn("doctor directory refresh after cancel failed", "err", err)
		}
	}
	return nil
}

// OpenPayment opens the modal for an appointment in the current list with
// an empty form.
func (p *Page) OpenPayment(appointmentID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, a := range p.list {
		if a.ID == appointmentID {
			p.modal = Modal{Open: true, Appointment: a}
			return nil
		}
	}
	return ErrUnknownAppointment
}

func (p *Page) ClosePayment() {
	p.mu.Lock()
	p.modal = Modal{}
	p.mu.Unlock()
}

func (p *Page) Modal() Modal {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.modal
}

// SubmitPayment validates form and sends it for the open appointment. The
// modal keeps the entered values unless the payment succeeds.
func (p *Page) SubmitPayment(ctx context.Context, form payment.Form) (err error) {
	p.mu.Lock()
	if !p.modal.Open {
		p.mu.Unlock()
		return ErrPaymentClosed
	}
	p.modal.Form = form
	appointmentID := p.modal.Appointment.ID
	p.mu.Unlock()

	if err := payment.Validate(form, p.now()); err != nil {
		var ve *payment.ValidationError
		if errors.As(err, &ve) {
			p.notify.Error(ve.Message)
		}
		p.metrics.Observe("payment", metrics.OutcomeInvalid)
		return err
	}

	ctx, span := otelx.StartSpan(ctx, "appointments.payment", attribute.String("appointment.id", appointmentID))
	defer func() { otelx.End(span, err) }()

	start := time.Now()
	_, err = p.backend.CompletePayment(ctx, p.sess.Token, appointmentID, form)
	p.metrics.ObserveLatency("payment", time.Since(start))
	if err != nil {
		p.metrics.Observe("payment", outcome(err))
		p.logger.Warn("payment failed", "appointment_id", appointmentID, "err", err)
		p.notify.Error(messageOr(err, MsgPaymentFailed))
		return err
	}
	p.metrics.Observe("payment", metrics.OutcomeSuccess)
	p.logger.Info("payment completed", "appointment_id", appointmentID)
	p.notify.Success(MsgPaymentOK)

	p.mu.Lock()
	if p.modal.Open && p.modal.Appointment.ID == appointmentID {
		p.modal = Modal{}
	}
	p.mu.Unlock()

	_ = p.Refresh(ctx)
	return nil
}

func messageOr(err error, fallback string) string {
	if msg := backend.ServerMessage(err); msg != "" {
		return msg
	}
	return fallback
}

func outcome(err error) string {
	if backend.IsRejected(err) {
		return metrics.OutcomeRejected
	}
	return metrics.OutcomeFailed
}
