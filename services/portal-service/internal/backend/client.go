package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/md-rashed-zaman/patientportal/libs/httpx"
	"github.com/md-rashed-zaman/patientportal/services/portal-service/internal/appointments"
	"github.com/md-rashed-zaman/patientportal/services/portal-service/internal/payment"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// TokenHeader is the header the booking backend reads the patient token from.
const TokenHeader = "token"

const maxResponseBytes = 4 << 20

// Client talks to the booking backend's user and doctor APIs.
type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default traced client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(httpx.RequestIDTransport{Base: http.DefaultTransport}),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the shape every backend response shares.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (e envelope) outcome() envelope { return e }

type result interface {
	outcome() envelope
}

type appointmentsResponse struct {
	envelope
	Appointments []appointments.Appointment `json:"appointments"`
}

type doctorsResponse struct {
	envelope
	Doctors []appointments.Doctor `json:"doctors"`
}

type loginResponse struct {
	envelope
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

type cancelRequest struct {
	AppointmentID string `json:"appointmentId"`
	UserID        string `json:"userId"`
}

type paymentRequest struct {
	AppointmentID string       `json:"appointmentId"`
	PaymentData   payment.Form `json:"paymentData"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ListAppointments returns the caller's appointments in server order.
func (c *Client) ListAppointments(ctx context.Context, token string) ([]appointments.Appointment, error) {
	var resp appointmentsResponse
	if err := c.do(ctx, "list appointments", http.MethodGet, "/api/user/appointments", token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Appointments, nil
}

// CancelAppointment returns the backend's confirmation message.
func (c *Client) CancelAppointment(ctx context.Context, token, appointmentID, userID string) (string, error) {
	var resp envelope
	body := cancelRequest{AppointmentID: appointmentID, UserID: userID}
	if err := c.do(ctx, "cancel appointment", http.MethodPost, "/api/user/cancel-appointment", token, body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// CompletePayment forwards the card form for appointmentID.
func (c *Client) CompletePayment(ctx context.Context, token, appointmentID string, form payment.Form) (string, error) {
	var resp envelope
	body := paymentRequest{AppointmentID: appointmentID, PaymentData: form}
	if err := c.do(ctx, "complete payment", http.MethodPost, "/api/user/complete-payment", token, body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Login exchanges credentials for a patient token. UserID is empty when the
// backend does not return one.
func (c *Client) Login(ctx context.Context, email, password string) (token, userID string, err error) {
	var resp loginResponse
	body := loginRequest{Email: email, Password: password}
	if err := c.do(ctx, "login", http.MethodPost, "/api/user/login", "", body, &resp); err != nil {
		return "", "", err
	}
	if resp.Token == "" {
		return "", "", &Error{Op: "login", Kind: KindTransport, Err: errors.New("missing token in response")}
	}
	return resp.Token, resp.UserID, nil
}

// StaffRole selects the staff login endpoint.
type StaffRole string

const (
	RoleAdmin  StaffRole = "admin"
	RoleDoctor StaffRole = "doctor"
)

// StaffLogin exchanges admin or doctor credentials for a staff token.
func (c *Client) StaffLogin(ctx context.Context, role StaffRole, email, password string) (string, error) {
	op := string(role) + " login"
	if role != RoleAdmin && role != RoleDoctor {
		return "", &Error{Op: op, Kind: KindTransport, Err: fmt.Errorf("unknown staff role %q", role)}
	}
	var resp loginResponse
	body := loginRequest{Email: email, Password: password}
	if err := c.do(ctx, op, http.MethodPost, "/api/"+string(role)+"/login", "", body, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", &Error{Op: op, Kind: KindTransport, Err: errors.New("missing token in response")}
	}
	return resp.Token, nil
}

// ListDoctors returns the public doctor directory.
func (c *Client) ListDoctors(ctx context.Context) ([]appointments.Doctor, error) {
	var resp doctorsResponse
	if err := c.do(ctx, "list doctors", http.MethodGet, "/api/doctor/list", "", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Doctors, nil
}

// Ping checks that the backend answers HTTP at all; used by /readyz.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

// do sends one request and decodes the response into out.
func (c *Client) do(ctx context.Context, op, method, path, token string, in any, out result) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return &Error{Op: op, Kind: KindTransport, Err: err}
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &Error{Op: op, Kind: KindTransport, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(TokenHeader, token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Op: op, Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &Error{Op: op, Kind: KindTransport, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Error statuses with a JSON message are still the server talking.
		var env envelope
		if json.Unmarshal(raw, &env) == nil && env.Message != "" {
			return &Error{Op: op, Kind: KindRejected, Status: resp.StatusCode, Message: env.Message}
		}
		return &Error{Op: op, Kind: KindTransport, Status: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Op: op, Kind: KindTransport, Status: resp.StatusCode, Err: err}
	}
	if env := out.outcome(); !env.Success {
		return &Error{Op: op, Kind: KindRejected, Status: resp.StatusCode, Message: env.Message}
	}
	return nil
}
