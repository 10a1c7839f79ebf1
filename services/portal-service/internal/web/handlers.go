package web

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/md-rashed-zaman/patientportal/libs/auth"
	"github.com/md-rashed-zaman/patientportal/services/portal-service/internal/backend"
	"github.com/md-rashed-zaman/patientportal/services/portal-service/internal/page"
	"github.com/md-rashed-zaman/patientportal/services/portal-service/internal/payment"
	"github.com/md-rashed-zaman/patientportal/services/portal-service/internal/session"
)

const (
	msgLoginFailed   = "Login failed."
	msgDoctorsFailed = "Failed to load doctors."
)

type ctxKey int

const ctxKeySession ctxKey = iota

func sessionFrom(ctx context.Context) *session.Session {
	s, _ := ctx.Value(ctxKeySession).(*session.Session)
	return s
}

// lookupSession returns the session named by the request cookie, or nil.
func (s *Server) lookupSession(r *http.Request) (*session.Session, error) {
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		return nil, nil
	}
	sess, err := s.cfg.Sessions.Get(r.Context(), c.Value)
	if errors.Is(err, session.ErrNotFound) {
		s.pages.drop(c.Value)
		return nil, nil
	}
	return sess, err
}

// requireSession admits patient sessions only.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return s.gate(next, (*session.Session).LoggedIn)
}

// requireStaff admits sessions holding an admin or doctor token.
func (s *Server) requireStaff(next http.Handler) http.Handler {
	return s.gate(next, (*session.Session).IsStaff)
}

func (s *Server) gate(next http.Handler, allow func(*session.Session) bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.lookupSession(r)
		if err != nil {
			s.cfg.Logger.Error("session lookup failed", "err", err)
			http.Error(w, "session store unavailable", http.StatusServiceUnavailable)
			return
		}
		if !allow(sess) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeySession, sess)))
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess, err := s.lookupSession(r)
	switch {
	case err == nil && sess.LoggedIn():
		http.Redirect(w, r, "/my-appointments", http.StatusSeeOther)
	case err == nil && sess.IsStaff():
		http.Redirect(w, r, "/staff", http.StatusSeeOther)
	default:
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.renderLogin(w, http.StatusOK, "", "")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(r.PostForm.Get("email"))
	password := r.PostForm.Get("password")
	role := backend.StaffRole(r.PostForm.Get("role"))
	if role == backend.RoleAdmin || role == backend.RoleDoctor {
		s.handleStaffLogin(w, r, role, email, password)
		return
	}

	token, userID, err := s.cfg.Backend.Login(r.Context(), email, password)
	if err != nil {
		s.cfg.Logger.Warn("login failed", "err", err)
		msg := backend.ServerMessage(err)
		if msg == "" {
			msg = msgLoginFailed
		}
		s.renderLogin(w, http.StatusUnauthorized, msg, email)
		return
	}
	if userID == "" {
		userID, err = auth.UserID(token, s.cfg.JWTSecret)
		if err != nil {
			s.cfg.Logger.Warn("token carries no user id", "err", err)
		}
	}

	s.startSession(w, r, session.New(token, userID, s.cfg.Now()), "/my-appointments")
}

// handleStaffLogin signs in through the admin or doctor endpoint. The
// resulting session has no patient token, so it cannot open /my-appointments.
func (s *Server) handleStaffLogin(w http.ResponseWriter, r *http.Request, role backend.StaffRole, email, password string) {
	token, err := s.cfg.Backend.StaffLogin(r.Context(), role, email, password)
	if err != nil {
		s.cfg.Logger.Warn("staff login failed", "role", role, "err", err)
		msg := backend.ServerMessage(err)
		if msg == "" {
			msg = msgLoginFailed
		}
		s.renderLogin(w, http.StatusUnauthorized, msg, email)
		return
	}
	sess := session.New("", "", s.cfg.Now())
	if role == backend.RoleAdmin {
		sess.AdminToken = token
	} else {
		sess.DoctorToken = token
	}
	s.startSession(w, r, sess, "/staff")
}

// startSession replaces any session on the request with sess and redirects.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request, sess *session.Session, next string) {
	if old, _ := s.lookupSession(r); old != nil {
		_ = s.cfg.Sessions.Delete(r.Context(), old.ID)
		s.pages.drop(old.ID)
	}
	if err := s.cfg.Sessions.Save(r.Context(), sess); err != nil {
		s.cfg.Logger.Error("session save failed", "err", err)
		http.Error(w, "session store unavailable", http.StatusServiceUnavailable)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.ID,
		Path:     "/",
		MaxAge:   int(s.cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// handleStaff lists the doctor directory for admin and doctor sessions.
func (s *Server) handleStaff(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	data := viewData{Title: "Doctors", LoggedIn: true, Staff: sess.StaffRole()}
	if s.cfg.Directory != nil {
		if err := s.cfg.Directory.Refresh(r.Context()); err != nil {
			data.Error = msgDoctorsFailed
		}
		data.Doctors = s.cfg.Directory.Doctors()
	}
	if err := s.views.render(w, http.StatusOK, "staff", data); err != nil {
		s.cfg.Logger.Error("render failed", "view", "staff", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess, err := s.lookupSession(r)
	if err != nil {
		s.cfg.Logger.Error("session lookup failed", "err", err)
	}
	if sess != nil {
		if err := session.Logout(r.Context(), s.cfg.Sessions, sess); err != nil {
			s.cfg.Logger.Error("logout failed", "err", err)
			http.Error(w, "session store unavailable", http.StatusServiceUnavailable)
			return
		}
		s.pages.drop(sess.ID)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleAppointments mounts the page, which always re-fetches.
func (s *Server) handleAppointments(w http.ResponseWriter, r *http.Request) {
	e := s.pages.get(sessionFrom(r.Context()))
	_ = e.page.Mount(r.Context())
	s.renderAppointments(w, r, http.StatusOK, e)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	e := s.pages.get(sessionFrom(r.Context()))
	_ = e.page.Cancel(r.Context(), chi.URLParam(r, "id"))
	s.renderAppointments(w, r, http.StatusOK, e)
}

func (s *Server) handleOpenPayment(w http.ResponseWriter, r *http.Request) {
	e := s.pages.get(sessionFrom(r.Context()))
	if err := e.page.OpenPayment(chi.URLParam(r, "id")); err != nil {
		http.Error(w, "appointment not found", http.StatusNotFound)
		return
	}
	s.renderAppointments(w, r, http.StatusOK, e)
}

func (s *Server) handleClosePayment(w http.ResponseWriter, r *http.Request) {
	e := s.pages.get(sessionFrom(r.Context()))
	e.page.ClosePayment()
	s.renderAppointments(w, r, http.StatusOK, e)
}

func (s *Server) handleSubmitPayment(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	e := s.pages.get(sessionFrom(r.Context()))
	err := e.page.SubmitPayment(r.Context(), payment.FormFromValues(r.PostForm))
	if errors.Is(err, page.ErrPaymentClosed) {
		http.Error(w, "no payment in progress", http.StatusConflict)
		return
	}
	s.renderAppointments(w, r, http.StatusOK, e)
}

func (s *Server) renderAppointments(w http.ResponseWriter, r *http.Request, status int, e *pageEntry) {
	sess := sessionFrom(r.Context())
	list := e.page.Appointments()
	view := e.page.View()
	data := viewData{
		Title:        "My Appointments",
		LoggedIn:     true,
		Toasts:       e.flash.Drain(),
		Loading:      view == page.ViewLoading,
		Empty:        view == page.ViewEmpty,
		Appointments: list,
		Modal:        e.page.Modal(),
	}
	if sess.IsStaff() {
		data.Staff = sess.StaffRole()
	}
	if err := s.views.render(w, status, "appointments", data); err != nil {
		s.cfg.Logger.Error("render failed", "view", "appointments", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (s *Server) renderLogin(w http.ResponseWriter, status int, msg, email string) {
	data := viewData{Title: "Login", Error: msg, Email: email}
	if err := s.views.render(w, status, "login", data); err != nil {
		s.cfg.Logger.Error("render failed", "view", "login", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
