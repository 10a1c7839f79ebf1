package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("session not found")

// Session is what the portal knows about one browser.
type Session struct {
	ID          string    `json:"id"`
	Token       string    `json:"token,omitempty"`
	UserID      string    `json:"userId,omitempty"`
	AdminToken  string    `json:"adminToken,omitempty"`
	DoctorToken string    `json:"doctorToken,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func New(token, userID string, now time.Time) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Token:     token,
		UserID:    userID,
		CreatedAt: now.UTC(),
	}
}

// LoggedIn reports whether the session carries a patient token.
func (s *Session) LoggedIn() bool {
	return s != nil && s.Token != ""
}

// IsStaff reports whether the session belongs to the admin or doctor shell.
func (s *Session) IsStaff() bool {
	return s != nil && (s.AdminToken != "" || s.DoctorToken != "")
}

// StaffRole names the staff shell the session belongs to.
func (s *Session) StaffRole() string {
	if s.AdminToken != "" {
		return "Admin"
	}
	return "Doctor"
}

type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// Logout drops any staff tokens and removes the session from store.
func Logout(ctx context.Context, store Store, s *Session) error {
	if s == nil {
		return nil
	}
	s.AdminToken = ""
	s.DoctorToken = ""
	if err := store.Delete(ctx, s.ID); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}
