package directory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/md-rashed-zaman/patientportal/services/portal-service/internal/appointments"
)

type Lister interface {
	ListDoctors(ctx context.Context) ([]appointments.Doctor, error)
}

// Directory caches the public doctor list. Cancelling an appointment frees a
// slot, so pages refresh it after every successful cancellation.
type Directory struct {
	src    Lister
	logger *slog.Logger

	mu      sync.RWMutex
	doctors []appointments.Doctor
}

func New(src Lister, logger *slog.Logger) *Directory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Directory{src: src, logger: logger}
}

// Refresh replaces the cached list. On failure the old list stays and the
// error is logged and returned.
func (d *Directory) Refresh(ctx context.Context) error {
	doctors, err := d.src.ListDoctors(ctx)
	if err != nil {
		d.logger.Warn("doctor directory refresh failed", "err", err)
		return fmt.Errorf("refresh doctor directory: %w", err)
	}
	d.mu.Lock()
	d.doctors = doctors
	d.mu.Unlock()
	return nil
}

func (d *Directory) Doctors() []appointments.Doctor {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]appointments.Doctor, len(d.doctors))
	copy(out, d.doctors)
	return out
}
