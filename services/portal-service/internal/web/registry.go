package web

import (
	"sync"
	"time"

	"github.com/md-rashed-zaman/patientportal/services/portal-service/internal/notify"
	"github.com/md-rashed-zaman/patientportal/services/portal-service/internal/page"
	"github.com/md-rashed-zaman/patientportal/services/portal-service/internal/session"
)

type pageEntry struct {
	page     *page.Page
	flash    *notify.Flash
	lastSeen time.Time
}

// registry holds one appointments page per session. Pages idle for longer
// than ttl are swept on access, so sessions that expire without coming
// back do not keep their page (and any typed card form) in memory.
type registry struct {
	build func(session.Session) *pageEntry
	ttl   time.Duration
	now   func() time.Time

	mu        sync.Mutex
	entries   map[string]*pageEntry
	nextSweep time.Time
}

func newRegistry(build func(session.Session) *pageEntry, ttl time.Duration, now func() time.Time) *registry {
	if now == nil {
		now = time.Now
	}
	return &registry{build: build, ttl: ttl, now: now, entries: map[string]*pageEntry{}}
}

func (r *registry) get(sess *session.Session) *pageEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.sweepLocked(now)
	e, ok := r.entries[sess.ID]
	if !ok {
		e = r.build(*sess)
		r.entries[sess.ID] = e
	}
	e.lastSeen = now
	return e
}

func (r *registry) sweepLocked(now time.Time) {
	if r.ttl <= 0 || now.Before(r.nextSweep) {
		return
	}
	for id, e := range r.entries {
		if now.Sub(e.lastSeen) > r.ttl {
			delete(r.entries, id)
		}
	}
	r.nextSweep = now.Add(r.ttl / 10)
}

func (r *registry) drop(id string) {
	r.mu.Lock()
	delete(r.entries, id)
	r.mu.Unlock()
}

func (r *registry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
