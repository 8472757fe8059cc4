package browse

import (
	"sync"
	"time"

	"rentListings/internal/filters"
	"rentListings/internal/query"

	"github.com/google/uuid"
)

const CookieName = "browse_session"

const defaultIdle = 30 * time.Minute

// Session is the per-visitor browsing state: the filter selection and the
// view that enforces latest-query-wins delivery.
type Session struct {
	Id      string
	Filters *filters.Store
	View    *query.View

	lastSeen time.Time
}

// Registry hands out browsing sessions by cookie id. Sessions idle for longer
// than the configured window are dropped on a later lookup.
type Registry struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	svc       *query.Service
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewRegistry(svc *query.Service, idle time.Duration) *Registry {
	if idle <= 0 {
		idle = defaultIdle
	}
	return &Registry{
		sessions: make(map[string]*Session),
		svc:      svc,
		idle:     idle,
		now:      time.Now,
	}
}

// Session returns the session for id. Unknown or expired ids get a fresh
// session under a newly generated id; created reports that case.
func (r *Registry) Session(id string) (session *Session, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweep(now)

	if s, ok := r.sessions[id]; ok {
		s.lastSeen = now
		return s, false
	}

	s := &Session{
		Id:       uuid.NewString(),
		Filters:  filters.NewStore(),
		View:     query.NewView(r.svc),
		lastSeen: now,
	}
	r.sessions[s.Id] = s

	return s, true
}

func (r *Registry) sweep(now time.Time) {
	if now.Sub(r.lastSweep) < r.idle {
		return
	}
	r.lastSweep = now

	for id, s := range r.sessions {
		if now.Sub(s.lastSeen) > r.idle {
			delete(r.sessions, id)
		}
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
