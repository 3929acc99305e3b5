package usecase

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"artisanx/pkg/logger"
)

type registryEntry struct {
	session  *Session
	clients  int
	lastSeen time.Time
}

// SessionRegistry owns every live session of the process.
type SessionRegistry struct {
	deps SessionDeps
	now  func() time.Time

	mu       sync.Mutex
	sessions map[string]*registryEntry
}

func NewSessionRegistry(deps SessionDeps) *SessionRegistry {
	return &SessionRegistry{
		deps:     deps,
		now:      time.Now,
		sessions: make(map[string]*registryEntry),
	}
}

func (r *SessionRegistry) Create() *Session {
	s := NewSession(uuid.NewString(), r.deps)

	r.mu.Lock()
	r.sessions[s.ID()] = &registryEntry{session: s, lastSeen: r.now()}
	r.mu.Unlock()

	logger.Info("Session %s created", s.ID())
	return s
}

// Get looks a session up and counts the lookup as activity.
func (r *SessionRegistry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = r.now()
	return e.session, true
}

// Attach records a push client bound to the session. Sessions with attached
// clients are never reaped.
func (r *SessionRegistry) Attach(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[id]; ok {
		e.clients++
		e.lastSeen = r.now()
	}
}

// Detach undoes Attach. The idle clock restarts from the disconnect.
func (r *SessionRegistry) Detach(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[id]; ok && e.clients > 0 {
		e.clients--
		e.lastSeen = r.now()
	}
}

// Remove closes the session and forgets it. Unknown ids are ignored.
func (r *SessionRegistry) Remove(id string) {
	r.mu.Lock()
	e, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		e.session.Close()
		logger.Info("Session %s closed", id)
	}
}

// Reap closes every session without clients that has been idle for longer
// than maxIdle and returns their ids.
func (r *SessionRegistry) Reap(maxIdle time.Duration) []string {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	var idle []*Session
	for id, e := range r.sessions {
		if e.clients == 0 && e.lastSeen.Before(cutoff) {
			idle = append(idle, e.session)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	ids := make([]string, 0, len(idle))
	for _, s := range idle {
		s.Close()
		ids = append(ids, s.ID())
	}
	if len(ids) > 0 {
		logger.Info("Reaped %d idle sessions", len(ids))
	}
	return ids
}

// StartReaper reaps idle sessions every interval until stop is closed.
// onReap, if set, is called with each reaped id.
func (r *SessionRegistry) StartReaper(interval, maxIdle time.Duration, stop <-chan struct{}, onReap func(sessionID string)) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				for _, id := range r.Reap(maxIdle) {
					if onReap != nil {
						onReap(id)
					}
				}
			case <-stop:
				return
			}
		}
	}()
}

func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *SessionRegistry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*registryEntry)
	r.mu.Unlock()

	for _, e := range sessions {
		e.session.Close()
	}
}
