package session

import (
	"sync"
	"time"

	"github.com/mbolis/quick-quiz/log"
	"github.com/mbolis/quick-quiz/model"
)

type entry struct {
	session  *Session
	lastUsed time.Time
}

// Registry keeps the live sessions of the HTTP adapter by id.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*entry
	now      func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: map[string]*entry{},
		now:      time.Now,
	}
}

func (r *Registry) Add(s *Session) string {
	id := model.NewID()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = &entry{session: s, lastUsed: r.now()}
	return id
}

func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastUsed = r.now()
	return e.session, true
}

// Remove closes and forgets a session; unknown ids are ignored.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	e, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		e.session.Close()
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep closes sessions untouched for longer than maxIdle and returns how many went.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	var stale []*Session
	for id, e := range r.sessions {
		if e.lastUsed.Before(cutoff) {
			stale = append(stale, e.session)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range stale {
		s.Close()
	}
	if len(stale) > 0 {
		log.Debugf("session.sweep: closed %d idle sessions", len(stale))
	}
	return len(stale)
}

func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = map[string]*entry{}
	r.mu.Unlock()

	for _, e := range sessions {
		e.session.Close()
	}
}
