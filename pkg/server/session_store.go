package server

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/matst80/slask-storefront/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var ErrUnknownSession = errors.New("unknown session")

var (
	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "storefront_active_sessions",
		Help: "The number of sessions held by the server",
	})
	evictedSessions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_evicted_sessions_total",
		Help: "The total number of sessions closed after being idle",
	})
)

// SessionStore keeps server held sessions and closes those idle longer than ttl.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session.Session
	ttl      time.Duration
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{sessions: make(map[string]*session.Session), ttl: ttl}
}

func (st *SessionStore) Add(s *session.Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.Id] = s
	activeSessions.Set(float64(len(st.sessions)))
}

func (st *SessionStore) Get(id string) (*session.Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrUnknownSession
	}
	return s, nil
}

// Remove closes and forgets a session.
func (st *SessionStore) Remove(id string) bool {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	activeSessions.Set(float64(len(st.sessions)))
	st.mu.Unlock()
	if ok {
		s.Close()
	}
	return ok
}

func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Evict closes every session not seen since now minus the ttl.
func (st *SessionStore) Evict(now time.Time) int {
	if st.ttl <= 0 {
		return 0
	}
	expired := make([]*session.Session, 0)
	st.mu.Lock()
	for id, s := range st.sessions {
		if now.Sub(s.LastSeen()) > st.ttl {
			expired = append(expired, s)
			delete(st.sessions, id)
		}
	}
	activeSessions.Set(float64(len(st.sessions)))
	st.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	if len(expired) > 0 {
		evictedSessions.Add(float64(len(expired)))
		log.Printf("Evicted %d idle sessions", len(expired))
	}
	return len(expired)
}

// Run evicts idle sessions every interval until the context ends.
func (st *SessionStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			st.Evict(now)
		}
	}
}

func (st *SessionStore) CloseAll() {
	st.mu.Lock()
	all := st.sessions
	st.sessions = make(map[string]*session.Session)
	activeSessions.Set(0)
	st.mu.Unlock()
	for _, s := range all {
		s.Close()
	}
}
