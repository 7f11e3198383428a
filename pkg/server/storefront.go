package server

import (
	"log"
	"sync"
	"time"

	"github.com/matst80/slask-storefront/pkg/backend"
	"github.com/matst80/slask-storefront/pkg/session"
	"github.com/matst80/slask-storefront/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var preferencesReloads = promauto.NewCounter(prometheus.CounterOpts{
	Name: "storefront_preferences_reloads_total",
	Help: "The total number of applied preferences documents",
})

// BackendFactory creates the search backend for a set of appbase settings.
type BackendFactory func(settings types.AppbaseSettings) session.Backend

func ClientFactory(timeout time.Duration) BackendFactory {
	return func(settings types.AppbaseSettings) session.Backend {
		return backend.NewClient(settings, timeout)
	}
}

// Storefront holds the current preferences of a storefront. New sessions use the
// current document; running sessions keep the document they were created with.
type Storefront struct {
	Name       string
	newBackend BackendFactory

	mu        sync.RWMutex
	prefs     *types.Preferences
	backend   session.Backend
	version   uint64
	listeners []func(*types.Preferences)
}

func NewStorefront(name string, prefs *types.Preferences, factory BackendFactory) *Storefront {
	s := &Storefront{Name: name, newBackend: factory}
	s.Apply(prefs)
	return s
}

func (s *Storefront) Current() (*types.Preferences, session.Backend) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs, s.backend
}

func (s *Storefront) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Apply swaps in a new preferences document and notifies listeners.
func (s *Storefront) Apply(prefs *types.Preferences) {
	s.mu.Lock()
	s.prefs = prefs
	s.backend = s.newBackend(prefs.AppbaseSettings)
	s.version++
	version := s.version
	listeners := s.listeners
	s.mu.Unlock()

	preferencesReloads.Inc()
	log.Printf("Applied preferences version %d for %s", version, s.Name)
	for _, fn := range listeners {
		fn(prefs)
	}
}

// OnChange registers a callback for applied preferences, e.g. to persist a snapshot.
func (s *Storefront) OnChange(fn func(*types.Preferences)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}
