package Wizard

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"CSW/Catalog"
)

// Manager keeps the live wizards keyed by their public id. Abandoned wizards
// are swept on a schedule, see CronJobs.
type Manager struct {
	store *Catalog.Store
	ttl   time.Duration

	mu      sync.Mutex
	wizards map[string]*Wizard
}

func NewManager(store *Catalog.Store, ttl time.Duration) *Manager {
	return &Manager{
		store:   store,
		ttl:     ttl,
		wizards: map[string]*Wizard{},
	}
}

// Open creates a wizard and shows its sheet at the first incomplete step.
func (m *Manager) Open(ctx context.Context) *Wizard {
	wizard := New(uuid.NewString(), m.store)
	m.mu.Lock()
	m.wizards[wizard.ID] = wizard
	m.mu.Unlock()
	wizard.Open(ctx)
	return wizard
}

func (m *Manager) Get(id string) (*Wizard, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wizard, ok := m.wizards[id]
	return wizard, ok
}

func (m *Manager) Remove(id string) {
	m.mu.Lock()
	delete(m.wizards, id)
	m.mu.Unlock()
}

// SweepStale drops wizards idle past the TTL and reports how many went.
func (m *Manager) SweepStale() int {
	cutoff := time.Now().Add(-m.ttl)
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, wizard := range m.wizards {
		if wizard.LastActive().Before(cutoff) {
			delete(m.wizards, id)
			removed++
		}
	}
	return removed
}

func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.wizards)
}
