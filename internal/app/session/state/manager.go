package state

import (
	"sync"

	"github.com/okizeme/bytemusic/internal/infra/store"
)

// Manager holds UI session state with thread-safe access. The active
// tab survives restarts; everything else here is transient.
type Manager struct {
	mu sync.RWMutex

	tab      Tab
	expanded bool // mini player expanded to full view

	store *store.Store
}

// New creates a state manager, restoring the saved tab.
func New(st *store.Store) *Manager {
	m := &Manager{tab: TabHome, store: st}

	var saved Tab
	if st.Read(store.KeyTab, &saved) && saved.Valid() {
		m.tab = saved
	}
	return m
}

// ActiveTab returns the active tab.
func (m *Manager) ActiveTab() Tab {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tab
}

// SetActiveTab switches tabs. Unknown tabs are ignored.
func (m *Manager) SetActiveTab(t Tab) bool {
	if !t.Valid() {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.tab = t
	m.store.Write(store.KeyTab, t)
	return true
}

// Expanded returns whether the player view is expanded.
func (m *Manager) Expanded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.expanded
}

// SetExpanded sets the expanded flag.
func (m *Manager) SetExpanded(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expanded = v
}
