package session

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"brushkit/presetsave"
)

var ErrDialogOpen = errors.New("a save dialog is already open")
var ErrNotFound = errors.New("session not found")

// DialogFactory builds a fresh dialog for a new session.
type DialogFactory func() *presetsave.Dialog

// Manager tracks open save dialogs. The dialog is modal: only one may be
// open at a time.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	factory  DialogFactory
}

// NewManager returns an empty manager building dialogs with factory.
func NewManager(factory DialogFactory) *Manager {
	return &Manager{sessions: make(map[string]*Session), factory: factory}
}

// Create opens a dialog in the requested mode and shows it.
func (m *Manager) Create(savingNew bool) (*Session, error) {
	m.mu.Lock()
	if len(m.sessions) > 0 {
		m.mu.Unlock()
		return nil, ErrDialogOpen
	}

	s := &Session{
		ID:         uuid.New().String(),
		SavingNew:  savingNew,
		CreatedAt:  time.Now(),
		lastActive: time.Now(),
		dialog:     m.factory(),
		done:       make(chan struct{}),
	}
	s.dialog.OnClose(func() {
		close(s.done)
		m.remove(s.ID)
	})
	m.sessions[s.ID] = s
	m.mu.Unlock()

	s.dialog.IsSavingNewBrush(savingNew)
	s.dialog.ShowDialog()
	return s, nil
}

// List returns the open sessions, oldest first.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Close dismisses the dialog of session id without saving.
func (m *Manager) Close(id string) error {
	s, ok := m.Get(id)
	if !ok {
		return ErrNotFound
	}
	s.dialog.Close()
	return nil
}

func (m *Manager) remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}
