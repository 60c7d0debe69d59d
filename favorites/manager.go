package favorites

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/pkg/errors"

	"brushkit/preset"
	"brushkit/resource"
)

const maxFavorites = 10

// Source is the part of the resource server the favorites index reads.
type Source interface {
	ResourceByName(name string) *preset.Preset
	SearchTag(tag string) []*preset.Preset
}

// State is the persisted part of the favorites index.
type State struct {
	FavoriteTag  string   `json:"favoriteTag"`
	RecentlyUsed []string `json:"recentlyUsed"` // MRU order, max 10 names
}

// Change is sent to listeners whenever the favorites are recomputed.
type Change struct {
	Favorites    []string `json:"favorites"`
	RecentlyUsed []string `json:"recentlyUsed"`
}

// Manager keeps the favorite presets (those carrying the favorite tag) and
// the recently used list in sync with the resource server.
type Manager struct {
	mu        sync.RWMutex
	filePath  string
	state     State
	src       Source
	blocked   bool
	favorites []string

	lmu       sync.Mutex
	listeners map[int]func(Change)
	nextID    int
}

// NewManager loads the favorites state from filePath, or starts with
// defaultTag if the file does not exist. Returns an error only on unexpected
// I/O failures.
func NewManager(filePath string, src Source, defaultTag string) (*Manager, error) {
	m := &Manager{
		filePath:  filePath,
		src:       src,
		state:     State{FavoriteTag: defaultTag, RecentlyUsed: []string{}},
		listeners: map[int]func(Change){},
	}

	data, err := os.ReadFile(filePath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if err == nil {
		if err := json.Unmarshal(data, &m.state); err != nil {
			return nil, errors.Wrapf(err, "parse %s", filePath)
		}
		if m.state.RecentlyUsed == nil {
			m.state.RecentlyUsed = []string{}
		}
		if m.state.FavoriteTag == "" {
			m.state.FavoriteTag = defaultTag
		}
	}
	m.favorites = m.compute()
	return m, nil
}

// Get returns a snapshot of the persisted state.
func (m *Manager) Get() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyState(m.state)
}

// Favorites returns the current favorite preset names, sorted.
func (m *Manager) Favorites() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.favorites))
	copy(out, m.favorites)
	return out
}

// SetFavoriteTag switches the tag that marks a preset as favorite.
func (m *Manager) SetFavoriteTag(tag string) error {
	m.mu.Lock()
	m.state.FavoriteTag = tag
	err := m.writeAtomic(m.state)
	m.mu.Unlock()
	m.refresh(true)
	return err
}

// SetBlockUpdates suspends (true) or resumes (false) reaction to resource
// server events. Resuming recomputes the favorites once.
func (m *Manager) SetBlockUpdates(block bool) {
	m.mu.Lock()
	m.blocked = block
	m.mu.Unlock()
	if !block {
		m.refresh(true)
	}
}

// UpdatesBlocked reports whether updates are currently suspended.
func (m *Manager) UpdatesBlocked() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.blocked
}

// OnResourceEvent is subscribed to the resource server. Events that arrive
// while updates are blocked are dropped.
func (m *Manager) OnResourceEvent(ev resource.Event) {
	if m.UpdatesBlocked() {
		return
	}
	m.refresh(false)
}

// MarkUsed prepends name to the recentlyUsed list (deduplicating, capping at
// 10, and filtering out names the server no longer knows). An unknown name
// is silently ignored.
func (m *Manager) MarkUsed(name string) error {
	name = preset.NormalizeName(name)
	if m.src.ResourceByName(name) == nil {
		return nil
	}

	m.mu.Lock()
	seen := map[string]bool{name: true}
	newList := []string{name}
	for _, n := range m.state.RecentlyUsed {
		if seen[n] || m.src.ResourceByName(n) == nil {
			continue
		}
		seen[n] = true
		newList = append(newList, n)
		if len(newList) == maxFavorites {
			break
		}
	}
	m.state.RecentlyUsed = newList
	err := m.writeAtomic(m.state)
	m.mu.Unlock()

	m.notify()
	return err
}

// Subscribe registers fn for favorites changes and returns a func that
// removes it.
func (m *Manager) Subscribe(fn func(Change)) func() {
	m.lmu.Lock()
	defer m.lmu.Unlock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	return func() {
		m.lmu.Lock()
		defer m.lmu.Unlock()
		delete(m.listeners, id)
	}
}

func (m *Manager) compute() []string {
	m.mu.RLock()
	tag := m.state.FavoriteTag
	m.mu.RUnlock()

	names := []string{}
	for _, p := range m.src.SearchTag(tag) {
		names = append(names, p.Name())
		if len(names) == maxFavorites {
			break
		}
	}
	return names
}

// refresh recomputes the favorites and notifies listeners when they changed
// or when force is set.
func (m *Manager) refresh(force bool) {
	names := m.compute()
	m.mu.Lock()
	changed := !slices.Equal(names, m.favorites)
	m.favorites = names
	m.mu.Unlock()
	if changed || force {
		m.notify()
	}
}

func (m *Manager) notify() {
	m.mu.RLock()
	ch := Change{
		Favorites:    append([]string{}, m.favorites...),
		RecentlyUsed: append([]string{}, m.state.RecentlyUsed...),
	}
	m.mu.RUnlock()

	m.lmu.Lock()
	fns := make([]func(Change), 0, len(m.listeners))
	for id := 0; id < m.nextID; id++ {
		if fn, ok := m.listeners[id]; ok {
			fns = append(fns, fn)
		}
	}
	m.lmu.Unlock()
	for _, fn := range fns {
		fn(ch)
	}
}

// writeAtomic writes to a temp file then renames it over filePath.
// Caller must hold m.mu.
func (m *Manager) writeAtomic(state State) error {
	if m.filePath == "" {
		return nil
	}
	dir := filepath.Dir(m.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp := m.filePath + ".tmp"
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, m.filePath)
}

func copyState(s State) State {
	ru := make([]string, len(s.RecentlyUsed))
	copy(ru, s.RecentlyUsed)
	return State{FavoriteTag: s.FavoriteTag, RecentlyUsed: ru}
}
