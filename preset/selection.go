package preset

import "sync"

// Selection holds the preset currently active on the canvas.
type Selection struct {
	mu      sync.RWMutex
	current *Preset
}

// CurrentPreset returns the active preset, or nil when nothing is selected.
func (s *Selection) CurrentPreset() *Preset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Selection) SetCurrentPreset(p *Preset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = p
}
