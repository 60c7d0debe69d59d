package preset

import (
	"image"
	"sort"
	"sync"

	"golang.org/x/text/unicode/norm"
)

// FileExtension is the extension every preset file is saved with.
const FileExtension = ".kpp"

// Preset is a named bundle of paint-op parameters plus a thumbnail image,
// persisted as a single file. It is safe for concurrent use: presets
// registered in a resource server are read by many callers while a save
// rewrites them.
type Preset struct {
	mu       sync.RWMutex
	name     string
	filename string
	paintOp  string
	settings map[string]string
	image    image.Image
	dirty    bool
	valid    bool
}

// New returns an unsaved preset for the given paint-op.
func New(name, paintOp string) *Preset {
	return &Preset{
		name:     NormalizeName(name),
		paintOp:  paintOp,
		settings: map[string]string{},
	}
}

// NormalizeName maps a preset name to NFC so lookups by name do not depend
// on how the caller composed accented characters.
func NormalizeName(name string) string {
	return norm.NFC.String(name)
}

// Clone returns an independent copy. The thumbnail is shared; images are
// replaced through SetImage, never mutated in place.
func (p *Preset) Clone() *Preset {
	p.mu.RLock()
	defer p.mu.RUnlock()
	c := &Preset{
		name:     p.name,
		filename: p.filename,
		paintOp:  p.paintOp,
		settings: make(map[string]string, len(p.settings)),
		image:    p.image,
		dirty:    p.dirty,
		valid:    p.valid,
	}
	for k, v := range p.settings {
		c.settings[k] = v
	}
	return c
}

func (p *Preset) Name() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.name
}

func (p *Preset) SetName(name string) {
	name = NormalizeName(name)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.name = name
}

func (p *Preset) Filename() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.filename
}

func (p *Preset) SetFilename(filename string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.filename = filename
}

func (p *Preset) PaintOp() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.paintOp
}

func (p *Preset) Image() image.Image {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.image
}

func (p *Preset) SetImage(img image.Image) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.image = img
}

func (p *Preset) SetPresetDirty(dirty bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dirty = dirty
}

func (p *Preset) IsPresetDirty() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.dirty
}

func (p *Preset) SetValid(valid bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.valid = valid
}

func (p *Preset) Valid() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.valid
}

// DefaultFileExtension is the extension new files for this preset get.
func (p *Preset) DefaultFileExtension() string { return FileExtension }

// Setting returns the value of a paint-op parameter.
func (p *Preset) Setting(key string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.settings[key]
	return v, ok
}

// SetSetting changes a paint-op parameter and marks the preset dirty.
func (p *Preset) SetSetting(key, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.settings == nil {
		p.settings = map[string]string{}
	}
	if old, ok := p.settings[key]; ok && old == value {
		return
	}
	p.settings[key] = value
	p.dirty = true
}

// SettingKeys returns the parameter names in sorted order.
func (p *Preset) SettingKeys() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	keys := make([]string, 0, len(p.settings))
	for k := range p.settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
