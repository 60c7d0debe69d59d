package export

import (
	"fmt"
	"strings"
	"sync"

	"brushkit/canvas"
)

// Level says how well the filter handles what a check inspects.
type Level int

const (
	LevelUnsupported Level = iota
	LevelPartial
	LevelSupported
)

// ColorModelPair is a (colour model, channel depth) combination.
type ColorModelPair struct {
	Model canvas.ColorModelID
	Depth canvas.DepthID
}

func (p ColorModelPair) String() string { return string(p.Model) + "/" + string(p.Depth) }

// Warning reports a layer the export will convert.
type Warning struct {
	Check   string `json:"check"`
	Layer   string `json:"layer"`
	Message string `json:"message"`
}

// CheckFactory builds a named document check.
type CheckFactory struct {
	ID  string
	Run func(doc *canvas.Document, level Level) []Warning
}

var (
	registryMu sync.RWMutex
	registry   = map[string]CheckFactory{}
)

// RegisterCheck makes a check available to AddCapability by its id.
func RegisterCheck(f CheckFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[f.ID] = f
}

func lookupCheck(id string) (CheckFactory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[id]
	return f, ok
}

// ColorModelPerLayerCheck returns the id of the check for layers in the
// given colour model and depth, registering it on first use.
func ColorModelPerLayerCheck(model canvas.ColorModelID, depth canvas.DepthID) string {
	id := "ColorModelPerLayerCheck/" + string(model) + "/" + string(depth)
	if _, ok := lookupCheck(id); ok {
		return id
	}
	want := ColorModelPair{Model: model, Depth: depth}
	RegisterCheck(CheckFactory{
		ID: id,
		Run: func(doc *canvas.Document, level Level) []Warning {
			if level != LevelSupported {
				return nil
			}
			var out []Warning
			for _, l := range doc.Image().Layers() {
				m, d := l.ColorSpace()
				got := ColorModelPair{Model: m, Depth: d}
				if got != want {
					out = append(out, Warning{
						Check:   id,
						Layer:   l.Name,
						Message: fmt.Sprintf("layer is %s and will be converted to %s", got, want),
					})
				}
			}
			return out
		},
	})
	return id
}

type capability struct {
	id    string
	level Level
}

// Capabilities records what an export filter accepts.
type Capabilities struct {
	mu     sync.Mutex
	pairs  []ColorModelPair
	name   string
	checks []capability
}

func NewCapabilities() *Capabilities {
	return &Capabilities{}
}

// AddSupportedColorModels declares the (model, depth) pairs the filter
// accepts under the given format name. Empty pairs and pairs already
// declared are skipped.
func (c *Capabilities) AddSupportedColorModels(pairs [][2]string, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = name
	for _, raw := range pairs {
		if strings.TrimSpace(raw[0]) == "" || strings.TrimSpace(raw[1]) == "" {
			continue
		}
		p := ColorModelPair{Model: canvas.ColorModelID(raw[0]), Depth: canvas.DepthID(raw[1])}
		if c.supportsLocked(p) {
			continue
		}
		c.pairs = append(c.pairs, p)
	}
}

// AddCapability attaches the registered check id at level. Unknown ids and
// repeats are ignored.
func (c *Capabilities) AddCapability(id string, level Level) {
	if _, ok := lookupCheck(id); !ok {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.checks {
		if existing.id == id {
			return
		}
	}
	c.checks = append(c.checks, capability{id: id, level: level})
}

func (c *Capabilities) SupportedColorModels() []ColorModelPair {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ColorModelPair, len(c.pairs))
	copy(out, c.pairs)
	return out
}

func (c *Capabilities) Supports(p ColorModelPair) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.supportsLocked(p)
}

func (c *Capabilities) supportsLocked(p ColorModelPair) bool {
	for _, have := range c.pairs {
		if have == p {
			return true
		}
	}
	return false
}

// CheckIDs lists the attached checks in registration order.
func (c *Capabilities) CheckIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.checks))
	for _, ch := range c.checks {
		out = append(out, ch.id)
	}
	return out
}

// Check runs every attached check against doc.
func (c *Capabilities) Check(doc *canvas.Document) []Warning {
	c.mu.Lock()
	checks := make([]capability, len(c.checks))
	copy(checks, c.checks)
	c.mu.Unlock()

	var out []Warning
	for _, ch := range checks {
		f, ok := lookupCheck(ch.id)
		if !ok {
			continue
		}
		out = append(out, f.Run(doc, ch.level)...)
	}
	return out
}
