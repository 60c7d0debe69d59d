package preset

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

var (
	ErrNotExist   = errors.New("preset file does not exist")
	ErrNoFilename = errors.New("preset has no filename")
)

// document is the on-disk layout of a preset file.
type document struct {
	Name      string            `yaml:"name"`
	PaintOp   string            `yaml:"paintop"`
	Settings  map[string]string `yaml:"settings,omitempty"`
	Thumbnail string            `yaml:"thumbnail,omitempty"` // base64 PNG
}

// Load replaces the in-memory content with the file at Filename and marks
// the preset clean and valid.
func (p *Preset) Load() error {
	filename := p.Filename()
	if filename == "" {
		return ErrNoFilename
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(ErrNotExist, "load %s", filename)
		}
		return errors.Wrapf(err, "load %s", filename)
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return errors.Wrapf(err, "parse %s", filename)
	}
	var img image.Image
	if doc.Thumbnail != "" {
		raw, err := base64.StdEncoding.DecodeString(doc.Thumbnail)
		if err != nil {
			return errors.Wrapf(err, "thumbnail of %s", filename)
		}
		img, err = png.Decode(bytes.NewReader(raw))
		if err != nil {
			return errors.Wrapf(err, "thumbnail of %s", filename)
		}
	}
	if doc.Settings == nil {
		doc.Settings = map[string]string{}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.name = NormalizeName(doc.Name)
	p.paintOp = doc.PaintOp
	p.settings = doc.Settings
	p.image = img
	p.dirty = false
	p.valid = true
	return nil
}

// Save writes the preset to Filename through a temp file and rename, then
// marks it clean.
func (p *Preset) Save() error {
	p.mu.RLock()
	filename := p.filename
	doc := document{
		Name:     p.name,
		PaintOp:  p.paintOp,
		Settings: make(map[string]string, len(p.settings)),
	}
	for k, v := range p.settings {
		doc.Settings[k] = v
	}
	img := p.image
	p.mu.RUnlock()

	if filename == "" {
		return ErrNoFilename
	}
	if img != nil {
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return errors.Wrap(err, "encode thumbnail")
		}
		doc.Thumbnail = base64.StdEncoding.EncodeToString(buf.Bytes())
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "marshal preset")
	}
	if err := writeAtomic(filename, data); err != nil {
		return errors.Wrapf(err, "save %s", filename)
	}
	p.SetPresetDirty(false)
	return nil
}

func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
