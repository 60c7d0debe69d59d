package preset_test

import (
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"brushkit/preset"
)

func solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets", "Basic.kpp")
	p := preset.New("Basic", "paintbrush")
	p.SetFilename(path)
	p.SetSetting("size", "12")
	p.SetImage(solid(4, 4, color.NRGBA{R: 255, A: 255}))

	if !p.IsPresetDirty() {
		t.Fatal("expected preset to be dirty after SetSetting")
	}
	if err := p.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if p.IsPresetDirty() {
		t.Fatal("expected preset to be clean after Save")
	}

	loaded := preset.New("", "")
	loaded.SetFilename(path)
	if err := loaded.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Name() != "Basic" || loaded.PaintOp() != "paintbrush" {
		t.Fatalf("unexpected identity: %q %q", loaded.Name(), loaded.PaintOp())
	}
	if v, _ := loaded.Setting("size"); v != "12" {
		t.Fatalf("expected size 12, got %q", v)
	}
	if !loaded.Valid() || loaded.IsPresetDirty() {
		t.Fatalf("expected valid clean preset, got valid=%v dirty=%v", loaded.Valid(), loaded.IsPresetDirty())
	}
	if loaded.Image() == nil || loaded.Image().Bounds().Dx() != 4 {
		t.Fatalf("thumbnail did not round-trip: %v", loaded.Image())
	}
	r, _, _, a := loaded.Image().At(1, 1).RGBA()
	if r>>8 != 255 || a>>8 != 255 {
		t.Fatalf("unexpected thumbnail pixel r=%d a=%d", r>>8, a>>8)
	}
}

func TestLoadMissingFile(t *testing.T) {
	p := preset.New("Ghost", "paintbrush")
	p.SetFilename(filepath.Join(t.TempDir(), "ghost.kpp"))
	err := p.Load()
	if !errors.Is(err, preset.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
}

func TestSaveWithoutFilename(t *testing.T) {
	p := preset.New("Nameless", "paintbrush")
	if err := p.Save(); !errors.Is(err, preset.ErrNoFilename) {
		t.Fatalf("expected ErrNoFilename, got %v", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	p := preset.New("Ink", "paintbrush")
	p.SetSetting("opacity", "1.0")

	c := p.Clone()
	c.SetName("Ink Copy")
	c.SetSetting("opacity", "0.5")

	if p.Name() != "Ink" {
		t.Fatalf("clone rename leaked into original: %q", p.Name())
	}
	if v, _ := p.Setting("opacity"); v != "1.0" {
		t.Fatalf("clone setting leaked into original: %q", v)
	}
}

func TestNameIsNormalized(t *testing.T) {
	decomposed := "Cafe\u0301"
	p := preset.New(decomposed, "paintbrush")
	if p.Name() != "Caf\u00e9" {
		t.Fatalf("expected NFC name, got %q", p.Name())
	}
}

func TestSelection(t *testing.T) {
	var s preset.Selection
	if s.CurrentPreset() != nil {
		t.Fatal("expected empty selection")
	}
	p := preset.New("A", "paintbrush")
	s.SetCurrentPreset(p)
	if s.CurrentPreset() != p {
		t.Fatal("expected selected preset")
	}
}
