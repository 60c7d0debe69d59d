package session

import (
	"errors"
	"image/color"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-logr/logr"

	"brushkit/preset"
	"brushkit/presetsave"
	"brushkit/resource"
	"brushkit/thumbnail"
)

type noBlock struct{}

func (noBlock) SetBlockUpdates(bool) {}

func newTestManager(t *testing.T) (*Manager, *resource.Server) {
	t.Helper()
	dir := t.TempDir()
	srv, err := resource.NewServer(filepath.Join(dir, "presets"), "", logr.Discard())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	sel := &preset.Selection{}
	cur := preset.New("Ink", "paintbrush")
	cur.SetFilename(srv.SaveLocation() + "Ink" + preset.FileExtension)
	srv.AddResource(cur, false, true)
	sel.SetCurrentPreset(cur)

	wf := presetsave.NewWorkflow(srv, noBlock{}, sel, logr.Discard())
	return NewManager(func() *presetsave.Dialog {
		return presetsave.NewDialog(wf, sel, thumbnail.NewScratchpad(8, color.White))
	}), srv
}

func TestCreateAndGet(t *testing.T) {
	m, _ := newTestManager(t)
	s, err := m.Create(true)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !s.SavingNew {
		t.Fatal("expected a new-preset dialog")
	}
	got, ok := m.Get(s.ID)
	if !ok {
		t.Fatal("Get returned ok=false for existing session")
	}
	if got.ID != s.ID {
		t.Fatalf("Get returned wrong session")
	}
	if v := s.View(); !v.Visible || v.Name != "Ink Copy" {
		t.Fatalf("expected shown dialog with default name, got %+v", v)
	}
}

func TestCreateIsModal(t *testing.T) {
	m, _ := newTestManager(t)
	if _, err := m.Create(false); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	if _, err := m.Create(true); err != ErrDialogOpen {
		t.Fatalf("expected ErrDialogOpen, got %v", err)
	}
	if len(m.List()) != 1 {
		t.Fatalf("expected 1 session, got %d", len(m.List()))
	}
}

func TestClose(t *testing.T) {
	m, _ := newTestManager(t)
	s, err := m.Create(false)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := m.Close(s.ID); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, ok := m.Get(s.ID); ok {
		t.Fatal("session still exists after Close")
	}
	select {
	case <-s.Done():
	default:
		t.Fatal("expected Done to be closed")
	}
	if _, err := m.Create(true); err != nil {
		t.Fatalf("expected a new dialog after close, got %v", err)
	}
}

func TestCloseNotFound(t *testing.T) {
	m, _ := newTestManager(t)
	if err := m.Close("nonexistent"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAutoRemoveOnSave(t *testing.T) {
	m, srv := newTestManager(t)
	s, err := m.Create(true)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	before := s.Info().LastActive

	time.Sleep(5 * time.Millisecond)
	if err := s.Dispatch(presetsave.Command{Action: presetsave.ActionSetName, Name: "Ink Soft"}); err != nil {
		t.Fatalf("Dispatch set-name: %v", err)
	}
	if !s.Info().LastActive.After(before) {
		t.Fatal("expected LastActive to move forward")
	}
	if err := s.Dispatch(presetsave.Command{Action: presetsave.ActionSave}); err != nil {
		t.Fatalf("Dispatch save: %v", err)
	}
	if _, ok := m.Get(s.ID); ok {
		t.Fatal("session was not removed after save")
	}
	if srv.ResourceByName("Ink Soft") == nil {
		t.Fatal("expected the new preset in the server")
	}
}

func TestDispatchRefusesLocalFileActions(t *testing.T) {
	m, _ := newTestManager(t)
	s, err := m.Create(true)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "secret.png")
	err = s.Dispatch(presetsave.Command{Action: presetsave.ActionLoadImage, Path: path})
	if !errors.Is(err, presetsave.ErrLocalOnly) {
		t.Fatalf("expected ErrLocalOnly, got %v", err)
	}
}
