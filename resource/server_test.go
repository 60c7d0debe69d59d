package resource_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr"
	"github.com/google/go-cmp/cmp"

	"brushkit/preset"
	"brushkit/resource"
)

func newTestServer(t *testing.T) (*resource.Server, string) {
	t.Helper()
	dir := t.TempDir()
	srv, err := resource.NewServer(filepath.Join(dir, "paintoppresets"), filepath.Join(dir, "index.json"), logr.Discard())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv, dir
}

func newPreset(srv *resource.Server, name string) *preset.Preset {
	p := preset.New(name, "paintbrush")
	p.SetFilename(srv.SaveLocation() + name + p.DefaultFileExtension())
	return p
}

func TestSaveLocationHasTrailingSeparator(t *testing.T) {
	srv, dir := newTestServer(t)
	want := filepath.Join(dir, "paintoppresets") + string(filepath.Separator)
	if srv.SaveLocation() != want {
		t.Fatalf("expected %q, got %q", want, srv.SaveLocation())
	}
}

func TestAddAndLookup(t *testing.T) {
	srv, _ := newTestServer(t)
	p := newPreset(srv, "Basic")
	if err := srv.AddResource(p, true, true); err != nil {
		t.Fatalf("AddResource: %v", err)
	}
	if srv.ResourceByName("Basic") != p {
		t.Fatal("expected lookup by name to find preset")
	}
	if srv.ResourceByFilename(p.Filename()) != p {
		t.Fatal("expected lookup by filename to find preset")
	}
	if _, err := os.Stat(p.Filename()); err != nil {
		t.Fatalf("expected preset file on disk: %v", err)
	}
}

func TestAddResourceWithoutFilename(t *testing.T) {
	srv, _ := newTestServer(t)
	if err := srv.AddResource(preset.New("X", "paintbrush"), true, false); err != resource.ErrNoFilename {
		t.Fatalf("expected ErrNoFilename, got %v", err)
	}
}

func TestRemoveAndBlacklist(t *testing.T) {
	srv, _ := newTestServer(t)
	p := newPreset(srv, "Old")
	srv.AddResource(p, true, true)

	if err := srv.RemoveResourceAndBlacklist(p); err != nil {
		t.Fatalf("RemoveResourceAndBlacklist: %v", err)
	}
	if srv.ResourceByName("Old") != nil {
		t.Fatal("expected preset to be unregistered")
	}
	if !srv.IsBlacklisted(p.Filename()) {
		t.Fatal("expected path to be blacklisted")
	}
	if _, err := os.Stat(p.Filename()); err != nil {
		t.Fatalf("blacklisting must keep the file: %v", err)
	}

	if err := srv.RemoveFromBlacklist(p); err != nil {
		t.Fatalf("RemoveFromBlacklist: %v", err)
	}
	if srv.IsBlacklisted(p.Filename()) {
		t.Fatal("expected path to leave the blacklist")
	}
}

func TestAddWithSaveClearsBlacklist(t *testing.T) {
	srv, _ := newTestServer(t)
	p := newPreset(srv, "Again")
	srv.AddResource(p, true, true)
	srv.RemoveResourceAndBlacklist(p)

	// Re-registration without saving keeps the blacklist entry.
	srv.AddResource(p, false, false)
	if !srv.IsBlacklisted(p.Filename()) {
		t.Fatal("expected blacklist to survive AddResource without save")
	}
	srv.AddResource(p, false, true)
	if srv.IsBlacklisted(p.Filename()) {
		t.Fatal("expected AddResource with save to clear the blacklist")
	}
}

func TestTags(t *testing.T) {
	srv, _ := newTestServer(t)
	a := newPreset(srv, "A")
	b := newPreset(srv, "B")
	srv.AddResource(a, false, true)
	srv.AddResource(b, false, true)

	srv.AddTag(a, "ink")
	srv.AddTag(a, "favorite")
	srv.AddTag(a, "ink")
	srv.AddTag(a, "  ")
	srv.AddTag(b, "ink")

	if diff := cmp.Diff([]string{"favorite", "ink"}, srv.AssignedTagsList(a)); diff != "" {
		t.Fatalf("tags of A (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"favorite", "ink"}, srv.TagNames()); diff != "" {
		t.Fatalf("tag names (-want +got):\n%s", diff)
	}

	var names []string
	for _, p := range srv.SearchTag("ink") {
		names = append(names, p.Name())
	}
	if diff := cmp.Diff([]string{"A", "B"}, names); diff != "" {
		t.Fatalf("SearchTag(ink) (-want +got):\n%s", diff)
	}

	srv.DelTag(a, "favorite")
	if diff := cmp.Diff([]string{"ink"}, srv.AssignedTagsList(a)); diff != "" {
		t.Fatalf("tags after DelTag (-want +got):\n%s", diff)
	}
}

func TestIndexPersistsAcrossRestart(t *testing.T) {
	dir := t.TempDir()
	loc := filepath.Join(dir, "paintoppresets")
	idx := filepath.Join(dir, "index.json")

	srv, _ := resource.NewServer(loc, idx, logr.Discard())
	keep := newPreset(srv, "Keep")
	gone := newPreset(srv, "Gone")
	srv.AddResource(keep, false, true)
	srv.AddResource(gone, false, true)
	srv.AddTag(keep, "ink")
	srv.RemoveResourceAndBlacklist(gone)

	srv2, err := resource.NewServer(loc, idx, logr.Discard())
	if err != nil {
		t.Fatalf("NewServer reload: %v", err)
	}
	if err := srv2.LoadAll(); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	var names []string
	for _, p := range srv2.Resources() {
		names = append(names, p.Name())
	}
	if diff := cmp.Diff([]string{"Keep"}, names); diff != "" {
		t.Fatalf("blacklisted preset must not load (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"ink"}, srv2.AssignedTagsList(srv2.ResourceByName("Keep"))); diff != "" {
		t.Fatalf("tags after reload (-want +got):\n%s", diff)
	}
}

func TestEvents(t *testing.T) {
	srv, _ := newTestServer(t)
	var got []resource.EventKind
	unsubscribe := srv.Subscribe(func(ev resource.Event) { got = append(got, ev.Kind) })

	p := newPreset(srv, "Evented")
	srv.AddResource(p, true, true)
	srv.AddResource(p, false, false)
	srv.AddTag(p, "ink")
	srv.RemoveResourceAndBlacklist(p)
	srv.TagCategoryMembersChanged()

	want := []resource.EventKind{
		resource.ResourceAdded,
		resource.TagsChanged,
		resource.RemovingResource,
		resource.TagCategoryMembersChanged,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("events (-want +got):\n%s", diff)
	}

	unsubscribe()
	srv.TagCategoryMembersChanged()
	if len(got) != len(want) {
		t.Fatalf("expected no events after unsubscribe, got %v", got[len(want):])
	}
}
