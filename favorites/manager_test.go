package favorites_test

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr"

	"brushkit/favorites"
	"brushkit/preset"
	"brushkit/resource"
)

func newServer(t *testing.T, names ...string) *resource.Server {
	t.Helper()
	dir := t.TempDir()
	srv, err := resource.NewServer(filepath.Join(dir, "presets"), "", logr.Discard())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	for _, n := range names {
		p := preset.New(n, "paintbrush")
		p.SetFilename(srv.SaveLocation() + n + preset.FileExtension)
		srv.AddResource(p, false, false)
	}
	return srv
}

func TestNewManagerMissingFile(t *testing.T) {
	srv := newServer(t)
	fm, err := favorites.NewManager(t.TempDir()+"/nonexistent.json", srv, "Favorites")
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	state := fm.Get()
	if state.FavoriteTag != "Favorites" {
		t.Fatalf("expected default tag, got %q", state.FavoriteTag)
	}
	if len(state.RecentlyUsed) != 0 {
		t.Fatalf("expected empty recentlyUsed, got %d", len(state.RecentlyUsed))
	}
}

func TestMarkUsedMRUOrderAndReload(t *testing.T) {
	srv := newServer(t, "a", "b", "c")
	path := t.TempDir() + "/favorites.json"
	fm, _ := favorites.NewManager(path, srv, "Favorites")

	fm.MarkUsed("a")
	fm.MarkUsed("b")
	fm.MarkUsed("c")

	want := []string{"c", "b", "a"}
	got := fm.Get().RecentlyUsed
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	// Reload from disk.
	fm2, err := favorites.NewManager(path, srv, "Favorites")
	if err != nil {
		t.Fatalf("NewManager reload: %v", err)
	}
	if fmt.Sprint(fm2.Get().RecentlyUsed) != fmt.Sprint(want) {
		t.Fatalf("unexpected recentlyUsed after reload: %v", fm2.Get().RecentlyUsed)
	}
}

func TestMarkUsedDeduplication(t *testing.T) {
	srv := newServer(t, "x", "y")
	fm, _ := favorites.NewManager(t.TempDir()+"/favorites.json", srv, "Favorites")

	fm.MarkUsed("x")
	fm.MarkUsed("y")
	fm.MarkUsed("x") // should move x to front, no duplicate

	got := fm.Get().RecentlyUsed
	if len(got) != 2 || got[0] != "x" || got[1] != "y" {
		t.Fatalf("unexpected order: %v", got)
	}
}

func TestMarkUsedCap10(t *testing.T) {
	names := make([]string, 12)
	for i := range names {
		names[i] = string(rune('a' + i))
	}
	srv := newServer(t, names...)
	fm, _ := favorites.NewManager(t.TempDir()+"/favorites.json", srv, "Favorites")

	for _, n := range names {
		fm.MarkUsed(n)
	}
	if got := fm.Get().RecentlyUsed; len(got) != 10 {
		t.Fatalf("expected cap of 10, got %d: %v", len(got), got)
	}
}

func TestMarkUsedUnknownName(t *testing.T) {
	srv := newServer(t)
	fm, _ := favorites.NewManager(t.TempDir()+"/favorites.json", srv, "Favorites")

	if err := fm.MarkUsed("doesnotexist"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got := fm.Get().RecentlyUsed; len(got) != 0 {
		t.Fatalf("expected empty recentlyUsed, got %v", got)
	}
}

func TestMarkUsedFiltersRemovedNames(t *testing.T) {
	srv := newServer(t, "a", "b")
	fm, _ := favorites.NewManager(t.TempDir()+"/favorites.json", srv, "Favorites")
	fm.MarkUsed("b")

	srv.RemoveResourceAndBlacklist(srv.ResourceByName("b"))
	fm.MarkUsed("a")

	for _, n := range fm.Get().RecentlyUsed {
		if n == "b" {
			t.Fatalf("stale name 'b' should have been filtered out: %v", fm.Get().RecentlyUsed)
		}
	}
}

func TestFavoritesFollowTag(t *testing.T) {
	srv := newServer(t, "ink", "pencil")
	fm, _ := favorites.NewManager("", srv, "Favorites")
	srv.Subscribe(fm.OnResourceEvent)

	srv.AddTag(srv.ResourceByName("pencil"), "Favorites")
	if got := fm.Favorites(); len(got) != 1 || got[0] != "pencil" {
		t.Fatalf("expected [pencil], got %v", got)
	}

	fm.SetFavoriteTag("Inks")
	if got := fm.Favorites(); len(got) != 0 {
		t.Fatalf("expected no favorites for new tag, got %v", got)
	}
}

func TestBlockUpdates(t *testing.T) {
	srv := newServer(t, "ink")
	fm, _ := favorites.NewManager("", srv, "Favorites")
	srv.Subscribe(fm.OnResourceEvent)

	var changes []favorites.Change
	fm.Subscribe(func(c favorites.Change) { changes = append(changes, c) })

	fm.SetBlockUpdates(true)
	srv.AddTag(srv.ResourceByName("ink"), "Favorites")
	if len(changes) != 0 {
		t.Fatalf("expected no notifications while blocked, got %v", changes)
	}
	if got := fm.Favorites(); len(got) != 0 {
		t.Fatalf("favorites must not move while blocked, got %v", got)
	}

	fm.SetBlockUpdates(false)
	if len(changes) != 1 {
		t.Fatalf("expected exactly one notification on unblock, got %d", len(changes))
	}
	if got := changes[0].Favorites; len(got) != 1 || got[0] != "ink" {
		t.Fatalf("expected [ink] after unblock, got %v", got)
	}
}
