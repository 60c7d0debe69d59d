package api

import (
	"encoding/json"
	"image/png"
	"net/http"

	"github.com/go-chi/chi/v5"

	"brushkit/preset"
)

type presetInfo struct {
	Name     string   `json:"name"`
	Filename string   `json:"filename"`
	PaintOp  string   `json:"paintOp"`
	Tags     []string `json:"tags"`
	Current  bool     `json:"current"`
}

func (h *handler) info(p *preset.Preset) presetInfo {
	tags := h.server.AssignedTagsList(p)
	if tags == nil {
		tags = []string{}
	}
	return presetInfo{
		Name:     p.Name(),
		Filename: p.Filename(),
		PaintOp:  p.PaintOp(),
		Tags:     tags,
		Current:  h.selection.CurrentPreset() == p,
	}
}

// lookup resolves the {name} URL parameter, writing 404 when absent.
func (h *handler) lookup(w http.ResponseWriter, r *http.Request) *preset.Preset {
	p := h.server.ResourceByName(chi.URLParam(r, "name"))
	if p == nil {
		http.Error(w, "preset not found", http.StatusNotFound)
	}
	return p
}

func (h *handler) listPresets(w http.ResponseWriter, r *http.Request) {
	var list []*preset.Preset
	if tag := r.URL.Query().Get("tag"); tag != "" {
		list = h.server.SearchTag(tag)
	} else {
		list = h.server.Resources()
	}
	out := make([]presetInfo, 0, len(list))
	for _, p := range list {
		out = append(out, h.info(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) presetThumbnail(w http.ResponseWriter, r *http.Request) {
	p := h.lookup(w, r)
	if p == nil {
		return
	}
	img := p.Image()
	if img == nil {
		http.Error(w, "preset has no thumbnail", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, img); err != nil {
		h.log.Error(err, "encode thumbnail", "preset", p.Name())
	}
}

func (h *handler) editTags(w http.ResponseWriter, r *http.Request) {
	p := h.lookup(w, r)
	if p == nil {
		return
	}
	var req struct {
		Add    []string `json:"add"`
		Remove []string `json:"remove"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	for _, tag := range req.Add {
		if err := h.server.AddTag(p, tag); err != nil {
			h.log.Error(err, "add tag", "preset", p.Name(), "tag", tag)
			http.Error(w, "failed to update tags", http.StatusInternalServerError)
			return
		}
	}
	for _, tag := range req.Remove {
		if err := h.server.DelTag(p, tag); err != nil {
			h.log.Error(err, "remove tag", "preset", p.Name(), "tag", tag)
			http.Error(w, "failed to update tags", http.StatusInternalServerError)
			return
		}
	}
	writeJSON(w, http.StatusOK, h.info(p))
}

// usePreset makes the preset current and moves it to the front of the
// recently used list.
func (h *handler) usePreset(w http.ResponseWriter, r *http.Request) {
	p := h.lookup(w, r)
	if p == nil {
		return
	}
	h.selection.SetCurrentPreset(p)
	if err := h.favorites.MarkUsed(p.Name()); err != nil {
		http.Error(w, "failed to update recently used", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"recentlyUsed": h.favorites.Get().RecentlyUsed})
}

func (h *handler) getCurrent(w http.ResponseWriter, r *http.Request) {
	cur := h.selection.CurrentPreset()
	if cur == nil {
		http.Error(w, "no current preset", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, h.info(cur))
}

func (h *handler) putCurrent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	p := h.server.ResourceByName(req.Name)
	if p == nil {
		http.Error(w, "preset not found", http.StatusNotFound)
		return
	}
	h.selection.SetCurrentPreset(p)
	writeJSON(w, http.StatusOK, h.info(p))
}

type favoritesView struct {
	FavoriteTag  string   `json:"favoriteTag"`
	Favorites    []string `json:"favorites"`
	RecentlyUsed []string `json:"recentlyUsed"`
}

func (h *handler) favoritesView() favoritesView {
	st := h.favorites.Get()
	return favoritesView{
		FavoriteTag:  st.FavoriteTag,
		Favorites:    h.favorites.Favorites(),
		RecentlyUsed: st.RecentlyUsed,
	}
}

func (h *handler) getFavorites(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.favoritesView())
}

func (h *handler) putFavorites(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FavoriteTag string `json:"favoriteTag"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FavoriteTag == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.favorites.SetFavoriteTag(req.FavoriteTag); err != nil {
		http.Error(w, "failed to save favorites", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, h.favoritesView())
}
