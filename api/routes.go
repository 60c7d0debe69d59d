package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-logr/logr"

	"brushkit/export"
	"brushkit/favorites"
	"brushkit/preset"
	"brushkit/resource"
	"brushkit/session"
)

// Deps are the components the HTTP API serves.
type Deps struct {
	Server    *resource.Server
	Favorites *favorites.Manager
	Selection *preset.Selection
	Sessions  *session.Manager
	Exporter  *export.BMPExport
	Log       logr.Logger
}

func RegisterRoutes(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	h := &handler{
		server:    d.Server,
		favorites: d.Favorites,
		selection: d.Selection,
		sessions:  d.Sessions,
		exporter:  d.Exporter,
		log:       d.Log.WithName("api"),
	}

	// Presets
	r.Get("/api/presets", h.listPresets)
	r.Get("/api/presets/{name}/thumbnail", h.presetThumbnail)
	r.Post("/api/presets/{name}/tags", h.editTags)
	r.Post("/api/presets/{name}/use", h.usePreset)

	r.Get("/api/current", h.getCurrent)
	r.Put("/api/current", h.putCurrent)

	r.Get("/api/favorites", h.getFavorites)
	r.Put("/api/favorites", h.putFavorites)

	// Save dialogs
	r.Get("/api/dialogs", h.listDialogs)
	r.Post("/api/dialogs", h.createDialog)
	r.Delete("/api/dialogs/{id}", h.closeDialog)
	r.Post("/api/dialogs/{id}/actions", h.dialogAction)
	r.Get("/api/dialogs/{id}/thumbnail", h.getDialogThumbnail)
	r.Put("/api/dialogs/{id}/thumbnail", h.putDialogThumbnail)

	r.Post("/api/export", h.exportImage)

	// WebSocket
	r.Get("/api/events", h.handleEvents)

	return r
}

type handler struct {
	server    *resource.Server
	favorites *favorites.Manager
	selection *preset.Selection
	sessions  *session.Manager
	exporter  *export.BMPExport
	log       logr.Logger
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
