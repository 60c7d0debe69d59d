package api

import (
	"encoding/json"
	"errors"
	"image/png"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"brushkit/presetsave"
	"brushkit/session"
	"brushkit/thumbnail"
)

const maxUpload = 32 << 20

func (h *handler) listDialogs(w http.ResponseWriter, r *http.Request) {
	list := h.sessions.List()
	out := make([]session.Info, 0, len(list))
	for _, s := range list {
		out = append(out, s.Info())
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) createDialog(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SavingNew bool `json:"savingNew"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	s, err := h.sessions.Create(req.SavingNew)
	if err != nil {
		if errors.Is(err, session.ErrDialogOpen) {
			http.Error(w, "a save dialog is already open", http.StatusConflict)
			return
		}
		http.Error(w, "failed to open dialog", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, s.Info())
}

func (h *handler) closeDialog(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.sessions.Close(id); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			http.Error(w, "dialog not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to close dialog", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// dialogSession resolves the {id} URL parameter, writing 404 when absent.
func (h *handler) dialogSession(w http.ResponseWriter, r *http.Request) *session.Session {
	s, ok := h.sessions.Get(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "dialog not found", http.StatusNotFound)
		return nil
	}
	return s
}

func (h *handler) dialogAction(w http.ResponseWriter, r *http.Request) {
	s := h.dialogSession(w, r)
	if s == nil {
		return
	}
	var cmd presetsave.Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil || cmd.Action == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.Dispatch(cmd); err != nil {
		switch {
		case errors.Is(err, presetsave.ErrUnknownAction):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, presetsave.ErrLocalOnly):
			http.Error(w, err.Error(), http.StatusForbidden)
		case errors.Is(err, presetsave.ErrDialogClosed):
			http.Error(w, "dialog is closed", http.StatusConflict)
		default:
			h.log.V(1).Info("dialog action failed", "dialog", s.ID, "action", cmd.Action, "err", err.Error())
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		}
		return
	}
	writeJSON(w, http.StatusOK, s.Info())
}

func (h *handler) getDialogThumbnail(w http.ResponseWriter, r *http.Request) {
	s := h.dialogSession(w, r)
	if s == nil {
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, s.Dialog().Scratchpad().CutoutOverlay()); err != nil {
		h.log.Error(err, "encode dialog thumbnail", "dialog", s.ID)
	}
}

// putDialogThumbnail replaces the thumbnail with an uploaded image.
func (h *handler) putDialogThumbnail(w http.ResponseWriter, r *http.Request) {
	s := h.dialogSession(w, r)
	if s == nil {
		return
	}
	img, _, err := thumbnail.DecodeImage(http.MaxBytesReader(w, r.Body, maxUpload))
	if err != nil {
		http.Error(w, "unreadable image", http.StatusBadRequest)
		return
	}
	s.Dialog().LoadImage(img)
	w.WriteHeader(http.StatusNoContent)
}
