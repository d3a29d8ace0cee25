package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/dukerupert/packlist/internal/model"
	"github.com/dukerupert/packlist/internal/workspace"
)

type VersionHandler struct {
	base
}

func NewVersionHandler(reg *workspace.Registry, logger *slog.Logger) *VersionHandler {
	return &VersionHandler{base: base{workspaces: reg, logger: logger}}
}

// List returns the versions of the list, newest first. The
// X-Autosave-Pending header tells whether an automatic save is still waiting.
func (h *VersionHandler) List(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	listID := r.PathValue("list_id")
	versions, err := ws.Versions.List(r.Context(), listID)
	if err != nil {
		writeError(w, h.logger, err, "failed to list versions")
		return
	}
	w.Header().Set("X-Autosave-Pending", strconv.FormatBool(ws.Versions.SavePending(listID)))
	writeJSON(w, http.StatusOK, orEmpty(versions))
}

func (h *VersionHandler) Get(w http.ResponseWriter, r *http.Request) {
	v, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Save stores the current items of the list as a named version.
func (h *VersionHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			badRequest(w, "invalid JSON")
			return
		}
	}
	ws := h.workspace(r)
	listID := r.PathValue("list_id")
	if _, err := ws.Session.PackingList(listID); err != nil {
		writeError(w, h.logger, err, "failed to load packing list")
		return
	}
	items, err := ws.Versions.Items(r.Context(), listID)
	if err != nil {
		writeError(w, h.logger, err, "failed to load pack items")
		return
	}
	v, err := ws.Versions.Save(r.Context(), listID, items, strings.TrimSpace(req.Name))
	if err != nil {
		writeError(w, h.logger, err, "failed to save version")
		return
	}
	ws.Versions.CancelSave(listID)
	writeJSON(w, http.StatusCreated, v)
}

// Restore replaces the items of the list with the version's items. The
// current state is saved first unless it already matches the newest
// version, so a restore can itself be reverted.
func (h *VersionHandler) Restore(w http.ResponseWriter, r *http.Request) {
	v, ok := h.load(w, r)
	if !ok {
		return
	}
	ws := h.workspace(r)
	live, err := ws.Versions.Items(r.Context(), v.PackingListID)
	if err != nil {
		writeError(w, h.logger, err, "failed to load pack items")
		return
	}
	ws.Versions.CancelSave(v.PackingListID)
	if _, _, err := ws.Versions.SaveIfChanged(r.Context(), v.PackingListID, live, "Before restore"); err != nil {
		writeError(w, h.logger, err, "failed to save current state")
		return
	}
	if err := ws.Versions.Restore(r.Context(), *v, live); err != nil {
		writeError(w, h.logger, err, "failed to restore version")
		return
	}
	h.synced(r, ws)
	w.WriteHeader(http.StatusNoContent)
}

func (h *VersionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.workspace(r).Versions.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, h.logger, err, "failed to delete version")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Prune keeps the newest versions of the list and deletes the rest.
func (h *VersionHandler) Prune(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Keep int `json:"keep"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	if req.Keep < 0 {
		badRequest(w, "keep must not be negative")
		return
	}
	n, err := h.workspace(r).Versions.Prune(r.Context(), r.PathValue("list_id"), req.Keep)
	if err != nil {
		writeError(w, h.logger, err, "failed to prune versions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

func (h *VersionHandler) load(w http.ResponseWriter, r *http.Request) (*model.PackingListVersion, bool) {
	v, err := h.workspace(r).Versions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err, "failed to load version")
		return nil, false
	}
	if v == nil || v.PackingListID != r.PathValue("list_id") {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "version not found"})
		return nil, false
	}
	return v, true
}
