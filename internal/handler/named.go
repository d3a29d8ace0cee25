package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/packlist/internal/model"
	"github.com/dukerupert/packlist/internal/remote"
	"github.com/dukerupert/packlist/internal/workspace"
)

// NamedHandler serves members, categories and packing lists, which share
// the same name and rank shape.
type NamedHandler struct {
	base
	coll remote.Collection
}

func NewNamedHandler(reg *workspace.Registry, coll remote.Collection, logger *slog.Logger) *NamedHandler {
	return &NamedHandler{base: base{workspaces: reg, logger: logger}, coll: coll}
}

func (h *NamedHandler) List(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	switch h.coll {
	case remote.Members:
		writeJSON(w, http.StatusOK, orEmpty(ws.Session.Members()))
	case remote.Categories:
		writeJSON(w, http.StatusOK, orEmpty(ws.Session.Categories()))
	default:
		writeJSON(w, http.StatusOK, orEmpty(ws.Session.PackingLists()))
	}
}

func (h *NamedHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string `json:"name"`
		Color      string `json:"color"`
		IsTemplate bool   `json:"is_template"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		badRequest(w, "name is required")
		return
	}

	ws := h.workspace(r)
	id, err := ws.Coordinator.AddNamed(r.Context(), h.coll, model.NamedEntity{Name: req.Name, Color: req.Color, IsTemplate: req.IsTemplate})
	if err != nil {
		writeError(w, h.logger, err, "failed to create "+string(h.coll))
		return
	}
	h.synced(r, ws)
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *NamedHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		badRequest(w, "name is required")
		return
	}
	ws := h.workspace(r)
	if err := ws.Coordinator.Rename(r.Context(), h.coll, r.PathValue("id"), req.Name); err != nil {
		writeError(w, h.logger, err, "failed to rename")
		return
	}
	h.synced(r, ws)
	w.WriteHeader(http.StatusNoContent)
}

// UpdateOrder ranks the entities in the order of the posted ids.
func (h *NamedHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	ws := h.workspace(r)
	if err := ws.Coordinator.ReorderNamed(r.Context(), h.coll, req.IDs); err != nil {
		writeError(w, h.logger, err, "failed to update order")
		return
	}
	h.synced(r, ws)
	w.WriteHeader(http.StatusNoContent)
}

// Delete removes the entity. Members and categories still referenced by
// pack items are only removed with ?force=true.
func (h *NamedHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	id := r.PathValue("id")
	force := boolParam(r, "force")

	var err error
	switch h.coll {
	case remote.Members:
		err = ws.Coordinator.DeleteMember(r.Context(), id, force)
	case remote.Categories:
		err = ws.Coordinator.DeleteCategory(r.Context(), id, force)
	default:
		ws.Versions.CancelSave(id)
		err = ws.Coordinator.DeletePackingList(r.Context(), id)
	}
	if err != nil {
		writeError(w, h.logger, err, "failed to delete "+string(h.coll))
		return
	}
	h.synced(r, ws)
	w.WriteHeader(http.StatusNoContent)
}

// Copy duplicates a packing list with all of its items.
func (h *NamedHandler) Copy(w http.ResponseWriter, r *http.Request) {
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
	id, err := ws.Coordinator.CopyPackingList(r.Context(), r.PathValue("id"), req.Name)
	if err != nil {
		writeError(w, h.logger, err, "failed to copy packing list")
		return
	}
	h.synced(r, ws)
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}
