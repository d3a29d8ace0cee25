package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/packlist/internal/model"
	"github.com/dukerupert/packlist/internal/mutate"
	"github.com/dukerupert/packlist/internal/workspace"
)

// ItemHandler serves the pack items of one packing list. Every successful
// mutation schedules an automatic version of the list.
type ItemHandler struct {
	base
}

func NewItemHandler(reg *workspace.Registry, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{base: base{workspaces: reg, logger: logger}}
}

func (h *ItemHandler) changed(r *http.Request, ws *workspace.Workspace, listIDs ...string) {
	h.synced(r, ws)
	for _, id := range listIDs {
		if id != "" {
			ws.Versions.ScheduleSave(id)
		}
	}
}

// item returns the item named by the path if it belongs to the path's list.
// Otherwise a 404 has been written and ok is false.
func (h *ItemHandler) item(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace) (model.PackItem, bool) {
	it, found := ws.Session.PackItem(r.PathValue("id"))
	if !found || it.PackingList != r.PathValue("list_id") {
		notFound(w, "pack item not found")
		return model.PackItem{}, false
	}
	return it, true
}

// inList writes a 404 and reports false when any of ids is an item of
// another packing list. Unknown ids pass; the engine ignores them.
func (h *ItemHandler) inList(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace, ids []string) bool {
	listID := r.PathValue("list_id")
	for _, id := range ids {
		if it, found := ws.Session.PackItem(id); found && it.PackingList != listID {
			notFound(w, "pack item not found: "+id)
			return false
		}
	}
	return true
}

// saveBeforeDelete stores the list as a version unless the newest version
// already matches, so a bulk delete can be reverted from the history.
func (h *ItemHandler) saveBeforeDelete(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace, listID string) bool {
	live, err := ws.Versions.Items(r.Context(), listID)
	if err != nil {
		writeError(w, h.logger, err, "failed to load pack items")
		return false
	}
	if len(live) == 0 {
		return true
	}
	if _, _, err := ws.Versions.SaveIfChanged(r.Context(), listID, live, "Before delete"); err != nil {
		writeError(w, h.logger, err, "failed to save current state")
		return false
	}
	return true
}

func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	writeJSON(w, http.StatusOK, orEmpty(ws.Session.PackItems(r.PathValue("list_id"))))
}

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req mutate.NewPackItem
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		badRequest(w, "name is required")
		return
	}
	req.PackingList = r.PathValue("list_id")

	ws := h.workspace(r)
	id, err := ws.Coordinator.AddPackItem(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err, "failed to create pack item")
		return
	}
	h.changed(r, ws, req.PackingList)
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// Update replaces name, category and members of an item. Members that stay
// assigned keep their checked flag.
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string   `json:"name"`
		Category string   `json:"category"`
		Members  []string `json:"members"`
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
	it, ok := h.item(w, r, ws)
	if !ok {
		return
	}
	next := it.WithMembers(req.Members)
	next.Name = req.Name
	next.Category = req.Category
	if err := ws.Coordinator.UpdatePackItem(r.Context(), next); err != nil {
		writeError(w, h.logger, err, "failed to update pack item")
		return
	}
	h.changed(r, ws, it.PackingList)
	w.WriteHeader(http.StatusNoContent)
}

// Delete removes one item. An id that no longer exists is not an error.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	id := r.PathValue("id")
	if !h.inList(w, r, ws, []string{id}) {
		return
	}
	if err := ws.Coordinator.DeletePackItem(r.Context(), id); err != nil {
		writeError(w, h.logger, err, "failed to delete pack item")
		return
	}
	h.changed(r, ws, r.PathValue("list_id"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *ItemHandler) ToggleChecked(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	if _, ok := h.item(w, r, ws); !ok {
		return
	}
	it, err := ws.Coordinator.ToggleItemChecked(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err, "failed to toggle pack item")
		return
	}
	h.changed(r, ws, it.PackingList)
	writeJSON(w, http.StatusOK, it)
}

func (h *ItemHandler) ToggleMemberChecked(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	if _, ok := h.item(w, r, ws); !ok {
		return
	}
	memberID := r.PathValue("member_id")
	if _, err := ws.Session.Member(memberID); err != nil {
		writeError(w, h.logger, err, "failed to load member")
		return
	}
	it, err := ws.Coordinator.ToggleMemberChecked(r.Context(), r.PathValue("id"), memberID)
	if err != nil {
		writeError(w, h.logger, err, "failed to toggle member")
		return
	}
	h.changed(r, ws, it.PackingList)
	writeJSON(w, http.StatusOK, it)
}

type idsRequest struct {
	IDs []string `json:"ids"`
}

// DeleteSelected deletes the posted item ids.
func (h *ItemHandler) DeleteSelected(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	ws := h.workspace(r)
	listID := r.PathValue("list_id")
	if !h.inList(w, r, ws, req.IDs) || !h.saveBeforeDelete(w, r, ws, listID) {
		return
	}
	n, err := ws.Coordinator.DeleteItems(r.Context(), req.IDs)
	if err != nil {
		writeError(w, h.logger, err, "failed to delete pack items")
		return
	}
	h.changed(r, ws, listID)
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

func (h *ItemHandler) ClearChecked(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	listID := r.PathValue("list_id")
	if !h.saveBeforeDelete(w, r, ws, listID) {
		return
	}
	n, err := ws.Coordinator.DeleteCheckedItems(r.Context(), listID)
	if err != nil {
		writeError(w, h.logger, err, "failed to clear checked items")
		return
	}
	h.changed(r, ws, listID)
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

// DeleteCategory deletes the items of one category; an empty category
// selects the uncategorized items.
func (h *ItemHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string `json:"category"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	ws := h.workspace(r)
	if req.Category != "" {
		if _, err := ws.Session.Category(req.Category); err != nil {
			writeError(w, h.logger, err, "failed to load category")
			return
		}
	}
	listID := r.PathValue("list_id")
	if !h.saveBeforeDelete(w, r, ws, listID) {
		return
	}
	n, err := ws.Coordinator.DeleteCategoryItems(r.Context(), listID, req.Category)
	if err != nil {
		writeError(w, h.logger, err, "failed to delete category items")
		return
	}
	h.changed(r, ws, listID)
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

func (h *ItemHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs      []string `json:"ids"`
		Category string   `json:"category"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	ws := h.workspace(r)
	if !h.inList(w, r, ws, req.IDs) {
		return
	}
	if err := ws.Coordinator.MoveItemsToCategory(r.Context(), req.IDs, req.Category); err != nil {
		writeError(w, h.logger, err, "failed to move pack items")
		return
	}
	h.changed(r, ws, r.PathValue("list_id"))
	w.WriteHeader(http.StatusNoContent)
}

type membersRequest struct {
	ItemIDs   []string `json:"item_ids"`
	MemberIDs []string `json:"member_ids"`
}

func (h *ItemHandler) AddMembers(w http.ResponseWriter, r *http.Request) {
	h.updateMembers(w, r, true)
}

func (h *ItemHandler) RemoveMembers(w http.ResponseWriter, r *http.Request) {
	h.updateMembers(w, r, false)
}

func (h *ItemHandler) updateMembers(w http.ResponseWriter, r *http.Request, add bool) {
	var req membersRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	ws := h.workspace(r)
	if !h.inList(w, r, ws, req.ItemIDs) {
		return
	}
	var err error
	if add {
		err = ws.Coordinator.AddMembersToItems(r.Context(), req.ItemIDs, req.MemberIDs)
	} else {
		err = ws.Coordinator.RemoveMembersFromItems(r.Context(), req.ItemIDs, req.MemberIDs)
	}
	if err != nil {
		writeError(w, h.logger, err, "failed to update members")
		return
	}
	h.changed(r, ws, r.PathValue("list_id"))
	w.WriteHeader(http.StatusNoContent)
}

// CopyCategory appends the items of one category to another packing list.
func (h *ItemHandler) CopyCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string `json:"category"`
		Target   string `json:"target"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	if req.Target == "" {
		badRequest(w, "target is required")
		return
	}
	ws := h.workspace(r)
	n, err := ws.Coordinator.CopyCategoryToList(r.Context(), r.PathValue("list_id"), req.Category, req.Target)
	if err != nil {
		writeError(w, h.logger, err, "failed to copy category")
		return
	}
	h.changed(r, ws, req.Target)
	writeJSON(w, http.StatusOK, map[string]int{"copied": n})
}
