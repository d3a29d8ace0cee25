package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/packlist/internal/workspace"
)

type UndoHandler struct {
	base
}

func NewUndoHandler(reg *workspace.Registry, logger *slog.Logger) *UndoHandler {
	return &UndoHandler{base: base{workspaces: reg, logger: logger}}
}

// History lists the undoable actions, newest first.
func (h *UndoHandler) History(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, orEmpty(h.workspace(r).Coordinator.History().Actions()))
}

// Undo reverts the most recent action. With an empty history it responds
// 204 and changes nothing.
func (h *UndoHandler) Undo(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	action, ok, err := ws.Coordinator.Undo(r.Context())
	if err != nil {
		writeError(w, h.logger, err, "failed to undo")
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.synced(r, ws)
	lists := map[string]bool{}
	for _, it := range action.Data.Items {
		lists[it.PackingList] = true
	}
	if action.Data.PackingList != nil {
		delete(lists, action.Data.PackingList.ID)
	}
	for id := range lists {
		ws.Versions.ScheduleSave(id)
	}
	writeJSON(w, http.StatusOK, action)
}
