package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/packlist/internal/layout"
	"github.com/dukerupert/packlist/internal/prefs"
	"github.com/dukerupert/packlist/internal/session"
	"github.com/dukerupert/packlist/internal/workspace"
)

// DefaultFilterKind names the saved filter applied to list views when the
// request does not pick one.
const DefaultFilterKind = "packlist"

type ViewHandler struct {
	base
}

func NewViewHandler(reg *workspace.Registry, logger *slog.Logger) *ViewHandler {
	return &ViewHandler{base: base{workspaces: reg, logger: logger}}
}

// viewOptions combines the saved preferences with per-request overrides:
// ?columns=N, ?select=true and ?filter=<kind>.
func viewOptions(r *http.Request, p *prefs.Store) (session.ViewOptions, error) {
	q := r.URL.Query()
	kind := q.Get("filter")
	if kind == "" {
		kind = DefaultFilterKind
	}
	filter, err := p.Filter(kind)
	if err != nil {
		return session.ViewOptions{}, err
	}
	columns, err := p.Columns()
	if err != nil {
		return session.ViewOptions{}, err
	}
	if n, err := strconv.Atoi(q.Get("columns")); err == nil && n >= 1 {
		columns = n
	}
	sort, err := p.CategorySort()
	if err != nil {
		return session.ViewOptions{}, err
	}
	return session.ViewOptions{
		Filter:           filter,
		Columns:          columns,
		SelectMode:       boolParam(r, "select"),
		CategoriesByName: sort == prefs.SortByName,
	}, nil
}

func (h *ViewHandler) Get(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	opts, err := viewOptions(r, ws.Prefs)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	listID := r.PathValue("list_id")
	if _, err := ws.Session.PackingList(listID); err != nil {
		writeError(w, h.logger, err, "failed to load packing list")
		return
	}
	writeJSON(w, http.StatusOK, ws.Session.View(listID, opts))
}

// Reorder applies a finished drag to the current view of the list, commits
// the new ranks and returns the view after the move. A drag that moves
// nothing returns the unchanged view.
func (h *ViewHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var drag layout.DragResult
	if err := decodeJSON(w, r, &drag); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	ws := h.workspace(r)
	opts, err := viewOptions(r, ws.Prefs)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	listID := r.PathValue("list_id")
	if _, err := ws.Session.PackingList(listID); err != nil {
		writeError(w, h.logger, err, "failed to load packing list")
		return
	}
	view := ws.Session.View(listID, opts)

	flat, _ := layout.Reorder(drag, view.Columns, opts.Columns, opts.VisibleMembers(), opts.SelectMode)
	if flat == nil {
		writeJSON(w, http.StatusOK, view)
		return
	}
	if err := ws.Coordinator.CommitReorder(r.Context(), flat); err != nil {
		writeError(w, h.logger, err, "failed to reorder")
		return
	}
	ws.Versions.ScheduleSave(listID)
	h.synced(r, ws)
	writeJSON(w, http.StatusOK, ws.Session.View(listID, opts))
}

func (h *ViewHandler) Dangling(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, orEmpty(h.workspace(r).Session.DanglingReferences()))
}

// Heal removes references to deleted members and categories.
func (h *ViewHandler) Heal(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	n, err := ws.Coordinator.HealDanglingReferences(r.Context())
	if err != nil {
		writeError(w, h.logger, err, "failed to repair references")
		return
	}
	h.synced(r, ws)
	writeJSON(w, http.StatusOK, map[string]int{"repaired": n})
}
