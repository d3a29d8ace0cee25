package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/packlist/internal/grouping"
	"github.com/dukerupert/packlist/internal/prefs"
	"github.com/dukerupert/packlist/internal/workspace"
)

type PrefsHandler struct {
	base
}

func NewPrefsHandler(reg *workspace.Registry, logger *slog.Logger) *PrefsHandler {
	return &PrefsHandler{base: base{workspaces: reg, logger: logger}}
}

type prefsBody struct {
	ActiveList   *string             `json:"active_list,omitempty"`
	Fullscreen   *bool               `json:"fullscreen,omitempty"`
	CategorySort *prefs.CategorySort `json:"category_sort,omitempty"`
	Columns      *int                `json:"columns,omitempty"`
}

func (h *PrefsHandler) Get(w http.ResponseWriter, r *http.Request) {
	p := h.workspace(r).Prefs
	active, err := p.ActiveList()
	if err != nil {
		writeError(w, h.logger, err, "failed to load preferences")
		return
	}
	fullscreen, err := p.Fullscreen()
	if err != nil {
		writeError(w, h.logger, err, "failed to load preferences")
		return
	}
	sort, err := p.CategorySort()
	if err != nil {
		writeError(w, h.logger, err, "failed to load preferences")
		return
	}
	columns, err := p.Columns()
	if err != nil {
		writeError(w, h.logger, err, "failed to load preferences")
		return
	}
	writeJSON(w, http.StatusOK, prefsBody{
		ActiveList:   &active,
		Fullscreen:   &fullscreen,
		CategorySort: &sort,
		Columns:      &columns,
	})
}

// Update sets the preferences present in the body and leaves the rest.
func (h *PrefsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req prefsBody
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	if req.CategorySort != nil && *req.CategorySort != prefs.SortByRank && *req.CategorySort != prefs.SortByName {
		badRequest(w, "category_sort must be rank or name")
		return
	}
	if req.Columns != nil && (*req.Columns < 1 || *req.Columns > 3) {
		badRequest(w, "columns must be between 1 and 3")
		return
	}

	p := h.workspace(r).Prefs
	var err error
	if req.ActiveList != nil {
		err = p.SetActiveList(*req.ActiveList)
	}
	if err == nil && req.Fullscreen != nil {
		err = p.SetFullscreen(*req.Fullscreen)
	}
	if err == nil && req.CategorySort != nil {
		err = p.SetCategorySort(*req.CategorySort)
	}
	if err == nil && req.Columns != nil {
		err = p.SetColumns(*req.Columns)
	}
	if err != nil {
		writeError(w, h.logger, err, "failed to save preferences")
		return
	}
	h.Get(w, r)
}

func (h *PrefsHandler) GetFilter(w http.ResponseWriter, r *http.Request) {
	f, err := h.workspace(r).Prefs.Filter(r.PathValue("kind"))
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// UpdateFilter saves the filter of a kind; an empty filter clears it.
func (h *PrefsHandler) UpdateFilter(w http.ResponseWriter, r *http.Request) {
	var f grouping.Filter
	if err := decodeJSON(w, r, &f); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	for _, s := range f.ShowTheseStates {
		if s != grouping.StateChecked && s != grouping.StateUnchecked {
			badRequest(w, "unknown state "+s)
			return
		}
	}
	if err := h.workspace(r).Prefs.SetFilter(r.PathValue("kind"), f); err != nil {
		badRequest(w, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
