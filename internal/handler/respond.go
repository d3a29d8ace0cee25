package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/dukerupert/packlist/internal/auth"
	"github.com/dukerupert/packlist/internal/model"
	"github.com/dukerupert/packlist/internal/mutate"
	"github.com/dukerupert/packlist/internal/remote"
	"github.com/dukerupert/packlist/internal/workspace"
)

// maxBody caps request bodies.
const maxBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

// writeError maps engine errors to status codes. Unexpected errors are
// logged and reported as msg without details.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error, msg string) {
	var integrity mutate.IntegrityError
	var notFound mutate.NotFoundError
	var missing model.MissingReferenceError
	var unknown remote.UnknownCollectionError
	switch {
	case errors.As(err, &integrity):
		writeJSON(w, http.StatusConflict, map[string]any{"error": integrity.Error(), "integrity": integrity})
	case errors.As(err, &notFound), errors.As(err, &missing), errors.Is(err, remote.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.As(err, &unknown):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		logger.Error(msg, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": msg})
	}
}

func boolParam(r *http.Request, name string) bool {
	ok, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return ok
}

// base carries what every handler needs to resolve the caller's workspace.
type base struct {
	workspaces *workspace.Registry
	logger     *slog.Logger
}

func (b base) workspace(r *http.Request) *workspace.Workspace {
	return b.workspaces.For(auth.UserID(r.Context()))
}

// synced reloads the caller's session after a successful write so the next
// read sees it without waiting for the watch. The write already happened, so
// a failure is only logged.
func (b base) synced(r *http.Request, ws *workspace.Workspace) {
	if err := ws.Hydrate(r.Context()); err != nil {
		b.logger.Warn("refresh session after write", "user", ws.UserID, "error", err)
	}
}

func notFound(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusNotFound, map[string]string{"error": msg})
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
