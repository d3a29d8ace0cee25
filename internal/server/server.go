package server

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/packlist/internal/config"
	"github.com/dukerupert/packlist/internal/handler"
	"github.com/dukerupert/packlist/internal/middleware"
	"github.com/dukerupert/packlist/internal/remote"
	ws "github.com/dukerupert/packlist/internal/websocket"
	"github.com/dukerupert/packlist/internal/workspace"
)

type Server struct {
	db         *sql.DB
	hub        *ws.Hub
	broker     *remote.Broker
	workspaces *workspace.Registry
	limiter    *middleware.WriteLimiter
	memberH    *handler.NamedHandler
	categoryH  *handler.NamedHandler
	listH      *handler.NamedHandler
	itemH      *handler.ItemHandler
	viewH      *handler.ViewHandler
	undoH      *handler.UndoHandler
	versionH   *handler.VersionHandler
	prefsH     *handler.PrefsHandler
	logger     *slog.Logger
}

func New(db *sql.DB, cfg config.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))
	broker := remote.NewBroker(logger.With("component", "broker"))
	broker.OnChange(hub.HandleChange)

	workspaces := workspace.NewRegistry(db, broker, workspace.Options{
		UndoLimit:       cfg.UndoLimit,
		VersionDebounce: cfg.VersionDebounce,
	}, logger)

	return &Server{
		db:         db,
		hub:        hub,
		broker:     broker,
		workspaces: workspaces,
		limiter:    middleware.NewWriteLimiter(cfg.WriteLimit, time.Minute),
		memberH:    handler.NewNamedHandler(workspaces, remote.Members, logger.With("component", "members")),
		categoryH:  handler.NewNamedHandler(workspaces, remote.Categories, logger.With("component", "categories")),
		listH:      handler.NewNamedHandler(workspaces, remote.PackingLists, logger.With("component", "packing_lists")),
		itemH:      handler.NewItemHandler(workspaces, logger.With("component", "pack_items")),
		viewH:      handler.NewViewHandler(workspaces, logger.With("component", "view")),
		undoH:      handler.NewUndoHandler(workspaces, logger.With("component", "undo")),
		versionH:   handler.NewVersionHandler(workspaces, logger.With("component", "versions")),
		prefsH:     handler.NewPrefsHandler(workspaces, logger.With("component", "prefs")),
		logger:     logger,
	}
}

// Broker returns the change broker, for attaching a cross-instance relay.
func (s *Server) Broker() *remote.Broker {
	return s.broker
}

// WriteLimiter returns the rate limiter for cleanup tasks.
func (s *Server) WriteLimiter() *middleware.WriteLimiter {
	return s.limiter
}

// Close stops pending automatic saves and releases subscriptions.
func (s *Server) Close() {
	s.workspaces.Close()
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()
	outerMux.HandleFunc("GET /health", s.healthHandler)

	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	protected := middleware.RequireUser(middleware.LimitWrites(s.limiter)(protectedMux))
	outerMux.Handle("/", protected)

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := s.db.PingContext(r.Context()); err != nil {
		status, code = "unavailable", http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write([]byte(`{"status":"` + status + `"}`))
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))

	for prefix, h := range map[string]*handler.NamedHandler{
		"/api/members":    s.memberH,
		"/api/categories": s.categoryH,
		"/api/lists":      s.listH,
	} {
		mux.HandleFunc("GET "+prefix, h.List)
		mux.HandleFunc("POST "+prefix, h.Create)
		mux.HandleFunc("PUT "+prefix+"/order", h.UpdateOrder)
		mux.HandleFunc("PUT "+prefix+"/{id}", h.Rename)
		mux.HandleFunc("DELETE "+prefix+"/{id}", h.Delete)
	}
	mux.HandleFunc("POST /api/lists/{id}/copy", s.listH.Copy)

	// Pack items
	mux.HandleFunc("GET /api/lists/{list_id}/items", s.itemH.List)
	mux.HandleFunc("POST /api/lists/{list_id}/items", s.itemH.Create)
	mux.HandleFunc("PUT /api/lists/{list_id}/items/{id}", s.itemH.Update)
	mux.HandleFunc("DELETE /api/lists/{list_id}/items/{id}", s.itemH.Delete)
	mux.HandleFunc("POST /api/lists/{list_id}/items/{id}/check", s.itemH.ToggleChecked)
	mux.HandleFunc("POST /api/lists/{list_id}/items/{id}/members/{member_id}/check", s.itemH.ToggleMemberChecked)
	mux.HandleFunc("POST /api/lists/{list_id}/items/delete", s.itemH.DeleteSelected)
	mux.HandleFunc("POST /api/lists/{list_id}/items/move", s.itemH.Move)
	mux.HandleFunc("POST /api/lists/{list_id}/items/members", s.itemH.AddMembers)
	mux.HandleFunc("POST /api/lists/{list_id}/items/members/remove", s.itemH.RemoveMembers)
	mux.HandleFunc("POST /api/lists/{list_id}/clear-checked", s.itemH.ClearChecked)
	mux.HandleFunc("POST /api/lists/{list_id}/categories/delete", s.itemH.DeleteCategory)
	mux.HandleFunc("POST /api/lists/{list_id}/categories/copy", s.itemH.CopyCategory)

	// Layout
	mux.HandleFunc("GET /api/lists/{list_id}/view", s.viewH.Get)
	mux.HandleFunc("POST /api/lists/{list_id}/reorder", s.viewH.Reorder)
	mux.HandleFunc("GET /api/dangling", s.viewH.Dangling)
	mux.HandleFunc("POST /api/dangling/heal", s.viewH.Heal)

	// Undo
	mux.HandleFunc("GET /api/undo", s.undoH.History)
	mux.HandleFunc("POST /api/undo", s.undoH.Undo)

	// Versions
	mux.HandleFunc("GET /api/lists/{list_id}/versions", s.versionH.List)
	mux.HandleFunc("POST /api/lists/{list_id}/versions", s.versionH.Save)
	mux.HandleFunc("POST /api/lists/{list_id}/versions/prune", s.versionH.Prune)
	mux.HandleFunc("GET /api/lists/{list_id}/versions/{id}", s.versionH.Get)
	mux.HandleFunc("POST /api/lists/{list_id}/versions/{id}/restore", s.versionH.Restore)
	mux.HandleFunc("DELETE /api/lists/{list_id}/versions/{id}", s.versionH.Delete)

	// Preferences
	mux.HandleFunc("GET /api/prefs", s.prefsH.Get)
	mux.HandleFunc("PUT /api/prefs", s.prefsH.Update)
	mux.HandleFunc("GET /api/prefs/filters/{kind}", s.prefsH.GetFilter)
	mux.HandleFunc("PUT /api/prefs/filters/{kind}", s.prefsH.UpdateFilter)
}
