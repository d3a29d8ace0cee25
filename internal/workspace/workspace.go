// Package workspace builds and caches the per-user set of engine
// components that serve a user's requests.
package workspace

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/packlist/internal/mutate"
	"github.com/dukerupert/packlist/internal/prefs"
	"github.com/dukerupert/packlist/internal/remote"
	"github.com/dukerupert/packlist/internal/session"
	"github.com/dukerupert/packlist/internal/undo"
	"github.com/dukerupert/packlist/internal/version"
)

// Workspace is one user's view of the engine.
type Workspace struct {
	UserID      string
	Client      *remote.Client
	Coordinator *mutate.Coordinator
	Versions    *version.Manager
	Session     *session.Session
	Prefs       *prefs.Store
}

// Hydrate refreshes the session from the store. Write paths call it so the
// caller reads its own writes before the watch delivers them.
func (w *Workspace) Hydrate(ctx context.Context) error {
	return w.Session.Hydrate(ctx)
}

type Options struct {
	UndoLimit       int
	VersionDebounce time.Duration
}

// Registry lazily creates a Workspace per user and shares the broker and
// undo histories between requests of the same user.
type Registry struct {
	db      *sql.DB
	broker  *remote.Broker
	history *undo.Registry
	opts    Options
	logger  *slog.Logger

	mu    sync.Mutex
	users map[string]*Workspace
}

func NewRegistry(db *sql.DB, broker *remote.Broker, opts Options, logger *slog.Logger) *Registry {
	return &Registry{
		db:      db,
		broker:  broker,
		history: undo.NewRegistry(opts.UndoLimit),
		opts:    opts,
		logger:  logger,
		users:   make(map[string]*Workspace),
	}
}

// For returns the user's workspace, creating it on first use. A new
// workspace's session is loaded and then kept current by watching the store.
func (r *Registry) For(userID string) *Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w, ok := r.users[userID]; ok {
		return w
	}
	client := remote.NewClient(r.db, r.broker, userID, r.logger)
	w := &Workspace{
		UserID:      userID,
		Client:      client,
		Coordinator: mutate.NewCoordinator(client, r.history.For(userID), r.logger),
		Versions:    version.NewManager(client, r.opts.VersionDebounce, r.logger),
		Session:     session.New(client, r.logger),
		Prefs:       prefs.NewStore(r.db, userID),
	}
	if err := w.Session.Watch(context.Background(), nil); err != nil {
		r.logger.Error("watch session", "user", userID, "error", err)
	}
	r.users[userID] = w
	return w
}

// Close stops pending automatic saves and releases every subscription.
func (r *Registry) Close() {
	r.mu.Lock()
	users := r.users
	r.users = make(map[string]*Workspace)
	r.mu.Unlock()

	for _, w := range users {
		w.Versions.Close()
		w.Session.Close()
		w.Client.DisposeAll()
	}
}
