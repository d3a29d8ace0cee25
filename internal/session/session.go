// Package session holds one user's hydrated entity model and derives the
// grouped, filtered and column-balanced view from it.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dukerupert/packlist/internal/model"
	"github.com/dukerupert/packlist/internal/rank"
	"github.com/dukerupert/packlist/internal/remote"
)

// Session is the in-memory copy of a user's members, categories, pack items
// and packing lists. Every refresh from the store replaces a collection
// wholesale; readers get copies.
type Session struct {
	client *remote.Client
	logger *slog.Logger

	loadMu     sync.Mutex
	mu         sync.RWMutex
	members    []model.Member
	categories []model.Category
	items      []model.PackItem
	lists      []model.PackingList
	unsubs     []func()
}

func New(client *remote.Client, logger *slog.Logger) *Session {
	return &Session{
		client: client,
		logger: logger.With("component", "session", "user", client.UserID()),
	}
}

func (s *Session) Client() *remote.Client { return s.client }

// Hydrate loads every collection concurrently.
func (s *Session) Hydrate(ctx context.Context) error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	var (
		members    []model.Member
		categories []model.Category
		items      []model.PackItem
		lists      []model.PackingList
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		members, err = load[model.Member](ctx, s.client, remote.Members)
		return err
	})
	g.Go(func() (err error) {
		categories, err = load[model.Category](ctx, s.client, remote.Categories)
		return err
	})
	g.Go(func() (err error) {
		items, err = load[model.PackItem](ctx, s.client, remote.PackItems)
		return err
	})
	g.Go(func() (err error) {
		lists, err = load[model.PackingList](ctx, s.client, remote.PackingLists)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("hydrate session: %w", err)
	}

	s.mu.Lock()
	s.members, s.categories, s.items, s.lists = members, categories, items, lists
	s.mu.Unlock()
	s.logger.Debug("session hydrated", "members", len(members), "categories", len(categories), "items", len(items), "lists", len(lists))
	return nil
}

func load[T any](ctx context.Context, c *remote.Client, coll remote.Collection) ([]T, error) {
	docs, err := c.GetAll(ctx, coll)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", coll, err)
	}
	return remote.DecodeAll[T](docs)
}

// Watch keeps the session current: every change to one of its collections
// reloads that collection and then calls onChange, which may be nil.
func (s *Session) Watch(ctx context.Context, onChange func(remote.Collection)) error {
	for _, coll := range []remote.Collection{remote.Members, remote.Categories, remote.PackItems, remote.PackingLists} {
		unsub, err := s.client.Subscribe(ctx, coll, func([]remote.Document) {
			if err := s.reload(ctx, coll); err != nil {
				if ctx.Err() == nil {
					s.logger.Error("apply change", "collection", coll, "error", err)
				}
				return
			}
			if onChange != nil {
				onChange(coll)
			}
		})
		if err != nil {
			s.Close()
			return fmt.Errorf("watch %s: %w", coll, err)
		}
		s.mu.Lock()
		s.unsubs = append(s.unsubs, unsub)
		s.mu.Unlock()
	}
	s.logger.Debug("session watching")
	return nil
}

// reload reads one collection and installs it. Reads and installs are
// serialized with Hydrate so an older snapshot never replaces a newer one.
func (s *Session) reload(ctx context.Context, coll remote.Collection) error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	switch coll {
	case remote.Members:
		v, err := load[model.Member](ctx, s.client, coll)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.members = v
		s.mu.Unlock()
	case remote.Categories:
		v, err := load[model.Category](ctx, s.client, coll)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.categories = v
		s.mu.Unlock()
	case remote.PackItems:
		v, err := load[model.PackItem](ctx, s.client, coll)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.items = v
		s.mu.Unlock()
	case remote.PackingLists:
		v, err := load[model.PackingList](ctx, s.client, coll)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.lists = v
		s.mu.Unlock()
	}
	return nil
}

// Close ends the subscriptions opened by Watch.
func (s *Session) Close() {
	s.mu.Lock()
	unsubs := s.unsubs
	s.unsubs = nil
	s.mu.Unlock()
	for _, u := range unsubs {
		u()
	}
}

// Members returns the members sorted by rank.
func (s *Session) Members() []model.Member {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return rank.Sorted(s.members)
}

func (s *Session) Categories() []model.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return rank.Sorted(s.categories)
}

func (s *Session) PackingLists() []model.PackingList {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return rank.Sorted(s.lists)
}

// PackItems returns copies of the items of listID sorted by rank.
func (s *Session) PackItems(listID string) []model.PackItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.PackItem
	for _, it := range s.items {
		if it.PackingList == listID {
			out = append(out, it.Clone())
		}
	}
	return rank.Sorted(out)
}

// PackItem returns the item or false when it is not hydrated.
func (s *Session) PackItem(id string) (model.PackItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if it.ID == id {
			return it.Clone(), true
		}
	}
	return model.PackItem{}, false
}

// Member looks up a member. A missing id is reported as a
// MissingReferenceError.
func (s *Session) Member(id string) (model.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := slices.IndexFunc(s.members, func(m model.Member) bool { return m.ID == id })
	if i < 0 {
		return model.Member{}, model.MissingReferenceError{Kind: "member", ID: id}
	}
	return s.members[i], nil
}

func (s *Session) Category(id string) (model.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := slices.IndexFunc(s.categories, func(c model.Category) bool { return c.ID == id })
	if i < 0 {
		return model.Category{}, model.MissingReferenceError{Kind: "category", ID: id}
	}
	return s.categories[i], nil
}

func (s *Session) PackingList(id string) (model.PackingList, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := slices.IndexFunc(s.lists, func(l model.PackingList) bool { return l.ID == id })
	if i < 0 {
		return model.PackingList{}, model.MissingReferenceError{Kind: "packing list", ID: id}
	}
	return s.lists[i], nil
}
