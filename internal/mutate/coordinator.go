// Package mutate turns user operations into atomic batches against the
// remote store. Every multi-document operation commits exactly one batch,
// and reversible operations record an undo action once that batch commits.
package mutate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukerupert/packlist/internal/model"
	"github.com/dukerupert/packlist/internal/rank"
	"github.com/dukerupert/packlist/internal/remote"
	"github.com/dukerupert/packlist/internal/undo"
)

type Coordinator struct {
	client  *remote.Client
	history *undo.History
	logger  *slog.Logger
}

func NewCoordinator(client *remote.Client, history *undo.History, logger *slog.Logger) *Coordinator {
	if history == nil {
		history = undo.NewHistory(undo.DefaultLimit)
	}
	return &Coordinator{
		client:  client,
		history: history,
		logger:  logger.With("component", "mutate"),
	}
}

func (c *Coordinator) History() *undo.History { return c.history }

// InitBatch starts a batch for callers that compose their own writes with
// the staging helpers.
func (c *Coordinator) InitBatch() *remote.Batch { return c.client.InitBatch() }

func (c *Coordinator) commit(ctx context.Context, b *remote.Batch, what string) error {
	if err := b.Commit(ctx); err != nil {
		c.logger.Error("commit failed", "operation", what, "error", err)
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}

func (c *Coordinator) record(typ model.UndoActionType, description string, data model.UndoData) {
	c.history.Push(undo.NewAction(typ, description, data))
}

// AddNamed adds a member, category or packing list ranked above every
// existing one of its collection. A blank name is ignored and returns an
// empty id.
func (c *Coordinator) AddNamed(ctx context.Context, coll remote.Collection, e model.NamedEntity) (string, error) {
	if err := namedCollection(coll); err != nil {
		return "", err
	}
	e.Name = strings.TrimSpace(e.Name)
	if e.Name == "" {
		return "", nil
	}
	existing, err := loadAll[model.NamedEntity](ctx, c.client, coll)
	if err != nil {
		return "", err
	}
	e.ID = ""
	e.Rank = rank.OnTop(existing)
	b := c.client.InitBatch()
	var id string
	switch coll {
	case remote.Members:
		id = AddMemberBatch(b, model.Member(e))
	case remote.Categories:
		id = AddCategoryBatch(b, model.Category(e))
	default:
		id = AddPackingListBatch(b, model.PackingList(e))
	}
	if err := c.commit(ctx, b, "add "+string(coll)); err != nil {
		return "", err
	}
	return id, nil
}

func namedCollection(coll remote.Collection) error {
	switch coll {
	case remote.Members, remote.Categories, remote.PackingLists:
		return nil
	}
	return fmt.Errorf("%s is not a named collection", coll)
}

// Rename changes the name of a member, category or packing list. A blank
// name is ignored.
func (c *Coordinator) Rename(ctx context.Context, coll remote.Collection, id, name string) error {
	if err := namedCollection(coll); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	b := c.client.InitBatch()
	b.Update(coll, id, map[string]any{"name": name})
	return c.commit(ctx, b, "rename")
}

// ReorderNamed ranks the given members, categories or packing lists so that
// they sort in the order of ids. Ids that no longer exist are skipped.
func (c *Coordinator) ReorderNamed(ctx context.Context, coll remote.Collection, ids []string) error {
	if err := namedCollection(coll); err != nil {
		return err
	}
	docs, err := c.client.GetAll(ctx, coll)
	if err != nil {
		return fmt.Errorf("load %s: %w", coll, err)
	}
	live := make(map[string]bool, len(docs))
	for _, d := range docs {
		live[d.ID] = true
	}

	b := c.client.InitBatch()
	for i, id := range ids {
		if !live[id] {
			continue
		}
		b.Update(coll, id, map[string]any{"rank": rank.ForRow(len(ids), i)})
	}
	if b.Len() == 0 {
		return nil
	}
	return c.commit(ctx, b, "reorder "+string(coll))
}

// DeleteCategory deletes a category. Without force it fails with an
// IntegrityError while pack items still use the category; with force those
// items become uncategorized in the same batch.
func (c *Coordinator) DeleteCategory(ctx context.Context, id string, force bool) error {
	docs, err := c.client.Query(ctx, remote.PackItems, "category", id)
	if err != nil {
		return fmt.Errorf("find items in category: %w", err)
	}
	items, err := remote.DecodeAll[model.PackItem](docs)
	if err != nil {
		return err
	}
	if len(items) > 0 && !force {
		return newIntegrityError("category", id, itemNames(items))
	}

	b := c.client.InitBatch()
	for _, it := range items {
		it.Category = ""
		UpdatePackItemBatch(b, it)
	}
	DeleteCategoryBatch(b, id)
	if err := c.commit(ctx, b, "delete category"); err != nil {
		return err
	}
	c.logger.Info("category deleted", "id", id, "items_cleared", len(items))
	return nil
}

// DeleteMember deletes a member. Without force it fails with an
// IntegrityError while pack items are still assigned to the member; with
// force the member is removed from those items in the same batch.
func (c *Coordinator) DeleteMember(ctx context.Context, id string, force bool) error {
	docs, err := c.client.QueryArray(ctx, remote.PackItems, "members", "id", id)
	if err != nil {
		return fmt.Errorf("find items of member: %w", err)
	}
	items, err := remote.DecodeAll[model.PackItem](docs)
	if err != nil {
		return err
	}
	if len(items) > 0 && !force {
		return newIntegrityError("member", id, itemNames(items))
	}

	b := c.client.InitBatch()
	for _, it := range items {
		UpdatePackItemBatch(b, it.WithoutMember(id))
	}
	DeleteMemberBatch(b, id)
	if err := c.commit(ctx, b, "delete member"); err != nil {
		return err
	}
	c.logger.Info("member deleted", "id", id, "items_updated", len(items))
	return nil
}

func itemNames(items []model.PackItem) []string {
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	return names
}
