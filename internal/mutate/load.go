package mutate

import (
	"context"
	"fmt"

	"github.com/dukerupert/packlist/internal/model"
	"github.com/dukerupert/packlist/internal/remote"
)

func loadAll[T any](ctx context.Context, c *remote.Client, coll remote.Collection) ([]T, error) {
	docs, err := c.GetAll(ctx, coll)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", coll, err)
	}
	return remote.DecodeAll[T](docs)
}

func loadOne[T any](ctx context.Context, c *remote.Client, coll remote.Collection, id string) (*T, error) {
	doc, err := c.Get(ctx, coll, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	var v T
	if err := doc.Decode(&v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Coordinator) itemsOfList(ctx context.Context, listID string) ([]model.PackItem, error) {
	docs, err := c.client.Query(ctx, remote.PackItems, "packing_list", listID)
	if err != nil {
		return nil, fmt.Errorf("load items of list %s: %w", listID, err)
	}
	return remote.DecodeAll[model.PackItem](docs)
}

// itemsByID loads the requested items that still exist, in request order.
func (c *Coordinator) itemsByID(ctx context.Context, ids []string) ([]model.PackItem, error) {
	all, err := loadAll[model.PackItem](ctx, c.client, remote.PackItems)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]model.PackItem, len(all))
	for _, it := range all {
		byID[it.ID] = it
	}
	var out []model.PackItem
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if it, ok := byID[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, it)
		}
	}
	return out, nil
}

func (c *Coordinator) packItem(ctx context.Context, id string) (model.PackItem, error) {
	it, err := loadOne[model.PackItem](ctx, c.client, remote.PackItems, id)
	if err != nil {
		return model.PackItem{}, fmt.Errorf("load pack item: %w", err)
	}
	if it == nil {
		return model.PackItem{}, NotFoundError{Kind: "pack item", ID: id}
	}
	return *it, nil
}

// checkRefs verifies that the packing list, category and members an item is
// about to point at exist. Empty listID or categoryID skip that check; the
// empty category is "uncategorized".
func (c *Coordinator) checkRefs(ctx context.Context, listID, categoryID string, memberIDs []string) error {
	if listID != "" {
		l, err := loadOne[model.PackingList](ctx, c.client, remote.PackingLists, listID)
		if err != nil {
			return fmt.Errorf("load packing list: %w", err)
		}
		if l == nil {
			return NotFoundError{Kind: "packing list", ID: listID}
		}
	}
	if categoryID != "" {
		cat, err := loadOne[model.Category](ctx, c.client, remote.Categories, categoryID)
		if err != nil {
			return fmt.Errorf("load category: %w", err)
		}
		if cat == nil {
			return NotFoundError{Kind: "category", ID: categoryID}
		}
	}
	if len(memberIDs) == 0 {
		return nil
	}
	members, err := loadAll[model.Member](ctx, c.client, remote.Members)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(members))
	for _, m := range members {
		known[m.ID] = true
	}
	for _, id := range memberIDs {
		if !known[id] {
			return NotFoundError{Kind: "member", ID: id}
		}
	}
	return nil
}
