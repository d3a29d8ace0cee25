package mutate

import (
	"context"
	"fmt"
	"strings"

	"github.com/dukerupert/packlist/internal/grouping"
	"github.com/dukerupert/packlist/internal/model"
	"github.com/dukerupert/packlist/internal/rank"
	"github.com/dukerupert/packlist/internal/remote"
)

// NewPackItem describes an item to add. When Category is empty and Suggest
// is set, the category is picked from the item name.
type NewPackItem struct {
	Name        string   `json:"name"`
	PackingList string   `json:"packing_list"`
	Category    string   `json:"category"`
	Members     []string `json:"members"`
	Suggest     bool     `json:"suggest"`
}

// AddPackItem adds an item on top of its packing list. A blank name is
// ignored and returns an empty id. The packing list, category and members
// must exist; otherwise a NotFoundError is returned.
func (c *Coordinator) AddPackItem(ctx context.Context, in NewPackItem) (string, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return "", nil
	}
	if err := c.checkRefs(ctx, in.PackingList, in.Category, in.Members); err != nil {
		return "", err
	}
	items, err := c.itemsOfList(ctx, in.PackingList)
	if err != nil {
		return "", err
	}
	category := in.Category
	if category == "" && in.Suggest {
		categories, err := loadAll[model.Category](ctx, c.client, remote.Categories)
		if err != nil {
			return "", err
		}
		category = grouping.SuggestCategory(name, categories)
	}

	it := model.PackItem{
		Name:        name,
		Category:    category,
		PackingList: in.PackingList,
		Rank:        rank.OnTop(items),
	}.WithMembers(in.Members)

	b := c.client.InitBatch()
	id := AddPackItemBatch(b, it)
	if err := c.commit(ctx, b, "add pack item"); err != nil {
		return "", err
	}
	return id, nil
}

// UpdatePackItem stores it as the new value of the item with its id. The
// checked aggregate is recomputed from the member flags. A blank name is
// ignored. References are validated like AddPackItem.
func (c *Coordinator) UpdatePackItem(ctx context.Context, it model.PackItem) error {
	it.Name = strings.TrimSpace(it.Name)
	if it.Name == "" {
		return nil
	}
	ids := make([]string, len(it.Members))
	for i, m := range it.Members {
		ids[i] = m.ID
	}
	if err := c.checkRefs(ctx, it.PackingList, it.Category, ids); err != nil {
		return err
	}
	it = it.WithMembers(ids)
	b := c.client.InitBatch()
	UpdatePackItemBatch(b, it)
	return c.commit(ctx, b, "update pack item")
}

// ToggleItemChecked flips an item and sets every member to the new state.
func (c *Coordinator) ToggleItemChecked(ctx context.Context, id string) (model.PackItem, error) {
	it, err := c.packItem(ctx, id)
	if err != nil {
		return model.PackItem{}, err
	}
	next := it.WithChecked(!it.Checked)
	b := c.client.InitBatch()
	UpdatePackItemBatch(b, next)
	if err := c.commit(ctx, b, "toggle pack item"); err != nil {
		return model.PackItem{}, err
	}
	return next, nil
}

// ToggleMemberChecked flips one member's flag and keeps the item aggregate
// in sync.
func (c *Coordinator) ToggleMemberChecked(ctx context.Context, itemID, memberID string) (model.PackItem, error) {
	it, err := c.packItem(ctx, itemID)
	if err != nil {
		return model.PackItem{}, err
	}
	current := false
	found := false
	for _, m := range it.Members {
		if m.ID == memberID {
			current, found = m.Checked, true
		}
	}
	if !found {
		return model.PackItem{}, NotFoundError{Kind: "member on pack item", ID: memberID}
	}
	next := it.WithMemberChecked(memberID, !current)
	b := c.client.InitBatch()
	UpdatePackItemBatch(b, next)
	if err := c.commit(ctx, b, "toggle member"); err != nil {
		return model.PackItem{}, err
	}
	return next, nil
}

// AddMembersToItems assigns memberIDs to every item in itemIDs in one batch.
// Unknown members are rejected with a NotFoundError.
func (c *Coordinator) AddMembersToItems(ctx context.Context, itemIDs, memberIDs []string) error {
	if len(itemIDs) == 0 || len(memberIDs) == 0 {
		return nil
	}
	if err := c.checkRefs(ctx, "", "", memberIDs); err != nil {
		return err
	}
	items, err := c.itemsByID(ctx, itemIDs)
	if err != nil {
		return err
	}
	b := c.client.InitBatch()
	for _, it := range items {
		ids := make([]string, 0, len(it.Members)+len(memberIDs))
		for _, m := range it.Members {
			ids = append(ids, m.ID)
		}
		ids = append(ids, memberIDs...)
		UpdatePackItemBatch(b, it.WithMembers(ids))
	}
	if b.Len() == 0 {
		return nil
	}
	return c.commit(ctx, b, "add members to items")
}

// RemoveMembersFromItems unassigns memberIDs from every item in itemIDs in
// one batch.
func (c *Coordinator) RemoveMembersFromItems(ctx context.Context, itemIDs, memberIDs []string) error {
	if len(itemIDs) == 0 || len(memberIDs) == 0 {
		return nil
	}
	items, err := c.itemsByID(ctx, itemIDs)
	if err != nil {
		return err
	}
	b := c.client.InitBatch()
	for _, it := range items {
		next := it
		for _, m := range memberIDs {
			next = next.WithoutMember(m)
		}
		UpdatePackItemBatch(b, next)
	}
	if b.Len() == 0 {
		return nil
	}
	return c.commit(ctx, b, "remove members from items")
}

func (c *Coordinator) deleteItems(ctx context.Context, items []model.PackItem, typ model.UndoActionType, description string) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	b := c.client.InitBatch()
	snapshot := make([]model.PackItem, len(items))
	for i, it := range items {
		snapshot[i] = it.Clone()
		DeletePackItemBatch(b, it.ID)
	}
	if err := c.commit(ctx, b, description); err != nil {
		return 0, err
	}
	c.record(typ, description, model.UndoData{Items: snapshot})
	c.logger.Info("pack items deleted", "count", len(items), "undo", typ)
	return len(items), nil
}

// DeletePackItem deletes one item. Deleting an absent item does nothing.
func (c *Coordinator) DeletePackItem(ctx context.Context, id string) error {
	it, err := loadOne[model.PackItem](ctx, c.client, remote.PackItems, id)
	if err != nil {
		return fmt.Errorf("load pack item: %w", err)
	}
	if it == nil {
		return nil
	}
	_, err = c.deleteItems(ctx, []model.PackItem{*it}, model.UndoDeletePackItem, fmt.Sprintf("Delete %s", it.Name))
	return err
}

// DeleteItems deletes the selected items that still exist.
func (c *Coordinator) DeleteItems(ctx context.Context, ids []string) (int, error) {
	items, err := c.itemsByID(ctx, ids)
	if err != nil {
		return 0, err
	}
	return c.deleteItems(ctx, items, model.UndoDeleteItems, fmt.Sprintf("Delete %d items", len(items)))
}

// DeleteCheckedItems deletes every checked item of a packing list.
func (c *Coordinator) DeleteCheckedItems(ctx context.Context, listID string) (int, error) {
	items, err := c.itemsOfList(ctx, listID)
	if err != nil {
		return 0, err
	}
	var checked []model.PackItem
	for _, it := range items {
		if it.Checked {
			checked = append(checked, it)
		}
	}
	return c.deleteItems(ctx, checked, model.UndoDeleteCheckedItems, fmt.Sprintf("Delete %d checked items", len(checked)))
}

// DeleteCategoryItems deletes every item of a packing list in one category;
// an empty categoryID selects the uncategorized items.
func (c *Coordinator) DeleteCategoryItems(ctx context.Context, listID, categoryID string) (int, error) {
	items, err := c.itemsOfList(ctx, listID)
	if err != nil {
		return 0, err
	}
	var inCategory []model.PackItem
	for _, it := range items {
		if it.Category == categoryID {
			inCategory = append(inCategory, it)
		}
	}
	return c.deleteItems(ctx, inCategory, model.UndoDeleteCategoryItems, fmt.Sprintf("Delete %d items from category", len(inCategory)))
}

// MoveItemsToCategory moves the items to the bottom of a category, keeping
// their relative order. An empty categoryID moves them to uncategorized.
func (c *Coordinator) MoveItemsToCategory(ctx context.Context, ids []string, categoryID string) error {
	if err := c.checkRefs(ctx, "", categoryID, nil); err != nil {
		return err
	}
	moving, err := c.itemsByID(ctx, ids)
	if err != nil {
		return err
	}
	if len(moving) == 0 {
		return nil
	}
	moving = rank.Sorted(moving)

	b := c.client.InitBatch()
	var original []model.OrderEntry
	scopes := map[string][]model.PackItem{}
	for _, it := range moving {
		list, ok := scopes[it.PackingList]
		if !ok {
			list, err = c.itemsOfList(ctx, it.PackingList)
			if err != nil {
				return err
			}
		}
		original = append(original, model.OrderEntry{Collection: string(remote.PackItems), ID: it.ID, Rank: it.Rank, Category: it.Category})

		next := it.Clone()
		next.Category = categoryID
		next.Rank = rank.BottomOfCategory(without(list, it.ID), categoryID)
		UpdatePackItemBatch(b, next)
		scopes[it.PackingList] = append(without(list, it.ID), next)
	}
	if err := c.commit(ctx, b, "move items"); err != nil {
		return err
	}
	c.record(model.UndoMoveItems, fmt.Sprintf("Move %d items", len(moving)), model.UndoData{OriginalOrder: original})
	return nil
}

func without(items []model.PackItem, id string) []model.PackItem {
	out := make([]model.PackItem, 0, len(items))
	for _, it := range items {
		if it.ID != id {
			out = append(out, it)
		}
	}
	return out
}
