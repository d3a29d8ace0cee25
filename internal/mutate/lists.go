package mutate

import (
	"context"
	"fmt"
	"strings"

	"github.com/dukerupert/packlist/internal/layout"
	"github.com/dukerupert/packlist/internal/model"
	"github.com/dukerupert/packlist/internal/rank"
	"github.com/dukerupert/packlist/internal/remote"
)

// CommitReorder persists a reordered flat row sequence: row i of n gets
// rank n-i and items take the category of the header above them. Rows whose
// documents were deleted meanwhile are skipped.
func (c *Coordinator) CommitReorder(ctx context.Context, flat []layout.Row) error {
	if len(flat) == 0 {
		return nil
	}
	items, err := loadAll[model.PackItem](ctx, c.client, remote.PackItems)
	if err != nil {
		return err
	}
	categories, err := loadAll[model.Category](ctx, c.client, remote.Categories)
	if err != nil {
		return err
	}
	liveItems := make(map[string]model.PackItem, len(items))
	for _, it := range items {
		liveItems[it.ID] = it
	}
	liveCats := make(map[string]model.Category, len(categories))
	for _, cat := range categories {
		liveCats[cat.ID] = cat
	}

	b := c.client.InitBatch()
	var original []model.OrderEntry
	for _, r := range layout.AssignRanks(flat) {
		switch r.Kind {
		case layout.RowCategory:
			cat, ok := liveCats[r.Category.ID]
			if !ok {
				continue
			}
			original = append(original, model.OrderEntry{Collection: string(remote.Categories), ID: cat.ID, Rank: cat.Rank})
			b.Update(remote.Categories, cat.ID, map[string]any{"rank": r.Category.Rank})
		case layout.RowItem:
			it, ok := liveItems[r.Item.ID]
			if !ok {
				continue
			}
			original = append(original, model.OrderEntry{Collection: string(remote.PackItems), ID: it.ID, Rank: it.Rank, Category: it.Category})
			b.Update(remote.PackItems, it.ID, map[string]any{"rank": r.Item.Rank, "category": r.Item.Category})
		}
	}
	if b.Len() == 0 {
		return nil
	}
	if err := c.commit(ctx, b, "reorder items"); err != nil {
		return err
	}
	c.record(model.UndoReorderItems, "Reorder items", model.UndoData{OriginalOrder: original})
	return nil
}

// CopyPackingList copies a list and its items into a new list ranked on top.
// Copied items start unchecked. A blank name derives one from the source.
func (c *Coordinator) CopyPackingList(ctx context.Context, listID, name string) (string, error) {
	src, err := loadOne[model.PackingList](ctx, c.client, remote.PackingLists, listID)
	if err != nil {
		return "", fmt.Errorf("load packing list: %w", err)
	}
	if src == nil {
		return "", NotFoundError{Kind: "packing list", ID: listID}
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = src.Name + " (copy)"
	}
	lists, err := loadAll[model.PackingList](ctx, c.client, remote.PackingLists)
	if err != nil {
		return "", err
	}
	items, err := c.itemsOfList(ctx, listID)
	if err != nil {
		return "", err
	}

	b := c.client.InitBatch()
	newID := AddPackingListBatch(b, model.PackingList{Name: name, Color: src.Color, Rank: rank.OnTop(lists)})
	for _, it := range items {
		cp := it.WithChecked(false)
		cp.PackingList = newID
		AddPackItemBatch(b, cp)
	}
	if err := c.commit(ctx, b, "copy packing list"); err != nil {
		return "", err
	}
	c.logger.Info("packing list copied", "source", listID, "copy", newID, "items", len(items))
	return newID, nil
}

// CopyCategoryToList appends the items of one category of srcList to the
// bottom of the same category in dstList, unchecked and in their original
// order.
func (c *Coordinator) CopyCategoryToList(ctx context.Context, srcList, categoryID, dstList string) (int, error) {
	if srcList == dstList {
		return 0, nil
	}
	if err := c.checkRefs(ctx, dstList, "", nil); err != nil {
		return 0, err
	}
	srcItems, err := c.itemsOfList(ctx, srcList)
	if err != nil {
		return 0, err
	}
	dstItems, err := c.itemsOfList(ctx, dstList)
	if err != nil {
		return 0, err
	}

	b := c.client.InitBatch()
	for _, it := range rank.Sorted(srcItems) {
		if it.Category != categoryID {
			continue
		}
		cp := it.WithChecked(false)
		cp.PackingList = dstList
		cp.Rank = rank.BottomOfCategory(dstItems, categoryID)
		AddPackItemBatch(b, cp)
		dstItems = append(dstItems, cp)
	}
	if b.Len() == 0 {
		return 0, nil
	}
	if err := c.commit(ctx, b, "copy category"); err != nil {
		return 0, err
	}
	return b.Len(), nil
}

// DeletePackingList deletes a list together with its items and images.
// Deleting an absent list does nothing.
func (c *Coordinator) DeletePackingList(ctx context.Context, listID string) error {
	list, err := loadOne[model.PackingList](ctx, c.client, remote.PackingLists, listID)
	if err != nil {
		return fmt.Errorf("load packing list: %w", err)
	}
	if list == nil {
		return nil
	}
	items, err := c.itemsOfList(ctx, listID)
	if err != nil {
		return err
	}
	imageDocs, err := c.client.Query(ctx, remote.Images, "type_id", listID)
	if err != nil {
		return fmt.Errorf("load list images: %w", err)
	}
	allImages, err := remote.DecodeAll[model.Image](imageDocs)
	if err != nil {
		return err
	}
	var images []model.Image
	for _, img := range allImages {
		if img.Type == string(remote.PackingLists) {
			images = append(images, img)
		}
	}

	b := c.client.InitBatch()
	for _, it := range items {
		DeletePackItemBatch(b, it.ID)
	}
	for _, img := range images {
		DeleteImageBatch(b, img.ID)
	}
	DeletePackingListBatch(b, listID)
	if err := c.commit(ctx, b, "delete packing list"); err != nil {
		return err
	}

	snapshot := *list
	c.record(model.UndoDeletePackingList, fmt.Sprintf("Delete %s", list.Name), model.UndoData{
		PackingList: &snapshot,
		Items:       items,
		Images:      images,
	})
	c.logger.Info("packing list deleted", "id", listID, "items", len(items), "images", len(images))
	return nil
}

// HealDanglingReferences clears categories and removes members that no
// longer exist from every pack item, in one batch. It returns the number of
// items repaired.
func (c *Coordinator) HealDanglingReferences(ctx context.Context) (int, error) {
	members, err := loadAll[model.Member](ctx, c.client, remote.Members)
	if err != nil {
		return 0, err
	}
	categories, err := loadAll[model.Category](ctx, c.client, remote.Categories)
	if err != nil {
		return 0, err
	}
	items, err := loadAll[model.PackItem](ctx, c.client, remote.PackItems)
	if err != nil {
		return 0, err
	}
	memberIDs := make(map[string]bool, len(members))
	for _, m := range members {
		memberIDs[m.ID] = true
	}
	categoryIDs := make(map[string]bool, len(categories))
	for _, cat := range categories {
		categoryIDs[cat.ID] = true
	}

	b := c.client.InitBatch()
	for _, it := range items {
		changed := false
		next := it.Clone()
		if next.Category != "" && !categoryIDs[next.Category] {
			next.Category = ""
			changed = true
		}
		for _, m := range it.Members {
			if !memberIDs[m.ID] {
				next = next.WithoutMember(m.ID)
				changed = true
			}
		}
		if changed {
			UpdatePackItemBatch(b, next)
		}
	}
	if b.Len() == 0 {
		return 0, nil
	}
	if err := c.commit(ctx, b, "heal dangling references"); err != nil {
		return 0, err
	}
	c.logger.Warn("dangling references healed", "items", b.Len())
	return b.Len(), nil
}
