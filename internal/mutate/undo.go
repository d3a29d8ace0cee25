package mutate

import (
	"context"
	"fmt"

	"github.com/dukerupert/packlist/internal/model"
	"github.com/dukerupert/packlist/internal/remote"
)

// Undo reverts the most recent recorded action in one batch and reports
// whether there was one. Deleted documents come back under new ids; order
// entries are re-applied to the documents that still exist. When the commit
// fails the action stays on the stack.
func (c *Coordinator) Undo(ctx context.Context) (model.UndoAction, bool, error) {
	a, ok := c.history.Pop()
	if !ok {
		return model.UndoAction{}, false, nil
	}

	b := c.client.InitBatch()
	if err := c.stageInverse(ctx, b, a); err != nil {
		c.history.Push(a)
		return a, false, err
	}
	if b.Len() > 0 {
		if err := c.commit(ctx, b, "undo "+string(a.Type)); err != nil {
			c.history.Push(a)
			return a, false, err
		}
	}
	c.logger.Info("action undone", "type", a.Type, "writes", b.Len())
	return a, true, nil
}

func (c *Coordinator) stageInverse(ctx context.Context, b *remote.Batch, a model.UndoAction) error {
	switch a.Type {
	case model.UndoDeleteItems, model.UndoDeleteCheckedItems, model.UndoDeleteCategoryItems, model.UndoDeletePackItem:
		for _, it := range a.Data.Items {
			AddPackItemBatch(b, it)
		}
	case model.UndoDeletePackingList:
		listID := ""
		if a.Data.PackingList != nil {
			listID = AddPackingListBatch(b, *a.Data.PackingList)
		}
		for _, it := range a.Data.Items {
			if listID != "" {
				it.PackingList = listID
			}
			AddPackItemBatch(b, it)
		}
		for _, img := range a.Data.Images {
			if listID != "" {
				img.TypeID = listID
			}
			AddImageBatch(b, img)
		}
	case model.UndoReorderItems, model.UndoMoveItems:
		live := map[remote.Collection]map[string]bool{}
		for _, e := range a.Data.OriginalOrder {
			coll := remote.Collection(e.Collection)
			if _, ok := live[coll]; !ok {
				docs, err := c.client.GetAll(ctx, coll)
				if err != nil {
					return fmt.Errorf("load %s: %w", coll, err)
				}
				ids := make(map[string]bool, len(docs))
				for _, d := range docs {
					ids[d.ID] = true
				}
				live[coll] = ids
			}
			if !live[coll][e.ID] {
				continue
			}
			fields := map[string]any{"rank": e.Rank}
			if coll == remote.PackItems {
				fields["category"] = e.Category
			}
			b.Update(coll, e.ID, fields)
		}
	default:
		return fmt.Errorf("undo %s: unsupported action", a.Type)
	}
	return nil
}
