package mutate

import (
	"github.com/dukerupert/packlist/internal/model"
	"github.com/dukerupert/packlist/internal/remote"
)

// The helpers below stage one document write into a batch. They do no I/O;
// the batch is applied by Commit.

func namedFields(e model.NamedEntity) map[string]any {
	return map[string]any{"name": e.Name, "rank": e.Rank, "color": e.Color, "is_template": e.IsTemplate}
}

func AddMemberBatch(b *remote.Batch, m model.Member) string {
	return b.Add(remote.Members, m)
}

func UpdateMemberBatch(b *remote.Batch, m model.Member) {
	b.Update(remote.Members, m.ID, namedFields(model.NamedEntity(m)))
}

func DeleteMemberBatch(b *remote.Batch, id string) {
	b.Delete(remote.Members, id)
}

func AddCategoryBatch(b *remote.Batch, c model.Category) string {
	return b.Add(remote.Categories, c)
}

func UpdateCategoryBatch(b *remote.Batch, c model.Category) {
	b.Update(remote.Categories, c.ID, namedFields(model.NamedEntity(c)))
}

func DeleteCategoryBatch(b *remote.Batch, id string) {
	b.Delete(remote.Categories, id)
}

func AddPackingListBatch(b *remote.Batch, l model.PackingList) string {
	return b.Add(remote.PackingLists, l)
}

func UpdatePackingListBatch(b *remote.Batch, l model.PackingList) {
	b.Update(remote.PackingLists, l.ID, namedFields(model.NamedEntity(l)))
}

func DeletePackingListBatch(b *remote.Batch, id string) {
	b.Delete(remote.PackingLists, id)
}

func AddPackItemBatch(b *remote.Batch, it model.PackItem) string {
	return b.Add(remote.PackItems, it.Clone())
}

// UpdatePackItemBatch writes every mutable field of it.
func UpdatePackItemBatch(b *remote.Batch, it model.PackItem) {
	it = it.Clone()
	b.Update(remote.PackItems, it.ID, map[string]any{
		"name":         it.Name,
		"checked":      it.Checked,
		"members":      it.Members,
		"category":     it.Category,
		"packing_list": it.PackingList,
		"rank":         it.Rank,
	})
}

func DeletePackItemBatch(b *remote.Batch, id string) {
	b.Delete(remote.PackItems, id)
}

func AddImageBatch(b *remote.Batch, img model.Image) string {
	return b.Add(remote.Images, img)
}

func DeleteImageBatch(b *remote.Batch, id string) {
	b.Delete(remote.Images, id)
}
