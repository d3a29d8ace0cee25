package mutate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"testing"

	"github.com/dukerupert/packlist/internal/database"
	"github.com/dukerupert/packlist/internal/model"
	"github.com/dukerupert/packlist/internal/remote"
	"github.com/dukerupert/packlist/internal/undo"
)

func setupTestCoordinator(t *testing.T) (*Coordinator, *remote.Client) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	client := remote.NewClient(db, nil, "user-1", slog.Default())
	return NewCoordinator(client, undo.NewHistory(undo.DefaultLimit), slog.Default()), client
}

// mustAdd returns a checker for the (id, error) result of an add call, so
// that mustAdd(t)(addMember(ctx, co, ...)) yields the id or fails the test.
func mustAdd(t *testing.T) func(string, error) string {
	return func(id string, err error) string {
		t.Helper()
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		if id == "" {
			t.Fatal("expected id")
		}
		return id
	}
}

func allItems(t *testing.T, client *remote.Client) []model.PackItem {
	t.Helper()
	items, err := loadAll[model.PackItem](context.Background(), client, remote.PackItems)
	if err != nil {
		t.Fatalf("load items: %v", err)
	}
	return items
}

func addMember(ctx context.Context, co *Coordinator, name, color string) (string, error) {
	return co.AddNamed(ctx, remote.Members, model.NamedEntity{Name: name, Color: color})
}

func addCategory(ctx context.Context, co *Coordinator, name, color string) (string, error) {
	return co.AddNamed(ctx, remote.Categories, model.NamedEntity{Name: name, Color: color})
}

func addPackingList(ctx context.Context, co *Coordinator, name string, isTemplate bool) (string, error) {
	return co.AddNamed(ctx, remote.PackingLists, model.NamedEntity{Name: name, IsTemplate: isTemplate})
}

func newList(t *testing.T, co *Coordinator, name string) string {
	t.Helper()
	return mustAdd(t)(addPackingList(context.Background(), co, name, false))
}

func TestAddNamedRanksOnTop(t *testing.T) {
	co, client := setupTestCoordinator(t)
	ctx := context.Background()

	mustAdd(t)(addMember(ctx, co, "Alice", "#f00"))
	mustAdd(t)(addMember(ctx, co, "Bob", ""))

	members, err := loadAll[model.Member](ctx, client, remote.Members)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("got %d members, want 2", len(members))
	}
	if members[0].Rank != 0 || members[1].Rank != 1 {
		t.Errorf("ranks = %d, %d, want 0, 1", members[0].Rank, members[1].Rank)
	}
}

func TestAddBlankNameIgnored(t *testing.T) {
	co, client := setupTestCoordinator(t)
	ctx := context.Background()
	l1 := newList(t, co, "l1")

	id, err := addCategory(ctx, co, "   ", "")
	if err != nil || id != "" {
		t.Errorf("got = (%q, %v), want empty id and nil error", id, err)
	}
	id, err = co.AddPackItem(ctx, NewPackItem{Name: "", PackingList: l1})
	if err != nil || id != "" {
		t.Errorf("got = (%q, %v), want empty id and nil error", id, err)
	}
	if n := len(allItems(t, client)); n != 0 {
		t.Errorf("got %d items, want 0", n)
	}
}

func TestRenameAndReorderNamed(t *testing.T) {
	co, client := setupTestCoordinator(t)
	ctx := context.Background()

	a := mustAdd(t)(addCategory(ctx, co, "Food", ""))
	b := mustAdd(t)(addCategory(ctx, co, "Tools", ""))

	if err := co.Rename(ctx, remote.Categories, a, "Snacks"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if err := co.Rename(ctx, remote.PackItems, a, "x"); err == nil {
		t.Error("expected error renaming a pack item through Rename")
	}
	if err := co.ReorderNamed(ctx, remote.Categories, []string{a, "gone", b}); err != nil {
		t.Fatalf("reorder: %v", err)
	}

	cats, _ := loadAll[model.Category](ctx, client, remote.Categories)
	byID := map[string]model.Category{}
	for _, c := range cats {
		byID[c.ID] = c
	}
	if byID[a].Name != "Snacks" {
		t.Errorf("name = %q, want Snacks", byID[a].Name)
	}
	if byID[a].Rank <= byID[b].Rank {
		t.Errorf("rank a = %d, rank b = %d, want a above b", byID[a].Rank, byID[b].Rank)
	}
}

func TestDeleteCategoryIntegrity(t *testing.T) {
	co, client := setupTestCoordinator(t)
	ctx := context.Background()
	l1 := newList(t, co, "l1")

	cat := mustAdd(t)(addCategory(ctx, co, "Clothes", ""))
	for _, name := range []string{"Socks", "Shirt", "Hat"} {
		mustAdd(t)(co.AddPackItem(ctx, NewPackItem{Name: name, PackingList: l1, Category: cat}))
	}
	mustAdd(t)(co.AddPackItem(ctx, NewPackItem{Name: "Tent", PackingList: l1}))

	err := co.DeleteCategory(ctx, cat, false)
	var ie IntegrityError
	if !errors.As(err, &ie) {
		t.Fatalf("err = %v, want IntegrityError", err)
	}
	slices.Sort(ie.Items)
	if want := []string{"Hat", "Shirt", "Socks"}; !slices.Equal(ie.Items, want) {
		t.Errorf("items = %v, want %v", ie.Items, want)
	}
	if ie.More != 0 {
		t.Errorf("more = %d, want 0", ie.More)
	}

	if err := co.DeleteCategory(ctx, cat, true); err != nil {
		t.Fatalf("forced delete: %v", err)
	}
	for _, it := range allItems(t, client) {
		if it.Category != "" {
			t.Errorf("item %s category = %q, want cleared", it.Name, it.Category)
		}
	}
	doc, _ := client.Get(ctx, remote.Categories, cat)
	if doc != nil {
		t.Error("category still exists after forced delete")
	}
}

func TestIntegrityErrorTruncates(t *testing.T) {
	co, _ := setupTestCoordinator(t)
	ctx := context.Background()
	l1 := newList(t, co, "l1")

	m := mustAdd(t)(addMember(ctx, co, "Alice", ""))
	for i := range 8 {
		mustAdd(t)(co.AddPackItem(ctx, NewPackItem{Name: fmt.Sprintf("item%d", i), PackingList: l1, Members: []string{m}}))
	}

	err := co.DeleteMember(ctx, m, false)
	var ie IntegrityError
	if !errors.As(err, &ie) {
		t.Fatalf("err = %v, want IntegrityError", err)
	}
	if len(ie.Items) != MaxListedItems || ie.More != 3 {
		t.Errorf("got %d names and %d more, want %d and 3", len(ie.Items), ie.More, MaxListedItems)
	}
}

func TestDeleteMemberForce(t *testing.T) {
	co, client := setupTestCoordinator(t)
	ctx := context.Background()
	l1 := newList(t, co, "l1")

	alice := mustAdd(t)(addMember(ctx, co, "Alice", ""))
	bob := mustAdd(t)(addMember(ctx, co, "Bob", ""))
	id := mustAdd(t)(co.AddPackItem(ctx, NewPackItem{Name: "Boots", PackingList: l1, Members: []string{alice, bob}}))
	if _, err := co.ToggleMemberChecked(ctx, id, bob); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	if err := co.DeleteMember(ctx, alice, true); err != nil {
		t.Fatalf("forced delete: %v", err)
	}
	items := allItems(t, client)
	if len(items) != 1 || len(items[0].Members) != 1 || items[0].Members[0].ID != bob {
		t.Fatalf("members = %+v, want only bob", items[0].Members)
	}
	if !items[0].Checked {
		t.Error("item should be checked once the only remaining member is checked")
	}
}

func TestAddPackItemOnTopOfList(t *testing.T) {
	co, client := setupTestCoordinator(t)
	ctx := context.Background()
	l1 := newList(t, co, "l1")
	l2 := newList(t, co, "l2")

	mustAdd(t)(co.AddPackItem(ctx, NewPackItem{Name: "a", PackingList: l1}))
	mustAdd(t)(co.AddPackItem(ctx, NewPackItem{Name: "b", PackingList: l1}))
	mustAdd(t)(co.AddPackItem(ctx, NewPackItem{Name: "other", PackingList: l2}))

	ranks := map[string]int{}
	for _, it := range allItems(t, client) {
		ranks[it.Name] = it.Rank
	}
	if ranks["b"] <= ranks["a"] {
		t.Errorf("rank b = %d, rank a = %d, want b on top", ranks["b"], ranks["a"])
	}
	if ranks["other"] != 0 {
		t.Errorf("rank other = %d, want 0 in its own list", ranks["other"])
	}
}

func TestAddPackItemSuggestsCategory(t *testing.T) {
	co, client := setupTestCoordinator(t)
	ctx := context.Background()
	l1 := newList(t, co, "l1")

	toiletries := mustAdd(t)(addCategory(ctx, co, "Toiletries", ""))
	mustAdd(t)(co.AddPackItem(ctx, NewPackItem{Name: "Toothbrush", PackingList: l1, Suggest: true}))

	items := allItems(t, client)
	if items[0].Category != toiletries {
		t.Errorf("category = %q, want %q", items[0].Category, toiletries)
	}
}

func TestToggleItemChecked(t *testing.T) {
	co, _ := setupTestCoordinator(t)
	ctx := context.Background()
	l1 := newList(t, co, "l1")

	alice := mustAdd(t)(addMember(ctx, co, "Alice", ""))
	id := mustAdd(t)(co.AddPackItem(ctx, NewPackItem{Name: "Map", PackingList: l1, Members: []string{alice}}))

	it, err := co.ToggleItemChecked(ctx, id)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !it.Checked || !it.Members[0].Checked {
		t.Errorf("got = %+v, want item and member checked", it)
	}
	it, err = co.ToggleMemberChecked(ctx, id, alice)
	if err != nil {
		t.Fatalf("toggle member: %v", err)
	}
	if it.Checked {
		t.Error("aggregate should follow the unchecked member")
	}

	if _, err := co.ToggleItemChecked(ctx, "ghost"); err == nil {
		t.Error("expected error toggling a missing item")
	}
	if _, err := co.ToggleMemberChecked(ctx, id, "ghost"); err == nil {
		t.Error("expected error toggling a member not on the item")
	}
}

func TestBulkMembers(t *testing.T) {
	co, client := setupTestCoordinator(t)
	ctx := context.Background()
	l1 := newList(t, co, "l1")
	m1 := mustAdd(t)(addMember(ctx, co, "Alice", ""))
	m2 := mustAdd(t)(addMember(ctx, co, "Bob", ""))

	a := mustAdd(t)(co.AddPackItem(ctx, NewPackItem{Name: "a", PackingList: l1}))
	b := mustAdd(t)(co.AddPackItem(ctx, NewPackItem{Name: "b", PackingList: l1, Members: []string{m1}}))

	if err := co.AddMembersToItems(ctx, []string{a, b}, []string{m1, m2}); err != nil {
		t.Fatalf("add members: %v", err)
	}
	for _, it := range allItems(t, client) {
		if len(it.Members) != 2 {
			t.Errorf("item %s has %d members, want 2", it.Name, len(it.Members))
		}
	}
	if err := co.RemoveMembersFromItems(ctx, []string{a, b}, []string{m1}); err != nil {
		t.Fatalf("remove members: %v", err)
	}
	for _, it := range allItems(t, client) {
		if len(it.Members) != 1 || it.Members[0].ID != m2 {
			t.Errorf("item %s members = %+v, want only %s", it.Name, it.Members, m2)
		}
	}

	err := co.AddMembersToItems(ctx, []string{a}, []string{m1, "ghost"})
	var nf NotFoundError
	if !errors.As(err, &nf) || nf.Kind != "member" || nf.ID != "ghost" {
		t.Fatalf("err = %v, want member not found", err)
	}
	for _, it := range allItems(t, client) {
		if it.ID == a && len(it.Members) != 1 {
			t.Errorf("members after rejected add = %+v, want unchanged", it.Members)
		}
	}
}

func TestPackItemReferencesMustExist(t *testing.T) {
	co, client := setupTestCoordinator(t)
	ctx := context.Background()
	l1 := newList(t, co, "l1")
	cat := mustAdd(t)(addCategory(ctx, co, "Gear", ""))
	alice := mustAdd(t)(addMember(ctx, co, "Alice", ""))

	tests := []struct {
		name string
		in   NewPackItem
		kind string
		id   string
	}{
		{"unknown list", NewPackItem{Name: "x", PackingList: "nope"}, "packing list", "nope"},
		{"unknown category", NewPackItem{Name: "x", PackingList: l1, Category: "nope"}, "category", "nope"},
		{"unknown member", NewPackItem{Name: "x", PackingList: l1, Members: []string{alice, "nope"}}, "member", "nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := co.AddPackItem(ctx, tt.in)
			var nf NotFoundError
			if !errors.As(err, &nf) {
				t.Fatalf("err = %v, want NotFoundError", err)
			}
			if nf.Kind != tt.kind || nf.ID != tt.id {
				t.Errorf("got = %s %s, want %s %s", nf.Kind, nf.ID, tt.kind, tt.id)
			}
		})
	}
	if n := len(allItems(t, client)); n != 0 {
		t.Fatalf("got %d items, want 0", n)
	}

	id := mustAdd(t)(co.AddPackItem(ctx, NewPackItem{Name: "Rope", PackingList: l1, Category: cat}))
	it, err := co.packItem(ctx, id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	moved := it.Clone()
	moved.PackingList = "nope"
	if err := co.UpdatePackItem(ctx, moved); !errors.As(err, new(NotFoundError)) {
		t.Errorf("update to unknown list err = %v, want NotFoundError", err)
	}
	recat := it.Clone()
	recat.Category = "nope"
	if err := co.UpdatePackItem(ctx, recat); !errors.As(err, new(NotFoundError)) {
		t.Errorf("update to unknown category err = %v, want NotFoundError", err)
	}
	if err := co.MoveItemsToCategory(ctx, []string{id}, "nope"); !errors.As(err, new(NotFoundError)) {
		t.Errorf("move to unknown category err = %v, want NotFoundError", err)
	}
	if _, err := co.CopyCategoryToList(ctx, l1, cat, "nope"); !errors.As(err, new(NotFoundError)) {
		t.Errorf("copy to unknown list err = %v, want NotFoundError", err)
	}
	if got, _ := co.packItem(ctx, id); got.PackingList != l1 || got.Category != cat {
		t.Errorf("item after rejected writes = %+v", got)
	}
	if co.History().Len() != 0 {
		t.Errorf("history len = %d, want 0", co.History().Len())
	}
	if err := co.MoveItemsToCategory(ctx, []string{id}, ""); err != nil {
		t.Errorf("move to uncategorized: %v", err)
	}
}

func TestMoveItemsToCategory(t *testing.T) {
	co, client := setupTestCoordinator(t)
	ctx := context.Background()
	l1 := newList(t, co, "l1")

	cat := mustAdd(t)(addCategory(ctx, co, "Gear", ""))
	mustAdd(t)(co.AddPackItem(ctx, NewPackItem{Name: "existing", PackingList: l1, Category: cat}))
	x := mustAdd(t)(co.AddPackItem(ctx, NewPackItem{Name: "x", PackingList: l1}))
	y := mustAdd(t)(co.AddPackItem(ctx, NewPackItem{Name: "y", PackingList: l1}))

	if err := co.MoveItemsToCategory(ctx, []string{x, y}, cat); err != nil {
		t.Fatalf("move: %v", err)
	}
	byName := map[string]model.PackItem{}
	for _, it := range allItems(t, client) {
		byName[it.Name] = it
	}
	if byName["x"].Category != cat || byName["y"].Category != cat {
		t.Fatal("moved items not in target category")
	}
	// y was above x, so it stays above x under the existing item.
	if !(byName["existing"].Rank > byName["y"].Rank && byName["y"].Rank > byName["x"].Rank) {
		t.Errorf("ranks existing=%d y=%d x=%d, want strictly decreasing", byName["existing"].Rank, byName["y"].Rank, byName["x"].Rank)
	}
	if co.History().Len() != 1 {
		t.Errorf("history len = %d, want 1", co.History().Len())
	}
}

func TestCopyPackingList(t *testing.T) {
	co, client := setupTestCoordinator(t)
	ctx := context.Background()

	list := mustAdd(t)(addPackingList(ctx, co, "Beach", false))
	id := mustAdd(t)(co.AddPackItem(ctx, NewPackItem{Name: "Towel", PackingList: list}))
	if _, err := co.ToggleItemChecked(ctx, id); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	cp, err := co.CopyPackingList(ctx, list, "")
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	copied, err := co.itemsOfList(ctx, cp)
	if err != nil {
		t.Fatalf("load copy: %v", err)
	}
	if len(copied) != 1 || copied[0].Name != "Towel" || copied[0].Checked {
		t.Errorf("copied = %+v, want one unchecked Towel", copied)
	}
	doc, _ := client.Get(ctx, remote.PackingLists, cp)
	var l model.PackingList
	if err := doc.Decode(&l); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if l.Name != "Beach (copy)" {
		t.Errorf("name = %q, want %q", l.Name, "Beach (copy)")
	}

	if _, err := co.CopyPackingList(ctx, "ghost", ""); err == nil {
		t.Error("expected error copying a missing list")
	}
}

func TestCopyCategoryToList(t *testing.T) {
	co, _ := setupTestCoordinator(t)
	ctx := context.Background()
	srcList := newList(t, co, "src")
	dstList := newList(t, co, "dst")

	cat := mustAdd(t)(addCategory(ctx, co, "Kitchen", ""))
	mustAdd(t)(co.AddPackItem(ctx, NewPackItem{Name: "Pot", PackingList: srcList, Category: cat}))
	mustAdd(t)(co.AddPackItem(ctx, NewPackItem{Name: "Pan", PackingList: srcList, Category: cat}))
	mustAdd(t)(co.AddPackItem(ctx, NewPackItem{Name: "Tent", PackingList: srcList}))
	mustAdd(t)(co.AddPackItem(ctx, NewPackItem{Name: "Stove", PackingList: dstList, Category: cat}))

	n, err := co.CopyCategoryToList(ctx, srcList, cat, dstList)
	if err != nil {
		t.Fatalf("copy category: %v", err)
	}
	if n != 2 {
		t.Errorf("copied %d items, want 2", n)
	}
	dst, _ := co.itemsOfList(ctx, dstList)
	var got []string
	for _, it := range sortedByRank(dst) {
		got = append(got, it.Name)
	}
	if want := []string{"Stove", "Pan", "Pot"}; !slices.Equal(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func sortedByRank(items []model.PackItem) []model.PackItem {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b model.PackItem) int { return b.Rank - a.Rank })
	return out
}

func TestHealDanglingReferences(t *testing.T) {
	co, client := setupTestCoordinator(t)
	ctx := context.Background()
	l1 := newList(t, co, "l1")

	alice := mustAdd(t)(addMember(ctx, co, "Alice", ""))
	// Stage an item whose category and member were deleted elsewhere.
	b := client.InitBatch()
	AddPackItemBatch(b, model.PackItem{Name: "a", PackingList: l1, Category: "deleted-cat"}.WithMembers([]string{alice, "deleted-member"}))
	if err := b.Commit(ctx); err != nil {
		t.Fatalf("stage dangling item: %v", err)
	}
	mustAdd(t)(co.AddPackItem(ctx, NewPackItem{Name: "b", PackingList: l1, Members: []string{alice}}))

	n, err := co.HealDanglingReferences(ctx)
	if err != nil {
		t.Fatalf("heal: %v", err)
	}
	if n != 1 {
		t.Errorf("healed %d items, want 1", n)
	}
	for _, it := range allItems(t, client) {
		if it.Name != "a" {
			continue
		}
		if it.Category != "" || len(it.Members) != 1 || it.Members[0].ID != alice {
			t.Errorf("healed item = %+v", it)
		}
	}
}

func TestFailedBatchWritesNothing(t *testing.T) {
	co, client := setupTestCoordinator(t)
	ctx := context.Background()
	l1 := newList(t, co, "l1")
	id := mustAdd(t)(co.AddPackItem(ctx, NewPackItem{Name: "Rope", PackingList: l1}))
	it, err := co.packItem(ctx, id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	renamed := it.Clone()
	renamed.Name = "Cord"
	b := co.InitBatch()
	UpdatePackItemBatch(b, renamed)
	AddPackItemBatch(b, model.PackItem{Name: "Lamp", PackingList: l1})
	UpdatePackItemBatch(b, model.PackItem{ID: "ghost", Name: "Ghost", PackingList: l1})
	if err := co.commit(ctx, b, "rename and add"); !errors.Is(err, remote.ErrNotFound) {
		t.Fatalf("commit err = %v, want ErrNotFound", err)
	}
	items := allItems(t, client)
	if len(items) != 1 || items[0].Name != "Rope" {
		t.Errorf("items = %+v, want only Rope unchanged", items)
	}

	ghost := it.Clone()
	ghost.ID = "ghost"
	if err := co.UpdatePackItem(ctx, ghost); !errors.Is(err, remote.ErrNotFound) {
		t.Errorf("update missing item err = %v, want ErrNotFound", err)
	}
	if co.History().Len() != 0 {
		t.Errorf("history len = %d, want 0", co.History().Len())
	}
}

func TestHistoryKeepsNewestTwenty(t *testing.T) {
	co, _ := setupTestCoordinator(t)
	ctx := context.Background()
	l1 := newList(t, co, "l1")

	for i := range 25 {
		id := mustAdd(t)(co.AddPackItem(ctx, NewPackItem{Name: fmt.Sprintf("item%d", i), PackingList: l1}))
		if err := co.DeletePackItem(ctx, id); err != nil {
			t.Fatalf("delete %d: %v", i, err)
		}
	}
	if got := co.History().Len(); got != 20 {
		t.Fatalf("history len = %d, want 20", got)
	}
	newest, _ := co.History().Peek()
	if newest.Description != "Delete item24" {
		t.Errorf("newest = %q, want Delete item24", newest.Description)
	}
	actions := co.History().Actions()
	if oldest := actions[len(actions)-1]; oldest.Description != "Delete item5" {
		t.Errorf("oldest = %q, want Delete item5", oldest.Description)
	}
}

func TestDeleteAbsentNamedIsIgnored(t *testing.T) {
	co, client := setupTestCoordinator(t)
	ctx := context.Background()
	mustAdd(t)(addCategory(ctx, co, "Gear", ""))
	mustAdd(t)(addMember(ctx, co, "Alice", ""))

	for _, force := range []bool{false, true} {
		if err := co.DeleteCategory(ctx, "ghost", force); err != nil {
			t.Errorf("delete absent category (force=%v): %v", force, err)
		}
		if err := co.DeleteMember(ctx, "ghost", force); err != nil {
			t.Errorf("delete absent member (force=%v): %v", force, err)
		}
	}
	categories, _ := loadAll[model.Category](ctx, client, remote.Categories)
	members, _ := loadAll[model.Member](ctx, client, remote.Members)
	if len(categories) != 1 || len(members) != 1 {
		t.Errorf("categories = %d, members = %d, want 1 and 1", len(categories), len(members))
	}
	if co.History().Len() != 0 {
		t.Errorf("history len = %d, want 0", co.History().Len())
	}
}

func TestAddNamedKeepsColorAndTemplate(t *testing.T) {
	co, client := setupTestCoordinator(t)
	ctx := context.Background()
	e := model.NamedEntity{Name: "Shared", Color: "#0a0", IsTemplate: true}

	for _, coll := range []remote.Collection{remote.Members, remote.Categories, remote.PackingLists} {
		id := mustAdd(t)(co.AddNamed(ctx, coll, e))
		got, err := loadOne[model.NamedEntity](ctx, client, coll, id)
		if err != nil || got == nil {
			t.Fatalf("load %s: %v", coll, err)
		}
		if got.Color != e.Color || !got.IsTemplate {
			t.Errorf("%s = %+v, want color %s and template", coll, *got, e.Color)
		}
	}

	lists, _ := loadAll[model.PackingList](ctx, client, remote.PackingLists)
	copyID, err := co.CopyPackingList(ctx, lists[0].ID, "")
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	cp, _ := loadOne[model.PackingList](ctx, client, remote.PackingLists, copyID)
	if cp.Color != e.Color || cp.IsTemplate {
		t.Errorf("copy = %+v, want color kept and not a template", *cp)
	}

	if _, err := co.AddNamed(ctx, remote.PackItems, e); err == nil {
		t.Error("expected error adding a named entity to pack items")
	}
}
