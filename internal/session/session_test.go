package session

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/dukerupert/packlist/internal/database"
	"github.com/dukerupert/packlist/internal/grouping"
	"github.com/dukerupert/packlist/internal/layout"
	"github.com/dukerupert/packlist/internal/model"
	"github.com/dukerupert/packlist/internal/remote"
)

func setupTestSession(t *testing.T) (*Session, *remote.Client) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	client := remote.NewClient(db, nil, "user-1", slog.Default())
	t.Cleanup(client.DisposeAll)
	return New(client, slog.Default()), client
}

// seed stores a small trip and returns the ids by name.
func seed(t *testing.T, client *remote.Client) map[string]string {
	t.Helper()
	ids := map[string]string{}
	b := client.InitBatch()
	ids["alice"] = b.Add(remote.Members, model.Member{Name: "Alice", Rank: 1})
	ids["cat1"] = b.Add(remote.Categories, model.Category{Name: "Clothes", Rank: 1})
	ids["cat2"] = b.Add(remote.Categories, model.Category{Name: "Food", Rank: 2})
	ids["list"] = b.Add(remote.PackingLists, model.PackingList{Name: "Trip"})
	if err := b.Commit(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	b = client.InitBatch()
	ids["A"] = b.Add(remote.PackItems, model.PackItem{Name: "A", Category: ids["cat1"], Rank: 2, Checked: true, PackingList: ids["list"]})
	ids["B"] = b.Add(remote.PackItems, model.PackItem{Name: "B", Category: ids["cat1"], Rank: 1, PackingList: ids["list"],
		Members: []model.MemberPackItem{{ID: ids["alice"]}}})
	ids["C"] = b.Add(remote.PackItems, model.PackItem{Name: "C", Category: ids["cat2"], Rank: 3, PackingList: ids["list"]})
	if err := b.Commit(context.Background()); err != nil {
		t.Fatalf("seed items: %v", err)
	}
	return ids
}

func TestHydrate(t *testing.T) {
	s, client := setupTestSession(t)
	ids := seed(t, client)

	if err := s.Hydrate(context.Background()); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if got := len(s.Members()); got != 1 {
		t.Errorf("members = %d, want 1", got)
	}
	cats := s.Categories()
	if len(cats) != 2 || cats[0].Name != "Food" {
		t.Errorf("categories = %+v, want Food first", cats)
	}
	items := s.PackItems(ids["list"])
	if len(items) != 3 || items[0].Name != "C" {
		t.Errorf("items = %+v, want C first", items)
	}
	if _, err := s.PackingList(ids["list"]); err != nil {
		t.Errorf("packing list lookup: %v", err)
	}
}

func TestLookupMissingReference(t *testing.T) {
	s, _ := setupTestSession(t)
	if err := s.Hydrate(context.Background()); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	_, err := s.Category("gone")
	var mre model.MissingReferenceError
	if !errors.As(err, &mre) {
		t.Fatalf("err = %v, want MissingReferenceError", err)
	}
	if mre.Kind != "category" || mre.ID != "gone" {
		t.Errorf("got = %+v", mre)
	}
	if _, err := s.Member("gone"); err == nil {
		t.Error("expected error for missing member")
	}
}

func TestViewGroupsAndColumns(t *testing.T) {
	s, client := setupTestSession(t)
	ids := seed(t, client)
	if err := s.Hydrate(context.Background()); err != nil {
		t.Fatalf("hydrate: %v", err)
	}

	v := s.View(ids["list"], ViewOptions{Columns: 2})
	if len(v.Groups) != 3 {
		t.Fatalf("groups = %d, want 3", len(v.Groups))
	}
	if v.Groups[0].Category.ID != ids["cat2"] || v.Groups[1].Category.ID != ids["cat1"] || !v.Groups[2].IsUncategorized() {
		t.Errorf("group order wrong: %+v", v.Groups)
	}
	if got := v.Groups[1].PackItems; got[0].Name != "A" || got[1].Name != "B" {
		t.Errorf("cat1 items = %v, want A, B", got)
	}
	// Five rows of weight six fall under the threshold and collapse to one column.
	if len(v.Rows) != 5 || len(v.Columns) != 1 {
		t.Errorf("rows = %d, columns = %d, want 5 and 1", len(v.Rows), len(v.Columns))
	}
	if v.Rows[0].Kind != layout.RowCategory {
		t.Error("first row should be a header")
	}
}

func TestViewFilter(t *testing.T) {
	s, client := setupTestSession(t)
	ids := seed(t, client)
	if err := s.Hydrate(context.Background()); err != nil {
		t.Fatalf("hydrate: %v", err)
	}

	v := s.View(ids["list"], ViewOptions{Filter: grouping.Filter{ShowTheseStates: []string{grouping.StateUnchecked}}, Columns: 1})
	var names []string
	for _, r := range v.Rows {
		if r.Kind == layout.RowItem {
			names = append(names, r.Item.Name)
		}
	}
	if len(names) != 2 || names[0] != "C" || names[1] != "B" {
		t.Errorf("items = %v, want C, B", names)
	}
}

func TestViewDegradesOnDanglingReferences(t *testing.T) {
	s, client := setupTestSession(t)
	ids := seed(t, client)
	ctx := context.Background()

	b := client.InitBatch()
	b.Delete(remote.Categories, ids["cat1"])
	b.Delete(remote.Members, ids["alice"])
	if err := b.Commit(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Hydrate(ctx); err != nil {
		t.Fatalf("hydrate: %v", err)
	}

	refs := s.DanglingReferences()
	if len(refs) != 3 {
		t.Errorf("dangling = %+v, want 3 references", refs)
	}

	v := s.View(ids["list"], ViewOptions{Columns: 1})
	if v.Dangling != 3 {
		t.Errorf("view dangling = %d, want 3", v.Dangling)
	}
	uncategorized := v.Groups[len(v.Groups)-1]
	if len(uncategorized.PackItems) != 2 {
		t.Errorf("uncategorized items = %d, want 2", len(uncategorized.PackItems))
	}
	for _, it := range uncategorized.PackItems {
		if len(it.Members) != 0 {
			t.Errorf("item %s shows %d missing members", it.Name, len(it.Members))
		}
	}
}

func TestWatchAppliesChanges(t *testing.T) {
	s, client := setupTestSession(t)
	ctx := context.Background()

	changed := make(chan remote.Collection, 16)
	if err := s.Watch(ctx, func(c remote.Collection) { changed <- c }); err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer s.Close()
	// Drain the initial snapshots.
	for range 4 {
		<-changed
	}

	if _, err := client.Add(ctx, remote.Members, model.Member{Name: "Bob"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	select {
	case c := <-changed:
		if c != remote.Members {
			t.Errorf("changed = %s, want members", c)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change")
	}
	if got := len(s.Members()); got != 1 {
		t.Errorf("members = %d, want 1", got)
	}
}

func TestViewCategoriesByName(t *testing.T) {
	s, client := setupTestSession(t)
	ids := seed(t, client)
	if err := s.Hydrate(context.Background()); err != nil {
		t.Fatalf("hydrate: %v", err)
	}

	v := s.View(ids["list"], ViewOptions{Columns: 1, CategoriesByName: true})
	if v.Groups[0].Category.Name != "Clothes" || v.Groups[1].Category.Name != "Food" {
		t.Errorf("groups = %s, %s, want Clothes, Food", v.Groups[0].Category.Name, v.Groups[1].Category.Name)
	}
}

func TestViewKeepsEmptyCategoryHeader(t *testing.T) {
	s, client := setupTestSession(t)
	ids := seed(t, client)
	tools, err := client.Add(context.Background(), remote.Categories, model.Category{Name: "Tools", Rank: 0})
	if err != nil {
		t.Fatalf("add category: %v", err)
	}
	if err := s.Hydrate(context.Background()); err != nil {
		t.Fatalf("hydrate: %v", err)
	}

	v := s.View(ids["list"], ViewOptions{Columns: 1})
	if len(v.Rows) != 6 {
		t.Fatalf("rows = %d, want 6", len(v.Rows))
	}
	if last := v.Rows[5]; last.Kind != layout.RowCategory || last.Category.ID != tools {
		t.Errorf("last row = %s, want the empty Tools header", last.Key())
	}
}
