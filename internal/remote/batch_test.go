package remote

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dukerupert/packlist/internal/model"
)

func TestBatchIsAtomic(t *testing.T) {
	c := setupTestClient(t)
	ctx := context.Background()

	keep, err := c.Add(ctx, Members, model.Member{Name: "Alice"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	b := c.InitBatch()
	b.Add(Members, model.Member{Name: "Bob"})
	b.Delete(Members, keep)
	b.Update(Members, "ghost", map[string]any{"name": "x"})
	if b.Len() != 3 {
		t.Fatalf("len = %d, want 3", b.Len())
	}

	if err := b.Commit(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("commit err = %v, want ErrNotFound", err)
	}

	docs, err := c.GetAll(ctx, Members)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != keep {
		t.Errorf("got %d documents after failed batch, want only %s", len(docs), keep)
	}
}

func TestBatchCommitOnce(t *testing.T) {
	c := setupTestClient(t)
	b := c.InitBatch()
	b.Add(Members, model.Member{Name: "Alice"})
	if err := b.Commit(context.Background()); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := b.Commit(context.Background()); !errors.Is(err, ErrBatchCommitted) {
		t.Errorf("second commit err = %v, want ErrBatchCommitted", err)
	}
}

func TestEmptyBatchCommits(t *testing.T) {
	c := setupTestClient(t)
	if err := c.InitBatch().Commit(context.Background()); err != nil {
		t.Errorf("empty commit: %v", err)
	}
}

func TestBatchStagingErrorIsSticky(t *testing.T) {
	c := setupTestClient(t)
	b := c.InitBatch()
	b.Add(Collection("bogus"), model.Member{Name: "x"})
	b.Add(Members, model.Member{Name: "Alice"})
	if b.Len() != 0 {
		t.Errorf("len = %d, want 0 after staging error", b.Len())
	}
	if err := b.Commit(context.Background()); err == nil {
		t.Fatal("expected staging error from commit")
	}
	docs, _ := c.GetAll(context.Background(), Members)
	if len(docs) != 0 {
		t.Errorf("got %d members, want 0", len(docs))
	}
}

func TestBatchSeesItsOwnWrites(t *testing.T) {
	c := setupTestClient(t)
	ctx := context.Background()

	b := c.InitBatch()
	id := b.Add(Categories, model.Category{Name: "Food"})
	b.Update(Categories, id, map[string]any{"rank": 7})
	if err := b.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}

	doc, _ := c.Get(ctx, Categories, id)
	var cat model.Category
	if err := doc.Decode(&cat); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cat.Rank != 7 {
		t.Errorf("rank = %d, want 7", cat.Rank)
	}
}

func TestCommitNotifiesEachCollectionOnce(t *testing.T) {
	c := setupTestClient(t)

	var mu sync.Mutex
	counts := map[Collection]int{}
	c.broker.OnChange(func(ch Change) {
		mu.Lock()
		counts[ch.Collection]++
		mu.Unlock()
	})

	b := c.InitBatch()
	b.Add(PackItems, model.PackItem{Name: "a"})
	b.Add(PackItems, model.PackItem{Name: "b"})
	b.Add(PackingLists, model.PackingList{Name: "Trip"})
	if err := b.Commit(context.Background()); err != nil {
		t.Fatalf("commit: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if counts[PackItems] != 1 || counts[PackingLists] != 1 || len(counts) != 2 {
		t.Errorf("got = %v, want one change per touched collection", counts)
	}
}
