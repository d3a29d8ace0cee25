// Package version stores point-in-time snapshots of packing lists and
// schedules debounced automatic saves.
package version

import (
	"cmp"
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/blake2b"

	"github.com/dukerupert/packlist/internal/model"
	"github.com/dukerupert/packlist/internal/rank"
	"github.com/dukerupert/packlist/internal/remote"
)

type Manager struct {
	client   *remote.Client
	debounce *Debouncer
	logger   *slog.Logger
	now      func() time.Time
}

// NewManager returns a manager whose automatic saves wait for delay after
// the last edit of a list.
func NewManager(client *remote.Client, delay time.Duration, logger *slog.Logger) *Manager {
	return &Manager{
		client:   client,
		debounce: NewDebouncer(delay),
		logger:   logger.With("component", "version"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Fingerprint hashes the content of items independent of their ids and
// input order, so a restored list matches the version it came from.
func Fingerprint(items []model.PackItem) string {
	type entry struct {
		Name     string                 `json:"n"`
		Checked  bool                   `json:"c"`
		Members  []model.MemberPackItem `json:"m"`
		Category string                 `json:"g"`
		Rank     int                    `json:"r"`
	}
	entries := make([]entry, len(items))
	for i, it := range items {
		entries[i] = entry{it.Name, it.Checked, it.Clone().Members, it.Category, it.Rank}
	}
	slices.SortFunc(entries, func(a, b entry) int {
		return cmp.Or(cmp.Compare(b.Rank, a.Rank), cmp.Compare(a.Name, b.Name), cmp.Compare(a.Category, b.Category))
	})
	raw, _ := json.Marshal(entries)
	sum := blake2b.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// Save stores a snapshot of items as a new version of listID.
func (m *Manager) Save(ctx context.Context, listID string, items []model.PackItem, name string) (model.PackingListVersion, error) {
	snapshot := make([]model.PackItem, len(items))
	checked := 0
	for i, it := range rank.Sorted(items) {
		snapshot[i] = it.Clone()
		if it.Checked {
			checked++
		}
	}
	v := model.PackingListVersion{
		PackingListID: listID,
		Timestamp:     m.now(),
		Name:          name,
		Items:         snapshot,
		ItemCount:     len(snapshot),
		CheckedCount:  checked,
		Fingerprint:   Fingerprint(snapshot),
	}

	b := m.client.InitBatch()
	v.ID = b.Add(remote.Versions, v)
	if err := b.Commit(ctx); err != nil {
		return model.PackingListVersion{}, fmt.Errorf("save version: %w", err)
	}
	m.logger.Info("version saved", "list", listID, "version", v.ID, "items", v.ItemCount)
	return v, nil
}

// SaveIfChanged saves a version unless the newest version of listID already
// holds the same content. It reports whether a version was written.
func (m *Manager) SaveIfChanged(ctx context.Context, listID string, items []model.PackItem, name string) (model.PackingListVersion, bool, error) {
	versions, err := m.List(ctx, listID)
	if err != nil {
		return model.PackingListVersion{}, false, err
	}
	if len(versions) > 0 && versions[0].Fingerprint == Fingerprint(items) {
		return versions[0], false, nil
	}
	v, err := m.Save(ctx, listID, items, name)
	if err != nil {
		return model.PackingListVersion{}, false, err
	}
	return v, true, nil
}

// List returns the versions of listID, newest first.
func (m *Manager) List(ctx context.Context, listID string) ([]model.PackingListVersion, error) {
	docs, err := m.client.Query(ctx, remote.Versions, "packing_list_id", listID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	versions, err := remote.DecodeAll[model.PackingListVersion](docs)
	if err != nil {
		return nil, err
	}
	// Newest insertion first among equal timestamps.
	slices.Reverse(versions)
	slices.SortStableFunc(versions, func(a, b model.PackingListVersion) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return versions, nil
}

// Get returns a version or nil when it does not exist.
func (m *Manager) Get(ctx context.Context, id string) (*model.PackingListVersion, error) {
	doc, err := m.client.Get(ctx, remote.Versions, id)
	if err != nil {
		return nil, fmt.Errorf("get version: %w", err)
	}
	if doc == nil {
		return nil, nil
	}
	var v model.PackingListVersion
	if err := doc.Decode(&v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (m *Manager) Delete(ctx context.Context, id string) error {
	if err := m.client.Delete(ctx, remote.Versions, id); err != nil {
		return fmt.Errorf("delete version: %w", err)
	}
	return nil
}

// Restore replaces the live items of the version's list with the version's
// items in one batch. Restored items get new ids. Restore is destructive;
// callers that want to return to the current state save a version first.
func (m *Manager) Restore(ctx context.Context, v model.PackingListVersion, live []model.PackItem) error {
	b := m.client.InitBatch()
	for _, it := range live {
		if it.PackingList == v.PackingListID {
			b.Delete(remote.PackItems, it.ID)
		}
	}
	for _, it := range v.Items {
		it = it.Clone()
		it.PackingList = v.PackingListID
		b.Add(remote.PackItems, it)
	}
	if err := b.Commit(ctx); err != nil {
		return fmt.Errorf("restore version: %w", err)
	}
	m.logger.Info("version restored", "list", v.PackingListID, "version", v.ID, "items", len(v.Items))
	return nil
}

// Prune deletes all but the newest keep versions of listID and returns the
// number deleted.
func (m *Manager) Prune(ctx context.Context, listID string, keep int) (int, error) {
	versions, err := m.List(ctx, listID)
	if err != nil {
		return 0, err
	}
	keep = max(keep, 0)
	if len(versions) <= keep {
		return 0, nil
	}
	b := m.client.InitBatch()
	for _, v := range versions[keep:] {
		b.Delete(remote.Versions, v.ID)
	}
	if err := b.Commit(ctx); err != nil {
		return 0, fmt.Errorf("prune versions: %w", err)
	}
	return b.Len(), nil
}

// Items loads the live items of listID from the store.
func (m *Manager) Items(ctx context.Context, listID string) ([]model.PackItem, error) {
	docs, err := m.client.Query(ctx, remote.PackItems, "packing_list", listID)
	if err != nil {
		return nil, fmt.Errorf("load items of list %s: %w", listID, err)
	}
	items, err := remote.DecodeAll[model.PackItem](docs)
	if err != nil {
		return nil, err
	}
	return rank.Sorted(items), nil
}

// ScheduleSave arranges an automatic save of listID once the list has been
// quiet for the debounce delay. Each call postpones the pending save.
func (m *Manager) ScheduleSave(listID string) {
	m.debounce.Trigger(listID, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		items, err := m.Items(ctx, listID)
		if err != nil {
			m.logger.Error("autosave load items", "list", listID, "error", err)
			return
		}
		if _, _, err := m.SaveIfChanged(ctx, listID, items, ""); err != nil {
			m.logger.Error("autosave", "list", listID, "error", err)
		}
	})
}

// CancelSave drops a pending automatic save of listID.
func (m *Manager) CancelSave(listID string) bool {
	return m.debounce.Cancel(listID)
}

// SavePending reports whether an automatic save of listID is waiting.
func (m *Manager) SavePending(listID string) bool {
	return m.debounce.Pending(listID)
}

// Close cancels every pending automatic save.
func (m *Manager) Close() {
	m.debounce.Stop()
}
