// Package prefs stores per-user UI state that is never synced to the
// document store or broadcast to other sessions.
package prefs

import (
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/dukerupert/packlist/internal/grouping"
)

const (
	KeyActiveList   = "active_packing_list"
	KeyFullscreen   = "fullscreen"
	KeyCategorySort = "category_sort"
	KeyColumns      = "columns"
	filterPrefix    = "filter:"
)

type CategorySort string

const (
	SortByRank CategorySort = "rank"
	SortByName CategorySort = "name"
)

var filterKind = regexp.MustCompile(`^[a-z][a-z0-9_-]{0,31}$`)

type Store struct {
	db     *sql.DB
	userID string
}

func NewStore(db *sql.DB, userID string) *Store {
	return &Store{db: db, userID: userID}
}

// Get returns the stored value and whether the key was set.
func (s *Store) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM preferences WHERE user_id = ? AND key = ?`, s.userID, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get preference %q: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) GetAll() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT key, value FROM preferences WHERE user_id = ? ORDER BY key`, s.userID)
	if err != nil {
		return nil, fmt.Errorf("get all preferences: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan preference: %w", err)
		}
		out[key] = value
	}
	return out, rows.Err()
}

func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO preferences (user_id, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.userID, key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set preference %q: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM preferences WHERE user_id = ? AND key = ?`, s.userID, key); err != nil {
		return fmt.Errorf("delete preference %q: %w", key, err)
	}
	return nil
}

// ActiveList returns the id of the last opened packing list, or "".
func (s *Store) ActiveList() (string, error) {
	v, _, err := s.Get(KeyActiveList)
	return v, err
}

func (s *Store) SetActiveList(id string) error {
	return s.Set(KeyActiveList, id)
}

// Filter returns the saved filter of kind, or an empty filter.
func (s *Store) Filter(kind string) (grouping.Filter, error) {
	if !filterKind.MatchString(kind) {
		return grouping.Filter{}, fmt.Errorf("invalid filter kind %q", kind)
	}
	raw, ok, err := s.Get(filterPrefix + kind)
	if err != nil || !ok {
		return grouping.Filter{}, err
	}
	var f grouping.Filter
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		return grouping.Filter{}, fmt.Errorf("decode filter %q: %w", kind, err)
	}
	return f, nil
}

// SetFilter saves f under kind. An empty filter clears the saved one.
func (s *Store) SetFilter(kind string, f grouping.Filter) error {
	if !filterKind.MatchString(kind) {
		return fmt.Errorf("invalid filter kind %q", kind)
	}
	if f.IsEmpty() {
		return s.Delete(filterPrefix + kind)
	}
	raw, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode filter %q: %w", kind, err)
	}
	return s.Set(filterPrefix+kind, string(raw))
}

func (s *Store) Fullscreen() (bool, error) {
	v, ok, err := s.Get(KeyFullscreen)
	if err != nil || !ok {
		return false, err
	}
	return v == "true", nil
}

func (s *Store) SetFullscreen(on bool) error {
	return s.Set(KeyFullscreen, strconv.FormatBool(on))
}

// CategorySort defaults to SortByRank.
func (s *Store) CategorySort() (CategorySort, error) {
	v, ok, err := s.Get(KeyCategorySort)
	if err != nil || !ok {
		return SortByRank, err
	}
	if CategorySort(v) == SortByName {
		return SortByName, nil
	}
	return SortByRank, nil
}

func (s *Store) SetCategorySort(sort CategorySort) error {
	if sort != SortByRank && sort != SortByName {
		return fmt.Errorf("invalid category sort %q", sort)
	}
	return s.Set(KeyCategorySort, string(sort))
}

// Columns is the requested column count, 1 when unset.
func (s *Store) Columns() (int, error) {
	v, ok, err := s.Get(KeyColumns)
	if err != nil || !ok {
		return 1, err
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 1, nil
	}
	return min(n, 3), nil
}

func (s *Store) SetColumns(n int) error {
	if n < 1 || n > 3 {
		return fmt.Errorf("column count %d out of range 1-3", n)
	}
	return s.Set(KeyColumns, strconv.Itoa(n))
}
