package model

import "time"

// PackingListVersion is a point-in-time copy of a packing list's items.
type PackingListVersion struct {
	ID            string     `json:"id"`
	PackingListID string     `json:"packing_list_id"`
	Timestamp     time.Time  `json:"timestamp"`
	Name          string     `json:"name,omitempty"`
	Items         []PackItem `json:"items"`
	ItemCount     int        `json:"item_count"`
	CheckedCount  int        `json:"checked_count"`
	Fingerprint   string     `json:"fingerprint,omitempty"`
}
