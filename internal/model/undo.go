package model

import "time"

type UndoActionType string

const (
	UndoDeleteItems         UndoActionType = "delete-items"
	UndoDeleteCheckedItems  UndoActionType = "delete-checked-items"
	UndoDeleteCategoryItems UndoActionType = "delete-category-items"
	UndoDeletePackItem      UndoActionType = "delete-pack-item"
	UndoDeletePackingList   UndoActionType = "delete-packing-list"
	UndoReorderItems        UndoActionType = "reorder-items"
	UndoMoveItems           UndoActionType = "move-items"
)

// OrderEntry is the pre-mutation position of one document. Collection is
// either packItems or categories; Category is only meaningful for items.
type OrderEntry struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
	Rank       int    `json:"rank"`
	Category   string `json:"category"`
}

type UndoData struct {
	Items         []PackItem   `json:"items,omitempty"`
	PackingList   *PackingList `json:"packing_list,omitempty"`
	Images        []Image      `json:"images,omitempty"`
	OriginalOrder []OrderEntry `json:"original_order,omitempty"`
}

type UndoAction struct {
	ID          string         `json:"id"`
	Type        UndoActionType `json:"type"`
	Description string         `json:"description"`
	Data        UndoData       `json:"data"`
	Timestamp   time.Time      `json:"timestamp"`
}
