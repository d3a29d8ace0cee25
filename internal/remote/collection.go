// Package remote is the per-user document store the engine mutates. Every
// collection is a set of JSON documents keyed by id; writes go through
// atomic batches and every committed batch notifies the user's collection
// subscribers.
package remote

import "errors"

type Collection string

const (
	Members      Collection = "members"
	Categories   Collection = "categories"
	PackItems    Collection = "packItems"
	PackingLists Collection = "packingLists"
	Images       Collection = "images"
	Versions     Collection = "versions"
)

// Collections lists every collection in hydration order.
var Collections = []Collection{Members, Categories, PackItems, PackingLists, Images, Versions}

func (c Collection) Valid() bool {
	switch c {
	case Members, Categories, PackItems, PackingLists, Images, Versions:
		return true
	}
	return false
}

var (
	ErrNotFound       = errors.New("document not found")
	ErrBatchCommitted = errors.New("batch already committed")
	ErrClosed         = errors.New("client disposed")
)

// UnknownCollectionError is returned for a collection name the store does
// not hold.
type UnknownCollectionError struct {
	Name string
}

func (e UnknownCollectionError) Error() string {
	return "unknown collection: " + e.Name
}

func checkCollection(c Collection) error {
	if !c.Valid() {
		return UnknownCollectionError{Name: string(c)}
	}
	return nil
}
