package mutate

import (
	"fmt"
	"strings"
)

// MaxListedItems caps the item names carried by an IntegrityError.
const MaxListedItems = 5

// IntegrityError blocks deleting a category or member that pack items still
// reference. Items holds at most MaxListedItems names; More counts the rest.
type IntegrityError struct {
	Kind  string   `json:"kind"`
	ID    string   `json:"id"`
	Items []string `json:"items"`
	More  int      `json:"more"`
}

func newIntegrityError(kind, id string, names []string) IntegrityError {
	e := IntegrityError{Kind: kind, ID: id}
	if len(names) > MaxListedItems {
		e.Items = names[:MaxListedItems]
		e.More = len(names) - MaxListedItems
	} else {
		e.Items = names
	}
	return e
}

func (e IntegrityError) Error() string {
	msg := fmt.Sprintf("%s %s is used by %s", e.Kind, e.ID, strings.Join(e.Items, ", "))
	if e.More > 0 {
		msg += fmt.Sprintf(" (+%d more)", e.More)
	}
	return msg
}

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}
