package model

import "fmt"

// MissingReferenceError is returned when an item points at a member or
// category that is not in the hydrated collections, typically after a
// collaborator deleted it.
type MissingReferenceError struct {
	Kind string
	ID   string
}

func (e MissingReferenceError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}
