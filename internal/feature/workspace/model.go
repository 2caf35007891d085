package workspace

import (
	"errors"

	"docworkspace/internal/feature/chunks"
)

const SliceName = "workspace"

var (
	ErrIndexOutOfRange  = errors.New("workspace index out of range")
	ErrAlreadyRemoved   = errors.New("workspace element already removed")
	ErrNotRemoved       = errors.New("workspace element is not removed")
	ErrDuplicateElement = errors.New("chunk already in workspace")
	ErrEmptySection     = errors.New("section name is empty")
)

// Tag tells whether an element is shown or tombstoned.
type Tag string

const (
	Active  Tag = "active"
	Removed Tag = "removed"
)

// Element is a chunk the user added to the workspace. Removal only retags
// the element; it keeps its place in the backing list until Reset.
type Element struct {
	ID    string       `json:"id"`
	Tag   Tag          `json:"tag"`
	Chunk chunks.Chunk `json:"chunk"`
	// RemovedAt is the backing position the element held when it was
	// removed. Nil while active.
	RemovedAt *int `json:"removed_at,omitempty"`
}

// Identity is the duplicate-suppression key of a chunk. Chunks without a
// document id have no stable identity.
type Identity struct {
	DocumentID string
	Page       int
	Type       chunks.Type
	Index      int
}

func IdentityOf(c chunks.Chunk) (Identity, bool) {
	if c.DocumentID == "" {
		return Identity{}, false
	}
	return Identity{DocumentID: c.DocumentID, Page: c.Page, Type: c.Type, Index: c.Index}, true
}

// State is the workspace slice. Hidden holds the hidden section names in
// lexical order.
type State struct {
	Elements []Element `json:"elements"`
	Hidden   []string  `json:"hidden_sections"`
	Err      *string   `json:"error"`
}
