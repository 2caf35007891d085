package simtables

import (
	"encoding/json"
	"net/url"
	"strings"
)

const SliceName = "similarTables"

// Key identifies one similar-tables query. Build it with NewKey so that
// equivalent tuples compare equal.
type Key struct {
	TableID      string `json:"table_id"`
	Company      string `json:"company"`
	DocumentType string `json:"document_type"`
	Year         string `json:"year"`
}

func NewKey(tableID, company, documentType, year string) Key {
	return Key{
		TableID:      strings.TrimSpace(tableID),
		Company:      strings.TrimSpace(company),
		DocumentType: strings.TrimSpace(documentType),
		Year:         strings.TrimSpace(year),
	}
}

// String is the canonical form, used to coalesce in-flight fetches.
func (k Key) String() string {
	parts := []string{k.TableID, k.Company, k.DocumentType, k.Year}
	for i, p := range parts {
		parts[i] = url.QueryEscape(p)
	}
	return strings.Join(parts, "/")
}

// Leaf is the cached outcome of one query.
type Leaf struct {
	Data    json.RawMessage `json:"data"`
	Loading bool            `json:"loading"`
	Error   *string         `json:"error"`
}

// State is the similarTables slice: a flat map of leaves plus the documents
// the next fetch compares against.
type State struct {
	Leaves       map[Key]Leaf `json:"-"`
	SelectedDocs []string     `json:"selected_docs"`
}

// MarshalJSON writes leaves keyed by their canonical key string.
func (s State) MarshalJSON() ([]byte, error) {
	leaves := make(map[string]Leaf, len(s.Leaves))
	for k, l := range s.Leaves {
		leaves[k.String()] = l
	}
	return json.Marshal(struct {
		Leaves       map[string]Leaf `json:"leaves"`
		SelectedDocs []string        `json:"selected_docs"`
	}{leaves, s.SelectedDocs})
}

func (s State) withLeaf(k Key, l Leaf) State {
	leaves := make(map[Key]Leaf, len(s.Leaves)+1)
	for key, v := range s.Leaves {
		leaves[key] = v
	}
	leaves[k] = l
	s.Leaves = leaves
	return s
}
