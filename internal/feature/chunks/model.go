package chunks

import (
	"sort"

	"docworkspace/pkg/docapi"
)

const SliceName = "chunks"

type Type string

const (
	TypeText  Type = "text"
	TypeTable Type = "table"
	TypeGraph Type = "graph"
)

// Chunk is a unit of extracted document content. Data is opaque: plain text,
// table markup or an image source depending on Type. Index is the position of
// the chunk within its own page.
type Chunk struct {
	Type       Type    `json:"type"`
	Data       string  `json:"data"`
	Caption    *string `json:"caption"`
	Title      *string `json:"title"`
	DocumentID string  `json:"document_id"`
	Page       int     `json:"page"`
	Y1         float64 `json:"y1"`
	Index      int     `json:"index"`
}

// State is the chunks slice.
type State struct {
	DocumentID string  `json:"document_id"`
	Text       []Chunk `json:"text"`
	Tables     []Chunk `json:"tables"`
	Graphs     []Chunk `json:"graphs"`
	Loading    bool    `json:"loading"`
	Error      *string `json:"error"`
	RequestID  string  `json:"-"`
}

// Set is a fetched chunk collection, already normalised.
type Set struct {
	DocumentID string  `json:"document_id"`
	Text       []Chunk `json:"text"`
	Tables     []Chunk `json:"tables"`
	Graphs     []Chunk `json:"graphs"`
}

// Normalize orders chunks by page, then by Y1 ascending, keeping the input
// order for equal positions, and renumbers Index within each page.
func Normalize(in []Chunk) []Chunk {
	out := make([]Chunk, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Page != out[j].Page {
			return out[i].Page < out[j].Page
		}
		return out[i].Y1 < out[j].Y1
	})

	page, n := 0, 0
	for i := range out {
		if i == 0 || out[i].Page != page {
			page, n = out[i].Page, 0
		}
		out[i].Index = n
		n++
	}
	return out
}

func fromWire(documentID string, typ Type, in []docapi.Chunk) []Chunk {
	out := make([]Chunk, 0, len(in))
	for _, c := range in {
		out = append(out, Chunk{
			Type:       typ,
			Data:       c.Data,
			Caption:    c.Caption,
			Title:      c.Title,
			DocumentID: documentID,
			Page:       c.Page,
			Y1:         c.Y1,
			Index:      c.Index,
		})
	}
	return Normalize(out)
}

// SetFromWire converts a service response into a normalised Set.
func SetFromWire(documentID string, cs docapi.ChunkSet) Set {
	return Set{
		DocumentID: documentID,
		Text:       fromWire(documentID, TypeText, cs.Text),
		Tables:     fromWire(documentID, TypeTable, cs.Tables),
		Graphs:     fromWire(documentID, TypeGraph, cs.Graphs),
	}
}
