package workspace

import (
	"slices"

	"docworkspace/internal/feature/chunks"
	"docworkspace/pkg/lexical"
)

// Element types understood by the document editor.
const (
	ElementText  = "text"
	ElementTable = "table"
	ElementImage = "image"
)

// ContentPayload is the shape the document editor accepts. Optional fields
// the chunk lacks are sent as null.
type ContentPayload struct {
	Content      string  `json:"content"`
	ImageCaption *string `json:"imageCaption"`
	ContentTitle *string `json:"contentTitle"`
	PageNumber   *int    `json:"pageNumber"`
	TableMarkup  *string `json:"tableMarkup"`
	ElementType  string  `json:"elementType"`
}

// ElementTypeOf maps a chunk kind to the editor's element type.
func ElementTypeOf(t chunks.Type) string {
	switch t {
	case chunks.TypeTable:
		return ElementTable
	case chunks.TypeGraph:
		return ElementImage
	}
	return ElementText
}

// ToContentPayload converts a chunk for the editor. An empty elementType is
// derived from the chunk kind. Captions of tables and images both land in
// the caption slot; table chunks also carry their markup.
func ToContentPayload(c chunks.Chunk, page *int, elementType string) ContentPayload {
	if elementType == "" {
		elementType = ElementTypeOf(c.Type)
	}
	p := ContentPayload{
		Content:      c.Data,
		ContentTitle: copyString(c.Title),
		ElementType:  elementType,
	}
	if page != nil {
		n := *page
		p.PageNumber = &n
	}
	if c.Type == chunks.TypeTable || elementType == ElementTable {
		markup := c.Data
		p.TableMarkup = &markup
	}
	if c.Type != chunks.TypeText {
		p.ImageCaption = copyString(c.Caption)
	}
	return p
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// Block converts a payload into the editor builder's input.
func (p ContentPayload) Block() lexical.Block {
	kind := lexical.KindText
	switch p.ElementType {
	case ElementTable:
		kind = lexical.KindTable
	case ElementImage:
		kind = lexical.KindImage
	}
	return lexical.Block{
		Kind:        kind,
		Content:     p.Content,
		Title:       p.ContentTitle,
		Caption:     p.ImageCaption,
		TableMarkup: p.TableMarkup,
		Page:        p.PageNumber,
	}
}

// Payloads converts active elements, in order, skipping hidden sections. A
// section is either a chunk kind or a document id.
func Payloads(elements []Element, hidden []string) []ContentPayload {
	out := make([]ContentPayload, 0, len(elements))
	for _, el := range elements {
		if el.Tag != Active {
			continue
		}
		if slices.Contains(hidden, string(el.Chunk.Type)) || slices.Contains(hidden, el.Chunk.DocumentID) {
			continue
		}
		page := el.Chunk.Page
		out = append(out, ToContentPayload(el.Chunk, &page, ""))
	}
	return out
}

// Compose builds the editor document from active elements in order.
func Compose(elements []Element, hidden []string) lexical.Document {
	payloads := Payloads(elements, hidden)
	blocks := make([]lexical.Block, len(payloads))
	for i, p := range payloads {
		blocks[i] = p.Block()
	}
	return lexical.FromBlocks(blocks)
}
