package docapi

import "encoding/json"

// Document is a document listed by the service.
type Document struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Company      string `json:"company"`
	DocumentType string `json:"document_type"`
	Year         string `json:"year"`
	Pages        int    `json:"pages"`
}

// Chunk is one extracted unit as the service returns it.
type Chunk struct {
	Data    string  `json:"data"`
	Caption *string `json:"caption"`
	Title   *string `json:"title"`
	Page    int     `json:"page"`
	Y1      float64 `json:"y1"`
	Index   int     `json:"index"`
}

// ChunkSet groups the chunks of one document by kind.
type ChunkSet struct {
	Text   []Chunk `json:"text"`
	Tables []Chunk `json:"tables"`
	Graphs []Chunk `json:"graphs"`
}

type similarTablesRequest struct {
	TableID      string   `json:"table_id"`
	SelectedDocs []string `json:"selected_docs"`
}

// Summary is the AI summary of one document.
type Summary struct {
	DocumentID string          `json:"document_id"`
	Summary    string          `json:"summary"`
	Highlights json.RawMessage `json:"highlights,omitempty"`
}

type summaryRequest struct {
	DocumentID string `json:"document_id"`
}

// ProjectRequest creates a project from selected workspace chunks.
type ProjectRequest struct {
	Name        string   `json:"name"`
	DocumentIDs []string `json:"document_ids"`
	ElementIDs  []string `json:"element_ids"`
}

type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
