package dto

import (
	"docworkspace/internal/feature/chunks"
	"docworkspace/internal/feature/workspace"
)

type AddElementRequest struct {
	Type       string  `json:"type" validate:"required,oneof=text table graph"`
	Data       string  `json:"data"`
	Caption    *string `json:"caption"`
	Title      *string `json:"title"`
	DocumentID string  `json:"document_id" validate:"required"`
	Page       int     `json:"page" validate:"gte=0"`
	Y1         float64 `json:"y1"`
	Index      int     `json:"index" validate:"gte=0"`
}

func (r AddElementRequest) Chunk() chunks.Chunk {
	return chunks.Chunk{
		Type:       chunks.Type(r.Type),
		Data:       r.Data,
		Caption:    r.Caption,
		Title:      r.Title,
		DocumentID: r.DocumentID,
		Page:       r.Page,
		Y1:         r.Y1,
		Index:      r.Index,
	}
}

type MoveElementRequest struct {
	From *int `json:"from" validate:"required,gte=0"`
	To   *int `json:"to" validate:"required,gte=0"`
}

type WorkspaceResponse struct {
	Elements     []workspace.Element        `json:"elements"`
	Removed      []workspace.Element        `json:"removed"`
	Payloads     []workspace.ContentPayload `json:"payloads"`
	Hidden       []string                   `json:"hidden_sections"`
	VisibleCount int                        `json:"visible_count"`
	TotalCount   int                        `json:"total_count"`
}
