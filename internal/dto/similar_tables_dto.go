package dto

type SimilarTablesRequest struct {
	TableID      string `json:"table_id" validate:"required"`
	Company      string `json:"company" validate:"required"`
	DocumentType string `json:"document_type" validate:"required"`
	Year         string `json:"year" validate:"required"`
}

type SelectedDocsRequest struct {
	DocumentIDs []string `json:"document_ids" validate:"dive,required"`
}
