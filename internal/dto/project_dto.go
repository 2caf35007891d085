package dto

type OpenProjectModalRequest struct {
	DocumentIDs []string `json:"document_ids" validate:"dive,required"`
}

type ProjectNameRequest struct {
	Name string `json:"name" validate:"max=120"`
}
