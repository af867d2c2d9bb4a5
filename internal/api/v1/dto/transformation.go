package dto

import (
	"app/internal/service"
	"app/internal/transform"
)

// TransformationStartDTO opens an editing session. Either image_id (edit an
// existing record) or the uploaded asset fields must be provided.
type TransformationStartDTO struct {
	Type      string `json:"type" validate:"required"`
	ImageID   string `json:"image_id"`
	PublicID  string `json:"public_id" validate:"required_without=ImageID"`
	Width     int    `json:"width" validate:"gte=0"`
	Height    int    `json:"height" validate:"gte=0"`
	SecureURL string `json:"secure_url" validate:"omitempty,url"`
}

// TransformationFieldDTO is one debounced field edit.
type TransformationFieldDTO struct {
	Field string `json:"field" validate:"required,oneof=prompt color aspectRatio"`
	Value string `json:"value" validate:"required"`
}

// TransformationSaveDTO carries the form fields submitted with a save.
type TransformationSaveDTO struct {
	Title       string `json:"title" validate:"required"`
	AspectRatio string `json:"aspect_ratio"`
	Prompt      string `json:"prompt"`
	Color       string `json:"color"`
}

type TransformationSessionDTO struct {
	ID        string           `json:"id"`
	Type      string           `json:"type"`
	State     string           `json:"state"`
	ImageID   string           `json:"image_id,omitempty"`
	PublicID  string           `json:"public_id"`
	Width     int              `json:"width"`
	Height    int              `json:"height"`
	SecureURL string           `json:"secure_url"`
	Pending   transform.Config `json:"pending"`
	Applied   transform.Config `json:"applied"`
	// CreditBalance is included after an apply so the client can refresh
	// its gate without another round trip.
	CreditBalance *int `json:"credit_balance,omitempty"`
}

// NewSessionResponse maps an editing session to its response shape.
func NewSessionResponse(es *service.EditSession, balance *int) TransformationSessionDTO {
	return TransformationSessionDTO{
		ID:            es.ID,
		Type:          string(es.Session.Type()),
		State:         string(es.Session.State()),
		ImageID:       es.ImageID,
		PublicID:      es.PublicID,
		Width:         es.Width,
		Height:        es.Height,
		SecureURL:     es.SecureURL,
		Pending:       es.Session.Pending(),
		Applied:       es.Session.Applied(),
		CreditBalance: balance,
	}
}

// UploadResponseDTO is the asset metadata returned after an upload.
type UploadResponseDTO struct {
	PublicID  string `json:"public_id"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	SecureURL string `json:"secure_url"`
}
