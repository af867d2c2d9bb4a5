package dto

import (
	"time"

	"app/internal/model"
	"app/internal/transform"
)

// ImageUpsertDTO is the payload for creating or replacing an image record.
type ImageUpsertDTO struct {
	Title              string           `json:"title" validate:"required"`
	TransformationType string           `json:"transformation_type" validate:"required"`
	PublicID           string           `json:"public_id" validate:"required"`
	Width              int              `json:"width" validate:"gte=0"`
	Height             int              `json:"height" validate:"gte=0"`
	Config             transform.Config `json:"config"`
	SecureURL          string           `json:"secure_url" validate:"required,url"`
	TransformationURL  string           `json:"transformation_url" validate:"omitempty,url"`
	AspectRatio        string           `json:"aspect_ratio"`
	Prompt             string           `json:"prompt"`
	Color              string           `json:"color"`
}

// ImageAuthorDTO is the slice of the owning user embedded in image reads.
type ImageAuthorDTO struct {
	ID        string `json:"id"`
	ClerkID   string `json:"clerk_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type ImageResponseDTO struct {
	ID                 string           `json:"id"`
	Title              string           `json:"title"`
	Author             *ImageAuthorDTO  `json:"author,omitempty"`
	TransformationType string           `json:"transformation_type"`
	PublicID           string           `json:"public_id"`
	Width              int              `json:"width"`
	Height             int              `json:"height"`
	Config             transform.Config `json:"config"`
	SecureURL          string           `json:"secure_url"`
	TransformationURL  string           `json:"transformation_url"`
	AspectRatio        string           `json:"aspect_ratio,omitempty"`
	Prompt             string           `json:"prompt,omitempty"`
	Color              string           `json:"color,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// ImageListResponseDTO is one page of images plus pager totals.
type ImageListResponseDTO struct {
	Data        []ImageResponseDTO `json:"data"`
	Total       int                `json:"total"`
	TotalPages  int                `json:"total_pages"`
	SavedImages int                `json:"saved_images,omitempty"`
}

// NewImageResponse maps a domain image to its response shape.
func NewImageResponse(img *model.Image) ImageResponseDTO {
	resp := ImageResponseDTO{
		ID:                 img.ID,
		Title:              img.Title,
		TransformationType: string(img.TransformationType),
		PublicID:           img.PublicID,
		Width:              img.Width,
		Height:             img.Height,
		Config:             img.Config,
		SecureURL:          img.SecureURL,
		TransformationURL:  img.TransformationURL,
		AspectRatio:        img.AspectRatio,
		Prompt:             img.Prompt,
		Color:              img.Color,
		CreatedAt:          img.CreatedAt,
		UpdatedAt:          img.UpdatedAt,
	}
	if img.Author != nil {
		resp.Author = &ImageAuthorDTO{
			ID:        img.Author.ID,
			ClerkID:   img.Author.ClerkID,
			FirstName: img.Author.FirstName,
			LastName:  img.Author.LastName,
		}
	}
	return resp
}
