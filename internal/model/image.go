package model

import (
	"time"

	"app/internal/transform"
)

// Image is one saved edit. The author is denormalized onto the row along
// with the applied transformation configuration and the derived URLs.
type Image struct {
	ID                 string           `db:"id" json:"id"`
	Title              string           `db:"title" json:"title"`
	AuthorID           string           `db:"author" json:"author_id"`
	TransformationType transform.Type   `db:"transformation_type" json:"transformation_type"`
	PublicID           string           `db:"public_id" json:"public_id"`
	Width              int              `db:"width" json:"width"`
	Height             int              `db:"height" json:"height"`
	Config             transform.Config `db:"config" json:"config"`
	SecureURL          string           `db:"secure_url" json:"secure_url"`
	TransformationURL  string           `db:"transformation_url" json:"transformation_url"`
	AspectRatio        string           `db:"aspect_ratio" json:"aspect_ratio,omitempty"`
	Prompt             string           `db:"prompt" json:"prompt,omitempty"`
	Color              string           `db:"color" json:"color,omitempty"`
	CreatedAt          time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time        `db:"updated_at" json:"updated_at"`

	// Author is populated on reads that join the owning user.
	Author *User `db:"-" json:"author,omitempty"`
}
