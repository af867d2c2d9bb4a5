package dto

import (
	"time"

	"app/internal/model"
)

// UserProvisionDTO is the profile payload sent when a signed-in subject is
// provisioned or refreshed. The subject id itself comes from the session
// token, never from the body.
type UserProvisionDTO struct {
	Email     string `json:"email" validate:"required,email"`
	Username  string `json:"username" validate:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Photo     string `json:"photo" validate:"omitempty,url"`
}

// UserResponseDTO is returned in API responses.
type UserResponseDTO struct {
	ID            string    `json:"id"`
	ClerkID       string    `json:"clerk_id"`
	Email         string    `json:"email"`
	Username      string    `json:"username"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Photo         string    `json:"photo"`
	CreditBalance int       `json:"credit_balance"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewUserResponse maps a domain user to its response shape.
func NewUserResponse(u *model.User) UserResponseDTO {
	return UserResponseDTO{
		ID:            u.ID,
		ClerkID:       u.ClerkID,
		Email:         u.Email,
		Username:      u.Username,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Photo:         u.Photo,
		CreditBalance: u.CreditBalance,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}
