package model

import "time"

// User mirrors the identity provider's subject in the local database.
// ClerkID is the provider's stable subject id and is unique.
type User struct {
	ID            string    `db:"id" json:"id"`
	ClerkID       string    `db:"clerk_id" json:"clerk_id"`
	Email         string    `db:"email" json:"email"`
	Username      string    `db:"username" json:"username"`
	FirstName     string    `db:"first_name" json:"first_name"`
	LastName      string    `db:"last_name" json:"last_name"`
	Photo         string    `db:"photo" json:"photo"`
	CreditBalance int       `db:"credit_balance" json:"credit_balance"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// UserProfile carries the provider-supplied profile attributes used when a
// user is provisioned or refreshed. Identity flows one way: the provider is
// the source of truth and is never written back.
type UserProfile struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Photo     string
}
