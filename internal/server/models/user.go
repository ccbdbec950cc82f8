// Package models holds the server-side records persisted by repositories.
package models

import "time"

// User is an identity record. Username and Email are each unique across all
// users; PasswordHash is the opaque output of the configured password hasher.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}
