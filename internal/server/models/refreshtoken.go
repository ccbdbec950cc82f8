package models

import "time"

// RefreshToken grants future access-token reissuance to UserID until
// ExpiryDate. Token is the opaque string handed to the client.
type RefreshToken struct {
	ID         string
	UserID     string
	Token      string
	ExpiryDate time.Time
	CreatedAt  time.Time
}

// Expired reports whether the token's expiry lies strictly before now.
func (t *RefreshToken) Expired(now time.Time) bool {
	return t.ExpiryDate.Before(now)
}
