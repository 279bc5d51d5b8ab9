package domain

import "time"

// User represents a registered account. Records are created on
// registration and never mutated afterwards.
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}
