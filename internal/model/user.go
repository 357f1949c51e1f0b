// Package model defines domain entities for the application.
package model

import "time"

// User is a registered account.
// PasswordDigest is an argon2id PHC string and never leaves the server.
type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	PasswordDigest string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}
