package models

import (
	"time"
)

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string `gorm:"unique;not null"          json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
}

// RevokedToken is the only durable state the service owns. A row exists
// iff that exact token string was logged out before its natural expiry.
// Rows are never updated; the reaper deletes them once ExpiresAt has passed.
type RevokedToken struct {
	Token     string    `gorm:"primaryKey"     json:"token"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`
}
