package models

import "time"

// SessionToken backs the revocable session store: one row per issued token,
// keyed by the SHA-256 of the exact token string, with its own expiry
// independent of the signed payload's embedded one.
type SessionToken struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	TokenHash string    `gorm:"size:128;not null;uniqueIndex"`
	UserID    string    `gorm:"size:36;not null;index"`
	ExpiresAt time.Time `gorm:"index;not null"`
}
