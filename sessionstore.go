package main

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"be05/models"

	"gorm.io/gorm"
)

// dbSessionStore implements token.Store on the session_tokens table. The key
// (the raw token string) is stored as its SHA-256 hex so the table never
// holds usable tokens.
type dbSessionStore struct {
	db *gorm.DB
}

func sessionKeyHash(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}

func (s *dbSessionStore) Get(key string) (string, bool) {
	var st models.SessionToken
	if err := s.db.Where("token_hash = ?", sessionKeyHash(key)).First(&st).Error; err != nil {
		return "", false
	}
	if time.Now().After(st.ExpiresAt) {
		// lazy cleanup of lapsed entries
		s.db.Delete(&models.SessionToken{}, st.ID)
		return "", false
	}
	return st.UserID, true
}

func (s *dbSessionStore) SetWithTTL(key, value string, ttl time.Duration) error {
	st := models.SessionToken{TokenHash: sessionKeyHash(key), UserID: value, ExpiresAt: time.Now().Add(ttl)}
	return s.db.Create(&st).Error
}

func (s *dbSessionStore) Delete(key string) error {
	return s.db.Where("token_hash = ?", sessionKeyHash(key)).Delete(&models.SessionToken{}).Error
}
