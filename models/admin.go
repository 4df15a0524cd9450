package models

// Admin links an account to an admin id (one-to-one with User).
type Admin struct {
	AdminID string `gorm:"primaryKey;size:50"`
	UserID  string `gorm:"size:36;uniqueIndex;not null"`
	User    User   `gorm:"foreignKey:UserID;references:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Office  string `gorm:"size:100"`
}
