package models

// Student links an account to a matric number and a department (one-to-one
// with User).
type Student struct {
	MatricNo       string     `gorm:"primaryKey;size:50"`
	UserID         string     `gorm:"size:36;uniqueIndex;not null"`
	User           User       `gorm:"foreignKey:UserID;references:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	DeptID         string     `gorm:"size:20;not null;index"`
	Department     Department `gorm:"foreignKey:DeptID;references:DeptID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Level          int        `gorm:"default:100"`
	AdmissionYear  int        `gorm:"not null"`
	GraduationYear *int
	IsSuspended    bool `gorm:"default:false;not null"`
}
