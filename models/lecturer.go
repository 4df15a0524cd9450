package models

// Lecturer links an account to a staff id and a department (one-to-one with
// User).
type Lecturer struct {
	StaffID     string     `gorm:"primaryKey;size:50"`
	UserID      string     `gorm:"size:36;uniqueIndex;not null"`
	User        User       `gorm:"foreignKey:UserID;references:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	DeptID      string     `gorm:"size:20;not null;index"`
	Department  Department `gorm:"foreignKey:DeptID;references:DeptID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Designation string     `gorm:"size:50"`
}
