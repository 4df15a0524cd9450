package models

// Department is the master record students and lecturers belong to.
type Department struct {
	DeptID  string `gorm:"primaryKey;size:20"`
	Name    string `gorm:"size:100;not null;uniqueIndex"`
	Faculty string `gorm:"size:100;not null"`
}
