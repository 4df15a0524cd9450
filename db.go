package main

import (
	"log"
	"os"
	"strings"

	"be05/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var db *gorm.DB

func initDB() {
	var err error
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN is not set. This project requires a Postgres DSN in DB_DSN.")
	}
	db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect postgres database:", err)
	}
	// Control schema migrations with env DB_AUTO_MIGRATE (default true).
	shouldMigrate := true
	if v := os.Getenv("DB_AUTO_MIGRATE"); v != "" {
		lv := strings.ToLower(v)
		if lv == "false" || lv == "0" || lv == "no" {
			shouldMigrate = false
		}
	}
	if shouldMigrate {
		// Departments first so the student/lecturer FKs can be applied safely.
		// Migrate models individually so a failure on one doesn't block others.
		if err := db.AutoMigrate(&models.Department{}); err != nil {
			log.Printf("migration warning (departments): %v", err)
		}
		if err := db.AutoMigrate(&models.User{}); err != nil {
			log.Printf("migration warning (users): %v", err)
		}
		if err := db.AutoMigrate(&models.Student{}); err != nil {
			log.Printf("migration warning (students): %v", err)
		}
		if err := db.AutoMigrate(&models.Lecturer{}); err != nil {
			log.Printf("migration warning (lecturers): %v", err)
		}
		if err := db.AutoMigrate(&models.Admin{}); err != nil {
			log.Printf("migration warning (admins): %v", err)
		}
		if err := db.AutoMigrate(&models.SessionToken{}); err != nil {
			log.Printf("migration warning (session_tokens): %v", err)
		}
	}
	seedDB()
}

func seedDB() {
	// Ensure master departments exist
	depts := []models.Department{
		{DeptID: "CSC", Name: "Computer Science", Faculty: "Science"},
		{DeptID: "EEE", Name: "Electrical Engineering", Faculty: "Engineering"},
		{DeptID: "MTH", Name: "Mathematics", Faculty: "Science"},
	}
	for _, d := range depts {
		var cnt int64
		db.Model(&models.Department{}).Where("dept_id = ?", d.DeptID).Count(&cnt)
		if cnt == 0 {
			db.Create(&d)
		}
	}

	// Seed a bootstrap admin when none exists
	var count int64
	db.Model(&models.Admin{}).Count(&count)
	if count == 0 {
		email := os.Getenv("ADMIN_EMAIL")
		if email == "" {
			email = "admin@example.com"
		}
		pass := os.Getenv("ADMIN_PASSWORD")
		if pass == "" {
			pass = "admin123"
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			u, err := createUser(tx, "System", "Administrator", email, pass, "1990-01-01", models.RoleAdmin)
			if err != nil {
				return err
			}
			admin := models.Admin{AdminID: "ADM001", UserID: u.UserID, Office: "Registry"}
			return tx.Create(&admin).Error
		})
		if err != nil {
			log.Printf("failed to seed admin account: %v", err)
		} else {
			log.Printf("Seeded admin account: admin_id=ADM001, email=%s", email)
		}
	}
}
