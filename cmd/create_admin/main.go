package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"be05/models"
	"be05/pkg/password"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 4 {
		fmt.Println("usage: go run ./cmd/create_admin <admin_id> <email> <password>")
		os.Exit(2)
	}
	adminID := os.Args[1]
	email := strings.ToLower(strings.TrimSpace(os.Args[2]))
	plain := os.Args[3]

	dsn := os.Getenv("DB_DSN")
	if strings.TrimSpace(dsn) == "" {
		log.Fatal("DB_DSN not set in environment")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}

	// check existing
	var existing models.Admin
	if err := db.Where("admin_id = ?", adminID).First(&existing).Error; err == nil {
		fmt.Printf("admin %s already exists (user_id=%s)\n", adminID, existing.UserID)
		os.Exit(0)
	}

	digest, err := password.Hash(plain)
	if err != nil {
		log.Fatalf("bcrypt failed: %v", err)
	}
	user := models.User{
		UserID:         uuid.NewString(),
		FirstName:      "System",
		LastName:       "Administrator",
		Email:          email,
		HashedPassword: digest,
		DateOfBirth:    time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		RoleName:       models.RoleAdmin,
		IsVerified:     true,
		IsActive:       true,
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		admin := models.Admin{AdminID: adminID, UserID: user.UserID, Office: "Registry"}
		return tx.Create(&admin).Error
	})
	if err != nil {
		log.Fatalf("failed to create admin: %v", err)
	}
	fmt.Printf("created admin %s user_id=%s\n", adminID, user.UserID)
}
