package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"be05/models"
	"be05/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var errInvalidCredentials = errors.New("invalid credentials")

// createUser builds the shared account row for any role. Callers attach the
// role-specific record (student/lecturer/admin) in the same transaction.
func createUser(tx *gorm.DB, firstName, lastName, email, plainPassword, dateOfBirth, role string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, fmt.Errorf("email required")
	}
	if len(plainPassword) < 6 { // basic password policy
		return nil, fmt.Errorf("password too short (min 6)")
	}
	dob, err := time.Parse("2006-01-02", dateOfBirth)
	if err != nil {
		return nil, fmt.Errorf("invalid date_of_birth, expected YYYY-MM-DD")
	}
	digest, err := password.Hash(plainPassword)
	if err != nil {
		return nil, err
	}
	user := models.User{
		UserID:         uuid.NewString(),
		FirstName:      strings.TrimSpace(firstName),
		LastName:       strings.TrimSpace(lastName),
		Email:          email,
		HashedPassword: digest,
		DateOfBirth:    dob,
		RoleName:       role,
	}
	if err := tx.Create(&user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, fmt.Errorf("a user with the same email already exists")
		}
		return nil, err
	}
	return &user, nil
}

// findActiveUser loads an account that has not been deactivated.
func findActiveUser(userID string) (*models.User, error) {
	var user models.User
	if err := db.Where("user_id = ? AND is_active = TRUE", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// loginStudent authenticates by matric number and mints a session token.
// Suspended students and deactivated accounts fail with the same uniform
// credential error as a wrong password.
func loginStudent(matricNo, plainPassword string) (*models.Student, *models.User, string, error) {
	var student models.Student
	if err := db.Where("matric_no = ? AND is_suspended = FALSE", matricNo).First(&student).Error; err != nil {
		return nil, nil, "", errInvalidCredentials
	}
	user, tok, err := loginUser(student.UserID, plainPassword)
	if err != nil {
		return nil, nil, "", err
	}
	return &student, user, tok, nil
}

// loginLecturer authenticates by staff id.
func loginLecturer(staffID, plainPassword string) (*models.Lecturer, *models.User, string, error) {
	var lecturer models.Lecturer
	if err := db.Where("staff_id = ?", staffID).First(&lecturer).Error; err != nil {
		return nil, nil, "", errInvalidCredentials
	}
	user, tok, err := loginUser(lecturer.UserID, plainPassword)
	if err != nil {
		return nil, nil, "", err
	}
	return &lecturer, user, tok, nil
}

// loginAdmin authenticates by admin id.
func loginAdmin(adminID, plainPassword string) (*models.Admin, *models.User, string, error) {
	var admin models.Admin
	if err := db.Where("admin_id = ?", adminID).First(&admin).Error; err != nil {
		return nil, nil, "", errInvalidCredentials
	}
	user, tok, err := loginUser(admin.UserID, plainPassword)
	if err != nil {
		return nil, nil, "", err
	}
	return &admin, user, tok, nil
}

func loginUser(userID, plainPassword string) (*models.User, string, error) {
	user, err := findActiveUser(userID)
	if err != nil {
		return nil, "", errInvalidCredentials
	}
	if !password.Verify(plainPassword, user.HashedPassword) {
		return nil, "", errInvalidCredentials
	}
	tok, err := issuer.Issue(user.UserID, user.RoleName)
	if err != nil {
		return nil, "", err
	}
	return user, tok, nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint") || strings.Contains(s, "already exists")
}
