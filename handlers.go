package main

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"be05/models"
	"be05/pkg/otp"
	"be05/pkg/password"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func setupRoutes(r *gin.Engine) {
	students := r.Group("/api/students")
	students.POST("/signup", studentSignupHandler)
	students.POST("/login", studentLoginHandler)
	students.GET("/get-otp", getOTPHandler)
	students.POST("/verify-account", verifyAccountHandler)
	students.PATCH("/reset-password", resetPasswordHandler)
	studentAuth := students.Group("", requireRole(issuer, models.RoleStudent))
	studentAuth.GET("/dashboard/:matric_no", studentDashboardHandler)
	studentAuth.PUT("/change-password", changePasswordHandler)
	studentAuth.POST("/logout", logoutHandler)

	lecturers := r.Group("/api/lecturers")
	lecturers.POST("/signup", lecturerSignupHandler)
	lecturers.POST("/login", lecturerLoginHandler)
	lecturers.GET("/get-otp", getOTPHandler)
	lecturers.POST("/verify-account", verifyAccountHandler)
	lecturers.PATCH("/reset-password", resetPasswordHandler)
	lecturerAuth := lecturers.Group("", requireRole(issuer, models.RoleLecturer))
	lecturerAuth.GET("/dashboard/:staff_id", lecturerDashboardHandler)
	lecturerAuth.PUT("/change-password", changePasswordHandler)
	lecturerAuth.POST("/logout", logoutHandler)

	admins := r.Group("/api/admins")
	admins.POST("/signup", adminSignupHandler)
	admins.POST("/login", adminLoginHandler)
	admins.GET("/get-otp", getOTPHandler)
	admins.PATCH("/verify-account", verifyAccountHandler)
	admins.PATCH("/reset-password", resetPasswordHandler)
	adminAuth := admins.Group("", requireRole(issuer, models.RoleAdmin))
	adminAuth.GET("/dashboard/:admin_id", adminDashboardHandler)
	adminAuth.PUT("/change-password", changePasswordHandler)
	adminAuth.POST("/logout", logoutHandler)
	adminAuth.PUT("/suspend-student", suspendStudentHandler)
	adminAuth.PUT("/unsuspend-student", unsuspendStudentHandler)
	adminAuth.PUT("/deactivate-user-account", deactivateUserHandler)
	adminAuth.PUT("/reactivate-user-account", reactivateUserHandler)
}

func studentSignupHandler(c *gin.Context) {
	var req struct {
		FirstName     string `json:"first_name" binding:"required"`
		LastName      string `json:"last_name" binding:"required"`
		Email         string `json:"email" binding:"required,email"`
		Password      string `json:"password" binding:"required"`
		DateOfBirth   string `json:"date_of_birth" binding:"required"`
		MatricNo      string `json:"matric_no" binding:"required"`
		DeptName      string `json:"dept_name" binding:"required"`
		Level         int    `json:"level" binding:"required"`
		AdmissionYear int    `json:"admission_year" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var dept models.Department
	if err := db.Where("name = ?", req.DeptName).First(&dept).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "department not found"})
		return
	}
	var existing models.Student
	if err := db.Where("matric_no = ?", req.MatricNo).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "a user with the same matric number already exists"})
		return
	}
	var user *models.User
	err := db.Transaction(func(tx *gorm.DB) error {
		u, err := createUser(tx, req.FirstName, req.LastName, req.Email, req.Password, req.DateOfBirth, models.RoleStudent)
		if err != nil {
			return err
		}
		user = u
		student := models.Student{MatricNo: req.MatricNo, UserID: u.UserID, DeptID: dept.DeptID, Level: req.Level, AdmissionYear: req.AdmissionYear}
		return tx.Create(&student).Error
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "a user with the same matric number already exists"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":    "account created successfully",
		"user_id":    user.UserID,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"matric_no":  req.MatricNo,
		"level":      req.Level,
		"department": dept.Name,
		"email":      user.Email,
	})
}

func lecturerSignupHandler(c *gin.Context) {
	var req struct {
		FirstName   string `json:"first_name" binding:"required"`
		LastName    string `json:"last_name" binding:"required"`
		Email       string `json:"email" binding:"required,email"`
		Password    string `json:"password" binding:"required"`
		DateOfBirth string `json:"date_of_birth" binding:"required"`
		StaffID     string `json:"staff_id" binding:"required"`
		DeptName    string `json:"dept_name" binding:"required"`
		Designation string `json:"designation"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var dept models.Department
	if err := db.Where("name = ?", req.DeptName).First(&dept).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "department not found"})
		return
	}
	var existing models.Lecturer
	if err := db.Where("staff_id = ?", req.StaffID).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "a user with the same staff id already exists"})
		return
	}
	var user *models.User
	err := db.Transaction(func(tx *gorm.DB) error {
		u, err := createUser(tx, req.FirstName, req.LastName, req.Email, req.Password, req.DateOfBirth, models.RoleLecturer)
		if err != nil {
			return err
		}
		user = u
		lecturer := models.Lecturer{StaffID: req.StaffID, UserID: u.UserID, DeptID: dept.DeptID, Designation: req.Designation}
		return tx.Create(&lecturer).Error
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "a user with the same staff id already exists"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":    "account created successfully",
		"user_id":    user.UserID,
		"staff_id":   req.StaffID,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"department": dept.Name,
		"email":      user.Email,
	})
}

func adminSignupHandler(c *gin.Context) {
	var req struct {
		FirstName   string `json:"first_name" binding:"required"`
		LastName    string `json:"last_name" binding:"required"`
		Email       string `json:"email" binding:"required,email"`
		Password    string `json:"password" binding:"required"`
		DateOfBirth string `json:"date_of_birth" binding:"required"`
		AdminID     string `json:"admin_id" binding:"required"`
		Office      string `json:"office"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var existing models.Admin
	if err := db.Where("admin_id = ?", req.AdminID).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "a user with the same admin id already exists"})
		return
	}
	var user *models.User
	err := db.Transaction(func(tx *gorm.DB) error {
		u, err := createUser(tx, req.FirstName, req.LastName, req.Email, req.Password, req.DateOfBirth, models.RoleAdmin)
		if err != nil {
			return err
		}
		user = u
		admin := models.Admin{AdminID: req.AdminID, UserID: u.UserID, Office: req.Office}
		return tx.Create(&admin).Error
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "a user with the same admin id already exists"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":    "account created successfully",
		"user_id":    user.UserID,
		"admin_id":   req.AdminID,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"email":      user.Email,
	})
}

func studentLoginHandler(c *gin.Context) {
	var req struct {
		MatricNo string `json:"matric_no" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "please provide matric no and password"})
		return
	}
	student, user, tok, err := loginStudent(req.MatricNo, req.Password)
	if err != nil {
		loginFailureResponse(c, err, "invalid matric number or password")
		return
	}
	var dept models.Department
	db.Where("dept_id = ?", student.DeptID).First(&dept)
	c.JSON(http.StatusOK, gin.H{
		"message":        "login successful",
		"token":          tok,
		"matric_no":      student.MatricNo,
		"first_name":     user.FirstName,
		"last_name":      user.LastName,
		"email":          user.Email,
		"department":     dept.Name,
		"level":          student.Level,
		"admission_year": student.AdmissionYear,
		"account_status": user.IsVerified,
	})
}

func lecturerLoginHandler(c *gin.Context) {
	var req struct {
		StaffID  string `json:"staff_id" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "please provide staff id and password"})
		return
	}
	lecturer, user, tok, err := loginLecturer(req.StaffID, req.Password)
	if err != nil {
		loginFailureResponse(c, err, "invalid staff id or password")
		return
	}
	var dept models.Department
	db.Where("dept_id = ?", lecturer.DeptID).First(&dept)
	c.JSON(http.StatusOK, gin.H{
		"message":        "login successful",
		"token":          tok,
		"staff_id":       lecturer.StaffID,
		"first_name":     user.FirstName,
		"last_name":      user.LastName,
		"email":          user.Email,
		"department":     dept.Name,
		"designation":    lecturer.Designation,
		"account_status": user.IsVerified,
	})
}

func adminLoginHandler(c *gin.Context) {
	var req struct {
		AdminID  string `json:"admin_id" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "please provide admin ID and password"})
		return
	}
	admin, user, tok, err := loginAdmin(req.AdminID, req.Password)
	if err != nil {
		loginFailureResponse(c, err, "invalid admin ID or password")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":        "login successful",
		"token":          tok,
		"admin_id":       admin.AdminID,
		"first_name":     user.FirstName,
		"last_name":      user.LastName,
		"email":          user.Email,
		"office":         admin.Office,
		"account_status": user.IsVerified,
	})
}

// loginFailureResponse maps a login error to its status: a credential
// mismatch stays a uniform 401, anything else (e.g. a session-store write
// failure during token issue) is an opaque 500, not a credential problem.
func loginFailureResponse(c *gin.Context, err error, invalidMsg string) {
	if errors.Is(err, errInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": invalidMsg})
		return
	}
	log.Printf("login failed: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
}

// getOTPHandler mails a one-time code to the given address. Delivery
// failures are surfaced; nothing is retried.
func getOTPHandler(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email required"})
		return
	}
	if err := codes.Issue(email); err != nil {
		if errors.Is(err, otp.ErrDelivery) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to send otp"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate otp"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "email sent, check your mail for otp"})
}

func verifyAccountHandler(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
		OTP   string `json:"otp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !codes.Verify(req.Email, req.OTP) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "verification unsuccessful, check your otp"})
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))
	res := db.Model(&models.User{}).Where("email = ?", email).Update("is_verified", true)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "account verification successful"})
}

func resetPasswordHandler(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		OTP      string `json:"otp" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !codes.Verify(req.Email, req.OTP) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "verification unsuccessful, check your otp"})
		return
	}
	digest, err := password.Hash(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))
	res := db.Model(&models.User{}).Where("email = ?", email).Update("hashed_password", digest)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password reset successful"})
}

// changePasswordHandler rotates the password of the authenticated account.
// The subject comes from the verified token, not from the request body.
func changePasswordHandler(c *gin.Context) {
	var req struct {
		OldPassword string `json:"old_password" binding:"required"`
		NewPassword string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "old and new password required"})
		return
	}
	user, err := findActiveUser(c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	if !password.Verify(req.OldPassword, user.HashedPassword) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "current password is incorrect"})
		return
	}
	digest, err := password.Hash(req.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}
	if err := db.Model(&models.User{}).Where("user_id = ?", user.UserID).Update("hashed_password", digest).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password changed successfully"})
}

// logoutHandler revokes the presented token. The gate already validated the
// header, so the session dies immediately even though the signed payload has
// not reached its embedded expiry.
func logoutHandler(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	issuer.Revoke(strings.TrimPrefix(authHeader, bearerScheme))
	c.JSON(http.StatusOK, gin.H{"message": "logout successful"})
}

func studentDashboardHandler(c *gin.Context) {
	var student models.Student
	err := db.Preload("User").Preload("Department").Where("matric_no = ?", c.Param("matric_no")).First(&student).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "student not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"matric_no":       student.MatricNo,
		"name":            student.User.FirstName + " " + student.User.LastName,
		"email":           student.User.Email,
		"date_of_birth":   student.User.DateOfBirth.Format("2006-01-02"),
		"level":           student.Level,
		"admission_year":  student.AdmissionYear,
		"graduation_year": student.GraduationYear,
		"department":      student.Department.Name,
	})
}

func lecturerDashboardHandler(c *gin.Context) {
	var lecturer models.Lecturer
	err := db.Preload("User").Preload("Department").Where("staff_id = ?", c.Param("staff_id")).First(&lecturer).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "lecturer not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"staff_id":    lecturer.StaffID,
		"name":        lecturer.User.FirstName + " " + lecturer.User.LastName,
		"email":       lecturer.User.Email,
		"department":  lecturer.Department.Name,
		"designation": lecturer.Designation,
	})
}

func adminDashboardHandler(c *gin.Context) {
	var admin models.Admin
	err := db.Preload("User").Where("admin_id = ?", c.Param("admin_id")).First(&admin).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "admin not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"admin_id": admin.AdminID,
		"name":     admin.User.FirstName + " " + admin.User.LastName,
		"email":    admin.User.Email,
		"office":   admin.Office,
	})
}

func suspendStudentHandler(c *gin.Context) {
	setStudentSuspended(c, true, "student suspended")
}

func unsuspendStudentHandler(c *gin.Context) {
	setStudentSuspended(c, false, "student unsuspended")
}

func setStudentSuspended(c *gin.Context, suspended bool, message string) {
	var req struct {
		MatricNo string `json:"matric_no" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res := db.Model(&models.Student{}).Where("matric_no = ?", req.MatricNo).Update("is_suspended", suspended)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "student not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

func deactivateUserHandler(c *gin.Context) {
	setUserActive(c, false, "user account deactivated")
}

func reactivateUserHandler(c *gin.Context) {
	setUserActive(c, true, "user account reactivated")
}

func setUserActive(c *gin.Context, active bool, message string) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))
	res := db.Model(&models.User{}).Where("email = ?", email).Update("is_active", active)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}
