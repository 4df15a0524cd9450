package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"testing"

	"be05/models"
	"be05/pkg/otp"
	"be05/pkg/token"

	"github.com/gin-gonic/gin"
)

// captureMailer records the last message instead of sending it, so tests can
// read the one-time code out of the body.
type captureMailer struct {
	lastBody string
}

func (m *captureMailer) Send(address, subject, body string) error {
	m.lastBody = body
	return nil
}

var otpCodeRE = regexp.MustCompile(`\b\d{6}\b`)

// helper to perform requests with auth token
func performRequest(r http.Handler, method, path string, body io.Reader, tok string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func setupTestServer(t *testing.T) (*gin.Engine, *captureMailer) {
	// integration tests are opt-in. Set DB_DSN_TEST=1 and DB_DSN to run them.
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	gin.SetMode(gin.TestMode)
	initDB()
	mailer := &captureMailer{}
	issuer = token.NewIssuer([]byte("integration-test-secret"), &dbSessionStore{db: db})
	codes = otp.NewService([]byte("integration-test-otp"), mailer)
	r := gin.Default()
	setupRoutes(r)
	return r, mailer
}

// cleanupStudent removes leftovers from earlier runs so signups start fresh.
func cleanupStudent(matricNo, email string) {
	var student models.Student
	if err := db.Where("matric_no = ?", matricNo).First(&student).Error; err == nil {
		db.Delete(&student)
		db.Where("user_id = ?", student.UserID).Delete(&models.User{})
	}
	db.Where("email = ?", email).Delete(&models.User{})
}

func signupStudent(t *testing.T, r *gin.Engine, matricNo, email, password string) {
	t.Helper()
	body, _ := json.Marshal(map[string]any{
		"first_name":     "Ada",
		"last_name":      "Okafor",
		"email":          email,
		"password":       password,
		"date_of_birth":  "2003-04-12",
		"matric_no":      matricNo,
		"dept_name":      "Computer Science",
		"level":          200,
		"admission_year": 2021,
	})
	resp := performRequest(r, http.MethodPost, "/api/students/signup", bytes.NewBuffer(body), "")
	if resp.Code != 201 {
		t.Fatalf("signup failed status=%d body=%s", resp.Code, resp.Body.String())
	}
}

func loginStudentRequest(r *gin.Engine, matricNo, password string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(map[string]string{"matric_no": matricNo, "password": password})
	return performRequest(r, http.MethodPost, "/api/students/login", bytes.NewBuffer(body), "")
}

func TestStudentAuthFlow(t *testing.T) {
	r, _ := setupTestServer(t)
	cleanupStudent("CSC2021001", "ada.okafor@example.com")

	// 1. Sign up (seeded department)
	signupStudent(t, r, "CSC2021001", "ada.okafor@example.com", "pass-word-1")

	// 2. Login
	resp := loginStudentRequest(r, "CSC2021001", "pass-word-1")
	if resp.Code != 200 {
		t.Fatalf("login failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var loginResp map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &loginResp)
	tok, _ := loginResp["token"].(string)
	if tok == "" {
		t.Fatalf("empty token in login response: %+v", loginResp)
	}

	// 3. Dashboard with the token
	resp = performRequest(r, http.MethodGet, "/api/students/dashboard/CSC2021001", nil, tok)
	if resp.Code != 200 {
		t.Fatalf("dashboard failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 4. Student token on an admin route is forbidden, not unauthorized
	susBody, _ := json.Marshal(map[string]string{"matric_no": "CSC2021001"})
	resp = performRequest(r, http.MethodPut, "/api/admins/suspend-student", bytes.NewBuffer(susBody), tok)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for wrong role got %d body=%s", resp.Code, resp.Body.String())
	}

	// 5. Missing token is unauthorized
	resp = performRequest(r, http.MethodGet, "/api/students/dashboard/CSC2021001", nil, "")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}

	// 6. Change password using the authenticated subject
	cpBody, _ := json.Marshal(map[string]string{"old_password": "pass-word-1", "new_password": "pass-word-2"})
	resp = performRequest(r, http.MethodPut, "/api/students/change-password", bytes.NewBuffer(cpBody), tok)
	if resp.Code != 200 {
		t.Fatalf("change password failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 7. Logout, then the token is dead even though its signed expiry is far off
	resp = performRequest(r, http.MethodPost, "/api/students/logout", nil, tok)
	if resp.Code != 200 {
		t.Fatalf("logout failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodGet, "/api/students/dashboard/CSC2021001", nil, tok)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout got %d", resp.Code)
	}

	// 8. Login again with the rotated password
	resp = loginStudentRequest(r, "CSC2021001", "pass-word-2")
	if resp.Code != 200 {
		t.Fatalf("re-login failed status=%d body=%s", resp.Code, resp.Body.String())
	}
}

func TestVerifyAccountFlow(t *testing.T) {
	r, mailer := setupTestServer(t)
	cleanupStudent("CSC2021002", "bisi.adeyemi@example.com")
	signupStudent(t, r, "CSC2021002", "bisi.adeyemi@example.com", "pass-word-1")

	// request a code for the new account
	resp := performRequest(r, http.MethodGet, "/api/students/get-otp?email=bisi.adeyemi@example.com", nil, "")
	if resp.Code != 200 {
		t.Fatalf("get-otp failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	code := otpCodeRE.FindString(mailer.lastBody)
	if code == "" {
		t.Fatalf("no 6-digit code in mail body: %s", mailer.lastBody)
	}

	// a wrong code must not flip the flag
	wrong := "000000"
	if wrong == code {
		wrong = "111111"
	}
	vBody, _ := json.Marshal(map[string]string{"email": "bisi.adeyemi@example.com", "otp": wrong})
	resp = performRequest(r, http.MethodPost, "/api/students/verify-account", bytes.NewBuffer(vBody), "")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong code got %d body=%s", resp.Code, resp.Body.String())
	}
	var loginResp map[string]any
	rec := loginStudentRequest(r, "CSC2021002", "pass-word-1")
	_ = json.Unmarshal(rec.Body.Bytes(), &loginResp)
	if verified, _ := loginResp["account_status"].(bool); verified {
		t.Fatalf("wrong code flipped the verified flag: %+v", loginResp)
	}

	// a matching code for an address with no account is a 404, not a success
	resp = performRequest(r, http.MethodGet, "/api/students/get-otp?email=ghost@example.com", nil, "")
	if resp.Code != 200 {
		t.Fatalf("get-otp for unknown address failed status=%d", resp.Code)
	}
	ghostCode := otpCodeRE.FindString(mailer.lastBody)
	vBody, _ = json.Marshal(map[string]string{"email": "ghost@example.com", "otp": ghostCode})
	resp = performRequest(r, http.MethodPost, "/api/students/verify-account", bytes.NewBuffer(vBody), "")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown user got %d body=%s", resp.Code, resp.Body.String())
	}

	// the matching code flips the flag
	vBody, _ = json.Marshal(map[string]string{"email": "bisi.adeyemi@example.com", "otp": code})
	resp = performRequest(r, http.MethodPost, "/api/students/verify-account", bytes.NewBuffer(vBody), "")
	if resp.Code != 200 {
		t.Fatalf("verify-account failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	rec = loginStudentRequest(r, "CSC2021002", "pass-word-1")
	loginResp = map[string]any{}
	_ = json.Unmarshal(rec.Body.Bytes(), &loginResp)
	if verified, _ := loginResp["account_status"].(bool); !verified {
		t.Fatalf("matching code did not flip the verified flag: %+v", loginResp)
	}
}

func TestSuspendedAndDeactivatedLogin(t *testing.T) {
	r, _ := setupTestServer(t)
	cleanupStudent("CSC2021003", "chidi.eze@example.com")
	signupStudent(t, r, "CSC2021003", "chidi.eze@example.com", "pass-word-1")

	if resp := loginStudentRequest(r, "CSC2021003", "pass-word-1"); resp.Code != 200 {
		t.Fatalf("baseline login failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// a suspended student cannot log in, with the uniform credential error
	db.Model(&models.Student{}).Where("matric_no = ?", "CSC2021003").Update("is_suspended", true)
	if resp := loginStudentRequest(r, "CSC2021003", "pass-word-1"); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for suspended student got %d body=%s", resp.Code, resp.Body.String())
	}
	db.Model(&models.Student{}).Where("matric_no = ?", "CSC2021003").Update("is_suspended", false)
	if resp := loginStudentRequest(r, "CSC2021003", "pass-word-1"); resp.Code != 200 {
		t.Fatalf("login after unsuspend failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// a deactivated account cannot log in either
	db.Model(&models.User{}).Where("email = ?", "chidi.eze@example.com").Update("is_active", false)
	if resp := loginStudentRequest(r, "CSC2021003", "pass-word-1"); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for deactivated account got %d body=%s", resp.Code, resp.Body.String())
	}
	db.Model(&models.User{}).Where("email = ?", "chidi.eze@example.com").Update("is_active", true)
	if resp := loginStudentRequest(r, "CSC2021003", "pass-word-1"); resp.Code != 200 {
		t.Fatalf("login after reactivation failed status=%d body=%s", resp.Code, resp.Body.String())
	}
}

func TestMigrateCommand(t *testing.T) {
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	initDB()
}
