package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yagnadeepxo/onboard/database"
	"github.com/yagnadeepxo/onboard/middleware"
	"github.com/yagnadeepxo/onboard/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Profile{}, &models.RefreshToken{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })
	return db
}

func jsonRequest(target string, body interface{}) *http.Request {
	buf, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func registerBody(email, username string) map[string]interface{} {
	return map[string]interface{}{
		"email":                 email,
		"username":              username,
		"role":                  "freelancer",
		"display_name":          "Jane",
		"password":              "hunter22",
		"password_confirmation": "hunter22",
	}
}

func register(t *testing.T, email, username string) map[string]interface{} {
	t.Helper()
	rec := httptest.NewRecorder()
	RegisterHandler(rec, jsonRequest("/v1/register", registerBody(email, username)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	return resp.Data
}

func TestRegister_CreatesUserAndProfile(t *testing.T) {
	db := setupTestDB(t)

	data := register(t, "jane@mail.test", "jane_doe")
	if data["access_token"] == "" || data["refresh_token"] == "" {
		t.Fatal("expected tokens in register response")
	}

	var user models.User
	if err := db.Where("email = ?", "jane@mail.test").First(&user).Error; err != nil {
		t.Fatalf("expected user row: %v", err)
	}
	if user.Password == "hunter22" {
		t.Fatal("password must be stored hashed")
	}
	var profile models.Profile
	if err := db.Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
		t.Fatalf("expected profile row: %v", err)
	}
	if profile.Username != "jane_doe" || profile.Role != "freelancer" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
}

func TestRegister_DuplicateUsernameRejected(t *testing.T) {
	setupTestDB(t)
	register(t, "jane@mail.test", "jane_doe")

	rec := httptest.NewRecorder()
	RegisterHandler(rec, jsonRequest("/v1/register", registerBody("other@mail.test", "jane_doe")))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for taken username, got %d", rec.Code)
	}
}

func TestRegister_PasswordConfirmationMustMatch(t *testing.T) {
	setupTestDB(t)

	body := registerBody("jane@mail.test", "jane_doe")
	body["password_confirmation"] = "different"
	rec := httptest.NewRecorder()
	RegisterHandler(rec, jsonRequest("/v1/register", body))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLogin_WrongPasswordRejected(t *testing.T) {
	db := setupTestDB(t)
	register(t, "jane@mail.test", "jane_doe")

	rec := httptest.NewRecorder()
	LoginHandler(rec, jsonRequest("/v1/login", map[string]interface{}{
		"email":    "jane@mail.test",
		"password": "wrongpass",
	}))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	// clear the in-memory lockout this failure recorded
	var user models.User
	if err := db.Where("email = ?", "jane@mail.test").First(&user).Error; err == nil {
		middleware.ResetFailedLogin(user.ID)
	}
}

func TestLogin_Succeeds(t *testing.T) {
	setupTestDB(t)
	register(t, "jane@mail.test", "jane_doe")

	rec := httptest.NewRecorder()
	LoginHandler(rec, jsonRequest("/v1/login", map[string]interface{}{
		"email":    "jane@mail.test",
		"password": "hunter22",
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if resp.Data["access_token"] == "" || resp.Data["refresh_token"] == "" {
		t.Fatal("expected tokens in login response")
	}
}

func TestRefresh_RotatesToken(t *testing.T) {
	db := setupTestDB(t)
	data := register(t, "jane@mail.test", "jane_doe")
	oldToken, _ := data["refresh_token"].(string)
	if oldToken == "" {
		t.Fatal("missing refresh token from register")
	}

	rec := httptest.NewRecorder()
	RefreshHandler(rec, jsonRequest("/v1/refresh", map[string]interface{}{"refresh_token": oldToken}))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode refresh response: %v", err)
	}
	newToken, _ := resp.Data["refresh_token"].(string)
	if newToken == "" || newToken == oldToken {
		t.Fatalf("expected a rotated refresh token, got %q", newToken)
	}

	// the old token is now revoked
	var rt models.RefreshToken
	if err := db.Where("id = ?", oldToken).First(&rt).Error; err != nil {
		t.Fatalf("load old refresh token: %v", err)
	}
	if !rt.Revoked {
		t.Fatal("old refresh token must be revoked after rotation")
	}

	rec = httptest.NewRecorder()
	RefreshHandler(rec, jsonRequest("/v1/refresh", map[string]interface{}{"refresh_token": oldToken}))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("replaying old token: expected 401, got %d", rec.Code)
	}
}

func TestLogout_RevokesRefreshToken(t *testing.T) {
	db := setupTestDB(t)
	data := register(t, "jane@mail.test", "jane_doe")
	token, _ := data["refresh_token"].(string)

	rec := httptest.NewRecorder()
	LogoutHandler(rec, jsonRequest("/v1/logout", map[string]interface{}{"refresh_token": token}))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var rt models.RefreshToken
	if err := db.Where("id = ?", token).First(&rt).Error; err != nil {
		t.Fatalf("load refresh token: %v", err)
	}
	if !rt.Revoked {
		t.Fatal("refresh token must be revoked after logout")
	}
}
