package users

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yagnadeepxo/onboard/database"
	"github.com/yagnadeepxo/onboard/models"
	"github.com/yagnadeepxo/onboard/utils"

	"github.com/gorilla/mux"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Profile{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })
	return db
}

func seedProfile(t *testing.T, db *gorm.DB) models.Profile {
	t.Helper()
	user := models.User{Email: "jane@mail.test", Password: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	profile := models.Profile{
		UserID:      user.ID,
		Username:    "jane_doe",
		Role:        "freelancer",
		DisplayName: "Jane",
		About:       "I build things",
	}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	return profile
}

func sessionFor(p models.Profile) utils.Session {
	return utils.Session{UserID: p.UserID, Role: p.Role, Username: p.Username, DisplayName: p.DisplayName, Email: "jane@mail.test"}
}

func TestUsernameAvailable(t *testing.T) {
	db := setupTestDB(t)
	seedProfile(t, db)

	cases := []struct {
		username  string
		available bool
	}{
		{"jane_doe", false},
		{"john_doe", true},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/v1/username-available?username="+tc.username, nil)
		rec := httptest.NewRecorder()
		UsernameAvailableHandler(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", tc.username, rec.Code)
		}
		var resp struct {
			Data struct {
				Available bool `json:"available"`
			} `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Data.Available != tc.available {
			t.Fatalf("%s: expected available=%v", tc.username, tc.available)
		}
	}
}

func TestGetProfile_PublicLookup(t *testing.T) {
	db := setupTestDB(t)
	seedProfile(t, db)

	req := httptest.NewRequest(http.MethodGet, "/v1/profiles/jane_doe", nil)
	req = mux.SetURLVars(req, map[string]string{"username": "jane_doe"})
	rec := httptest.NewRecorder()
	GetProfileHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data["username"] != "jane_doe" || resp.Data["display_name"] != "Jane" {
		t.Fatalf("unexpected profile payload: %v", resp.Data)
	}
}

func TestGetProfile_NotFound(t *testing.T) {
	setupTestDB(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/profiles/ghost", nil)
	req = mux.SetURLVars(req, map[string]string{"username": "ghost"})
	rec := httptest.NewRecorder()
	GetProfileHandler(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestUpdateProfile_FieldsWithoutAvatar(t *testing.T) {
	db := setupTestDB(t)
	profile := seedProfile(t, db)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("display_name", "Jane D.")
	_ = mw.WriteField("about", "Updated bio")
	_ = mw.WriteField("github_url", "https://github.test/jane")
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPut, "/v1/users/profile", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = req.WithContext(context.WithValue(req.Context(), utils.SessionKey, sessionFor(profile)))
	rec := httptest.NewRecorder()
	UpdateProfileHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var updated models.Profile
	if err := db.Where("user_id = ?", profile.UserID).First(&updated).Error; err != nil {
		t.Fatalf("reload profile: %v", err)
	}
	if updated.DisplayName != "Jane D." || updated.About != "Updated bio" {
		t.Fatalf("fields not updated: %+v", updated)
	}
	if updated.GithubURL == nil || *updated.GithubURL != "https://github.test/jane" {
		t.Fatal("github_url not updated")
	}
	if updated.Username != "jane_doe" {
		t.Fatal("username must never change")
	}
}

func TestUpdateProfile_NullClearsURL(t *testing.T) {
	db := setupTestDB(t)
	profile := seedProfile(t, db)
	link := "https://github.test/jane"
	db.Model(&models.Profile{}).Where("user_id = ?", profile.UserID).Update("github_url", &link)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("github_url", "null")
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPut, "/v1/users/profile", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = req.WithContext(context.WithValue(req.Context(), utils.SessionKey, sessionFor(profile)))
	rec := httptest.NewRecorder()
	UpdateProfileHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var updated models.Profile
	if err := db.Where("user_id = ?", profile.UserID).First(&updated).Error; err != nil {
		t.Fatalf("reload profile: %v", err)
	}
	if updated.GithubURL != nil {
		t.Fatalf("expected github_url cleared, got %v", *updated.GithubURL)
	}
}
