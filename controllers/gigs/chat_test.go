package gigs

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/yagnadeepxo/onboard/models"

	"github.com/gorilla/mux"
)

func TestPostChat_TooLongRejectedBeforeWrite(t *testing.T) {
	db := setupTestDB(t)
	gig := seedGig(t, db, time.Now().Add(48*time.Hour))

	body := map[string]interface{}{"message": strings.Repeat("a", 251)}
	req := jsonRequest(http.MethodPost, "/v1/gigs/"+gig.GigID+"/chat", body)
	req = mux.SetURLVars(req, map[string]string{"gigid": gig.GigID})
	req = withSession(req, freelancerSession())
	rec := httptest.NewRecorder()
	PostChatHandler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var count int64
	db.Model(&models.ChatMessage{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no rows after rejected message, got %d", count)
	}
}

func TestPostChat_AtLimitAccepted(t *testing.T) {
	db := setupTestDB(t)
	gig := seedGig(t, db, time.Now().Add(48*time.Hour))

	body := map[string]interface{}{"message": strings.Repeat("b", 250)}
	req := jsonRequest(http.MethodPost, "/v1/gigs/"+gig.GigID+"/chat", body)
	req = mux.SetURLVars(req, map[string]string{"gigid": gig.GigID})
	req = withSession(req, freelancerSession())
	rec := httptest.NewRecorder()
	PostChatHandler(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var msg models.ChatMessage
	if err := db.First(&msg).Error; err != nil {
		t.Fatalf("expected message row: %v", err)
	}
	if msg.Username != "jane_doe" {
		t.Fatalf("author must come from session, got %q", msg.Username)
	}
}

func TestListChat_AscendingByCreation(t *testing.T) {
	db := setupTestDB(t)
	gig := seedGig(t, db, time.Now().Add(48*time.Hour))

	base := time.Now().Add(-time.Hour)
	seed := []models.ChatMessage{
		{GigID: gig.GigID, Username: "jane_doe", Message: "first", CreatedAt: base},
		{GigID: gig.GigID, Username: "acme", Message: "second", CreatedAt: base.Add(time.Minute)},
		{GigID: gig.GigID, Username: "jane_doe", Message: "third", CreatedAt: base.Add(2 * time.Minute)},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("seed message: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/gigs/"+gig.GigID+"/chat", nil)
	req = mux.SetURLVars(req, map[string]string{"gigid": gig.GigID})
	req = withSession(req, freelancerSession())
	rec := httptest.NewRecorder()
	ListChatHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Data []models.ChatMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Data) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(resp.Data))
	}
	if resp.Data[0].Message != "first" || resp.Data[2].Message != "third" {
		t.Fatalf("expected ascending order, got %q ... %q", resp.Data[0].Message, resp.Data[2].Message)
	}
}

func TestDeleteChat_AuthorOnly(t *testing.T) {
	db := setupTestDB(t)
	gig := seedGig(t, db, time.Now().Add(48*time.Hour))

	msg := models.ChatMessage{GigID: gig.GigID, Username: "jane_doe", Message: "mine"}
	if err := db.Create(&msg).Error; err != nil {
		t.Fatalf("seed message: %v", err)
	}
	id := strconv.FormatUint(uint64(msg.ID), 10)

	// another user cannot delete it
	req := httptest.NewRequest(http.MethodDelete, "/v1/chat/"+id, nil)
	req = mux.SetURLVars(req, map[string]string{"id": id})
	req = withSession(req, businessSession())
	rec := httptest.NewRecorder()
	DeleteChatHandler(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-author, got %d", rec.Code)
	}

	// the author can
	req = httptest.NewRequest(http.MethodDelete, "/v1/chat/"+id, nil)
	req = mux.SetURLVars(req, map[string]string{"id": id})
	req = withSession(req, freelancerSession())
	rec = httptest.NewRecorder()
	DeleteChatHandler(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for author, got %d", rec.Code)
	}

	var count int64
	db.Model(&models.ChatMessage{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected message deleted, got %d rows", count)
	}
}
