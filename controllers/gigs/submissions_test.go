package gigs

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/yagnadeepxo/onboard/models"

	"github.com/gorilla/mux"
)

func submitBody() map[string]interface{} {
	return map[string]interface{}{
		"submission_link": "https://github.test/jane/landing",
		"wallet_address":  "0xdeadbeef",
		"confirmed":       true,
	}
}

func TestCreateSubmission_Succeeds(t *testing.T) {
	db := setupTestDB(t)
	gig := seedGig(t, db, time.Now().Add(48*time.Hour))

	req := jsonRequest(http.MethodPost, "/v1/gigs/"+gig.GigID+"/submissions", submitBody())
	req = mux.SetURLVars(req, map[string]string{"gigid": gig.GigID})
	req = withSession(req, freelancerSession())
	rec := httptest.NewRecorder()
	CreateSubmissionHandler(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var sub models.Submission
	if err := db.First(&sub).Error; err != nil {
		t.Fatalf("expected submission row: %v", err)
	}
	if sub.Username != "jane_doe" || sub.Email != "jane@mail.test" {
		t.Fatalf("identity fields should come from session, got %q %q", sub.Username, sub.Email)
	}
}

func TestCreateSubmission_DuplicateRejected(t *testing.T) {
	db := setupTestDB(t)
	gig := seedGig(t, db, time.Now().Add(48*time.Hour))

	for i := 0; i < 2; i++ {
		req := jsonRequest(http.MethodPost, "/v1/gigs/"+gig.GigID+"/submissions", submitBody())
		req = mux.SetURLVars(req, map[string]string{"gigid": gig.GigID})
		req = withSession(req, freelancerSession())
		rec := httptest.NewRecorder()
		CreateSubmissionHandler(rec, req)

		if i == 0 && rec.Code != http.StatusCreated {
			t.Fatalf("first submit: expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if i == 1 && rec.Code != http.StatusConflict {
			t.Fatalf("second submit: expected 409, got %d: %s", rec.Code, rec.Body.String())
		}
	}

	var count int64
	db.Model(&models.Submission{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly 1 submission, got %d", count)
	}
}

func TestCreateSubmission_BusinessRoleRejected(t *testing.T) {
	db := setupTestDB(t)
	gig := seedGig(t, db, time.Now().Add(48*time.Hour))

	req := jsonRequest(http.MethodPost, "/v1/gigs/"+gig.GigID+"/submissions", submitBody())
	req = mux.SetURLVars(req, map[string]string{"gigid": gig.GigID})
	req = withSession(req, businessSession())
	rec := httptest.NewRecorder()
	CreateSubmissionHandler(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestCreateSubmission_PastDeadlineRejected(t *testing.T) {
	db := setupTestDB(t)
	gig := seedGig(t, db, time.Now().Add(-time.Hour))

	req := jsonRequest(http.MethodPost, "/v1/gigs/"+gig.GigID+"/submissions", submitBody())
	req = mux.SetURLVars(req, map[string]string{"gigid": gig.GigID})
	req = withSession(req, freelancerSession())
	rec := httptest.NewRecorder()
	CreateSubmissionHandler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateSubmission_AfterAnnouncementRejected(t *testing.T) {
	db := setupTestDB(t)
	gig := seedGig(t, db, time.Now().Add(48*time.Hour))
	db.Model(&models.Gig{}).Where("gig_id = ?", gig.GigID).Update("winners_announced", true)

	req := jsonRequest(http.MethodPost, "/v1/gigs/"+gig.GigID+"/submissions", submitBody())
	req = mux.SetURLVars(req, map[string]string{"gigid": gig.GigID})
	req = withSession(req, freelancerSession())
	rec := httptest.NewRecorder()
	CreateSubmissionHandler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateSubmission_UnconfirmedRejected(t *testing.T) {
	db := setupTestDB(t)
	gig := seedGig(t, db, time.Now().Add(48*time.Hour))

	body := submitBody()
	body["confirmed"] = false
	req := jsonRequest(http.MethodPost, "/v1/gigs/"+gig.GigID+"/submissions", body)
	req = mux.SetURLVars(req, map[string]string{"gigid": gig.GigID})
	req = withSession(req, freelancerSession())
	rec := httptest.NewRecorder()
	CreateSubmissionHandler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestListSubmissions_AdvisoryWarningForNonBusiness(t *testing.T) {
	db := setupTestDB(t)
	gig := seedGig(t, db, time.Now().Add(48*time.Hour))

	sub := models.Submission{GigID: gig.GigID, Username: "jane_doe", SubmissionLink: "https://x.test", WalletAddress: "0x1", Email: "jane@mail.test"}
	if err := db.Create(&sub).Error; err != nil {
		t.Fatalf("seed submission: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/gigs/"+gig.GigID+"/submissions", nil)
	req = mux.SetURLVars(req, map[string]string{"gigid": gig.GigID})
	req = withSession(req, freelancerSession())
	rec := httptest.NewRecorder()
	ListSubmissionsHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 (advisory, not blocking), got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"warning"`) || !strings.Contains(body, `"submissions"`) {
		t.Fatalf("expected submissions plus warning for non-business caller, got %s", body)
	}
}
