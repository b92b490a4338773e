package gigs

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/yagnadeepxo/onboard/database"
	"github.com/yagnadeepxo/onboard/middleware"
	"github.com/yagnadeepxo/onboard/models"
	"github.com/yagnadeepxo/onboard/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type CreateSubmissionRequest struct {
	SubmissionLink string `json:"submission_link" validate:"required,urlok"`
	WalletAddress  string `json:"wallet_address" validate:"required"`
	Confirmed      bool   `json:"confirmed"`
}

// POST /v1/gigs/{gigid}/submissions
func CreateSubmissionHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := utils.GetSession(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	if sess.Role == "business" {
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Business accounts cannot submit work"})
		return
	}

	var req CreateSubmissionRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if !req.Confirmed {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Please confirm your submission details before submitting"})
		return
	}

	gigID := mux.Vars(r)["gigid"]
	var gig models.Gig
	if err := database.DB.Where("gig_id = ?", gigID).First(&gig).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Gig not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	if time.Now().After(gig.Deadline) {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "The deadline for this gig has passed"})
		return
	}
	if gig.WinnersAnnounced {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Winners have already been announced for this gig"})
		return
	}

	// Existence pre-check for a friendly error; the unique index is what
	// actually closes the race between two concurrent submits.
	var count int64
	if err := database.DB.Model(&models.Submission{}).
		Where("gig_id = ? AND username = ?", gig.GigID, sess.Username).
		Count(&count).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	if count > 0 {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "You have already submitted to this gig"})
		return
	}

	sub := models.Submission{
		GigID:          gig.GigID,
		Username:       sess.Username,
		SubmissionLink: strings.TrimSpace(req.SubmissionLink),
		WalletAddress:  strings.TrimSpace(req.WalletAddress),
		Email:          sess.Email,
	}
	if err := database.DB.Create(&sub).Error; err != nil {
		if isDuplicateKeyErr(err) {
			utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "You have already submitted to this gig"})
			return
		}
		log.Printf("[submissions] DB Create error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to submit, please try again"})
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Submission received", Data: sub})
}

// GET /v1/gigs/{gigid}/submissions
// The role check here is advisory: non-business callers still get the data,
// with a warning attached.
func ListSubmissionsHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := utils.GetSession(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	gigID := mux.Vars(r)["gigid"]
	var gig models.Gig
	if err := database.DB.Where("gig_id = ?", gigID).First(&gig).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Gig not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	var subs []models.Submission
	if err := database.DB.Where("gig_id = ?", gig.GigID).Order("created_at ASC").Find(&subs).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	data := map[string]interface{}{"submissions": subs}
	if sess.Role != "business" {
		data["warning"] = "Submissions are intended for the gig's business account"
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Submissions fetched", Data: data})
}

// isDuplicateKeyErr matches unique constraint violations across MySQL and
// SQLite without driver-specific error types.
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate entry") || strings.Contains(msg, "unique constraint")
}
