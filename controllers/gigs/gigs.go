package gigs

import (
	"errors"
	"log"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/yagnadeepxo/onboard/database"
	"github.com/yagnadeepxo/onboard/middleware"
	"github.com/yagnadeepxo/onboard/models"
	"github.com/yagnadeepxo/onboard/utils"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type CreateGigRequest struct {
	Title           string                 `json:"title" validate:"required"`
	Description     string                 `json:"description" validate:"required"`
	Type            string                 `json:"type" validate:"required,oneof=bounty grant"`
	Deadline        string                 `json:"deadline" validate:"required"`
	TotalBounty     float64                `json:"total_bounty"`
	BountyBreakdown models.BountyBreakdown `json:"bounty_breakdown"`
	SkillsRequired  string                 `json:"skills_required"`
}

// POST /v1/gigs (business only)
func CreateGigHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := utils.GetSession(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var req CreateGigRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	deadline, err := time.Parse(time.RFC3339, req.Deadline)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "deadline must be an RFC3339 timestamp"})
		return
	}
	if req.TotalBounty <= 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "total_bounty must be greater than zero"})
		return
	}
	if len(req.BountyBreakdown) == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "bounty_breakdown cannot be empty"})
		return
	}
	for _, p := range req.BountyBreakdown {
		if p.Place <= 0 || p.Amount <= 0 {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Each breakdown entry needs a positive place and amount"})
			return
		}
	}

	// Breakdown must sum to the total before anything is written
	if math.Abs(req.BountyBreakdown.Total()-req.TotalBounty) > 0.009 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Total bounty doesn't match the breakdown sum. Please check your prize distribution.",
		})
		return
	}

	// Company and owner come from the session, never the request body
	gig := models.Gig{
		GigID:           uuid.NewString(),
		Business:        sess.UserID,
		Company:         sess.DisplayName,
		Title:           strings.TrimSpace(req.Title),
		Description:     req.Description,
		Type:            req.Type,
		Deadline:        deadline,
		TotalBounty:     req.TotalBounty,
		BountyBreakdown: req.BountyBreakdown,
		SkillsRequired:  strings.TrimSpace(req.SkillsRequired),
	}

	if err := database.DB.Create(&gig).Error; err != nil {
		log.Printf("[gigs] DB Create gig error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to create gig"})
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Gig created", Data: gig})
}

// GET /v1/gigs?type=bounty|grant&sort=latest|oldest
func ListGigsHandler(w http.ResponseWriter, r *http.Request) {
	db := database.DB.Model(&models.Gig{})

	if t := r.URL.Query().Get("type"); t != "" {
		if t != "bounty" && t != "grant" {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "type must be bounty or grant"})
			return
		}
		db = db.Where("type = ?", t)
	}

	switch r.URL.Query().Get("sort") {
	case "oldest":
		db = db.Order("deadline ASC")
	default:
		db = db.Order("deadline DESC")
	}

	var gigList []models.Gig
	if err := db.Find(&gigList).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	avatars := businessAvatars(gigList)
	out := make([]map[string]interface{}, 0, len(gigList))
	for _, g := range gigList {
		out = append(out, gigResponse(&g, avatars[g.Business]))
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Gigs fetched", Data: out})
}

// GET /v1/gigs/{gigid}
func GetGigHandler(w http.ResponseWriter, r *http.Request) {
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

	avatars := businessAvatars([]models.Gig{gig})
	data := gigResponse(&gig, avatars[gig.Business])
	data["past_deadline"] = time.Now().After(gig.Deadline)

	// Per-caller flag for the submit button; route is public so a session may
	// not be present.
	hasSubmitted := false
	if sess, ok := utils.GetSession(r); ok {
		var count int64
		database.DB.Model(&models.Submission{}).
			Where("gig_id = ? AND username = ?", gig.GigID, sess.Username).
			Count(&count)
		hasSubmitted = count > 0
	}
	data["has_submitted"] = hasSubmitted

	if gig.WinnersAnnounced {
		var winnerRows []models.Winner
		if err := database.DB.Where("gig_id = ?", gig.GigID).Order("place ASC").Find(&winnerRows).Error; err == nil {
			data["winners"] = winnersResponse(winnerRows)
		}
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Gig fetched", Data: data})
}

// businessAvatars maps business user ids to their public avatar URLs.
func businessAvatars(gigList []models.Gig) map[uint]string {
	ids := make([]uint, 0, len(gigList))
	seen := make(map[uint]bool)
	for _, g := range gigList {
		if !seen[g.Business] {
			seen[g.Business] = true
			ids = append(ids, g.Business)
		}
	}
	out := make(map[uint]string, len(ids))
	if len(ids) == 0 {
		return out
	}
	var profiles []models.Profile
	if err := database.DB.Where("user_id IN ?", ids).Find(&profiles).Error; err != nil {
		return out
	}
	for _, p := range profiles {
		out[p.UserID] = utils.PublicAvatarURL(utils.GetStringValue(p.AvatarURL))
	}
	return out
}

func gigResponse(g *models.Gig, avatarURL string) map[string]interface{} {
	return map[string]interface{}{
		"gigid":             g.GigID,
		"business":          g.Business,
		"company":           g.Company,
		"title":             g.Title,
		"description":       g.Description,
		"type":              g.Type,
		"deadline":          g.Deadline,
		"total_bounty":      g.TotalBounty,
		"bounty_breakdown":  g.BountyBreakdown,
		"skills_required":   g.SkillsRequired,
		"winners_announced": g.WinnersAnnounced,
		"created_at":        g.CreatedAt,
		"avatar_url":        avatarURL,
	}
}
