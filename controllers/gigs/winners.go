package gigs

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/yagnadeepxo/onboard/database"
	"github.com/yagnadeepxo/onboard/middleware"
	"github.com/yagnadeepxo/onboard/models"
	"github.com/yagnadeepxo/onboard/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type WinnerEntry struct {
	Username string `json:"username"`
	Place    int    `json:"place"`
}

type AnnounceWinnersRequest struct {
	Winners []WinnerEntry `json:"winners"`
}

// POST /v1/gigs/{gigid}/winners (business only, owner only)
// The winner rows and the winners_announced flag land in one transaction, so
// a gig is never observable half-settled.
func AnnounceWinnersHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := utils.GetSession(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var req AnnounceWinnersRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
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

	if gig.Business != sess.UserID {
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Only the gig owner can announce winners"})
		return
	}
	if gig.WinnersAnnounced {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Winners have already been announced for this gig"})
		return
	}

	rows, err := buildWinnerRows(&gig, req.Winners)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: err.Error()})
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		for i := range rows {
			if err := tx.Create(&rows[i]).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.Gig{}).Where("gig_id = ?", gig.GigID).
			Update("winners_announced", true).Error
	})
	if err != nil {
		// Two concurrent announcements can both pass the flag pre-check; the
		// (gig_id, place) unique index makes the loser fail here.
		if isDuplicateKeyErr(err) {
			utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Winners have already been announced for this gig"})
			return
		}
		log.Printf("[winners] settlement transaction failed for gig %s: %v", gig.GigID, err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to announce winners, please try again"})
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Winners announced",
		Data:    winnersResponse(rows),
	})
}

// GET /v1/gigs/{gigid}/winners
func ListWinnersHandler(w http.ResponseWriter, r *http.Request) {
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

	var rows []models.Winner
	if err := database.DB.Where("gig_id = ?", gig.GigID).Order("place ASC").Find(&rows).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Winners fetched", Data: winnersResponse(rows)})
}

// buildWinnerRows validates that the submitted winners correspond 1:1 with
// the gig's bounty breakdown and resolves each prize amount from it.
func buildWinnerRows(gig *models.Gig, entries []WinnerEntry) ([]models.Winner, error) {
	if len(entries) == 0 {
		return nil, errors.New("winners cannot be empty")
	}
	if len(entries) != len(gig.BountyBreakdown) {
		return nil, errors.New("winners must cover every position of the bounty breakdown")
	}

	amountByPlace := make(map[int]float64, len(gig.BountyBreakdown))
	for _, p := range gig.BountyBreakdown {
		amountByPlace[p.Place] = p.Amount
	}

	seenPlace := make(map[int]bool, len(entries))
	seenUser := make(map[string]bool, len(entries))
	rows := make([]models.Winner, 0, len(entries))
	for _, e := range entries {
		username := strings.TrimSpace(e.Username)
		if username == "" {
			return nil, errors.New("each winner needs a username")
		}
		amount, ok := amountByPlace[e.Place]
		if !ok {
			return nil, errors.New("winner place does not exist in the bounty breakdown")
		}
		if seenPlace[e.Place] {
			return nil, errors.New("each place can only be awarded once")
		}
		if seenUser[username] {
			return nil, errors.New("each freelancer can only win one place")
		}
		seenPlace[e.Place] = true
		seenUser[username] = true
		rows = append(rows, models.Winner{
			GigID:    gig.GigID,
			Username: username,
			Place:    e.Place,
			Amount:   amount,
		})
	}
	return rows, nil
}

func winnersResponse(rows []models.Winner) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		out = append(out, map[string]interface{}{
			"gigid":    row.GigID,
			"username": row.Username,
			"position": row.Position(),
		})
	}
	return out
}
