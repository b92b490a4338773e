package gigs

import (
	"net/http"

	"github.com/yagnadeepxo/onboard/database"
	"github.com/yagnadeepxo/onboard/models"
	"github.com/yagnadeepxo/onboard/utils"
)

type leaderboardRow struct {
	Username      string  `json:"username"`
	TotalEarnings float64 `json:"total_earnings"`
}

// GET /v1/leaderboard
// Per-username totals are aggregated in SQL instead of scanning the winners
// table client-side. Top 20, highest earnings first.
func LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	var rows []leaderboardRow
	err := database.DB.Model(&models.Winner{}).
		Select("username, SUM(amount) AS total_earnings").
		Group("username").
		Order("total_earnings DESC").
		Limit(20).
		Scan(&rows).Error
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	for i := range rows {
		rows[i].TotalEarnings = utils.RoundFloat(rows[i].TotalEarnings, 2)
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Leaderboard fetched", Data: rows})
}
