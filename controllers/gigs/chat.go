package gigs

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/yagnadeepxo/onboard/database"
	"github.com/yagnadeepxo/onboard/middleware"
	"github.com/yagnadeepxo/onboard/models"
	"github.com/yagnadeepxo/onboard/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type PostChatRequest struct {
	Message string `json:"message" validate:"required"`
}

// GET /v1/gigs/{gigid}/chat
// Messages come back oldest first; clients poll this endpoint.
func ListChatHandler(w http.ResponseWriter, r *http.Request) {
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

	var messages []models.ChatMessage
	if err := database.DB.Where("gig_id = ?", gig.GigID).Order("created_at ASC").Find(&messages).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Messages fetched", Data: messages})
}

// POST /v1/gigs/{gigid}/chat
func PostChatHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := utils.GetSession(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var req PostChatRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Message cannot be empty"})
		return
	}
	// Length is checked before any write is attempted
	if utf8.RuneCountInString(msg) > models.MaxChatMessageLen {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Message cannot exceed 250 characters"})
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

	message := models.ChatMessage{
		GigID:    gig.GigID,
		Username: sess.Username,
		Message:  msg,
	}
	if err := database.DB.Create(&message).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to send message"})
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Message sent", Data: message})
}

// DELETE /v1/chat/{id}
// Author-only: a message can only be removed by the user who wrote it.
func DeleteChatHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := utils.GetSession(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	id := mux.Vars(r)["id"]
	var message models.ChatMessage
	if err := database.DB.First(&message, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Message not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	if message.Username != sess.Username {
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "You can only delete your own messages"})
		return
	}

	if err := database.DB.Delete(&message).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to delete message"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Message deleted"})
}
