package users

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/yagnadeepxo/onboard/database"
	"github.com/yagnadeepxo/onboard/models"
	"github.com/yagnadeepxo/onboard/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// GET /v1/profiles/{username}
func GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(mux.Vars(r)["username"])
	if username == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Username is required"})
		return
	}

	var profile models.Profile
	if err := database.DB.Where("username = ?", username).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Profile not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Profile fetched",
		Data:    profileResponse(&profile),
	})
}

// GET /v1/username-available?username=...
func UsernameAvailableHandler(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.URL.Query().Get("username"))
	if username == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "username query parameter is required"})
		return
	}

	var count int64
	if err := database.DB.Model(&models.Profile{}).Where("username = ?", username).Count(&count).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Username availability checked",
		Data:    map[string]interface{}{"username": username, "available": count == 0},
	})
}

// PUT /v1/users/profile
// Multipart form: display_name, about, twitter_url, github_url, telegram_url,
// website_url and an optional avatar file. The username never changes.
func UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := utils.GetSession(r)
	if !ok || sess.UserID == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	if err := r.ParseMultipartForm(5 << 20); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid form data"})
		return
	}

	db := database.DB
	var profile models.Profile
	if err := db.Where("user_id = ?", sess.UserID).First(&profile).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Profile not found"})
		return
	}

	if v := strings.TrimSpace(r.FormValue("display_name")); v != "" && v != "null" {
		profile.DisplayName = v
	}
	if _, ok := r.MultipartForm.Value["about"]; ok {
		profile.About = strings.TrimSpace(r.FormValue("about"))
	}
	applyURLField(r, "twitter_url", &profile.TwitterURL)
	applyURLField(r, "github_url", &profile.GithubURL)
	applyURLField(r, "telegram_url", &profile.TelegramURL)
	applyURLField(r, "website_url", &profile.WebsiteURL)

	// Optional avatar upload
	file, handler, err := r.FormFile("avatar")
	if err == nil && handler != nil {
		defer file.Close()

		objectName, upErr := storeAvatar(file, handler.Filename, handler.Size, sess.UserID, profile.AvatarURL)
		if upErr != nil {
			utils.WriteJSON(w, upErr.status, utils.APIResponse{Success: false, Message: upErr.message})
			return
		}
		profile.AvatarURL = &objectName
	}

	if err := db.Save(&profile).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to save profile"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Profile updated",
		Data:    profileResponse(&profile),
	})
}

// DELETE /v1/users/profile/avatar
func DeleteAvatarHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := utils.GetSession(r)
	if !ok || sess.UserID == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	db := database.DB
	var profile models.Profile
	if err := db.Where("user_id = ?", sess.UserID).First(&profile).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Profile not found"})
		return
	}

	if profile.AvatarURL != nil && *profile.AvatarURL != "" {
		// object might already be gone; not a failure
		_ = utils.DeleteAvatar(*profile.AvatarURL)
	}

	profile.AvatarURL = nil
	if err := db.Save(&profile).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to remove avatar"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Avatar removed",
		Data:    profileResponse(&profile),
	})
}

type uploadError struct {
	status  int
	message string
}

// storeAvatar validates, sanitizes and uploads an avatar image, deleting the
// previous object first. Returns the stored object name.
func storeAvatar(file io.ReadSeeker, filename string, size int64, userID uint, oldObject *string) (string, *uploadError) {
	ext := strings.ToLower(filepath.Ext(filename))
	allowedExts := map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".webp": true,
	}
	if !allowedExts[ext] {
		return "", &uploadError{http.StatusBadRequest, "Image must be JPG/PNG/WEBP"}
	}
	if size > 5<<20 {
		return "", &uploadError{http.StatusBadRequest, "Image must be at most 5MB"}
	}

	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		return "", &uploadError{http.StatusBadRequest, "Failed to read image"}
	}
	detected := http.DetectContentType(buf[:n])
	isWEBP := ext == ".webp" || detected == "image/webp"

	var imageBytes []byte
	if isWEBP {
		// WEBP goes up as-is; stdlib image cannot re-encode it
		if _, err := file.Seek(0, 0); err != nil {
			return "", &uploadError{http.StatusBadRequest, "Failed to read image"}
		}
		imageBytes, err = io.ReadAll(file)
		if err != nil {
			return "", &uploadError{http.StatusBadRequest, "Failed to read image"}
		}
	} else {
		if detected != "image/jpeg" && detected != "image/png" {
			return "", &uploadError{http.StatusBadRequest, "Image must be JPG/PNG/WEBP"}
		}
		if _, err := file.Seek(0, 0); err != nil {
			return "", &uploadError{http.StatusBadRequest, "Failed to read image"}
		}
		allBytes, err := io.ReadAll(file)
		if err != nil {
			return "", &uploadError{http.StatusBadRequest, "Failed to read image"}
		}

		// Decode and re-encode to sanitize
		img, format, err := image.Decode(bytes.NewReader(allBytes))
		if err != nil {
			return "", &uploadError{http.StatusBadRequest, "Invalid image format"}
		}
		var outBuf bytes.Buffer
		switch format {
		case "jpeg":
			if err := jpeg.Encode(&outBuf, img, &jpeg.Options{Quality: 85}); err != nil {
				return "", &uploadError{http.StatusInternalServerError, "Failed to process image"}
			}
		case "png":
			if err := png.Encode(&outBuf, img); err != nil {
				return "", &uploadError{http.StatusInternalServerError, "Failed to process image"}
			}
		default:
			return "", &uploadError{http.StatusBadRequest, "Image must be JPG/PNG/WEBP"}
		}
		imageBytes = outBuf.Bytes()
		if ext == ".jpeg" {
			ext = ".jpg"
		}
	}

	if oldObject != nil && *oldObject != "" {
		_ = utils.DeleteAvatar(*oldObject)
	}

	objectName := "avatar_" + strconv.FormatUint(uint64(userID), 10) + "_" + strconv.FormatInt(time.Now().UnixNano(), 10) + ext
	if err := utils.UploadAvatar(objectName, bytes.NewReader(imageBytes), int64(len(imageBytes))); err != nil {
		return "", &uploadError{http.StatusInternalServerError, "Failed to upload image"}
	}
	return objectName, nil
}

// applyURLField updates a nullable URL column from a multipart field. An
// explicit "null" clears it; absence leaves it untouched.
func applyURLField(r *http.Request, field string, dst **string) {
	if _, ok := r.MultipartForm.Value[field]; !ok {
		return
	}
	v := strings.TrimSpace(r.FormValue(field))
	if v == "" || v == "null" {
		*dst = nil
		return
	}
	*dst = &v
}

func profileResponse(p *models.Profile) map[string]interface{} {
	return map[string]interface{}{
		"id":           p.UserID,
		"username":     p.Username,
		"role":         p.Role,
		"display_name": p.DisplayName,
		"about":        p.About,
		"avatar_url":   utils.PublicAvatarURL(utils.GetStringValue(p.AvatarURL)),
		"twitter_url":  utils.GetStringValue(p.TwitterURL),
		"github_url":   utils.GetStringValue(p.GithubURL),
		"telegram_url": utils.GetStringValue(p.TelegramURL),
		"website_url":  utils.GetStringValue(p.WebsiteURL),
	}
}
