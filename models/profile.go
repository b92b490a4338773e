package models

import "time"

// Profile is the public identity attached 1:1 to a User. The username is
// immutable after registration; every gig, submission, winner and chat row
// references it by value.
type Profile struct {
	UserID      uint      `gorm:"primaryKey" json:"id"`
	Username    string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Role        string    `gorm:"size:20;not null" json:"role"` // freelancer | business
	DisplayName string    `gorm:"size:100;not null" json:"display_name"`
	About       string    `gorm:"type:text" json:"about"`
	AvatarURL   *string   `gorm:"size:255" json:"avatar_url,omitempty"`
	TwitterURL  *string   `gorm:"size:255" json:"twitter_url,omitempty"`
	GithubURL   *string   `gorm:"size:255" json:"github_url,omitempty"`
	TelegramURL *string   `gorm:"size:255" json:"telegram_url,omitempty"`
	WebsiteURL  *string   `gorm:"size:255" json:"website_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}
