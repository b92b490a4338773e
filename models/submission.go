package models

import "time"

// Submission is permanent once created. The composite unique index backs the
// one-submission-per-user-per-gig rule so two concurrent submits cannot both
// land even if they pass the existence pre-check.
type Submission struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	GigID          string    `gorm:"type:char(36);uniqueIndex:idx_submission_gig_user;not null" json:"gigid"`
	Username       string    `gorm:"size:50;uniqueIndex:idx_submission_gig_user;not null" json:"username"`
	SubmissionLink string    `gorm:"size:500;not null" json:"submission_link"`
	WalletAddress  string    `gorm:"size:255;not null" json:"wallet_address"`
	Email          string    `gorm:"size:255;not null" json:"email"`
	CreatedAt      time.Time `json:"created_at"`
}

func (Submission) TableName() string {
	return "submissions"
}
