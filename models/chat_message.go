package models

import "time"

// MaxChatMessageLen caps a chat message at 250 characters, checked before any
// write is attempted.
const MaxChatMessageLen = 250

type ChatMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GigID     string    `gorm:"type:char(36);index;not null" json:"gig_id"`
	Username  string    `gorm:"size:50;not null" json:"username"`
	Message   string    `gorm:"size:250;not null" json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
