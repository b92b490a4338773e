package models

import "time"

// RevokedToken is the DB fallback blacklist for access-token jtis, used when
// Redis is not configured. Rows become irrelevant once the token would have
// expired anyway.
type RevokedToken struct {
	ID        string    `gorm:"primaryKey;size:96" json:"id"`
	RevokedAt time.Time `json:"revoked_at"`
}

func (RevokedToken) TableName() string {
	return "revoked_tokens"
}
