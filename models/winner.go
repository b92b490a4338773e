package models

import "time"

// Winner records one prize place of a settled gig. Place and amount are
// flattened columns so leaderboard totals can be aggregated in SQL; the API
// keeps the position {place, amount} shape.
type Winner struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GigID     string    `gorm:"type:char(36);uniqueIndex:idx_winner_gig_place;not null" json:"gigid"`
	Username  string    `gorm:"size:50;index;not null" json:"username"`
	Place     int       `gorm:"uniqueIndex:idx_winner_gig_place;not null" json:"-"`
	Amount    float64   `gorm:"type:decimal(15,2);not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (Winner) TableName() string {
	return "winners"
}

// Position returns the API shape of the prize slot.
func (w Winner) Position() PrizePosition {
	return PrizePosition{Place: w.Place, Amount: w.Amount}
}
