package models

import "time"

// PrizePosition is one entry of a gig's bounty breakdown.
type PrizePosition struct {
	Place  int     `json:"place"`
	Amount float64 `json:"amount"`
}

// BountyBreakdown is the ordered prize list of a gig. Stored as a JSON column;
// the sum of amounts must equal the gig's total bounty at creation.
type BountyBreakdown []PrizePosition

// Total returns the sum of all prize amounts.
func (b BountyBreakdown) Total() float64 {
	var sum float64
	for _, p := range b {
		sum += p.Amount
	}
	return sum
}

// Gig is write-once: there is no update or delete path. Only the
// winners_announced flag flips, and only through winner settlement.
type Gig struct {
	GigID            string          `gorm:"primaryKey;type:char(36)" json:"gigid"`
	Business         uint            `gorm:"index;not null" json:"business"`
	Company          string          `gorm:"size:100;not null" json:"company"`
	Title            string          `gorm:"size:200;not null" json:"title"`
	Description      string          `gorm:"type:text;not null" json:"description"`
	Type             string          `gorm:"size:20;not null" json:"type"` // bounty | grant
	Deadline         time.Time       `json:"deadline"`
	TotalBounty      float64         `gorm:"type:decimal(15,2);not null" json:"total_bounty"`
	BountyBreakdown  BountyBreakdown `gorm:"serializer:json" json:"bounty_breakdown"`
	SkillsRequired   string          `gorm:"size:255" json:"skills_required"`
	WinnersAnnounced bool            `gorm:"default:false" json:"winners_announced"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (Gig) TableName() string {
	return "gigs"
}
