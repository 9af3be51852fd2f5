package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reward is one collection cycle of a user against an offer. The offer's
// rules are snapshotted at creation so later offer edits never change what
// a collector was promised. Progress is derived from ScanHistory, never
// stored.
type Reward struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User   User      `gorm:"foreignKey:UserID" json:"-"`

	// Offer snapshot, frozen when collection began.
	OfferID           uuid.UUID `gorm:"type:uuid;not null;index" json:"offer_id"`
	OfferName         string    `json:"offer_name"`
	OfferDescription  string    `json:"offer_description"`
	StampRequirement  int       `gorm:"not null" json:"stamp_requirement"`
	RewardType        string    `json:"reward_type"`
	RewardValue       string    `json:"reward_value"`
	RewardDescription string    `json:"reward_description"`

	ScanHistory []ScanEvent `gorm:"foreignKey:RewardID" json:"scan_history"`

	// ClaimedAt is set exactly once, on redemption.
	ClaimedAt *time.Time `json:"claimed_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ScanEvent is one accepted scan appended to a reward's history.
type ScanEvent struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	RewardID     uuid.UUID `gorm:"type:uuid;not null;index" json:"reward_id"`
	ScannedBy    uuid.UUID `gorm:"type:uuid;not null" json:"scanned_by"`
	Timestamp    time.Time `gorm:"not null" json:"timestamp"`
	StampsEarned int       `gorm:"not null" json:"stamps_earned"`
	CreatedAt    time.Time `json:"created_at"`
}

func (r *Reward) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (e *ScanEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// TotalStamps sums the stamps earned across the scan history.
func (r *Reward) TotalStamps() int {
	total := 0
	for _, e := range r.ScanHistory {
		total += e.StampsEarned
	}
	return total
}

// IsCompleted reports whether the collection cycle has reached its
// requirement. Overshoot stamps past the requirement are not banked.
func (r *Reward) IsCompleted() bool {
	return r.TotalStamps() >= r.StampRequirement
}

// IsInProgress reports whether this reward is still collecting.
func (r *Reward) IsInProgress() bool {
	return !r.IsCompleted()
}

// IsRedeemable reports whether the reward is completed and unclaimed.
func (r *Reward) IsRedeemable() bool {
	return r.IsCompleted() && r.ClaimedAt == nil
}
