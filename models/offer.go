package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RewardTypePercentage  = "percentage"
	RewardTypeFixedAmount = "fixed_amount"
	RewardTypeFreeItem    = "free_item"
	RewardTypeBOGO        = "buy_one_get_one"
)

// ValidRewardTypes is the set of reward types an offer may carry.
var ValidRewardTypes = map[string]bool{
	RewardTypePercentage:  true,
	RewardTypeFixedAmount: true,
	RewardTypeFreeItem:    true,
	RewardTypeBOGO:        true,
}

type Offer struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`

	StampRequirement  int    `gorm:"not null" json:"stamp_requirement"`
	StampsPerScan     int    `gorm:"default:1" json:"stamps_per_scan"`
	RewardType        string `gorm:"not null" json:"reward_type"`
	RewardValue       string `json:"reward_value"`
	RewardDescription string `json:"reward_description"`

	Image string `json:"image"`

	// Offers are created inactive and must be activated explicitly.
	// Deactivating hides the offer from new collectors without touching
	// rewards already in progress.
	IsActive bool `gorm:"default:false" json:"is_active"`

	CreatedBy uuid.UUID      `gorm:"type:uuid" json:"created_by"`
	ExpiresAt *time.Time     `json:"expires_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (o *Offer) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
