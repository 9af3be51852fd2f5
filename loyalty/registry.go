package loyalty

import (
	"errors"
	"time"

	"stampcard-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Registry owns offer lifecycle rules: offers are born inactive, only
// inactive offers may be edited or deleted, and an offer with active
// collectors cannot be deleted.
type Registry struct {
	DB *gorm.DB
}

func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{DB: db}
}

// OfferInput carries the caller-editable offer fields.
type OfferInput struct {
	Name              string
	Description       string
	StampRequirement  int
	StampsPerScan     int
	RewardType        string
	RewardValue       string
	RewardDescription string
	ExpiresAt         *time.Time
}

// OfferPatch carries partial updates; nil fields are left unchanged.
type OfferPatch struct {
	Name              *string
	Description       *string
	StampRequirement  *int
	StampsPerScan     *int
	RewardType        *string
	RewardValue       *string
	RewardDescription *string
	ExpiresAt         *time.Time
}

// CreateOffer registers a new offer. It is always created inactive,
// regardless of what the caller asks for; activation is a separate step.
func (r *Registry) CreateOffer(actor Actor, input OfferInput) (*models.Offer, error) {
	if !actor.isAdmin() {
		return nil, ErrUnauthorized
	}

	offer := models.Offer{
		ID:                uuid.New(),
		Name:              input.Name,
		Description:       input.Description,
		StampRequirement:  input.StampRequirement,
		StampsPerScan:     input.StampsPerScan,
		RewardType:        input.RewardType,
		RewardValue:       input.RewardValue,
		RewardDescription: input.RewardDescription,
		ExpiresAt:         input.ExpiresAt,
		IsActive:          false,
		CreatedBy:         actor.ID,
	}
	floorStampCounts(&offer)

	if err := r.DB.Create(&offer).Error; err != nil {
		return nil, err
	}
	return &offer, nil
}

// floorStampCounts keeps the stamp rule integers at 1 or above. The HTTP
// layer validates the same bound, but the rule belongs to the registry.
func floorStampCounts(offer *models.Offer) {
	if offer.StampRequirement < 1 {
		offer.StampRequirement = 1
	}
	if offer.StampsPerScan < 1 {
		offer.StampsPerScan = 1
	}
}

// UpdateOffer applies a patch to an inactive offer. Active offers are
// rejected outright: the edit rule is enforced here, not in the UI.
func (r *Registry) UpdateOffer(actor Actor, offerID uuid.UUID, patch OfferPatch) (*models.Offer, error) {
	if !actor.isAdmin() {
		return nil, ErrUnauthorized
	}

	var offer models.Offer
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", offerID).First(&offer).Error; err != nil {
			return ErrOfferNotFound
		}
		if offer.IsActive {
			return ErrOfferActive
		}

		if patch.Name != nil {
			offer.Name = *patch.Name
		}
		if patch.Description != nil {
			offer.Description = *patch.Description
		}
		if patch.StampRequirement != nil {
			offer.StampRequirement = *patch.StampRequirement
		}
		if patch.StampsPerScan != nil {
			offer.StampsPerScan = *patch.StampsPerScan
		}
		if patch.RewardType != nil {
			offer.RewardType = *patch.RewardType
		}
		if patch.RewardValue != nil {
			offer.RewardValue = *patch.RewardValue
		}
		if patch.RewardDescription != nil {
			offer.RewardDescription = *patch.RewardDescription
		}
		if patch.ExpiresAt != nil {
			offer.ExpiresAt = patch.ExpiresAt
		}
		floorStampCounts(&offer)

		return tx.Save(&offer).Error
	})
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

// DeleteOffer removes an inactive offer with no in-progress collectors.
// The in-use check and the delete share one transaction so a scan starting
// in between cannot slip past the guard.
func (r *Registry) DeleteOffer(actor Actor, offerID uuid.UUID) error {
	if !actor.isAdmin() {
		return ErrUnauthorized
	}

	return r.DB.Transaction(func(tx *gorm.DB) error {
		var offer models.Offer
		if err := tx.Where("id = ?", offerID).First(&offer).Error; err != nil {
			return ErrOfferNotFound
		}
		if offer.IsActive {
			return ErrOfferActive
		}

		inUse, err := r.offerInUse(tx, offerID)
		if err != nil {
			return err
		}
		if inUse {
			return ErrOffersInUse
		}

		return tx.Delete(&offer).Error
	})
}

// offerInUse reports whether any unclaimed reward on the offer is still
// short of its requirement. Scan history totals are derived, so the check
// aggregates scan_events per reward.
func (r *Registry) offerInUse(tx *gorm.DB, offerID uuid.UUID) (bool, error) {
	var rewards []models.Reward
	if err := tx.Preload("ScanHistory").
		Where("offer_id = ? AND claimed_at IS NULL", offerID).
		Find(&rewards).Error; err != nil {
		return false, err
	}
	for i := range rewards {
		if rewards[i].IsInProgress() {
			return true, nil
		}
	}
	return false, nil
}

// SetActive toggles offer visibility for new collectors. Deactivating never
// touches rewards already in progress.
func (r *Registry) SetActive(actor Actor, offerID uuid.UUID, active bool) (*models.Offer, error) {
	if !actor.isAdmin() {
		return nil, ErrUnauthorized
	}

	var offer models.Offer
	if err := r.DB.Where("id = ?", offerID).First(&offer).Error; err != nil {
		return nil, ErrOfferNotFound
	}

	if err := r.DB.Model(&offer).Update("is_active", active).Error; err != nil {
		return nil, err
	}
	offer.IsActive = active
	return &offer, nil
}

// ListOffers returns offers, optionally restricted to active ones (the
// customer-facing "start collecting" listing).
func (r *Registry) ListOffers(activeOnly bool) ([]models.Offer, error) {
	query := r.DB.Order("created_at DESC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var offers []models.Offer
	if err := query.Find(&offers).Error; err != nil {
		return nil, err
	}
	return offers, nil
}

// GetOffer fetches a single offer.
func (r *Registry) GetOffer(offerID uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	if err := r.DB.Where("id = ?", offerID).First(&offer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOfferNotFound
		}
		return nil, err
	}
	return &offer, nil
}
