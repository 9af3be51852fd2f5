package loyalty

import (
	"errors"
	"time"

	"stampcard-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Actor is the authenticated identity performing an operation. Role claims
// come from the session layer and are trusted here.
type Actor struct {
	ID   uuid.UUID
	Role string
}

func (a Actor) isAdmin() bool {
	return a.Role == models.RoleAdmin || a.Role == models.RoleSuperAdmin
}

// Engine owns the scan-collection and redemption state machine.
//
// Every scan runs in a transaction and finishes with an optimistic write on
// the user row (WHERE id = ? AND version = ?). Two scans racing on the same
// user cannot both commit: the loser sees zero rows affected, rolls back,
// and returns ErrConcurrentModification.
type Engine struct {
	DB *gorm.DB

	// Now is the clock; tests override it.
	Now func() time.Time
}

func NewEngine(db *gorm.DB) *Engine {
	return &Engine{DB: db, Now: time.Now}
}

// RecordScan credits a scan to targetUserID against offerID. An empty
// offerID or the default_offer sentinel falls back to the user's current
// offer. Returns the updated reward (with scan history) on success.
func (e *Engine) RecordScan(actor Actor, targetUserID uuid.UUID, offerID string) (*models.Reward, error) {
	if !actor.isAdmin() && actor.ID != targetUserID {
		return nil, ErrUnauthorized
	}

	var result *models.Reward
	err := e.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("id = ?", targetUserID).First(&user).Error; err != nil {
			return ErrUserNotFound
		}

		now := e.Now()

		// Daily cooldown gate. Applies to customer accounts only, no
		// matter who performs the scan; admin accounts are exempt as
		// scan targets.
		if user.Role == models.RoleCustomer {
			cd := DeriveCooldown(user.LastScanAt, now)
			if !cd.CanScan {
				return &CooldownError{
					LastScanAt:     *user.LastScanAt,
					Remaining:      cd.Remaining,
					NextEligibleAt: cd.NextEligibleAt,
				}
			}
		}

		offer, err := e.resolveOffer(tx, &user, offerID)
		if err != nil {
			return err
		}

		var rewards []models.Reward
		if err := tx.Preload("ScanHistory", scanHistoryAsc).
			Where("user_id = ? AND offer_id = ?", user.ID, offer.ID).
			Find(&rewards).Error; err != nil {
			return err
		}

		var current *models.Reward
		for i := range rewards {
			if rewards[i].IsInProgress() {
				current = &rewards[i]
				break
			}
		}

		if current == nil {
			// No in-progress cycle. A completed-but-unclaimed reward
			// blocks further scans until it is redeemed.
			for i := range rewards {
				if rewards[i].IsRedeemable() {
					return ErrAlreadyCompleted
				}
			}
			// Starting a fresh cycle requires the offer to be active.
			// Continuing an existing one (above) does not.
			if !offer.IsActive {
				return ErrOfferInactive
			}
			current = &models.Reward{
				ID:                uuid.New(),
				UserID:            user.ID,
				OfferID:           offer.ID,
				OfferName:         offer.Name,
				OfferDescription:  offer.Description,
				StampRequirement:  offer.StampRequirement,
				RewardType:        offer.RewardType,
				RewardValue:       offer.RewardValue,
				RewardDescription: offer.RewardDescription,
				ExpiresAt:         offer.ExpiresAt,
			}
			if err := tx.Create(current).Error; err != nil {
				return err
			}
		}

		event := models.ScanEvent{
			ID:           uuid.New(),
			RewardID:     current.ID,
			ScannedBy:    actor.ID,
			Timestamp:    now,
			StampsEarned: offer.StampsPerScan,
		}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}
		current.ScanHistory = append(current.ScanHistory, event)

		offerRef := offer.ID
		res := tx.Model(&models.User{}).
			Where("id = ? AND version = ?", user.ID, user.Version).
			Updates(map[string]interface{}{
				"last_scan_at":           now,
				"purchases":              user.Purchases + 1,
				"current_offer_id":       offerRef,
				"current_offer_progress": current.TotalStamps(),
				"version":                user.Version + 1,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConcurrentModification
		}

		result = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// scanHistoryAsc orders preloaded scan history oldest first. The row order
// Postgres returns without it is not guaranteed, and the history is
// presented as an append-only chronological log.
func scanHistoryAsc(db *gorm.DB) *gorm.DB {
	return db.Order("timestamp")
}

// resolveOffer maps a raw offer id from a QR payload to an offer row.
// Empty ids and the default_offer sentinel target the user's current offer.
func (e *Engine) resolveOffer(tx *gorm.DB, user *models.User, offerID string) (*models.Offer, error) {
	var targetID uuid.UUID
	if offerID == "" || offerID == DefaultOfferID {
		if user.CurrentOfferID == nil {
			return nil, ErrOfferNotFound
		}
		targetID = *user.CurrentOfferID
	} else {
		parsed, err := uuid.Parse(offerID)
		if err != nil {
			return nil, ErrOfferNotFound
		}
		targetID = parsed
	}

	var offer models.Offer
	if err := tx.Where("id = ?", targetID).First(&offer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOfferNotFound
		}
		return nil, err
	}
	return &offer, nil
}

// Redeem claims a completed reward exactly once. The only mutation is
// claimed_at; counters are untouched because the next collection cycle is a
// brand-new reward row.
func (e *Engine) Redeem(actor Actor, targetUserID, rewardID uuid.UUID) (*models.Reward, error) {
	if !actor.isAdmin() && actor.ID != targetUserID {
		return nil, ErrUnauthorized
	}

	var result *models.Reward
	err := e.DB.Transaction(func(tx *gorm.DB) error {
		var reward models.Reward
		if err := tx.Preload("ScanHistory", scanHistoryAsc).
			Where("id = ? AND user_id = ?", rewardID, targetUserID).
			First(&reward).Error; err != nil {
			return ErrRewardNotFound
		}

		if !reward.IsCompleted() {
			return ErrNotCompleted
		}
		if reward.ClaimedAt != nil {
			return ErrAlreadyClaimed
		}

		now := e.Now()
		res := tx.Model(&models.Reward{}).
			Where("id = ? AND claimed_at IS NULL", reward.ID).
			Update("claimed_at", now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyClaimed
		}

		reward.ClaimedAt = &now
		result = &reward
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListRewards returns all of a user's rewards, newest first, with scan
// history loaded.
func (e *Engine) ListRewards(userID uuid.UUID) ([]models.Reward, error) {
	var rewards []models.Reward
	if err := e.DB.Preload("ScanHistory", scanHistoryAsc).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rewards).Error; err != nil {
		return nil, err
	}
	return rewards, nil
}

// CooldownFor derives the scan eligibility of a user right now.
func (e *Engine) CooldownFor(userID uuid.UUID) (Cooldown, error) {
	var user models.User
	if err := e.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		return Cooldown{}, ErrUserNotFound
	}
	if user.Role != models.RoleCustomer {
		return Cooldown{CanScan: true}, nil
	}
	return DeriveCooldown(user.LastScanAt, e.Now()), nil
}
