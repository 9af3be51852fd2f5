package database

import (
	"fmt"
	"log"
	"os"

	"stampcard-backend/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect() (*gorm.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost user=postgres password=postgres dbname=stampcard port=5432 sslmode=disable"
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	// Ensure PostgreSQL has gen_random_uuid() available (pgcrypto extension).
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		return fmt.Errorf("failed to enable pgcrypto extension: %w", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Offer{},
		&models.Reward{},
		&models.ScanEvent{},
		&models.RefreshToken{},
		&models.PasswordResetToken{},
	); err != nil {
		return err
	}

	// Collapse leftover counter-only progress into per-offer reward rows.
	if err := MigrateLegacyProgress(db); err != nil {
		return err
	}

	return nil
}

// MigrateLegacyProgress backfills Reward rows for users whose progress was
// recorded only as a current_offer_progress counter (the pre-snapshot data
// model). Each such user gets a reward snapshotted from the current offer
// and one synthetic scan event carrying the counted stamps. Safe to run
// repeatedly: users who already have an unclaimed reward on their current
// offer are skipped.
func MigrateLegacyProgress(db *gorm.DB) error {
	var users []models.User
	if err := db.Where("current_offer_id IS NOT NULL AND current_offer_progress > 0").
		Find(&users).Error; err != nil {
		return err
	}

	for i := range users {
		user := &users[i]

		var count int64
		if err := db.Model(&models.Reward{}).
			Where("user_id = ? AND offer_id = ? AND claimed_at IS NULL", user.ID, *user.CurrentOfferID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		var offer models.Offer
		if err := db.Where("id = ?", *user.CurrentOfferID).First(&offer).Error; err != nil {
			// Offer has been deleted; the counter is unrecoverable.
			log.Printf("Skipping legacy progress for user %s: offer %s not found", user.ID, *user.CurrentOfferID)
			continue
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			reward := models.Reward{
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
			if err := tx.Create(&reward).Error; err != nil {
				return err
			}

			scannedAt := user.CreatedAt
			if user.LastScanAt != nil {
				scannedAt = *user.LastScanAt
			}
			event := models.ScanEvent{
				ID:           uuid.New(),
				RewardID:     reward.ID,
				ScannedBy:    user.ID,
				Timestamp:    scannedAt,
				StampsEarned: user.CurrentOfferProgress,
			}
			return tx.Create(&event).Error
		})
		if err != nil {
			return err
		}
		log.Printf("Migrated legacy progress for user %s: %d stamps on offer %s", user.ID, user.CurrentOfferProgress, offer.Name)
	}

	return nil
}

func CreateDefaultAdmin(db *gorm.DB) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" {
		adminEmail = "admin@stampcard.app"
	}
	if adminPassword == "" {
		adminPassword = "admin123"
	}

	var existingUser models.User
	result := db.Where("email = ?", adminEmail).First(&existingUser)
	if result.Error == nil {
		// Admin already exists
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Email:    adminEmail,
		Password: string(hashedPassword),
		Role:     models.RoleSuperAdmin,
		Name:     "Admin User",
	}

	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Printf("Default admin created: %s", adminEmail)
	return nil
}
