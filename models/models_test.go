package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}

	tables := []string{
		`CREATE TABLE IF NOT EXISTS "users" (
			"id" TEXT PRIMARY KEY, "email" TEXT NOT NULL UNIQUE, "password" TEXT NOT NULL,
			"name" TEXT, "role" TEXT DEFAULT 'customer',
			"current_offer_id" TEXT, "current_offer_progress" INTEGER DEFAULT 0,
			"purchases" INTEGER DEFAULT 0, "last_scan_at" DATETIME,
			"session_token" TEXT, "is_session_valid" INTEGER DEFAULT 0, "last_login_at" DATETIME,
			"version" INTEGER DEFAULT 0, "is_blocked" INTEGER DEFAULT 0,
			"created_at" DATETIME, "updated_at" DATETIME, "deleted_at" DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS "offers" (
			"id" TEXT PRIMARY KEY, "name" TEXT NOT NULL, "description" TEXT,
			"stamp_requirement" INTEGER NOT NULL, "stamps_per_scan" INTEGER DEFAULT 1,
			"reward_type" TEXT NOT NULL, "reward_value" TEXT, "reward_description" TEXT,
			"image" TEXT, "is_active" INTEGER DEFAULT 0, "created_by" TEXT, "expires_at" DATETIME,
			"created_at" DATETIME, "updated_at" DATETIME, "deleted_at" DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS "rewards" (
			"id" TEXT PRIMARY KEY, "user_id" TEXT NOT NULL, "offer_id" TEXT NOT NULL,
			"offer_name" TEXT, "offer_description" TEXT, "stamp_requirement" INTEGER NOT NULL,
			"reward_type" TEXT, "reward_value" TEXT, "reward_description" TEXT,
			"claimed_at" DATETIME, "expires_at" DATETIME, "created_at" DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS "scan_events" (
			"id" TEXT PRIMARY KEY, "reward_id" TEXT NOT NULL, "scanned_by" TEXT NOT NULL,
			"timestamp" DATETIME NOT NULL, "stamps_earned" INTEGER NOT NULL, "created_at" DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS "refresh_tokens" (
			"id" TEXT PRIMARY KEY, "user_id" TEXT NOT NULL, "token" TEXT NOT NULL UNIQUE,
			"expires_at" DATETIME NOT NULL, "revoked_at" DATETIME, "created_at" DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS "password_reset_tokens" (
			"id" TEXT PRIMARY KEY, "user_id" TEXT NOT NULL, "token" TEXT NOT NULL UNIQUE,
			"expires_at" DATETIME NOT NULL, "used_at" DATETIME, "created_at" DATETIME
		)`,
	}

	for _, sql := range tables {
		if err := db.Exec(sql).Error; err != nil {
			t.Fatal(err)
		}
	}
	return db
}

// ==================== BeforeCreate Hook Tests ====================

func TestUserBeforeCreateGeneratesUUID(t *testing.T) {
	db := setupTestDB(t)
	user := User{Email: "test@test.com", Password: "hash", Name: "Test"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatal(err)
	}
	if user.ID == uuid.Nil {
		t.Error("UUID should have been generated")
	}
}

func TestUserBeforeCreatePreservesUUID(t *testing.T) {
	db := setupTestDB(t)
	existingID := uuid.New()
	user := User{ID: existingID, Email: "preserve@test.com", Password: "hash", Name: "Test"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatal(err)
	}
	if user.ID != existingID {
		t.Error("UUID should have been preserved")
	}
}

func TestOfferBeforeCreate(t *testing.T) {
	db := setupTestDB(t)
	offer := Offer{Name: "Coffee Card", StampRequirement: 5, RewardType: RewardTypeFreeItem}
	db.Create(&offer)
	if offer.ID == uuid.Nil {
		t.Error("UUID should have been generated")
	}
}

func TestOfferBeforeCreatePreserves(t *testing.T) {
	db := setupTestDB(t)
	id := uuid.New()
	offer := Offer{ID: id, Name: "Preserved", StampRequirement: 5, RewardType: RewardTypeFreeItem}
	db.Create(&offer)
	if offer.ID != id {
		t.Error("UUID should have been preserved")
	}
}

func TestRewardBeforeCreate(t *testing.T) {
	db := setupTestDB(t)
	user := User{ID: uuid.New(), Email: "reward@test.com", Password: "hash"}
	db.Create(&user)
	reward := Reward{UserID: user.ID, OfferID: uuid.New(), StampRequirement: 5}
	db.Create(&reward)
	if reward.ID == uuid.Nil {
		t.Error("UUID should have been generated")
	}
}

func TestScanEventBeforeCreate(t *testing.T) {
	db := setupTestDB(t)
	user := User{ID: uuid.New(), Email: "event@test.com", Password: "hash"}
	db.Create(&user)
	reward := Reward{ID: uuid.New(), UserID: user.ID, OfferID: uuid.New(), StampRequirement: 5}
	db.Create(&reward)
	event := ScanEvent{RewardID: reward.ID, ScannedBy: user.ID, Timestamp: time.Now(), StampsEarned: 1}
	db.Create(&event)
	if event.ID == uuid.Nil {
		t.Error("UUID should have been generated")
	}
}

func TestRefreshTokenBeforeCreate(t *testing.T) {
	db := setupTestDB(t)
	user := User{ID: uuid.New(), Email: "rt@test.com", Password: "hash"}
	db.Create(&user)
	rt := RefreshToken{UserID: user.ID, Token: "refresh-token-value", ExpiresAt: time.Now().Add(time.Hour)}
	db.Create(&rt)
	if rt.ID == uuid.Nil {
		t.Error("UUID should have been generated")
	}
}

func TestPasswordResetTokenBeforeCreate(t *testing.T) {
	db := setupTestDB(t)
	user := User{ID: uuid.New(), Email: "prt@test.com", Password: "hash"}
	db.Create(&user)
	prt := PasswordResetToken{UserID: user.ID, Token: "reset-token-value", ExpiresAt: time.Now().Add(time.Hour)}
	db.Create(&prt)
	if prt.ID == uuid.Nil {
		t.Error("UUID should have been generated")
	}
}

// ==================== Reward Method Tests ====================

func rewardWithStamps(requirement int, stamps ...int) Reward {
	r := Reward{StampRequirement: requirement}
	for _, s := range stamps {
		r.ScanHistory = append(r.ScanHistory, ScanEvent{StampsEarned: s})
	}
	return r
}

func TestTotalStampsEmpty(t *testing.T) {
	r := rewardWithStamps(5)
	if r.TotalStamps() != 0 {
		t.Errorf("expected 0, got %d", r.TotalStamps())
	}
}

func TestTotalStampsSumsHistory(t *testing.T) {
	r := rewardWithStamps(5, 1, 2, 1)
	if r.TotalStamps() != 4 {
		t.Errorf("expected 4, got %d", r.TotalStamps())
	}
}

func TestIsCompletedBelowRequirement(t *testing.T) {
	r := rewardWithStamps(5, 1, 1, 1, 1)
	if r.IsCompleted() {
		t.Error("should not be completed at 4 of 5")
	}
	if !r.IsInProgress() {
		t.Error("should be in progress at 4 of 5")
	}
}

func TestIsCompletedExact(t *testing.T) {
	r := rewardWithStamps(5, 1, 1, 1, 1, 1)
	if !r.IsCompleted() {
		t.Error("should be completed at exactly 5 of 5")
	}
	if r.IsInProgress() {
		t.Error("should not be in progress when completed")
	}
}

func TestIsCompletedOvershoot(t *testing.T) {
	// A multi-stamp scan can push past the requirement.
	r := rewardWithStamps(5, 3, 3)
	if !r.IsCompleted() {
		t.Error("6 of 5 should still count as completed")
	}
}

func TestIsRedeemableUnclaimed(t *testing.T) {
	r := rewardWithStamps(3, 1, 1, 1)
	if !r.IsRedeemable() {
		t.Error("completed unclaimed reward should be redeemable")
	}
}

func TestIsRedeemableClaimed(t *testing.T) {
	r := rewardWithStamps(3, 1, 1, 1)
	now := time.Now()
	r.ClaimedAt = &now
	if r.IsRedeemable() {
		t.Error("claimed reward should not be redeemable")
	}
}

func TestIsRedeemableIncomplete(t *testing.T) {
	r := rewardWithStamps(3, 1)
	if r.IsRedeemable() {
		t.Error("incomplete reward should not be redeemable")
	}
}

// ==================== User Method Tests ====================

func TestIsAdminRoles(t *testing.T) {
	tests := []struct {
		role     string
		expected bool
	}{
		{RoleCustomer, false},
		{RoleAdmin, true},
		{RoleSuperAdmin, true},
		{"", false},
	}
	for _, tc := range tests {
		u := User{Role: tc.role}
		if u.IsAdmin() != tc.expected {
			t.Errorf("IsAdmin() with role %q = %v, want %v", tc.role, u.IsAdmin(), tc.expected)
		}
	}
}
