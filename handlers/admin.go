package handlers

import (
	"net/http"

	"stampcard-backend/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AdminHandler struct {
	DB *gorm.DB
}

// GetStats aggregates the dashboard numbers: user base, offer counts, and
// the reward funnel (in progress / completed / claimed).
func (h *AdminHandler) GetStats(c *gin.Context) {
	var totalUsers, totalCustomers int64
	h.DB.Model(&models.User{}).Count(&totalUsers)
	h.DB.Model(&models.User{}).Where("role = ?", models.RoleCustomer).Count(&totalCustomers)

	var totalOffers, activeOffers int64
	h.DB.Model(&models.Offer{}).Count(&totalOffers)
	h.DB.Model(&models.Offer{}).Where("is_active = ?", true).Count(&activeOffers)

	var totalScans int64
	h.DB.Model(&models.ScanEvent{}).Count(&totalScans)

	var stampsIssued int64
	h.DB.Model(&models.ScanEvent{}).Select("COALESCE(SUM(stamps_earned), 0)").Scan(&stampsIssued)

	var claimedRewards int64
	h.DB.Model(&models.Reward{}).Where("claimed_at IS NOT NULL").Count(&claimedRewards)

	// Completion is derived from scan history, so split the unclaimed
	// rewards in memory rather than guessing in SQL.
	var unclaimed []models.Reward
	h.DB.Preload("ScanHistory").Where("claimed_at IS NULL").Find(&unclaimed)

	var inProgress, redeemable int64
	for i := range unclaimed {
		if unclaimed[i].IsCompleted() {
			redeemable++
		} else {
			inProgress++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"total_users":         totalUsers,
		"total_customers":     totalCustomers,
		"total_offers":        totalOffers,
		"active_offers":       activeOffers,
		"total_scans":         totalScans,
		"stamps_issued":       stampsIssued,
		"rewards_in_progress": inProgress,
		"rewards_redeemable":  redeemable,
		"rewards_claimed":     claimedRewards,
	})
}

// ResetData wipes all collection data: scan events, rewards, and every
// user's progress counters. Accounts and offers survive. Super admin only;
// this is the one sanctioned bulk delete in the system.
func (h *AdminHandler) ResetData(c *gin.Context) {
	var req struct {
		Confirm string `json:"confirm" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Confirm != "RESET" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Confirmation required: send {\"confirm\": \"RESET\"}"})
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM scan_events").Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM rewards").Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("1 = 1").Updates(map[string]interface{}{
			"current_offer_id":       nil,
			"current_offer_progress": 0,
			"purchases":              0,
			"last_scan_at":           nil,
		}).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All collection data has been reset"})
}
