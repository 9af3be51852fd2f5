package handlers

import (
	"net/http"

	"stampcard-backend/loyalty"
	"stampcard-backend/models"
	"stampcard-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ScanHandler struct {
	DB     *gorm.DB
	Engine *loyalty.Engine
}

func rewardResponse(reward *models.Reward) gin.H {
	return gin.H{
		"reward":            reward,
		"total_stamps":      reward.TotalStamps(),
		"stamp_requirement": reward.StampRequirement,
		"completed":         reward.IsCompleted(),
	}
}

// Scan accepts a raw QR payload, decides whether it is a progress scan or a
// redemption request, and routes it into the engine. The acting identity
// comes from the session; the target comes from the QR code.
func (h *ScanHandler) Scan(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		Payload string `json:"payload" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	payload, err := loyalty.ParseQRPayload(req.Payload)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid QR code"})
		return
	}

	if payload.Action == loyalty.ActionRedeemReward {
		rewardID, err := uuid.Parse(payload.RewardID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid QR code"})
			return
		}
		reward, err := h.Engine.Redeem(actor, payload.UserID, rewardID)
		if err != nil {
			respondLoyaltyError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Reward redeemed successfully",
			"reward":  reward,
		})
		return
	}

	reward, err := h.Engine.RecordScan(actor, payload.UserID, payload.OfferID)
	if err != nil {
		respondLoyaltyError(c, err)
		return
	}

	c.JSON(http.StatusOK, rewardResponse(reward))
}

// GetCooldown reports the current user's scan eligibility. Backed by the
// same derivation the scan gate uses, so the countdown always matches what
// a scan attempt would decide.
func (h *ScanHandler) GetCooldown(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	cd, err := h.Engine.CooldownFor(userID.(uuid.UUID))
	if err != nil {
		respondLoyaltyError(c, err)
		return
	}

	resp := gin.H{"can_scan": cd.CanScan}
	if !cd.CanScan {
		resp["remaining_seconds"] = int(cd.Remaining.Seconds())
		resp["next_eligible_at"] = cd.NextEligibleAt
	}
	c.JSON(http.StatusOK, resp)
}

// GetMyRewards lists the current user's rewards across all cycles.
func (h *ScanHandler) GetMyRewards(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	rewards, err := h.Engine.ListRewards(userID.(uuid.UUID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch rewards"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"rewards": rewards})
}

// RedeemReward claims one of the current user's completed rewards.
func (h *ScanHandler) RedeemReward(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	rewardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reward not found"})
		return
	}

	reward, err := h.Engine.Redeem(actor, actor.ID, rewardID)
	if err != nil {
		respondLoyaltyError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Reward redeemed successfully",
		"reward":  reward,
	})
}

// GetUserRewards lists any user's rewards (admin).
func (h *ScanHandler) GetUserRewards(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	rewards, err := h.Engine.ListRewards(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch rewards"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"rewards": rewards})
}

// AdminRedeem claims a reward on behalf of a customer (counter redemption).
func (h *ScanHandler) AdminRedeem(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	rewardID, err := uuid.Parse(c.Param("rewardId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reward not found"})
		return
	}

	reward, err := h.Engine.Redeem(actor, userID, rewardID)
	if err != nil {
		respondLoyaltyError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Reward redeemed successfully",
		"reward":  reward,
	})
}
