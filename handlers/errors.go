package handlers

import (
	"errors"
	"net/http"

	"stampcard-backend/loyalty"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// respondLoyaltyError maps domain errors from the loyalty package onto HTTP
// responses. Anything unrecognized is a 500.
func respondLoyaltyError(c *gin.Context, err error) {
	var cooldownErr *loyalty.CooldownError
	if errors.As(err, &cooldownErr) {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":               cooldownErr.Error(),
			"last_scan_at":        cooldownErr.LastScanAt,
			"retry_after_seconds": int(cooldownErr.Remaining.Seconds()),
			"next_eligible_at":    cooldownErr.NextEligibleAt,
		})
		return
	}

	switch {
	case errors.Is(err, loyalty.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, loyalty.ErrOfferNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Offer not found"})
	case errors.Is(err, loyalty.ErrRewardNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Reward not found"})
	case errors.Is(err, loyalty.ErrOfferInactive):
		c.JSON(http.StatusForbidden, gin.H{"error": "This offer is not currently active"})
	case errors.Is(err, loyalty.ErrOfferActive):
		c.JSON(http.StatusConflict, gin.H{"error": "Deactivate the offer before editing or deleting it"})
	case errors.Is(err, loyalty.ErrAlreadyCompleted):
		c.JSON(http.StatusConflict, gin.H{"error": "Reward already completed. Redeem it before collecting again."})
	case errors.Is(err, loyalty.ErrOffersInUse):
		c.JSON(http.StatusConflict, gin.H{"error": "Offer has active collectors and cannot be deleted"})
	case errors.Is(err, loyalty.ErrNotCompleted):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Reward is not completed yet"})
	case errors.Is(err, loyalty.ErrAlreadyClaimed):
		c.JSON(http.StatusConflict, gin.H{"error": "Reward has already been claimed"})
	case errors.Is(err, loyalty.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized for this operation"})
	case errors.Is(err, loyalty.ErrConcurrentModification):
		c.JSON(http.StatusConflict, gin.H{"error": "Concurrent update detected, please retry"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// actorFromContext builds the loyalty actor from the auth middleware's
// context values.
func actorFromContext(c *gin.Context) (loyalty.Actor, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		return loyalty.Actor{}, false
	}
	role, _ := c.Get("user_role")
	roleStr, _ := role.(string)
	return loyalty.Actor{ID: userID.(uuid.UUID), Role: roleStr}, true
}
