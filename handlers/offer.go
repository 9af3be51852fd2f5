package handlers

import (
	"net/http"
	"time"

	"stampcard-backend/firebase"
	"stampcard-backend/loyalty"
	"stampcard-backend/models"
	"stampcard-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OfferHandler struct {
	DB       *gorm.DB
	Registry *loyalty.Registry
	Storage  firebase.StorageClient
}

// GetOffers lists active offers. This is the customer-facing "start
// collecting" listing; deactivated offers are hidden here but keep serving
// users already collecting against them.
func (h *OfferHandler) GetOffers(c *gin.Context) {
	offers, err := h.Registry.ListOffers(true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch offers"})
		return
	}
	c.JSON(http.StatusOK, offers)
}

// GetAllOffers returns all offers (active + inactive) for admin use
func (h *OfferHandler) GetAllOffers(c *gin.Context) {
	offers, err := h.Registry.ListOffers(false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch offers"})
		return
	}
	c.JSON(http.StatusOK, offers)
}

func (h *OfferHandler) GetOffer(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Offer not found"})
		return
	}

	offer, err := h.Registry.GetOffer(id)
	if err != nil {
		respondLoyaltyError(c, err)
		return
	}
	c.JSON(http.StatusOK, offer)
}

func (h *OfferHandler) CreateOffer(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		Name              string     `json:"name" binding:"required"`
		Description       string     `json:"description"`
		StampRequirement  int        `json:"stamp_requirement" binding:"required,min=1"`
		StampsPerScan     int        `json:"stamps_per_scan" binding:"omitempty,min=1"`
		RewardType        string     `json:"reward_type" binding:"required,oneof=percentage fixed_amount free_item buy_one_get_one"`
		RewardValue       string     `json:"reward_value"`
		RewardDescription string     `json:"reward_description"`
		ExpiresAt         *time.Time `json:"expires_at"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	offer, err := h.Registry.CreateOffer(actor, loyalty.OfferInput{
		Name:              req.Name,
		Description:       req.Description,
		StampRequirement:  req.StampRequirement,
		StampsPerScan:     req.StampsPerScan,
		RewardType:        req.RewardType,
		RewardValue:       req.RewardValue,
		RewardDescription: req.RewardDescription,
		ExpiresAt:         req.ExpiresAt,
	})
	if err != nil {
		respondLoyaltyError(c, err)
		return
	}

	c.JSON(http.StatusCreated, offer)
}

func (h *OfferHandler) UpdateOffer(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Offer not found"})
		return
	}

	var req struct {
		Name              *string    `json:"name"`
		Description       *string    `json:"description"`
		StampRequirement  *int       `json:"stamp_requirement" binding:"omitempty,min=1"`
		StampsPerScan     *int       `json:"stamps_per_scan" binding:"omitempty,min=1"`
		RewardType        *string    `json:"reward_type" binding:"omitempty,oneof=percentage fixed_amount free_item buy_one_get_one"`
		RewardValue       *string    `json:"reward_value"`
		RewardDescription *string    `json:"reward_description"`
		ExpiresAt         *time.Time `json:"expires_at"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	offer, err := h.Registry.UpdateOffer(actor, id, loyalty.OfferPatch{
		Name:              req.Name,
		Description:       req.Description,
		StampRequirement:  req.StampRequirement,
		StampsPerScan:     req.StampsPerScan,
		RewardType:        req.RewardType,
		RewardValue:       req.RewardValue,
		RewardDescription: req.RewardDescription,
		ExpiresAt:         req.ExpiresAt,
	})
	if err != nil {
		respondLoyaltyError(c, err)
		return
	}

	c.JSON(http.StatusOK, offer)
}

func (h *OfferHandler) DeleteOffer(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Offer not found"})
		return
	}

	if err := h.Registry.DeleteOffer(actor, id); err != nil {
		respondLoyaltyError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Offer deleted successfully"})
}

func (h *OfferHandler) SetOfferActive(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Offer not found"})
		return
	}

	var req struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	offer, err := h.Registry.SetActive(actor, id, *req.IsActive)
	if err != nil {
		respondLoyaltyError(c, err)
		return
	}

	c.JSON(http.StatusOK, offer)
}

// UploadOfferImage replaces the offer's image. The old object is deleted
// from storage on a best-effort basis.
func (h *OfferHandler) UploadOfferImage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Offer not found"})
		return
	}

	var offer models.Offer
	if err := h.DB.Where("id = ?", id).First(&offer).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Offer not found"})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image is required"})
		return
	}

	if err := utils.ValidateFileUpload(fileHeader); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to open uploaded file"})
		return
	}
	defer file.Close()

	imageURL, err := h.Storage.UploadOfferImage(
		file,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Image upload failed"})
		return
	}

	if offer.Image != "" {
		if objectPath, pathErr := utils.ExtractObjectPath(offer.Image); pathErr == nil {
			_ = h.Storage.DeleteFile(objectPath)
		}
	}

	if err := h.DB.Model(&offer).Update("image", imageURL).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update offer"})
		return
	}
	offer.Image = imageURL

	c.JSON(http.StatusOK, offer)
}
