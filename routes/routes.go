package routes

import (
	"time"

	"stampcard-backend/firebase"
	"stampcard-backend/handlers"
	"stampcard-backend/loyalty"
	"stampcard-backend/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB, storage firebase.StorageClient) {
	engine := loyalty.NewEngine(db)
	registry := loyalty.NewRegistry(db)

	// Initialize handlers
	authHandler := &handlers.AuthHandler{DB: db}
	offerHandler := &handlers.OfferHandler{DB: db, Registry: registry, Storage: storage}
	scanHandler := &handlers.ScanHandler{DB: db, Engine: engine}
	adminHandler := &handlers.AdminHandler{DB: db}

	authLimiter := middleware.NewRateLimiter(10, time.Minute)
	scanLimiter := middleware.NewRateLimiter(30, time.Minute)

	// Public routes
	api := r.Group("/api")
	{
		// Auth routes
		api.POST("/auth/register", authLimiter.Middleware(), authHandler.Register)
		api.POST("/auth/login", authLimiter.Middleware(), authHandler.Login)
		api.POST("/auth/refresh", authLimiter.Middleware(), authHandler.RefreshTokenHandler)
		api.POST("/auth/forgot-password", authLimiter.Middleware(), authHandler.ForgotPassword)
		api.POST("/auth/reset-password", authLimiter.Middleware(), authHandler.ResetPassword)

		// Public offer routes (active offers only)
		api.GET("/offers", offerHandler.GetOffers)
		api.GET("/offers/:id", offerHandler.GetOffer)
	}

	// Protected routes (require authentication)
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(db))
	{
		// User profile
		protected.GET("/auth/profile", authHandler.GetProfile)
		protected.PUT("/auth/profile", authHandler.UpdateProfile)
		protected.POST("/auth/change-password", authHandler.ChangePassword)
		protected.POST("/auth/logout", authHandler.Logout)

		// Scanning and rewards
		protected.POST("/scan", scanLimiter.Middleware(), scanHandler.Scan)
		protected.GET("/scan/cooldown", scanHandler.GetCooldown)
		protected.GET("/rewards", scanHandler.GetMyRewards)
		protected.POST("/rewards/:id/redeem", scanHandler.RedeemReward)
	}

	// Admin routes (require admin role)
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(db))
	admin.Use(middleware.AdminMiddleware())
	{
		// Offer management
		admin.GET("/offers", offerHandler.GetAllOffers)
		admin.POST("/offers", offerHandler.CreateOffer)
		admin.PUT("/offers/:id", offerHandler.UpdateOffer)
		admin.DELETE("/offers/:id", offerHandler.DeleteOffer)
		admin.PUT("/offers/:id/active", offerHandler.SetOfferActive)
		admin.POST("/offers/:id/image", offerHandler.UploadOfferImage)

		// Scanning on behalf of customers
		admin.POST("/scan", scanHandler.Scan)

		// User management
		admin.GET("/users", authHandler.ListUsers)
		admin.GET("/users/:id", authHandler.GetUser)
		admin.PUT("/users/:id", authHandler.UpdateUser)
		admin.GET("/users/:id/rewards", scanHandler.GetUserRewards)
		admin.POST("/users/:id/rewards/:rewardId/redeem", scanHandler.AdminRedeem)

		// Analytics
		admin.GET("/stats", adminHandler.GetStats)
	}

	// Super admin routes
	superAdmin := api.Group("/admin")
	superAdmin.Use(middleware.AuthMiddleware(db))
	superAdmin.Use(middleware.SuperAdminMiddleware())
	{
		superAdmin.POST("/reset", adminHandler.ResetData)
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
