package routes

import (
	"github.com/Dgzikaa/zykor-sub003/internal/config"
	"github.com/Dgzikaa/zykor-sub003/internal/controllers"
	"github.com/Dgzikaa/zykor-sub003/internal/pipeline"
	"github.com/Dgzikaa/zykor-sub003/internal/staging"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter initializes all services, controllers, and API routes
func SetupRouter(db *gorm.DB, cfg *config.Config) *gin.Engine {
	collectionController := controllers.CollectionController{
		Pipeline: pipeline.New(db, cfg),
		Store:    staging.New(db),
	}

	// Set up Gin router
	router := gin.Default()

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})

	// Group API routes under /api/v1
	api := router.Group("/api/v1")
	{
		// POST /api/v1/collect
		// Runs one collection pipeline for a (business unit, date) pair
		api.POST("/collect", collectionController.Collect)

		// Staging group
		stagingGroup := api.Group("/staging")
		{
			// GET /api/v1/staging/:business_unit_id?date=YYYY-MM-DD
			stagingGroup.GET("/:business_unit_id", collectionController.ListStaged)

			// GET /api/v1/staging/:business_unit_id/:report_type?date=YYYY-MM-DD
			stagingGroup.GET("/:business_unit_id/:report_type", collectionController.GetStaged)
		}
	}

	return router
}
