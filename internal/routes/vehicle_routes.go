package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/zaigner/my-garage/internal/controllers"
	"github.com/zaigner/my-garage/internal/middleware"
)

func VehicleRoutes(r *gin.Engine) {
	vehicles := r.Group("/vehicles")
	vehicles.Use(middleware.RequireAuth())
	{
		vehicles.POST("/", controllers.CreateVehicle)
		vehicles.GET("/", controllers.ListVehicles)
		vehicles.GET("/:id", controllers.GetVehicle)
		vehicles.PUT("/:id", controllers.UpdateVehicle)
		vehicles.DELETE("/:id", controllers.DeleteVehicle)

		// Resource actions
		vehicles.POST("/:id/refresh-valuation", controllers.RefreshValuation)
		vehicles.GET("/:id/build-summary", controllers.BuildSummary)
		vehicles.GET("/:id/wishlist", controllers.Wishlist)
		vehicles.GET("/:id/pending-services", controllers.PendingServices)
		vehicles.POST("/:id/receipts", controllers.UploadReceipt)
	}

	garage := r.Group("/garage")
	garage.Use(middleware.RequireAuth())
	{
		garage.GET("/summary", controllers.GarageSummary)
	}
}
