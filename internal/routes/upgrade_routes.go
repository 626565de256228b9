package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/zaigner/my-garage/internal/controllers"
	"github.com/zaigner/my-garage/internal/middleware"
)

func UpgradeRoutes(r *gin.Engine) {
	upgrades := r.Group("/upgrades")
	upgrades.Use(middleware.RequireAuth())
	{
		upgrades.POST("/", controllers.CreateUpgrade)
		upgrades.GET("/", controllers.ListUpgrades)
		upgrades.GET("/:id", controllers.GetUpgrade)
		upgrades.PUT("/:id", controllers.UpdateUpgrade)
		upgrades.DELETE("/:id", controllers.DeleteUpgrade)
		upgrades.POST("/:id/install", controllers.InstallUpgrade)
	}
}
