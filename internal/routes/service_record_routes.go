package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/zaigner/my-garage/internal/controllers"
	"github.com/zaigner/my-garage/internal/middleware"
)

func ServiceRecordRoutes(r *gin.Engine) {
	records := r.Group("/services")
	records.Use(middleware.RequireAuth())
	{
		records.POST("/", controllers.CreateServiceRecord)
		records.GET("/", controllers.ListServiceRecords)
		records.GET("/:id", controllers.GetServiceRecord)
		records.PUT("/:id", controllers.UpdateServiceRecord)
		records.DELETE("/:id", controllers.DeleteServiceRecord)
	}
}
