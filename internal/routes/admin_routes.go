package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/zaigner/my-garage/internal/controllers"
	"github.com/zaigner/my-garage/internal/middleware"
)

func AdminRoutes(r *gin.Engine) {
	admin := r.Group("/admin")
	admin.Use(middleware.RequireAuth())
	{
		admin.POST("/valuations/sweep", controllers.SweepValuations)
	}
}
