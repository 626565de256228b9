package routes

import (
	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.New()

	// Recovery + request logging before any routes register
	r.Use(gin.Recovery())
	r.Use(ginlog.SetLogger())

	AuthRoutes(r)
	VehicleRoutes(r)
	ServiceRecordRoutes(r)
	UpgradeRoutes(r)
	ConditionReportRoutes(r)
	AdminRoutes(r)

	return r
}
