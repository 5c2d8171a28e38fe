package routes

import (
	"debatearena/controllers"

	"github.com/gin-gonic/gin"
)

// SetupProfileRoutes registers profile and leaderboard endpoints.
func SetupProfileRoutes(rg *gin.RouterGroup) {
	rg.GET("/user/profile", controllers.GetProfile)
	rg.GET("/leaderboard", controllers.GetLeaderboard)
}
