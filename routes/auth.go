package routes

import (
	"debatearena/controllers"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes registers the public authentication endpoints.
func SetupAuthRoutes(router *gin.Engine) {
	router.POST("/signup", controllers.Signup)
	router.POST("/login", controllers.Login)
}
