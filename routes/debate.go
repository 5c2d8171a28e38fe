package routes

import (
	"debatearena/controllers"

	"github.com/gin-gonic/gin"
)

// SetupDebateRoutes registers the debate surface on an authenticated group.
func SetupDebateRoutes(rg *gin.RouterGroup) {
	rg.POST("/debates", controllers.CreateDebate)
	rg.GET("/debates", controllers.ListDebates)
	rg.GET("/debates/:id", controllers.GetDebate)
	rg.POST("/debates/:id/join", controllers.JoinDebate)
	rg.POST("/debates/:id/arguments", controllers.SubmitArgument)
	rg.POST("/debates/:id/finalize", controllers.FinalizeDebate)
	rg.POST("/debates/:id/request-finalization", controllers.RequestFinalization)
	rg.GET("/debates/:id/results", controllers.GetResults)
}
