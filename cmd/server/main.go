package main

import (
	"log"
	"strconv"

	"debatearena/config"
	"debatearena/controllers"
	"debatearena/db"
	"debatearena/internal/ratelimit"
	"debatearena/middlewares"
	"debatearena/routes"
	"debatearena/services"
	"debatearena/utils"
	"debatearena/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig("./config/config.yml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	utils.SetJWTConfig(cfg.JWT.Secret, cfg.JWT.ExpiryMinutes)

	if err := db.ConnectMongoDB(cfg.Database.URI); err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	log.Println("Connected to MongoDB")

	services.InitDebateServices(cfg, db.Debates(), db.Results(), db.Users(), websocket.DefaultHub())

	limiter, err := ratelimit.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, ratelimit.DefaultConfig())
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	controllers.InitDebateController(limiter)

	router := setupRouter(cfg)
	port := strconv.Itoa(cfg.Server.Port)
	log.Printf("Server starting on port %s", port)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()

	router.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))
	router.OPTIONS("/*path", func(c *gin.Context) { c.Status(204) })

	routes.SetupAuthRoutes(router)

	auth := router.Group("/")
	auth.Use(middlewares.AuthMiddleware())
	{
		routes.SetupDebateRoutes(auth)
		routes.SetupProfileRoutes(auth)

		// WebSocket endpoint for debate rooms
		auth.GET("/ws", websocket.Handler)
	}

	return router
}
