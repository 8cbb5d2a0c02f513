// main.go
package main

import (
	"log"
	"os"
	"time"
	"xavilearn/database"
	"xavilearn/handlers"
	"xavilearn/middleware"
	"xavilearn/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	validateEnvironment()

	// Initialize database
	database.InitDB()

	// Mission scheduler is an explicit instance owned here, not a global
	scheduler := services.NewMissionScheduler(database.GetDB())
	handlers.Init(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	cleanup := services.NewCleanupService(database.GetDB())
	cleanup.Start()
	defer cleanup.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    1 * 1024 * 1024, // 1MB
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	// CORS configuration
	corsOrigins := os.Getenv("CORS_ORIGINS")
	if corsOrigins == "" {
		corsOrigins = "http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	app.Use(middleware.RateLimitMiddleware())

	// API Routes
	api := app.Group("/api")

	// Auth routes with stricter rate limiting
	authGroup := api.Group("/auth")
	authGroup.Use(middleware.AuthRateLimitMiddleware())
	authGroup.Post("/guest", handlers.GuestLogin)
	authGroup.Post("/login", handlers.Login)
	authGroup.Post("/register", handlers.Register)

	// Activity catalog
	api.Get("/activities", handlers.GetActivities)

	// Evidence routes
	evidenceGroup := api.Group("/evidences")
	evidenceGroup.Use(middleware.AuthMiddleware)
	evidenceGroup.Post("/", handlers.SubmitEvidence)
	evidenceGroup.Get("/", handlers.ListEvidences)

	// Progression routes
	progressionGroup := api.Group("/progression")
	progressionGroup.Use(middleware.AuthMiddleware)
	progressionGroup.Post("/xp", handlers.AwardXP)
	progressionGroup.Get("/", handlers.GetProgression)

	// Achievement routes
	achievementGroup := api.Group("/achievements")
	achievementGroup.Get("/", handlers.GetAchievementDefinitions)
	achievementGroup.Use(middleware.AuthMiddleware)
	achievementGroup.Get("/me", handlers.GetUserAchievements)
	achievementGroup.Post("/check", handlers.CheckAchievements)
	achievementGroup.Post("/assign", handlers.AssignAchievements)
	achievementGroup.Post("/:id/claim", handlers.ClaimAchievement)

	// Mission routes
	missionGroup := api.Group("/missions")
	missionGroup.Use(middleware.AuthMiddleware)
	missionGroup.Get("/", handlers.GetActiveMissions)
	missionGroup.Get("/history", handlers.GetMissionHistory)
	missionGroup.Post("/assign", handlers.AssignMissions)
	missionGroup.Post("/:id/increment", handlers.IncrementMission)
	missionGroup.Post("/:id/claim", handlers.ClaimMission)

	// Leaderboard routes
	api.Get("/leaderboard", handlers.GetLeaderboard)

	// Admin maintenance routes
	adminGroup := api.Group("/admin")
	adminGroup.Use(middleware.AdminAuthMiddleware)
	adminGroup.Post("/activities", handlers.CreateActivity)
	adminGroup.Post("/evidences/:id/approve", handlers.ApproveEvidence)
	adminGroup.Post("/evidences/:id/reject", handlers.RejectEvidence)
	adminGroup.Post("/rankings/recompute", handlers.RecomputeRankings)
	adminGroup.Post("/achievements/:id/recompute", handlers.RecomputeAchievements)
	adminGroup.Post("/scheduler/:kind", handlers.RunSchedulerTick)

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"version":   "1.0.0",
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Printf("🚀 HTTP server starting on port %s", port)
	log.Printf("📊 Environment: %s", getEnv("APP_ENV", "development"))

	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start HTTP server:", err)
	}
}

// validateEnvironment checks for required environment variables
func validateEnvironment() {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("FATAL: JWT_SECRET environment variable must be set. Generate one with: openssl rand -base64 64")
	}
	if len(jwtSecret) < 32 {
		log.Fatal("FATAL: JWT_SECRET must be at least 32 characters long")
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Don't expose internal errors in production
	if os.Getenv("APP_ENV") == "production" && code == 500 {
		message = "An error occurred. Please try again later."
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
