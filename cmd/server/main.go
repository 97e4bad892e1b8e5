package main

import (
	"context" // context package is needed for Redis operations
	"log"     // log package is needed for logging
	"os"      // Upload directory creation

	"edusmart/internal/api"        // Custom package for API handlers
	"edusmart/internal/config"     // Custom package for configuration
	"edusmart/internal/middleware" // Custom package for middleware

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Setup Data Source Name (DSN) and connect to the database.
	// TranslateError surfaces duplicate-key violations as gorm.ErrDuplicatedKey,
	// which the settlement and enrollment handlers map to business failures.
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Ensure the storage directories exist
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		logrus.Fatalf("failed to create upload dir: %v", err)
	}
	if err := os.MkdirAll(cfg.RecordingDir, 0o755); err != nil {
		logrus.Fatalf("failed to create recording dir: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Public routes
	r.POST("/register", api.RegisterHandler(db))              // Registration endpoint
	r.POST("/login", api.LoginHandler(db, cfg.JWTSecret))     // Login endpoint
	r.GET("/courses/search", api.SearchCoursesHandler(db, redisClient)) // Catalog search endpoint
	r.Static("/uploads", cfg.UploadDir)                       // Stored avatars and KYC documents
	r.Static("/recordings", cfg.RecordingDir)                 // Stored lesson recordings

	// Authenticated routes (protected by JWT), Redis client injected into context
	authed := r.Group("/api")
	authed.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), func(c *gin.Context) {
		c.Set("redisClient", redisClient)
		c.Next()
	})
	authed.GET("/me", api.MeHandler(db))                              // Profile endpoint
	authed.POST("/kyc", api.SubmitKycHandler(db, cfg.UploadDir))      // KYC submission endpoint
	authed.POST("/avatar", api.UploadAvatarHandler(db, cfg.UploadDir)) // Avatar upload endpoint
	authed.GET("/courses/:id/reviews", api.CourseReviewsHandler(db))  // Course reviews endpoint
	authed.GET("/teachers/:id/rating", api.TeacherRatingHandler(db))  // Teacher rating endpoint

	// Teacher routes
	teacher := authed.Group("")
	teacher.Use(middleware.TeacherOnly(db))
	teacher.POST("/courses", middleware.VerifiedOnly(db), api.CreateCourseHandler(db)) // Create course (KYC gated)
	teacher.PUT("/courses/:id", middleware.VerifiedOnly(db), api.EditCourseHandler(db)) // Edit course (KYC gated)
	teacher.DELETE("/courses/:id", api.DeleteCourseHandler(db))       // Delete course endpoint
	teacher.GET("/courses/:id", api.GetCourseHandler(db))             // Course detail endpoint
	teacher.POST("/classes", api.CreateClassHandler(db))              // Create class endpoint
	teacher.PUT("/classes/:id", api.EditClassHandler(db))             // Edit class endpoint
	teacher.DELETE("/classes/:id", api.DeleteClassHandler(db))        // Delete class endpoint
	teacher.POST("/attendance", api.CheckInHandler(db))               // Check-in settlement endpoint
	teacher.GET("/teacher/stats", api.TeacherStatsHandler(db))        // Dashboard stats endpoint
	teacher.GET("/teacher/finance", api.TeacherFinanceHandler(db, redisClient)) // Settlement log endpoint
	teacher.GET("/teacher/calendar", api.TeacherCalendarHandler(db))  // Teacher calendar endpoint
	teacher.POST("/recordings", api.SaveRecordingHandler(db, cfg.RecordingDir)) // Recording upload endpoint
	teacher.POST("/recordings/:id/toggle-download", api.ToggleDownloadHandler(db)) // Download toggle endpoint

	// Learner routes
	learner := authed.Group("")
	learner.Use(middleware.LearnerOnly(db))
	learner.POST("/enroll", api.EnrollHandler(db))                    // Enrollment endpoint
	learner.POST("/reviews", api.SubmitReviewHandler(db))             // Review submission endpoint
	learner.GET("/learner/stats", api.LearnerStatsHandler(db, redisClient)) // Learner stats endpoint
	learner.GET("/learner/calendar", api.LearnerCalendarHandler(db))  // Learner calendar endpoint
	learner.GET("/wallet/history", api.WalletHistoryHandler(db, redisClient)) // Wallet history endpoint

	// Admin routes (KYC review)
	admin := authed.Group("/admin")
	admin.Use(middleware.AdminOnly(db))
	admin.GET("/kyc/pending", api.PendingKycHandler(db))   // Pending submissions endpoint
	admin.POST("/kyc/approve", api.ApproveKycHandler(db))  // Approval endpoint
	admin.POST("/kyc/reject", api.RejectKycHandler(db))    // Rejection endpoint

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
