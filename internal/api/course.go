package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"time"     // Cache TTLs

	"edusmart/internal/apperr" // Error codes
	"edusmart/internal/domain" // Importing domain models
	"edusmart/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// CourseRequest is the create/edit payload for a course
type CourseRequest struct {
	Title       string `json:"title" binding:"required"`       // Course title
	Description string `json:"description"`                    // Free-text description
	Price       int    `json:"price" binding:"required,gt=0"`  // Tokens per attended session
	ImageURL    string `json:"image_url"`                      // Cover image path
}

// CreateCourseHandler creates a course owned by the requesting teacher.
// The route is gated by the verified (KYC) middleware.
func CreateCourseHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			apperr.JSON(c, http.StatusUnauthorized, apperr.CodeUnauthenticated, "Unauthorized")
			return
		}
		var req CourseRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.JSON(c, http.StatusBadRequest, apperr.CodeInvalidInput, "Invalid request")
			return
		}
		var teacher domain.User // Owner nickname is snapshotted onto the course
		if err := db.First(&teacher, userID).Error; err != nil {
			apperr.JSON(c, http.StatusUnauthorized, apperr.CodeUnauthenticated, "Unauthorized")
			return
		}
		course := domain.Course{
			Title:       req.Title,        // Course title
			Description: req.Description,  // Description
			PriceTokens: req.Price,        // Price per session
			ImageURL:    req.ImageURL,     // Cover image
			TeacherID:   teacher.ID,       // Owning teacher
			TeacherName: teacher.Nickname, // Nickname snapshot
		}
		// Insert the course
		if err := db.Create(&course).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"teacher_id": teacher.ID,  // Owner
				"error":      err.Error(), // Error message
			}).Error("Failed to create course") // Log failure
			apperr.Internal(c, "Failed to create course")
			return
		}
		invalidateSearchCache(c) // New course should show up in searches
		// Return the new course ID
		c.JSON(http.StatusCreated, gin.H{"course_id": course.ID})
	}
}

// EditCourseHandler updates a course's own scalar fields. It never touches
// class enrollment counters, and historic ledger entries keep their price.
func EditCourseHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			apperr.JSON(c, http.StatusUnauthorized, apperr.CodeUnauthenticated, "Unauthorized")
			return
		}
		var req CourseRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.JSON(c, http.StatusBadRequest, apperr.CodeInvalidInput, "Invalid request")
			return
		}
		// Update only courses owned by the requesting teacher
		res := db.Model(&domain.Course{}).
			Where("id = ? AND teacher_id = ?", c.Param("id"), userID).
			Updates(map[string]any{
				"title":        req.Title,       // Course title
				"description":  req.Description, // Description
				"price_tokens": req.Price,       // New price, applies to future check-ins only
				"image_url":    req.ImageURL,    // Cover image
			})
		if res.Error != nil {
			apperr.Internal(c, "Failed to update course")
			return
		}
		// Zero rows means the course is missing or owned by someone else
		if res.RowsAffected == 0 {
			apperr.JSON(c, http.StatusNotFound, apperr.CodeNotFound, "Course not found")
			return
		}
		invalidateSearchCache(c) // Title or price may have changed
		c.JSON(http.StatusOK, gin.H{"message": "Course updated"})
	}
}

// DeleteCourseHandler removes a course, but only when no classes depend on
// it. Classes must always be deleted first, which keeps enrollment and
// ledger rows from referencing a vanished course.
func DeleteCourseHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			apperr.JSON(c, http.StatusUnauthorized, apperr.CodeUnauthenticated, "Unauthorized")
			return
		}
		var course domain.Course // Resolve the course with the ownership check
		if err := db.Where("id = ? AND teacher_id = ?", c.Param("id"), userID).First(&course).Error; err != nil {
			apperr.JSON(c, http.StatusNotFound, apperr.CodeNotFound, "Course not found")
			return
		}
		var count int64 // Count dependent classes
		if err := db.Model(&domain.Class{}).Where("course_id = ?", course.ID).Count(&count).Error; err != nil {
			apperr.Internal(c, "Failed to delete course")
			return
		}
		// Refuse while classes still reference the course
		if count > 0 {
			apperr.JSON(c, http.StatusConflict, apperr.CodeHasDependents, "Course still has classes; delete them first")
			return
		}
		// Remove the course
		if err := db.Delete(&course).Error; err != nil {
			apperr.Internal(c, "Failed to delete course")
			return
		}
		invalidateSearchCache(c) // Course should disappear from searches
		c.JSON(http.StatusOK, gin.H{"message": "Course deleted"})
	}
}

// GetCourseHandler returns a course owned by the requesting teacher,
// including its classes, for the edit form.
func GetCourseHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			apperr.JSON(c, http.StatusUnauthorized, apperr.CodeUnauthenticated, "Unauthorized")
			return
		}
		var course domain.Course // Resolve the course with the ownership check
		if err := db.Where("id = ? AND teacher_id = ?", c.Param("id"), userID).First(&course).Error; err != nil {
			apperr.JSON(c, http.StatusNotFound, apperr.CodeNotFound, "Course not found")
			return
		}
		var classes []domain.Class // Attach the class list
		if err := db.Where("course_id = ?", course.ID).Find(&classes).Error; err != nil {
			apperr.Internal(c, "Failed to load classes")
			return
		}
		c.JSON(http.StatusOK, gin.H{"course": course, "classes": classes})
	}
}

// SearchCoursesHandler does a substring title match over the catalog,
// cached in Redis per query string.
func SearchCoursesHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := c.Query("q")           // Search text
		ctx := context.Background() // Context for Redis operations
		cacheKey := "courses:search:" + q
		var courses []domain.Course // Result list
		// Try the cache first
		if rdb != nil {
			if found, err := utils.GetCache(ctx, rdb, cacheKey, &courses); err == nil && found {
				c.JSON(http.StatusOK, gin.H{"courses": courses, "cached": true})
				return
			}
		}
		// Substring match on the title
		if err := db.Where("title LIKE ?", "%"+q+"%").Find(&courses).Error; err != nil {
			apperr.Internal(c, "Search failed")
			return
		}
		// Cache the result for 60 seconds
		if rdb != nil {
			_ = utils.SetCache(ctx, rdb, cacheKey, courses, 60*time.Second)
		}
		c.JSON(http.StatusOK, gin.H{"courses": courses, "cached": false})
	}
}

// invalidateSearchCache drops cached catalog searches after a course mutation
func invalidateSearchCache(c *gin.Context) {
	if v, ok := c.Get("redisClient"); ok {
		if rdb, ok := v.(*redis.Client); ok && rdb != nil {
			ctx := context.Background() // Context for Redis operations
			// Searches are keyed by query text; walk the namespace with a
			// cursor instead of KEYS, which blocks on the whole keyspace
			iter := rdb.Scan(ctx, 0, "courses:search:*", 100).Iterator()
			for iter.Next(ctx) {
				_ = utils.DeleteCache(ctx, rdb, iter.Val()) // Invalidate each cached search
			}
		}
	}
}
