package api

import (
	"context"  // Context for Redis operations
	"errors"   // Sentinel errors inside the transaction
	"net/http" // HTTP status codes
	"strconv"  // Cache key building

	"edusmart/internal/apperr" // Error codes
	"edusmart/internal/domain" // Importing domain models
	"edusmart/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// EnrollRequest assigns the learner to one class of a course
type EnrollRequest struct {
	CourseID uint `json:"course_id" binding:"required"` // Target course
	ClassID  uint `json:"class_id" binding:"required"`  // Chosen class of that course
}

// Sentinel errors used to map transaction outcomes to responses
var (
	errAlreadyEnrolled = errors.New("already enrolled")
	errClassNotFound   = errors.New("class not found")
	errClassFull       = errors.New("class full")
)

// EnrollHandler assigns a learner to a class under the capacity ceiling.
// The capacity check, the counter increment and the enrollment insert run in
// one transaction: the increment is a conditional UPDATE guarded by
// enrolled < capacity, so two learners racing for the last seat cannot both
// get it, and the counter can never drift from the enrollment rows.
func EnrollHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			apperr.JSON(c, http.StatusUnauthorized, apperr.CodeUnauthenticated, "Unauthorized")
			return
		}
		studentID := userID.(uint) // Authenticated learner
		var req EnrollRequest      // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.JSON(c, http.StatusBadRequest, apperr.CodeInvalidInput, "Invalid request")
			return
		}
		// Atomic enroll
		err := db.Transaction(func(tx *gorm.DB) error {
			// Uniqueness is per (student, course): picking a different class
			// of the same course is still a duplicate
			var existing domain.Enrollment
			if err := tx.Where("student_id = ? AND course_id = ?", studentID, req.CourseID).
				First(&existing).Error; err == nil {
				return errAlreadyEnrolled
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err // Storage failure
			}
			// Conditional increment: only succeeds while a seat is free
			res := tx.Model(&domain.Class{}).
				Where("id = ? AND course_id = ? AND enrolled < capacity", req.ClassID, req.CourseID).
				Update("enrolled", gorm.Expr("enrolled + 1"))
			if res.Error != nil {
				return res.Error // Storage failure
			}
			// Zero rows: either the class id is wrong or the class is full
			if res.RowsAffected == 0 {
				var class domain.Class
				if err := tx.Where("id = ? AND course_id = ?", req.ClassID, req.CourseID).
					First(&class).Error; err != nil {
					return errClassNotFound
				}
				return errClassFull
			}
			// Insert the enrollment row in the same unit as the increment.
			// The unique (student, course) index backs up the duplicate
			// check when a concurrent enrollment slips past the read.
			enrollment := domain.Enrollment{
				StudentID: studentID,    // Enrolled learner
				CourseID:  req.CourseID, // Course
				ClassID:   req.ClassID,  // Chosen class
			}
			if err := tx.Create(&enrollment).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return errAlreadyEnrolled // Rolls the increment back with it
				}
				return err
			}
			return nil
		})
		// Map transaction outcome to a response
		switch {
		case errors.Is(err, errAlreadyEnrolled):
			apperr.JSON(c, http.StatusConflict, apperr.CodeAlreadyEnrolled, "Already enrolled in this course")
			return
		case errors.Is(err, errClassNotFound):
			apperr.JSON(c, http.StatusNotFound, apperr.CodeClassNotFound, "Class not found")
			return
		case errors.Is(err, errClassFull):
			apperr.JSON(c, http.StatusConflict, apperr.CodeClassFull, "Class is full")
			return
		case err != nil:
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"student_id": studentID,    // Learner
				"course_id":  req.CourseID, // Course
				"class_id":   req.ClassID,  // Class
				"error":      err.Error(),  // Error message
			}).Error("Enroll failed") // Log enroll failure
			apperr.Internal(c, "Enroll failed")
			return
		}
		// Log successful enrollment
		logrus.WithFields(logrus.Fields{
			"student_id": studentID,    // Learner
			"course_id":  req.CourseID, // Course
			"class_id":   req.ClassID,  // Class
		}).Info("Enrollment created") // Log enroll success
		// Invalidate caches that list this learner's data
		if v, ok := c.Get("redisClient"); ok {
			if rdb, ok := v.(*redis.Client); ok && rdb != nil {
				ctx := context.Background() // Context for Redis operations
				_ = utils.DeleteCache(ctx, rdb, "learner:stats:"+strconv.Itoa(int(studentID)))
			}
		}
		// Return success response
		c.JSON(http.StatusOK, gin.H{"message": "Enrolled successfully"})
	}
}
