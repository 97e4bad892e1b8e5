package api

import (
	"context"  // Context for Redis operations
	"errors"   // Sentinel errors inside the transaction
	"net/http" // HTTP status codes
	"strconv"  // Cache key building
	"time"     // Day boundaries and timestamps

	"edusmart/internal/apperr" // Error codes
	"edusmart/internal/domain" // Importing domain models
	"edusmart/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// CheckInRequest marks a learner present in one of the teacher's courses
type CheckInRequest struct {
	LearnerID uint `json:"learner_id" binding:"required"` // Learner to check in
	CourseID  uint `json:"course_id" binding:"required"`  // Course the learner attends
}

// Sentinel errors used to map settlement outcomes to responses
var (
	errNotEnrolled        = errors.New("not enrolled")
	errClassNotStarted    = errors.New("class not started")
	errClassEnded         = errors.New("class ended")
	errAlreadyCheckedIn   = errors.New("already checked in")
	errInsufficientTokens = errors.New("insufficient tokens")
)

// dayBounds returns the local-day window [00:00:00, 23:59:59.999] around t.
func dayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	end := start.Add(24*time.Hour - time.Millisecond)
	return start, end
}

// CheckInHandler is the attendance settlement engine. Eligibility checks,
// ledger append and wallet debit all run in one transaction. The ledger row
// is inserted before the debit: its unique (student, course, checkin_date)
// index rejects a concurrent same-day duplicate at the schema level, where
// a repeated-read COUNT would see a stale snapshot. The debit itself is a
// conditional UPDATE guarded by wallet_tokens >= price, so a concurrent
// check-in can never double-spend, and a debited-but-unlogged (or
// logged-but-undebited) state cannot be observed.
func CheckInHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			apperr.JSON(c, http.StatusUnauthorized, apperr.CodeUnauthenticated, "Unauthorized")
			return
		}
		teacherID := userID.(uint) // Requesting teacher
		var req CheckInRequest     // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.JSON(c, http.StatusBadRequest, apperr.CodeInvalidInput, "Invalid request")
			return
		}
		now := time.Now()                    // Settlement moment
		todayStr := now.Format("2006-01-02") // Calendar date for the window and uniqueness
		var deducted int                     // Price snapshot for the response
		// Atomic settlement
		err := db.Transaction(func(tx *gorm.DB) error {
			// 1. Resolve the learner's enrollment for this course; the course
			//    must belong to the requesting teacher
			var course domain.Course
			if err := tx.Where("id = ? AND teacher_id = ?", req.CourseID, teacherID).
				First(&course).Error; err != nil {
				return errNotEnrolled // Course missing or not the teacher's; same outcome for the caller
			}
			var enrollment domain.Enrollment
			if err := tx.Where("student_id = ? AND course_id = ?", req.LearnerID, req.CourseID).
				First(&enrollment).Error; err != nil {
				return errNotEnrolled
			}
			// 2. Resolve the class for the date window
			var class domain.Class
			if err := tx.First(&class, enrollment.ClassID).Error; err != nil {
				return errNotEnrolled // Enrollment points at a vanished class
			}
			// 3. Date-window check by calendar date, not timestamp
			if class.StartDate != "" && todayStr < class.StartDate {
				return errClassNotStarted
			}
			if class.EndDate != "" && todayStr > class.EndDate {
				return errClassEnded
			}
			// 4. Append the ledger entry first. One check-in per (student,
			//    course, local day): the unique index rejects a duplicate
			//    even when a concurrent transaction's snapshot hides it.
			deducted = course.PriceTokens
			entry := domain.Attendance{
				StudentID:      req.LearnerID,                     // Learner
				CourseID:       course.ID,                         // Course
				ClassID:        class.ID,                          // Class
				CourseTitle:    course.Title + " - " + class.Name, // Title snapshot
				TokensDeducted: course.PriceTokens,                // Price snapshot
				CheckinDate:    todayStr,                          // Uniqueness day
				CheckinTime:    now,                               // Settlement moment
			}
			if err := tx.Create(&entry).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return errAlreadyCheckedIn
				}
				return err // Storage failure
			}
			// 5+6. Conditional debit: only succeeds while the balance covers
			//      the price, so the wallet can never go negative. A failed
			//      debit rolls the ledger insert back with it.
			res := tx.Model(&domain.User{}).
				Where("id = ? AND wallet_tokens >= ?", req.LearnerID, course.PriceTokens).
				Update("wallet_tokens", gorm.Expr("wallet_tokens - ?", course.PriceTokens))
			if res.Error != nil {
				return res.Error // Storage failure
			}
			if res.RowsAffected == 0 {
				return errInsufficientTokens
			}
			return nil
		})
		// Map settlement outcome to a response
		switch {
		case errors.Is(err, errNotEnrolled):
			apperr.JSON(c, http.StatusNotFound, apperr.CodeNotEnrolled, "Learner is not enrolled in this course")
			return
		case errors.Is(err, errClassNotStarted):
			apperr.JSON(c, http.StatusConflict, apperr.CodeClassNotStarted, "Class has not started yet")
			return
		case errors.Is(err, errClassEnded):
			apperr.JSON(c, http.StatusConflict, apperr.CodeClassEnded, "Class has already ended")
			return
		case errors.Is(err, errAlreadyCheckedIn):
			apperr.JSON(c, http.StatusConflict, apperr.CodeAlreadyCheckedIn, "Already checked in today")
			return
		case errors.Is(err, errInsufficientTokens):
			apperr.JSON(c, http.StatusBadRequest, apperr.CodeInsufficientTokens, "Learner has insufficient tokens")
			return
		case err != nil:
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"teacher_id": teacherID,     // Requesting teacher
				"student_id": req.LearnerID, // Learner
				"course_id":  req.CourseID,  // Course
				"error":      err.Error(),   // Error message
			}).Error("Check-in failed") // Log check-in failure
			apperr.Internal(c, "Check-in failed")
			return
		}
		// Log successful settlement
		logrus.WithFields(logrus.Fields{
			"teacher_id": teacherID,                       // Requesting teacher
			"student_id": req.LearnerID,                   // Learner
			"course_id":  req.CourseID,                    // Course
			"tokens":     deducted,                        // Amount debited
			"timestamp":  now.Format(time.RFC3339),        // Settlement moment
		}).Info("Attendance settled") // Log settlement
		// Invalidate wallet history and finance caches for both sides
		if v, ok := c.Get("redisClient"); ok {
			if rdb, ok := v.(*redis.Client); ok && rdb != nil {
				ctx := context.Background() // Context for Redis operations
				utils.InvalidatePages(ctx, rdb, "wallet:history:"+strconv.Itoa(int(req.LearnerID)))
				utils.InvalidatePages(ctx, rdb, "teacher:finance:"+strconv.Itoa(int(teacherID)))
				_ = utils.DeleteCache(ctx, rdb, "learner:stats:"+strconv.Itoa(int(req.LearnerID)))
			}
		}
		// Return the amount settled
		c.JSON(http.StatusOK, gin.H{"message": "Check-in recorded", "tokens_deducted": deducted})
	}
}
