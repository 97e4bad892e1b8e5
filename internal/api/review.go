package api

import (
	"math"     // Rounding averages
	"net/http" // HTTP status codes

	"edusmart/internal/apperr" // Error codes
	"edusmart/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
	"gorm.io/gorm/clause"      // Upsert support
)

// ReviewRequest is the submit-review payload
type ReviewRequest struct {
	CourseID      uint   `json:"course_id" binding:"required"`                  // Reviewed course
	CourseRating  int    `json:"course_rating" binding:"required,min=1,max=5"`  // Course quality, 1..5
	TeacherRating int    `json:"teacher_rating" binding:"required,min=1,max=5"` // Teacher quality, 1..5
	Comment       string `json:"comment"`                                       // Free-text comment
}

// round1 rounds to one decimal place.
func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

// SubmitReviewHandler upserts the learner's review for a course: a second
// submission overwrites the ratings and comment in place.
func SubmitReviewHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			apperr.JSON(c, http.StatusUnauthorized, apperr.CodeUnauthenticated, "Unauthorized")
			return
		}
		var req ReviewRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.JSON(c, http.StatusBadRequest, apperr.CodeInvalidInput, "Ratings must be between 1 and 5")
			return
		}
		var course domain.Course // The course must exist
		if err := db.First(&course, req.CourseID).Error; err != nil {
			apperr.JSON(c, http.StatusNotFound, apperr.CodeNotFound, "Course not found")
			return
		}
		var student domain.User // Snapshot the learner's nickname
		if err := db.First(&student, userID).Error; err != nil {
			apperr.JSON(c, http.StatusUnauthorized, apperr.CodeUnauthenticated, "Unauthorized")
			return
		}
		review := domain.Review{
			StudentID:     student.ID,        // Reviewing learner
			StudentName:   student.Nickname,  // Nickname snapshot
			CourseID:      course.ID,         // Reviewed course
			CourseRating:  req.CourseRating,  // Course quality
			TeacherRating: req.TeacherRating, // Teacher quality
			Comment:       req.Comment,       // Comment
		}
		// Upsert on the (student, course) unique index
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "course_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"course_rating", "teacher_rating", "comment", "student_name"}),
		}).Create(&review).Error; err != nil {
			apperr.Internal(c, "Failed to save review")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Review saved"})
	}
}

// CourseReviewsHandler lists a course's reviews with its average rating,
// rounded to one decimal; 0 when no reviews exist.
func CourseReviewsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var reviews []domain.Review // Review list
		if err := db.Where("course_id = ?", c.Param("id")).Find(&reviews).Error; err != nil {
			apperr.Internal(c, "Failed to load reviews")
			return
		}
		// Arithmetic mean of course_rating over all reviews
		avg := 0.0
		if len(reviews) > 0 {
			sum := 0
			for _, r := range reviews {
				sum += r.CourseRating
			}
			avg = round1(float64(sum) / float64(len(reviews)))
		}
		c.JSON(http.StatusOK, gin.H{"reviews": reviews, "average_rating": avg})
	}
}

// TeacherRatingHandler computes the mean teacher_rating over all reviews of
// all of a teacher's courses.
func TeacherRatingHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var courseIDs []uint // All course IDs owned by the teacher
		if err := db.Model(&domain.Course{}).
			Where("teacher_id = ?", c.Param("id")).
			Pluck("id", &courseIDs).Error; err != nil {
			apperr.Internal(c, "Failed to load courses")
			return
		}
		// No courses means no reviews
		if len(courseIDs) == 0 {
			c.JSON(http.StatusOK, gin.H{"average_rating": 0.0, "review_count": 0})
			return
		}
		var reviews []domain.Review // Reviews across all the teacher's courses
		if err := db.Where("course_id IN ?", courseIDs).Find(&reviews).Error; err != nil {
			apperr.Internal(c, "Failed to load reviews")
			return
		}
		avg := 0.0
		if len(reviews) > 0 {
			sum := 0
			for _, r := range reviews {
				sum += r.TeacherRating
			}
			avg = round1(float64(sum) / float64(len(reviews)))
		}
		c.JSON(http.StatusOK, gin.H{"average_rating": avg, "review_count": len(reviews)})
	}
}
