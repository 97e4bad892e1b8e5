package api

import (
	"net/http" // HTTP status codes
	"time"     // Date window validation

	"edusmart/internal/apperr"   // Error codes
	"edusmart/internal/domain"   // Importing domain models
	"edusmart/internal/schedule" // Schedule parsing

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// ClassRequest is the create/edit payload for a class
type ClassRequest struct {
	CourseID   uint   `json:"course_id"`                      // Owning course (create only)
	Name       string `json:"name" binding:"required"`        // Class name
	Schedule   string `json:"schedule" binding:"required"`    // Recurrence string, e.g. "2,4,6 (08:00-10:00)"
	StartDate  string `json:"start_date" binding:"required"`  // First day, YYYY-MM-DD
	EndDate    string `json:"end_date" binding:"required"`    // Last day, YYYY-MM-DD
	Capacity   int    `json:"capacity" binding:"required,gt=0"` // Maximum enrollments
	MeetingURL string `json:"meeting_url"`                    // Optional meeting link
}

// validateClassRequest checks the schedule grammar and the date window
func validateClassRequest(req *ClassRequest) (apperr.Code, string) {
	// The schedule must parse; unparseable strings would silently drop the
	// class from every calendar
	if _, ok := schedule.Parse(req.Schedule); !ok {
		return apperr.CodeInvalidInput, "Schedule must look like \"2,4,6 (08:00-10:00)\""
	}
	start, err := time.Parse("2006-01-02", req.StartDate) // Validate the start date
	if err != nil {
		return apperr.CodeInvalidInput, "start_date must be YYYY-MM-DD"
	}
	end, err := time.Parse("2006-01-02", req.EndDate) // Validate the end date
	if err != nil {
		return apperr.CodeInvalidInput, "end_date must be YYYY-MM-DD"
	}
	// The window must not be inverted
	if end.Before(start) {
		return apperr.CodeInvalidInput, "end_date precedes start_date"
	}
	return "", ""
}

// CreateClassHandler creates a class under a course owned by the requesting teacher
func CreateClassHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			apperr.JSON(c, http.StatusUnauthorized, apperr.CodeUnauthenticated, "Unauthorized")
			return
		}
		var req ClassRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.JSON(c, http.StatusBadRequest, apperr.CodeInvalidInput, "Invalid request")
			return
		}
		// Validate schedule and date window
		if code, msg := validateClassRequest(&req); code != "" {
			apperr.JSON(c, http.StatusBadRequest, code, msg)
			return
		}
		var course domain.Course // The course must belong to the requesting teacher
		if err := db.Where("id = ? AND teacher_id = ?", req.CourseID, userID).First(&course).Error; err != nil {
			apperr.JSON(c, http.StatusNotFound, apperr.CodeNotFound, "Course not found")
			return
		}
		class := domain.Class{
			Name:       req.Name,       // Class name
			Schedule:   req.Schedule,   // Recurrence string
			StartDate:  req.StartDate,  // Window start
			EndDate:    req.EndDate,    // Window end
			Capacity:   req.Capacity,   // Seat limit
			CourseID:   course.ID,      // Owning course
			MeetingURL: req.MeetingURL, // Meeting link
		}
		// Insert the class; Enrolled starts at zero
		if err := db.Create(&class).Error; err != nil {
			apperr.Internal(c, "Failed to create class")
			return
		}
		// Return the new class ID
		c.JSON(http.StatusCreated, gin.H{"class_id": class.ID})
	}
}

// EditClassHandler updates a class's own scalar fields. The Enrolled counter
// is owned by the enrollment transaction and is never written here.
func EditClassHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			apperr.JSON(c, http.StatusUnauthorized, apperr.CodeUnauthenticated, "Unauthorized")
			return
		}
		var req ClassRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.JSON(c, http.StatusBadRequest, apperr.CodeInvalidInput, "Invalid request")
			return
		}
		// Validate schedule and date window
		if code, msg := validateClassRequest(&req); code != "" {
			apperr.JSON(c, http.StatusBadRequest, code, msg)
			return
		}
		var class domain.Class // Resolve the class
		if err := db.First(&class, c.Param("id")).Error; err != nil {
			apperr.JSON(c, http.StatusNotFound, apperr.CodeClassNotFound, "Class not found")
			return
		}
		// Ownership check through the course
		var course domain.Course
		if err := db.Where("id = ? AND teacher_id = ?", class.CourseID, userID).First(&course).Error; err != nil {
			apperr.JSON(c, http.StatusForbidden, apperr.CodeUnauthorized, "Not your class")
			return
		}
		// Update scalar fields only; Enrolled stays untouched
		if err := db.Model(&class).Updates(map[string]any{
			"name":        req.Name,       // Class name
			"schedule":    req.Schedule,   // Recurrence string
			"start_date":  req.StartDate,  // Window start
			"end_date":    req.EndDate,    // Window end
			"capacity":    req.Capacity,   // Seat limit
			"meeting_url": req.MeetingURL, // Meeting link
		}).Error; err != nil {
			apperr.Internal(c, "Failed to update class")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Class updated"})
	}
}

// DeleteClassHandler removes a class, but only when no enrollments reference it
func DeleteClassHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			apperr.JSON(c, http.StatusUnauthorized, apperr.CodeUnauthenticated, "Unauthorized")
			return
		}
		var class domain.Class // Resolve the class
		if err := db.First(&class, c.Param("id")).Error; err != nil {
			apperr.JSON(c, http.StatusNotFound, apperr.CodeClassNotFound, "Class not found")
			return
		}
		// Ownership check through the course
		var course domain.Course
		if err := db.Where("id = ? AND teacher_id = ?", class.CourseID, userID).First(&course).Error; err != nil {
			apperr.JSON(c, http.StatusForbidden, apperr.CodeUnauthorized, "Not your class")
			return
		}
		var count int64 // Count dependent enrollments
		if err := db.Model(&domain.Enrollment{}).Where("class_id = ?", class.ID).Count(&count).Error; err != nil {
			apperr.Internal(c, "Failed to delete class")
			return
		}
		// Refuse while learners are still enrolled
		if count > 0 {
			apperr.JSON(c, http.StatusConflict, apperr.CodeHasDependents, "Class still has enrolled learners")
			return
		}
		// Remove the class
		if err := db.Delete(&class).Error; err != nil {
			apperr.Internal(c, "Failed to delete class")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Class deleted"})
	}
}
