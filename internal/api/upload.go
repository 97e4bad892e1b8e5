package api

import (
	"net/http"      // HTTP status codes
	"path/filepath" // Stored file naming
	"time"          // Recording display names

	"edusmart/internal/apperr" // Error codes
	"edusmart/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/google/uuid"     // Unique stored file names
	"gorm.io/gorm"               // GORM ORM library
)

// UploadAvatarHandler stores a new avatar image and persists its path
func UploadAvatarHandler(db *gorm.DB, uploadDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			apperr.JSON(c, http.StatusUnauthorized, apperr.CodeUnauthenticated, "Unauthorized")
			return
		}
		file, err := c.FormFile("avatar") // The uploaded image
		if err != nil {
			apperr.JSON(c, http.StatusBadRequest, apperr.CodeInvalidInput, "No avatar file")
			return
		}
		name := "avatar-" + uuid.NewString() + filepath.Ext(file.Filename) // Unique stored name
		if err := c.SaveUploadedFile(file, filepath.Join(uploadDir, name)); err != nil {
			apperr.Internal(c, "Failed to store avatar")
			return
		}
		path := "/uploads/" + name // Public path reference
		// Persist only the path; the file itself is an opaque side effect
		if err := db.Model(&domain.User{}).Where("id = ?", userID).Update("avatar", path).Error; err != nil {
			apperr.Internal(c, "Failed to save avatar")
			return
		}
		c.JSON(http.StatusOK, gin.H{"new_avatar": path})
	}
}

// SaveRecordingHandler stores a lesson recording under one of the teacher's courses
func SaveRecordingHandler(db *gorm.DB, recordingDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			apperr.JSON(c, http.StatusUnauthorized, apperr.CodeUnauthenticated, "Unauthorized")
			return
		}
		file, err := c.FormFile("video_file") // The uploaded recording
		if err != nil {
			apperr.JSON(c, http.StatusBadRequest, apperr.CodeInvalidInput, "No video file")
			return
		}
		var course domain.Course // Attach the recording to the teacher's first course
		if err := db.Where("teacher_id = ?", userID).Order("created_at").First(&course).Error; err != nil {
			apperr.JSON(c, http.StatusNotFound, apperr.CodeNotFound, "No course to attach the recording to")
			return
		}
		name := "video-" + uuid.NewString() + filepath.Ext(file.Filename) // Unique stored name
		if err := c.SaveUploadedFile(file, filepath.Join(recordingDir, name)); err != nil {
			apperr.Internal(c, "Failed to store recording")
			return
		}
		className := c.PostForm("class_name") // Optional class label
		if className == "" {
			className = "Online Class"
		}
		rec := domain.Recording{
			CourseID:  course.ID,               // Owning course
			ClassName: className,               // Class label
			VideoPath: "/recordings/" + name,   // Public path reference
			FileName:  "Rec " + time.Now().Format("02/01/2006 15:04"), // Display name
		}
		// Insert the recording row; downloads stay disabled until toggled
		if err := db.Create(&rec).Error; err != nil {
			apperr.Internal(c, "Failed to save recording")
			return
		}
		c.JSON(http.StatusOK, gin.H{"recording_id": rec.ID})
	}
}

// ToggleDownloadHandler flips whether learners may download a recording
func ToggleDownloadHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			apperr.JSON(c, http.StatusUnauthorized, apperr.CodeUnauthenticated, "Unauthorized")
			return
		}
		var rec domain.Recording // Resolve the recording
		if err := db.First(&rec, c.Param("id")).Error; err != nil {
			apperr.JSON(c, http.StatusNotFound, apperr.CodeNotFound, "Recording not found")
			return
		}
		// Ownership check through the course
		var course domain.Course
		if err := db.Where("id = ? AND teacher_id = ?", rec.CourseID, userID).First(&course).Error; err != nil {
			apperr.JSON(c, http.StatusForbidden, apperr.CodeUnauthorized, "Not your recording")
			return
		}
		// Flip the flag
		if err := db.Model(&rec).Update("allow_download", !rec.AllowDownload).Error; err != nil {
			apperr.Internal(c, "Failed to toggle download")
			return
		}
		c.JSON(http.StatusOK, gin.H{"new_state": !rec.AllowDownload})
	}
}
