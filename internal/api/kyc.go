package api

import (
	"encoding/json" // KYC data snapshots
	"net/http"      // HTTP status codes
	"path/filepath" // Stored file naming

	"edusmart/internal/apperr" // Error codes
	"edusmart/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin"                // Gin web framework
	"github.com/go-playground/validator/v10"  // Struct validation for the multipart form
	"github.com/google/uuid"                  // Unique stored file names
	"github.com/sirupsen/logrus"              // Logging library
	"gorm.io/gorm"                            // GORM ORM library
)

// KYC claim types
const (
	KycTypeStudentCreator = "student_creator" // A student creating courses
	KycTypeLecturer       = "lecturer"        // A professional lecturer
)

// KycForm is the multipart KYC submission
type KycForm struct {
	KycType      string `form:"kyc_type" validate:"required,oneof=student_creator lecturer"` // Claimed type
	StudentID    string `form:"student_id" validate:"required_if=KycType student_creator"`   // Student card number
	WorkPlace    string `form:"work_place" validate:"required_if=KycType lecturer"`          // Employer
	DegreeNumber string `form:"degree_number"`                                               // Degree registration number
}

var kycValidate = validator.New() // Validator for multipart forms gin binding can't cover

// saveKycFile stores one uploaded document under a unique name and returns
// its public path, or "" when the field is absent.
func saveKycFile(c *gin.Context, uploadDir, field string) string {
	file, err := c.FormFile(field)
	if err != nil {
		return "" // Optional document not supplied
	}
	name := field + "-" + uuid.NewString() + filepath.Ext(file.Filename) // Unique stored name
	if err := c.SaveUploadedFile(file, filepath.Join(uploadDir, name)); err != nil {
		return "" // Treat a failed save as an absent document
	}
	return "/uploads/" + name
}

// SubmitKycHandler accepts a KYC submission: sets the status to pending,
// clears the verified flag and snapshots the claimed data and document paths.
func SubmitKycHandler(db *gorm.DB, uploadDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			apperr.JSON(c, http.StatusUnauthorized, apperr.CodeUnauthenticated, "Unauthorized")
			return
		}
		var form KycForm // Bind the multipart form
		if err := c.ShouldBind(&form); err != nil {
			apperr.JSON(c, http.StatusBadRequest, apperr.CodeInvalidInput, "Invalid request")
			return
		}
		// Validate claim type and its required fields
		if err := kycValidate.Struct(form); err != nil {
			apperr.JSON(c, http.StatusBadRequest, apperr.CodeInvalidInput, err.Error())
			return
		}
		var user domain.User // Fetch user from database
		if err := db.First(&user, userID).Error; err != nil {
			apperr.JSON(c, http.StatusUnauthorized, apperr.CodeUnauthenticated, "Unauthorized")
			return
		}
		// Snapshot the claimed data and stored document paths
		var data map[string]string
		images := map[string]string{}
		if form.KycType == KycTypeStudentCreator {
			data = map[string]string{"type": "student", "student_id": form.StudentID}
			if p := saveKycFile(c, uploadDir, "student_card_image"); p != "" {
				images["card"] = p
			}
			if p := saveKycFile(c, uploadDir, "transcript_image"); p != "" {
				images["transcript"] = p
			}
		} else {
			data = map[string]string{"type": "lecturer", "work_place": form.WorkPlace, "degree_number": form.DegreeNumber}
			if p := saveKycFile(c, uploadDir, "degree_image"); p != "" {
				images["degree"] = p
			}
		}
		dataJSON, _ := json.Marshal(data)     // Data snapshot
		imagesJSON, _ := json.Marshal(images) // Document path snapshot
		// pending clears any previous verification
		if err := db.Model(&user).Updates(map[string]any{
			"kyc_status":  domain.KycPending,  // Awaiting review
			"is_verified": false,              // Cleared until approved
			"kyc_type":    form.KycType,       // Claimed type
			"kyc_data":    string(dataJSON),   // Data snapshot
			"kyc_images":  string(imagesJSON), // Document paths
		}).Error; err != nil {
			apperr.Internal(c, "Failed to submit KYC")
			return
		}
		// Log the submission
		logrus.WithFields(logrus.Fields{
			"user_id":  user.ID,      // Submitting user
			"kyc_type": form.KycType, // Claimed type
		}).Info("KYC submitted") // Log KYC submission
		c.JSON(http.StatusOK, gin.H{"message": "KYC submitted, awaiting review"})
	}
}

// KycDecisionRequest names the user a reviewer is deciding on
type KycDecisionRequest struct {
	UserID uint `json:"user_id" binding:"required"` // User under review
}

// kycDecision transitions a pending submission to the given terminal state.
// Only pending -> approved and pending -> rejected are legal transitions.
func kycDecision(db *gorm.DB, status domain.KycStatus, verified bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req KycDecisionRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.JSON(c, http.StatusBadRequest, apperr.CodeInvalidInput, "Invalid request")
			return
		}
		// Guarded transition: only a pending submission can be decided
		res := db.Model(&domain.User{}).
			Where("id = ? AND kyc_status = ?", req.UserID, domain.KycPending).
			Updates(map[string]any{
				"kyc_status":  status,   // approved or rejected
				"is_verified": verified, // true only on approval
			})
		if res.Error != nil {
			apperr.Internal(c, "Failed to update KYC status")
			return
		}
		// Zero rows: unknown user or not pending
		if res.RowsAffected == 0 {
			apperr.JSON(c, http.StatusNotFound, apperr.CodeNotFound, "No pending KYC submission for this user")
			return
		}
		// Log the decision
		logrus.WithFields(logrus.Fields{
			"user_id":  req.UserID, // Decided user
			"decision": status,     // approved or rejected
		}).Info("KYC decided") // Log KYC decision
		c.JSON(http.StatusOK, gin.H{"message": "KYC " + string(status)})
	}
}

// ApproveKycHandler transitions pending -> approved and sets the verified flag
func ApproveKycHandler(db *gorm.DB) gin.HandlerFunc {
	return kycDecision(db, domain.KycApproved, true)
}

// RejectKycHandler transitions pending -> rejected; the user may re-submit
func RejectKycHandler(db *gorm.DB) gin.HandlerFunc {
	return kycDecision(db, domain.KycRejected, false)
}

// PendingKycHandler lists users awaiting a KYC decision
func PendingKycHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var users []domain.User // Pending submissions
		if err := db.Where("kyc_status = ?", domain.KycPending).Find(&users).Error; err != nil {
			apperr.Internal(c, "Failed to load pending submissions")
			return
		}
		// Strip password hashes from the listing
		out := make([]gin.H, 0, len(users))
		for _, u := range users {
			out = append(out, gin.H{
				"id":         u.ID,
				"custom_id":  u.CustomID,
				"nickname":   u.Nickname,
				"role":       u.Role,
				"kyc_type":   u.KycType,
				"kyc_data":   u.KycData,
				"kyc_images": u.KycImages,
			})
		}
		c.JSON(http.StatusOK, gin.H{"pending": out})
	}
}
