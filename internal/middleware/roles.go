package middleware

import (
	"net/http" // HTTP status codes

	"edusmart/internal/apperr" // Error codes
	"edusmart/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// RequireRole checks the user's role from the database on each request
func RequireRole(db *gorm.DB, role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, abort with unauthorized status
			apperr.Abort(c, http.StatusUnauthorized, apperr.CodeUnauthenticated, "Unauthorized")
			return
		}
		var user domain.User // Fetch user from database
		if err := db.First(&user, userID).Error; err != nil {
			// If user not found or any error, abort with forbidden status
			apperr.Abort(c, http.StatusForbidden, apperr.CodeUnauthorized, string(role)+" access required")
			return
		}
		// Check the stored role, not just the token claim
		if user.Role != role {
			apperr.Abort(c, http.StatusForbidden, apperr.CodeUnauthorized, string(role)+" access required")
			return
		}
		c.Next() // Proceed to the next handler
	}
}

// TeacherOnly restricts a route group to teacher accounts
func TeacherOnly(db *gorm.DB) gin.HandlerFunc {
	return RequireRole(db, domain.RoleTeacher)
}

// LearnerOnly restricts a route group to learner accounts
func LearnerOnly(db *gorm.DB) gin.HandlerFunc {
	return RequireRole(db, domain.RoleLearner)
}

// AdminOnly restricts a route group to the seeded admin account
func AdminOnly(db *gorm.DB) gin.HandlerFunc {
	return RequireRole(db, domain.RoleAdmin)
}

// VerifiedOnly gates privileged actions behind an approved KYC submission.
// Failing the gate is distinct from authentication or role failures.
func VerifiedOnly(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			apperr.Abort(c, http.StatusUnauthorized, apperr.CodeUnauthenticated, "Unauthorized")
			return
		}
		var user domain.User // Fetch user from database
		if err := db.First(&user, userID).Error; err != nil {
			apperr.Abort(c, http.StatusUnauthorized, apperr.CodeUnauthenticated, "Unauthorized")
			return
		}
		// Check the KYC verification flag
		if !user.IsVerified {
			apperr.Abort(c, http.StatusForbidden, apperr.CodeUnverified, "Account is not KYC verified")
			return
		}
		c.Next() // Proceed to the next handler
	}
}
