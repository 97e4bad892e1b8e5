package api

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"edusmart/internal/apperr" // Error codes
	"edusmart/internal/domain" // Importing domain models
	"edusmart/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// RegisterRequest is the account creation payload
type RegisterRequest struct {
	FullName string `json:"full_name" binding:"required"` // Full name must be provided
	Role     string `json:"role" binding:"required"`      // Role must be teacher or learner
	Password string `json:"password" binding:"required"`  // Password must be provided
}

// LoginRequest is the authentication payload
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"` // Login email or custom ID
	Password   string `json:"password" binding:"required"`   // Password must be provided
}

// AuthResponse carries the issued JWT
type AuthResponse struct {
	Token string `json:"token"` // JWT token
	Role  string `json:"role"`  // Account role for the client
}

// isValidPassword checks if the password length is between 8 and 15 characters
func isValidPassword(password string) bool {
	return len(password) >= 8 && len(password) <= 15 // Return true if length is valid
}

// RegisterHandler creates a new teacher or learner account with a generated
// custom ID and login identifier. New wallets start at 10 tokens.
func RegisterHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			apperr.JSON(c, http.StatusBadRequest, apperr.CodeInvalidInput, "Invalid request")
			return
		}
		// Only teacher and learner may self-register
		role, ok := domain.ParseRegisterRole(req.Role)
		if !ok {
			apperr.JSON(c, http.StatusBadRequest, apperr.CodeRoleInvalid, "Role must be teacher or learner")
			return
		}
		// Validate password length
		if !isValidPassword(req.Password) {
			apperr.JSON(c, http.StatusBadRequest, apperr.CodeInvalidInput, "Password must be 8-15 characters")
			return
		}
		// Hash the password before the transaction
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			// If hashing fails, return internal server error
			apperr.Internal(c, "Failed to hash password")
			return
		}
		var user domain.User // Created inside the transaction
		// Custom ID allocation and user insert must be one unit so two
		// registrations of the same role cannot share an ID
		err = db.Transaction(func(tx *gorm.DB) error {
			customID, err := utils.NextCustomID(tx, role) // Allocate the next per-role ID
			if err != nil {
				return err // Return error to rollback
			}
			user = domain.User{
				CustomID:     customID,                                // e.g. HS000001
				Nickname:     req.FullName,                            // Display name
				Username:     utils.LoginEmail(customID, req.FullName), // Generated login email
				Password:     string(hash),                            // Hashed password
				Role:         role,                                    // teacher or learner
				WalletTokens: 10,                                      // Welcome balance
				KycStatus:    domain.KycNone,                          // No KYC submitted yet
			}
			return tx.Create(&user).Error // Insert the user
		})
		// Handle transaction result
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"role":  role,        // Requested role
				"error": err.Error(), // Error message
			}).Error("Registration failed") // Log registration failure
			apperr.Internal(c, "Registration failed")
			return
		}
		// Return the generated identifiers so the user can log in
		c.JSON(http.StatusCreated, gin.H{
			"custom_id":        user.CustomID, // Human-readable ID
			"login_identifier": user.Username, // Generated login email
		})
	}
}

// LoginHandler authenticates a user and returns a JWT token. The identifier
// may be the generated login email or the custom ID.
func LoginHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			apperr.JSON(c, http.StatusBadRequest, apperr.CodeInvalidInput, "Invalid request")
			return
		}
		ident := strings.TrimSpace(req.Identifier) // Normalize the identifier
		var user domain.User                       // Fetch user from database
		if err := db.Where("username = ? OR custom_id = ?", ident, ident).First(&user).Error; err != nil {
			// If user not found, return unauthorized
			apperr.JSON(c, http.StatusUnauthorized, apperr.CodeInvalidCredentials, "Invalid credentials")
			return
		}
		// Compare provided password with stored hash
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			apperr.JSON(c, http.StatusUnauthorized, apperr.CodeInvalidCredentials, "Invalid credentials")
			return
		}
		// Generate JWT token with the role claim
		token, err := utils.GenerateJWT(user.ID, user.Role, jwtSecret)
		if err != nil {
			// If token generation fails, return internal server error
			apperr.Internal(c, "Failed to generate token")
			return
		}
		// Return the token in the response
		c.JSON(http.StatusOK, AuthResponse{Token: token, Role: string(user.Role)})
	}
}

// MeHandler returns the authenticated user's profile including wallet and KYC state
func MeHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			apperr.JSON(c, http.StatusUnauthorized, apperr.CodeUnauthenticated, "Unauthorized")
			return
		}
		var user domain.User // Fetch user from database
		if err := db.First(&user, userID).Error; err != nil {
			apperr.JSON(c, http.StatusNotFound, apperr.CodeNotFound, "User not found")
			return
		}
		// Return the profile without the password hash
		c.JSON(http.StatusOK, gin.H{
			"id":            user.ID,
			"custom_id":     user.CustomID,
			"nickname":      user.Nickname,
			"username":      user.Username,
			"role":          user.Role,
			"wallet_tokens": user.WalletTokens,
			"kyc_status":    user.KycStatus,
			"is_verified":   user.IsVerified,
			"avatar":        user.Avatar,
		})
	}
}
