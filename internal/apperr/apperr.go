package apperr

import (
	"github.com/gin-gonic/gin" // Gin web framework
)

// Code is a stable machine-readable error code returned to the request layer.
// Business-rule failures are expected outcomes, not faults; the request layer
// decides how to present them.
type Code string

// Error codes.
const (
	CodeRoleInvalid        Code = "role_invalid"
	CodeInvalidCredentials Code = "invalid_credentials"
	CodeUnauthenticated    Code = "unauthenticated"
	CodeUnauthorized       Code = "unauthorized"
	CodeUnverified         Code = "unverified"
	CodeNotFound           Code = "not_found"
	CodeAlreadyEnrolled    Code = "already_enrolled"
	CodeClassFull          Code = "class_full"
	CodeClassNotFound      Code = "class_not_found"
	CodeNotEnrolled        Code = "not_enrolled"
	CodeClassNotStarted    Code = "class_not_started"
	CodeClassEnded         Code = "class_ended"
	CodeAlreadyCheckedIn   Code = "already_checked_in"
	CodeInsufficientTokens Code = "insufficient_tokens"
	CodeHasDependents      Code = "has_dependents"
	CodeInvalidInput       Code = "invalid_input"
)

// JSON writes a business failure response with a stable code.
func JSON(c *gin.Context, status int, code Code, msg string) {
	c.JSON(status, gin.H{"error": msg, "code": code}) // Error message plus machine-readable code
}

// Abort writes a failure response and stops the handler chain (for middleware).
func Abort(c *gin.Context, status int, code Code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg, "code": code})
}

// Internal hides storage/infra faults behind a generic message.
func Internal(c *gin.Context, msg string) {
	c.JSON(500, gin.H{"error": msg}) // No internal detail leaks to the caller
}
