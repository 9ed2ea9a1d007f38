// Package response holds the failure envelope shared by handlers and
// middleware.
package response

import "github.com/gin-gonic/gin"

// Failure codes. Responses carry only these, never request data or
// internal error text.
const (
	CodeInvalidInput       = "invalid_input"
	CodeInvalidCredentials = "invalid_credentials"
	CodeRegistrationFailed = "registration_failed"
	CodeTooManyAttempts    = "too_many_attempts"
	CodeInvalidSession     = "invalid_session"
	CodeInternal           = "internal_error"
	CodeUnavailable        = "service_unavailable"
	CodeMethodNotAllowed   = "method_not_allowed"
	CodeNotFound           = "not_found"
)

// Fail aborts the request with {"status":"fail","error":code}.
func Fail(c *gin.Context, status int, code string) {
	c.AbortWithStatusJSON(status, gin.H{"status": "fail", "error": code})
}
