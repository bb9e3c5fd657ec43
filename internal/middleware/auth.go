package middleware

import (
	"errors"

	"healthcare-app-client/internal/models"
	"healthcare-app-client/internal/session"
	"healthcare-app-client/internal/utils"

	"github.com/gin-gonic/gin"
)

const subjectKey = "subject"

// Authorizer is the part of the session guard the middleware needs.
type Authorizer interface {
	Authorize(roles ...models.Role) (*session.Subject, error)
}

// SessionRequired rejects requests unless a valid, unexpired credential is
// stored. The decoded subject is placed in the context.
func SessionRequired(auth Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject, err := auth.Authorize()
		if err != nil {
			utils.LoginRequired(c, sessionMessage(err))
			c.Abort()
			return
		}
		c.Set(subjectKey, subject)
		c.Next()
	}
}

// RoleRequired allows the request when the subject holds any of allowedRoles.
// It must run after SessionRequired.
func RoleRequired(allowedRoles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject, ok := GetSubjectFromContext(c)
		if !ok {
			utils.InternalServerError(c, "Session subject not found in context. SessionRequired might be missing.")
			c.Abort()
			return
		}

		for _, role := range allowedRoles {
			if subject.HasRole(role) {
				c.Next()
				return
			}
		}

		utils.Forbidden(c, "You do not have permission to access this resource.")
		c.Abort()
	}
}

// GetSubjectFromContext returns the subject set by SessionRequired
func GetSubjectFromContext(c *gin.Context) (*session.Subject, bool) {
	value, exists := c.Get(subjectKey)
	if !exists {
		return nil, false
	}
	subject, ok := value.(*session.Subject)
	return subject, ok && subject != nil
}

func sessionMessage(err error) string {
	var expiryErr *session.ExpiryError
	var decodeErr *session.DecodeError
	switch {
	case errors.As(err, &expiryErr):
		return "Session expired, please log in again"
	case errors.As(err, &decodeErr):
		return "Stored session is invalid, please log in again"
	}
	return "Please log in"
}
