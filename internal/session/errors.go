package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"healthcare-app-client/internal/models"
)

// ErrNoCredential is returned when the store holds no credential.
var ErrNoCredential = errors.New("no credential stored")

// DecodeError reports a credential that is not a well-formed token or lacks
// the required claims.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "malformed credential: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ExpiryError reports a well-formed credential whose expiry has passed.
type ExpiryError struct {
	Expiry time.Time
	Now    time.Time
}

func (e *ExpiryError) Error() string {
	return fmt.Sprintf("credential expired at %s (now %s)", e.Expiry.UTC().Format(time.RFC3339), e.Now.UTC().Format(time.RFC3339))
}

// AuthorizationError is returned when an operation is refused for lack of a
// valid session or role, either locally or by the backend answering 401.
type AuthorizationError struct {
	Reason   string
	Required []models.Role
	Err      error
}

func (e *AuthorizationError) Error() string {
	msg := "not authorized: " + e.Reason
	if len(e.Required) > 0 {
		roles := make([]string, len(e.Required))
		for i, r := range e.Required {
			roles[i] = string(r)
		}
		msg += " (requires " + strings.Join(roles, " or ") + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AuthorizationError) Unwrap() error { return e.Err }
