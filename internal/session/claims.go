package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"healthcare-app-client/internal/models"
	"healthcare-app-client/internal/utils"
)

// Subject is the decoded identity carried by a credential.
type Subject struct {
	Subject string        `json:"subject" validate:"required"`
	Roles   []models.Role `json:"roles" validate:"required,dive,required"`
	Expiry  time.Time     `json:"expiry" validate:"required"`
}

// HasRole reports whether role is in the subject's role set
func (s *Subject) HasRole(role models.Role) bool {
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Decode reads the claims of credential. It does not look at the clock.
func Decode(credential string) (*Subject, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil, &DecodeError{Err: errors.New("empty credential")}
	}

	claims, err := utils.ParseClaims(credential)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	if claims.ExpiresAt == nil {
		return nil, &DecodeError{Err: errors.New("missing exp claim")}
	}
	if claims.Roles == nil {
		return nil, &DecodeError{Err: errors.New("missing roles claim")}
	}

	subject := &Subject{
		Subject: claims.Subject,
		Roles:   roleSet(claims.Roles),
		Expiry:  claims.ExpiresAt.Time,
	}
	if err := utils.Validate(subject); err != nil {
		return nil, &DecodeError{Err: fmt.Errorf("invalid claims: %s", utils.FormatValidationError(err))}
	}
	return subject, nil
}

// Check decodes credential and rejects it unless its expiry is strictly
// after now.
func Check(credential string, now time.Time) (*Subject, error) {
	subject, err := Decode(credential)
	if err != nil {
		return nil, err
	}
	if !subject.Expiry.After(now) {
		return nil, &ExpiryError{Expiry: subject.Expiry, Now: now}
	}
	return subject, nil
}

// roleSet removes duplicates while keeping claim order.
func roleSet(raw []string) []models.Role {
	roles := make([]models.Role, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		roles = append(roles, models.Role(r))
	}
	return roles
}
