package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"healthcare-app-client/internal/models"
	"healthcare-app-client/internal/utils"
)

// LoginRequest represents the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the backend's answer to a successful login.
type LoginResponse struct {
	Token     string   `json:"token"`
	Type      string   `json:"type"`
	ID        int64    `json:"id"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Email     string   `json:"email"`
	Roles     []string `json:"roles"`
}

// RegisterRequest is the patient sign-up form.
type RegisterRequest struct {
	FirstName       string            `json:"firstName" validate:"required,min=2,max=50"`
	LastName        string            `json:"lastName" validate:"required,min=2,max=50"`
	Email           string            `json:"email" validate:"required,email,max=50"`
	Phone           string            `json:"phone" validate:"required,numeric,len=10"`
	Password        string            `json:"password" validate:"required,min=6,max=40"`
	ConfirmPassword string            `json:"confirmPassword,omitempty" validate:"required,eqfield=Password"`
	Gender          models.Gender     `json:"gender" validate:"required,oneof=MALE FEMALE OTHER"`
	DateOfBirth     string            `json:"dateOfBirth" validate:"required,datetime=2006-01-02"`
	BloodGroup      models.BloodGroup `json:"bloodGroup" validate:"required,oneof=A_POSITIVE A_NEGATIVE B_POSITIVE B_NEGATIVE AB_POSITIVE AB_NEGATIVE O_POSITIVE O_NEGATIVE"`
	Allergies       string            `json:"allergies"`
}

// Validate checks the form the way the sign-up page does, with today as the
// latest acceptable date of birth.
func (r RegisterRequest) Validate(now time.Time) error {
	if err := utils.Validate(r); err != nil {
		return errors.New(utils.FormatValidationError(err))
	}
	dob, err := time.ParseInLocation(models.DateLayout, r.DateOfBirth, now.Location())
	if err != nil {
		return fmt.Errorf("invalid date of birth: %w", err)
	}
	if dob.After(now) {
		return errors.New("date of birth cannot be in the future")
	}
	return nil
}

// Login exchanges credentials for a token. The caller decides whether to
// start a session with it.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", authNone, req, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, errors.New("login response carried no token")
	}
	return &resp, nil
}

// Register creates a patient account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*MessageResponse, error) {
	req.ConfirmPassword = ""
	var resp MessageResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", authNone, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
