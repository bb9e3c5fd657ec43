package handlers

import (
	"context"
	"net/http"
	"time"

	"healthcare-app-client/internal/api"
	"healthcare-app-client/internal/middleware"
	"healthcare-app-client/internal/session"
	"healthcare-app-client/internal/utils"

	"github.com/gin-gonic/gin"
)

// AuthBackend is the part of the API client used for sign-in and sign-up.
type AuthBackend interface {
	Login(ctx context.Context, req api.LoginRequest) (*api.LoginResponse, error)
	Register(ctx context.Context, req api.RegisterRequest) (*api.MessageResponse, error)
}

// SessionManager starts and ends the local session.
type SessionManager interface {
	Login(credential string) (*session.Subject, error)
	Logout() error
}

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	Backend AuthBackend
	Session SessionManager
	Now     func() time.Time
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(backend AuthBackend, sess SessionManager) *AuthHandler {
	return &AuthHandler{Backend: backend, Session: sess, Now: time.Now}
}

// sessionView is what the portal knows about the signed-in user.
type sessionView struct {
	Subject   string    `json:"subject"`
	Roles     []string  `json:"roles"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func newSessionView(subject *session.Subject) sessionView {
	roles := make([]string, len(subject.Roles))
	for i, r := range subject.Roles {
		roles[i] = string(r)
	}
	return sessionView{Subject: subject.Subject, Roles: roles, ExpiresAt: subject.Expiry}
}

// Login exchanges credentials with the backend and stores the returned token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req api.LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	resp, err := h.Backend.Login(c.Request.Context(), req)
	if err != nil {
		if api.IsStatus(err, http.StatusUnauthorized) {
			utils.Unauthorized(c, "Invalid email or password")
			return
		}
		respondError(c, err)
		return
	}

	subject, err := h.Session.Login(resp.Token)
	if err != nil {
		utils.BadGateway(c, "Backend issued an unusable token: "+err.Error())
		return
	}

	utils.Success(c, "Login successful", gin.H{
		"session":   newSessionView(subject),
		"id":        resp.ID,
		"firstName": resp.FirstName,
		"lastName":  resp.LastName,
		"email":     resp.Email,
	})
}

// Register creates a patient account. It does not sign the user in.
func (h *AuthHandler) Register(c *gin.Context) {
	var req api.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	if err := req.Validate(h.Now()); err != nil {
		utils.BadRequest(c, "Validation failed: "+err.Error())
		return
	}

	resp, err := h.Backend.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Created(c, resp.Message, nil)
}

// Logout ends the local session. The backend is not contacted.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.Session.Logout(); err != nil {
		utils.InternalServerError(c, "Failed to clear session: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, utils.ResponseData{Status: http.StatusOK, Message: "Logged out", Redirect: "/login"})
}

// Me returns the current session's identity.
func (h *AuthHandler) Me(c *gin.Context) {
	subject, ok := middleware.GetSubjectFromContext(c)
	if !ok {
		utils.LoginRequired(c, "Please log in")
		return
	}
	utils.Success(c, "Session is active", newSessionView(subject))
}
