package handlers

import (
	"errors"
	"net/http"

	"healthcare-app-client/internal/api"
	"healthcare-app-client/internal/appointments"
	"healthcare-app-client/internal/session"
	"healthcare-app-client/internal/utils"

	"github.com/gin-gonic/gin"
)

// respondError maps a domain error onto the portal's response shape.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	var validationErr *appointments.ValidationError
	var authErr *session.AuthorizationError
	var statusErr *api.StatusError
	switch {
	case errors.As(err, &validationErr):
		utils.BadRequest(c, validationErr.Message)
	case errors.As(err, &authErr):
		// a missing role is the only refusal with no underlying cause
		if authErr.Err == nil {
			utils.Forbidden(c, authErr.Error())
			return
		}
		utils.LoginRequired(c, authErr.Error())
	case errors.Is(err, appointments.ErrBusy):
		utils.Conflict(c, "Another request is still in progress")
	case errors.As(err, &statusErr):
		if statusErr.StatusCode == http.StatusNotFound {
			utils.NotFound(c, statusErr.Message)
			return
		}
		if statusErr.StatusCode < http.StatusInternalServerError {
			utils.Error(c, statusErr.StatusCode, statusErr.Message)
			return
		}
		utils.BadGateway(c, "Backend error: "+statusErr.Message)
	default:
		utils.InternalServerError(c, err.Error())
	}
}
