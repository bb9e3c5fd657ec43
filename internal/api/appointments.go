package api

import (
	"context"
	"fmt"
	"net/http"

	"healthcare-app-client/internal/models"
)

// BookAppointmentRequest represents the request body for booking an appointment.
type BookAppointmentRequest struct {
	DoctorID         int64   `json:"doctorId" validate:"required,gt=0"`
	AppointmentDate  string  `json:"appointmentDate" validate:"required,datetime=2006-01-02"`
	AppointmentTime  string  `json:"appointmentTime" validate:"required"`
	ConsultationFees float64 `json:"consultationFees" validate:"gte=0"`
	Reason           string  `json:"reason" validate:"required"`
	Notes            string  `json:"notes"`
}

// TransitionResponse acknowledges a status change. Status is set when the
// backend reports the resulting state.
type TransitionResponse struct {
	Message string                   `json:"message"`
	Status  models.AppointmentStatus `json:"status,omitempty"`
}

// ListAppointments returns the appointments visible to the signed-in user.
func (c *Client) ListAppointments(ctx context.Context) ([]models.Appointment, error) {
	var appointments []models.Appointment
	if err := c.do(ctx, http.MethodGet, "/appointments", authRequired, nil, &appointments); err != nil {
		return nil, err
	}
	return appointments, nil
}

// GetAppointment returns a single appointment.
func (c *Client) GetAppointment(ctx context.Context, id int64) (*models.Appointment, error) {
	var appointment models.Appointment
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/appointments/%d", id), authRequired, nil, &appointment); err != nil {
		return nil, err
	}
	return &appointment, nil
}

// BookAppointment creates a SCHEDULED appointment for the signed-in patient.
func (c *Client) BookAppointment(ctx context.Context, req BookAppointmentRequest) (*MessageResponse, error) {
	var resp MessageResponse
	if err := c.do(ctx, http.MethodPost, "/appointments", authRequired, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CancelAppointment is the patient-initiated cancellation.
func (c *Client) CancelAppointment(ctx context.Context, id int64) (*TransitionResponse, error) {
	return c.transition(ctx, id, "cancel")
}

// DoctorCancelAppointment is the doctor-initiated cancellation.
func (c *Client) DoctorCancelAppointment(ctx context.Context, id int64) (*TransitionResponse, error) {
	return c.transition(ctx, id, "doctor-cancel")
}

// CompleteAppointment marks an appointment as held.
func (c *Client) CompleteAppointment(ctx context.Context, id int64) (*TransitionResponse, error) {
	return c.transition(ctx, id, "complete")
}

func (c *Client) transition(ctx context.Context, id int64, action string) (*TransitionResponse, error) {
	var resp TransitionResponse
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/appointments/%d/%s", id, action), authRequired, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
