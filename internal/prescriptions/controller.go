package prescriptions

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"healthcare-app-client/internal/api"
	"healthcare-app-client/internal/appointments"
	"healthcare-app-client/internal/models"
	"healthcare-app-client/internal/session"
	"healthcare-app-client/internal/utils"
)

// Backend is the part of the API client prescriptions need.
type Backend interface {
	ListPrescriptions(ctx context.Context) ([]models.Prescription, error)
	GetPrescription(ctx context.Context, id int64) (*models.Prescription, error)
	CreatePrescription(ctx context.Context, req api.PrescriptionRequest) (*api.MessageResponse, error)
	PayPrescription(ctx context.Context, id int64) (*api.MessageResponse, error)
	PrescriptionPDF(ctx context.Context, id int64) ([]byte, error)
	GetAppointment(ctx context.Context, id int64) (*models.Appointment, error)
}

// Authorizer gates operations on the current session.
type Authorizer interface {
	Authorize(roles ...models.Role) (*session.Subject, error)
}

var readers = []models.Role{models.RolePatient, models.RoleDoctor, models.RoleAdmin}

// Controller reads, writes and settles prescriptions on behalf of the
// signed-in user. Role checks happen before any request is sent.
type Controller struct {
	backend Backend
	auth    Authorizer
	logger  zerolog.Logger
}

// Option configures a Controller
type Option func(*Controller)

// WithLogger sets the controller's logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// NewController creates a Controller that logs nowhere unless WithLogger is given.
func NewController(backend Backend, auth Authorizer, opts ...Option) *Controller {
	c := &Controller{backend: backend, auth: auth, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List returns the prescriptions the backend shows this user.
func (c *Controller) List(ctx context.Context) ([]models.Prescription, error) {
	if _, err := c.auth.Authorize(readers...); err != nil {
		return nil, err
	}
	return c.backend.ListPrescriptions(ctx)
}

// Get returns one prescription
func (c *Controller) Get(ctx context.Context, id int64) (*models.Prescription, error) {
	if _, err := c.auth.Authorize(readers...); err != nil {
		return nil, err
	}
	return c.backend.GetPrescription(ctx, id)
}

// Create writes a prescription for a completed appointment. Doctors only.
func (c *Controller) Create(ctx context.Context, req api.PrescriptionRequest) (string, error) {
	if _, err := c.auth.Authorize(models.RoleDoctor); err != nil {
		return "", err
	}
	if err := utils.Validate(req); err != nil {
		return "", &appointments.ValidationError{Message: utils.FormatValidationError(err)}
	}

	appt, err := c.backend.GetAppointment(ctx, req.AppointmentID)
	if err != nil {
		return "", fmt.Errorf("failed to fetch appointment %d: %w", req.AppointmentID, err)
	}
	if appt.Status != models.StatusCompleted {
		return "", &appointments.ValidationError{
			Message: fmt.Sprintf("appointment %d is %s; prescriptions follow completed appointments", req.AppointmentID, appt.Status.Label()),
		}
	}

	resp, err := c.backend.CreatePrescription(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create prescription: %w", err)
	}
	c.logger.Info().Int64("appointment_id", req.AppointmentID).Int("medications", len(req.Medications)).Msg("prescription created")
	return resp.Message, nil
}

// Pay settles a prescription. Patients and admins only.
func (c *Controller) Pay(ctx context.Context, id int64) (string, error) {
	if _, err := c.auth.Authorize(models.RolePatient, models.RoleAdmin); err != nil {
		return "", err
	}
	resp, err := c.backend.PayPrescription(ctx, id)
	if err != nil {
		return "", fmt.Errorf("failed to pay prescription %d: %w", id, err)
	}
	c.logger.Info().Int64("prescription_id", id).Msg("prescription paid")
	return resp.Message, nil
}

// PDF downloads the rendered prescription
func (c *Controller) PDF(ctx context.Context, id int64) ([]byte, error) {
	if _, err := c.auth.Authorize(readers...); err != nil {
		return nil, err
	}
	return c.backend.PrescriptionPDF(ctx, id)
}
