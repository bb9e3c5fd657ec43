package appointments

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"healthcare-app-client/internal/api"
	"healthcare-app-client/internal/doctors"
	"healthcare-app-client/internal/models"
	"healthcare-app-client/internal/session"
	"healthcare-app-client/internal/utils"
)

// Backend is the part of the API client the controller drives.
type Backend interface {
	ListAppointments(ctx context.Context) ([]models.Appointment, error)
	GetAppointment(ctx context.Context, id int64) (*models.Appointment, error)
	BookAppointment(ctx context.Context, req api.BookAppointmentRequest) (*api.MessageResponse, error)
	CancelAppointment(ctx context.Context, id int64) (*api.TransitionResponse, error)
	DoctorCancelAppointment(ctx context.Context, id int64) (*api.TransitionResponse, error)
	CompleteAppointment(ctx context.Context, id int64) (*api.TransitionResponse, error)
	GetDoctor(ctx context.Context, id int64) (*models.Doctor, error)
}

// Authorizer gates operations on the current session.
type Authorizer interface {
	Authorize(roles ...models.Role) (*session.Subject, error)
}

// ValidationError reports a booking form the client refuses to send.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Controller holds the signed-in user's appointment list and requests status
// changes from the backend. The list only changes after the backend confirms.
type Controller struct {
	backend Backend
	auth    Authorizer
	logger  zerolog.Logger
	now     func() time.Time

	mu           sync.Mutex
	appointments []models.Appointment
	busy         bool
}

// Option configures a Controller
type Option func(*Controller)

// WithLogger sets the controller's logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithClock replaces time.Now for booking date checks
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// NewController creates a Controller with an empty list
func NewController(backend Backend, auth Authorizer, opts ...Option) *Controller {
	c := &Controller{
		backend: backend,
		auth:    auth,
		logger:  zerolog.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load replaces the local list with the backend's.
func (c *Controller) Load(ctx context.Context) error {
	if _, err := c.auth.Authorize(); err != nil {
		return err
	}
	list, err := c.backend.ListAppointments(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch appointments: %w", err)
	}
	for _, a := range list {
		if !a.Status.Valid() {
			c.logger.Warn().Int64("appointment_id", a.ID).Str("status", string(a.Status)).Msg("appointment has unknown status")
		}
	}

	c.mu.Lock()
	c.appointments = list
	c.mu.Unlock()
	return nil
}

// Get fetches one appointment from the backend and refreshes its local copy.
func (c *Controller) Get(ctx context.Context, id int64) (*models.Appointment, error) {
	if _, err := c.auth.Authorize(); err != nil {
		return nil, err
	}
	appt, err := c.backend.GetAppointment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch appointment %d: %w", id, err)
	}

	c.mu.Lock()
	for i := range c.appointments {
		if c.appointments[i].ID == id {
			c.appointments[i] = *appt
		}
	}
	c.mu.Unlock()
	return appt, nil
}

// Appointments returns a copy of the local list
func (c *Controller) Appointments() []models.Appointment {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Appointment, len(c.appointments))
	copy(out, c.appointments)
	return out
}

// Filtered returns the local appointments in category
func (c *Controller) Filtered(category Category) []models.Appointment {
	return Classify(c.Appointments(), category)
}

// Busy reports whether a mutating request is awaiting its response
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

func (c *Controller) acquire() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return false
	}
	c.busy = true
	return true
}

func (c *Controller) release() {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
}

type transitionCall func(ctx context.Context, id int64) (*api.TransitionResponse, error)

// RequestCancellation cancels appointment id on behalf of actor, which must be
// the patient or the doctor role.
func (c *Controller) RequestCancellation(ctx context.Context, id int64, actor models.Role) error {
	switch actor {
	case models.RolePatient:
		return c.transition(ctx, id, actor, models.StatusCancelledByPatient, c.backend.CancelAppointment)
	case models.RoleDoctor:
		return c.transition(ctx, id, actor, models.StatusCancelledByDoctor, c.backend.DoctorCancelAppointment)
	}
	return &session.AuthorizationError{
		Reason:   fmt.Sprintf("role %q cannot cancel appointments", actor),
		Required: []models.Role{models.RolePatient, models.RoleDoctor},
	}
}

// RequestCompletion marks appointment id as completed. Doctors only.
func (c *Controller) RequestCompletion(ctx context.Context, id int64) error {
	return c.transition(ctx, id, models.RoleDoctor, models.StatusCompleted, c.backend.CompleteAppointment)
}

func (c *Controller) transition(ctx context.Context, id int64, actor models.Role, target models.AppointmentStatus, call transitionCall) error {
	if _, err := c.auth.Authorize(actor); err != nil {
		return err
	}
	if !c.acquire() {
		return ErrBusy
	}
	defer c.release()

	log := c.logger.With().Int64("appointment_id", id).Str("target", string(target)).Logger()

	resp, err := call(ctx, id)
	if err != nil {
		var authErr *session.AuthorizationError
		if errors.As(err, &authErr) {
			log.Warn().Err(err).Msg("status change refused, session ended")
			return err
		}
		log.Error().Err(err).Msg("status change failed")
		return &TransitionError{AppointmentID: id, Target: target, Err: err}
	}

	// a terminal state reported by the backend wins over the one we asked for
	status := target
	if resp != nil && resp.Status.Terminal() {
		if resp.Status != target {
			log.Warn().Str("reported", string(resp.Status)).Msg("backend reported a different status")
		}
		status = resp.Status
	}

	c.mu.Lock()
	c.appointments = ApplyTransition(c.appointments, id, status)
	c.mu.Unlock()

	log.Info().Str("status", string(status)).Msg("appointment status changed")
	return nil
}

// Book validates req against the doctor's schedule, submits it and reloads
// the list. Patients only.
func (c *Controller) Book(ctx context.Context, req api.BookAppointmentRequest) (string, error) {
	if _, err := c.auth.Authorize(models.RolePatient); err != nil {
		return "", err
	}
	if err := utils.Validate(req); err != nil {
		return "", &ValidationError{Message: utils.FormatValidationError(err)}
	}

	now := c.now()
	date, err := time.ParseInLocation(models.DateLayout, req.AppointmentDate, now.Location())
	if err != nil {
		return "", &ValidationError{Message: "invalid appointment date"}
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if date.Before(today) {
		return "", &ValidationError{Message: "appointment date cannot be in the past"}
	}

	doctor, err := c.backend.GetDoctor(ctx, req.DoctorID)
	if err != nil {
		return "", fmt.Errorf("failed to fetch doctor %d: %w", req.DoctorID, err)
	}
	if !doctors.IsDateAvailable(doctor, date) {
		return "", &ValidationError{Message: fmt.Sprintf("doctor is not available on %s", date.Weekday())}
	}
	if !doctors.HasTimeSlot(doctor, req.AppointmentTime) {
		return "", &ValidationError{Message: fmt.Sprintf("time slot %s is not offered by this doctor", req.AppointmentTime)}
	}
	if req.ConsultationFees == 0 {
		req.ConsultationFees = doctor.ConsultationFees
	}

	if !c.acquire() {
		return "", ErrBusy
	}
	resp, err := c.backend.BookAppointment(ctx, req)
	c.release()
	if err != nil {
		return "", fmt.Errorf("failed to book appointment: %w", err)
	}

	if err := c.Load(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("appointment booked but list refresh failed")
	}
	if resp == nil {
		return "", nil
	}
	return resp.Message, nil
}
