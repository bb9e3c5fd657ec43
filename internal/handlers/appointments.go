package handlers

import (
	"context"
	"strconv"

	"healthcare-app-client/internal/api"
	"healthcare-app-client/internal/appointments"
	"healthcare-app-client/internal/middleware"
	"healthcare-app-client/internal/models"
	"healthcare-app-client/internal/utils"

	"github.com/gin-gonic/gin"
)

// AppointmentController is the appointment status controller as the portal
// drives it.
type AppointmentController interface {
	Load(ctx context.Context) error
	Get(ctx context.Context, id int64) (*models.Appointment, error)
	Appointments() []models.Appointment
	Filtered(category appointments.Category) []models.Appointment
	RequestCancellation(ctx context.Context, id int64, actor models.Role) error
	RequestCompletion(ctx context.Context, id int64) error
	Book(ctx context.Context, req api.BookAppointmentRequest) (string, error)
}

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	Controller AppointmentController
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(controller AppointmentController) *AppointmentHandler {
	return &AppointmentHandler{Controller: controller}
}

// appointmentView adds the display fields the appointment list shows.
type appointmentView struct {
	models.Appointment
	StatusLabel string `json:"statusLabel"`
	DoctorName  string `json:"doctorName,omitempty"`
	PatientName string `json:"patientName,omitempty"`
}

func newAppointmentViews(list []models.Appointment) []appointmentView {
	views := make([]appointmentView, 0, len(list))
	for _, a := range list {
		views = append(views, appointmentView{
			Appointment: a,
			StatusLabel: a.Status.Label(),
			DoctorName:  a.DoctorName(),
			PatientName: a.PatientName(),
		})
	}
	return views
}

// GetAppointments refreshes the list from the backend and returns the
// appointments in ?category= (upcoming by default).
func (h *AppointmentHandler) GetAppointments(c *gin.Context) {
	category, err := appointments.ParseCategory(c.Query("category"))
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	if err := h.Controller.Load(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}

	utils.Success(c, "Appointments fetched successfully", gin.H{
		"category":     category,
		"appointments": newAppointmentViews(h.Controller.Filtered(category)),
	})
}

// GetAppointment fetches one appointment fresh from the backend.
func (h *AppointmentHandler) GetAppointment(c *gin.Context) {
	id, ok := appointmentID(c)
	if !ok {
		return
	}

	appt, err := h.Controller.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Appointment fetched successfully", newAppointmentViews([]models.Appointment{*appt})[0])
}

// CreateAppointment books an appointment for the signed-in patient.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req api.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	message, err := h.Controller.Book(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	if message == "" {
		message = "Appointment booked successfully"
	}
	utils.Created(c, message, nil)
}

// CancelAppointment cancels as the doctor when the session holds the doctor
// role, otherwise as the patient.
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	id, ok := appointmentID(c)
	if !ok {
		return
	}
	subject, ok := middleware.GetSubjectFromContext(c)
	if !ok {
		utils.LoginRequired(c, "Please log in")
		return
	}

	actor := models.RolePatient
	if subject.HasRole(models.RoleDoctor) {
		actor = models.RoleDoctor
	}

	if err := h.Controller.RequestCancellation(c.Request.Context(), id, actor); err != nil {
		respondError(c, err)
		return
	}
	h.respondWithAppointment(c, id, "Appointment cancelled successfully")
}

// CompleteAppointment marks an appointment as completed. Doctors only.
func (h *AppointmentHandler) CompleteAppointment(c *gin.Context) {
	id, ok := appointmentID(c)
	if !ok {
		return
	}

	if err := h.Controller.RequestCompletion(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	h.respondWithAppointment(c, id, "Appointment marked as completed")
}

func (h *AppointmentHandler) respondWithAppointment(c *gin.Context, id int64, message string) {
	for _, view := range newAppointmentViews(h.Controller.Appointments()) {
		if view.ID == id {
			utils.Success(c, message, view)
			return
		}
	}
	utils.Success(c, message, nil)
}

func appointmentID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		utils.BadRequest(c, "Invalid appointment ID")
		return 0, false
	}
	return id, true
}
