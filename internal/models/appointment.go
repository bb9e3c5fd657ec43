package models

import (
	"fmt"
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusScheduled          AppointmentStatus = "SCHEDULED"
	StatusCompleted          AppointmentStatus = "COMPLETED"
	StatusCancelledByPatient AppointmentStatus = "CANCELLED_BY_PATIENT"
	StatusCancelledByDoctor  AppointmentStatus = "CANCELLED_BY_DOCTOR"
)

// Valid reports whether s is one of the four known statuses
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelledByPatient, StatusCancelledByDoctor:
		return true
	}
	return false
}

// Terminal reports whether no further transition may leave s
func (s AppointmentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelledByPatient || s == StatusCancelledByDoctor
}

// Label is the human readable form shown next to an appointment
func (s AppointmentStatus) Label() string {
	switch s {
	case StatusScheduled:
		return "Scheduled"
	case StatusCompleted:
		return "Completed"
	case StatusCancelledByPatient:
		return "Cancelled by Patient"
	case StatusCancelledByDoctor:
		return "Cancelled by Doctor"
	}
	return string(s)
}

// Layouts used by the backend for appointment dates and times
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// Appointment represents a booking as returned by the backend.
// Dates and times stay in the backend's zone-less wire form.
type Appointment struct {
	ID               int64             `json:"id"`
	Patient          *Patient          `json:"patient,omitempty"`
	Doctor           *Doctor           `json:"doctor,omitempty"`
	AppointmentDate  string            `json:"appointmentDate"`
	AppointmentTime  string            `json:"appointmentTime"`
	ConsultationFees float64           `json:"consultationFees"`
	Status           AppointmentStatus `json:"status"`
	Reason           string            `json:"reason"`
	Notes            string            `json:"notes,omitempty"`
	CreatedAt        string            `json:"createdAt,omitempty"`
	UpdatedAt        string            `json:"updatedAt,omitempty"`
}

// ScheduledAt combines date and time slot in loc
func (a Appointment) ScheduledAt(loc *time.Location) (time.Time, error) {
	clock := a.AppointmentTime
	if len(clock) == len("15:04") {
		clock += ":00"
	}
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, a.AppointmentDate+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid appointment schedule %q %q: %w", a.AppointmentDate, a.AppointmentTime, err)
	}
	return t, nil
}

// DoctorName returns the display name of the attending doctor
func (a Appointment) DoctorName() string {
	if a.Doctor == nil {
		return ""
	}
	return "Dr. " + a.Doctor.User.FullName()
}

// PatientName returns the display name of the patient
func (a Appointment) PatientName() string {
	if a.Patient == nil {
		return ""
	}
	return a.Patient.User.FullName()
}
