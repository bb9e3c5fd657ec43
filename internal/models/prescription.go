package models

// Medication is one line of a prescription
type Medication struct {
	ID           int64  `json:"id,omitempty"`
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	Duration     string `json:"duration"`
	Instructions string `json:"instructions,omitempty"`
}

// Prescription is written by the doctor of a completed appointment and paid
// by its patient.
type Prescription struct {
	ID              int64        `json:"id"`
	Appointment     *Appointment `json:"appointment,omitempty"`
	Patient         *Patient     `json:"patient,omitempty"`
	Doctor          *Doctor      `json:"doctor,omitempty"`
	Diagnosis       string       `json:"diagnosis"`
	Medications     []Medication `json:"medications"`
	AdditionalNotes string       `json:"additionalNotes,omitempty"`
	FollowUpDate    string       `json:"followUpDate,omitempty"`
	Paid            bool         `json:"paid"`
	CreatedAt       string       `json:"createdAt,omitempty"`
	UpdatedAt       string       `json:"updatedAt,omitempty"`
}

// AppointmentID returns the id of the appointment the prescription belongs to
func (p Prescription) AppointmentID() int64 {
	if p.Appointment == nil {
		return 0
	}
	return p.Appointment.ID
}
