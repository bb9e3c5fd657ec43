package api

import (
	"context"
	"fmt"
	"net/http"

	"healthcare-app-client/internal/models"
)

// MedicationRequest is one medication line on a new prescription.
type MedicationRequest struct {
	Name         string `json:"name" validate:"required"`
	Dosage       string `json:"dosage" validate:"required"`
	Frequency    string `json:"frequency" validate:"required"`
	Duration     string `json:"duration" validate:"required"`
	Instructions string `json:"instructions,omitempty"`
}

// PrescriptionRequest represents the request body for writing a prescription.
type PrescriptionRequest struct {
	AppointmentID   int64               `json:"appointmentId" validate:"required,gt=0"`
	Diagnosis       string              `json:"diagnosis" validate:"required"`
	Medications     []MedicationRequest `json:"medications" validate:"required,min=1,dive"`
	AdditionalNotes string              `json:"additionalNotes,omitempty"`
	FollowUpDate    string              `json:"followUpDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// ListPrescriptions returns the prescriptions visible to the signed-in user.
func (c *Client) ListPrescriptions(ctx context.Context) ([]models.Prescription, error) {
	var prescriptions []models.Prescription
	if err := c.do(ctx, http.MethodGet, "/prescriptions", authRequired, nil, &prescriptions); err != nil {
		return nil, err
	}
	return prescriptions, nil
}

// GetPrescription returns a single prescription.
func (c *Client) GetPrescription(ctx context.Context, id int64) (*models.Prescription, error) {
	var prescription models.Prescription
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/prescriptions/%d", id), authRequired, nil, &prescription); err != nil {
		return nil, err
	}
	return &prescription, nil
}

// CreatePrescription writes a prescription for a completed appointment.
func (c *Client) CreatePrescription(ctx context.Context, req PrescriptionRequest) (*MessageResponse, error) {
	var resp MessageResponse
	if err := c.do(ctx, http.MethodPost, "/prescriptions", authRequired, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PayPrescription marks a prescription as paid.
func (c *Client) PayPrescription(ctx context.Context, id int64) (*MessageResponse, error) {
	var resp MessageResponse
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/prescriptions/%d/pay", id), authRequired, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PrescriptionPDF downloads the rendered prescription.
func (c *Client) PrescriptionPDF(ctx context.Context, id int64) ([]byte, error) {
	return c.send(ctx, http.MethodGet, fmt.Sprintf("/prescriptions/%d/pdf", id), authRequired, nil, "application/pdf")
}
