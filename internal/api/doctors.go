package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"healthcare-app-client/internal/models"
)

// ListDoctors returns the public doctor directory.
func (c *Client) ListDoctors(ctx context.Context) ([]models.Doctor, error) {
	var doctors []models.Doctor
	if err := c.do(ctx, http.MethodGet, "/doctors/public/all", authNone, nil, &doctors); err != nil {
		return nil, err
	}
	return doctors, nil
}

// ListDoctorsBySpecialization returns doctors practising spec.
func (c *Client) ListDoctorsBySpecialization(ctx context.Context, spec models.Specialization) ([]models.Doctor, error) {
	var doctors []models.Doctor
	path := "/doctors/public/specialization/" + url.PathEscape(string(spec))
	if err := c.do(ctx, http.MethodGet, path, authNone, nil, &doctors); err != nil {
		return nil, err
	}
	return doctors, nil
}

// GetDoctor returns one doctor's profile.
func (c *Client) GetDoctor(ctx context.Context, id int64) (*models.Doctor, error) {
	var doctor models.Doctor
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/doctors/%d", id), authOptional, nil, &doctor); err != nil {
		return nil, err
	}
	return &doctor, nil
}
