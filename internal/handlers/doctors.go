package handlers

import (
	"context"
	"strconv"

	"healthcare-app-client/internal/doctors"
	"healthcare-app-client/internal/models"
	"healthcare-app-client/internal/utils"

	"github.com/gin-gonic/gin"
)

// DoctorLister is the doctor directory as the portal uses it.
type DoctorLister interface {
	List(ctx context.Context, spec models.Specialization) ([]models.Doctor, error)
	Get(ctx context.Context, id int64) (*models.Doctor, error)
}

// DoctorHandler serves the public doctor directory.
type DoctorHandler struct {
	Directory DoctorLister
}

// NewDoctorHandler creates a new DoctorHandler.
func NewDoctorHandler(directory DoctorLister) *DoctorHandler {
	return &DoctorHandler{Directory: directory}
}

type doctorView struct {
	models.Doctor
	Name                string `json:"name"`
	SpecializationLabel string `json:"specializationLabel"`
}

func newDoctorView(d models.Doctor) doctorView {
	return doctorView{
		Doctor:              d,
		Name:                "Dr. " + d.User.FullName(),
		SpecializationLabel: doctors.FormatSpecialization(d.Specialization),
	}
}

// GetDoctors lists doctors, optionally filtered by ?specialization=.
func (h *DoctorHandler) GetDoctors(c *gin.Context) {
	spec, err := doctors.ParseSpecialization(c.Query("specialization"))
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	list, err := h.Directory.List(c.Request.Context(), spec)
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]doctorView, 0, len(list))
	for _, d := range list {
		views = append(views, newDoctorView(d))
	}
	utils.Success(c, "Doctors fetched successfully", views)
}

// GetDoctorByID returns a single doctor.
func (h *DoctorHandler) GetDoctorByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		utils.BadRequest(c, "Invalid doctor ID")
		return
	}

	doctor, err := h.Directory.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Doctor fetched successfully", newDoctorView(*doctor))
}

// GetSpecializations lists the specializations a patient can filter by.
func (h *DoctorHandler) GetSpecializations(c *gin.Context) {
	out := make([]gin.H, 0, len(models.Specializations))
	for _, s := range models.Specializations {
		out = append(out, gin.H{"value": s, "label": doctors.FormatSpecialization(s)})
	}
	utils.Success(c, "Specializations fetched successfully", out)
}
