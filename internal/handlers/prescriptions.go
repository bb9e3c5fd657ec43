package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"healthcare-app-client/internal/api"
	"healthcare-app-client/internal/models"
	"healthcare-app-client/internal/utils"

	"github.com/gin-gonic/gin"
)

// PrescriptionController is what the portal needs from the prescription
// controller.
type PrescriptionController interface {
	List(ctx context.Context) ([]models.Prescription, error)
	Get(ctx context.Context, id int64) (*models.Prescription, error)
	Create(ctx context.Context, req api.PrescriptionRequest) (string, error)
	Pay(ctx context.Context, id int64) (string, error)
	PDF(ctx context.Context, id int64) ([]byte, error)
}

// PrescriptionHandler handles prescription related requests.
type PrescriptionHandler struct {
	Controller PrescriptionController
}

// NewPrescriptionHandler creates a new PrescriptionHandler.
func NewPrescriptionHandler(controller PrescriptionController) *PrescriptionHandler {
	return &PrescriptionHandler{Controller: controller}
}

// GetPrescriptions lists the signed-in user's prescriptions.
func (h *PrescriptionHandler) GetPrescriptions(c *gin.Context) {
	list, err := h.Controller.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Prescriptions fetched successfully", list)
}

// GetPrescription returns a single prescription.
func (h *PrescriptionHandler) GetPrescription(c *gin.Context) {
	id, ok := prescriptionID(c)
	if !ok {
		return
	}
	p, err := h.Controller.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Prescription fetched successfully", p)
}

// CreatePrescription writes a prescription. Doctors only.
func (h *PrescriptionHandler) CreatePrescription(c *gin.Context) {
	var req api.PrescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	message, err := h.Controller.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	if message == "" {
		message = "Prescription created successfully"
	}
	utils.Created(c, message, nil)
}

// PayPrescription marks a prescription as paid.
func (h *PrescriptionHandler) PayPrescription(c *gin.Context) {
	id, ok := prescriptionID(c)
	if !ok {
		return
	}
	message, err := h.Controller.Pay(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if message == "" {
		message = "Prescription paid"
	}
	utils.Success(c, message, nil)
}

// DownloadPrescription streams the PDF as an attachment.
func (h *PrescriptionHandler) DownloadPrescription(c *gin.Context) {
	id, ok := prescriptionID(c)
	if !ok {
		return
	}
	pdf, err := h.Controller.PDF(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="prescription-%d.pdf"`, id))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func prescriptionID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		utils.BadRequest(c, "Invalid prescription ID")
		return 0, false
	}
	return id, true
}
