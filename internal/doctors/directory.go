package doctors

import (
	"context"
	"fmt"
	"strings"
	"time"

	"healthcare-app-client/internal/models"
)

// Backend is the part of the API client the directory needs.
type Backend interface {
	ListDoctors(ctx context.Context) ([]models.Doctor, error)
	ListDoctorsBySpecialization(ctx context.Context, spec models.Specialization) ([]models.Doctor, error)
	GetDoctor(ctx context.Context, id int64) (*models.Doctor, error)
}

// Directory lists and looks up doctors.
type Directory struct {
	backend Backend
}

// NewDirectory creates a Directory
func NewDirectory(backend Backend) *Directory {
	return &Directory{backend: backend}
}

// List returns every doctor, or only those practising spec when it is set.
func (d *Directory) List(ctx context.Context, spec models.Specialization) ([]models.Doctor, error) {
	if spec == "" {
		return d.backend.ListDoctors(ctx)
	}
	if !spec.Valid() {
		return nil, fmt.Errorf("unknown specialization %q", spec)
	}
	return d.backend.ListDoctorsBySpecialization(ctx, spec)
}

// Get returns one doctor
func (d *Directory) Get(ctx context.Context, id int64) (*models.Doctor, error) {
	return d.backend.GetDoctor(ctx, id)
}

// ParseSpecialization accepts the enum name in any case, with spaces or
// dashes in place of underscores.
func ParseSpecialization(s string) (models.Specialization, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	normalized := strings.ToUpper(strings.NewReplacer(" ", "_", "-", "_").Replace(s))
	spec := models.Specialization(normalized)
	if !spec.Valid() {
		return "", fmt.Errorf("unknown specialization %q", s)
	}
	return spec, nil
}

// FormatSpecialization turns OBSTETRICS_GYNECOLOGY into "Obstetrics Gynecology".
func FormatSpecialization(spec models.Specialization) string {
	words := strings.Fields(strings.ReplaceAll(strings.ToLower(string(spec)), "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// IsDateAvailable reports whether the doctor works on date's weekday.
func IsDateAvailable(doctor *models.Doctor, date time.Time) bool {
	if doctor == nil {
		return false
	}
	day := strings.ToUpper(date.Weekday().String())
	for _, d := range doctor.AvailableDays {
		if strings.EqualFold(d, day) {
			return true
		}
	}
	return false
}

// HasTimeSlot reports whether slot is one of the doctor's time slots.
// "09:00" and "09:00:00" name the same slot.
func HasTimeSlot(doctor *models.Doctor, slot string) bool {
	if doctor == nil {
		return false
	}
	want := normalizeSlot(slot)
	for _, s := range doctor.AvailableTimeSlots {
		if normalizeSlot(s) == want {
			return true
		}
	}
	return false
}

func normalizeSlot(slot string) string {
	slot = strings.TrimSpace(slot)
	if len(slot) == len("15:04:05") && strings.HasSuffix(slot, ":00") {
		return slot[:5]
	}
	return slot
}
