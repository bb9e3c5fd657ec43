package appointments

import (
	"fmt"
	"strings"

	"healthcare-app-client/internal/models"
)

// Category is a display bucket derived from the status.
type Category string

const (
	CategoryUpcoming  Category = "UPCOMING"
	CategoryCompleted Category = "COMPLETED"
	CategoryCancelled Category = "CANCELLED"
)

// Categories lists the buckets in tab order
var Categories = []Category{CategoryUpcoming, CategoryCompleted, CategoryCancelled}

// ParseCategory accepts any letter case; empty means upcoming.
func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToUpper(strings.TrimSpace(s))) {
	case "", CategoryUpcoming:
		return CategoryUpcoming, nil
	case CategoryCompleted:
		return CategoryCompleted, nil
	case CategoryCancelled:
		return CategoryCancelled, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// CategoryOf maps a status to its bucket. Unknown statuses belong nowhere.
func CategoryOf(status models.AppointmentStatus) (Category, bool) {
	switch status {
	case models.StatusScheduled:
		return CategoryUpcoming, true
	case models.StatusCompleted:
		return CategoryCompleted, true
	case models.StatusCancelledByPatient, models.StatusCancelledByDoctor:
		return CategoryCancelled, true
	}
	return "", false
}

// Classify returns the appointments in category, in their original order.
func Classify(list []models.Appointment, category Category) []models.Appointment {
	out := make([]models.Appointment, 0, len(list))
	for _, a := range list {
		if c, ok := CategoryOf(a.Status); ok && c == category {
			out = append(out, a)
		}
	}
	return out
}

// ApplyTransition returns a copy of list with appointment id moved to status.
// Every other element is left as it was; an unknown id yields an unchanged copy.
func ApplyTransition(list []models.Appointment, id int64, status models.AppointmentStatus) []models.Appointment {
	out := make([]models.Appointment, len(list))
	copy(out, list)
	for i := range out {
		if out[i].ID == id {
			out[i].Status = status
		}
	}
	return out
}
