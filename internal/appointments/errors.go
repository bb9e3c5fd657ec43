package appointments

import (
	"errors"
	"fmt"

	"healthcare-app-client/internal/models"
)

// ErrBusy is returned while another status change is awaiting its response.
var ErrBusy = errors.New("another appointment update is in progress")

// TransitionError reports a status change the backend rejected or that never
// reached it. Local state is unchanged and the call may be retried.
type TransitionError struct {
	AppointmentID int64
	Target        models.AppointmentStatus
	Err           error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("failed to move appointment %d to %s: %v", e.AppointmentID, e.Target, e.Err)
}

func (e *TransitionError) Unwrap() error { return e.Err }
