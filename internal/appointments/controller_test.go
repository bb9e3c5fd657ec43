package appointments

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"healthcare-app-client/internal/api"
	"healthcare-app-client/internal/models"
	"healthcare-app-client/internal/session"
	"healthcare-app-client/internal/utils"
)

// fakeAuth grants the listed roles while valid is true.
type fakeAuth struct {
	valid bool
	roles []models.Role
}

func (f *fakeAuth) Authorize(roles ...models.Role) (*session.Subject, error) {
	if !f.valid {
		return nil, &session.AuthorizationError{Reason: "no valid session", Err: session.ErrNoCredential}
	}
	subject := &session.Subject{Subject: "user", Roles: f.roles, Expiry: time.Now().Add(time.Hour)}
	if len(roles) == 0 {
		return subject, nil
	}
	for _, r := range roles {
		if subject.HasRole(r) {
			return subject, nil
		}
	}
	return nil, &session.AuthorizationError{Reason: "missing role", Required: roles}
}

// fakeBackend records calls. Transition calls fail with err when set and
// block on gate when it is non-nil.
type fakeBackend struct {
	mu       sync.Mutex
	list     []models.Appointment
	calls    []string
	err      error
	reported models.AppointmentStatus
	gate     chan struct{}
	doctor   *models.Doctor
	booked   []api.BookAppointmentRequest
}

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeBackend) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeBackend) ListAppointments(ctx context.Context) ([]models.Appointment, error) {
	f.record("list")
	return append([]models.Appointment(nil), f.list...), nil
}

func (f *fakeBackend) GetAppointment(ctx context.Context, id int64) (*models.Appointment, error) {
	f.record("get")
	for _, a := range f.list {
		if a.ID == id {
			a.Notes = "fetched"
			return &a, nil
		}
	}
	return nil, &api.StatusError{Method: "GET", Path: "/appointments", StatusCode: http.StatusNotFound}
}

func (f *fakeBackend) BookAppointment(ctx context.Context, req api.BookAppointmentRequest) (*api.MessageResponse, error) {
	f.record("book")
	f.booked = append(f.booked, req)
	f.list = append(f.list, models.Appointment{ID: 100, Status: models.StatusScheduled, Reason: req.Reason})
	return &api.MessageResponse{Message: "Appointment booked successfully!"}, nil
}

func (f *fakeBackend) transition(name string) (*api.TransitionResponse, error) {
	f.record(name)
	if f.gate != nil {
		<-f.gate
	}
	if f.err != nil {
		return nil, f.err
	}
	return &api.TransitionResponse{Message: "ok", Status: f.reported}, nil
}

func (f *fakeBackend) CancelAppointment(ctx context.Context, id int64) (*api.TransitionResponse, error) {
	return f.transition("cancel")
}

func (f *fakeBackend) DoctorCancelAppointment(ctx context.Context, id int64) (*api.TransitionResponse, error) {
	return f.transition("doctor-cancel")
}

func (f *fakeBackend) CompleteAppointment(ctx context.Context, id int64) (*api.TransitionResponse, error) {
	return f.transition("complete")
}

func (f *fakeBackend) GetDoctor(ctx context.Context, id int64) (*models.Doctor, error) {
	f.record("doctor")
	if f.doctor == nil {
		return nil, errors.New("not found")
	}
	return f.doctor, nil
}

func seededList() []models.Appointment {
	return []models.Appointment{
		appt(1, models.StatusScheduled),
		appt(2, models.StatusScheduled),
		appt(3, models.StatusCompleted),
	}
}

func loadedController(t *testing.T, backend *fakeBackend, auth *fakeAuth) *Controller {
	t.Helper()
	backend.list = seededList()
	c := NewController(backend, auth)
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	backend.calls = nil
	return c
}

func TestController_PatientCancellation(t *testing.T) {
	backend := &fakeBackend{}
	c := loadedController(t, backend, &fakeAuth{valid: true, roles: []models.Role{models.RolePatient}})

	if err := c.RequestCancellation(context.Background(), 2, models.RolePatient); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := c.Appointments()
	if got[1].Status != models.StatusCancelledByPatient {
		t.Errorf("expected CANCELLED_BY_PATIENT, got %s", got[1].Status)
	}
	if got[0].Status != models.StatusScheduled || got[2].Status != models.StatusCompleted {
		t.Errorf("expected other appointments untouched, got %+v", got)
	}
	if !reflect.DeepEqual(backend.calls, []string{"cancel"}) {
		t.Errorf("expected patient cancel endpoint, got %v", backend.calls)
	}
	if c.Busy() {
		t.Error("expected busy flag cleared")
	}
}

func TestController_DoctorCancellationAndCompletion(t *testing.T) {
	backend := &fakeBackend{}
	c := loadedController(t, backend, &fakeAuth{valid: true, roles: []models.Role{models.RoleDoctor}})
	ctx := context.Background()

	if err := c.RequestCancellation(ctx, 1, models.RoleDoctor); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := c.RequestCompletion(ctx, 2); err != nil {
		t.Fatalf("complete: %v", err)
	}

	got := c.Appointments()
	if got[0].Status != models.StatusCancelledByDoctor {
		t.Errorf("expected CANCELLED_BY_DOCTOR, got %s", got[0].Status)
	}
	if got[1].Status != models.StatusCompleted {
		t.Errorf("expected COMPLETED, got %s", got[1].Status)
	}
	if !reflect.DeepEqual(backend.calls, []string{"doctor-cancel", "complete"}) {
		t.Errorf("unexpected calls %v", backend.calls)
	}

	if ids(c.Filtered(CategoryCancelled))[0] != 1 {
		t.Error("expected appointment 1 under cancelled")
	}
}

func TestController_BackendErrorLeavesListUnchanged(t *testing.T) {
	backend := &fakeBackend{err: &api.StatusError{Method: "PUT", Path: "/appointments/1/cancel", StatusCode: 500}}
	c := loadedController(t, backend, &fakeAuth{valid: true, roles: []models.Role{models.RolePatient}})
	before := c.Appointments()

	err := c.RequestCancellation(context.Background(), 1, models.RolePatient)

	var transitionErr *TransitionError
	if !errors.As(err, &transitionErr) {
		t.Fatalf("expected TransitionError, got %v", err)
	}
	if transitionErr.AppointmentID != 1 || transitionErr.Target != models.StatusCancelledByPatient {
		t.Errorf("unexpected error detail %+v", transitionErr)
	}
	if !reflect.DeepEqual(c.Appointments(), before) {
		t.Error("expected local list unchanged after failure")
	}
	if c.Busy() {
		t.Fatal("expected busy flag cleared after failure")
	}

	backend.err = nil
	if err := c.RequestCancellation(context.Background(), 1, models.RolePatient); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if c.Appointments()[0].Status != models.StatusCancelledByPatient {
		t.Error("expected retry to apply the cancellation")
	}
}

func TestController_RoleGatingSkipsNetwork(t *testing.T) {
	tests := []struct {
		name string
		auth *fakeAuth
		run  func(c *Controller) error
	}{
		{"patient cancel as doctor", &fakeAuth{valid: true, roles: []models.Role{models.RoleDoctor}}, func(c *Controller) error {
			return c.RequestCancellation(context.Background(), 1, models.RolePatient)
		}},
		{"doctor cancel as patient", &fakeAuth{valid: true, roles: []models.Role{models.RolePatient}}, func(c *Controller) error {
			return c.RequestCancellation(context.Background(), 1, models.RoleDoctor)
		}},
		{"complete as patient", &fakeAuth{valid: true, roles: []models.Role{models.RolePatient}}, func(c *Controller) error {
			return c.RequestCompletion(context.Background(), 1)
		}},
		{"cancel as admin actor", &fakeAuth{valid: true, roles: []models.Role{models.RoleAdmin}}, func(c *Controller) error {
			return c.RequestCancellation(context.Background(), 1, models.RoleAdmin)
		}},
		{"no session", &fakeAuth{valid: false}, func(c *Controller) error {
			return c.RequestCancellation(context.Background(), 1, models.RolePatient)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{list: seededList()}
			c := NewController(backend, tt.auth)

			err := tt.run(c)
			var authErr *session.AuthorizationError
			if !errors.As(err, &authErr) {
				t.Fatalf("expected AuthorizationError, got %v", err)
			}
			if backend.callCount() != 0 {
				t.Errorf("expected no backend call, got %v", backend.calls)
			}
		})
	}
}

func TestController_BusySuppressesSecondSubmission(t *testing.T) {
	backend := &fakeBackend{}
	c := loadedController(t, backend, &fakeAuth{valid: true, roles: []models.Role{models.RoleDoctor}})
	backend.gate = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		done <- c.RequestCompletion(context.Background(), 1)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for !c.Busy() {
		if time.Now().After(deadline) {
			t.Fatal("first request never became busy")
		}
		time.Sleep(time.Millisecond)
	}

	if err := c.RequestCompletion(context.Background(), 1); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if backend.callCount() != 1 {
		t.Errorf("expected a single backend call, got %d", backend.callCount())
	}

	close(backend.gate)
	if err := <-done; err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	if c.Busy() {
		t.Error("expected busy flag cleared")
	}
}

func TestController_CompletionOfCompletedAppointment(t *testing.T) {
	backend := &fakeBackend{err: &api.StatusError{Method: "PUT", Path: "/appointments/3/complete", StatusCode: 400, Message: "Appointment cannot be completed"}}
	c := loadedController(t, backend, &fakeAuth{valid: true, roles: []models.Role{models.RoleDoctor}})
	before := c.Appointments()

	err := c.RequestCompletion(context.Background(), 3)
	var transitionErr *TransitionError
	if !errors.As(err, &transitionErr) {
		t.Fatalf("expected TransitionError, got %v", err)
	}
	if !reflect.DeepEqual(c.Appointments(), before) {
		t.Error("expected list unchanged")
	}

	// a backend that accepts the no-op still leaves the others alone
	backend.err = nil
	if err := c.RequestCompletion(context.Background(), 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	after := c.Appointments()
	for i := range before {
		if before[i].ID == 3 {
			continue
		}
		if !reflect.DeepEqual(before[i], after[i]) {
			t.Errorf("appointment %d changed: %+v", before[i].ID, after[i])
		}
	}
}

func TestController_ReportedStatusWins(t *testing.T) {
	backend := &fakeBackend{reported: models.StatusCancelledByDoctor}
	c := loadedController(t, backend, &fakeAuth{valid: true, roles: []models.Role{models.RolePatient}})

	if err := c.RequestCancellation(context.Background(), 1, models.RolePatient); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := c.Appointments()[0].Status; got != models.StatusCancelledByDoctor {
		t.Errorf("expected the reported terminal status, got %s", got)
	}
}

func TestController_NonTerminalReportIgnored(t *testing.T) {
	backend := &fakeBackend{reported: models.StatusScheduled}
	c := loadedController(t, backend, &fakeAuth{valid: true, roles: []models.Role{models.RolePatient}})

	if err := c.RequestCancellation(context.Background(), 1, models.RolePatient); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := c.Appointments()[0].Status; got != models.StatusCancelledByPatient {
		t.Errorf("expected the requested cancellation to apply, got %s", got)
	}
}

func TestController_GetRefreshesLocalCopy(t *testing.T) {
	backend := &fakeBackend{}
	c := loadedController(t, backend, &fakeAuth{valid: true, roles: []models.Role{models.RolePatient}})

	appt, err := c.Get(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if appt.ID != 2 || appt.Notes != "fetched" {
		t.Errorf("unexpected appointment %+v", appt)
	}
	if c.Appointments()[1].Notes != "fetched" {
		t.Error("expected the local copy to be refreshed")
	}
	if c.Appointments()[0].Notes != "" {
		t.Error("expected other appointments untouched")
	}

	if _, err := c.Get(context.Background(), 99); !api.IsStatus(err, http.StatusNotFound) {
		t.Errorf("expected wrapped 404, got %v", err)
	}

	noSession := NewController(backend, &fakeAuth{valid: false})
	var authErr *session.AuthorizationError
	if _, err := noSession.Get(context.Background(), 1); !errors.As(err, &authErr) {
		t.Errorf("expected AuthorizationError, got %v", err)
	}
}

func TestController_Book(t *testing.T) {
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC) // Friday
	doctor := &models.Doctor{
		ID:                 4,
		ConsultationFees:   75,
		AvailableDays:      []string{"MONDAY", "FRIDAY"},
		AvailableTimeSlots: []string{"09:00", "10:00"},
	}
	newController := func(auth *fakeAuth) (*Controller, *fakeBackend) {
		backend := &fakeBackend{doctor: doctor}
		return NewController(backend, auth, WithClock(func() time.Time { return now })), backend
	}
	valid := api.BookAppointmentRequest{
		DoctorID:        4,
		AppointmentDate: "2026-10-19",
		AppointmentTime: "10:00",
		Reason:          "Headache",
	}

	t.Run("books and reloads", func(t *testing.T) {
		c, backend := newController(&fakeAuth{valid: true, roles: []models.Role{models.RolePatient}})
		msg, err := c.Book(context.Background(), valid)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if msg != "Appointment booked successfully!" {
			t.Errorf("unexpected message %q", msg)
		}
		if backend.booked[0].ConsultationFees != 75 {
			t.Errorf("expected doctor's fee to be filled in, got %v", backend.booked[0].ConsultationFees)
		}
		if len(c.Filtered(CategoryUpcoming)) != 1 {
			t.Error("expected booked appointment to show as upcoming after reload")
		}
	})

	t.Run("today is allowed", func(t *testing.T) {
		c, _ := newController(&fakeAuth{valid: true, roles: []models.Role{models.RolePatient}})
		req := valid
		req.AppointmentDate = "2026-10-16"
		req.AppointmentTime = "09:00:00"
		if _, err := c.Book(context.Background(), req); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	invalid := []struct {
		name   string
		mutate func(r *api.BookAppointmentRequest)
	}{
		{"past date", func(r *api.BookAppointmentRequest) { r.AppointmentDate = "2026-10-12" }},
		{"unavailable day", func(r *api.BookAppointmentRequest) { r.AppointmentDate = "2026-10-20" }},
		{"unknown slot", func(r *api.BookAppointmentRequest) { r.AppointmentTime = "13:00" }},
		{"missing reason", func(r *api.BookAppointmentRequest) { r.Reason = "" }},
		{"bad date format", func(r *api.BookAppointmentRequest) { r.AppointmentDate = "19/10/2026" }},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			c, backend := newController(&fakeAuth{valid: true, roles: []models.Role{models.RolePatient}})
			req := valid
			tt.mutate(&req)
			_, err := c.Book(context.Background(), req)
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if len(backend.booked) != 0 {
				t.Error("expected nothing booked")
			}
		})
	}

	t.Run("doctors cannot book", func(t *testing.T) {
		c, backend := newController(&fakeAuth{valid: true, roles: []models.Role{models.RoleDoctor}})
		_, err := c.Book(context.Background(), valid)
		var authErr *session.AuthorizationError
		if !errors.As(err, &authErr) {
			t.Fatalf("expected AuthorizationError, got %v", err)
		}
		if backend.callCount() != 0 {
			t.Errorf("expected no backend call, got %v", backend.calls)
		}
	})
}

// The real guard, API client and controller together: a 401 ends the session
// and is reported as an authorization failure, not a transition failure.
func TestController_UnauthorizedEndsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/appointments":
			_, _ = w.Write([]byte(`[{"id":1,"status":"SCHEDULED"},{"id":2,"status":"COMPLETED"}]`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	claims := &utils.Claims{
		Roles: []string{"ROLE_PATIENT"},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "pat@example.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	guard := session.NewGuard(session.NewMemoryStore())
	if _, err := guard.Login(token); err != nil {
		t.Fatalf("login: %v", err)
	}
	loggedOut := false
	guard.OnLogout(func() { loggedOut = true })

	c := NewController(api.NewClient(srv.URL+"/api", guard), guard)
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	before := c.Appointments()

	err = c.RequestCancellation(context.Background(), 1, models.RolePatient)
	var authErr *session.AuthorizationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthorizationError, got %v", err)
	}
	var transitionErr *TransitionError
	if errors.As(err, &transitionErr) {
		t.Error("a 401 must not be reported as a TransitionError")
	}
	if guard.IsValid() {
		t.Error("expected session purged after 401")
	}
	if !loggedOut {
		t.Error("expected logout hook to fire")
	}
	if !reflect.DeepEqual(c.Appointments(), before) {
		t.Error("expected list unchanged")
	}
}
