package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"healthcare-app-client/internal/api"
	"healthcare-app-client/internal/appointments"
	"healthcare-app-client/internal/doctors"
	"healthcare-app-client/internal/models"
	"healthcare-app-client/internal/session"
)

const commandTimeout = 30 * time.Second

// withApp builds the app and runs fn with a bounded context.
func withApp(fn func(ctx context.Context, a *app, out io.Writer) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()
		return explain(fn(ctx, a, cmd.OutOrStdout()))
	}
}

// explain turns session failures into a hint to log in again.
func explain(err error) error {
	if err == nil {
		return nil
	}
	var authErr *session.AuthorizationError
	if errors.As(err, &authErr) && authErr.Err != nil {
		return fmt.Errorf("%w\nrun `healthcare-app-client login` to start a new session", err)
	}
	return err
}

func loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session credential",
		RunE: withApp(func(ctx context.Context, a *app, out io.Writer) error {
			if password == "" {
				password = os.Getenv("HEALTHCARE_PASSWORD")
			}
			resp, err := a.client.Login(ctx, api.LoginRequest{Email: email, Password: password})
			if err != nil {
				return err
			}
			subject, err := a.guard.Login(resp.Token)
			if err != nil {
				return fmt.Errorf("backend issued an unusable token: %w", err)
			}
			fmt.Fprintf(out, "Logged in as %s %s (%s), session expires %s\n",
				resp.FirstName, resp.LastName, roleList(subject.Roles), subject.Expiry.Local().Format(time.RFC1123))
			return nil
		}),
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (or HEALTHCARE_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session credential",
		RunE: withApp(func(ctx context.Context, a *app, out io.Writer) error {
			if err := a.guard.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(out, "Logged out")
			return nil
		}),
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: withApp(func(ctx context.Context, a *app, out io.Writer) error {
			subject := a.guard.CurrentSubject()
			if subject == nil {
				return errors.New("not logged in")
			}
			fmt.Fprintf(out, "%s\nroles: %s\nexpires: %s\n",
				subject.Subject, roleList(subject.Roles), subject.Expiry.Local().Format(time.RFC1123))
			return nil
		}),
	}
}

func registerCmd() *cobra.Command {
	var req api.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a patient account",
		RunE: withApp(func(ctx context.Context, a *app, out io.Writer) error {
			if req.ConfirmPassword == "" {
				req.ConfirmPassword = req.Password
			}
			req.Gender = models.Gender(strings.ToUpper(string(req.Gender)))
			req.BloodGroup = models.BloodGroup(strings.ToUpper(string(req.BloodGroup)))
			if err := req.Validate(time.Now()); err != nil {
				return err
			}
			resp, err := a.client.Register(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, resp.Message)
			return nil
		}),
	}
	f := cmd.Flags()
	f.StringVar(&req.FirstName, "first-name", "", "first name")
	f.StringVar(&req.LastName, "last-name", "", "last name")
	f.StringVar(&req.Email, "email", "", "email")
	f.StringVar(&req.Phone, "phone", "", "10 digit phone number")
	f.StringVar(&req.Password, "password", "", "password")
	f.StringVar(&req.ConfirmPassword, "confirm-password", "", "password confirmation (defaults to --password)")
	f.StringVar((*string)(&req.Gender), "gender", "", "MALE, FEMALE or OTHER")
	f.StringVar(&req.DateOfBirth, "date-of-birth", "", "YYYY-MM-DD")
	f.StringVar((*string)(&req.BloodGroup), "blood-group", "", "e.g. O_POSITIVE")
	f.StringVar(&req.Allergies, "allergies", "", "known allergies")
	return cmd
}

func doctorsCmd() *cobra.Command {
	var specialization string
	cmd := &cobra.Command{
		Use:   "doctors",
		Short: "List doctors, optionally by specialization",
		RunE: withApp(func(ctx context.Context, a *app, out io.Writer) error {
			spec, err := doctors.ParseSpecialization(specialization)
			if err != nil {
				return err
			}
			list, err := a.directory.List(ctx, spec)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSPECIALIZATION\tFEE\tDAYS\tSLOTS")
			for _, d := range list {
				fmt.Fprintf(w, "%d\tDr. %s\t%s\t%.2f\t%s\t%s\n",
					d.ID, d.User.FullName(), doctors.FormatSpecialization(d.Specialization),
					d.ConsultationFees, strings.Join(d.AvailableDays, ","), strings.Join(d.AvailableTimeSlots, ","))
			}
			return w.Flush()
		}),
	}
	cmd.Flags().StringVar(&specialization, "specialization", "", "e.g. CARDIOLOGY")
	return cmd
}

func appointmentsCmd() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "appointments",
		Short: "List your appointments in one category",
		RunE: withApp(func(ctx context.Context, a *app, out io.Writer) error {
			cat, err := appointments.ParseCategory(category)
			if err != nil {
				return err
			}
			if err := a.controller.Load(ctx); err != nil {
				return err
			}
			return printAppointments(out, a.controller.Filtered(cat))
		}),
	}
	cmd.Flags().StringVar(&category, "category", "upcoming", "upcoming, completed or cancelled")
	return cmd
}

func bookCmd() *cobra.Command {
	var req api.BookAppointmentRequest
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book an appointment with a doctor",
		RunE: withApp(func(ctx context.Context, a *app, out io.Writer) error {
			message, err := a.controller.Book(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, message)
			return nil
		}),
	}
	f := cmd.Flags()
	f.Int64Var(&req.DoctorID, "doctor", 0, "doctor ID")
	f.StringVar(&req.AppointmentDate, "date", "", "YYYY-MM-DD")
	f.StringVar(&req.AppointmentTime, "time", "", "time slot, e.g. 09:00")
	f.StringVar(&req.Reason, "reason", "", "reason for the visit")
	f.StringVar(&req.Notes, "notes", "", "additional notes")
	_ = cmd.MarkFlagRequired("doctor")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("time")
	return cmd
}

func appointmentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "appointment <id>",
		Short: "Show one appointment as the backend has it now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(func(ctx context.Context, a *app, out io.Writer) error {
				appt, err := a.controller.Get(ctx, id)
				if err != nil {
					return err
				}
				return printAppointments(out, []models.Appointment{*appt})
			})(cmd, args)
		},
	}
}

func cancelCmd() *cobra.Command {
	var as string
	cmd := &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel an appointment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(func(ctx context.Context, a *app, out io.Writer) error {
				actor, err := cancelActor(as, a.guard.HasRole)
				if err != nil {
					return err
				}
				return transitionAndShow(ctx, a, out, id, func() error {
					return a.controller.RequestCancellation(ctx, id, actor)
				})
			})(cmd, args)
		},
	}
	cmd.Flags().StringVar(&as, "as", "", "cancel as patient or doctor (defaults to the session role)")
	return cmd
}

// cancelActor picks who cancels. An explicit --as wins; otherwise doctors
// cancel as doctors and everyone else as the patient.
func cancelActor(as string, hasRole func(models.Role) bool) (models.Role, error) {
	if as == "" {
		if hasRole(models.RoleDoctor) {
			return models.RoleDoctor, nil
		}
		return models.RolePatient, nil
	}
	role, ok := models.ParseRole(as)
	if !ok || (role != models.RolePatient && role != models.RoleDoctor) {
		return "", fmt.Errorf("invalid --as %q: want patient or doctor", as)
	}
	return role, nil
}

func completeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <id>",
		Short: "Mark an appointment as completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(func(ctx context.Context, a *app, out io.Writer) error {
				return transitionAndShow(ctx, a, out, id, func() error {
					return a.controller.RequestCompletion(ctx, id)
				})
			})(cmd, args)
		},
	}
}

// transitionAndShow loads the list so the confirmed status can be printed.
func transitionAndShow(ctx context.Context, a *app, out io.Writer, id int64, transition func() error) error {
	if err := a.controller.Load(ctx); err != nil {
		return err
	}
	if err := transition(); err != nil {
		return err
	}
	for _, appt := range a.controller.Appointments() {
		if appt.ID == id {
			fmt.Fprintf(out, "Appointment %d is now %s\n", id, appt.Status.Label())
			return nil
		}
	}
	fmt.Fprintf(out, "Appointment %d updated\n", id)
	return nil
}

func printAppointments(out io.Writer, list []models.Appointment) error {
	if len(list) == 0 {
		fmt.Fprintln(out, "No appointments")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tTIME\tDOCTOR\tPATIENT\tSTATUS\tREASON")
	for _, appt := range list {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			appt.ID, appt.AppointmentDate, appt.AppointmentTime,
			appt.DoctorName(), appt.PatientName(), appt.Status.Label(), appt.Reason)
	}
	return w.Flush()
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func roleList(roles []models.Role) string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return strings.Join(out, ", ")
}
