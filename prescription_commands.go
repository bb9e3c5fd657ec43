package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"healthcare-app-client/internal/api"
	"healthcare-app-client/internal/models"
)

func prescriptionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "prescriptions",
		Aliases: []string{"rx"},
		Short:   "List, write and pay prescriptions",
		RunE: withApp(func(ctx context.Context, a *app, out io.Writer) error {
			list, err := a.rx.List(ctx)
			if err != nil {
				return err
			}
			return printPrescriptions(out, list)
		}),
	}
	cmd.AddCommand(prescriptionShowCmd(), prescriptionCreateCmd(), prescriptionPayCmd(), prescriptionPDFCmd())
	return cmd
}

func prescriptionShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one prescription with its medications",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(func(ctx context.Context, a *app, out io.Writer) error {
				p, err := a.rx.Get(ctx, id)
				if err != nil {
					return err
				}
				return printPrescription(out, p)
			})(cmd, args)
		},
	}
}

func prescriptionCreateCmd() *cobra.Command {
	var req api.PrescriptionRequest
	var meds []string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Write a prescription for a completed appointment",
		RunE: withApp(func(ctx context.Context, a *app, out io.Writer) error {
			req.Medications = req.Medications[:0]
			for _, m := range meds {
				med, err := parseMedication(m)
				if err != nil {
					return err
				}
				req.Medications = append(req.Medications, med)
			}
			message, err := a.rx.Create(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, message)
			return nil
		}),
	}
	f := cmd.Flags()
	f.Int64Var(&req.AppointmentID, "appointment", 0, "completed appointment ID")
	f.StringVar(&req.Diagnosis, "diagnosis", "", "diagnosis")
	f.StringArrayVar(&meds, "medication", nil, `"name;dosage;frequency;duration[;instructions]", repeatable`)
	f.StringVar(&req.AdditionalNotes, "notes", "", "additional notes")
	f.StringVar(&req.FollowUpDate, "follow-up", "", "follow-up date, YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("appointment")
	_ = cmd.MarkFlagRequired("diagnosis")
	_ = cmd.MarkFlagRequired("medication")
	return cmd
}

func prescriptionPayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pay <id>",
		Short: "Mark a prescription as paid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(func(ctx context.Context, a *app, out io.Writer) error {
				message, err := a.rx.Pay(ctx, id)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, message)
				return nil
			})(cmd, args)
		},
	}
}

func prescriptionPDFCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "pdf <id>",
		Short: "Download a prescription as PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(func(ctx context.Context, a *app, out io.Writer) error {
				pdf, err := a.rx.PDF(ctx, id)
				if err != nil {
					return err
				}
				target := path
				if target == "" {
					target = fmt.Sprintf("prescription-%d.pdf", id)
				}
				if err := os.WriteFile(target, pdf, 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", target, err)
				}
				fmt.Fprintf(out, "Saved %s (%d bytes)\n", target, len(pdf))
				return nil
			})(cmd, args)
		},
	}
	cmd.Flags().StringVarP(&path, "out", "o", "", "output file (default prescription-<id>.pdf)")
	return cmd
}

// parseMedication reads "name;dosage;frequency;duration[;instructions]".
func parseMedication(s string) (api.MedicationRequest, error) {
	parts := strings.Split(s, ";")
	if len(parts) < 4 || len(parts) > 5 {
		return api.MedicationRequest{}, fmt.Errorf("invalid --medication %q: want name;dosage;frequency;duration[;instructions]", s)
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	med := api.MedicationRequest{Name: parts[0], Dosage: parts[1], Frequency: parts[2], Duration: parts[3]}
	if len(parts) == 5 {
		med.Instructions = parts[4]
	}
	return med, nil
}

func printPrescriptions(out io.Writer, list []models.Prescription) error {
	if len(list) == 0 {
		fmt.Fprintln(out, "No prescriptions")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tAPPOINTMENT\tDIAGNOSIS\tMEDICATIONS\tFOLLOW-UP\tPAID")
	for _, p := range list {
		fmt.Fprintf(w, "%d\t%d\t%s\t%d\t%s\t%s\n",
			p.ID, p.AppointmentID(), p.Diagnosis, len(p.Medications), p.FollowUpDate, yesNo(p.Paid))
	}
	return w.Flush()
}

func printPrescription(out io.Writer, p *models.Prescription) error {
	fmt.Fprintf(out, "Prescription %d for appointment %d\n", p.ID, p.AppointmentID())
	fmt.Fprintf(out, "Diagnosis: %s\n", p.Diagnosis)
	if p.FollowUpDate != "" {
		fmt.Fprintf(out, "Follow-up: %s\n", p.FollowUpDate)
	}
	if p.AdditionalNotes != "" {
		fmt.Fprintf(out, "Notes: %s\n", p.AdditionalNotes)
	}
	fmt.Fprintf(out, "Paid: %s\n\n", yesNo(p.Paid))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MEDICATION\tDOSAGE\tFREQUENCY\tDURATION\tINSTRUCTIONS")
	for _, m := range p.Medications {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", m.Name, m.Dosage, m.Frequency, m.Duration, m.Instructions)
	}
	return w.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
