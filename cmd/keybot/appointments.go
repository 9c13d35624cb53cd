package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/keybot/keybot/internal/keybot"
)

func (c *cli) appointmentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "appointments",
		Aliases: []string{"appts"},
		Short:   "List and book appointments",
	}

	var upcoming bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List appointments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			appts, err := c.app.KeyBot.Appointments.List(cmd.Context())
			if err != nil {
				return err
			}
			if upcoming {
				appts = keybot.Upcoming(appts, time.Now(), 0)
			}
			rows := make([][]string, 0, len(appts))
			for _, a := range appts {
				rows = append(rows, []string{
					a.ID.String(), shortTime(a.Start, a.ParsedStart()), a.CustomerName, a.ServiceType, a.TechnicianName, a.Status,
				})
			}
			return c.emit(appts, []string{"ID", "Start", "Customer", "Service", "Technician", "Status"}, rows)
		},
	}
	list.Flags().BoolVar(&upcoming, "upcoming", false, "only future appointments that are not cancelled")

	var in keybot.AppointmentInput
	create := &cobra.Command{
		Use:   "create",
		Short: "Book an appointment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.KeyBot.Appointments.Create(cmd.Context(), in); err != nil {
				return err
			}
			return c.done("Appointment", "appointment booked for "+in.CustomerName)
		},
	}
	f := create.Flags()
	f.StringVar(&in.CustomerName, "customer", "", "customer name")
	f.StringVar(&in.PhoneNumber, "phone", "", "customer phone number")
	f.StringVar(&in.ServiceType, "service", "", "service type")
	f.StringVar(&in.TechnicianName, "technician", "", "technician name")
	f.StringVar(&in.Date, "date", "", "date (YYYY-MM-DD)")
	f.StringVar(&in.Time, "time", "", "local start time (HH:MM)")
	f.DurationVar(&in.Duration, "duration", 0, "length of the appointment (default 1h)")
	f.StringVar(&in.Notes, "notes", "", "notes for the technician")
	_ = create.MarkFlagRequired("customer")
	_ = create.MarkFlagRequired("date")
	_ = create.MarkFlagRequired("time")

	cmd.AddCommand(list, create)
	return cmd
}
