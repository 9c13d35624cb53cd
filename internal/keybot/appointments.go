package keybot

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	defaultAppointmentDuration = 60 * time.Minute
	appointmentStatusConfirmed = "confirmed"
)

// AppointmentService covers the /appointments calendar.
type AppointmentService struct {
	r   Requester
	loc *time.Location
}

// List returns every calendar appointment.
func (s *AppointmentService) List(ctx context.Context) ([]Appointment, error) {
	var payload listResult[Appointment]
	if err := s.r.Get(ctx, "/appointments", &payload); err != nil {
		return nil, err
	}
	if err := payload.err("list appointments"); err != nil {
		return nil, err
	}
	return payload.Data, nil
}

// Create books an appointment. Start and end are derived from the input's
// date, time and duration and sent as UTC timestamps.
func (s *AppointmentService) Create(ctx context.Context, in AppointmentInput) error {
	body, err := s.payload(in)
	if err != nil {
		return err
	}
	return mutate("create appointment", func(out *result) error {
		return s.r.Post(ctx, "/appointments", body, out)
	})
}

func (s *AppointmentService) payload(in AppointmentInput) (appointmentPayload, error) {
	if strings.TrimSpace(in.CustomerName) == "" {
		return appointmentPayload{}, fmt.Errorf("customer name is required")
	}
	loc := s.loc
	if loc == nil {
		loc = time.Local
	}
	start, err := time.ParseInLocation(dateLayout+"T15:04", in.Date+"T"+in.Time, loc)
	if err != nil {
		return appointmentPayload{}, fmt.Errorf("parse appointment start: %w", err)
	}
	d := in.Duration
	if d <= 0 {
		d = defaultAppointmentDuration
	}
	return appointmentPayload{
		CustomerName:   in.CustomerName,
		PhoneNumber:    in.PhoneNumber,
		ServiceType:    in.ServiceType,
		TechnicianName: in.TechnicianName,
		Start:          start.UTC().Format(isoMillis),
		End:            start.Add(d).UTC().Format(isoMillis),
		Notes:          in.Notes,
		Status:         appointmentStatusConfirmed,
	}, nil
}

const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// Upcoming returns up to limit non-cancelled appointments starting at or after
// now, earliest first. A limit <= 0 returns all of them.
func Upcoming(appts []Appointment, now time.Time, limit int) []Appointment {
	out := make([]Appointment, 0, len(appts))
	for _, a := range appts {
		if strings.EqualFold(a.Status, "cancelled") {
			continue
		}
		start := a.ParsedStart()
		if start.IsZero() || start.Before(now) {
			continue
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ParsedStart().Before(out[j].ParsedStart())
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
