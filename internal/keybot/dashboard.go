package keybot

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

const upcomingLimit = 5

// Summary is the dashboard overview.
type Summary struct {
	Customers      int            `json:"customers"`
	Quotes         int            `json:"quotes"`
	QuotesByStatus map[string]int `json:"quotes_by_status"`
	Appointments   int            `json:"appointments"`
	Upcoming       []Appointment  `json:"upcoming"`
	RecentCalls    []RecentCall   `json:"recent_calls"`
	FetchedAt      time.Time      `json:"fetched_at"`
}

// DashboardService aggregates the other services into a Summary.
type DashboardService struct {
	customers    *CustomerService
	quotes       *QuoteService
	appointments *AppointmentService
	calls        *CallService
	now          func() time.Time
}

// Summary fetches customers, quotes, appointments and recent calls
// concurrently. The first failure cancels the remaining requests and is
// returned; the API client has already reported it, and the canceled
// requests stay quiet.
func (s *DashboardService) Summary(ctx context.Context) (Summary, error) {
	var (
		customers []Customer
		quotes    []Quote
		appts     []Appointment
		calls     []RecentCall
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		customers, err = s.customers.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		quotes, err = s.quotes.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		appts, err = s.appointments.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		calls, err = s.calls.Recent(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	now := s.now()
	return Summary{
		Customers:      len(customers),
		Quotes:         len(quotes),
		QuotesByStatus: CountByStatus(quotes),
		Appointments:   len(appts),
		Upcoming:       Upcoming(appts, now, upcomingLimit),
		RecentCalls:    calls,
		FetchedAt:      now,
	}, nil
}
