package keybot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/keybot/keybot/internal/api"
)

// Requester is the subset of *api.Client the services need. Tests and
// alternative transports can provide their own.
type Requester interface {
	Get(ctx context.Context, path string, out any, opts ...api.RequestOption) error
	Post(ctx context.Context, path string, body, out any, opts ...api.RequestOption) error
	Put(ctx context.Context, path string, body, out any, opts ...api.RequestOption) error
	Delete(ctx context.Context, path string, out any, opts ...api.RequestOption) error
	UploadFile(ctx context.Context, path string, up api.Upload, onProgress api.ProgressFunc, out any, opts ...api.RequestOption) error
}

// Ensure *api.Client implements Requester at compile time.
var _ Requester = (*api.Client)(nil)

var (
	// ErrRejected is returned when the API answers 2xx with success=false.
	ErrRejected = errors.New("request rejected")
	// ErrNotFound is returned when a lookup succeeds but carries no data.
	ErrNotFound = errors.New("not found")
)

// Client groups the KeyBot endpoint services around one Requester.
type Client struct {
	Customers    *CustomerService
	Quotes       *QuoteService
	Appointments *AppointmentService
	Settings     *SettingsService
	Recordings   *RecordingService
	Pricing      *PricingService
	Calls        *CallService
	Dashboard    *DashboardService
}

// New wires every service to r.
func New(r Requester) (*Client, error) {
	if r == nil {
		return nil, fmt.Errorf("requester is nil")
	}
	c := &Client{
		Customers:    &CustomerService{r: r},
		Quotes:       &QuoteService{r: r},
		Appointments: &AppointmentService{r: r, loc: time.Local},
		Settings:     &SettingsService{r: r},
		Recordings:   &RecordingService{r: r},
		Pricing:      &PricingService{r: r},
		Calls:        &CallService{r: r},
	}
	c.Dashboard = &DashboardService{
		customers:    c.Customers,
		quotes:       c.Quotes,
		appointments: c.Appointments,
		calls:        c.Calls,
		now:          time.Now,
	}
	return c, nil
}

// result is the {success, message} envelope most mutations answer with.
// Success is a pointer so that a missing field is not read as a rejection.
type result struct {
	Success *bool  `json:"success,omitempty"`
	Message string `json:"message,omitempty"`
}

func (r result) err(op string) error {
	if r.Success == nil || *r.Success {
		return nil
	}
	if msg := strings.TrimSpace(r.Message); msg != "" {
		return fmt.Errorf("%s: %w: %s", op, ErrRejected, msg)
	}
	return fmt.Errorf("%s: %w", op, ErrRejected)
}

// listResult is the {success, message, data: [...]} envelope.
type listResult[T any] struct {
	result
	Data []T `json:"data"`
}

// mutate sends a request answered by a result envelope and turns
// success=false into an error.
func mutate(op string, send func(*result) error) error {
	var out result
	if err := send(&out); err != nil {
		return err
	}
	return out.err(op)
}
