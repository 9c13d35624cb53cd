package keybot

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// QuoteService covers /quotes.
type QuoteService struct {
	r Requester
}

// List returns all quotes.
func (s *QuoteService) List(ctx context.Context) ([]Quote, error) {
	var payload listResult[Quote]
	if err := s.r.Get(ctx, "/quotes", &payload); err != nil {
		return nil, err
	}
	if err := payload.err("list quotes"); err != nil {
		return nil, err
	}
	return payload.Data, nil
}

// Create submits a new quote. The returned quote is nil when the server does
// not echo it back.
func (s *QuoteService) Create(ctx context.Context, in QuoteInput) (*Quote, error) {
	if err := in.Validate(time.Now().Year()); err != nil {
		return nil, err
	}
	var payload struct {
		result
		Data  *Quote `json:"data"`
		Quote *Quote `json:"quote"`
	}
	if err := s.r.Post(ctx, "/quotes", in, &payload); err != nil {
		return nil, err
	}
	if err := payload.err("create quote"); err != nil {
		return nil, err
	}
	if payload.Quote != nil {
		return payload.Quote, nil
	}
	return payload.Data, nil
}

// Validate reports the missing or malformed fields of a quote request.
// Vehicle years after currentYear+1 are rejected.
func (in QuoteInput) Validate(currentYear int) error {
	var problems []string
	required := []struct{ name, value string }{
		{"customer_name", in.CustomerName},
		{"phone", in.Phone},
		{"make", in.Make},
		{"model", in.Model},
		{"key_type", in.KeyType},
		{"service_type", in.ServiceType},
		{"address", in.Address},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			problems = append(problems, f.name+" is required")
		}
	}
	switch {
	case in.Year <= 0:
		problems = append(problems, "year must be positive")
	case currentYear > 0 && in.Year > currentYear+1:
		problems = append(problems, fmt.Sprintf("year %d is in the future", in.Year))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid quote: %s", strings.Join(problems, "; "))
	}
	return nil
}

// CountByStatus tallies quotes per lower-cased status.
func CountByStatus(quotes []Quote) map[string]int {
	counts := make(map[string]int)
	for _, q := range quotes {
		status := strings.ToLower(strings.TrimSpace(q.Status))
		if status == "" {
			status = "unknown"
		}
		counts[status]++
	}
	return counts
}
