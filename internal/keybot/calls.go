package keybot

import (
	"context"

	"github.com/keybot/keybot/internal/api"
)

// CallService covers the phone receptionist's /vapi-calls endpoint.
type CallService struct {
	r Requester
}

// Recent returns the latest inbound calls.
func (s *CallService) Recent(ctx context.Context) ([]RecentCall, error) {
	var payload struct {
		Calls []RecentCall `json:"calls"`
	}
	if err := s.r.Get(ctx, "/vapi-calls", &payload); err != nil {
		return nil, err
	}
	return payload.Calls, nil
}

// Quotes returns the quotes the receptionist produced from calls.
func (s *CallService) Quotes(ctx context.Context) ([]CallQuote, error) {
	var payload struct {
		Quotes []CallQuote `json:"quotes"`
	}
	if err := s.r.Get(ctx, "/vapi-calls", &payload, api.WithQueryParam("include_quotes", "true")); err != nil {
		return nil, err
	}
	return payload.Quotes, nil
}
