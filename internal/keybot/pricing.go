package keybot

import (
	"context"
	"sort"

	"github.com/keybot/keybot/internal/api"
)

// PricingService covers the pricing sheet and its upload history.
type PricingService struct {
	r Requester
}

// Items returns the current pricing table.
func (s *PricingService) Items(ctx context.Context) (PricingData, error) {
	var payload PricingData
	if err := s.r.Get(ctx, "/pricing", &payload); err != nil {
		return PricingData{}, err
	}
	if payload.LastUpload == "" {
		payload.LastUpload = "N/A"
	}
	return payload, nil
}

// Upload replaces the pricing table with a spreadsheet.
func (s *PricingService) Upload(ctx context.Context, up api.Upload, onProgress api.ProgressFunc) error {
	return mutate("upload pricing", func(out *result) error {
		return s.r.UploadFile(ctx, "/pricing/upload", up, onProgress, out)
	})
}

// Uploads returns the pricing upload history, newest first.
func (s *PricingService) Uploads(ctx context.Context) ([]PricingUpload, error) {
	var payload struct {
		Uploads []PricingUpload `json:"uploads"`
	}
	if err := s.r.Get(ctx, "/pricing-uploads", &payload); err != nil {
		return nil, err
	}
	sort.SliceStable(payload.Uploads, func(i, j int) bool {
		return payload.Uploads[i].ParsedUploadedAt().After(payload.Uploads[j].ParsedUploadedAt())
	})
	return payload.Uploads, nil
}

// UploadSheet records a new pricing upload and returns the server's entry for
// it, if any.
func (s *PricingService) UploadSheet(ctx context.Context, up api.Upload, onProgress api.ProgressFunc) (*PricingUpload, error) {
	var payload struct {
		result
		Upload *PricingUpload `json:"upload"`
	}
	if err := s.r.UploadFile(ctx, "/pricing-uploads", up, onProgress, &payload); err != nil {
		return nil, err
	}
	if err := payload.err("upload pricing sheet"); err != nil {
		return nil, err
	}
	return payload.Upload, nil
}
