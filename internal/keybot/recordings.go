package keybot

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/keybot/keybot/internal/api"
)

// RecordingService covers call recordings attached to quotes.
type RecordingService struct {
	r Requester
}

// Get returns the recording for quoteNumber, or ErrNotFound.
func (s *RecordingService) Get(ctx context.Context, quoteNumber string) (*Recording, error) {
	qn := strings.TrimSpace(quoteNumber)
	if qn == "" {
		return nil, fmt.Errorf("quote number is required")
	}
	var payload struct {
		result
		Data *Recording `json:"data"`
	}
	if err := s.r.Get(ctx, "/recordings/"+url.PathEscape(qn), &payload); err != nil {
		return nil, err
	}
	if payload.err("get recording") != nil || payload.Data == nil {
		return nil, fmt.Errorf("recording for quote %s: %w", qn, ErrNotFound)
	}
	return payload.Data, nil
}

// Upload stores an audio recording for quoteNumber.
func (s *RecordingService) Upload(ctx context.Context, quoteNumber string, up api.Upload, onProgress api.ProgressFunc) error {
	qn := strings.TrimSpace(quoteNumber)
	if qn == "" {
		return fmt.Errorf("quote number is required")
	}
	fields := make(map[string]string, len(up.Fields)+1)
	for k, v := range up.Fields {
		fields[k] = v
	}
	fields["quote_number"] = qn
	up.Fields = fields
	return mutate("upload recording", func(out *result) error {
		return s.r.UploadFile(ctx, "/recordings/upload", up, onProgress, out)
	})
}
