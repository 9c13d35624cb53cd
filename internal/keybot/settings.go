package keybot

import "context"

// SettingsService covers /settings.
type SettingsService struct {
	r Requester
}

// Get returns the stored settings. When the server reports success=false
// (nothing stored yet) DefaultSettings is returned.
func (s *SettingsService) Get(ctx context.Context) (Settings, error) {
	var payload struct {
		result
		Data *Settings `json:"data"`
	}
	if err := s.r.Get(ctx, "/settings", &payload); err != nil {
		return Settings{}, err
	}
	if payload.err("get settings") != nil || payload.Data == nil {
		return DefaultSettings(), nil
	}
	return *payload.Data, nil
}

// Save replaces the stored settings.
func (s *SettingsService) Save(ctx context.Context, settings Settings) error {
	return mutate("save settings", func(out *result) error {
		return s.r.Post(ctx, "/settings", settings, out)
	})
}
