package extract

import (
	"context"

	"go.uber.org/zap"

	"viraflow/internal/config"
)

// New builds the Extractor selected by the settings.
func New(ctx context.Context, s config.ExtractorSettings, log *zap.Logger) (Extractor, error) {
	timeout, err := s.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	if s.Backend == config.BackendGemini {
		return NewGemini(ctx, GeminiConfig{
			APIKey:  s.APIKey,
			Model:   s.Model,
			Timeout: timeout,
			Logger:  log,
		})
	}
	return NewHTTP(s.Endpoint, WithTimeout(timeout), WithHTTPLogger(log)), nil
}
