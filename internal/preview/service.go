package preview

import (
	"context"
	"fmt"
	"time"

	"github.com/bilgisen/addconnect/internal/logger"
	"github.com/bilgisen/addconnect/internal/models"
	"github.com/bilgisen/addconnect/internal/utils"
)

// Cache stores extracted previews by URL hash
type Cache interface {
	GetPreview(ctx context.Context, hash string) (*models.Preview, bool, error)
	SetPreview(ctx context.Context, hash string, p *models.Preview, ttl time.Duration) error
	ClearPreviews(ctx context.Context) error
}

// Source produces a preview for a URL
type Source interface {
	Fetch(ctx context.Context, url string) *models.Preview
}

// Service fronts a Source with a cache. Failed fetches are not cached.
type Service struct {
	source Source
	cache  Cache
	ttl    time.Duration
}

func NewService(source Source, cache Cache, ttl time.Duration) *Service {
	return &Service{source: source, cache: cache, ttl: ttl}
}

// Get returns the preview for url, from cache when possible
func (s *Service) Get(ctx context.Context, url string) *models.Preview {
	log := logger.Component("preview")
	hash := utils.Hash(url)

	if s.cache != nil {
		cached, ok, err := s.cache.GetPreview(ctx, hash)
		if err != nil {
			log.Warn().Err(err).Str("url", url).Msg("Preview cache lookup failed")
		} else if ok {
			log.Debug().Str("url", url).Msg("Preview cache hit")
			return cached
		}
	}

	start := time.Now()
	p := s.source.Fetch(ctx, url)
	if p.Error != "" {
		log.Warn().
			Str("url", url).
			Str("error", p.Error).
			Dur("duration", time.Since(start)).
			Msg("Preview fetch failed")
		return p
	}

	log.Info().
		Str("url", url).
		Bool("has_title", p.Title != nil).
		Dur("duration", time.Since(start)).
		Msg("Fetched preview")

	if s.cache != nil {
		if err := s.cache.SetPreview(ctx, hash, p, s.ttl); err != nil {
			log.Warn().Err(err).Str("url", url).Msg("Failed to cache preview")
		}
	}
	return p
}

// Clear drops every cached preview so the next request refetches
func (s *Service) Clear(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.ClearPreviews(ctx); err != nil {
		return fmt.Errorf("failed to clear preview cache: %w", err)
	}
	log := logger.Component("preview")
	log.Info().Msg("Preview cache cleared")
	return nil
}
