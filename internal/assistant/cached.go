package assistant

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"vyapar/backend/internal/cache"
	"vyapar/backend/internal/domain"
)

// CachedExtractor serves repeated messages from the cache. Cache errors are logged and
// never fail the extraction.
type CachedExtractor struct {
	next  Extractor
	cache cache.ExtractionCache
	ttl   time.Duration
}

func NewCachedExtractor(next Extractor, c cache.ExtractionCache, ttl time.Duration) *CachedExtractor {
	if c == nil {
		c = cache.NoopExtractionCache{}
	}
	return &CachedExtractor{next: next, cache: c, ttl: ttl}
}

func (e *CachedExtractor) Extract(ctx context.Context, text string) (*domain.Extraction, error) {
	key := cache.ExtractionKey(text)
	if hit, ok, err := e.cache.Get(ctx, key); err != nil {
		log.Warn().Err(err).Msg("extraction cache read failed")
	} else if ok {
		return hit, nil
	}

	ext, err := e.next.Extract(ctx, text)
	if err != nil {
		return nil, err
	}
	if e.ttl > 0 {
		if err := e.cache.Set(ctx, key, ext, e.ttl); err != nil {
			log.Warn().Err(err).Msg("extraction cache write failed")
		}
	}
	return ext, nil
}
