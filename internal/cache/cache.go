package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"vyapar/backend/internal/domain"
)

// ExtractionCache remembers what the extractor returned for a given message text.
type ExtractionCache interface {
	Get(ctx context.Context, key string) (*domain.Extraction, bool, error)
	Set(ctx context.Context, key string, value *domain.Extraction, ttl time.Duration) error
}

type NoopExtractionCache struct{}

func (NoopExtractionCache) Get(_ context.Context, _ string) (*domain.Extraction, bool, error) {
	return nil, false, nil
}

func (NoopExtractionCache) Set(_ context.Context, _ string, _ *domain.Extraction, _ time.Duration) error {
	return nil
}

// ExtractionKey hashes the message after collapsing whitespace. Case is kept: names are
// recorded as spelled.
func ExtractionKey(text string) string {
	normalized := strings.Join(strings.Fields(text), " ")
	sum := sha256.Sum256([]byte(normalized))
	return "vyapar:extract:" + hex.EncodeToString(sum[:])
}
