package bulk

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"vyapar/backend/internal/domain"
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Retry calls fn up to attempts times, waiting the same backoff after each failure.
// Validation errors and context cancellation are returned immediately.
func Retry(ctx context.Context, attempts int, backoff time.Duration, sleep SleepFunc, label string, fn func(context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}
	if sleep == nil {
		sleep = sleepContext
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		var verr *domain.ValidationError
		if errors.As(err, &verr) || ctx.Err() != nil {
			return err
		}
		if attempt == attempts {
			break
		}
		log.Warn().Err(err).Str("record", label).Int("attempt", attempt).Int("max_attempts", attempts).Msg("write failed, retrying")
		if serr := sleep(ctx, backoff); serr != nil {
			return serr
		}
	}
	return err
}
