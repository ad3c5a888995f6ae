// Package assistant turns free-text shop updates into extractions and answers questions
// about the ledger.
package assistant

import (
	"context"
	"errors"

	"vyapar/backend/internal/domain"
)

var ErrNotUnderstood = errors.New("could not understand the message")

// Extractor reads one free-text message. Fields the message does not mention stay null.
type Extractor interface {
	Extract(ctx context.Context, text string) (*domain.Extraction, error)
}

// Advisor answers in prose. It never fails: when the backing model is unavailable it
// returns a fixed apology instead.
type Advisor interface {
	Insight(ctx context.Context, question string, snap domain.Snapshot) string
	Advice(ctx context.Context, snap domain.Snapshot) string
}
