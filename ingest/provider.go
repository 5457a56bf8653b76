package ingest

import (
	"context"
	"time"

	"github.com/sig-0/tcventanilla/storage/types"
)

// Provider is a single scheduled exchange rate source
type Provider interface {
	// Name returns the human-readable name of the provider
	Name() string

	// Interval returns how often the provider should be queried
	Interval() time.Duration

	// Fetch is the provider's main fetch job, yielding exchange rate data points
	Fetch(context.Context) ([]*types.ExchangeRate, error)
}
