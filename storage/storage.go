package storage

import (
	"context"
	"time"

	"github.com/sig-0/tcventanilla/storage/types"
)

// Storage is an abstraction over exchange rate data
type Storage interface {
	// SaveExchangeRate saves the given exchange rate data point
	SaveExchangeRate(context.Context, *types.ExchangeRate) error

	// RateAsOf fetches the latest matching rates effective at the given time
	RateAsOf(context.Context, *types.RateQuery, time.Time) ([]*types.ExchangeRate, error)

	// RatesInRange fetches the matching rates whose effective date falls
	// in [from, to], ordered by effective date
	RatesInRange(
		ctx context.Context,
		query *types.RateQuery,
		from, to time.Time,
		limit int32,
		offset int64,
	) (*types.Page[*types.ExchangeRate], error)

	// ListSources lists all present sources for fx rates
	ListSources(context.Context) ([]types.Source, error)
}
