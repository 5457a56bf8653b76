package mock

import (
	"context"
	"time"

	"github.com/sig-0/tcventanilla/storage/types"
)

type (
	SaveExchangeRateDelegate func(context.Context, *types.ExchangeRate) error
	RateAsOfDelegate         func(context.Context, *types.RateQuery, time.Time) ([]*types.ExchangeRate, error)
	RatesInRangeDelegate     func(
		context.Context,
		*types.RateQuery,
		time.Time,
		time.Time,
		int32,
		int64,
	) (*types.Page[*types.ExchangeRate], error)
	ListSourcesDelegate func(context.Context) ([]types.Source, error)
)

type Storage struct {
	SaveExchangeRateFn SaveExchangeRateDelegate
	RateAsOfFn         RateAsOfDelegate
	RatesInRangeFn     RatesInRangeDelegate
	ListSourcesFn      ListSourcesDelegate
}

func (m *Storage) SaveExchangeRate(ctx context.Context, rate *types.ExchangeRate) error {
	if m.SaveExchangeRateFn != nil {
		return m.SaveExchangeRateFn(ctx, rate)
	}

	return nil
}

func (m *Storage) RateAsOf(
	ctx context.Context,
	query *types.RateQuery,
	at time.Time,
) ([]*types.ExchangeRate, error) {
	if m.RateAsOfFn != nil {
		return m.RateAsOfFn(ctx, query, at)
	}

	return nil, nil
}

func (m *Storage) RatesInRange(
	ctx context.Context,
	query *types.RateQuery,
	from, to time.Time,
	limit int32,
	offset int64,
) (*types.Page[*types.ExchangeRate], error) {
	if m.RatesInRangeFn != nil {
		return m.RatesInRangeFn(ctx, query, from, to, limit, offset)
	}

	return nil, nil
}

func (m *Storage) ListSources(ctx context.Context) ([]types.Source, error) {
	if m.ListSourcesFn != nil {
		return m.ListSourcesFn(ctx)
	}

	return nil, nil
}
