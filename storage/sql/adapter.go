package sql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sig-0/tcventanilla/storage/types"
)

type Storage struct {
	pool *pgxpool.Pool
}

func NewStorage(pool *pgxpool.Pool) *Storage {
	return &Storage{
		pool: pool,
	}
}

func (s *Storage) SaveExchangeRate(
	ctx context.Context,
	rate *types.ExchangeRate,
) error {
	// Re-fetches of the same published data point overwrite in place
	_, err := s.pool.Exec(
		ctx,
		`INSERT INTO exchange_rates
		     (base, target, rate, rate_type, source, as_of, fetched_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (base, target, rate_type, source, as_of)
		 DO UPDATE SET rate = EXCLUDED.rate, fetched_at = EXCLUDED.fetched_at`,
		rate.Base.String(),
		rate.Target.String(),
		rate.Rate,
		rate.RateType.String(),
		rate.Source.String(),
		rate.AsOf.UTC(),
		rate.FetchedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("unable to save exchange rate: %w", err)
	}

	return nil
}

func (s *Storage) RateAsOf(
	ctx context.Context,
	query *types.RateQuery,
	t time.Time,
) ([]*types.ExchangeRate, error) {
	target, source, rateType := queryFilters(query)

	rows, err := s.pool.Query(
		ctx,
		`SELECT DISTINCT ON (target, source, rate_type)
		     base, target, rate, rate_type, source, as_of, fetched_at
		 FROM exchange_rates
		 WHERE base = $1
		   AND as_of <= $2
		   AND ($3::text IS NULL OR target = $3)
		   AND ($4::text IS NULL OR source = $4)
		   AND ($5::text IS NULL OR rate_type = $5)
		 ORDER BY target, source, rate_type, as_of DESC, fetched_at DESC`,
		query.Base.String(),
		t.UTC(),
		target,
		source,
		rateType,
	)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch rates: %w", err)
	}

	return scanRates(rows)
}

func (s *Storage) RatesInRange(
	ctx context.Context,
	query *types.RateQuery,
	from, to time.Time,
	limit int32,
	offset int64,
) (*types.Page[*types.ExchangeRate], error) {
	target, source, rateType := queryFilters(query)

	var total int64

	err := s.pool.QueryRow(
		ctx,
		`SELECT COUNT(*)
		 FROM exchange_rates
		 WHERE base = $1
		   AND as_of BETWEEN $2 AND $3
		   AND ($4::text IS NULL OR target = $4)
		   AND ($5::text IS NULL OR source = $5)
		   AND ($6::text IS NULL OR rate_type = $6)`,
		query.Base.String(),
		from.UTC(),
		to.UTC(),
		target,
		source,
		rateType,
	).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("unable to count rates: %w", err)
	}

	rows, err := s.pool.Query(
		ctx,
		`SELECT base, target, rate, rate_type, source, as_of, fetched_at
		 FROM exchange_rates
		 WHERE base = $1
		   AND as_of BETWEEN $2 AND $3
		   AND ($4::text IS NULL OR target = $4)
		   AND ($5::text IS NULL OR source = $5)
		   AND ($6::text IS NULL OR rate_type = $6)
		 ORDER BY as_of, target, source, rate_type
		 LIMIT $7 OFFSET $8`,
		query.Base.String(),
		from.UTC(),
		to.UTC(),
		target,
		source,
		rateType,
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch rates: %w", err)
	}

	results, err := scanRates(rows)
	if err != nil {
		return nil, err
	}

	return &types.Page[*types.ExchangeRate]{
		Results: results,
		Total:   total,
	}, nil
}

func (s *Storage) ListSources(ctx context.Context) ([]types.Source, error) {
	rows, err := s.pool.Query(
		ctx,
		`SELECT DISTINCT source FROM exchange_rates ORDER BY source`,
	)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch sources: %w", err)
	}

	defer rows.Close()

	var out []types.Source

	for rows.Next() {
		var src string

		if err := rows.Scan(&src); err != nil {
			return nil, fmt.Errorf("unable to scan source: %w", err)
		}

		out = append(out, types.Source(src))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("unable to read sources: %w", err)
	}

	return out, nil
}

// queryFilters maps optional query fields to nullable SQL arguments
func queryFilters(query *types.RateQuery) (target, source, rateType *string) {
	if query.Target != nil {
		v := query.Target.String()
		target = &v
	}

	if query.Source != nil {
		v := query.Source.String()
		source = &v
	}

	if query.RateType != nil {
		v := query.RateType.String()
		rateType = &v
	}

	return target, source, rateType
}

func scanRates(rows pgx.Rows) ([]*types.ExchangeRate, error) {
	defer rows.Close()

	var out []*types.ExchangeRate

	for rows.Next() {
		var (
			r                              types.ExchangeRate
			base, target, rateType, source string
		)

		if err := rows.Scan(
			&base,
			&target,
			&r.Rate,
			&rateType,
			&source,
			&r.AsOf,
			&r.FetchedAt,
		); err != nil {
			return nil, fmt.Errorf("unable to scan rate: %w", err)
		}

		r.Base = types.Currency(base)
		r.Target = types.Currency(target)
		r.RateType = types.RateType(rateType)
		r.Source = types.Source(source)

		out = append(out, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("unable to read rates: %w", err)
	}

	return out, nil
}
