package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sig-0/tcventanilla/storage/types"
)

type key struct {
	base, target, source, rateType string
	asOf                           int64 // unix nanos
}

type Storage struct {
	data map[key]types.ExchangeRate

	mu sync.RWMutex
}

func NewStorage() *Storage {
	return &Storage{
		data: make(map[key]types.ExchangeRate),
	}
}

func (s *Storage) SaveExchangeRate(_ context.Context, r *types.ExchangeRate) error {
	k := key{
		base:     r.Base.String(),
		target:   r.Target.String(),
		source:   r.Source.String(),
		rateType: r.RateType.String(),
		asOf:     r.AsOf.UTC().UnixNano(),
	}

	elem := *r
	elem.AsOf = elem.AsOf.UTC()
	elem.FetchedAt = elem.FetchedAt.UTC()

	s.mu.Lock()
	s.data[k] = elem // key is unique
	s.mu.Unlock()

	return nil
}

// matches checks the non-time query filters against the data point
func matches(q *types.RateQuery, v *types.ExchangeRate) bool {
	if v.Base != q.Base {
		return false
	}

	if q.Target != nil && v.Target != *q.Target {
		return false
	}

	if q.Source != nil && v.Source != *q.Source {
		return false
	}

	if q.RateType != nil && v.RateType != *q.RateType {
		return false
	}

	return true
}

func (s *Storage) RateAsOf(
	_ context.Context,
	query *types.RateQuery,
	asOf time.Time,
) ([]*types.ExchangeRate, error) {
	cutoff := asOf.UTC()

	type bucket struct {
		target, source, rateType string
	}

	s.mu.RLock()

	bestByBucket := make(map[bucket]types.ExchangeRate)

	for _, v := range s.data {
		if !matches(query, &v) {
			continue
		}

		if v.AsOf.After(cutoff) {
			continue
		}

		b := bucket{
			target:   v.Target.String(),
			source:   v.Source.String(),
			rateType: v.RateType.String(),
		}

		cur, ok := bestByBucket[b]
		if !ok ||
			v.AsOf.After(cur.AsOf) ||
			(v.AsOf.Equal(cur.AsOf) && v.FetchedAt.After(cur.FetchedAt)) {
			bestByBucket[b] = v
		}
	}

	s.mu.RUnlock()

	out := make([]*types.ExchangeRate, 0, len(bestByBucket))
	for _, v := range bestByBucket {
		cp := v
		out = append(out, &cp)
	}

	sortRates(out)

	return out, nil
}

func (s *Storage) RatesInRange(
	_ context.Context,
	query *types.RateQuery,
	from, to time.Time,
	limit int32,
	offset int64,
) (*types.Page[*types.ExchangeRate], error) {
	var (
		fromUTC = from.UTC()
		toUTC   = to.UTC()
	)

	s.mu.RLock()

	out := make([]*types.ExchangeRate, 0, len(s.data))

	for _, v := range s.data {
		if !matches(query, &v) {
			continue
		}

		if v.AsOf.Before(fromUTC) || v.AsOf.After(toUTC) {
			continue
		}

		cp := v
		out = append(out, &cp)
	}

	s.mu.RUnlock()

	sortRates(out)

	total := int64(len(out))

	if limit <= 0 {
		limit = 100
	}

	if offset >= total {
		return &types.Page[*types.ExchangeRate]{
			Results: nil,
			Total:   total,
		}, nil
	}

	start := int(offset)

	end := start + int(limit)
	if end > len(out) {
		end = len(out)
	}

	return &types.Page[*types.ExchangeRate]{
		Results: out[start:end],
		Total:   total,
	}, nil
}

func (s *Storage) ListSources(_ context.Context) ([]types.Source, error) {
	s.mu.RLock()

	seen := make(map[string]struct{})

	for k := range s.data {
		seen[k.source] = struct{}{}
	}

	s.mu.RUnlock()

	out := make([]types.Source, 0, len(seen))

	for v := range seen {
		out = append(out, types.Source(v))
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})

	return out, nil
}

// sortRates orders rates by effective date, then target, source, rate type
func sortRates(out []*types.ExchangeRate) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AsOf.Equal(out[j].AsOf) {
			return out[i].AsOf.Before(out[j].AsOf)
		}

		if out[i].Target != out[j].Target {
			return out[i].Target.String() < out[j].Target.String()
		}

		if out[i].Source != out[j].Source {
			return out[i].Source.String() < out[j].Source.String()
		}

		return out[i].RateType.String() < out[j].RateType.String()
	})
}
