package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/tcventanilla/provider/currencies"
	"github.com/sig-0/tcventanilla/storage/types"
)

func day(t *testing.T, value string) time.Time {
	t.Helper()

	parsed, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)

	return parsed.UTC()
}

func saveRate(
	t *testing.T,
	s *Storage,
	asOf time.Time,
	rateType types.RateType,
	rate float64,
) {
	t.Helper()

	require.NoError(t, s.SaveExchangeRate(context.Background(), &types.ExchangeRate{
		AsOf:      asOf,
		FetchedAt: asOf.Add(time.Hour * 12),
		Base:      currencies.USD,
		Target:    currencies.CRC,
		RateType:  rateType,
		Source:    types.SourceBCCR,
		Rate:      rate,
	}))
}

func TestStorage_RateAsOf(t *testing.T) {
	t.Parallel()

	s := NewStorage()

	saveRate(t, s, day(t, "2024-01-01"), types.RateTypeBUY, 500)
	saveRate(t, s, day(t, "2024-01-01"), types.RateTypeSELL, 510)
	saveRate(t, s, day(t, "2024-01-02"), types.RateTypeBUY, 502)
	saveRate(t, s, day(t, "2024-01-02"), types.RateTypeSELL, 512)

	q := &types.RateQuery{
		Base: currencies.USD,
	}

	t.Run("latest per bucket", func(t *testing.T) {
		t.Parallel()

		out, err := s.RateAsOf(context.Background(), q, day(t, "2024-01-05"))
		require.NoError(t, err)

		require.Len(t, out, 2)

		for _, r := range out {
			assert.Equal(t, day(t, "2024-01-02"), r.AsOf)
		}
	})

	t.Run("cutoff excludes later dates", func(t *testing.T) {
		t.Parallel()

		out, err := s.RateAsOf(context.Background(), q, day(t, "2024-01-01"))
		require.NoError(t, err)

		require.Len(t, out, 2)

		for _, r := range out {
			assert.Equal(t, day(t, "2024-01-01"), r.AsOf)
		}
	})

	t.Run("no data before cutoff", func(t *testing.T) {
		t.Parallel()

		out, err := s.RateAsOf(context.Background(), q, day(t, "2023-12-31"))
		require.NoError(t, err)

		assert.Empty(t, out)
	})
}

func TestStorage_RatesInRange(t *testing.T) {
	t.Parallel()

	s := NewStorage()

	saveRate(t, s, day(t, "2024-01-01"), types.RateTypeBUY, 500)
	saveRate(t, s, day(t, "2024-01-02"), types.RateTypeBUY, 502)
	saveRate(t, s, day(t, "2024-01-03"), types.RateTypeBUY, 504)

	q := &types.RateQuery{
		Base: currencies.USD,
	}

	t.Run("full range, ordered", func(t *testing.T) {
		t.Parallel()

		page, err := s.RatesInRange(
			context.Background(),
			q,
			day(t, "2024-01-01"),
			day(t, "2024-01-03"),
			100,
			0,
		)
		require.NoError(t, err)

		require.EqualValues(t, 3, page.Total)
		require.Len(t, page.Results, 3)

		assert.Equal(t, float64(500), page.Results[0].Rate)
		assert.Equal(t, float64(504), page.Results[2].Rate)
	})

	t.Run("pagination", func(t *testing.T) {
		t.Parallel()

		page, err := s.RatesInRange(
			context.Background(),
			q,
			day(t, "2024-01-01"),
			day(t, "2024-01-03"),
			1,
			1,
		)
		require.NoError(t, err)

		require.EqualValues(t, 3, page.Total)
		require.Len(t, page.Results, 1)

		assert.Equal(t, float64(502), page.Results[0].Rate)
	})

	t.Run("offset past total", func(t *testing.T) {
		t.Parallel()

		page, err := s.RatesInRange(
			context.Background(),
			q,
			day(t, "2024-01-01"),
			day(t, "2024-01-03"),
			100,
			10,
		)
		require.NoError(t, err)

		require.EqualValues(t, 3, page.Total)
		assert.Empty(t, page.Results)
	})
}

func TestStorage_ListSources(t *testing.T) {
	t.Parallel()

	s := NewStorage()

	saveRate(t, s, day(t, "2024-01-01"), types.RateTypeBUY, 500)

	sources, err := s.ListSources(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []types.Source{types.SourceBCCR}, sources)
}
