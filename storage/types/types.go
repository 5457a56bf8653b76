package types

import "time"

type Currency string

func (c Currency) String() string {
	return string(c)
}

type RateType string

const (
	RateTypeBUY  RateType = "BUY"
	RateTypeSELL RateType = "SELL"
)

func (r RateType) String() string {
	return string(r)
}

// Source identifies where a rate data point was observed
type Source string

const (
	SourceBCCR Source = "BCCR" // https://gee.bccr.fi.cr/
)

func (s Source) String() string {
	return string(s)
}

// ExchangeRate is a single observed exchange rate data point
type ExchangeRate struct {
	AsOf      time.Time `json:"as_of"`      // the effective (published) date
	FetchedAt time.Time `json:"fetched_at"` // when the data point was scraped
	Base      Currency  `json:"base"`
	Target    Currency  `json:"target"`
	RateType  RateType  `json:"rate_type"`
	Source    Source    `json:"source"`
	Rate      float64   `json:"rate"`
}

// RateQuery filters stored exchange rates.
// Base is required, everything else narrows the result set
type RateQuery struct {
	Target   *Currency `json:"target"`
	RateType *RateType `json:"rate_type"`
	Source   *Source   `json:"source"`
	Base     Currency  `json:"base"`
}

// Page wraps the results for pagination
type Page[T any] struct {
	Results []T   `json:"results"`
	Total   int64 `json:"total"`
}
