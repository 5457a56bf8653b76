package bccr

import (
	"context"
	"time"

	"github.com/sig-0/tcventanilla/storage/types"
)

// how far back each scheduled fetch reaches, to pick up late
// corrections to already-published days
const fetchWindow = 7 * 24 * time.Hour

// Provider is the BCCR ventanilla scheduled ingest provider
type Provider struct {
	client *Client
}

// NewProvider creates a new instance of the BCCR ventanilla provider
func NewProvider(url string, timeout time.Duration) *Provider {
	return &Provider{
		client: NewClient(url, timeout),
	}
}

func (p *Provider) Name() string {
	return "BCCR Ventanilla"
}

func (p *Provider) Interval() time.Duration {
	return time.Hour * 24 // the table is updated daily
}

func (p *Provider) Fetch(ctx context.Context) ([]*types.ExchangeRate, error) {
	fetchTime := time.Now().UTC()

	table, err := p.client.Query(ctx, &QueryRequest{
		Start: fetchTime.Add(-fetchWindow),
		End:   fetchTime,
	})
	if err != nil {
		return nil, err
	}

	return RatesFromTable(table, fetchTime)
}
