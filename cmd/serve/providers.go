package serve

import (
	"time"

	"github.com/sig-0/tcventanilla/ingest"
	"github.com/sig-0/tcventanilla/provider/bccr"
)

// defaultProviders returns the default ingestion providers
func defaultProviders() []ingest.Provider {
	// Official BCCR ventanilla rates
	bccrProvider := bccr.NewProvider(
		bccr.DefaultURL,
		time.Second*30,
	)

	return []ingest.Provider{
		bccrProvider,
	}
}
