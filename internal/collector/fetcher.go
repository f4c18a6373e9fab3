package collector

import (
	"context"

	"github.com/navillusj/ASX-Share-Monitor/internal/model"
)

// Fetcher defines the interface for querying the market-data provider.
type Fetcher interface {
	// FetchHistory returns time-ordered close-price samples for the given
	// provider (period, interval) pair.
	FetchHistory(ctx context.Context, symbol, period, interval string) ([]model.PricePoint, error)
	// FetchQuote returns the scalar live price/open pair. Zero fields mean
	// the provider did not supply a value; callers apply the history
	// fallback.
	FetchQuote(ctx context.Context, symbol string) (model.LiveQuote, error)
	Name() string
}
