package calculator

import (
	"errors"

	"github.com/navillusj/ASX-Share-Monitor/internal/model"
)

// HourlyLookback is the number of short-resolution samples between "now" and
// the comparison point of the rolling hourly change. The short-resolution
// series is assumed to be 1-minute sampled; the contract is defined over
// sample positions, not wall-clock minutes.
const HourlyLookback = 60

// DailyChange returns the absolute and percentage change of price against
// the opening price. A non-positive open yields zeros rather than a division
// error.
func DailyChange(price, open float64) (abs, pct float64) {
	if open <= 0 {
		return 0, 0
	}
	abs = price - open
	pct = abs / open * 100
	return abs, pct
}

// HourlyChange returns the rolling change of price against the sample
// HourlyLookback positions before the most recent short-resolution sample.
// Both figures are zero (not an error) when fewer than HourlyLookback
// samples exist or price is not positive.
func HourlyChange(price float64, intraday []model.PricePoint) (abs, pct float64) {
	if len(intraday) < HourlyLookback || price <= 0 {
		return 0, 0
	}
	base := intraday[len(intraday)-HourlyLookback].Close
	if base <= 0 {
		return 0, 0
	}
	abs = price - base
	pct = abs / base * 100
	return abs, pct
}

// ErrNoPriceData indicates that neither scalar quote fields nor history
// samples yielded a usable price, which fails the symbol's fetch.
var ErrNoPriceData = errors.New("no usable price data")

// ResolveScalars applies the fallback policy for the scalar price/open pair:
// provider quote fields when present, otherwise the last and first values of
// the long-resolution history.
func ResolveScalars(quote model.LiveQuote, history []model.PricePoint) (price, open float64, err error) {
	price, open = quote.Price, quote.Open
	if price > 0 && open > 0 {
		return price, open, nil
	}
	if len(history) == 0 {
		return 0, 0, ErrNoPriceData
	}
	return history[len(history)-1].Close, history[0].Close, nil
}
