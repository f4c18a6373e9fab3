package collector

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/navillusj/ASX-Share-Monitor/internal/calculator"
	"github.com/navillusj/ASX-Share-Monitor/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Quote    model.LiveQuote
	History  []model.PricePoint
	Intraday []model.PricePoint
	// Fail lists symbols whose every fetch errors.
	Fail map[string]error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchHistory(_ context.Context, symbol, period, interval string) ([]model.PricePoint, error) {
	if err := m.Fail[symbol]; err != nil {
		return nil, err
	}
	if interval == model.HourlyInterval && period == model.HourlyPeriod {
		return m.Intraday, nil
	}
	return m.History, nil
}

func (m *MockFetcher) FetchQuote(_ context.Context, symbol string) (model.LiveQuote, error) {
	if err := m.Fail[symbol]; err != nil {
		return model.LiveQuote{}, err
	}
	return m.Quote, nil
}

// Collector turns provider queries into per-symbol snapshots.
type Collector struct {
	Fetcher Fetcher
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher) *Collector {
	return &Collector{Fetcher: fetcher}
}

// CollectBatch fetches every tracked symbol sequentially and returns one
// snapshot per symbol. A symbol's failure is isolated: it produces an
// error-flagged snapshot and the rest of the batch proceeds.
func (c *Collector) CollectBatch(ctx context.Context, symbols []string, rng model.TimeRange) []model.Snapshot {
	out := make([]model.Snapshot, 0, len(symbols))
	for _, sym := range symbols {
		snap, err := c.collectOne(ctx, sym, rng)
		if err != nil {
			log.Printf("[ERROR] fetch %s: %v", sym, err)
			snap = model.Snapshot{Symbol: sym, Range: rng.Label, FetchedAt: time.Now(), Err: err.Error()}
		}
		out = append(out, snap)
	}
	return out
}

func (c *Collector) collectOne(ctx context.Context, symbol string, rng model.TimeRange) (model.Snapshot, error) {
	// The live quote is optional: history values stand in when it is
	// unavailable, so its error is tolerated.
	quote, err := c.Fetcher.FetchQuote(ctx, symbol)
	if err != nil {
		log.Printf("[WARN] quote %s: %v, falling back to history scalars", symbol, err)
		quote = model.LiveQuote{}
	}

	history, err := c.Fetcher.FetchHistory(ctx, symbol, rng.Period, rng.Interval)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("history (%s, %s): %w", rng.Period, rng.Interval, err)
	}
	intraday, err := c.Fetcher.FetchHistory(ctx, symbol, model.HourlyPeriod, model.HourlyInterval)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("intraday history: %w", err)
	}

	price, open, err := calculator.ResolveScalars(quote, history)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("%s: %w", symbol, err)
	}

	snap := model.Snapshot{
		Symbol:    symbol,
		Price:     price,
		Open:      open,
		History:   history,
		Intraday:  intraday,
		Range:     rng.Label,
		FetchedAt: time.Now(),
	}
	snap.DailyChangeAbs, snap.DailyChangePct = calculator.DailyChange(price, open)
	snap.HourlyChangeAbs, snap.HourlyChangePct = calculator.HourlyChange(price, intraday)
	return snap, nil
}
