package model

import "time"

// PricePoint is a single (timestamp, close-price) sample.
type PricePoint struct {
	Time  time.Time
	Close float64
}

// LiveQuote holds the scalar fields of a provider "current info" response.
// A zero or negative value means the provider did not supply that field.
type LiveQuote struct {
	Price float64
	Open  float64
}

// Snapshot is the most recently fetched price/history bundle for one symbol.
// It is replaced wholesale on every fetch cycle, never partially mutated.
// A non-empty Err invalidates every other field.
type Snapshot struct {
	Symbol string
	Price  float64
	Open   float64

	DailyChangeAbs  float64
	DailyChangePct  float64
	HourlyChangeAbs float64
	HourlyChangePct float64

	// History holds samples at the user-selected chart granularity.
	History []PricePoint
	// Intraday holds the fixed (1 day, 1 minute) samples backing the
	// hourly metric and the shortest chart range.
	Intraday []PricePoint

	Range     string
	FetchedAt time.Time
	Err       string
}

// Errored reports whether this snapshot represents a failed fetch.
func (s *Snapshot) Errored() bool { return s.Err != "" }

// Gain reports whether the snapshot classifies as a gain for coloring.
// sign(DailyChangeAbs) decides; zero counts as a gain, matching the display
// convention for an unchanged price.
func (s *Snapshot) Gain() bool { return s.DailyChangeAbs >= 0 }
