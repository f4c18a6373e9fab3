package chart

import (
	"log"
	"sort"
	"time"

	"github.com/navillusj/ASX-Share-Monitor/internal/model"
)

// Point is one plotted sample.
type Point struct {
	Time  time.Time `json:"time"`
	Price float64   `json:"price"`
}

// Series is one labelled price line.
type Series struct {
	Label  string  `json:"label"`
	Points []Point `json:"points"`
}

// xPaddingFraction widens the reported x-range slightly so a renderer never
// collapses the axis to the epoch when a series is flat or short.
const xPaddingFraction = 0.005

func toPoints(history []model.PricePoint) []Point {
	pts := make([]Point, len(history))
	for i, p := range history {
		pts[i] = Point{Time: p.Time, Price: p.Close}
	}
	return pts
}

// BuildSingle returns the detail-view series for one snapshot. Errored or
// empty snapshots yield no series.
func BuildSingle(snap model.Snapshot) (Series, bool) {
	if snap.Errored() || len(snap.History) == 0 {
		return Series{}, false
	}
	return Series{Label: snap.Symbol, Points: toPoints(snap.History)}, true
}

// BuildOverlay returns the combined-chart series: every visible,
// non-errored, non-empty symbol, ordered by label. Symbols absent from the
// visibility map default to visible.
func BuildOverlay(snaps map[string]model.Snapshot, vis map[string]bool) []Series {
	out := make([]Series, 0, len(snaps))
	for sym, snap := range snaps {
		if v, ok := vis[sym]; ok && !v {
			continue
		}
		if s, ok := BuildSingle(snap); ok {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// XRange returns the padded time extent across all series.
func XRange(series []Series) (min, max time.Time, ok bool) {
	for _, s := range series {
		for _, p := range s.Points {
			if !ok || p.Time.Before(min) {
				min = p.Time
			}
			if !ok || p.Time.After(max) {
				max = p.Time
			}
			ok = true
		}
	}
	if !ok {
		return min, max, false
	}
	pad := time.Duration(float64(max.Sub(min)) * xPaddingFraction)
	return min.Add(-pad), max.Add(pad), true
}

// Axis carries the per-range tick formatting policy in the display timezone.
type Axis struct {
	Range model.TimeRange
	Loc   *time.Location
}

// NewAxis builds an axis for the given range and timezone name, falling
// back to UTC when the zone cannot be loaded.
func NewAxis(rng model.TimeRange, timezone string) Axis {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		log.Printf("[WARN] load timezone %q: %v, using UTC", timezone, err)
		loc = time.UTC
	}
	return Axis{Range: rng, Loc: loc}
}

// TickLabel formats an axis tick: time-of-day for intraday ranges, dates for
// the long ones.
func (a Axis) TickLabel(t time.Time) string {
	if a.Range.Intraday {
		return t.In(a.Loc).Format("15:04")
	}
	return t.In(a.Loc).Format("2006-01-02")
}

// TooltipTime formats a hovered sample's timestamp. Recent (intraday-aged)
// samples show full time, older samples just the date.
func (a Axis) TooltipTime(t, now time.Time) string {
	if now.Sub(t) < 36*time.Hour {
		return t.In(a.Loc).Format("2006-01-02 15:04:05")
	}
	return t.In(a.Loc).Format("2006-01-02")
}
