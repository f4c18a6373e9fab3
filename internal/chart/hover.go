package chart

import (
	"fmt"
	"strings"
	"time"

	"github.com/navillusj/ASX-Share-Monitor/internal/model"
	"github.com/navillusj/ASX-Share-Monitor/internal/view"
)

// Hit identifies the sample nearest to a hover position.
type Hit struct {
	Label    string        `json:"label"`
	Point    Point         `json:"point"`
	Distance time.Duration `json:"-"`
}

// Hover is the explicit per-chart hover-state record: created alongside the
// chart, cleared when the cursor leaves, overwritten on every hit.
type Hover struct {
	Active bool   `json:"active"`
	Label  string `json:"label,omitempty"`
	Point  Point  `json:"point,omitzero"`
}

// Update replaces the hover state with a hit.
func (h *Hover) Update(hit Hit) {
	h.Active = true
	h.Label = hit.Label
	h.Point = hit.Point
}

// Clear deactivates the hover state.
func (h *Hover) Clear() {
	*h = Hover{}
}

// HitTest finds the sample nearest in time to the hover position across all
// series. It reports no hit when every candidate lies further than window
// from the position.
func HitTest(series []Series, at time.Time, window time.Duration) (Hit, bool) {
	best := Hit{Distance: window + 1}
	found := false
	for _, s := range series {
		idx, ok := nearestIndex(s.Points, at)
		if !ok {
			continue
		}
		d := absDuration(s.Points[idx].Time.Sub(at))
		if d <= window && (!found || d < best.Distance) {
			best = Hit{Label: s.Label, Point: s.Points[idx], Distance: d}
			found = true
		}
	}
	return best, found
}

// nearestIndex binary-searches time-ordered points for the one closest to at.
func nearestIndex(points []Point, at time.Time) (int, bool) {
	n := len(points)
	if n == 0 {
		return 0, false
	}
	lo, hi := 0, n
	for lo < hi {
		mid := (lo + hi) / 2
		if points[mid].Time.Before(at) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == 0 {
		return 0, true
	}
	if lo == n {
		return n - 1, true
	}
	if absDuration(points[lo].Time.Sub(at)) < absDuration(at.Sub(points[lo-1].Time)) {
		return lo, true
	}
	return lo - 1, true
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// Tooltip renders the hovered sample's floating annotation text, pulling the
// symbol's current metrics from its snapshot.
func Tooltip(hit Hit, snap model.Snapshot, axis Axis, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", hit.Label)
	fmt.Fprintf(&b, "Price: %s\n", view.FormatPrice(hit.Point.Price))

	zone := axis.Loc.String()
	if i := strings.LastIndex(zone, "/"); i >= 0 {
		zone = zone[i+1:]
	}
	fmt.Fprintf(&b, "Time (%s): %s\n", zone, axis.TooltipTime(hit.Point.Time, now))

	if !snap.Errored() {
		dailyPct, dailyAbs := view.FormatChange(snap.DailyChangePct, snap.DailyChangeAbs)
		hourlyPct, hourlyAbs := view.FormatChange(snap.HourlyChangePct, snap.HourlyChangeAbs)
		fmt.Fprintf(&b, "\nDaily %%: %s\nDaily $: %s\nHourly %%: %s\nHourly $: %s", dailyPct, dailyAbs, hourlyPct, hourlyAbs)
	}
	return b.String()
}
