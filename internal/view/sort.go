package view

import (
	"sort"
	"strings"

	"github.com/navillusj/ASX-Share-Monitor/internal/model"
)

// Sortable column identifiers for the aggregate table.
const (
	ColVisible   = "visible"
	ColTicker    = "ticker"
	ColPrice     = "price"
	ColOpen      = "open"
	ColDailyPct  = "daily_change_pct"
	ColDailyAbs  = "daily_change_abs"
	ColHourlyPct = "hourly_change_pct"
	ColHourlyAbs = "hourly_change_abs"
)

// ValidColumn reports whether col names a sortable table column.
func ValidColumn(col string) bool {
	switch col {
	case ColVisible, ColTicker, ColPrice, ColOpen,
		ColDailyPct, ColDailyAbs, ColHourlyPct, ColHourlyAbs:
		return true
	}
	return false
}

// TableSort is the aggregate view's sort/selection state. It persists across
// redraws: every rebuild of the table re-applies the current column and
// direction.
type TableSort struct {
	Column string `json:"column"`
	Desc   bool   `json:"desc"`
}

// DefaultTableSort matches the initial view: ticker ascending.
func DefaultTableSort() TableSort {
	return TableSort{Column: ColTicker}
}

// Click applies a header click: the currently-sorted column toggles
// direction, any other column resets to ascending.
func (s *TableSort) Click(col string) {
	if col == s.Column {
		s.Desc = !s.Desc
		return
	}
	s.Column = col
	s.Desc = false
}

// SortSnapshots orders the snapshot table by the sort state. The sort is
// stable on ties. Errored snapshots contribute zero to numeric columns,
// keeping them in the table rather than panicking or dropping them.
func SortSnapshots(snaps map[string]model.Snapshot, vis map[string]bool, s TableSort) []model.Snapshot {
	ordered := make([]model.Snapshot, 0, len(snaps))
	for _, snap := range snaps {
		ordered = append(ordered, snap)
	}
	// Map iteration order is random; fix a deterministic base order so the
	// stable sort has meaningful tie-breaking.
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Symbol < ordered[j].Symbol })

	less := lessFunc(s, vis)
	sort.SliceStable(ordered, func(i, j int) bool {
		if s.Desc {
			return less(ordered[j], ordered[i])
		}
		return less(ordered[i], ordered[j])
	})
	return ordered
}

func lessFunc(s TableSort, vis map[string]bool) func(a, b model.Snapshot) bool {
	switch s.Column {
	case ColTicker:
		return func(a, b model.Snapshot) bool {
			return strings.ToLower(a.Symbol) < strings.ToLower(b.Symbol)
		}
	case ColVisible:
		return func(a, b model.Snapshot) bool {
			return visibleOf(a.Symbol, vis) && !visibleOf(b.Symbol, vis)
		}
	default:
		key := numericKey(s.Column)
		return func(a, b model.Snapshot) bool { return key(a) < key(b) }
	}
}

func visibleOf(sym string, vis map[string]bool) bool {
	v, ok := vis[sym]
	return !ok || v
}

func numericKey(col string) func(model.Snapshot) float64 {
	return func(snap model.Snapshot) float64 {
		if snap.Errored() {
			return 0
		}
		switch col {
		case ColPrice:
			return snap.Price
		case ColOpen:
			return snap.Open
		case ColDailyPct:
			return snap.DailyChangePct
		case ColDailyAbs:
			return snap.DailyChangeAbs
		case ColHourlyPct:
			return snap.HourlyChangePct
		case ColHourlyAbs:
			return snap.HourlyChangeAbs
		}
		return 0
	}
}
