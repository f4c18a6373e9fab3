package view

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/navillusj/ASX-Share-Monitor/internal/model"
)

// Row tags drive coloring in whatever frontend consumes the table.
const (
	TagGain  = "gain"
	TagLoss  = "loss"
	TagError = "error"
)

const notAvailable = "N/A"

// Row is one aggregate-table line, fully formatted for display. Errored
// symbols stay in the table with every data field set to N/A.
type Row struct {
	Visible         bool   `json:"visible"`
	Symbol          string `json:"symbol"`
	Price           string `json:"price"`
	Open            string `json:"open"`
	DailyChangePct  string `json:"daily_change_pct"`
	DailyChangeAbs  string `json:"daily_change_abs"`
	HourlyChangePct string `json:"hourly_change_pct"`
	HourlyChangeAbs string `json:"hourly_change_abs"`
	Tag             string `json:"tag"`
}

// FormatChange renders a percent/absolute change pair with explicit sign and
// directional arrow, e.g. "+1.25% ↑" and "$+0.53 ↑".
func FormatChange(pct, abs float64) (pctDisplay, absDisplay string) {
	arrow := " ↑"
	if pct < 0 {
		arrow = " ↓"
	}
	pctDisplay = fmt.Sprintf("%+.2f%%%s", pct, arrow)
	absDisplay = fmt.Sprintf("$%+.2f%s", abs, arrow)
	return pctDisplay, absDisplay
}

// FormatPrice renders a price with currency symbol and thousands separators.
func FormatPrice(v float64) string {
	return "$" + humanize.FormatFloat("#,###.##", v)
}

// BuildRow formats one snapshot into a table row.
func BuildRow(snap model.Snapshot, visible bool) Row {
	row := Row{Visible: visible, Symbol: snap.Symbol}
	if snap.Errored() {
		row.Tag = TagError
		row.Price = notAvailable
		row.Open = notAvailable
		row.DailyChangePct = notAvailable
		row.DailyChangeAbs = notAvailable
		row.HourlyChangePct = notAvailable
		row.HourlyChangeAbs = notAvailable
		return row
	}

	if snap.Gain() {
		row.Tag = TagGain
	} else {
		row.Tag = TagLoss
	}
	row.Price = FormatPrice(snap.Price)
	row.Open = FormatPrice(snap.Open)
	row.DailyChangePct, row.DailyChangeAbs = FormatChange(snap.DailyChangePct, snap.DailyChangeAbs)
	row.HourlyChangePct, row.HourlyChangeAbs = FormatChange(snap.HourlyChangePct, snap.HourlyChangeAbs)
	return row
}

// BuildRows sorts the snapshot table by the given sort state and formats
// every entry. Symbols absent from the visibility map default to visible.
func BuildRows(snaps map[string]model.Snapshot, vis map[string]bool, sortState TableSort) []Row {
	ordered := SortSnapshots(snaps, vis, sortState)
	rows := make([]Row, 0, len(ordered))
	for _, snap := range ordered {
		visible, ok := vis[snap.Symbol]
		if !ok {
			visible = true
		}
		rows = append(rows, BuildRow(snap, visible))
	}
	return rows
}

// RenderTable renders rows as a plain-text aggregate table.
func RenderTable(rows []Row) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-6s %-10s %12s %12s %14s %14s %14s %14s\n",
		"CHART", "SHARE", "PRICE", "OPEN", "DAILY %", "DAILY $", "HOURLY %", "HOURLY $")
	for _, r := range rows {
		mark := "✔"
		if !r.Visible {
			mark = "✘"
		}
		fmt.Fprintf(&b, "%-6s %-10s %12s %12s %14s %14s %14s %14s\n",
			mark, r.Symbol, r.Price, r.Open,
			r.DailyChangePct, r.DailyChangeAbs, r.HourlyChangePct, r.HourlyChangeAbs)
	}
	return b.String()
}
