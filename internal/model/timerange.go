package model

// TimeRange maps a display label to the provider (period, interval) pair
// used for the long-resolution history query.
type TimeRange struct {
	Label    string
	Period   string
	Interval string
	// Intraday ranges render axis ticks as time-of-day rather than dates.
	Intraday bool
}

// Weekly/daily intervals on the long ranges are intentional: finer
// granularity over months produces more axis ticks than any renderer wants.
var TimeRanges = []TimeRange{
	{Label: "6 Months", Period: "6mo", Interval: "1wk"},
	{Label: "30 Days", Period: "30d", Interval: "1d"},
	{Label: "7 Days", Period: "7d", Interval: "1h"},
	{Label: "24 Hrs", Period: "1d", Interval: "15m", Intraday: true},
	{Label: "6 Hrs", Period: "1d", Interval: "5m", Intraday: true},
	{Label: "10 Mins", Period: "1d", Interval: "1m", Intraday: true},
}

const DefaultTimeRange = "30 Days"

// HourlyPeriod and HourlyInterval fix the short-resolution query backing the
// rolling hourly metric. The 60-sample lookback in the calculator assumes
// exactly this granularity.
const (
	HourlyPeriod   = "1d"
	HourlyInterval = "1m"
)

// LookupTimeRange resolves a display label, falling back to the default for
// unrecognized input.
func LookupTimeRange(label string) TimeRange {
	for _, r := range TimeRanges {
		if r.Label == label {
			return r
		}
	}
	return LookupTimeRange(DefaultTimeRange)
}

// ValidTimeRange reports whether label names a configured chart range.
func ValidTimeRange(label string) bool {
	for _, r := range TimeRanges {
		if r.Label == label {
			return true
		}
	}
	return false
}

// Timezones is the fixed set of display timezones offered in settings.
var Timezones = []string{
	"Australia/Sydney",
	"Australia/Brisbane",
	"Australia/Perth",
}

const DefaultTimezone = "Australia/Sydney"

// ValidTimezone reports whether name is one of the offered display timezones.
func ValidTimezone(name string) bool {
	for _, tz := range Timezones {
		if tz == name {
			return true
		}
	}
	return false
}
