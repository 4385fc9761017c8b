package domain

// TimeRange selects both the historical fetch window and the chart
// reduction target.
type TimeRange string

const (
	Range24h TimeRange = "24h"
	Range7d  TimeRange = "7d"
	Range30d TimeRange = "30d"
	Range90d TimeRange = "90d"
	Range1y  TimeRange = "1y"
)

// TimeRanges lists all ranges in display order.
var TimeRanges = []TimeRange{Range24h, Range7d, Range30d, Range90d, Range1y}

// ParseTimeRange returns the range for s, or Range7d if s is not a
// known range.
func ParseTimeRange(s string) (TimeRange, bool) {
	for _, r := range TimeRanges {
		if string(r) == s {
			return r, true
		}
	}
	return Range7d, false
}

// Days is the upstream market_chart fetch window for the range.
func (r TimeRange) Days() int {
	switch r {
	case Range24h:
		return 1
	case Range7d:
		return 7
	case Range30d:
		return 30
	case Range90d:
		return 90
	case Range1y:
		return 365
	default:
		return 7
	}
}

// Target is the reduction target length for the range.
func (r TimeRange) Target() int {
	switch r {
	case Range24h:
		return 24
	case Range7d:
		return 7
	case Range30d:
		return 30
	case Range90d:
		return 45
	case Range1y:
		return 52
	default:
		return 7
	}
}
