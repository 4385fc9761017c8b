// Package series down-samples raw price series into bounded,
// render-ready chart series.
package series

import (
	"time"

	"crypto-tracker/internal/domain"
)

// Reduce decimates an ascending raw series to at most ceil(n/step) points
// where step = max(1, n/target). Every point whose index is divisible by
// step is kept as-is; no interpolation or averaging. An empty input
// yields an empty series.
func Reduce(points []domain.PricePoint, r domain.TimeRange) domain.DisplaySeries {
	if len(points) == 0 {
		return domain.DisplaySeries{}
	}

	step := len(points) / r.Target()
	if step < 1 {
		step = 1
	}

	out := make(domain.DisplaySeries, 0, len(points)/step+1)
	for i := 0; i < len(points); i += step {
		out = append(out, domain.ChartPoint{
			Label: formatLabel(points[i].TimestampMs, r),
			Price: points[i].Price,
		})
	}
	return out
}

// formatLabel renders a point's own timestamp in UTC. Granularity follows
// the range: hour:minute for 24h, weekday for 7d, month/day otherwise.
func formatLabel(tsMs int64, r domain.TimeRange) string {
	t := time.UnixMilli(tsMs).UTC()
	switch r {
	case domain.Range24h:
		return t.Format("15:04")
	case domain.Range7d:
		return t.Format("Mon")
	default:
		return t.Format("Jan 2")
	}
}
