package tui

import (
	"fmt"
	"strings"

	"crypto-tracker/internal/domain"
)

// RenderChart draws a DisplaySeries as a fixed-height column chart.
// Each series point becomes one column group; prices are scaled into
// the available rows between the series min and max.
func RenderChart(series domain.DisplaySeries, width, height int) string {
	if len(series) == 0 {
		return "no chart data\n"
	}
	if height < 3 {
		height = 3
	}
	if width < 20 {
		width = 20
	}

	min, max := series[0].Price, series[0].Price
	for _, p := range series[1:] {
		if p.Price < min {
			min = p.Price
		}
		if p.Price > max {
			max = p.Price
		}
	}
	span := max - min
	if span == 0 {
		span = 1
	}

	axisWidth := len(formatPrice(max))
	if w := len(formatPrice(min)); w > axisWidth {
		axisWidth = w
	}
	plotWidth := width - axisWidth - 2
	colWidth := plotWidth / len(series)
	if colWidth < 1 {
		colWidth = 1
	}

	// levels[i] is the column height for point i, 1..height
	levels := make([]int, len(series))
	for i, p := range series {
		lvl := int(float64(height-1)*(p.Price-min)/span) + 1
		levels[i] = lvl
	}

	var b strings.Builder
	for row := height; row >= 1; row-- {
		switch row {
		case height:
			fmt.Fprintf(&b, "%*s ", axisWidth, formatPrice(max))
		case 1:
			fmt.Fprintf(&b, "%*s ", axisWidth, formatPrice(min))
		default:
			fmt.Fprintf(&b, "%*s ", axisWidth, "")
		}
		for _, lvl := range levels {
			cell := " "
			if lvl >= row {
				cell = "█"
			}
			b.WriteString(strings.Repeat(cell, colWidth))
		}
		b.WriteString("\n")
	}

	// label row: first and last bucket labels
	first, last := series[0].Label, series[len(series)-1].Label
	gap := colWidth*len(series) - len(first) - len(last)
	if gap < 1 {
		gap = 1
	}
	fmt.Fprintf(&b, "%*s %s%s%s\n", axisWidth, "", first, strings.Repeat(" ", gap), last)
	return b.String()
}
