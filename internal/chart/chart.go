// Package chart renders dashboard views as SVG using go-chart.
package chart

import (
	"errors"
	"fmt"
	"html"
	"io"
	"strconv"

	"github.com/couchcryptid/crash-zone-dashboard/internal/domain"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("no data to chart")

// Chart titles.
const (
	TitleSeverityByCity = "Number of Crashes by City/Town and Severity"
	TitleSeverityByHour = "Crash Frequency by Hour and City/Town"
	TitleHourly         = "Overall Crash Frequency by Hour"
	TitleCauses         = "Proportion of Different Crash Causes"
)

const (
	barWidth   = 40
	barSpacing = 24
	minWidth   = 640
	height     = 480
)

// LegendEntry pairs a series label with its fill color for HTML legends.
type LegendEntry struct {
	Label string
	Color string // #rrggbb
}

// SeverityByCity draws one stacked bar per city/town, segmented by severity.
func SeverityByCity(w io.Writer, p domain.Pivot) error {
	if p.Empty() || p.Total() == 0 {
		return ErrNoData
	}
	colors := make([]string, len(p.Columns))
	for j, sev := range p.Columns {
		colors[j] = SeverityColor(domain.Severity(sev))
	}

	c := stackedChart(TitleSeverityByCity, p, p.Rows, colors)
	c.XAxis.TextRotationDegrees = 45
	return render(w, c)
}

// SeverityByHour draws one stacked bar per hour of day, segmented by
// city/town and severity pair.
func SeverityByHour(w io.Writer, p domain.Pivot) error {
	if p.Empty() || p.Total() == 0 {
		return ErrNoData
	}
	colors := make([]string, len(p.Columns))
	for j := range p.Columns {
		colors[j] = SeriesColor(j)
	}
	return render(w, stackedChart(TitleSeverityByHour, p, p.Rows, colors))
}

// Legend returns the legend entries matching SeverityByCity (bySeverity) or
// SeverityByHour colors.
func Legend(p domain.Pivot, bySeverity bool) []LegendEntry {
	out := make([]LegendEntry, len(p.Columns))
	for j, col := range p.Columns {
		color := SeriesColor(j)
		if bySeverity {
			color = SeverityColor(domain.Severity(col))
		}
		out[j] = LegendEntry{Label: col, Color: color}
	}
	return out
}

// HourlyLine draws the overall crash count per hour as a line over 0-23.
func HourlyLine(w io.Writer, counts []domain.HourCount) error {
	if len(counts) == 0 {
		return ErrNoData
	}
	xs := make([]float64, len(counts))
	ys := make([]float64, len(counts))
	maxY := 1.0
	for i, hc := range counts {
		xs[i] = float64(hc.Hour)
		ys[i] = float64(hc.Count)
		maxY = max(maxY, ys[i])
	}

	ticks := make([]gochart.Tick, 0, 24)
	for h := 0; h < 24; h += 2 {
		ticks = append(ticks, gochart.Tick{Value: float64(h), Label: strconv.Itoa(h)})
	}

	line := drawing.ColorFromHex(SeriesColor(0)[1:])
	c := gochart.Chart{
		Title:      TitleHourly,
		Width:      minWidth + 160,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 48, Left: 24, Right: 24, Bottom: 24}},
		XAxis: gochart.XAxis{
			Name:  "Hour of the Day",
			Range: &gochart.ContinuousRange{Min: 0, Max: 23},
			Ticks: ticks,
		},
		YAxis: gochart.YAxis{
			Name:           "Number of Crashes",
			Range:          &gochart.ContinuousRange{Min: 0, Max: maxY * 1.1},
			ValueFormatter: intFormatter,
		},
		Series: []gochart.Series{
			gochart.ContinuousSeries{
				Name:    "Crashes",
				XValues: xs,
				YValues: ys,
				Style: gochart.Style{
					StrokeColor: line,
					StrokeWidth: 2,
					DotColor:    line,
					DotWidth:    3,
				},
			},
		},
	}
	if err := c.Render(gochart.SVG, w); err != nil {
		return fmt.Errorf("render %s: %w", TitleHourly, err)
	}
	return nil
}

// CausePie draws cause proportions with "label 12.3%" slice labels.
func CausePie(w io.Writer, title string, causes []domain.CauseCount) error {
	values := make([]gochart.Value, 0, len(causes))
	for i, c := range causes {
		if c.Count == 0 {
			continue
		}
		values = append(values, gochart.Value{
			Label: svgText(fmt.Sprintf("%s %.1f%%", c.Cause, c.Share*100)),
			Value: float64(c.Count),
			Style: gochart.Style{FillColor: drawing.ColorFromHex(SeriesColor(i)[1:])},
		})
	}
	if len(values) == 0 {
		return ErrNoData
	}

	pie := gochart.PieChart{
		Title:  svgText(title),
		Width:  720,
		Height: 720,
		Values: values,
	}
	if err := pie.Render(gochart.SVG, w); err != nil {
		return fmt.Errorf("render %s: %w", title, err)
	}
	return nil
}

func stackedChart(title string, p domain.Pivot, rowLabels []string, colors []string) gochart.StackedBarChart {
	bars := make([]gochart.StackedBar, len(rowLabels))
	for i, label := range rowLabels {
		values := make([]gochart.Value, 0, len(p.Columns))
		for j, col := range p.Columns {
			if p.Counts[i][j] == 0 {
				continue
			}
			values = append(values, gochart.Value{
				Label: svgText(col),
				Value: float64(p.Counts[i][j]),
				Style: gochart.Style{
					FillColor:   drawing.ColorFromHex(colors[j][1:]),
					StrokeColor: drawing.ColorWhite,
					StrokeWidth: 1,
				},
			})
		}
		bars[i] = gochart.StackedBar{Name: svgText(label), Width: barWidth, Values: values}
	}

	return gochart.StackedBarChart{
		Title:      title,
		Width:      max(minWidth, len(bars)*(barWidth+barSpacing)+160),
		Height:     height,
		BarSpacing: barSpacing,
		Background: gochart.Style{Padding: gochart.Box{Top: 48, Left: 24, Right: 24, Bottom: 64}},
		Bars:       bars,
	}
}

func render(w io.Writer, c gochart.StackedBarChart) error {
	if err := c.Render(gochart.SVG, w); err != nil {
		return fmt.Errorf("render %s: %w", c.Title, err)
	}
	return nil
}

// svgText escapes a label for an SVG <text> body; go-chart writes text
// verbatim.
func svgText(s string) string {
	return html.EscapeString(s)
}

func intFormatter(v any) string {
	if f, ok := v.(float64); ok {
		return strconv.Itoa(int(f))
	}
	return ""
}
