package chart

import "github.com/couchcryptid/crash-zone-dashboard/internal/domain"

// Palette is the categorical color cycle shared by charts and HTML legends.
var Palette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

var severityColors = map[domain.Severity]string{
	domain.SeverityNonFatal:       "#ff7f0e",
	domain.SeverityFatal:          "#d62728",
	domain.SeverityPropertyDamage: "#1f77b4",
}

// SeriesColor returns the palette color for series i, cycling.
func SeriesColor(i int) string {
	if i < 0 {
		i = -i
	}
	return Palette[i%len(Palette)]
}

// SeverityColor returns a stable color for a severity level. Values outside
// the known levels share a neutral gray.
func SeverityColor(s domain.Severity) string {
	if c, ok := severityColors[s]; ok {
		return c
	}
	return "#7f7f7f"
}
