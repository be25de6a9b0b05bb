// Command crashsummary prints the dashboard aggregations for a crash CSV to
// the terminal, and optionally writes the dashboard charts as SVG files.
//
// Usage:
//
//	go run ./cmd/crashsummary \
//	  -csv data/2017_Crashes_10000_sample.csv \
//	  -cities BOSTON,WALTHAM \
//	  -severities "Non-fatal injury,Fatal injury" \
//	  -svg-dir out/charts
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/couchcryptid/crash-zone-dashboard/internal/adapter/csvfile"
	"github.com/couchcryptid/crash-zone-dashboard/internal/chart"
	"github.com/couchcryptid/crash-zone-dashboard/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

type options struct {
	csvPath    string
	cities     []string
	severities []domain.Severity
	top        int
	svgDir     string
}

func main() {
	csvPath := flag.String("csv", "data/2017_Crashes_10000_sample.csv", "path to the crash CSV")
	cities := flag.String("cities", "BOSTON,WALTHAM", "comma-separated cities/towns for the severity tables")
	severities := flag.String("severities", string(domain.SeverityNonFatal), "comma-separated severities for the severity tables")
	top := flag.Int("top", 3, "number of top crash causes to list")
	svgDir := flag.String("svg-dir", "", "if set, write the dashboard charts as SVG files into this directory")
	flag.Parse()

	opts := options{
		csvPath:    *csvPath,
		cities:     sharedcfg.ParseBrokers(*cities),
		severities: domain.ParseSeverities(sharedcfg.ParseBrokers(*severities)),
		top:        *top,
		svgDir:     *svgDir,
	}
	if err := run(context.Background(), os.Stdout, opts); err != nil {
		fmt.Fprintln(os.Stderr, "crashsummary:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, out io.Writer, opts options) error {
	table, err := csvfile.Load(ctx, opts.csvPath)
	if err != nil {
		return err
	}

	// Flags are taken as given: an empty list selects nothing.
	sel := domain.Selection{
		Cities:     domain.DefaultCities(table.Cities(), opts.cities),
		Severities: opts.severities,
	}
	filtered := table.FilterSelection(sel)
	byCity := filtered.SeverityByCity()
	byHour := filtered.SeverityByHour()
	hourly, unparsed := table.HourlyCounts()
	ranked := table.RankCauses()
	top := domain.TopCauses(ranked, opts.top)

	fmt.Fprintf(out, "Massachusetts Crashes in 2017: %d records, %d counties, %d cities/towns\n",
		table.Len(), len(table.Counties()), len(table.Cities()))
	if len(unparsed) > 0 {
		fmt.Fprintf(out, "skipped %d records with unparseable CRASH_TIME\n", len(unparsed))
	}

	section(out, chart.TitleSeverityByCity)
	if err := writePivot(out, "CITY_TOWN_NAME", byCity); err != nil {
		return err
	}

	section(out, chart.TitleSeverityByHour)
	if err := writePivot(out, "CRASH_HOUR", byHour); err != nil {
		return err
	}

	section(out, chart.TitleHourly)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CRASH_HOUR\tcount")
	for _, hc := range hourly {
		fmt.Fprintf(tw, "%d\t%d\n", hc.Hour, hc.Count)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	section(out, "All Crash Causes")
	if err := writeCauses(out, ranked); err != nil {
		return err
	}

	section(out, fmt.Sprintf("Top %d Crash Causes", opts.top))
	if err := writeCauses(out, top); err != nil {
		return err
	}

	if opts.svgDir == "" {
		return nil
	}
	return writeCharts(opts.svgDir, byCity, byHour, hourly, ranked)
}

func section(out io.Writer, title string) {
	fmt.Fprintf(out, "\n== %s ==\n", title)
}

func writePivot(out io.Writer, rowHeader string, p domain.Pivot) error {
	if p.Empty() {
		fmt.Fprintln(out, "(no matching crashes)")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\ttotal\n", rowHeader, strings.Join(p.Columns, "\t"))
	for i, row := range p.Rows {
		cells := make([]string, len(p.Columns))
		for j := range p.Columns {
			cells[j] = fmt.Sprint(p.Counts[i][j])
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\n", row, strings.Join(cells, "\t"), p.RowTotal(i))
	}
	return tw.Flush()
}

func writeCauses(out io.Writer, causes []domain.CauseCount) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MANR_COLL_DESCR\tcount\tshare")
	for _, c := range causes {
		fmt.Fprintf(tw, "%s\t%d\t%.1f%%\n", c.Cause, c.Count, c.Share*100)
	}
	return tw.Flush()
}

func writeCharts(dir string, byCity, byHour domain.Pivot, hourly []domain.HourCount, ranked []domain.CauseCount) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create chart dir: %w", err)
	}
	charts := map[string]func(io.Writer) error{
		"severity-by-city.svg": func(w io.Writer) error { return chart.SeverityByCity(w, byCity) },
		"severity-by-hour.svg": func(w io.Writer) error { return chart.SeverityByHour(w, byHour) },
		"hourly.svg":           func(w io.Writer) error { return chart.HourlyLine(w, hourly) },
		"causes.svg":           func(w io.Writer) error { return chart.CausePie(w, chart.TitleCauses, ranked) },
	}
	for name, draw := range charts {
		if err := writeChart(filepath.Join(dir, name), draw); err != nil {
			return err
		}
	}
	return nil
}

func writeChart(path string, draw func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := draw(&buf); err != nil {
		if errors.Is(err, chart.ErrNoData) {
			fmt.Fprintf(os.Stderr, "skipping %s: %v\n", filepath.Base(path), err)
			return nil
		}
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
