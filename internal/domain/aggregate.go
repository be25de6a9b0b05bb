package domain

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// crashTimeLayout matches MassDOT "hh:mm AM" times; the hour may be one or two digits.
const crashTimeLayout = "3:04 PM"

// ParseCrashHour extracts the hour of day (0-23) from a CRASH_TIME value.
func ParseCrashHour(s string) (int, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	t, err := time.Parse(crashTimeLayout, v)
	if err != nil {
		return 0, fmt.Errorf("parse crash time %q: %w", s, err)
	}
	return t.Hour(), nil
}

// crashHour returns the crash's hour of day. ok is false when CRASH_TIME is
// blank or malformed; only a malformed value yields an error.
func crashHour(c Crash) (hour int, ok bool, err error) {
	if strings.TrimSpace(c.TimeText) == "" {
		return 0, false, nil
	}
	hour, err = ParseCrashHour(c.TimeText)
	return hour, err == nil, err
}

// Pivot is a zero-filled count table. Rows and Columns are sorted ascending
// and only contain labels present in the source rows.
type Pivot struct {
	Rows    []string
	Columns []string
	Counts  [][]int // Counts[row][column]

	// Unparsed lists crash numbers skipped because their time did not parse.
	Unparsed []string
}

// Empty reports whether the pivot has no cells.
func (p Pivot) Empty() bool {
	return len(p.Rows) == 0 || len(p.Columns) == 0
}

// Total sums every cell.
func (p Pivot) Total() int {
	n := 0
	for _, row := range p.Counts {
		for _, v := range row {
			n += v
		}
	}
	return n
}

// Value returns the count at (row, column), or 0 when either label is absent.
func (p Pivot) Value(row, column string) int {
	i := slices.Index(p.Rows, row)
	j := slices.Index(p.Columns, column)
	if i < 0 || j < 0 {
		return 0
	}
	return p.Counts[i][j]
}

// RowTotal sums one row.
func (p Pivot) RowTotal(i int) int {
	n := 0
	for _, v := range p.Counts[i] {
		n += v
	}
	return n
}

// SeverityByCity counts rows per city/town and severity.
func (t Table) SeverityByCity() Pivot {
	b := newPivotBuilder(cmp.Compare[string], cmp.Compare[string])
	for _, c := range t.crashes {
		if c.City == "" || c.Severity == "" {
			continue
		}
		b.add(c.City, string(c.Severity))
	}
	return b.build()
}

// SeverityByHour counts crashes per hour of day, split by city/town and
// severity pair. Column labels read "CITY / severity". Rows with an empty
// crash number or a blank time are not counted; rows whose time does not
// parse are skipped and listed in Unparsed.
func (t Table) SeverityByHour() Pivot {
	b := newPivotBuilder(compareHourLabels, cmp.Compare[string])
	var unparsed []string
	for _, c := range t.crashes {
		if c.City == "" || c.Severity == "" {
			continue
		}
		hour, ok, err := crashHour(c)
		if err != nil {
			unparsed = append(unparsed, c.Number)
		}
		if !ok || c.Number == "" {
			continue
		}
		b.add(strconv.Itoa(hour), CitySeverityLabel(c.City, c.Severity))
	}
	p := b.build()
	p.Unparsed = unparsed
	return p
}

// CitySeverityLabel names a SeverityByHour column.
func CitySeverityLabel(city string, severity Severity) string {
	return city + " / " + string(severity)
}

// HourCount is the number of crashes in one hour-of-day bucket.
type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// HourlyCounts counts every crash by hour of day, ascending by hour, listing
// only hours that occur. Blank times are missing values and are skipped;
// crash numbers whose time does not parse are returned separately.
func (t Table) HourlyCounts() (counts []HourCount, unparsed []string) {
	byHour := make(map[int]int)
	for _, c := range t.crashes {
		hour, ok, err := crashHour(c)
		if err != nil {
			unparsed = append(unparsed, c.Number)
		}
		if !ok {
			continue
		}
		byHour[hour]++
	}
	counts = make([]HourCount, 0, len(byHour))
	for h, n := range byHour {
		counts = append(counts, HourCount{Hour: h, Count: n})
	}
	slices.SortFunc(counts, func(a, b HourCount) int { return cmp.Compare(a.Hour, b.Hour) })
	return counts, unparsed
}

// CauseCount is one entry of a ranked cause list.
type CauseCount struct {
	Cause string  `json:"cause"`
	Count int     `json:"count"`
	Share float64 `json:"share"` // fraction of all ranked crashes, 0-1
}

// RankCauses counts crashes by manner of collision, descending by count with
// ties broken by name. Rows without a manner are excluded from counts and
// shares.
func (t Table) RankCauses() []CauseCount {
	byCause := make(map[string]int)
	total := 0
	for _, c := range t.crashes {
		if c.CollisionManner == "" {
			continue
		}
		byCause[c.CollisionManner]++
		total++
	}
	out := make([]CauseCount, 0, len(byCause))
	for cause, n := range byCause {
		out = append(out, CauseCount{Cause: cause, Count: n, Share: float64(n) / float64(total)})
	}
	slices.SortFunc(out, func(a, b CauseCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Cause, b.Cause)
	})
	return out
}

// TopCauses returns the first n entries of a ranked list.
func TopCauses(ranked []CauseCount, n int) []CauseCount {
	if n < 0 {
		n = 0
	}
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n:n]
}

type pivotBuilder struct {
	rowCmp, colCmp func(a, b string) int
	counts         map[string]map[string]int
	columns        map[string]struct{}
}

func newPivotBuilder(rowCmp, colCmp func(a, b string) int) *pivotBuilder {
	return &pivotBuilder{
		rowCmp:  rowCmp,
		colCmp:  colCmp,
		counts:  make(map[string]map[string]int),
		columns: make(map[string]struct{}),
	}
}

func (b *pivotBuilder) add(row, column string) {
	r, ok := b.counts[row]
	if !ok {
		r = make(map[string]int)
		b.counts[row] = r
	}
	r[column]++
	b.columns[column] = struct{}{}
}

func (b *pivotBuilder) build() Pivot {
	rows := make([]string, 0, len(b.counts))
	for r := range b.counts {
		rows = append(rows, r)
	}
	slices.SortFunc(rows, b.rowCmp)

	cols := make([]string, 0, len(b.columns))
	for c := range b.columns {
		cols = append(cols, c)
	}
	slices.SortFunc(cols, b.colCmp)

	counts := make([][]int, len(rows))
	for i, r := range rows {
		counts[i] = make([]int, len(cols))
		for j, c := range cols {
			counts[i][j] = b.counts[r][c]
		}
	}
	return Pivot{Rows: rows, Columns: cols, Counts: counts}
}

func compareHourLabels(a, b string) int {
	ha, _ := strconv.Atoi(a)
	hb, _ := strconv.Atoi(b)
	return cmp.Compare(ha, hb)
}
