// Package csvfile loads the MassDOT crash export into a domain.Table.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/crash-zone-dashboard/internal/domain"
)

// Source column names in the MassDOT export.
const (
	colNumber       = "CRASH_NUMB"
	colCity         = "CITY_TOWN_NAME"
	colCounty       = "CNTY_NAME"
	colDate         = "CRASH_DATE_TEXT"
	colTime         = "CRASH_TIME"
	colStatus       = "CRASH_STATUS"
	colSeverity     = "CRASH_SEVERITY_DESCR"
	colVehicles     = "NUMB_VEHC"
	colWeather      = "WEATH_COND_DESCR"
	colManner       = "MANR_COLL_DESCR"
	colLat          = "LAT"
	colLon          = "LON"
	colStreetName   = "STREETNAME"
	colStreetNumber = "STREET_NUMB"
)

// RequiredColumns lists every column the loader reads.
var RequiredColumns = []string{
	colNumber, colCity, colCounty, colDate, colTime, colStatus, colSeverity,
	colVehicles, colWeather, colManner, colLat, colLon, colStreetName, colStreetNumber,
}

// ErrMissingColumn is returned when the header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// Load reads the crash file at path.
func Load(ctx context.Context, path string) (domain.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Table{}, fmt.Errorf("open crash data: %w", err)
	}
	defer f.Close()

	tbl, err := Parse(ctx, f)
	if err != nil {
		return domain.Table{}, fmt.Errorf("load %s: %w", path, err)
	}
	return tbl, nil
}

// Parse reads a crash CSV stream. Cells that fail numeric parsing load as
// absent values; no other cleaning is applied.
func Parse(ctx context.Context, r io.Reader) (domain.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		return domain.Table{}, fmt.Errorf("read header: %w", err)
	}
	idx, err := indexColumns(header)
	if err != nil {
		return domain.Table{}, err
	}

	var crashes []domain.Crash
	for line := 2; ; line++ {
		if line%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return domain.Table{}, err
			}
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.Table{}, fmt.Errorf("read line %d: %w", line, err)
		}
		crashes = append(crashes, idx.crash(row))
	}

	return domain.NewTable(crashes), nil
}

type columnIndex map[string]int

func indexColumns(header []string) (columnIndex, error) {
	idx := make(columnIndex, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		idx[h] = i
	}
	for _, col := range RequiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}
	return idx, nil
}

func (idx columnIndex) get(row []string, col string) string {
	i := idx[col]
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (idx columnIndex) crash(row []string) domain.Crash {
	return domain.Crash{
		Number:          idx.get(row, colNumber),
		City:            idx.get(row, colCity),
		County:          idx.get(row, colCounty),
		DateText:        idx.get(row, colDate),
		TimeText:        idx.get(row, colTime),
		Status:          idx.get(row, colStatus),
		Severity:        domain.Severity(idx.get(row, colSeverity)),
		Vehicles:        parseOptionalInt(idx.get(row, colVehicles)),
		Weather:         idx.get(row, colWeather),
		CollisionManner: idx.get(row, colManner),
		Geo: domain.Geo{
			Lat: parseFloatOrZero(idx.get(row, colLat)),
			Lon: parseFloatOrZero(idx.get(row, colLon)),
		},
		StreetName:   idx.get(row, colStreetName),
		StreetNumber: idx.get(row, colStreetNumber),
	}
}

// parseFloatOrZero parses a string as float64, returning 0 on failure.
func parseFloatOrZero(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseOptionalInt accepts "2" as well as the "2.0" that float-typed
// exports write for columns with blanks.
func parseOptionalInt(s string) *int {
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return &n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	n := int(f)
	return &n
}
