package domain

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoCoordinates is returned when a crash has no usable latitude/longitude.
var ErrNoCoordinates = errors.New("crash has no coordinates")

// PlaceSource values report where a CrashPlace came from.
const (
	PlaceSourceReverse = "reverse"
	PlaceSourceRecord  = "record"
)

// CrashPlace describes where a crash happened, for the map tooltip.
type CrashPlace struct {
	CrashNumber      string  `json:"crash_number"`
	Address          string  `json:"address"`
	FormattedAddress string  `json:"formatted_address,omitempty"`
	PlaceName        string  `json:"place_name,omitempty"`
	Confidence       float64 `json:"confidence,omitempty"`
	Source           string  `json:"source"`
}

// RecordAddress formats the street address carried by the record itself,
// e.g. "12 MAIN ST, BOSTON".
func RecordAddress(c Crash) string {
	street := c.StreetName
	if c.StreetNumber != "" {
		street = c.StreetNumber + " " + street
	}
	switch {
	case street == "":
		return c.City
	case c.City == "":
		return street
	default:
		return street + ", " + c.City
	}
}

// LocateCrash reverse geocodes the crash coordinates. An empty provider
// answer falls back to the record's own address.
func LocateCrash(ctx context.Context, c Crash, geocoder Geocoder) (CrashPlace, error) {
	place := CrashPlace{
		CrashNumber: c.Number,
		Address:     RecordAddress(c),
		Source:      PlaceSourceRecord,
	}
	if !c.Geo.Valid() {
		return place, ErrNoCoordinates
	}

	result, err := geocoder.ReverseGeocode(ctx, c.Geo.Lat, c.Geo.Lon)
	if err != nil {
		return place, fmt.Errorf("reverse geocode crash %s: %w", c.Number, err)
	}
	if result.FormattedAddress == "" {
		return place, nil
	}
	place.FormattedAddress = result.FormattedAddress
	place.PlaceName = result.PlaceName
	place.Confidence = result.Confidence
	place.Source = PlaceSourceReverse
	return place, nil
}
