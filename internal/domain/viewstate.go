package domain

import "gonum.org/v1/gonum/stat"

const (
	// MapZoom and MapPitch frame a single city's worth of crashes.
	MapZoom  = 12
	MapPitch = 0

	fallbackZoom = 8
)

// massachusettsCenter is shown when no crash can be plotted.
var massachusettsCenter = Geo{Lat: 42.2596, Lon: -71.8083}

// ViewState is the initial camera of the crash map.
type ViewState struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Zoom      int     `json:"zoom"`
	Pitch     int     `json:"pitch"`
	Empty     bool    `json:"empty"`
}

// ComputeViewState centers the map on the mean coordinate of the crashes.
func ComputeViewState(crashes []Crash) ViewState {
	lats := make([]float64, 0, len(crashes))
	lons := make([]float64, 0, len(crashes))
	for _, c := range crashes {
		if !c.Geo.Valid() {
			continue
		}
		lats = append(lats, c.Geo.Lat)
		lons = append(lons, c.Geo.Lon)
	}
	if len(lats) == 0 {
		return ViewState{
			Latitude:  massachusettsCenter.Lat,
			Longitude: massachusettsCenter.Lon,
			Zoom:      fallbackZoom,
			Pitch:     MapPitch,
			Empty:     true,
		}
	}
	return ViewState{
		Latitude:  stat.Mean(lats, nil),
		Longitude: stat.Mean(lons, nil),
		Zoom:      MapZoom,
		Pitch:     MapPitch,
	}
}
