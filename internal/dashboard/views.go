package dashboard

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/couchcryptid/crash-zone-dashboard/internal/domain"
)

// MapPoint is one plotted crash with its tooltip text.
type MapPoint struct {
	Number      string  `json:"crash_number"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Location    string  `json:"location"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	Weather     string  `json:"weather"`
	Vehicles    int     `json:"vehicles"`
	Severity    string  `json:"severity"`
	Description string  `json:"description"`
}

// MapView is the crash map section.
type MapView struct {
	CountyOptions []string         `json:"county_options"`
	Selected      string           `json:"selected"`
	Points        []MapPoint       `json:"points"`
	ViewState     domain.ViewState `json:"view_state"`
	GeneratedAt   time.Time        `json:"generated_at"`
}

// CrashMap filters by county, drops rows missing any tooltip field and
// centers the map on the remaining points. An empty or unknown county
// behaves as AllCounties.
func (d *Dashboard) CrashMap(ctx context.Context, county string) (MapView, error) {
	start := time.Now()
	t, err := d.current()
	if err != nil {
		return MapView{}, err
	}

	options := domain.CountyOptions(t)
	if !slices.Contains(options, county) {
		county = domain.AllCounties
	}

	mappable := t.FilterCounty(county).Mappable().Crashes()
	points := make([]MapPoint, len(mappable))
	for i, c := range mappable {
		points[i] = newMapPoint(c)
	}

	view := MapView{
		CountyOptions: options,
		Selected:      county,
		Points:        points,
		ViewState:     domain.ComputeViewState(mappable),
		GeneratedAt:   domain.Now(),
	}
	d.observe(ctx, domain.ViewCrashMap, start, map[string][]string{"county": {county}}, len(points))
	return view, nil
}

func newMapPoint(c domain.Crash) MapPoint {
	vehicles := 0
	if c.Vehicles != nil {
		vehicles = *c.Vehicles
	}
	return MapPoint{
		Number:      c.Number,
		Lat:         c.Geo.Lat,
		Lon:         c.Geo.Lon,
		Location:    domain.RecordAddress(c),
		Date:        c.DateText,
		Time:        c.TimeText,
		Weather:     c.Weather,
		Vehicles:    vehicles,
		Severity:    string(c.Severity),
		Description: c.CollisionManner,
	}
}

// SeverityView is the severity analysis section.
type SeverityView struct {
	CityOptions     []string
	SeverityOptions []domain.Severity
	Selection       domain.Selection
	Rows            int
	ByCity          domain.Pivot
	ByHour          domain.Pivot
	Hourly          []domain.HourCount
	GeneratedAt     time.Time
}

// ResolveSelection turns raw multi-select values into a Selection. Before the
// form is submitted the defaults apply; afterwards the choice is taken as is,
// so clearing a list selects nothing.
func (d *Dashboard) ResolveSelection(cities, severities []string, submitted bool) domain.Selection {
	if submitted {
		return domain.Selection{
			Cities:     nonEmpty(cities),
			Severities: domain.ParseSeverities(severities),
		}
	}
	var options []string
	if t, err := d.current(); err == nil {
		options = t.Cities()
	}
	return domain.NewSelection(domain.DefaultCities(options, d.opts.DefaultCities))
}

// SeverityAnalysis builds the severity-by-city and severity-by-hour pivots for
// the selection, plus the overall hourly counts over the whole table.
func (d *Dashboard) SeverityAnalysis(ctx context.Context, sel domain.Selection) (SeverityView, error) {
	start := time.Now()
	t, err := d.current()
	if err != nil {
		return SeverityView{}, err
	}

	filtered := t.FilterSelection(sel)
	byHour := filtered.SeverityByHour()
	hourly, _ := t.HourlyCounts()

	view := SeverityView{
		CityOptions:     t.Cities(),
		SeverityOptions: domain.SeverityOptions(),
		Selection:       sel,
		Rows:            filtered.Len(),
		ByCity:          filtered.SeverityByCity(),
		ByHour:          byHour,
		Hourly:          hourly,
		GeneratedAt:     domain.Now(),
	}
	filters := map[string][]string{
		"city":     sel.Cities,
		"severity": severityStrings(sel.Severities),
	}
	d.observe(ctx, domain.ViewSeverityAnalysis, start, filters, filtered.Len())
	return view, nil
}

// CausesView is the crash causes section.
type CausesView struct {
	All          []domain.CauseCount
	Top          []domain.CauseCount
	TopN         int
	CityOptions  []string
	SelectedCity string
	ByCity       []domain.CauseCount
	GeneratedAt  time.Time
}

// CityTitle is the heading of the per-city pie chart.
func (v CausesView) CityTitle() string {
	return CityCausesTitle(v.SelectedCity)
}

// CityCausesTitle names the cause breakdown for one city/town.
func CityCausesTitle(city string) string {
	return "Proportion of Different Crash Causes in " + city
}

// CrashCauses ranks causes over the whole table and for one city/town. An
// empty city selects the first city option.
func (d *Dashboard) CrashCauses(ctx context.Context, city string) (CausesView, error) {
	start := time.Now()
	t, err := d.current()
	if err != nil {
		return CausesView{}, err
	}

	options := t.Cities()
	if city == "" && len(options) > 0 {
		city = options[0]
	}
	all := t.RankCauses()
	cityTable := t.FilterCity(city)

	view := CausesView{
		All:          all,
		Top:          domain.TopCauses(all, d.opts.TopCauses),
		TopN:         d.opts.TopCauses,
		CityOptions:  options,
		SelectedCity: city,
		ByCity:       cityTable.RankCauses(),
		GeneratedAt:  domain.Now(),
	}
	d.observe(ctx, domain.ViewCrashCauses, start, map[string][]string{"city": {city}}, cityTable.Len())
	return view, nil
}

// PlaceDetails reverse geocodes one crash for the map tooltip. A crash
// without coordinates answers with its record address.
func (d *Dashboard) PlaceDetails(ctx context.Context, number string) (domain.CrashPlace, error) {
	t, err := d.current()
	if err != nil {
		return domain.CrashPlace{}, err
	}
	if d.opts.Geocoder == nil {
		return domain.CrashPlace{}, ErrGeocodingDisabled
	}
	c, ok := t.Find(number)
	if !ok {
		return domain.CrashPlace{}, fmt.Errorf("crash %s: %w", number, ErrCrashNotFound)
	}

	place, err := domain.LocateCrash(ctx, c, d.opts.Geocoder)
	if errors.Is(err, domain.ErrNoCoordinates) {
		return place, nil
	}
	return place, err
}

func severityStrings(s []domain.Severity) []string {
	out := make([]string, len(s))
	for i, v := range s {
		out[i] = string(v)
	}
	return out
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
