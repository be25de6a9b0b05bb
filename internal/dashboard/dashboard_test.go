package dashboard_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/crash-zone-dashboard/internal/dashboard"
	"github.com/couchcryptid/crash-zone-dashboard/internal/domain"
	"github.com/couchcryptid/crash-zone-dashboard/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockPublisher struct {
	mu     sync.Mutex
	events []domain.ViewEvent
	err    error
}

func (m *mockPublisher) Publish(_ context.Context, events ...domain.ViewEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, events...)
	return nil
}

type mockGeocoder struct {
	result domain.GeocodingResult
	err    error
	calls  int
}

func (m *mockGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (domain.GeocodingResult, error) {
	m.calls++
	return m.result, m.err
}

func intPtr(n int) *int { return &n }

func crash(number, city, county, timeText string, sev domain.Severity, manner string, lat, lon float64) domain.Crash {
	return domain.Crash{
		Number:          number,
		City:            city,
		County:          county,
		DateText:        "2017-03-14",
		TimeText:        timeText,
		Status:          "Closed",
		Severity:        sev,
		Vehicles:        intPtr(2),
		Weather:         "Clear",
		CollisionManner: manner,
		Geo:             domain.Geo{Lat: lat, Lon: lon},
		StreetName:      "MAIN ST",
		StreetNumber:    "12",
	}
}

func sampleTable() domain.Table {
	noVehicles := crash("6", "WALTHAM", "MIDDLESEX", "05:59 PM", domain.SeverityNonFatal, "Angle", 42.37, -71.23)
	noVehicles.Vehicles = nil
	return domain.NewTable([]domain.Crash{
		crash("1", "BOSTON", "SUFFOLK", "08:15 AM", domain.SeverityNonFatal, "Rear-end", 42.36, -71.06),
		crash("2", "BOSTON", "SUFFOLK", "05:40 PM", domain.SeverityPropertyDamage, "Angle", 42.34, -71.08),
		crash("3", "WALTHAM", "MIDDLESEX", "05:05 PM", domain.SeverityNonFatal, "Rear-end", 42.38, -71.24),
		crash("4", "CAMBRIDGE", "MIDDLESEX", "12:30 AM", domain.SeverityFatal, "Single vehicle crash", 42.37, -71.11),
		crash("5", "WORCESTER", "WORCESTER", "late", domain.SeverityNonFatal, "Rear-end", 0, 0),
		noVehicles,
	})
}

func newTestDashboard(opts dashboard.Options) (*dashboard.Dashboard, *observability.Metrics) {
	if opts.DefaultCities == nil {
		opts.DefaultCities = []string{"BOSTON", "WALTHAM"}
	}
	metrics := observability.NewMetricsForTesting()
	d := dashboard.New(opts, slog.New(slog.NewTextHandler(io.Discard, nil)), metrics)
	d.Attach(sampleTable())
	return d, metrics
}

// --- tests ---

func TestDashboard_NotReadyUntilAttached(t *testing.T) {
	d := dashboard.New(dashboard.Options{}, slog.Default(), observability.NewMetricsForTesting())
	ctx := context.Background()

	require.ErrorIs(t, d.CheckReadiness(ctx), dashboard.ErrNotReady)
	_, err := d.CrashMap(ctx, domain.AllCounties)
	require.ErrorIs(t, err, dashboard.ErrNotReady)
	_, err = d.CrashCauses(ctx, "")
	require.ErrorIs(t, err, dashboard.ErrNotReady)

	d.Attach(sampleTable())
	require.NoError(t, d.CheckReadiness(ctx))
}

func TestDashboard_Attach_SetsRecordsGauge(t *testing.T) {
	_, metrics := newTestDashboard(dashboard.Options{})
	assert.InDelta(t, 6, testutil.ToFloat64(metrics.RecordsLoaded), 0)
}

func TestMenu_Order(t *testing.T) {
	d, _ := newTestDashboard(dashboard.Options{})
	menu := d.Menu()
	require.Len(t, menu, 3)
	assert.Equal(t, "Crash Map", menu[0].Label)
	assert.Equal(t, "car-front", menu[0].Icon)
	assert.Equal(t, "Crash Severity Analysis", menu[1].Label)
	assert.Equal(t, "bar-chart", menu[1].Icon)
	assert.Equal(t, "Crash Causes", menu[2].Label)
	assert.Equal(t, "pie-chart", menu[2].Icon)

	assert.Equal(t, "/causes", d.MenuItemFor("/causes").Path)
	assert.Equal(t, "/map", d.MenuItemFor("/nowhere").Path)
}

func TestCrashMap_AllCountiesDropsIncompleteRows(t *testing.T) {
	d, metrics := newTestDashboard(dashboard.Options{})
	view, err := d.CrashMap(context.Background(), domain.AllCounties)
	require.NoError(t, err)

	assert.Equal(t, domain.AllCounties, view.Selected)
	assert.Equal(t, []string{domain.AllCounties, "SUFFOLK", "MIDDLESEX", "WORCESTER"}, view.CountyOptions)
	// Crash 5 has no coordinates and crash 6 no vehicle count.
	require.Len(t, view.Points, 4)
	assert.Equal(t, "12 MAIN ST, BOSTON", view.Points[0].Location)
	assert.Equal(t, 2, view.Points[0].Vehicles)
	assert.Equal(t, "Rear-end", view.Points[0].Description)
	assert.Equal(t, domain.MapZoom, view.ViewState.Zoom)
	assert.False(t, view.ViewState.Empty)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.ViewRenders.WithLabelValues(domain.ViewCrashMap)), 0)
}

func TestCrashMap_County(t *testing.T) {
	d, _ := newTestDashboard(dashboard.Options{})
	view, err := d.CrashMap(context.Background(), "SUFFOLK")
	require.NoError(t, err)

	require.Len(t, view.Points, 2)
	assert.InDelta(t, 42.35, view.ViewState.Latitude, 1e-9)
	assert.InDelta(t, -71.07, view.ViewState.Longitude, 1e-9)
}

func TestCrashMap_NoPlottableRowsFallsBack(t *testing.T) {
	d, _ := newTestDashboard(dashboard.Options{})
	view, err := d.CrashMap(context.Background(), "WORCESTER")
	require.NoError(t, err)

	assert.Empty(t, view.Points)
	assert.True(t, view.ViewState.Empty)
}

func TestCrashMap_UnknownCountyShowsAll(t *testing.T) {
	d, _ := newTestDashboard(dashboard.Options{})
	view, err := d.CrashMap(context.Background(), "ATLANTIS")
	require.NoError(t, err)
	assert.Equal(t, domain.AllCounties, view.Selected)
	assert.Len(t, view.Points, 4)
}

func TestResolveSelection(t *testing.T) {
	d, _ := newTestDashboard(dashboard.Options{DefaultCities: []string{"BOSTON", "SPRINGFIELD", "WALTHAM"}})

	initial := d.ResolveSelection(nil, nil, false)
	assert.Equal(t, []string{"BOSTON", "WALTHAM"}, initial.Cities)
	assert.Equal(t, []domain.Severity{domain.SeverityNonFatal}, initial.Severities)

	cleared := d.ResolveSelection(nil, nil, true)
	assert.Empty(t, cleared.Cities)
	assert.Empty(t, cleared.Severities)

	chosen := d.ResolveSelection([]string{"CAMBRIDGE", ""}, []string{"Fatal injury", "bogus"}, true)
	assert.Equal(t, []string{"CAMBRIDGE"}, chosen.Cities)
	assert.Equal(t, []domain.Severity{domain.SeverityFatal}, chosen.Severities)
}

func TestSeverityAnalysis_PivotSumsMatchFilteredRows(t *testing.T) {
	d, _ := newTestDashboard(dashboard.Options{})
	sel := domain.NewSelection([]string{"BOSTON", "WALTHAM"}, domain.SeverityNonFatal, domain.SeverityPropertyDamage)

	view, err := d.SeverityAnalysis(context.Background(), sel)
	require.NoError(t, err)

	assert.Equal(t, 4, view.Rows)
	assert.Equal(t, view.Rows, view.ByCity.Total())
	assert.Equal(t, []string{"BOSTON", "WALTHAM"}, view.ByCity.Rows)
	assert.Equal(t, 2, view.ByCity.Value("WALTHAM", string(domain.SeverityNonFatal)))
	assert.Equal(t, view.Rows, view.ByHour.Total())
	assert.Equal(t, domain.SeverityOptions(), view.SeverityOptions)
}

func TestSeverityAnalysis_UnparseableTimesCounted(t *testing.T) {
	d, metrics := newTestDashboard(dashboard.Options{})
	sel := domain.NewSelection([]string{"WORCESTER"})

	view, err := d.SeverityAnalysis(context.Background(), sel)
	require.NoError(t, err)

	assert.Equal(t, 1, view.Rows)
	assert.True(t, view.ByHour.Empty())
	assert.Equal(t, []string{"5"}, view.ByHour.Unparsed)

	_, err = d.SeverityAnalysis(context.Background(), sel)
	require.NoError(t, err)
	// Reported once when the table is attached, not on every render.
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.UnparseableTimes), 0)

	total := 0
	for _, hc := range view.Hourly {
		total += hc.Count
	}
	assert.Equal(t, 5, total)
}

func TestAttach_BlankTimesNotReported(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	d := dashboard.New(dashboard.Options{}, slog.New(slog.NewTextHandler(io.Discard, nil)), metrics)
	d.Attach(domain.NewTable([]domain.Crash{
		crash("1", "BOSTON", "SUFFOLK", "08:15 AM", domain.SeverityNonFatal, "Rear-end", 42.36, -71.06),
		crash("2", "BOSTON", "SUFFOLK", "", domain.SeverityNonFatal, "Angle", 42.34, -71.08),
	}))

	assert.Zero(t, testutil.ToFloat64(metrics.UnparseableTimes))

	view, err := d.SeverityAnalysis(context.Background(), domain.NewSelection([]string{"BOSTON"}))
	require.NoError(t, err)
	assert.Equal(t, 2, view.Rows)
	assert.Equal(t, 1, view.ByHour.Total())
	assert.Empty(t, view.ByHour.Unparsed)
}

func TestSeverityAnalysis_EmptySelection(t *testing.T) {
	d, _ := newTestDashboard(dashboard.Options{})
	view, err := d.SeverityAnalysis(context.Background(), domain.Selection{})
	require.NoError(t, err)
	assert.Zero(t, view.Rows)
	assert.True(t, view.ByCity.Empty())
}

func TestCrashCauses_TopIsPrefixOfRanking(t *testing.T) {
	d, _ := newTestDashboard(dashboard.Options{TopCauses: 2})
	view, err := d.CrashCauses(context.Background(), "")
	require.NoError(t, err)

	require.Len(t, view.Top, 2)
	assert.Equal(t, view.All[:2], view.Top)
	assert.Equal(t, "Rear-end", view.All[0].Cause)
	for i := 1; i < len(view.All); i++ {
		assert.GreaterOrEqual(t, view.All[i-1].Count, view.All[i].Count)
	}
	assert.Equal(t, "BOSTON", view.SelectedCity)
	assert.Equal(t, "Proportion of Different Crash Causes in BOSTON", view.CityTitle())
}

func TestCrashCauses_City(t *testing.T) {
	d, _ := newTestDashboard(dashboard.Options{})
	view, err := d.CrashCauses(context.Background(), "WALTHAM")
	require.NoError(t, err)

	assert.Equal(t, 3, view.TopN)
	require.Len(t, view.ByCity, 2)
	assert.InDelta(t, 0.5, view.ByCity[0].Share, 1e-9)
}

func TestViews_PublishEvents(t *testing.T) {
	fc := clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	domain.SetClock(fc)
	t.Cleanup(func() { domain.SetClock(nil) })

	pub := &mockPublisher{}
	d, _ := newTestDashboard(dashboard.Options{Publisher: pub})
	ctx := context.Background()

	_, err := d.CrashMap(ctx, "SUFFOLK")
	require.NoError(t, err)
	_, err = d.CrashCauses(ctx, "WALTHAM")
	require.NoError(t, err)

	require.Len(t, pub.events, 2)
	assert.Equal(t, domain.ViewCrashMap, pub.events[0].View)
	assert.Equal(t, []string{"SUFFOLK"}, pub.events[0].Filters["county"])
	assert.Equal(t, 2, pub.events[0].Rows)
	assert.Equal(t, fc.Now(), pub.events[0].OccurredAt)
	assert.Equal(t, domain.ViewCrashCauses, pub.events[1].View)
	assert.NotEqual(t, pub.events[0].ID, pub.events[1].ID)
}

func TestViews_PublishFailureDoesNotFailView(t *testing.T) {
	pub := &mockPublisher{err: errors.New("broker down")}
	d, _ := newTestDashboard(dashboard.Options{Publisher: pub})

	view, err := d.CrashMap(context.Background(), domain.AllCounties)
	require.NoError(t, err)
	assert.NotEmpty(t, view.Points)
}

func TestPlaceDetails(t *testing.T) {
	geo := &mockGeocoder{result: domain.GeocodingResult{
		FormattedAddress: "12 Main Street, Boston, Massachusetts 02108, United States",
		PlaceName:        "12 Main Street",
		Confidence:       0.9,
	}}
	d, _ := newTestDashboard(dashboard.Options{Geocoder: geo})
	require.True(t, d.GeocodingEnabled())

	place, err := d.PlaceDetails(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, domain.PlaceSourceReverse, place.Source)
	assert.Equal(t, "12 Main Street", place.PlaceName)
	assert.Equal(t, "12 MAIN ST, BOSTON", place.Address)
}

func TestPlaceDetails_Errors(t *testing.T) {
	ctx := context.Background()

	disabled, _ := newTestDashboard(dashboard.Options{})
	_, err := disabled.PlaceDetails(ctx, "1")
	require.ErrorIs(t, err, dashboard.ErrGeocodingDisabled)

	geo := &mockGeocoder{err: errors.New("status 500")}
	d, _ := newTestDashboard(dashboard.Options{Geocoder: geo})

	_, err = d.PlaceDetails(ctx, "999")
	require.ErrorIs(t, err, dashboard.ErrCrashNotFound)

	_, err = d.PlaceDetails(ctx, "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")

	// No coordinates: answered from the record without calling the provider.
	calls := geo.calls
	place, err := d.PlaceDetails(ctx, "5")
	require.NoError(t, err)
	assert.Equal(t, domain.PlaceSourceRecord, place.Source)
	assert.Equal(t, calls, geo.calls)
}
