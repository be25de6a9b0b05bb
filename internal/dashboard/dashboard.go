package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/crash-zone-dashboard/internal/domain"
	"github.com/couchcryptid/crash-zone-dashboard/internal/observability"
)

var (
	// ErrNotReady is returned by views until a crash table is attached.
	ErrNotReady = errors.New("crash data not loaded yet")
	// ErrCrashNotFound is returned when a crash number is not in the table.
	ErrCrashNotFound = errors.New("crash not found")
	// ErrGeocodingDisabled is returned by PlaceDetails without a geocoder.
	ErrGeocodingDisabled = errors.New("geocoding disabled")
)

// ViewPublisher receives a usage event for each rendered view.
type ViewPublisher interface {
	Publish(ctx context.Context, events ...domain.ViewEvent) error
}

// Options tune the views. Geocoder and Publisher are optional.
type Options struct {
	DefaultCities []string
	TopCauses     int
	Geocoder      domain.Geocoder
	Publisher     ViewPublisher
}

// Dashboard derives every view model from the attached crash table.
type Dashboard struct {
	table   atomic.Pointer[domain.Table]
	opts    Options
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Dashboard. Views fail with ErrNotReady until Attach is called.
func New(opts Options, logger *slog.Logger, metrics *observability.Metrics) *Dashboard {
	if opts.TopCauses <= 0 {
		opts.TopCauses = 3
	}
	return &Dashboard{opts: opts, logger: logger, metrics: metrics}
}

// Attach installs the loaded crash table.
func (d *Dashboard) Attach(t domain.Table) {
	d.table.Store(&t)
	d.metrics.RecordsLoaded.Set(float64(t.Len()))
	d.logger.Info("crash table attached", "records", t.Len())

	_, unparsed := t.HourlyCounts()
	d.reportUnparsed(unparsed)
}

// CheckReadiness returns nil once a table is attached.
func (d *Dashboard) CheckReadiness(_ context.Context) error {
	if d.table.Load() == nil {
		return ErrNotReady
	}
	return nil
}

// GeocodingEnabled reports whether PlaceDetails can answer.
func (d *Dashboard) GeocodingEnabled() bool {
	return d.opts.Geocoder != nil
}

func (d *Dashboard) current() (domain.Table, error) {
	t := d.table.Load()
	if t == nil {
		return domain.Table{}, ErrNotReady
	}
	return *t, nil
}

// observe records metrics and publishes a view event for one render.
func (d *Dashboard) observe(ctx context.Context, view string, start time.Time, filters map[string][]string, rows int) {
	d.metrics.ViewRenders.WithLabelValues(view).Inc()
	d.metrics.ViewRenderDuration.WithLabelValues(view).Observe(time.Since(start).Seconds())

	if d.opts.Publisher == nil {
		return
	}
	event := domain.NewViewEvent(view, filters, rows)
	if err := d.opts.Publisher.Publish(ctx, event); err != nil {
		d.logger.Warn("publish view event failed", "view", view, "event_id", event.ID, "error", err)
	}
}

// reportUnparsed logs crash numbers whose CRASH_TIME is malformed. Hour
// aggregations skip those rows on every render; they are reported once per
// attached table.
func (d *Dashboard) reportUnparsed(numbers []string) {
	if len(numbers) == 0 {
		return
	}
	d.metrics.UnparseableTimes.Add(float64(len(numbers)))
	d.logger.Warn("crash table has unparseable times",
		"count", len(numbers),
		"crash_numbers", numbers,
	)
}
