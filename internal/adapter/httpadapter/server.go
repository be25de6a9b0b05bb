package httpadapter

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/crash-zone-dashboard/internal/dashboard"
	"github.com/couchcryptid/crash-zone-dashboard/internal/domain"
	"github.com/couchcryptid/crash-zone-dashboard/internal/observability"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Views is the dashboard surface the HTTP layer renders.
type Views interface {
	CheckReadiness(ctx context.Context) error
	Menu() []dashboard.MenuItem
	MenuItemFor(path string) dashboard.MenuItem
	CrashMap(ctx context.Context, county string) (dashboard.MapView, error)
	ResolveSelection(cities, severities []string, submitted bool) domain.Selection
	SeverityAnalysis(ctx context.Context, sel domain.Selection) (dashboard.SeverityView, error)
	CrashCauses(ctx context.Context, city string) (dashboard.CausesView, error)
	PlaceDetails(ctx context.Context, number string) (domain.CrashPlace, error)
	GeocodingEnabled() bool
}

// MapOptions selects the basemap. TilesToken is sent to every browser, so it
// must be a public (pk.) Mapbox token and never the geocoding credential.
// Without one the map uses CARTO light tiles.
type MapOptions struct {
	TilesToken  string
	MapboxStyle string
}

// Server serves the dashboard pages, chart and JSON endpoints alongside
// health, readiness, and metrics.
type Server struct {
	httpServer *http.Server
	views      Views
	pages      *pageSet
	tiles      tileLayer
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer creates the dashboard HTTP server.
func NewServer(addr string, views Views, mapOpts MapOptions, metrics *observability.Metrics, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		views:   views,
		pages:   mustParsePages(),
		tiles:   newTileLayer(mapOpts),
		metrics: metrics,
		logger:  logger,
	}
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.instrument(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /map", s.handleMap)
	mux.HandleFunc("GET /severity", s.handleSeverity)
	mux.HandleFunc("GET /causes", s.handleCauses)

	mux.HandleFunc("GET /charts/severity-by-city.svg", s.handleSeverityByCityChart)
	mux.HandleFunc("GET /charts/severity-by-hour.svg", s.handleSeverityByHourChart)
	mux.HandleFunc("GET /charts/hourly.svg", s.handleHourlyChart)
	mux.HandleFunc("GET /charts/causes.svg", s.handleCausesChart)
	mux.HandleFunc("GET /charts/causes-city.svg", s.handleCityCausesChart)

	mux.HandleFunc("GET /api/crashes", s.handleCrashes)
	mux.HandleFunc("GET /api/crashes/{number}/place", s.handlePlace)

	mux.Handle("GET /static/", staticHandler())

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(views))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
