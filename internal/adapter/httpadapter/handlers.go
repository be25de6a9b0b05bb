package httpadapter

import (
	"errors"
	"io"
	"net/http"

	"github.com/couchcryptid/crash-zone-dashboard/internal/chart"
	"github.com/couchcryptid/crash-zone-dashboard/internal/dashboard"
	"github.com/couchcryptid/crash-zone-dashboard/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

// Section headings.
const (
	headingMap          = "Map Of Crashes in Massachusetts"
	headingSeverity     = "Crash Severity in Selected Cities/Towns"
	headingSeverityHour = "Crash Severity in Selected Cities/Towns by the Hour"
	headingHourly       = "Overall Crash Frequency by Hour"
	headingCauses       = "Overall Analysis of Crash Causes"
	headingCityCauses   = "Analysis of Crash Causes by City/Town"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, s.views.Menu()[0].Path, http.StatusFound)
}

type mapContent struct {
	Heading   string
	View      dashboard.MapView
	Tiles     tileLayer
	Geocoding bool
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	view, err := s.views.CrashMap(r.Context(), r.URL.Query().Get("county"))
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	s.renderPage(w, r, "map.html", layoutData{
		Active:      s.views.MenuItemFor("/map"),
		GeneratedAt: view.GeneratedAt,
		Content: mapContent{
			Heading:   headingMap,
			View:      view,
			Tiles:     s.tiles,
			Geocoding: s.views.GeocodingEnabled(),
		},
	})
}

type severityContent struct {
	Heading, HeadingHour, HeadingHourly string

	View               dashboard.SeverityView
	SelectedSeverities []string

	ByCityChart  chartImage
	ByCityLegend []chart.LegendEntry
	ByHourChart  chartImage
	ByHourLegend []chart.LegendEntry
	HourlyChart  chartImage
}

func (s *Server) handleSeverity(w http.ResponseWriter, r *http.Request) {
	view, err := s.severityView(r)
	if err != nil {
		s.pageError(w, r, err)
		return
	}

	selected := make([]string, len(view.Selection.Severities))
	for i, sev := range view.Selection.Severities {
		selected[i] = string(sev)
	}
	content := severityContent{
		Heading:            headingSeverity,
		HeadingHour:        headingSeverityHour,
		HeadingHourly:      headingHourly,
		View:               view,
		SelectedSeverities: selected,
		ByCityChart: s.inlineChart(chartSeverityByCity, func(out io.Writer) error {
			return chart.SeverityByCity(out, view.ByCity)
		}),
		ByCityLegend: chart.Legend(view.ByCity, true),
		ByHourChart: s.inlineChart(chartSeverityByHour, func(out io.Writer) error {
			return chart.SeverityByHour(out, view.ByHour)
		}),
		ByHourLegend: chart.Legend(view.ByHour, false),
		HourlyChart: s.inlineChart(chartHourly, func(out io.Writer) error {
			return chart.HourlyLine(out, view.Hourly)
		}),
	}
	s.renderPage(w, r, "severity.html", layoutData{
		Active:      s.views.MenuItemFor("/severity"),
		GeneratedAt: view.GeneratedAt,
		Content:     content,
	})
}

func (s *Server) severityView(r *http.Request) (dashboard.SeverityView, error) {
	q := r.URL.Query()
	sel := s.views.ResolveSelection(q["city"], q["severity"], q.Get("submitted") == "1")
	return s.views.SeverityAnalysis(r.Context(), sel)
}

type causesContent struct {
	Heading, HeadingCity string

	View      dashboard.CausesView
	AllTitle  string
	AllChart  chartImage
	CityChart chartImage
}

func (s *Server) handleCauses(w http.ResponseWriter, r *http.Request) {
	view, err := s.views.CrashCauses(r.Context(), r.URL.Query().Get("city"))
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	content := causesContent{
		Heading:     headingCauses,
		HeadingCity: headingCityCauses,
		View:        view,
		AllTitle:    chart.TitleCauses,
		AllChart: s.inlineChart(chartCauses, func(out io.Writer) error {
			return chart.CausePie(out, chart.TitleCauses, view.All)
		}),
		CityChart: s.inlineChart(chartCityCauses, func(out io.Writer) error {
			return chart.CausePie(out, view.CityTitle(), view.ByCity)
		}),
	}
	s.renderPage(w, r, "causes.html", layoutData{
		Active:      s.views.MenuItemFor("/causes"),
		GeneratedAt: view.GeneratedAt,
		Content:     content,
	})
}

// crashesResponse is the /api/crashes payload.
type crashesResponse struct {
	County    string               `json:"county"`
	Count     int                  `json:"count"`
	Points    []dashboard.MapPoint `json:"points"`
	ViewState domain.ViewState     `json:"view_state"`
}

func (s *Server) handleCrashes(w http.ResponseWriter, r *http.Request) {
	view, err := s.views.CrashMap(r.Context(), r.URL.Query().Get("county"))
	if err != nil {
		s.apiError(w, r, err, http.StatusInternalServerError)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, crashesResponse{
		County:    view.Selected,
		Count:     len(view.Points),
		Points:    view.Points,
		ViewState: view.ViewState,
	})
}

func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	place, err := s.views.PlaceDetails(r.Context(), r.PathValue("number"))
	if err != nil {
		// Remaining failures come from the geocoding provider.
		s.apiError(w, r, err, http.StatusBadGateway)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, place)
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, name string, data layoutData) {
	data.PageTitle = dashboard.PageTitle
	data.MenuTitle = dashboard.MenuTitle
	data.Menu = s.views.Menu()
	if err := s.pages.render(w, name, data); err != nil {
		s.logger.Error("render page failed", "page", name, "path", r.URL.Path, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (s *Server) pageError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, dashboard.ErrNotReady) {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	s.logger.Error("build view failed", "path", r.URL.Path, "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// apiError maps sentinel errors to statuses; anything else answers fallback.
func (s *Server) apiError(w http.ResponseWriter, r *http.Request, err error, fallback int) {
	status := fallback
	switch {
	case errors.Is(err, dashboard.ErrNotReady):
		status = http.StatusServiceUnavailable
	case errors.Is(err, dashboard.ErrCrashNotFound):
		status = http.StatusNotFound
	case errors.Is(err, dashboard.ErrGeocodingDisabled):
		status = http.StatusNotImplemented
	default:
		s.logger.Error("api request failed", "path", r.URL.Path, "error", err)
	}
	sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
}
