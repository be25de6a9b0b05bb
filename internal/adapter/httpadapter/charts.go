package httpadapter

import (
	"bytes"
	"encoding/base64"
	"errors"
	"html/template"
	"io"
	"net/http"

	"github.com/couchcryptid/crash-zone-dashboard/internal/chart"
	"github.com/couchcryptid/crash-zone-dashboard/internal/dashboard"
)

// Chart names, used as metric labels.
const (
	chartSeverityByCity = "severity_by_city"
	chartSeverityByHour = "severity_by_hour"
	chartHourly         = "hourly"
	chartCauses         = "causes"
	chartCityCauses     = "causes_city"
)

// chartImage is an SVG data URI for an <img> tag; empty when there is no data.
type chartImage = template.URL

// inlineChart renders a chart as an SVG data URI for an <img> src.
func (s *Server) inlineChart(name string, draw func(io.Writer) error) chartImage {
	var buf bytes.Buffer
	if err := draw(&buf); err != nil {
		s.chartFailed(name, err)
		return ""
	}
	return chartImage("data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()))
}

func (s *Server) chartFailed(name string, err error) {
	if errors.Is(err, chart.ErrNoData) {
		return
	}
	s.metrics.ChartRenderErrors.WithLabelValues(name).Inc()
	s.logger.Error("render chart failed", "chart", name, "error", err)
}

// writeChart answers one /charts route. Empty data is 204 No Content.
func (s *Server) writeChart(w http.ResponseWriter, r *http.Request, name string, draw func(io.Writer) error) {
	var buf bytes.Buffer
	if err := draw(&buf); err != nil {
		s.chartFailed(name, err)
		if errors.Is(err, chart.ErrNoData) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'")
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Debug("write chart response", "chart", name, "path", r.URL.Path, "error", err)
	}
}

func (s *Server) handleSeverityByCityChart(w http.ResponseWriter, r *http.Request) {
	view, err := s.severityView(r)
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	s.writeChart(w, r, chartSeverityByCity, func(out io.Writer) error {
		return chart.SeverityByCity(out, view.ByCity)
	})
}

func (s *Server) handleSeverityByHourChart(w http.ResponseWriter, r *http.Request) {
	view, err := s.severityView(r)
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	s.writeChart(w, r, chartSeverityByHour, func(out io.Writer) error {
		return chart.SeverityByHour(out, view.ByHour)
	})
}

func (s *Server) handleHourlyChart(w http.ResponseWriter, r *http.Request) {
	view, err := s.severityView(r)
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	s.writeChart(w, r, chartHourly, func(out io.Writer) error {
		return chart.HourlyLine(out, view.Hourly)
	})
}

func (s *Server) handleCausesChart(w http.ResponseWriter, r *http.Request) {
	view, err := s.views.CrashCauses(r.Context(), "")
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	s.writeChart(w, r, chartCauses, func(out io.Writer) error {
		return chart.CausePie(out, chart.TitleCauses, view.All)
	})
}

func (s *Server) handleCityCausesChart(w http.ResponseWriter, r *http.Request) {
	view, err := s.views.CrashCauses(r.Context(), r.URL.Query().Get("city"))
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	s.writeChart(w, r, chartCityCauses, func(out io.Writer) error {
		return chart.CausePie(out, dashboard.CityCausesTitle(view.SelectedCity), view.ByCity)
	})
}
