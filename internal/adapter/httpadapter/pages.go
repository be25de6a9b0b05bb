package httpadapter

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/couchcryptid/crash-zone-dashboard/internal/dashboard"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var templateFuncs = template.FuncMap{
	"percent":  func(share float64) string { return fmt.Sprintf("%.1f%%", share*100) },
	"join":     strings.Join,
	"stamp":    func(t time.Time) string { return t.UTC().Format("2006-01-02 15:04 MST") },
	"selected": slices.Contains[[]string, string],
}

// pageSet holds one template per page, each combined with the shared layout.
type pageSet struct {
	pages map[string]*template.Template
}

func mustParsePages() *pageSet {
	ps := &pageSet{pages: make(map[string]*template.Template)}
	for _, name := range []string{"map.html", "severity.html", "causes.html"} {
		ps.pages[name] = template.Must(template.New("layout.html").
			Funcs(templateFuncs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name))
	}
	return ps
}

// layoutData is the data every page template receives.
type layoutData struct {
	PageTitle   string
	MenuTitle   string
	Menu        []dashboard.MenuItem
	Active      dashboard.MenuItem
	GeneratedAt time.Time
	Content     any
}

// render executes a page into a buffer first so template errors never
// produce a half-written page.
func (ps *pageSet) render(w http.ResponseWriter, name string, data layoutData) error {
	tmpl, ok := ps.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("render page %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := buf.WriteTo(w)
	return err
}

func staticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServerFS(sub))
}

// tileLayer is the Leaflet basemap configuration handed to the map script.
type tileLayer struct {
	URL         string `json:"url"`
	Attribution string `json:"attribution"`
	TileSize    int    `json:"tile_size"`
	ZoomOffset  int    `json:"zoom_offset"`
}

func newTileLayer(opts MapOptions) tileLayer {
	if !publicMapboxToken(opts.TilesToken) {
		return tileLayer{
			URL:         "https://{s}.basemaps.cartocdn.com/light_all/{z}/{x}/{y}{r}.png",
			Attribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors &copy; <a href="https://carto.com/attributions">CARTO</a>`,
			TileSize:    256,
		}
	}
	return tileLayer{
		URL: "https://api.mapbox.com/styles/v1/" + opts.MapboxStyle +
			"/tiles/{z}/{x}/{y}?access_token=" + opts.TilesToken,
		Attribution: `&copy; <a href="https://www.mapbox.com/about/maps/">Mapbox</a> &copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a>`,
		TileSize:    512,
		ZoomOffset:  -1,
	}
}

// publicMapboxToken reports whether token may be embedded in a page. Secret
// (sk.) tokens never are.
func publicMapboxToken(token string) bool {
	return strings.HasPrefix(token, "pk.")
}
