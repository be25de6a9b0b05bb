package domain

// Severity is the MassDOT crash severity description.
type Severity string

const (
	SeverityNonFatal       Severity = "Non-fatal injury"
	SeverityFatal          Severity = "Fatal injury"
	SeverityPropertyDamage Severity = "Property damage only (none injured)"
)

// AllCounties is the county option that disables county filtering.
const AllCounties = "All Counties"

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the pair carries real coordinates.
func (g Geo) Valid() bool {
	return g.Lat != 0 || g.Lon != 0
}

// Crash is one row of the source file.
type Crash struct {
	Number          string   `json:"crash_number"`     // CRASH_NUMB
	City            string   `json:"city"`             // CITY_TOWN_NAME
	County          string   `json:"county"`           // CNTY_NAME
	DateText        string   `json:"date"`             // CRASH_DATE_TEXT
	TimeText        string   `json:"time"`             // CRASH_TIME
	Status          string   `json:"status"`           // CRASH_STATUS
	Severity        Severity `json:"severity"`         // CRASH_SEVERITY_DESCR
	Vehicles        *int     `json:"vehicles"`         // NUMB_VEHC
	Weather         string   `json:"weather"`          // WEATH_COND_DESCR
	CollisionManner string   `json:"collision_manner"` // MANR_COLL_DESCR
	Geo             Geo      `json:"geo"`              // LAT, LON
	StreetName      string   `json:"street_name"`      // STREETNAME
	StreetNumber    string   `json:"street_number"`    // STREET_NUMB
}

// Mappable reports whether every field shown on the map tooltip is present.
func (c Crash) Mappable() bool {
	return c.Number != "" &&
		c.City != "" &&
		c.DateText != "" &&
		c.Weather != "" &&
		c.TimeText != "" &&
		c.Status != "" &&
		c.Severity != "" &&
		c.Vehicles != nil &&
		c.CollisionManner != "" &&
		c.Geo.Valid() &&
		c.StreetName != "" &&
		c.StreetNumber != ""
}

// SeverityOptions returns the severities offered by the severity multi-select.
func SeverityOptions() []Severity {
	return []Severity{SeverityNonFatal, SeverityFatal, SeverityPropertyDamage}
}

// DefaultSeverities is the severity selection used before the user picks one.
func DefaultSeverities() []Severity {
	return []Severity{SeverityNonFatal}
}

// ParseSeverities keeps only the values that name a known severity.
func ParseSeverities(values []string) []Severity {
	out := make([]Severity, 0, len(values))
	for _, v := range values {
		for _, s := range SeverityOptions() {
			if v == string(s) {
				out = append(out, s)
				break
			}
		}
	}
	return out
}
