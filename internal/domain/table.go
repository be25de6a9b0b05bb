package domain

// Table is the immutable in-memory crash table. Filter methods return new
// tables that share the underlying records.
type Table struct {
	crashes []Crash
}

// NewTable wraps the given records. The slice must not be modified afterwards.
func NewTable(crashes []Crash) Table {
	return Table{crashes: crashes}
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.crashes) }

// Crashes returns the rows. Callers must treat the slice as read-only.
func (t Table) Crashes() []Crash { return t.crashes }

// Find returns the crash with the given crash number.
func (t Table) Find(number string) (Crash, bool) {
	for _, c := range t.crashes {
		if c.Number == number {
			return c, true
		}
	}
	return Crash{}, false
}

// Counties returns distinct non-empty county names in first-appearance order.
func (t Table) Counties() []string {
	return t.distinct(func(c Crash) string { return c.County })
}

// Cities returns distinct non-empty city/town names in first-appearance order.
func (t Table) Cities() []string {
	return t.distinct(func(c Crash) string { return c.City })
}

// CountyOptions returns the county dropdown entries: AllCounties first.
func CountyOptions(t Table) []string {
	return append([]string{AllCounties}, t.Counties()...)
}

// DefaultCities returns the preferred cities that exist in options, keeping
// the preferred order.
func DefaultCities(options, preferred []string) []string {
	present := make(map[string]struct{}, len(options))
	for _, o := range options {
		present[o] = struct{}{}
	}
	out := make([]string, 0, len(preferred))
	for _, p := range preferred {
		if _, ok := present[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

// FilterCounty keeps rows in the given county. AllCounties returns t unchanged.
func (t Table) FilterCounty(county string) Table {
	if county == AllCounties {
		return t
	}
	return t.where(func(c Crash) bool { return c.County == county })
}

// FilterCity keeps rows in the given city/town.
func (t Table) FilterCity(city string) Table {
	return t.where(func(c Crash) bool { return c.City == city })
}

// Selection is the city/town and severity multi-select state.
type Selection struct {
	Cities     []string
	Severities []Severity
}

// NewSelection builds a selection with DefaultSeverities when none are given.
func NewSelection(cities []string, severities ...Severity) Selection {
	if len(severities) == 0 {
		severities = DefaultSeverities()
	}
	return Selection{Cities: cities, Severities: severities}
}

// FilterSelection keeps rows whose city is selected AND whose severity is
// selected. An empty list on either side selects nothing.
func (t Table) FilterSelection(sel Selection) Table {
	cities := make(map[string]struct{}, len(sel.Cities))
	for _, c := range sel.Cities {
		cities[c] = struct{}{}
	}
	severities := make(map[Severity]struct{}, len(sel.Severities))
	for _, s := range sel.Severities {
		severities[s] = struct{}{}
	}
	return t.where(func(c Crash) bool {
		_, okCity := cities[c.City]
		_, okSeverity := severities[c.Severity]
		return okCity && okSeverity
	})
}

// Mappable keeps rows that carry every field the map tooltip shows.
func (t Table) Mappable() Table {
	return t.where(Crash.Mappable)
}

func (t Table) where(keep func(Crash) bool) Table {
	out := make([]Crash, 0, len(t.crashes))
	for _, c := range t.crashes {
		if keep(c) {
			out = append(out, c)
		}
	}
	return Table{crashes: out}
}

func (t Table) distinct(field func(Crash) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, c := range t.crashes {
		v := field(c)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
