package dashboard

// PageTitle heads every page.
const PageTitle = "Massachusetts Crashes in 2017"

// MenuTitle heads the sidebar.
const MenuTitle = "Crash Zone"

// MenuItem is one sidebar navigation entry and the section it opens.
type MenuItem struct {
	Label string
	Icon  string // Bootstrap icon name
	Path  string
	Title string
	Blurb string
}

var menu = []MenuItem{
	{
		Label: "Crash Map",
		Icon:  "car-front",
		Path:  "/map",
		Title: "Overview of Massachusetts Car Crashes",
		Blurb: "This section provides a visual map highlighting the locations of car crashes in Massachusetts for the year 2017. " +
			"Explore the map to see detailed information on each crash, including severity, conditions, and more.",
	},
	{
		Label: "Crash Severity Analysis",
		Icon:  "bar-chart",
		Path:  "/severity",
		Title: "Detailed Crash Severity Analysis",
		Blurb: "This section allows you to filter the data based on city/town and severity to see detailed bar charts " +
			"showing the distribution of crash severities.",
	},
	{
		Label: "Crash Causes",
		Icon:  "pie-chart",
		Path:  "/causes",
		Title: "Analysis of Crash Causes",
		Blurb: "This section provides insights into the causes of crashes. You can view an overall pie chart of crash causes " +
			"or filter by city/town to see specific distributions of crash causes in different locations.",
	},
}

// Menu returns the navigation entries in display order. The first entry is
// the landing page.
func (d *Dashboard) Menu() []MenuItem {
	out := make([]MenuItem, len(menu))
	copy(out, menu)
	return out
}

// MenuItemFor returns the entry whose Path matches, or the landing entry.
func (d *Dashboard) MenuItemFor(path string) MenuItem {
	for _, m := range menu {
		if m.Path == path {
			return m
		}
	}
	return menu[0]
}
