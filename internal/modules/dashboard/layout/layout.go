// Package layout describes the static dashboard page: the informational home
// tab, the controls and the chart placeholders.
package layout

import (
	"slices"

	"climatedash-server/internal/modules/dashboard/charts"
	"climatedash-server/internal/modules/dashboard/dataset"
)

const (
	Title = "Global Warming Visualized"

	DefaultYear = 2007
)

var (
	sliderMarks      = []int{1970, 1980, 1990, 2000, 2010, 2014}
	defaultCountries = []string{"Armenia", "Portugal", "Spain", "Italy"}
)

type Page struct {
	Title    string   `json:"title"`
	Tabs     []Tab    `json:"tabs"`
	Home     Home     `json:"home"`
	Controls Controls `json:"controls"`
	// Charts are the placeholder ids, in render order.
	Charts []string `json:"charts"`
}

type Tab struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type Home struct {
	Heading     string          `json:"heading"`
	Description string          `json:"description"`
	Repository  Link            `json:"repository"`
	Members     []Member        `json:"members"`
	Overview    string          `json:"overview"`
	Variables   []VariableGroup `json:"variables"`
}

type Link struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

type Member struct {
	Name      string `json:"name"`
	StudentID string `json:"studentId"`
}

type VariableGroup struct {
	Dataset   string     `json:"dataset"`
	Variables []Variable `json:"variables"`
}

type Variable struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Controls struct {
	Year      Slider   `json:"year"`
	Countries Dropdown `json:"countries"`
}

type Slider struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Help  string `json:"help"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
	Step  int    `json:"step"`
	Marks []int  `json:"marks"`
	Value int    `json:"value"`
}

type Dropdown struct {
	ID      string   `json:"id"`
	Label   string   `json:"label"`
	Options []string `json:"options"`
	Value   []string `json:"value"`
	Multi   bool     `json:"multi"`
}

// Build derives the page from the dataset. Slider bounds come from the
// observed years; marks and defaults outside the data are dropped or clamped.
func Build(ds *dataset.Dataset) Page {
	minYear, maxYear := ds.YearRange()

	marks := make([]int, 0, len(sliderMarks))
	for _, m := range sliderMarks {
		if m >= minYear && m <= maxYear {
			marks = append(marks, m)
		}
	}

	options := ds.Countries()
	selected := make([]string, 0, len(defaultCountries))
	for _, c := range defaultCountries {
		if slices.Contains(options, c) {
			selected = append(selected, c)
		}
	}

	return Page{
		Title: Title,
		Tabs: []Tab{
			{ID: "home", Label: "Home"},
			{ID: "dashboard", Label: "Dashboard"},
		},
		Home: home(),
		Controls: Controls{
			Year: Slider{
				ID:    "year",
				Label: "Year",
				Help:  "Scroll to select year to inspect all available data",
				Min:   minYear,
				Max:   maxYear,
				Step:  1,
				Marks: marks,
				Value: min(max(DefaultYear, minYear), maxYear),
			},
			Countries: Dropdown{
				ID:      "countries",
				Label:   "Select Countries",
				Options: options,
				Value:   selected,
				Multi:   true,
			},
		},
		Charts: slices.Clone(charts.IDs[:]),
	}
}

func home() Home {
	return Home{
		Heading:     "Data Visualization Final Project - 2019/2020",
		Description: "A visualization of the Global Warming",
		Repository: Link{
			Text: "Github",
			URL:  "https://github.com/NorayrMeliksetyan/GlobalWarming",
		},
		Members:  []Member{{Name: "Norayr Meliksetyan", StudentID: "M20190687"}},
		Overview: "An Exploratory Dashboard for Global Warming",
		Variables: []VariableGroup{
			{
				Dataset: "Sea level and Glacier mass",
				Variables: []Variable{
					{Name: "year", Description: "Year of the observation"},
					{Name: "level", Description: "Global mean sea level change, in inches"},
					{Name: "mass", Description: "Cumulative glacier mass balance"},
				},
			},
			{
				Dataset: "Temperature, GHG emissions, GDP and meat consumption",
				Variables: []Variable{
					{Name: "country", Description: "Country name"},
					{Name: "year", Description: "Year of the observation"},
					{Name: "temperature", Description: "Average temperature, in degrees Celsius"},
					{Name: "ghg_emission", Description: "Greenhouse gas emissions"},
					{Name: "gdp", Description: "Gross domestic product per capita"},
					{Name: "meat_consumption", Description: "Meat consumption per capita"},
				},
			},
		},
	}
}
