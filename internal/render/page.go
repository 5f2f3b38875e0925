// Package render turns view pages into text, PNG charts and table downloads.
package render

import "github.com/KaramelBytes/bikedash/internal/overview"

// Page is a rendered view: a title and an ordered list of sections.
type Page struct {
	Slug     string    `json:"slug"`
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
}

// Section holds an optional heading, text, table and chart, rendered in that order.
type Section struct {
	Heading string `json:"heading,omitempty"`
	Text    string `json:"text,omitempty"`
	Table   *Table `json:"table,omitempty"`
	Chart   *Chart `json:"chart,omitempty"`
}

// Table is a rectangular string table.
type Table struct {
	ID      string     `json:"id"`
	Title   string     `json:"title"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

type ChartKind string

const (
	BarChart     ChartKind = "bar"
	LineChart    ChartKind = "line"
	BoxChart     ChartKind = "box"
	HeatmapChart ChartKind = "heatmap"
)

// Chart describes one plot. Bar and line charts use Labels and Values (line
// charts also X); box charts use Box; heatmaps use Grid.
type Chart struct {
	ID     string    `json:"id"`
	Kind   ChartKind `json:"kind"`
	Title  string    `json:"title"`
	XLabel string    `json:"x_label,omitempty"`
	YLabel string    `json:"y_label,omitempty"`

	Labels []string   `json:"labels,omitempty"`
	Values []float64  `json:"values,omitempty"`
	X      []float64  `json:"x,omitempty"`
	Box    *BoxSeries `json:"box,omitempty"`
	Grid   *Grid      `json:"grid,omitempty"`
}

// BoxSeries is the distribution of a single column.
type BoxSeries struct {
	Name   string            `json:"name"`
	Values []float64         `json:"-"`
	Stats  overview.BoxStats `json:"stats"`
}

// Grid is a labelled matrix; a nil cell has no value.
type Grid struct {
	Rows  []string     `json:"rows"`
	Cols  []string     `json:"cols"`
	Cells [][]*float64 `json:"cells"`
}

// Chart returns the chart with the given id.
func (p *Page) Chart(id string) (*Chart, bool) {
	for _, s := range p.Sections {
		if s.Chart != nil && s.Chart.ID == id {
			return s.Chart, true
		}
	}
	return nil, false
}

// Table returns the table with the given id.
func (p *Page) Table(id string) (*Table, bool) {
	for _, s := range p.Sections {
		if s.Table != nil && s.Table.ID == id {
			return s.Table, true
		}
	}
	return nil, false
}

// Charts lists the page charts in order.
func (p *Page) Charts() []*Chart {
	var out []*Chart
	for _, s := range p.Sections {
		if s.Chart != nil {
			out = append(out, s.Chart)
		}
	}
	return out
}

// Tables lists the page tables in order.
func (p *Page) Tables() []*Table {
	var out []*Table
	for _, s := range p.Sections {
		if s.Table != nil {
			out = append(out, s.Table)
		}
	}
	return out
}
