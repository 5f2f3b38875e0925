package render

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/KaramelBytes/bikedash/internal/overview"
)

const barWidth = 40

// Text writes the page as terminal-friendly markdown. Charts become
// horizontal bar sketches, box summaries or value grids.
func Text(w io.Writer, p *Page) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# %s\n", p.Title)
	for _, s := range p.Sections {
		bw.WriteString("\n")
		if s.Heading != "" {
			fmt.Fprintf(bw, "## %s\n\n", s.Heading)
		}
		if s.Text != "" {
			bw.WriteString(strings.TrimRight(s.Text, "\n"))
			bw.WriteString("\n")
		}
		if s.Table != nil {
			writeTable(bw, s.Table.Columns, s.Table.Rows)
		}
		if s.Chart != nil {
			writeChart(bw, s.Chart)
		}
	}
	return bw.Flush()
}

func writeTable(w *bufio.Writer, cols []string, rows [][]string) {
	w.WriteString(mdRow(cols))
	sep := make([]string, len(cols))
	for i := range sep {
		sep[i] = "---"
	}
	w.WriteString(mdRow(sep))
	for _, r := range rows {
		w.WriteString(mdRow(r))
	}
}

func mdRow(cells []string) string {
	esc := make([]string, len(cells))
	for i, c := range cells {
		esc[i] = strings.ReplaceAll(c, "|", "/")
	}
	return "| " + strings.Join(esc, " | ") + " |\n"
}

func writeChart(w *bufio.Writer, c *Chart) {
	fmt.Fprintf(w, "%s\n\n", c.Title)
	switch c.Kind {
	case BarChart, LineChart:
		writeBars(w, c.Labels, c.Values)
	case BoxChart:
		if c.Box == nil {
			return
		}
		st := c.Box.Stats
		fmt.Fprintf(w, "%s: n=%d whiskers [%s, %s] box [%s, %s] median %s outliers %d\n",
			c.Box.Name, st.Count,
			overview.FormatFloat(st.LowerWhisker), overview.FormatFloat(st.UpperWhisker),
			overview.FormatFloat(st.Q1), overview.FormatFloat(st.Q3),
			overview.FormatFloat(st.Median), st.Outliers)
	case HeatmapChart:
		if c.Grid == nil {
			return
		}
		cols := append([]string{""}, c.Grid.Cols...)
		rows := make([][]string, len(c.Grid.Rows))
		for i, name := range c.Grid.Rows {
			row := []string{name}
			for _, v := range c.Grid.Cells[i] {
				if v == nil {
					row = append(row, "")
					continue
				}
				row = append(row, fmt.Sprintf("%.0f", *v))
			}
			rows[i] = row
		}
		writeTable(w, cols, rows)
	}
}

func writeBars(w *bufio.Writer, labels []string, values []float64) {
	if len(values) == 0 {
		w.WriteString("(no data)\n")
		return
	}
	maxV, width := 0.0, 0
	for i, v := range values {
		maxV = math.Max(maxV, v)
		if i < len(labels) && len(labels[i]) > width {
			width = len(labels[i])
		}
	}
	for i, v := range values {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		n := 0
		if maxV > 0 {
			n = int(math.Round(v / maxV * barWidth))
		}
		fmt.Fprintf(w, "%-*s %s %s\n", width, label, strings.Repeat("▓", n), overview.FormatFloat(math.Round(v*100)/100))
	}
}
