// Package views builds the four dashboard pages from the loaded dataset.
package views

import (
	"errors"
	"fmt"
	"strings"
)

// View selects one dashboard page.
type View int

const (
	About View = iota
	Overview
	Visualization
	RFMClustering
)

// All lists the views in navigation order.
var All = []View{About, Overview, Visualization, RFMClustering}

// ErrUnknownView is returned by Parse for names that match no view.
var ErrUnknownView = errors.New("unknown view")

// Slug is the short name used on the command line and in URLs.
func (v View) Slug() string {
	switch v {
	case About:
		return "about"
	case Overview:
		return "overview"
	case Visualization:
		return "visualization"
	case RFMClustering:
		return "rfm"
	}
	return fmt.Sprintf("view(%d)", int(v))
}

// Title is the navigation label.
func (v View) Title() string {
	switch v {
	case About:
		return "About Dataset"
	case Overview:
		return "Data Overview"
	case Visualization:
		return "Data Visualization"
	case RFMClustering:
		return "RFM & Clustering Analysis"
	}
	return v.Slug()
}

func (v View) String() string { return v.Slug() }

// Parse matches a slug or title, ignoring case and surrounding space.
func Parse(s string) (View, error) {
	s = strings.TrimSpace(s)
	for _, v := range All {
		if strings.EqualFold(s, v.Slug()) || strings.EqualFold(s, v.Title()) {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownView, s)
}

// Slugs returns every view slug in navigation order.
func Slugs() []string {
	out := make([]string, len(All))
	for i, v := range All {
		out[i] = v.Slug()
	}
	return out
}
