// Package plot applies a plotting style and dispatches histograms to a
// rendering backend by their dimensionality.
package plot

import (
	"fmt"
	"strings"

	"github.com/mcncl/sidmtools/internal/errors"
)

// DefaultDPI is the figure resolution used when none is configured.
const DefaultDPI = 50

// Style describes how figures are drawn.
type Style struct {
	Name       string
	DPI        int
	Experiment string
	LabelText  string
	FontFamily string
	FigSize    [2]float64
	// Palette is the color cycle for overlaid 1-D histograms.
	Palette []string
}

var styles = map[string]Style{
	"cms": {
		Name:       "cms",
		Experiment: "CMS",
		FontFamily: "TeX Gyre Heros",
		FigSize:    [2]float64{10, 10},
		Palette:    []string{"#5790fc", "#f89c20", "#e42536", "#964a8b", "#9c9ca1", "#7a21dd"},
	},
}

// SetPlotStyle returns the named style at the given resolution. Only "cms"
// is supported; dpi <= 0 selects DefaultDPI.
func SetPlotStyle(style string, dpi int) (Style, error) {
	s, ok := styles[strings.ToLower(strings.TrimSpace(style))]
	if !ok {
		return Style{}, errors.NewNotImplementedError(fmt.Sprintf("plot style '%s'", style))
	}
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	s.DPI = dpi
	s.Palette = append([]string(nil), s.Palette...)
	return s, nil
}

// Options are passed through to the backend.
type Options struct {
	Style  Style
	Labels []string
	// Density normalizes each histogram to unit area.
	Density bool
	// Index is the position of the histogram passed to Hist2DPlot in the
	// list given to Plot. It selects its entry in Labels.
	Index int
}

// Backend renders histograms. HistPlot receives all 1-D histograms at once so
// they can be overlaid; Hist2DPlot receives a single 2-D histogram.
type Backend interface {
	HistPlot(hists []Histogram, opts Options) error
	Hist2DPlot(hist Histogram, opts Options) error
	Label(style Style) error
}

// Dim returns the dimensionality of hists, taken from the first histogram.
func Dim(hists []Histogram) (int, error) {
	if len(hists) == 0 {
		return 0, errors.NewInputError("no histograms to plot", nil)
	}
	dim := len(hists[0].Axes())
	for i, h := range hists[1:] {
		if d := len(h.Axes()); d != dim {
			return 0, errors.NewInputError(
				fmt.Sprintf("histogram %d is %d-dimensional, expected %d", i+1, d, dim), nil)
		}
	}
	return dim, nil
}

// Plot draws hists with b and then adds the experiment label. 1-D
// histograms are overlaid, 2-D histograms are drawn one after another, and
// any other dimensionality is not implemented.
func Plot(b Backend, hists []Histogram, opts Options) error {
	dim, err := Dim(hists)
	if err != nil {
		return err
	}

	switch dim {
	case 1:
		if err := b.HistPlot(hists, opts); err != nil {
			return errors.NewOutputError("failed to draw 1-D histograms", err)
		}
	case 2:
		for i, h := range hists {
			o := opts
			o.Index = i
			if err := b.Hist2DPlot(h, o); err != nil {
				return errors.NewOutputError("failed to draw 2-D histogram", err)
			}
		}
	default:
		return errors.NewNotImplementedError(fmt.Sprintf("Cannot plot %d-dimensional hist", dim))
	}

	if err := b.Label(opts.Style); err != nil {
		return errors.NewOutputError("failed to draw label", err)
	}
	return nil
}

// normalized returns the values of h scaled for drawing.
func normalized(h Histogram, density bool) []float64 {
	vals := append([]float64(nil), h.Values()...)
	if !density {
		return vals
	}
	area := 0.0
	size := binSize(h.Axes())
	for _, v := range vals {
		area += v * size
	}
	if area == 0 {
		return vals
	}
	for i := range vals {
		vals[i] /= area
	}
	return vals
}

// binSize returns the volume of one bin. Axes are regular so every bin has
// the same size.
func binSize(axes []Axis) float64 {
	size := 1.0
	for _, a := range axes {
		size *= (a.Stop - a.Start) / float64(a.Bins)
	}
	return size
}
