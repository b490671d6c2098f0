package plot

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

// shades maps increasing bin content to denser characters.
const shades = " .:-=+*#%@"

// TextBackend draws histograms as text: horizontal bars for 1-D histograms
// and a shaded grid for 2-D histograms.
type TextBackend struct {
	w     io.Writer
	width int
	color bool
}

// NewTextBackend writes to w. When useColor is false no escape codes are
// emitted regardless of the terminal.
func NewTextBackend(w io.Writer, useColor bool) *TextBackend {
	return &TextBackend{w: w, width: 40, color: useColor}
}

// SetWidth sets the length of the longest bar.
func (t *TextBackend) SetWidth(width int) {
	if width > 0 {
		t.width = width
	}
}

func (t *TextBackend) paint(c *color.Color) *color.Color {
	if !t.color {
		c.DisableColor()
	}
	return c
}

func (t *TextBackend) paletteColor(style Style, i int) *color.Color {
	if len(style.Palette) == 0 {
		return t.paint(color.New(color.FgBlue))
	}
	r, g, b, ok := parseHex(style.Palette[i%len(style.Palette)])
	if !ok {
		return t.paint(color.New(color.FgBlue))
	}
	return t.paint(color.RGB(r, g, b))
}

// HistPlot implements Backend.
func (t *TextBackend) HistPlot(hists []Histogram, opts Options) error {
	all := make([][]float64, len(hists))
	peak := 0.0
	for i, h := range hists {
		all[i] = normalized(h, opts.Density)
		for _, v := range all[i] {
			peak = math.Max(peak, v)
		}
	}

	for i, h := range hists {
		axis := h.Axes()[0]
		c := t.paletteColor(opts.Style, i)
		if _, err := fmt.Fprintln(t.w, c.Sprint(histTitle(h, opts.Labels, i)+" ["+axisTitle(axis)+"]")); err != nil {
			return err
		}
		edges := axis.Edges()
		for bin, v := range all[i] {
			bar := strings.Repeat("█", barLen(v, peak, t.width))
			if _, err := fmt.Fprintf(t.w, "[%8.4g, %8.4g) %s %g\n", edges[bin], edges[bin+1], c.Sprint(bar), v); err != nil {
				return err
			}
		}
	}
	return nil
}

// Hist2DPlot implements Backend. The first axis runs left to right and the
// second bottom to top.
func (t *TextBackend) Hist2DPlot(hist Histogram, opts Options) error {
	axes := hist.Axes()
	x, y := axes[0], axes[1]
	vals := normalized(hist, opts.Density)
	peak := 0.0
	for _, v := range vals {
		peak = math.Max(peak, v)
	}

	title := t.paint(color.New(color.Bold))
	if _, err := fmt.Fprintln(t.w, title.Sprint(histTitle(hist, opts.Labels, opts.Index))); err != nil {
		return err
	}
	yEdges := y.Edges()
	for row := y.Bins - 1; row >= 0; row-- {
		var line strings.Builder
		for col := 0; col < x.Bins; col++ {
			line.WriteByte(shade(vals[col*y.Bins+row], peak))
		}
		if _, err := fmt.Fprintf(t.w, "%8.4g |%s|\n", yEdges[row], line.String()); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(t.w, "%8s  %s: [%g, %g) vs %s\n", "", axisTitle(x), x.Start, x.Stop, axisTitle(y))
	return err
}

// Label implements Backend.
func (t *TextBackend) Label(style Style) error {
	bold := t.paint(color.New(color.Bold))
	italic := t.paint(color.New(color.Italic))
	text := bold.Sprint(style.Experiment)
	if style.LabelText != "" {
		text += " " + italic.Sprint(style.LabelText)
	}
	_, err := fmt.Fprintf(t.w, "%s (%s, %d dpi)\n", text, style.Name, style.DPI)
	return err
}

func histTitle(h Histogram, labels []string, i int) string {
	if i < len(labels) && labels[i] != "" {
		return labels[i]
	}
	if titled, ok := h.(*Hist); ok && titled.Title != "" {
		return titled.Title
	}
	return fmt.Sprintf("hist %d", i)
}

func axisTitle(a Axis) string {
	if a.Label != "" {
		return a.Label
	}
	return a.Name
}

func barLen(v, peak float64, width int) int {
	if peak <= 0 || v <= 0 {
		return 0
	}
	return int(math.Round(v / peak * float64(width)))
}

func shade(v, peak float64) byte {
	if peak <= 0 || v <= 0 {
		return shades[0]
	}
	i := int(math.Ceil(v / peak * float64(len(shades)-1)))
	return shades[min(i, len(shades)-1)]
}

func parseHex(s string) (r, g, b int, ok bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(n >> 16 & 0xff), int(n >> 8 & 0xff), int(n & 0xff), true
}
